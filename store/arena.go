// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"fmt"

	"github.com/goki/mat32"
)

// ArenaNeurons is the linear-memory neuron backend: fixed capacity, with
// all same-typed columns carved out of one contiguous reservation so the
// whole population occupies a handful of allocations.  Intended for targets
// where memory is a single linear block and growth is impossible.
type ArenaNeurons struct {
	neuronBase
}

func newArenaNeurons(capacity int) *ArenaNeurons {
	as := &ArenaNeurons{}
	c := capacity
	f32 := make([]float32, 6*c)
	u16 := make([]uint16, 5*c)
	as.cols = NeuronCols{
		Pot:       f32[0*c : 1*c : 1*c],
		Thr:       f32[1*c : 2*c : 2*c],
		ThrLimit:  f32[2*c : 3*c : 3*c],
		Leak:      f32[3*c : 4*c : 4*c],
		Rest:      f32[4*c : 5*c : 5*c],
		Excite:    f32[5*c : 6*c : 6*c],
		RefracPer: u16[0*c : 1*c : 1*c],
		RefracCnt: u16[1*c : 2*c : 2*c],
		FireCnt:   u16[2*c : 3*c : 3*c],
		FireLimit: u16[3*c : 4*c : 4*c],
		Snooze:    u16[4*c : 5*c : 5*c],
		LastFired: make([]uint64, c),
		Area:      make([]uint16, c),
		Pos:       make([]mat32.Vec3i, c),
		Valid:     make([]bool, c),
	}
	return as
}

func (as *ArenaNeurons) Put(id uint32, n Neuron) error {
	if int(id) >= len(as.cols.Valid) {
		return fmt.Errorf("neuron id %d beyond arena capacity %d: %w", id, len(as.cols.Valid), ErrStorageExhausted)
	}
	as.put(id, n)
	return nil
}

// ArenaSynapses is the linear-memory synapse backend.
type ArenaSynapses struct {
	synapseBase
}

func newArenaSynapses(capacity int) *ArenaSynapses {
	as := &ArenaSynapses{}
	c := capacity
	u32 := make([]uint32, 2*c)
	f32 := make([]float32, 2*c)
	as.cols = SynapseCols{
		Src:       u32[0*c : 1*c : 1*c],
		Dst:       u32[1*c : 2*c : 2*c],
		Weight:    f32[0*c : 1*c : 1*c],
		PSP:       f32[1*c : 2*c : 2*c],
		Type:      make([]int8, c),
		CreatedAt: make([]uint64, c),
		Valid:     make([]bool, c),
	}
	as.bySrc = make(map[uint32][]uint32)
	return as
}

func (as *ArenaSynapses) Put(id uint32, s Synapse) error {
	if int(id) >= len(as.cols.Valid) {
		return fmt.Errorf("synapse id %d beyond arena capacity %d: %w", id, len(as.cols.Valid), ErrStorageExhausted)
	}
	as.put(id, s)
	return nil
}
