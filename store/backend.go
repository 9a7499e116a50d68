// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"sort"

	"github.com/goki/mat32"
)

// neuronBase carries the column state and bookkeeping shared by every
// neuron backend.  Backends only differ in how Put obtains capacity.
type neuronBase struct {
	cols NeuronCols
	live int
}

func (nb *neuronBase) Len() int          { return nb.live }
func (nb *neuronBase) Cap() int          { return len(nb.cols.Valid) }
func (nb *neuronBase) Cols() *NeuronCols { return &nb.cols }

func (nb *neuronBase) Valid(id uint32) bool {
	return int(id) < len(nb.cols.Valid) && nb.cols.Valid[id]
}

func (nb *neuronBase) Invalidate(id uint32) {
	if !nb.Valid(id) {
		return
	}
	nb.cols.Valid[id] = false
	nb.live--
}

// put assumes id is within capacity.
func (nb *neuronBase) put(id uint32, n Neuron) {
	if !nb.cols.Valid[id] {
		nb.live++
	}
	nb.cols.setRow(id, n)
}

// synapseBase is the synapse counterpart, including the per-source index.
type synapseBase struct {
	cols  SynapseCols
	bySrc map[uint32][]uint32
	live  int
}

func (sb *synapseBase) Len() int           { return sb.live }
func (sb *synapseBase) Cap() int           { return len(sb.cols.Valid) }
func (sb *synapseBase) Cols() *SynapseCols { return &sb.cols }

func (sb *synapseBase) Valid(id uint32) bool {
	return int(id) < len(sb.cols.Valid) && sb.cols.Valid[id]
}

func (sb *synapseBase) BySource(src uint32) []uint32 {
	return sb.bySrc[src]
}

func (sb *synapseBase) Invalidate(id uint32) {
	if !sb.Valid(id) {
		return
	}
	sb.cols.Valid[id] = false
	sb.live--
	sb.dropFromIndex(sb.cols.Src[id], id)
}

func (sb *synapseBase) dropFromIndex(src, id uint32) {
	ids := sb.bySrc[src]
	i := sort.Search(len(ids), func(i int) bool { return ids[i] >= id })
	if i < len(ids) && ids[i] == id {
		ids = append(ids[:i], ids[i+1:]...)
		if len(ids) == 0 {
			delete(sb.bySrc, src)
		} else {
			sb.bySrc[src] = ids
		}
	}
}

// put assumes id is within capacity.  Ids reused through the id arena stay
// in sorted position within the per-source index.
func (sb *synapseBase) put(id uint32, s Synapse) {
	if sb.cols.Valid[id] {
		sb.dropFromIndex(sb.cols.Src[id], id)
		sb.live--
	}
	sb.cols.setRow(id, s)
	sb.live++
	ids := sb.bySrc[s.Src]
	i := sort.Search(len(ids), func(i int) bool { return ids[i] >= id })
	ids = append(ids, 0)
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	sb.bySrc[s.Src] = ids
}

func makeNeuronCols(capacity int) NeuronCols {
	return NeuronCols{
		Pot:       make([]float32, capacity),
		Thr:       make([]float32, capacity),
		ThrLimit:  make([]float32, capacity),
		Leak:      make([]float32, capacity),
		Rest:      make([]float32, capacity),
		Excite:    make([]float32, capacity),
		RefracPer: make([]uint16, capacity),
		RefracCnt: make([]uint16, capacity),
		FireCnt:   make([]uint16, capacity),
		FireLimit: make([]uint16, capacity),
		Snooze:    make([]uint16, capacity),
		LastFired: make([]uint64, capacity),
		Area:      make([]uint16, capacity),
		Pos:       make([]mat32.Vec3i, capacity),
		Valid:     make([]bool, capacity),
	}
}

func makeSynapseCols(capacity int) SynapseCols {
	return SynapseCols{
		Src:       make([]uint32, capacity),
		Dst:       make([]uint32, capacity),
		Weight:    make([]float32, capacity),
		PSP:       make([]float32, capacity),
		Type:      make([]int8, capacity),
		CreatedAt: make([]uint64, capacity),
		Valid:     make([]bool, capacity),
	}
}
