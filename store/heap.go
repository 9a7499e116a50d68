// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

// HeapNeurons is the growable neuron backend: columns double (or extend to
// the requested id) whenever Put targets a row beyond current capacity.
type HeapNeurons struct {
	neuronBase
}

func newHeapNeurons(capacity int) *HeapNeurons {
	hs := &HeapNeurons{}
	hs.cols = makeNeuronCols(capacity)
	return hs
}

func (hs *HeapNeurons) grow(id uint32) {
	nc := len(hs.cols.Valid) * 2
	if nc <= int(id) {
		nc = int(id) + 1
	}
	old := hs.cols
	hs.cols = makeNeuronCols(nc)
	copy(hs.cols.Pot, old.Pot)
	copy(hs.cols.Thr, old.Thr)
	copy(hs.cols.ThrLimit, old.ThrLimit)
	copy(hs.cols.Leak, old.Leak)
	copy(hs.cols.Rest, old.Rest)
	copy(hs.cols.Excite, old.Excite)
	copy(hs.cols.RefracPer, old.RefracPer)
	copy(hs.cols.RefracCnt, old.RefracCnt)
	copy(hs.cols.FireCnt, old.FireCnt)
	copy(hs.cols.FireLimit, old.FireLimit)
	copy(hs.cols.Snooze, old.Snooze)
	copy(hs.cols.LastFired, old.LastFired)
	copy(hs.cols.Area, old.Area)
	copy(hs.cols.Pos, old.Pos)
	copy(hs.cols.Valid, old.Valid)
}

func (hs *HeapNeurons) Put(id uint32, n Neuron) error {
	if int(id) >= len(hs.cols.Valid) {
		hs.grow(id)
	}
	hs.put(id, n)
	return nil
}

// HeapSynapses is the growable synapse backend.
type HeapSynapses struct {
	synapseBase
}

func newHeapSynapses(capacity int) *HeapSynapses {
	hs := &HeapSynapses{}
	hs.cols = makeSynapseCols(capacity)
	hs.bySrc = make(map[uint32][]uint32)
	return hs
}

func (hs *HeapSynapses) grow(id uint32) {
	nc := len(hs.cols.Valid) * 2
	if nc <= int(id) {
		nc = int(id) + 1
	}
	old := hs.cols
	hs.cols = makeSynapseCols(nc)
	copy(hs.cols.Src, old.Src)
	copy(hs.cols.Dst, old.Dst)
	copy(hs.cols.Weight, old.Weight)
	copy(hs.cols.PSP, old.PSP)
	copy(hs.cols.Type, old.Type)
	copy(hs.cols.CreatedAt, old.CreatedAt)
	copy(hs.cols.Valid, old.Valid)
}

func (hs *HeapSynapses) Put(id uint32, s Synapse) error {
	if int(id) >= len(hs.cols.Valid) {
		hs.grow(id)
	}
	hs.put(id, s)
	return nil
}
