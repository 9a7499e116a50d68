// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import "fmt"

// FixedNeurons is the preallocated neuron backend: Put beyond capacity
// returns ErrStorageExhausted with all existing rows untouched.
type FixedNeurons struct {
	neuronBase
}

func newFixedNeurons(capacity int) *FixedNeurons {
	fs := &FixedNeurons{}
	fs.cols = makeNeuronCols(capacity)
	return fs
}

func (fs *FixedNeurons) Put(id uint32, n Neuron) error {
	if int(id) >= len(fs.cols.Valid) {
		return fmt.Errorf("neuron id %d beyond capacity %d: %w", id, len(fs.cols.Valid), ErrStorageExhausted)
	}
	fs.put(id, n)
	return nil
}

// FixedSynapses is the preallocated synapse backend.
type FixedSynapses struct {
	synapseBase
}

func newFixedSynapses(capacity int) *FixedSynapses {
	fs := &FixedSynapses{}
	fs.cols = makeSynapseCols(capacity)
	fs.bySrc = make(map[uint32][]uint32)
	return fs
}

func (fs *FixedSynapses) Put(id uint32, s Synapse) error {
	if int(id) >= len(fs.cols.Valid) {
		return fmt.Errorf("synapse id %d beyond capacity %d: %w", id, len(fs.cols.Valid), ErrStorageExhausted)
	}
	fs.put(id, s)
	return nil
}
