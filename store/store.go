// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package store provides structure-of-arrays storage for neuron and synapse
populations, behind a small contract with three backends:

  - Heap: growable columns, for hosted targets with a real allocator.
  - Fixed: preallocated columns, errors instead of growing.
  - Arena: fixed capacity with all columns of a type carved from one
    contiguous reservation, matching linear-memory targets.

Hot loops never go through the interface: Cols() exposes the backing
columns directly, and the simulation iterates those slices.  The interface
only governs allocation policy (Put / Invalidate / capacity).

Ids are row indices.  Id lifecycle (free lists, deferred reuse) lives in
IDArena, not in the stores: a store only materializes whatever id the arena
hands out.
*/
package store

import (
	"errors"
	"fmt"

	"github.com/goki/mat32"
)

// ErrStorageExhausted is returned by fixed-capacity backends when an id
// beyond capacity is materialized.  Existing data is never touched by a
// failed Put.
var ErrStorageExhausted = errors.New("store: capacity exhausted")

// Backend selects the storage allocation policy.
type Backend int32

const (
	// Heap grows columns on demand.
	Heap Backend = iota

	// Fixed preallocates columns at the given capacity and never grows.
	Fixed

	// Arena preallocates like Fixed but carves all same-typed columns
	// from single contiguous blocks.
	Arena

	BackendN
)

func (b Backend) String() string {
	switch b {
	case Heap:
		return "heap"
	case Fixed:
		return "fixed"
	case Arena:
		return "arena"
	}
	return fmt.Sprintf("Backend(%d)", int32(b))
}

// BackendFromString parses a backend tag ("heap", "fixed", "arena").
func BackendFromString(s string) (Backend, error) {
	switch s {
	case "", "heap":
		return Heap, nil
	case "fixed":
		return Fixed, nil
	case "arena":
		return Arena, nil
	}
	return Heap, fmt.Errorf("store: unsupported backend: %s", s)
}

// Neuron is the per-neuron record handed to Put.  Only configuration fields
// are taken from it: dynamic state (potential, countdowns, fire counts) is
// zeroed when the row is materialized.
type Neuron struct {
	Pos          mat32.Vec3i `desc:"voxel position within the area"`
	Area         uint16      `desc:"index of the owning cortical area"`
	Threshold    float32     `desc:"firing threshold"`
	ThrLimit     float32     `desc:"upper firing bound -- 0 disables"`
	Leak         float32     `def:"0.1" desc:"leak coefficient pulling potential toward resting"`
	Rest         float32     `def:"0" desc:"resting membrane potential"`
	Excite       float32     `def:"1" desc:"probability of firing when above threshold -- >= 0.999 always fires"`
	RefracPeriod uint16      `desc:"bursts a neuron stays silent after firing"`
	FireLimit    uint16      `desc:"max consecutive firing bursts before snooze -- 0 disables"`
	Snooze       uint16      `desc:"additional refractory bursts imposed at the fire limit"`
}

// NeuronCols is the structure-of-arrays neuron state.  All columns share
// one length; row i across every column is neuron id i.
type NeuronCols struct {
	Pot       []float32
	Thr       []float32
	ThrLimit  []float32
	Leak      []float32
	Rest      []float32
	Excite    []float32
	RefracPer []uint16
	RefracCnt []uint16
	FireCnt   []uint16
	FireLimit []uint16
	Snooze    []uint16
	LastFired []uint64
	Area      []uint16
	Pos       []mat32.Vec3i
	Valid     []bool
}

func (nc *NeuronCols) setRow(id uint32, n Neuron) {
	nc.Pot[id] = n.Rest
	nc.Thr[id] = n.Threshold
	nc.ThrLimit[id] = n.ThrLimit
	nc.Leak[id] = n.Leak
	nc.Rest[id] = n.Rest
	nc.Excite[id] = n.Excite
	nc.RefracPer[id] = n.RefracPeriod
	nc.RefracCnt[id] = 0
	nc.FireCnt[id] = 0
	nc.FireLimit[id] = n.FireLimit
	nc.Snooze[id] = n.Snooze
	nc.LastFired[id] = 0
	nc.Area[id] = n.Area
	nc.Pos[id] = n.Pos
	nc.Valid[id] = true
}

// NeuronStore materializes neuron rows at arena-assigned ids.
type NeuronStore interface {
	// Put materializes neuron n at row id, zeroing its dynamic state.
	// Fixed-capacity backends return ErrStorageExhausted when id is
	// beyond capacity.
	Put(id uint32, n Neuron) error

	// Invalidate clears the valid bit at id.  The row is unusable until
	// a later Put reuses it.
	Invalidate(id uint32)

	// Valid reports whether row id holds a live neuron.
	Valid(id uint32) bool

	// Len is the number of live rows; Cap the current column length.
	Len() int
	Cap() int

	// Cols exposes the backing columns for direct iteration.
	Cols() *NeuronCols
}

// Synapse is the per-synapse record handed to Put.  Weight is a
// non-negative magnitude: polarity is carried by Type.
type Synapse struct {
	Src       uint32  `desc:"source neuron id"`
	Dst       uint32  `desc:"target neuron id"`
	Weight    float32 `min:"0" desc:"connection strength magnitude"`
	PSP       float32 `desc:"post-synaptic potential multiplier"`
	Type      int8    `desc:"polarity: +1 excitatory, -1 inhibitory"`
	CreatedAt uint64  `desc:"burst index at creation"`
}

// SynapseCols is the structure-of-arrays synapse state.
type SynapseCols struct {
	Src       []uint32
	Dst       []uint32
	Weight    []float32
	PSP       []float32
	Type      []int8
	CreatedAt []uint64
	Valid     []bool
}

func (sc *SynapseCols) setRow(id uint32, s Synapse) {
	sc.Src[id] = s.Src
	sc.Dst[id] = s.Dst
	sc.Weight[id] = s.Weight
	sc.PSP[id] = s.PSP
	sc.Type[id] = s.Type
	sc.CreatedAt[id] = s.CreatedAt
	sc.Valid[id] = true
}

// SynapseStore materializes synapse rows and maintains the per-source
// index used during propagation.
type SynapseStore interface {
	Put(id uint32, s Synapse) error
	Invalidate(id uint32)
	Valid(id uint32) bool
	Len() int
	Cap() int
	Cols() *SynapseCols

	// BySource returns the live synapse ids originating at neuron src,
	// in id order.  The returned slice is owned by the store.
	BySource(src uint32) []uint32
}

// NewNeuronStore returns a neuron store of the given backend.  capacity is
// the fixed size for Fixed / Arena and the initial size for Heap.
func NewNeuronStore(kind Backend, capacity int) (NeuronStore, error) {
	switch kind {
	case Heap:
		return newHeapNeurons(capacity), nil
	case Fixed:
		return newFixedNeurons(capacity), nil
	case Arena:
		return newArenaNeurons(capacity), nil
	}
	return nil, fmt.Errorf("store: unsupported backend: %s", kind)
}

// NewSynapseStore returns a synapse store of the given backend.
func NewSynapseStore(kind Backend, capacity int) (SynapseStore, error) {
	switch kind {
	case Heap:
		return newHeapSynapses(capacity), nil
	case Fixed:
		return newFixedSynapses(capacity), nil
	case Arena:
		return newArenaSynapses(capacity), nil
	}
	return nil, fmt.Errorf("store: unsupported backend: %s", kind)
}
