// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package burst

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/goki/mat32"
)

// FCL is the fire candidate list for one area: accumulated synaptic and
// stimulus input per target neuron for the current burst.  Single writer
// per area within a burst; cleared during the cleanup phase.
type FCL map[uint32]float32

// SortedIDs returns the candidate neuron ids in ascending order.  Firing
// evaluation iterates this so results never depend on map ordering.
func (f FCL) SortedIDs() []uint32 {
	ids := make([]uint32, 0, len(f))
	for id := range f {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FiringNeuron is one entry in the fire queue: a neuron that fired this
// burst, captured with the potential that fired it and its position.
type FiringNeuron struct {
	ID        uint32
	Potential float32
	Pos       mat32.Vec3i
}

// FireQueue holds the neurons that fired in the current burst, per area in
// registry order, each area's list in ascending id order.
type FireQueue struct {
	Areas [][]FiringNeuron
}

func NewFireQueue(nAreas int) *FireQueue {
	return &FireQueue{Areas: make([][]FiringNeuron, nAreas)}
}

// Reset clears all per-area lists, keeping their capacity.
func (fq *FireQueue) Reset() {
	for i := range fq.Areas {
		fq.Areas[i] = fq.Areas[i][:0]
	}
}

// Total returns the number of fired neurons across all areas.
func (fq *FireQueue) Total() int {
	n := 0
	for _, a := range fq.Areas {
		n += len(a)
	}
	return n
}

// LedgerFrame is one archived burst: the burst index plus the fired-neuron
// set per area.  Frames are immutable once archived.
type LedgerFrame struct {
	Burst uint64
	Fired []*roaring.Bitmap
}

// Contains reports whether neuron id of area ai fired in this frame.
func (lf *LedgerFrame) Contains(ai int, id uint32) bool {
	if ai < 0 || ai >= len(lf.Fired) || lf.Fired[ai] == nil {
		return false
	}
	return lf.Fired[ai].Contains(id)
}

// FireLedger is the capacity-bounded archive of recent bursts: a FIFO ring
// of ledger frames totally ordered by burst index.  Archiving at capacity
// evicts the oldest frame.
type FireLedger struct {
	Cap    int `min:"1" desc:"max frames retained"`
	frames []LedgerFrame
	head   int
	n      int
}

func NewFireLedger(capacity int) *FireLedger {
	if capacity < 1 {
		capacity = 1
	}
	return &FireLedger{Cap: capacity, frames: make([]LedgerFrame, capacity)}
}

// Archive appends a frame built from the fire queue.  The queue is copied
// into fresh bitmaps: later mutation of the queue cannot touch the archive.
func (fl *FireLedger) Archive(burst uint64, fq *FireQueue) {
	fired := make([]*roaring.Bitmap, len(fq.Areas))
	for ai, list := range fq.Areas {
		if len(list) == 0 {
			continue
		}
		bm := roaring.New()
		for _, fn := range list {
			bm.Add(fn.ID)
		}
		fired[ai] = bm
	}
	slot := (fl.head + fl.n) % fl.Cap
	if fl.n == fl.Cap {
		fl.head = (fl.head + 1) % fl.Cap
	} else {
		fl.n++
	}
	fl.frames[slot] = LedgerFrame{Burst: burst, Fired: fired}
}

// Len returns the number of retained frames.
func (fl *FireLedger) Len() int {
	return fl.n
}

// Frame returns the i-th retained frame, oldest first.
func (fl *FireLedger) Frame(i int) *LedgerFrame {
	if i < 0 || i >= fl.n {
		return nil
	}
	return &fl.frames[(fl.head+i)%fl.Cap]
}

// Last returns the newest frame, or nil when empty.
func (fl *FireLedger) Last() *LedgerFrame {
	if fl.n == 0 {
		return nil
	}
	return fl.Frame(fl.n - 1)
}

// FiredWithin reports whether neuron id of area ai fired in any of the last
// win frames, returning the burst index of the most recent such frame.
func (fl *FireLedger) FiredWithin(ai int, id uint32, win int) (uint64, bool) {
	lo := fl.n - win
	if lo < 0 {
		lo = 0
	}
	for i := fl.n - 1; i >= lo; i-- {
		if fr := fl.Frame(i); fr.Contains(ai, id) {
			return fr.Burst, true
		}
	}
	return 0, false
}

// FireCount returns how many of the last win frames contain neuron id of
// area ai.
func (fl *FireLedger) FireCount(ai int, id uint32, win int) int {
	lo := fl.n - win
	if lo < 0 {
		lo = 0
	}
	n := 0
	for i := lo; i < fl.n; i++ {
		if fl.Frame(i).Contains(ai, id) {
			n++
		}
	}
	return n
}
