// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

// IDArena hands out row ids, reusing released ones ahead of fresh growth.
//
// Release does not make an id reusable immediately: reuse is deferred until
// the release is ReclaimLag epochs (bursts) old AND the id's synapse
// refcount has dropped to zero.  The lag keeps in-flight readers of the
// previous epoch from observing an id changing identity under them; the
// refcount keeps a synapse from ever pointing at a recycled neuron.
type IDArena struct {
	ReclaimLag uint64 `def:"2" desc:"epochs a released id stays quarantined before reuse"`

	next    uint32
	free    []uint32
	pending []pendingID
	refs    map[uint32]int32
}

type pendingID struct {
	id    uint32
	epoch uint64
}

// NewIDArena returns an arena with the given reclaim lag.
func NewIDArena(reclaimLag uint64) *IDArena {
	return &IDArena{
		ReclaimLag: reclaimLag,
		refs:       make(map[uint32]int32),
	}
}

// Alloc returns the next id: from the free list when available, otherwise a
// fresh one.
func (ia *IDArena) Alloc() uint32 {
	if n := len(ia.free); n > 0 {
		id := ia.free[n-1]
		ia.free = ia.free[:n-1]
		return id
	}
	id := ia.next
	ia.next++
	return id
}

// Release quarantines id at the given epoch.  It becomes reusable once
// Reclaim observes the lag elapsed and no synapse references remain.
func (ia *IDArena) Release(id uint32, epoch uint64) {
	ia.pending = append(ia.pending, pendingID{id: id, epoch: epoch})
}

// Retain counts one synapse reference to id.
func (ia *IDArena) Retain(id uint32) {
	ia.refs[id]++
}

// Unref drops one synapse reference to id.
func (ia *IDArena) Unref(id uint32) {
	if c := ia.refs[id]; c <= 1 {
		delete(ia.refs, id)
	} else {
		ia.refs[id] = c - 1
	}
}

// Refs returns the live synapse refcount for id.
func (ia *IDArena) Refs(id uint32) int32 {
	return ia.refs[id]
}

// Reclaim moves quarantined ids whose lag has elapsed and whose refcount is
// zero onto the free list.  Called once per epoch, between bursts.
func (ia *IDArena) Reclaim(epoch uint64) int {
	kept := ia.pending[:0]
	n := 0
	for _, p := range ia.pending {
		if epoch >= p.epoch+ia.ReclaimLag && ia.refs[p.id] == 0 {
			ia.free = append(ia.free, p.id)
			n++
		} else {
			kept = append(kept, p)
		}
	}
	ia.pending = kept
	return n
}

// NextFresh returns the lowest never-allocated id (the high-water mark).
func (ia *IDArena) NextFresh() uint32 {
	return ia.next
}

// Pending returns the number of quarantined ids.
func (ia *IDArena) Pending() int {
	return len(ia.pending)
}
