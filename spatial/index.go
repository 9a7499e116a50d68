// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spatial

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/goki/mat32"
)

// SourceFunc enumerates the current neuron placements of an area, for
// rebuilding a stale index.  It must call visit once per neuron.
type SourceFunc func(visit func(id uint32, loc mat32.Vec3i))

// Index is the per-area spatial occupancy index: a compressed bitmap of
// occupied voxels keyed by Morton code, plus the neuron ids at each voxel.
//
// Structural changes made outside Add / Remove (bulk loads, neurogenesis
// batches) should MarkDirty instead of updating incrementally -- the index
// rebuilds itself from its source on the next query.
type Index struct {
	occ   *roaring64.Bitmap
	vox   map[uint64][]uint32
	src   SourceFunc
	dirty bool
}

// NewIndex returns an empty index that rebuilds from src when stale.
// A nil src is allowed for purely incremental use.
func NewIndex(src SourceFunc) *Index {
	return &Index{
		occ: roaring64.New(),
		vox: make(map[uint64][]uint32),
		src: src,
	}
}

// MarkDirty flags the index as stale: the next query rebuilds it in full
// from the source enumerator.
func (ix *Index) MarkDirty() {
	ix.dirty = true
}

func (ix *Index) ensure() {
	if !ix.dirty {
		return
	}
	ix.occ.Clear()
	ix.vox = make(map[uint64][]uint32)
	ix.dirty = false
	if ix.src == nil {
		return
	}
	ix.src(func(id uint32, loc mat32.Vec3i) {
		ix.add(id, loc)
	})
}

func (ix *Index) add(id uint32, loc mat32.Vec3i) {
	code := MortonEncode(loc)
	ix.occ.Add(code)
	ix.vox[code] = append(ix.vox[code], id)
}

// Add records neuron id at voxel loc.  Multiple neurons may share a voxel.
func (ix *Index) Add(id uint32, loc mat32.Vec3i) {
	ix.ensure()
	ix.add(id, loc)
}

// Remove deletes neuron id from voxel loc.  Removing the last neuron at a
// voxel clears its occupancy bit.
func (ix *Index) Remove(id uint32, loc mat32.Vec3i) {
	ix.ensure()
	code := MortonEncode(loc)
	ids, ok := ix.vox[code]
	if !ok {
		return
	}
	for i, v := range ids {
		if v == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(ix.vox, code)
		ix.occ.Remove(code)
	} else {
		ix.vox[code] = ids
	}
}

// Has reports whether any neuron occupies voxel loc.
func (ix *Index) Has(loc mat32.Vec3i) bool {
	ix.ensure()
	return ix.occ.Contains(MortonEncode(loc))
}

// At returns the neuron ids at voxel loc, in insertion order.
// The returned slice is owned by the index and must not be modified.
func (ix *Index) At(loc mat32.Vec3i) []uint32 {
	ix.ensure()
	return ix.vox[MortonEncode(loc)]
}

// Len returns the number of occupied voxels.
func (ix *Index) Len() int {
	ix.ensure()
	return int(ix.occ.GetCardinality())
}

// Region calls visit for every occupied voxel inside the inclusive box
// [min, max], in Morton-code order.  Returning false from visit stops the
// scan early.
func (ix *Index) Region(min, max mat32.Vec3i, visit func(loc mat32.Vec3i, ids []uint32) bool) {
	ix.ensure()
	it := ix.occ.Iterator()
	it.AdvanceIfNeeded(MortonEncode(min))
	hi := MortonEncode(max)
	for it.HasNext() {
		code := it.Next()
		if code > hi {
			return
		}
		loc := MortonDecode(code)
		if loc.X < min.X || loc.X > max.X ||
			loc.Y < min.Y || loc.Y > max.Y ||
			loc.Z < min.Z || loc.Z > max.Z {
			continue
		}
		if !visit(loc, ix.vox[code]) {
			return
		}
	}
}

// Neighbors returns the neuron ids within Chebyshev distance radius of loc,
// excluding loc itself, in Morton-code order.
func (ix *Index) Neighbors(loc mat32.Vec3i, radius int32) []uint32 {
	var out []uint32
	min := mat32.Vec3i{X: loc.X - radius, Y: loc.Y - radius, Z: loc.Z - radius}
	if min.X < 0 {
		min.X = 0
	}
	if min.Y < 0 {
		min.Y = 0
	}
	if min.Z < 0 {
		min.Z = 0
	}
	max := mat32.Vec3i{X: loc.X + radius, Y: loc.Y + radius, Z: loc.Z + radius}
	ix.Region(min, max, func(vl mat32.Vec3i, ids []uint32) bool {
		if vl == loc {
			return true
		}
		out = append(out, ids...)
		return true
	})
	return out
}
