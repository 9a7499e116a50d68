// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package morph implements the connectivity morphology rules that map a source
neuron position to candidate destination positions during synaptogenesis.

Every rule is a pure function over voxel coordinates: no storage access, no
side effects, and deterministic output ordering.  Randomized is the one
exception to determinism, and it takes its generator as an explicit argument
so the caller controls the seed.

Out-of-bounds candidates are never returned: each rule bounds-checks against
the destination dimensions and emits only valid voxels.  Whether a candidate
voxel actually holds a neuron is the caller's concern (the synaptogenesis
engine resolves candidates through the spatial index).
*/
package morph

import (
	"math/rand"

	"github.com/goki/mat32"
)

// Axis selects a coordinate axis for rules that operate along one axis.
type Axis int32

const (
	X Axis = iota
	Y
	Z
	AxisN
)

func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	}
	return "?"
}

func axisGet(v mat32.Vec3i, a Axis) int32 {
	switch a {
	case X:
		return v.X
	case Y:
		return v.Y
	}
	return v.Z
}

func axisSet(v *mat32.Vec3i, a Axis, c int32) {
	switch a {
	case X:
		v.X = c
	case Y:
		v.Y = c
	case Z:
		v.Z = c
	}
}

func inBounds(p, dims mat32.Vec3i) bool {
	return p.X >= 0 && p.X < dims.X &&
		p.Y >= 0 && p.Y < dims.Y &&
		p.Z >= 0 && p.Z < dims.Z
}

// ProjectorParams modify the proportional projection mapping.
type ProjectorParams struct {
	Transpose   *[3]Axis `desc:"optional axis permutation applied to shapes and the source position before projecting"`
	LastLayerOf Axis     `desc:"axis whose projection collapses to layer 0 -- the last-layer projection used for output areas"`
	UseLast     bool     `desc:"enable LastLayerOf"`
}

// Projector maps src proportionally from srcDims onto dstDims, axis by axis,
// and returns the cartesian product of the per-axis voxel sets.
//
// Per axis: source larger than destination maps many-to-one by
// floor(loc/ratio); source smaller maps one-to-many (every destination voxel
// that floors back to loc); equal sizes map identity.  An axis with no valid
// projection empties the whole result.
func Projector(src, srcDims, dstDims mat32.Vec3i, prm ProjectorParams) []mat32.Vec3i {
	if !inBounds(src, srcDims) {
		return nil
	}
	ss := [3]int32{srcDims.X, srcDims.Y, srcDims.Z}
	ds := [3]int32{dstDims.X, dstDims.Y, dstDims.Z}
	loc := [3]int32{src.X, src.Y, src.Z}
	if prm.Transpose != nil {
		tp := *prm.Transpose
		ss = [3]int32{ss[tp[0]], ss[tp[1]], ss[tp[2]]}
		ds = [3]int32{ds[tp[0]], ds[tp[1]], ds[tp[2]]}
		loc = [3]int32{loc[tp[0]], loc[tp[1]], loc[tp[2]]}
	}
	var vox [3][]int32
	for ax := 0; ax < 3; ax++ {
		last := prm.UseLast && Axis(ax) == prm.LastLayerOf
		vox[ax] = projectAxis(loc[ax], ss[ax], ds[ax], last)
		if len(vox[ax]) == 0 {
			return nil
		}
	}
	out := make([]mat32.Vec3i, 0, len(vox[0])*len(vox[1])*len(vox[2]))
	for _, x := range vox[0] {
		for _, y := range vox[1] {
			for _, z := range vox[2] {
				p := mat32.Vec3i{X: x, Y: y, Z: z}
				if inBounds(p, dstDims) {
					out = append(out, p)
				}
			}
		}
	}
	return out
}

func projectAxis(loc, srcSize, dstSize int32, lastLayer bool) []int32 {
	if lastLayer {
		return []int32{0}
	}
	switch {
	case srcSize > dstSize:
		ratio := float32(srcSize) / float32(dstSize)
		tgt := int32(float32(loc) / ratio)
		if tgt < dstSize {
			return []int32{tgt}
		}
		return nil
	case srcSize < dstSize:
		ratio := float32(dstSize) / float32(srcSize)
		var vox []int32
		for dv := int32(0); dv < dstSize; dv++ {
			if int32(float32(dv)/ratio) == loc {
				vox = append(vox, dv)
			}
		}
		return vox
	default:
		if loc < dstSize {
			return []int32{loc}
		}
		return nil
	}
}

// BlockConnection divides the coordinate on one axis by scale, mapping a
// block of scale source voxels onto a single destination voxel.  Returns
// false when the mapped voxel is outside dstDims.
func BlockConnection(src mat32.Vec3i, scale int32, axis Axis, dstDims mat32.Vec3i) (mat32.Vec3i, bool) {
	if scale <= 0 {
		return mat32.Vec3i{}, false
	}
	dst := src
	axisSet(&dst, axis, axisGet(src, axis)/scale)
	if !inBounds(dst, dstDims) {
		return mat32.Vec3i{}, false
	}
	return dst, true
}

// Expander is the inverse of BlockConnection: the source voxel fans out to
// the contiguous block [c*scale, c*scale+scale) on the axis.
func Expander(src mat32.Vec3i, scale int32, axis Axis, dstDims mat32.Vec3i) []mat32.Vec3i {
	if scale <= 0 {
		return nil
	}
	base := axisGet(src, axis) * scale
	out := make([]mat32.Vec3i, 0, scale)
	for i := int32(0); i < scale; i++ {
		dst := src
		axisSet(&dst, axis, base+i)
		if inBounds(dst, dstDims) {
			out = append(out, dst)
		}
	}
	return out
}

// Vectors translates src by each offset, keeping in-bounds results in
// offset order.
func Vectors(src mat32.Vec3i, offsets []mat32.Vec3i, dstDims mat32.Vec3i) []mat32.Vec3i {
	out := make([]mat32.Vec3i, 0, len(offsets))
	for _, off := range offsets {
		dst := mat32.Vec3i{X: src.X + off.X, Y: src.Y + off.Y, Z: src.Z + off.Z}
		if inBounds(dst, dstDims) {
			out = append(out, dst)
		}
	}
	return out
}

// Reducer maps each set bit of the axis coordinate to the destination
// coordinate equal to the bit index: x=5 (0b101) yields x in {0, 2}.  The
// cartesian product across axes is returned; a zero coordinate contributes
// the single value 0.
func Reducer(src, dstDims mat32.Vec3i) []mat32.Vec3i {
	xs := reduceAxis(src.X, dstDims.X)
	ys := reduceAxis(src.Y, dstDims.Y)
	zs := reduceAxis(src.Z, dstDims.Z)
	if len(xs) == 0 || len(ys) == 0 || len(zs) == 0 {
		return nil
	}
	out := make([]mat32.Vec3i, 0, len(xs)*len(ys)*len(zs))
	for _, x := range xs {
		for _, y := range ys {
			for _, z := range zs {
				out = append(out, mat32.Vec3i{X: x, Y: y, Z: z})
			}
		}
	}
	return out
}

func reduceAxis(coord, dstSize int32) []int32 {
	if coord == 0 {
		if dstSize > 0 {
			return []int32{0}
		}
		return nil
	}
	var out []int32
	for bit := int32(0); coord>>bit != 0; bit++ {
		if coord>>bit&1 == 1 && bit < dstSize {
			out = append(out, bit)
		}
	}
	return out
}

// Randomized returns n destination voxels drawn uniformly from dstDims using
// the supplied generator.  Duplicates are possible; determinism is entirely
// the seed's.
func Randomized(n int, dstDims mat32.Vec3i, rnd *rand.Rand) []mat32.Vec3i {
	if n <= 0 || dstDims.X <= 0 || dstDims.Y <= 0 || dstDims.Z <= 0 {
		return nil
	}
	out := make([]mat32.Vec3i, n)
	for i := range out {
		out[i] = mat32.Vec3i{
			X: rnd.Int31n(dstDims.X),
			Y: rnd.Int31n(dstDims.Y),
			Z: rnd.Int31n(dstDims.Z),
		}
	}
	return out
}
