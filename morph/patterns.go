// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package morph

import (
	"strconv"

	"github.com/goki/mat32"
)

// ElemKind is the per-axis pattern element type.
type ElemKind int32

const (
	// Wildcard matches every coordinate on the axis ("*").
	Wildcard ElemKind = iota

	// Same passes the source coordinate through unchanged ("?").
	Same

	// Not matches every coordinate except the source's ("!").
	Not

	// Exact matches one fixed coordinate.
	Exact

	ElemKindN
)

// Elem is one axis of a pattern.  Val is only meaningful for Exact.
type Elem struct {
	Kind ElemKind `desc:"element type"`
	Val  int32    `desc:"fixed coordinate for Exact elements"`
}

// ElemFromString parses a pattern element as written in genome rules:
// "*" wildcard, "?" same, "!" not, or an integer for exact.  Anything
// unparseable falls back to wildcard.
func ElemFromString(s string) Elem {
	switch s {
	case "*":
		return Elem{Kind: Wildcard}
	case "?":
		return Elem{Kind: Same}
	case "!":
		return Elem{Kind: Not}
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Elem{Kind: Exact, Val: int32(n)}
	}
	return Elem{Kind: Wildcard}
}

// Pattern is one 3D pattern, one element per axis.
type Pattern [3]Elem

// axisRange returns the destination coordinates the element admits on an
// axis of the given size, relative to the source coordinate srcc.
func (el Elem) axisRange(srcc, size int32) []int32 {
	switch el.Kind {
	case Wildcard:
		out := make([]int32, size)
		for i := range out {
			out[i] = int32(i)
		}
		return out
	case Same:
		if srcc < size {
			return []int32{srcc}
		}
		return nil
	case Not:
		out := make([]int32, 0, size)
		for c := int32(0); c < size; c++ {
			if c != srcc {
				out = append(out, c)
			}
		}
		return out
	case Exact:
		if el.Val >= 0 && el.Val < size {
			return []int32{el.Val}
		}
	}
	return nil
}

// Patterns returns the destinations admitted by any of the given patterns
// for source voxel src, in pattern order then coordinate order.  Duplicate
// voxels admitted by multiple patterns are emitted once.
func Patterns(src mat32.Vec3i, pats []Pattern, dstDims mat32.Vec3i) []mat32.Vec3i {
	var out []mat32.Vec3i
	seen := map[mat32.Vec3i]struct{}{}
	for _, pat := range pats {
		xs := pat[0].axisRange(src.X, dstDims.X)
		ys := pat[1].axisRange(src.Y, dstDims.Y)
		zs := pat[2].axisRange(src.Z, dstDims.Z)
		for _, x := range xs {
			for _, y := range ys {
				for _, z := range zs {
					p := mat32.Vec3i{X: x, Y: y, Z: z}
					if _, dup := seen[p]; dup {
						continue
					}
					seen[p] = struct{}{}
					out = append(out, p)
				}
			}
		}
	}
	return out
}
