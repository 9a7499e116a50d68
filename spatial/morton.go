// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package spatial provides Morton (Z-order) encoding of 3D voxel coordinates
and a compressed-bitmap occupancy index over them, used for locality-aware
neighborhood queries during synaptogenesis.
*/
package spatial

import "github.com/goki/mat32"

// MortonBits is the number of bits encoded per axis: coordinates must be
// in [0, 2^21).  Three 21-bit axes interleave into a 63-bit code.
const MortonBits = 21

// MortonMax is the exclusive upper bound on any single coordinate.
const MortonMax = 1 << MortonBits

// part1by2 spreads the low 21 bits of v so each bit lands 3 positions apart.
func part1by2(v uint64) uint64 {
	v &= 0x1fffff
	v = (v | v<<32) & 0x1f00000000ffff
	v = (v | v<<16) & 0x1f0000ff0000ff
	v = (v | v<<8) & 0x100f00f00f00f00f
	v = (v | v<<4) & 0x10c30c30c30c30c3
	v = (v | v<<2) & 0x1249249249249249
	return v
}

// compact1by2 is the inverse of part1by2.
func compact1by2(v uint64) uint64 {
	v &= 0x1249249249249249
	v = (v | v>>2) & 0x10c30c30c30c30c3
	v = (v | v>>4) & 0x100f00f00f00f00f
	v = (v | v>>8) & 0x1f0000ff0000ff
	v = (v | v>>16) & 0x1f00000000ffff
	v = (v | v>>32) & 0x1fffff
	return v
}

// MortonEncode interleaves the bits of a non-negative voxel coordinate into
// a single Z-order code: bit i of x, y, z land at positions 3i, 3i+1, 3i+2.
// Coordinates at or above MortonMax wrap into the 21-bit field.
func MortonEncode(loc mat32.Vec3i) uint64 {
	return part1by2(uint64(uint32(loc.X))) |
		part1by2(uint64(uint32(loc.Y)))<<1 |
		part1by2(uint64(uint32(loc.Z)))<<2
}

// MortonDecode recovers the voxel coordinate from a Z-order code.
func MortonDecode(code uint64) mat32.Vec3i {
	return mat32.Vec3i{
		X: int32(compact1by2(code)),
		Y: int32(compact1by2(code >> 1)),
		Z: int32(compact1by2(code >> 2)),
	}
}
