// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package burst

import (
	"github.com/emer/burst/spatial"
	"github.com/goki/mat32"
)

// CorticalArea is one populated region of the connectome.  Dimensions are
// fixed at creation; the population can change afterwards only through the
// pattern detector (memory areas) or explicit growth, both of which go
// through the connectome.
type CorticalArea struct {
	Name   string            `desc:"unique area name"`
	Idx    int               `inactive:"+" desc:"position in the connectome registry"`
	Dims   mat32.Vec3i       `inactive:"+" desc:"voxel dimensions, fixed after creation"`
	Model  Model             `desc:"neuron dynamics for the area"`
	Params NeuronParams      `view:"inline" desc:"parameters stamped into the area's neurons"`
	Memory bool              `desc:"populated at runtime by the pattern detector"`
	Tags   map[string]string `desc:"free-form metadata"`

	// Index is the spatial occupancy index over the area's neurons.
	Index *spatial.Index `view:"-"`
}

// Size returns the voxel count of the area.
func (ar *CorticalArea) Size() int {
	return int(ar.Dims.X) * int(ar.Dims.Y) * int(ar.Dims.Z)
}

// Contains reports whether pos is inside the area's dimensions.
func (ar *CorticalArea) Contains(pos mat32.Vec3i) bool {
	return pos.X >= 0 && pos.X < ar.Dims.X &&
		pos.Y >= 0 && pos.Y < ar.Dims.Y &&
		pos.Z >= 0 && pos.Z < ar.Dims.Z
}

// NeuronAt returns the neuron id at the given voxel.  When multiple
// neurons share a voxel the lowest-inserted wins.
func (ar *CorticalArea) NeuronAt(pos mat32.Vec3i) (uint32, bool) {
	if !ar.Contains(pos) {
		return 0, false
	}
	ids := ar.Index.At(pos)
	if len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}
