// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package burst

import (
	"github.com/emer/etable/v2/etensor"
)

// Snapshot is a read-only copy of one area's post-burst activity, for
// motor pollers and visualization.  Building it takes the connectome guard
// briefly; the returned tensors are private copies the caller may keep.
type Snapshot struct {
	Burst uint64           `desc:"burst index the snapshot reflects"`
	Area  string           `desc:"area name"`
	Fired *etensor.Float32 `desc:"3D grid, 1 at voxels whose neuron fired last burst"`
	Pot   *etensor.Float32 `desc:"3D grid of membrane potentials"`
}

// SnapshotArea captures the named area's state after the last completed
// burst.  Returns nil for an unknown area.
func (cn *Connectome) SnapshotArea(name string) *Snapshot {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	ar, ok := cn.byName[name]
	if !ok {
		return nil
	}
	shp := []int{int(ar.Dims.Z), int(ar.Dims.Y), int(ar.Dims.X)}
	names := []string{"Z", "Y", "X"}
	sn := &Snapshot{
		Burst: cn.burst,
		Area:  ar.Name,
		Fired: etensor.NewFloat32(shp, nil, names),
		Pot:   etensor.NewFloat32(shp, nil, names),
	}
	nc := cn.Neurons.Cols()
	for _, fn := range cn.queue.Areas[ar.Idx] {
		sn.Fired.Set([]int{int(fn.Pos.Z), int(fn.Pos.Y), int(fn.Pos.X)}, 1)
	}
	for id := 0; id < cn.Neurons.Cap(); id++ {
		if !nc.Valid[id] || int(nc.Area[id]) != ar.Idx {
			continue
		}
		p := nc.Pos[id]
		sn.Pot.Set([]int{int(p.Z), int(p.Y), int(p.X)}, nc.Pot[id])
	}
	return sn
}

// FiredLastBurst returns a copy of the named area's fired ids from the
// last completed burst, ascending.
func (cn *Connectome) FiredLastBurst(name string) []uint32 {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	ar, ok := cn.byName[name]
	if !ok {
		return nil
	}
	out := make([]uint32, 0, len(cn.queue.Areas[ar.Idx]))
	for _, fn := range cn.queue.Areas[ar.Idx] {
		out = append(out, fn.ID)
	}
	return out
}
