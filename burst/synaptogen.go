// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package burst

import (
	"fmt"

	"github.com/emer/burst/morph"
	"github.com/emer/burst/store"
	"github.com/goki/mat32"
)

// applyRule grows the synapses one rule declares over its area pair.
// Candidates are staged first and committed only at the end: in strict
// mode any out-of-range destination aborts the whole pair with zero
// synapses committed, so a failed rule is invisible in the connectome.
// Non-strict rules silently drop out-of-range candidates.
//
// Cost scales with the source population: each source neuron computes its
// candidate voxels through the pure morphology function, then resolves
// them to neurons through the destination's spatial index.
func (cn *Connectome) applyRule(rl *RuleSpec) error {
	src := cn.byName[rl.Src]
	dst := cn.byName[rl.Dst]
	nc := cn.Neurons.Cols()

	var staged []store.Synapse
	for id := 0; id < cn.Neurons.Cap(); id++ {
		if !nc.Valid[id] || int(nc.Area[id]) != src.Idx {
			continue
		}
		pos := nc.Pos[id]
		cands, oob := cn.ruleCandidates(rl, pos, dst.Dims)
		if oob && rl.Strict {
			return &SynaptogenesisError{
				Src: rl.Src, Dst: rl.Dst,
				Msg: fmt.Sprintf("out-of-range destination for source %v", pos),
			}
		}
		for _, cp := range cands {
			tid, ok := dst.NeuronAt(cp)
			if !ok {
				continue
			}
			if rl.Attract > 0 && rl.Attract < 100 && cn.rnd.Intn(100) >= rl.Attract {
				continue
			}
			staged = append(staged, store.Synapse{
				Src:       uint32(id),
				Dst:       tid,
				Weight:    rl.Weight,
				PSP:       rl.PSP,
				Type:      rl.Type,
				CreatedAt: cn.burst,
			})
		}
	}
	return cn.commitStaged(rl.Src, rl.Dst, staged)
}

// ruleCandidates computes the destination voxels one source position maps
// to under the rule, reporting whether any candidate fell out of range.
func (cn *Connectome) ruleCandidates(rl *RuleSpec, pos, dstDims mat32.Vec3i) ([]mat32.Vec3i, bool) {
	switch rl.Morphology {
	case MorphProjector:
		return morph.Projector(pos, cn.byName[rl.Src].Dims, dstDims, rl.Projector), false
	case MorphBlock:
		dp, ok := morph.BlockConnection(pos, rl.Scale, rl.Axis, dstDims)
		if !ok {
			return nil, true
		}
		return []mat32.Vec3i{dp}, false
	case MorphExpander:
		out := morph.Expander(pos, rl.Scale, rl.Axis, dstDims)
		return out, len(out) < int(rl.Scale)
	case MorphVectors:
		out := morph.Vectors(pos, rl.Offsets, dstDims)
		return out, len(out) < len(rl.Offsets)
	case MorphPatterns:
		return morph.Patterns(pos, rl.Patterns, dstDims), false
	case MorphReducer:
		out := morph.Reducer(pos, dstDims)
		return out, len(out) < reducerFanout(pos)
	case MorphRandomized:
		return morph.Randomized(rl.RandomN, dstDims, cn.rnd), false
	}
	return nil, false
}

// reducerFanout is the candidate count Reducer would produce with
// unbounded destination dims, for strict-mode truncation detection.
func reducerFanout(pos mat32.Vec3i) int {
	n := 1
	for _, c := range [3]int32{pos.X, pos.Y, pos.Z} {
		bits := 0
		for v := c; v != 0; v >>= 1 {
			bits += int(v & 1)
		}
		if bits > 1 {
			n *= bits
		}
	}
	return n
}

// commitStaged materializes staged synapses.  A storage failure mid-commit
// rolls the already-committed portion back, keeping the pair atomic.
func (cn *Connectome) commitStaged(srcName, dstName string, staged []store.Synapse) error {
	done := make([]uint32, 0, len(staged))
	for _, s := range staged {
		id, err := cn.addSynapse(s)
		if err != nil {
			for _, rid := range done {
				cn.removeSynapse(rid)
			}
			return &SynaptogenesisError{Src: srcName, Dst: dstName, Msg: err.Error()}
		}
		done = append(done, id)
	}
	return nil
}
