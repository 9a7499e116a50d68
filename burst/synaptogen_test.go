// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package burst

import (
	"testing"

	"github.com/goki/mat32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bareConnectome builds the given areas with no construction rules.
func bareConnectome(t *testing.T, areas ...AreaSpec) *Connectome {
	t.Helper()
	cn, err := NewConnectome(&Genome{Seed: 1, Areas: areas}, nil)
	require.NoError(t, err)
	return cn
}

func TestStrictZeroCommit(t *testing.T) {
	prm := relayParams()
	cn := bareConnectome(t,
		AreaSpec{Name: "a", Dims: mat32.Vec3i{X: 2, Y: 1, Z: 1}, Model: ModelLIF, Params: prm},
		AreaSpec{Name: "b", Dims: mat32.Vec3i{X: 2, Y: 1, Z: 1}, Model: ModelLIF, Params: prm},
	)
	// offset +1 on x is valid for source x=0 but out of range for x=1
	rl := &RuleSpec{
		Src: "a", Dst: "b", Morphology: MorphVectors,
		Offsets: []mat32.Vec3i{{X: 1, Y: 0, Z: 0}},
		Weight:  1, PSP: 1, Type: 1, Strict: true,
	}
	err := cn.applyRule(rl)
	require.Error(t, err)
	var se *SynaptogenesisError
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, 0, cn.Synapses.Len(), "strict failure must commit nothing")

	// non-strict drops the out-of-range candidate and keeps the rest
	rl.Strict = false
	require.NoError(t, cn.applyRule(rl))
	assert.Equal(t, 1, cn.Synapses.Len())
}

func TestStrictFailureAtConstruction(t *testing.T) {
	prm := relayParams()
	gn := &Genome{
		Seed: 1,
		Areas: []AreaSpec{
			{Name: "a", Dims: mat32.Vec3i{X: 2, Y: 1, Z: 1}, Model: ModelLIF, Params: prm},
			{Name: "b", Dims: mat32.Vec3i{X: 2, Y: 1, Z: 1}, Model: ModelLIF, Params: prm},
		},
		Rules: []RuleSpec{{
			Src: "a", Dst: "b", Morphology: MorphVectors,
			Offsets: []mat32.Vec3i{{X: 1, Y: 0, Z: 0}},
			Weight:  1, PSP: 1, Type: 1, Strict: true,
		}},
	}
	_, err := NewConnectome(gn, nil)
	assert.Error(t, err)
}

func TestBlockRuleSynapses(t *testing.T) {
	prm := relayParams()
	cn := bareConnectome(t,
		AreaSpec{Name: "big", Dims: mat32.Vec3i{X: 4, Y: 1, Z: 1}, Model: ModelLIF, Params: prm},
		AreaSpec{Name: "small", Dims: mat32.Vec3i{X: 2, Y: 1, Z: 1}, Model: ModelLIF, Params: prm},
	)
	require.NoError(t, cn.applyRule(&RuleSpec{
		Src: "big", Dst: "small", Morphology: MorphBlock,
		Scale: 2, Axis: 0, Weight: 1, PSP: 1, Type: 1,
	}))
	// x 0,1 -> 0 and x 2,3 -> 1
	assert.Equal(t, 4, cn.Synapses.Len())
	sc := cn.Synapses.Cols()
	small, _ := cn.AreaByName("small")
	byDst := map[int32]int{}
	nc := cn.Neurons.Cols()
	for sid := 0; sid < cn.Synapses.Cap(); sid++ {
		if sc.Valid[sid] {
			require.Equal(t, uint16(small.Idx), nc.Area[sc.Dst[sid]])
			byDst[nc.Pos[sc.Dst[sid]].X]++
		}
	}
	assert.Equal(t, map[int32]int{0: 2, 1: 2}, byDst)
}

func TestAttractivitySampling(t *testing.T) {
	prm := relayParams()
	cn := bareConnectome(t,
		AreaSpec{Name: "a", Dims: mat32.Vec3i{X: 10, Y: 10, Z: 1}, Model: ModelLIF, Params: prm},
		AreaSpec{Name: "b", Dims: mat32.Vec3i{X: 10, Y: 10, Z: 1}, Model: ModelLIF, Params: prm},
	)
	require.NoError(t, cn.applyRule(&RuleSpec{
		Src: "a", Dst: "b", Morphology: MorphProjector,
		Weight: 1, PSP: 1, Type: 1, Attract: 50,
	}))
	n := cn.Synapses.Len()
	assert.Greater(t, n, 20, "about half of 100 candidates should commit")
	assert.Less(t, n, 80)
}

func TestSynapseRetainsNeuronIDs(t *testing.T) {
	prm := relayParams()
	cn := bareConnectome(t,
		AreaSpec{Name: "a", Dims: mat32.Vec3i{X: 1, Y: 1, Z: 1}, Model: ModelLIF, Params: prm},
		AreaSpec{Name: "b", Dims: mat32.Vec3i{X: 1, Y: 1, Z: 1}, Model: ModelLIF, Params: prm},
	)
	require.NoError(t, cn.applyRule(&RuleSpec{
		Src: "a", Dst: "b", Morphology: MorphProjector,
		Weight: 1, PSP: 1, Type: 1,
	}))
	require.Equal(t, 1, cn.Synapses.Len())
	assert.Equal(t, int32(1), cn.neuronIDs.Refs(0))
	assert.Equal(t, int32(1), cn.neuronIDs.Refs(1))
	cn.removeSynapse(0)
	assert.Equal(t, int32(0), cn.neuronIDs.Refs(0))
	assert.Equal(t, int32(0), cn.neuronIDs.Refs(1))
}
