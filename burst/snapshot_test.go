// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package burst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotArea(t *testing.T) {
	cn, err := NewConnectome(twoAreaGenome(1), nil)
	require.NoError(t, err)
	cn.AdvanceBurst([]Stimulus{stim("sensory", 1, 0, 0, 1)})

	sn := cn.SnapshotArea("sensory")
	require.NotNil(t, sn)
	assert.Equal(t, uint64(1), sn.Burst)
	assert.Equal(t, []int{1, 2, 2}, sn.Fired.Shp, "z,y,x layout")
	assert.Equal(t, float32(1), sn.Fired.Value([]int{0, 0, 1}))
	assert.Equal(t, float32(0), sn.Fired.Value([]int{0, 0, 0}))

	assert.Nil(t, cn.SnapshotArea("nope"))
}

func TestSnapshotIsCopy(t *testing.T) {
	cn, err := NewConnectome(twoAreaGenome(1), nil)
	require.NoError(t, err)
	cn.AdvanceBurst([]Stimulus{stim("sensory", 0, 0, 0, 1)})
	sn := cn.SnapshotArea("sensory")
	require.NotNil(t, sn)

	// advancing the simulation must not mutate an existing snapshot
	cn.AdvanceBurst(nil)
	assert.Equal(t, float32(1), sn.Fired.Value([]int{0, 0, 0}))
	assert.Equal(t, uint64(1), sn.Burst)
}
