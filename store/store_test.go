// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"errors"
	"testing"

	"github.com/goki/mat32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendFromString(t *testing.T) {
	for s, want := range map[string]Backend{"": Heap, "heap": Heap, "fixed": Fixed, "arena": Arena} {
		b, err := BackendFromString(s)
		require.NoError(t, err)
		assert.Equal(t, want, b)
	}
	_, err := BackendFromString("mmap")
	assert.Error(t, err)
}

func testNeuron(area uint16, pos mat32.Vec3i) Neuron {
	return Neuron{
		Pos:       pos,
		Area:      area,
		Threshold: 1.5,
		Leak:      0.1,
		Excite:    1,
	}
}

func TestNeuronStoreBackends(t *testing.T) {
	for _, kind := range []Backend{Heap, Fixed, Arena} {
		t.Run(kind.String(), func(t *testing.T) {
			ns, err := NewNeuronStore(kind, 4)
			require.NoError(t, err)
			require.NoError(t, ns.Put(0, testNeuron(1, mat32.Vec3i{X: 1, Y: 2, Z: 3})))
			require.NoError(t, ns.Put(2, testNeuron(1, mat32.Vec3i{X: 0, Y: 0, Z: 1})))
			assert.Equal(t, 2, ns.Len())
			assert.True(t, ns.Valid(0))
			assert.False(t, ns.Valid(1))

			cols := ns.Cols()
			assert.Equal(t, float32(1.5), cols.Thr[0])
			assert.Equal(t, mat32.Vec3i{X: 1, Y: 2, Z: 3}, cols.Pos[0])
			assert.Equal(t, float32(0), cols.Pot[0]) // dynamic state zeroed to rest

			ns.Invalidate(0)
			assert.False(t, ns.Valid(0))
			assert.Equal(t, 1, ns.Len())
			ns.Invalidate(0) // double invalidate is a no-op
			assert.Equal(t, 1, ns.Len())
		})
	}
}

func TestFixedNeuronExhaustion(t *testing.T) {
	for _, kind := range []Backend{Fixed, Arena} {
		ns, err := NewNeuronStore(kind, 2)
		require.NoError(t, err)
		require.NoError(t, ns.Put(1, testNeuron(0, mat32.Vec3i{})))
		err = ns.Put(2, testNeuron(0, mat32.Vec3i{}))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrStorageExhausted))
		// existing data untouched
		assert.True(t, ns.Valid(1))
		assert.Equal(t, 1, ns.Len())
	}
}

func TestHeapNeuronGrowth(t *testing.T) {
	ns, err := NewNeuronStore(Heap, 2)
	require.NoError(t, err)
	require.NoError(t, ns.Put(0, testNeuron(0, mat32.Vec3i{X: 1, Y: 0, Z: 0})))
	require.NoError(t, ns.Put(100, testNeuron(0, mat32.Vec3i{X: 2, Y: 0, Z: 0})))
	assert.GreaterOrEqual(t, ns.Cap(), 101)
	// growth preserves existing rows
	assert.True(t, ns.Valid(0))
	assert.Equal(t, mat32.Vec3i{X: 1, Y: 0, Z: 0}, ns.Cols().Pos[0])
}

func TestSynapseStoreBySource(t *testing.T) {
	for _, kind := range []Backend{Heap, Fixed, Arena} {
		t.Run(kind.String(), func(t *testing.T) {
			ss, err := NewSynapseStore(kind, 8)
			require.NoError(t, err)
			require.NoError(t, ss.Put(0, Synapse{Src: 5, Dst: 9, Weight: 1, PSP: 1, Type: 1}))
			require.NoError(t, ss.Put(3, Synapse{Src: 5, Dst: 10, Weight: 1, PSP: 1, Type: -1}))
			require.NoError(t, ss.Put(1, Synapse{Src: 6, Dst: 9, Weight: 1, PSP: 1, Type: 1}))

			assert.Equal(t, []uint32{0, 3}, ss.BySource(5))
			assert.Equal(t, []uint32{1}, ss.BySource(6))
			assert.Nil(t, ss.BySource(7))

			ss.Invalidate(0)
			assert.Equal(t, []uint32{3}, ss.BySource(5))
			assert.Equal(t, 2, ss.Len())

			// reusing a row rebinds the source index
			require.NoError(t, ss.Put(3, Synapse{Src: 6, Dst: 11, Weight: 1, PSP: 1, Type: 1}))
			assert.Nil(t, ss.BySource(5))
			assert.Equal(t, []uint32{1, 3}, ss.BySource(6))
		})
	}
}

func TestIDArenaReuse(t *testing.T) {
	ia := NewIDArena(2)
	a := ia.Alloc()
	b := ia.Alloc()
	assert.Equal(t, uint32(0), a)
	assert.Equal(t, uint32(1), b)

	ia.Release(a, 10)
	// lag not elapsed: fresh id instead of reuse
	ia.Reclaim(11)
	assert.Equal(t, uint32(2), ia.Alloc())
	// lag elapsed: quarantined id comes back
	ia.Reclaim(12)
	assert.Equal(t, a, ia.Alloc())
}

func TestIDArenaRefcountBlocksReclaim(t *testing.T) {
	ia := NewIDArena(1)
	id := ia.Alloc()
	ia.Retain(id)
	ia.Retain(id)
	ia.Release(id, 5)

	ia.Reclaim(20)
	assert.Equal(t, 1, ia.Pending(), "refcounted id must stay quarantined")

	ia.Unref(id)
	ia.Reclaim(21)
	assert.Equal(t, 1, ia.Pending())

	ia.Unref(id)
	ia.Reclaim(22)
	assert.Equal(t, 0, ia.Pending())
	assert.Equal(t, id, ia.Alloc())
}
