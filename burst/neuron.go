// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package burst

import (
	"math/rand"

	"github.com/emer/burst/nval"
	"github.com/emer/burst/store"
	"github.com/goki/mat32"
)

// exciteAlways is the excitability fast path: at or above this the
// stochastic gate is skipped entirely and the neuron always fires.
const exciteAlways = 0.999

// NeuronParams are the per-area neuron parameters, stamped into every
// neuron row when the area is populated.
type NeuronParams struct {
	Threshold    float32 `def:"1" desc:"firing threshold on the updated membrane potential"`
	ThrLimit     float32 `def:"0" desc:"upper firing bound -- potentials above it do not fire -- 0 disables"`
	Leak         float32 `def:"0.1" min:"0" desc:"leak coefficient pulling potential toward resting each update"`
	Rest         float32 `def:"0" desc:"resting membrane potential, restored after firing"`
	Excite       float32 `def:"1" min:"0" max:"1" desc:"probability of firing when above threshold -- >= 0.999 always fires"`
	RefracPeriod uint16  `def:"0" desc:"bursts a neuron stays unable to fire after firing"`
	FireLimit    uint16  `def:"0" desc:"max consecutive firing bursts before snooze kicks in -- 0 disables"`
	Snooze       uint16  `def:"0" desc:"extra refractory bursts imposed when the fire limit is hit"`
}

func (np *NeuronParams) Defaults() {
	np.Threshold = 1
	np.ThrLimit = 0
	np.Leak = 0.1
	np.Rest = 0
	np.Excite = 1
	np.RefracPeriod = 0
	np.FireLimit = 0
	np.Snooze = 0
}

func (np *NeuronParams) Update() {
}

// Record converts the params into a storable neuron row at the given
// position.
func (np *NeuronParams) Record(area uint16, pos mat32.Vec3i) store.Neuron {
	return store.Neuron{
		Pos:          pos,
		Area:         area,
		Threshold:    np.Threshold,
		ThrLimit:     np.ThrLimit,
		Leak:         np.Leak,
		Rest:         np.Rest,
		Excite:       np.Excite,
		RefracPeriod: np.RefracPeriod,
		FireLimit:    np.FireLimit,
		Snooze:       np.Snooze,
	}
}

// EvalLIF runs one leaky integrate-and-fire update for neuron id with
// accumulated input in, at burst bi.  Returns whether the neuron fired.
//
// A refractory burst is blocked outright: the candidate input is dropped,
// the stored potential stays untouched, and only the countdown decrements.
// Otherwise the candidate potential integrates input and leak before any
// gating: v' = v + in - leak*(v - rest), clamped through the precision
// layer.  Firing requires v' at threshold (and at or under the upper bound
// when one is set), then passes the stochastic excitability gate.  A fired
// neuron resets to resting potential and starts its refractory countdown;
// hitting the consecutive-fire limit adds the snooze period on top.  Any
// non-firing update resets the consecutive-fire count.
//
// The candidate potential is returned alongside the verdict so the fire
// queue can record the value that actually crossed threshold (the stored
// potential is already reset by then).
func EvalLIF(nc *store.NeuronCols, id uint32, in float32, bi uint64, qt *nval.Quant, rnd *rand.Rand) (bool, float32) {
	if nc.RefracCnt[id] > 0 {
		nc.RefracCnt[id]--
		return false, nc.Pot[id]
	}
	v := qt.Clamp(nc.Pot[id] + in - nc.Leak[id]*(nc.Pot[id]-nc.Rest[id]))
	fired := v >= nc.Thr[id] && (nc.ThrLimit[id] == 0 || v <= nc.ThrLimit[id])
	if fired && nc.Excite[id] < exciteAlways {
		fired = rnd.Float32() < nc.Excite[id]
	}
	if !fired {
		nc.Pot[id] = v
		nc.FireCnt[id] = 0
		return false, v
	}
	nc.Pot[id] = qt.Clamp(nc.Rest[id])
	nc.LastFired[id] = bi
	nc.RefracCnt[id] = nc.RefracPer[id]
	nc.FireCnt[id]++
	if nc.FireLimit[id] > 0 && nc.FireCnt[id] >= nc.FireLimit[id] {
		nc.RefracCnt[id] += nc.Snooze[id]
		nc.FireCnt[id] = 0
	}
	return true, v
}

// EvalRelay runs one relay update: the neuron fires whenever its input
// meets threshold, with no integration, leak, or potential carry-over.
// Refractory still gates firing so relay areas can rate-limit.
func EvalRelay(nc *store.NeuronCols, id uint32, in float32, bi uint64, qt *nval.Quant, rnd *rand.Rand) (bool, float32) {
	in = qt.Clamp(in)
	if nc.RefracCnt[id] > 0 {
		nc.RefracCnt[id]--
		return false, in
	}
	fired := in >= nc.Thr[id]
	if fired && nc.Excite[id] < exciteAlways {
		fired = rnd.Float32() < nc.Excite[id]
	}
	if !fired {
		nc.FireCnt[id] = 0
		return false, in
	}
	nc.LastFired[id] = bi
	nc.RefracCnt[id] = nc.RefracPer[id]
	nc.FireCnt[id]++
	if nc.FireLimit[id] > 0 && nc.FireCnt[id] >= nc.FireLimit[id] {
		nc.RefracCnt[id] += nc.Snooze[id]
		nc.FireCnt[id] = 0
	}
	return true, in
}
