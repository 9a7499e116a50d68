// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package burst

import (
	"github.com/chewxy/math32"
	"github.com/goki/mat32"
)

// Stimulus is one external activation targeting a neuron, addressed either
// by voxel position (ByID false) or directly by neuron id.
type Stimulus struct {
	Area       string      `desc:"target area name"`
	Pos        mat32.Vec3i `desc:"target voxel, when not addressing by id"`
	ID         uint32      `desc:"target neuron id, when ByID"`
	ByID       bool        `desc:"address by neuron id instead of voxel"`
	Activation float32     `desc:"input value accumulated into the target's candidate input"`
}

// Intake is the bounded stimulus queue feeding phase 1.  Producers run
// outside the burst loop and must tolerate Offer failing when the queue is
// full: intake never blocks either side.
type Intake struct {
	PollBudget int `def:"4096" min:"1" desc:"max stimuli drained per burst -- bounds phase 1 regardless of producer volume"`

	ch chan Stimulus
}

// NewIntake returns an intake queue with the given buffer size and
// per-burst drain budget.
func NewIntake(buffer, pollBudget int) *Intake {
	if buffer < 1 {
		buffer = 1
	}
	if pollBudget < 1 {
		pollBudget = 1
	}
	return &Intake{PollBudget: pollBudget, ch: make(chan Stimulus, buffer)}
}

// Offer enqueues a stimulus without blocking.  Returns false when the
// queue is full and the stimulus was dropped.
func (in *Intake) Offer(st Stimulus) bool {
	select {
	case in.ch <- st:
		return true
	default:
		return false
	}
}

// Drain non-blockingly pulls up to the poll budget of queued stimuli,
// applying each through apply.  Runs on the burst goroutine in phase 1.
func (in *Intake) Drain(apply func(st Stimulus)) int {
	n := 0
	for n < in.PollBudget {
		select {
		case st := <-in.ch:
			apply(st)
			n++
		default:
			return n
		}
	}
	return n
}

// applyStimulus validates one stimulus and accumulates it into the target
// area's FCL.  Malformed stimuli (unknown area, out-of-bounds target,
// non-finite activation) are dropped and recorded as intake errors on the
// report -- they never abort the burst.
func (cn *Connectome) applyStimulus(st Stimulus, rpt *BurstReport) {
	if math32.IsNaN(st.Activation) || math32.IsInf(st.Activation, 0) {
		rpt.Errors = append(rpt.Errors, &IntakeError{Area: st.Area, Msg: "non-finite activation"})
		return
	}
	ar, ok := cn.AreaByName(st.Area)
	if !ok {
		rpt.Errors = append(rpt.Errors, &IntakeError{Area: st.Area, Msg: "unknown area"})
		return
	}
	var id uint32
	if st.ByID {
		if !cn.Neurons.Valid(st.ID) || cn.Neurons.Cols().Area[st.ID] != uint16(ar.Idx) {
			rpt.Errors = append(rpt.Errors, &IntakeError{Area: st.Area, Msg: "no such neuron id"})
			return
		}
		id = st.ID
	} else {
		nid, ok := ar.NeuronAt(st.Pos)
		if !ok {
			rpt.Errors = append(rpt.Errors, &IntakeError{Area: st.Area, Msg: "no neuron at position"})
			return
		}
		id = nid
	}
	cn.fcl[ar.Idx][id] += st.Activation
}
