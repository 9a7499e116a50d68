// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package burst

import (
	"fmt"
	"sync"
	"time"
)

// Phase indexes the fixed stages of one burst, in execution order.
type Phase int32

const (
	// PhaseIntake drains queued stimuli into candidate lists.
	PhaseIntake Phase = iota

	// PhasePropagate distributes last burst's firings through synapses.
	PhasePropagate

	// PhaseFire evaluates candidates against their neuron model.
	PhaseFire

	// PhaseArchive appends the fired set to the ledger.
	PhaseArchive

	// PhaseCleanup clears candidate lists and reclaims quarantined ids.
	PhaseCleanup

	PhaseN
)

func (p Phase) String() string {
	switch p {
	case PhaseIntake:
		return "intake"
	case PhasePropagate:
		return "propagate"
	case PhaseFire:
		return "fire"
	case PhaseArchive:
		return "archive"
	case PhaseCleanup:
		return "cleanup"
	}
	return fmt.Sprintf("Phase(%d)", int32(p))
}

// EngineParams bound the engine's memory and per-burst work.
type EngineParams struct {
	LedgerCap    int `def:"64" min:"1" desc:"fired-set frames retained in the ledger"`
	IntakeBuffer int `def:"8192" min:"1" desc:"stimulus queue buffer size"`
	PollBudget   int `def:"4096" min:"1" desc:"max stimuli drained per burst"`
}

func (ep *EngineParams) Defaults() {
	ep.LedgerCap = 64
	ep.IntakeBuffer = 8192
	ep.PollBudget = 4096
}

// Update fills unset (zero) fields with defaults, so a zero-valued genome
// section is usable as-is.
func (ep *EngineParams) Update() {
	if ep.LedgerCap <= 0 {
		ep.LedgerCap = 64
	}
	if ep.IntakeBuffer <= 0 {
		ep.IntakeBuffer = 8192
	}
	if ep.PollBudget <= 0 {
		ep.PollBudget = 4096
	}
}

// BurstReport summarizes one completed burst.
type BurstReport struct {
	Index      uint64                `desc:"burst index, 1-based"`
	FiredCount int                   `desc:"neurons fired this burst"`
	StimCount  int                   `desc:"stimuli accepted this burst"`
	PhaseTimes [PhaseN]time.Duration `desc:"wall time per phase"`
	Errors     []error               `desc:"recovered per-burst errors (malformed stimuli)"`
}

// firedRef is one flattened fire-queue entry for chunked propagation.
type firedRef struct {
	id   uint32
	area int
}

// AdvanceBurst runs one complete burst under the connectome guard: the
// five fixed phases in order, then the plasticity step.  Every phase always
// runs; with no activity anywhere the burst is an idempotent no-op apart
// from the counter.  extra stimuli are applied in the intake phase ahead of
// the queue drain.
func (cn *Connectome) AdvanceBurst(extra []Stimulus) *BurstReport {
	cn.mu.Lock()
	defer cn.mu.Unlock()

	cn.burst++
	rpt := &BurstReport{Index: cn.burst}

	start := time.Now()
	for _, st := range extra {
		cn.applyStimulus(st, rpt)
	}
	n := cn.intake.Drain(func(st Stimulus) { cn.applyStimulus(st, rpt) })
	rpt.StimCount = n + len(extra) - len(rpt.Errors)
	rpt.PhaseTimes[PhaseIntake] = time.Since(start)

	start = time.Now()
	cn.propagatePhase()
	rpt.PhaseTimes[PhasePropagate] = time.Since(start)

	start = time.Now()
	cn.firePhase()
	rpt.FiredCount = cn.queue.Total()
	rpt.PhaseTimes[PhaseFire] = time.Since(start)

	start = time.Now()
	cn.Ledger.Archive(cn.burst, cn.queue)
	rpt.PhaseTimes[PhaseArchive] = time.Since(start)

	start = time.Now()
	cn.cleanupPhase()
	rpt.PhaseTimes[PhaseCleanup] = time.Since(start)

	if cn.Plast.On {
		cn.stdpStep()
		cn.detector.step()
	}

	cn.observeBurst(rpt)
	return rpt
}

// propagatePhase distributes last burst's firings through their synapses
// into the candidate lists.  The flattened fired list is split into
// contiguous chunks, one worker per chunk accumulating into a private
// buffer; buffers merge in worker index order, so per-target accumulation
// order is fixed for a given thread count regardless of scheduling.
func (cn *Connectome) propagatePhase() {
	var fired []firedRef
	for ai, list := range cn.queue.Areas {
		for _, fn := range list {
			fired = append(fired, firedRef{id: fn.ID, area: ai})
		}
	}
	if len(fired) == 0 {
		return
	}
	sc := cn.Synapses.Cols()
	nw := cn.nThreads
	if nw > len(fired) {
		nw = len(fired)
	}
	if nw <= 1 {
		buf := make(map[uint32]float32)
		for _, fr := range fired {
			propagate(sc, cn.Synapses.BySource(fr.id), cn.fanDiv[fr.area], buf)
		}
		cn.mergeContributions(buf)
		return
	}
	bufs := make([]map[uint32]float32, nw)
	chunk := (len(fired) + nw - 1) / nw
	var wg sync.WaitGroup
	for w := 0; w < nw; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(fired) {
			hi = len(fired)
		}
		bufs[w] = make(map[uint32]float32)
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			for _, fr := range fired[lo:hi] {
				propagate(sc, cn.Synapses.BySource(fr.id), cn.fanDiv[fr.area], bufs[w])
			}
		}(w, lo, hi)
	}
	wg.Wait()
	for _, buf := range bufs {
		cn.mergeContributions(buf)
	}
}

func (cn *Connectome) mergeContributions(buf map[uint32]float32) {
	nc := cn.Neurons.Cols()
	for dst, v := range buf {
		cn.fcl[nc.Area[dst]][dst] += v
	}
}

// firePhase evaluates every candidate against its area's neuron model, in
// registry then ascending id order, filling the fire queue.  Model dispatch
// resolves once per area, outside the candidate loop.
func (cn *Connectome) firePhase() {
	cn.queue.Reset()
	nc := cn.Neurons.Cols()
	for ai, ar := range cn.Areas {
		eval := EvalLIF
		if ar.Model == ModelRelay {
			eval = EvalRelay
		}
		for _, id := range cn.fcl[ai].SortedIDs() {
			if !cn.Neurons.Valid(id) {
				continue
			}
			fired, v := eval(nc, id, cn.fcl[ai][id], cn.burst, &cn.Quant, cn.rnd)
			if fired {
				cn.queue.Areas[ai] = append(cn.queue.Areas[ai], FiringNeuron{
					ID:        id,
					Potential: v,
					Pos:       nc.Pos[id],
				})
			}
		}
	}
}

// cleanupPhase clears the candidate lists and reclaims quarantined ids
// whose lag has elapsed.
func (cn *Connectome) cleanupPhase() {
	for i := range cn.fcl {
		clear(cn.fcl[i])
	}
	cn.neuronIDs.Reclaim(cn.burst)
	cn.synIDs.Reclaim(cn.burst)
}
