// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package burst

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Runner paces the burst engine at a target frequency.  Rate changes take
// effect on the next burst; the stop flag is only checked between bursts,
// so a burst in progress always completes all its phases.
type Runner struct {
	cn *Connectome

	mu        sync.Mutex
	hz        float64
	stop      bool
	running   bool
	bursts    uint64
	lastFired int
	done      chan struct{}
	log       *slog.Logger
}

// NewRunner returns a runner for the connectome at the given frequency.
func NewRunner(cn *Connectome, hz float64, lg *slog.Logger) *Runner {
	if hz <= 0 {
		hz = 10
	}
	if lg == nil {
		lg = slog.Default()
	}
	return &Runner{cn: cn, hz: hz, log: lg}
}

// RateHz returns the current target frequency.
func (rn *Runner) RateHz() float64 {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	return rn.hz
}

// SetRateHz changes the target frequency while running.
func (rn *Runner) SetRateHz(hz float64) {
	if hz <= 0 {
		return
	}
	rn.mu.Lock()
	rn.hz = hz
	rn.mu.Unlock()
}

// BurstCount returns the number of bursts completed by this runner.
func (rn *Runner) BurstCount() uint64 {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	return rn.bursts
}

// LastFiredCount returns the fired-neuron count of the last burst.
func (rn *Runner) LastFiredCount() int {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	return rn.lastFired
}

// Running reports whether the loop is active.
func (rn *Runner) Running() bool {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	return rn.running
}

// Start launches the burst loop on its own goroutine.  No-op when already
// running.
func (rn *Runner) Start(ctx context.Context) {
	rn.mu.Lock()
	if rn.running {
		rn.mu.Unlock()
		return
	}
	rn.running = true
	rn.stop = false
	rn.done = make(chan struct{})
	rn.mu.Unlock()
	go rn.loop(ctx)
}

// Stop requests the loop to end after the current burst and waits for it.
func (rn *Runner) Stop() {
	rn.mu.Lock()
	if !rn.running {
		rn.mu.Unlock()
		return
	}
	rn.stop = true
	done := rn.done
	rn.mu.Unlock()
	<-done
}

func (rn *Runner) loop(ctx context.Context) {
	defer func() {
		rn.mu.Lock()
		rn.running = false
		close(rn.done)
		rn.mu.Unlock()
	}()
	rn.log.Info("burst loop started", "hz", rn.RateHz())
	for {
		rn.mu.Lock()
		stop := rn.stop
		period := time.Duration(float64(time.Second) / rn.hz)
		rn.mu.Unlock()
		if stop || ctx.Err() != nil {
			rn.log.Info("burst loop stopped", "bursts", rn.BurstCount())
			return
		}
		start := time.Now()
		rpt := rn.cn.AdvanceBurst(nil)
		rn.mu.Lock()
		rn.bursts++
		rn.lastFired = rpt.FiredCount
		rn.mu.Unlock()
		if len(rpt.Errors) > 0 {
			rn.log.Warn("burst completed with intake errors",
				"burst", rpt.Index, "errors", len(rpt.Errors))
		}
		if rem := period - time.Since(start); rem > 0 {
			select {
			case <-time.After(rem):
			case <-ctx.Done():
			}
		}
	}
}
