// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package burst

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metBursts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "burst",
		Name:      "bursts_total",
		Help:      "Completed bursts.",
	})
	metFired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "burst",
		Name:      "fired_neurons",
		Help:      "Neurons fired in the last burst.",
	})
	metIntakeErrs = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "burst",
		Name:      "intake_errors_total",
		Help:      "Malformed stimuli dropped during intake.",
	})
	metSynapses = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "burst",
		Name:      "synapses_total",
		Help:      "Live synapses in the connectome.",
	})
	metMemory = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "burst",
		Name:      "memory_neurons",
		Help:      "Live pattern-allocated memory neurons.",
	})
	metBurstDur = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "burst",
		Name:      "burst_duration_seconds",
		Help:      "Wall time per burst, all phases.",
		Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
	})
)

// observeBurst records the report into the package metrics.  Called at the
// end of AdvanceBurst, still under the guard.
func (cn *Connectome) observeBurst(rpt *BurstReport) {
	metBursts.Inc()
	metFired.Set(float64(rpt.FiredCount))
	metIntakeErrs.Add(float64(len(rpt.Errors)))
	metSynapses.Set(float64(cn.Synapses.Len()))
	metMemory.Set(float64(cn.detector.MemoryNeurons()))
	var tot float64
	for _, d := range rpt.PhaseTimes {
		tot += d.Seconds()
	}
	metBurstDur.Observe(tot)
}
