// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package burst

import "github.com/emer/burst/store"

// Contribution computes the signed input one synapse delivers when its
// source fires.  Polarity is carried by the type tag: weights are always
// non-negative magnitudes, so an inhibitory synapse is typ == -1, never a
// negative weight.
func Contribution(weight, psp float32, typ int8) float32 {
	if typ < 0 {
		return -weight * psp
	}
	return weight * psp
}

// propagate walks the live synapses of one fired source neuron and
// accumulates their contributions into the buffer, keyed by target id.
// When fan-out division is on, each contribution is divided by the source's
// live fan-out, spreading a fixed budget across targets instead of
// multiplying it.
func propagate(sc *store.SynapseCols, syn []uint32, fanOutDiv bool, buf map[uint32]float32) {
	if len(syn) == 0 {
		return
	}
	div := float32(1)
	if fanOutDiv {
		div = float32(len(syn))
	}
	for _, sid := range syn {
		if !sc.Valid[sid] {
			continue
		}
		c := Contribution(sc.Weight[sid], sc.PSP[sid], sc.Type[sid])
		if fanOutDiv {
			c /= div
		}
		buf[sc.Dst[sid]] += c
	}
}
