// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package burst

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/chewxy/math32"
	"github.com/emer/etable/v2/minmax"
)

// PlastParams govern spike-timing dependent plasticity and the pattern
// detector.  The plasticity step runs after archival, inside the burst
// guard, never concurrent with propagation or firing.
type PlastParams struct {
	On      bool       `desc:"enable the plasticity step"`
	TauPre  float32    `def:"20" min:"1" desc:"decay constant for pre-before-post potentiation"`
	TauPost float32    `def:"20" min:"1" desc:"decay constant for post-before-pre depression"`
	APlus   float32    `def:"0.01" desc:"max potentiation per pairing"`
	AMinus  float32    `def:"0.012" desc:"max depression per pairing"`
	Window  int        `def:"10" min:"1" desc:"sliding window, in bursts, for spike pairing and frequency normalization"`
	WtRange minmax.F32 `desc:"weight clamp range -- default 0..10"`

	Pattern PatternParams `view:"inline" desc:"pattern detector parameters"`
}

func (pp *PlastParams) Defaults() {
	pp.TauPre = 20
	pp.TauPost = 20
	pp.APlus = 0.01
	pp.AMinus = 0.012
	pp.Window = 10
	pp.WtRange.Set(0, 10)
	pp.Pattern.Defaults()
}

// Update fills unset fields with defaults.
func (pp *PlastParams) Update() {
	if pp.TauPre <= 0 {
		pp.TauPre = 20
	}
	if pp.TauPost <= 0 {
		pp.TauPost = 20
	}
	if pp.APlus == 0 {
		pp.APlus = 0.01
	}
	if pp.AMinus == 0 {
		pp.AMinus = 0.012
	}
	if pp.Window <= 0 {
		pp.Window = 10
	}
	if pp.WtRange.Min == 0 && pp.WtRange.Max == 0 {
		pp.WtRange.Set(0, 10)
	}
	pp.Pattern.Update()
}

// TimingFactor returns the weight change for one spike pairing with
// dt = postBurst - preBurst: positive dt (pre leads) potentiates with
// exponential falloff, negative dt depresses, and exact coincidence gets
// the full potentiation amplitude.
func (pp *PlastParams) TimingFactor(dt int64) float32 {
	switch {
	case dt > 0:
		return pp.APlus * math32.Exp(-float32(dt)/pp.TauPre)
	case dt < 0:
		return -pp.AMinus * math32.Exp(float32(dt)/pp.TauPost)
	default:
		return pp.APlus
	}
}

// stdpStep adjusts weights for every synapse with a spike pairing that
// involves the current burst.  For each neuron that fired within the
// window (in area then id order), its outgoing synapses pair the source's
// most recent spike with the target's most recent spike; pairings where
// neither endpoint fired this burst were already applied in an earlier
// step and are skipped.
//
// The timing factor is scaled by the source's firing-frequency
// normalization: 1 over its fire count in the window, so chronically
// active sources move weights no faster than sparse ones.
func (cn *Connectome) stdpStep() {
	if cn.Ledger.Len() == 0 {
		return
	}
	win := cn.Plast.Window
	sc := cn.Synapses.Cols()
	nc := cn.Neurons.Cols()
	for ai := range cn.Areas {
		srcs := cn.windowUnion(ai, win)
		if srcs == nil {
			continue
		}
		it := srcs.Iterator()
		for it.HasNext() {
			src := it.Next()
			if !cn.Neurons.Valid(src) {
				continue
			}
			pre, ok := cn.Ledger.FiredWithin(ai, src, win)
			if !ok {
				continue
			}
			act := float32(1) / float32(max(1, cn.Ledger.FireCount(ai, src, win)))
			for _, sid := range cn.Synapses.BySource(src) {
				cn.checkSynapseTarget(sid)
				dst := sc.Dst[sid]
				post, ok := cn.Ledger.FiredWithin(int(nc.Area[dst]), dst, win)
				if !ok {
					continue
				}
				if pre != cn.burst && post != cn.burst {
					continue
				}
				dw := cn.Plast.TimingFactor(int64(post)-int64(pre)) * act
				sc.Weight[sid] = cn.Plast.WtRange.ClipVal(sc.Weight[sid] + dw)
			}
		}
	}
}

// windowUnion returns the union of area ai's fired sets over the last win
// frames, or nil when nothing fired.
func (cn *Connectome) windowUnion(ai, win int) *roaring.Bitmap {
	lo := cn.Ledger.Len() - win
	if lo < 0 {
		lo = 0
	}
	var u *roaring.Bitmap
	for i := lo; i < cn.Ledger.Len(); i++ {
		fr := cn.Ledger.Frame(i)
		if ai >= len(fr.Fired) || fr.Fired[ai] == nil {
			continue
		}
		if u == nil {
			u = fr.Fired[ai].Clone()
		} else {
			u.Or(fr.Fired[ai])
		}
	}
	return u
}
