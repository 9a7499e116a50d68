// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package nval provides the pluggable numeric precision layer for neural values
(membrane potentials, thresholds, synaptic contributions).

All computation runs in float32, but a Quant spec snaps every stored value
onto the grid representable by the configured precision (fp32 passes values
through unchanged; int8 / int16 quantize over a fixed range).  Values outside
the representable range saturate at the range edges -- saturation is counted,
never an error, so the hot path cannot panic on numeric overflow.

The precision is fixed when a connectome is constructed and is not switchable
mid-run: quantization constants are folded into the Quant spec once, at
Update time.
*/
package nval

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/chewxy/math32"
	"github.com/emer/etable/v2/minmax"
	"golang.org/x/exp/constraints"
)

// Precision selects the numeric representation used for stored neural values.
type Precision int32

const (
	// FP32 is 32-bit floating point -- the default, maximum accuracy.
	FP32 Precision = iota

	// INT16 is 16-bit quantized integer -- balance of range and memory.
	INT16

	// INT8 is 8-bit quantized integer -- maximum efficiency for embedded
	// targets, ~0.6 mV resolution over the default membrane range.
	INT8

	PrecisionN
)

func (p Precision) String() string {
	switch p {
	case FP32:
		return "fp32"
	case INT16:
		return "int16"
	case INT8:
		return "int8"
	}
	return fmt.Sprintf("Precision(%d)", int32(p))
}

// PrecisionFromString parses a precision tag as it appears in genome
// configuration ("fp32", "int16", "int8").
func PrecisionFromString(s string) (Precision, error) {
	switch strings.ToLower(s) {
	case "fp32", "f32", "":
		return FP32, nil
	case "int16", "i16":
		return INT16, nil
	case "int8", "i8":
		return INT8, nil
	}
	return FP32, fmt.Errorf("nval: invalid precision %q: must be fp32, int16, or int8", s)
}

// Levels returns the number of quantization levels for the precision
// (0 for fp32, meaning continuous).
func (p Precision) Levels() int {
	switch p {
	case INT16:
		return 1<<16 - 2
	case INT8:
		return 1<<8 - 2
	}
	return 0
}

// Quant is the quantization spec for one connectome: the precision plus the
// representable value range.  Resolution is derived in Update.
type Quant struct {
	Precision Precision  `desc:"numeric representation for stored neural values"`
	Range     minmax.F32 `def:"{'Min':-100,'Max':50}" desc:"representable value range -- values saturate at these edges for quantized precisions"`

	Res float32 `inactive:"+" view:"-" json:"-" xml:"-" desc:"resolution: value per quantization step -- 0 for fp32"`

	satCount atomic.Int64
}

func (qt *Quant) Defaults() {
	qt.Precision = FP32
	qt.Range.Set(-100, 50)
	qt.Update()
}

// Update must be called after any changes to parameters.
func (qt *Quant) Update() {
	lv := qt.Precision.Levels()
	if lv == 0 {
		qt.Res = 0
		return
	}
	qt.Res = qt.Range.Range() / float32(lv)
}

// Clamp snaps v onto the representable grid for the configured precision,
// saturating at the range edges.  Saturations (including NaN, which maps to
// the range minimum) increment the overflow counter.  fp32 only saturates,
// with no grid snapping.
func (qt *Quant) Clamp(v float32) float32 {
	if math32.IsNaN(v) {
		qt.satCount.Add(1)
		return qt.Range.Min
	}
	if v < qt.Range.Min || v > qt.Range.Max {
		qt.satCount.Add(1)
		v = qt.Range.ClipVal(v)
	}
	if qt.Res == 0 {
		return v
	}
	steps := math32.Round((v - qt.Range.Min) / qt.Res)
	return qt.Range.Min + steps*qt.Res
}

// SatAdd adds b to a under the quantization contract: the sum is clamped and
// snapped exactly as any stored value would be.
func (qt *Quant) SatAdd(a, b float32) float32 {
	return qt.Clamp(a + b)
}

// Saturations returns the number of values saturated (clamped to a range
// edge) since construction or the last ResetSaturations.
func (qt *Quant) Saturations() int64 {
	return qt.satCount.Load()
}

func (qt *Quant) ResetSaturations() {
	qt.satCount.Store(0)
}

// Clamp returns v constrained to [lo, hi] -- generic helper for the few
// places that clamp outside a Quant spec (counters, config validation).
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
