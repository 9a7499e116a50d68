// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package burst

import (
	"fmt"

	"github.com/emer/burst/morph"
	"github.com/emer/burst/nval"
	"github.com/emer/burst/store"
	"github.com/goki/mat32"
)

// Genome is the pre-parsed configuration a connectome is built from.
// File formats and parsing live outside the kernel: callers hand in
// populated structs.
type Genome struct {
	Precision  nval.Precision `desc:"numeric precision for all stored neural values -- fixed for the connectome lifetime"`
	Backend    store.Backend  `desc:"storage backend for neuron and synapse populations"`
	NeuronCap  int            `desc:"population capacity for fixed backends, initial size for heap"`
	SynapseCap int            `desc:"synapse capacity for fixed backends, initial size for heap"`
	Seed       int64          `desc:"seed for all stochastic decisions (attractivity, excitability, randomized morphology)"`
	Areas      []AreaSpec     `desc:"cortical areas in registry order"`
	Rules      []RuleSpec     `desc:"morphology rules applied at construction, in order"`
	Engine     EngineParams   `view:"inline" desc:"burst engine parameters (ledger depth, intake bounds)"`
	Plasticity PlastParams    `view:"inline" desc:"STDP and pattern-detection parameters"`
}

// Model selects the neuron dynamics for an area.  The variant set is closed:
// dispatch is a switch, monomorphized per area in the hot loop.
type Model int32

const (
	// ModelLIF is leaky integrate-and-fire: potential integrates inputs
	// with leak toward resting, fires at threshold, full refractory reset.
	ModelLIF Model = iota

	// ModelRelay fires whenever input meets threshold, with no
	// integration or leak, for sensory relay areas.
	ModelRelay

	ModelN
)

func (m Model) String() string {
	switch m {
	case ModelLIF:
		return "lif"
	case ModelRelay:
		return "relay"
	}
	return fmt.Sprintf("Model(%d)", int32(m))
}

// AreaSpec declares one cortical area.
type AreaSpec struct {
	Name   string            `desc:"unique area name"`
	Dims   mat32.Vec3i       `desc:"voxel dimensions, fixed after creation"`
	Model  Model             `desc:"neuron dynamics for every neuron in the area"`
	Params NeuronParams      `view:"inline" desc:"per-area neuron parameters"`
	Memory bool              `desc:"memory area: populated at runtime by the pattern detector, not at construction"`
	Tags   map[string]string `desc:"free-form metadata (device bindings, grouping)"`
}

// Morphology selects the connectivity rule for a RuleSpec.
type Morphology int32

const (
	MorphProjector Morphology = iota
	MorphBlock
	MorphExpander
	MorphVectors
	MorphPatterns
	MorphReducer
	MorphRandomized
	MorphologyN
)

func (m Morphology) String() string {
	switch m {
	case MorphProjector:
		return "projector"
	case MorphBlock:
		return "block_connection"
	case MorphExpander:
		return "expander"
	case MorphVectors:
		return "vectors"
	case MorphPatterns:
		return "patterns"
	case MorphReducer:
		return "reducer"
	case MorphRandomized:
		return "randomized"
	}
	return fmt.Sprintf("Morphology(%d)", int32(m))
}

// RuleSpec declares one connectivity rule between two areas.
type RuleSpec struct {
	Src        string                `desc:"source area name"`
	Dst        string                `desc:"destination area name"`
	Morphology Morphology            `desc:"connectivity rule"`
	Projector  morph.ProjectorParams `view:"inline" desc:"projector parameters"`
	Scale      int32                 `desc:"block / expander scaling factor"`
	Axis       morph.Axis            `desc:"block / expander axis"`
	Offsets    []mat32.Vec3i         `desc:"vectors rule offsets"`
	Patterns   []morph.Pattern       `desc:"patterns rule elements"`
	RandomN    int                   `desc:"randomized rule: destinations per source neuron"`
	Weight     float32               `min:"0" desc:"initial weight magnitude for created synapses"`
	PSP        float32               `desc:"post-synaptic potential multiplier"`
	Type       int8                  `desc:"polarity: +1 excitatory, -1 inhibitory"`
	Attract    int                   `min:"0" max:"100" desc:"synapse attractivity percent: chance each candidate commits"`
	FanOutDiv  bool                  `desc:"divide each contribution by the source fan-out (non-uniform distribution)"`
	Strict     bool                  `desc:"abort the whole area pair on any out-of-range destination"`
}

// Validate checks the genome for construction.  The first problem found is
// returned as a ConfigError; a connectome is never built from a bad genome.
func (gn *Genome) Validate() error {
	if gn.Precision < 0 || gn.Precision >= nval.PrecisionN {
		return &ConfigError{Field: "Precision", Msg: fmt.Sprintf("unknown precision %d", gn.Precision)}
	}
	if gn.Backend < 0 || gn.Backend >= store.BackendN {
		return &ConfigError{Field: "Backend", Msg: fmt.Sprintf("unknown backend %d", gn.Backend)}
	}
	if len(gn.Areas) == 0 {
		return &ConfigError{Field: "Areas", Msg: "at least one area required"}
	}
	names := make(map[string]bool, len(gn.Areas))
	for i, ar := range gn.Areas {
		fld := fmt.Sprintf("Areas[%d]", i)
		if ar.Name == "" {
			return &ConfigError{Field: fld, Msg: "empty area name"}
		}
		if names[ar.Name] {
			return &ConfigError{Field: fld, Msg: fmt.Sprintf("duplicate area name %q", ar.Name)}
		}
		names[ar.Name] = true
		if ar.Dims.X <= 0 || ar.Dims.Y <= 0 || ar.Dims.Z <= 0 {
			return &ConfigError{Field: fld, Msg: fmt.Sprintf("non-positive dims %v", ar.Dims)}
		}
		if ar.Model < 0 || ar.Model >= ModelN {
			return &ConfigError{Field: fld, Msg: fmt.Sprintf("unknown model %d", ar.Model)}
		}
	}
	for i, rl := range gn.Rules {
		fld := fmt.Sprintf("Rules[%d]", i)
		if !names[rl.Src] {
			return &ConfigError{Field: fld, Msg: fmt.Sprintf("unknown source area %q", rl.Src)}
		}
		if !names[rl.Dst] {
			return &ConfigError{Field: fld, Msg: fmt.Sprintf("unknown destination area %q", rl.Dst)}
		}
		if rl.Morphology < 0 || rl.Morphology >= MorphologyN {
			return &ConfigError{Field: fld, Msg: fmt.Sprintf("unknown morphology %d", rl.Morphology)}
		}
		if (rl.Morphology == MorphBlock || rl.Morphology == MorphExpander) && rl.Scale <= 0 {
			return &ConfigError{Field: fld, Msg: "block/expander rules need a positive scale"}
		}
		if rl.Morphology == MorphRandomized && rl.RandomN <= 0 {
			return &ConfigError{Field: fld, Msg: "randomized rules need a positive destination count"}
		}
		if rl.Weight < 0 {
			return &ConfigError{Field: fld, Msg: "weight must be a non-negative magnitude"}
		}
		if rl.Type != 1 && rl.Type != -1 {
			return &ConfigError{Field: fld, Msg: "type must be +1 (excitatory) or -1 (inhibitory)"}
		}
		if rl.Attract < 0 || rl.Attract > 100 {
			return &ConfigError{Field: fld, Msg: "attractivity must be in 0..100"}
		}
	}
	return nil
}
