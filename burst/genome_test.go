// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package burst

import (
	"testing"

	"github.com/goki/mat32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validGenome() *Genome {
	prm := relayParams()
	return &Genome{
		Areas: []AreaSpec{
			{Name: "a", Dims: mat32.Vec3i{X: 2, Y: 2, Z: 1}, Model: ModelLIF, Params: prm},
			{Name: "b", Dims: mat32.Vec3i{X: 2, Y: 2, Z: 1}, Model: ModelLIF, Params: prm},
		},
		Rules: []RuleSpec{
			{Src: "a", Dst: "b", Morphology: MorphProjector, Weight: 1, PSP: 1, Type: 1},
		},
	}
}

func TestValidateAccepts(t *testing.T) {
	assert.NoError(t, validGenome().Validate())
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Genome){
		"no areas":        func(g *Genome) { g.Areas = nil },
		"empty name":      func(g *Genome) { g.Areas[0].Name = "" },
		"duplicate name":  func(g *Genome) { g.Areas[1].Name = "a" },
		"zero dims":       func(g *Genome) { g.Areas[0].Dims.Y = 0 },
		"bad model":       func(g *Genome) { g.Areas[0].Model = ModelN },
		"bad precision":   func(g *Genome) { g.Precision = -1 },
		"unknown src":     func(g *Genome) { g.Rules[0].Src = "zzz" },
		"unknown dst":     func(g *Genome) { g.Rules[0].Dst = "zzz" },
		"bad morphology":  func(g *Genome) { g.Rules[0].Morphology = MorphologyN },
		"negative weight": func(g *Genome) { g.Rules[0].Weight = -1 },
		"zero type":       func(g *Genome) { g.Rules[0].Type = 0 },
		"bad attract":     func(g *Genome) { g.Rules[0].Attract = 150 },
		"block no scale":  func(g *Genome) { g.Rules[0].Morphology = MorphBlock },
		"random no count": func(g *Genome) { g.Rules[0].Morphology = MorphRandomized },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			gn := validGenome()
			mutate(gn)
			err := gn.Validate()
			require.Error(t, err)
			var ce *ConfigError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestConstructionRejectsBadGenome(t *testing.T) {
	gn := validGenome()
	gn.Areas[0].Dims.X = -1
	cn, err := NewConnectome(gn, nil)
	assert.Error(t, err)
	assert.Nil(t, cn)
}
