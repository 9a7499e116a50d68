// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package burst

import "fmt"

// ConfigError reports an invalid genome configuration.  Construction fails
// outright on these: a connectome is never built from a bad genome.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Msg)
}

// IntakeError reports one malformed stimulus dropped during intake.  These
// never abort a burst: they are collected into the burst report.
type IntakeError struct {
	Area string
	Msg  string
}

func (e *IntakeError) Error() string {
	return fmt.Sprintf("intake: area %q: %s", e.Area, e.Msg)
}

// SynaptogenesisError reports a failed rule application over one area pair.
// In strict mode the whole pair is rolled back: no synapses from the failed
// rule are committed.
type SynaptogenesisError struct {
	Src string
	Dst string
	Msg string
}

func (e *SynaptogenesisError) Error() string {
	return fmt.Sprintf("synaptogenesis: %s -> %s: %s", e.Src, e.Dst, e.Msg)
}
