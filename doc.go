// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package burst is the overall repository for the burst-cycle spiking neural
simulation kernel implemented in the Go language (golang).

This top-level of the repository has no functional code -- everything is
organized into the following sub-packages:

* burst: the core simulation kernel -- connectome, cortical areas, neuron
models, the five-phase burst engine, STDP plasticity with pattern-driven
memory neurons, and the synaptogenesis engine that grows connectivity from
declarative morphology rules.

* morph: the pure morphology rule functions (projector, block connection,
expander, vectors, patterns, reducer, randomized) that map source-area
positions to destination-area positions during synaptogenesis.

* spatial: Morton (Z-order) position encoding and compressed-bitmap
occupancy indexes used for region queries during synaptogenesis.

* store: the platform-selectable structure-of-arrays storage backends for
neurons and synapses (growable heap, fixed-capacity, linear arena), plus
the id arena with free-list recycling.

* nval: the pluggable numeric precision layer (fp32 and quantized integer)
with a uniform saturating arithmetic contract.
*/
package burst
