// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package burst

import (
	"encoding/binary"
	"hash/fnv"
	"sort"

	"github.com/emer/burst/store"
	"github.com/goki/mat32"
)

// PatternParams govern the pattern detector that grows memory neurons from
// recurring co-firing activity.
type PatternParams struct {
	On         bool     `desc:"enable pattern detection"`
	Watch      []string `desc:"upstream areas whose firing is hashed"`
	MemoryArea string   `desc:"memory area receiving allocated neurons"`
	Depth      int      `def:"3" min:"1" desc:"ledger frames hashed per detection"`
	Support    int      `def:"2" min:"1" desc:"min co-firing neurons for a detectable pattern"`
	Consec     int      `def:"3" min:"1" desc:"consecutive detections before a memory neuron is allocated"`
	IdleRetire int      `def:"100" min:"1" desc:"idle bursts before a memory neuron is retired"`
	Weight     float32  `def:"1" desc:"weight for pattern-to-memory synapses"`
	PSP        float32  `def:"1" desc:"psp for pattern-to-memory synapses"`
}

func (pp *PatternParams) Defaults() {
	pp.Depth = 3
	pp.Support = 2
	pp.Consec = 3
	pp.IdleRetire = 100
	pp.Weight = 1
	pp.PSP = 1
}

func (pp *PatternParams) Update() {
	if pp.Depth <= 0 {
		pp.Depth = 3
	}
	if pp.Support <= 0 {
		pp.Support = 2
	}
	if pp.Consec <= 0 {
		pp.Consec = 3
	}
	if pp.IdleRetire <= 0 {
		pp.IdleRetire = 100
	}
	if pp.Weight == 0 {
		pp.Weight = 1
	}
	if pp.PSP == 0 {
		pp.PSP = 1
	}
}

// memberRef is one neuron of a detected pattern.
type memberRef struct {
	area int
	id   uint32
}

// patternTrack is the hysteresis state for one pattern hash.
type patternTrack struct {
	count    int
	lastSeen uint64
}

// PatternDetector hashes the recent fired activity of watched areas and
// allocates a memory neuron for any pattern seen enough bursts in a row.
// Detection, wiring, and retirement all run in the plasticity step, inside
// the burst guard.
type PatternDetector struct {
	cn      *Connectome
	watch   []*CorticalArea
	mem     *CorticalArea
	tracks  map[uint64]*patternTrack
	neurons map[uint64]uint32
	created map[uint32]uint64
	nextVox int
}

func newPatternDetector(cn *Connectome) *PatternDetector {
	pd := &PatternDetector{
		cn:      cn,
		tracks:  make(map[uint64]*patternTrack),
		neurons: make(map[uint64]uint32),
		created: make(map[uint32]uint64),
	}
	pp := &cn.Plast.Pattern
	if !pp.On {
		return pd
	}
	for _, name := range pp.Watch {
		if ar, ok := cn.byName[name]; ok {
			pd.watch = append(pd.watch, ar)
		}
	}
	if ar, ok := cn.byName[pp.MemoryArea]; ok && ar.Memory {
		pd.mem = ar
	}
	return pd
}

// step runs one detection pass: hash the recent window, advance hysteresis,
// allocate and wire a memory neuron when a pattern matures, retire idle
// memory neurons.
func (pd *PatternDetector) step() {
	pp := &pd.cn.Plast.Pattern
	if !pp.On || pd.mem == nil || len(pd.watch) == 0 {
		return
	}
	hash, members := pd.observe(pp.Depth)
	if len(members) >= pp.Support {
		tr := pd.tracks[hash]
		if tr == nil {
			tr = &patternTrack{}
			pd.tracks[hash] = tr
		}
		if tr.lastSeen == pd.cn.burst-1 {
			tr.count++
		} else {
			tr.count = 1
		}
		tr.lastSeen = pd.cn.burst
		if tr.count >= pp.Consec {
			if _, known := pd.neurons[hash]; !known {
				pd.allocate(hash, members)
			}
			tr.count = 0
		}
	}
	pd.retire(pp.IdleRetire)
}

// observe hashes the fired sets of the watched areas over the last depth
// ledger frames, returning the hash and the current members (the most
// recent frame's fired neurons across watched areas).
func (pd *PatternDetector) observe(depth int) (uint64, []memberRef) {
	h := fnv.New64a()
	var buf [8]byte
	var members []memberRef
	lo := pd.cn.Ledger.Len() - depth
	if lo < 0 {
		lo = 0
	}
	last := pd.cn.Ledger.Len() - 1
	for i := lo; i < pd.cn.Ledger.Len(); i++ {
		fr := pd.cn.Ledger.Frame(i)
		for _, ar := range pd.watch {
			if ar.Idx >= len(fr.Fired) || fr.Fired[ar.Idx] == nil {
				continue
			}
			binary.LittleEndian.PutUint64(buf[:], uint64(ar.Idx)<<32|uint64(i-lo))
			h.Write(buf[:])
			it := fr.Fired[ar.Idx].Iterator()
			for it.HasNext() {
				id := it.Next()
				binary.LittleEndian.PutUint64(buf[:], uint64(id))
				h.Write(buf[:])
				if i == last {
					members = append(members, memberRef{area: ar.Idx, id: id})
				}
			}
		}
	}
	return h.Sum64(), members
}

// allocate creates one memory neuron for the pattern and wires every
// member to it through the staged synapse path.
func (pd *PatternDetector) allocate(hash uint64, members []memberRef) {
	pos, ok := pd.freeVoxel()
	if !ok {
		pd.cn.log.Warn("memory area full, pattern not materialized", "area", pd.mem.Name)
		return
	}
	id := pd.cn.neuronIDs.Alloc()
	if err := pd.cn.Neurons.Put(id, pd.mem.Params.Record(uint16(pd.mem.Idx), pos)); err != nil {
		pd.cn.neuronIDs.Release(id, pd.cn.burst)
		pd.cn.log.Warn("memory neuron allocation failed", "err", err)
		return
	}
	pd.mem.Index.MarkDirty()

	pp := &pd.cn.Plast.Pattern
	for _, m := range members {
		s := store.Synapse{
			Src:       m.id,
			Dst:       id,
			Weight:    pp.Weight,
			PSP:       pp.PSP,
			Type:      1,
			CreatedAt: pd.cn.burst,
		}
		if _, err := pd.cn.addSynapse(s); err != nil {
			pd.cn.log.Warn("memory wiring failed", "err", err)
			break
		}
	}
	pd.neurons[hash] = id
	pd.created[id] = pd.cn.burst
	pd.cn.log.Debug("memory neuron allocated",
		"area", pd.mem.Name, "id", id, "members", len(members))
}

// freeVoxel returns the next unoccupied voxel of the memory area, scanning
// in x-major order from a moving start.
func (pd *PatternDetector) freeVoxel() (mat32.Vec3i, bool) {
	size := pd.mem.Size()
	for n := 0; n < size; n++ {
		i := (pd.nextVox + n) % size
		pos := mat32.Vec3i{
			X: int32(i) % pd.mem.Dims.X,
			Y: int32(i) / pd.mem.Dims.X % pd.mem.Dims.Y,
			Z: int32(i) / (pd.mem.Dims.X * pd.mem.Dims.Y),
		}
		if !pd.mem.Index.Has(pos) {
			pd.nextVox = (i + 1) % size
			return pos, true
		}
	}
	return mat32.Vec3i{}, false
}

// retire removes memory neurons idle for at least idle bursts, in
// ascending id order so id recycling stays reproducible.  Retired ids go
// back through the arena and become reusable after the reclaim lag.
func (pd *PatternDetector) retire(idle int) {
	nc := pd.cn.Neurons.Cols()
	hashes := make([]uint64, 0, len(pd.neurons))
	for hash := range pd.neurons {
		hashes = append(hashes, hash)
	}
	sort.Slice(hashes, func(i, j int) bool { return pd.neurons[hashes[i]] < pd.neurons[hashes[j]] })
	for _, hash := range hashes {
		id := pd.neurons[hash]
		if !pd.cn.Neurons.Valid(id) {
			delete(pd.neurons, hash)
			delete(pd.created, id)
			continue
		}
		last := nc.LastFired[id]
		if cb := pd.created[id]; cb > last {
			last = cb
		}
		if pd.cn.burst-last >= uint64(idle) {
			pd.cn.removeNeuron(id)
			delete(pd.neurons, hash)
			delete(pd.created, id)
			pd.cn.log.Debug("memory neuron retired", "area", pd.mem.Name, "id", id)
		}
	}
}

// MemoryNeurons returns the live memory-neuron count.
func (pd *PatternDetector) MemoryNeurons() int {
	return len(pd.neurons)
}
