// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package burst

import (
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"sync"

	"github.com/emer/burst/nval"
	"github.com/emer/burst/spatial"
	"github.com/emer/burst/store"
	"github.com/goki/mat32"
)

// reclaimLag is how many bursts a released neuron or synapse id stays
// quarantined before the id arena may reuse it.
const reclaimLag = 2

// Connectome is the complete simulation state: areas, neuron and synapse
// populations, candidate lists, the fired archive, and the plasticity
// services.  One exclusive guard covers all of it: the engine holds the
// guard for a full burst, and external readers take it briefly for
// snapshots.  There is no finer-grained locking anywhere inside.
type Connectome struct {
	Quant    nval.Quant         `view:"inline" desc:"numeric precision contract, fixed at construction"`
	Areas    []*CorticalArea    `desc:"registry, in genome order"`
	Neurons  store.NeuronStore  `view:"-" desc:"neuron population"`
	Synapses store.SynapseStore `view:"-" desc:"synapse population"`
	Ledger   *FireLedger        `desc:"archive of recent fired sets"`
	Engine   EngineParams       `view:"inline" desc:"burst engine parameters"`
	Plast    PlastParams        `view:"inline" desc:"plasticity parameters"`

	mu        sync.Mutex
	byName    map[string]*CorticalArea
	fcl       []FCL
	queue     *FireQueue
	fanDiv    []bool
	neuronIDs *store.IDArena
	synIDs    *store.IDArena
	intake    *Intake
	detector  *PatternDetector
	rnd       *rand.Rand
	burst     uint64
	nThreads  int
	log       *slog.Logger
}

// NewConnectome validates the genome and builds the full connectome:
// areas populated, construction rules applied, services wired.  Any
// validation or synaptogenesis failure aborts construction.
func NewConnectome(gn *Genome, lg *slog.Logger) (*Connectome, error) {
	if err := gn.Validate(); err != nil {
		return nil, err
	}
	if lg == nil {
		lg = slog.Default()
	}
	ncap := gn.NeuronCap
	if ncap <= 0 {
		for _, as := range gn.Areas {
			ncap += int(as.Dims.X) * int(as.Dims.Y) * int(as.Dims.Z)
		}
	}
	scap := gn.SynapseCap
	if scap <= 0 {
		scap = 16 * ncap
	}
	ns, err := store.NewNeuronStore(gn.Backend, ncap)
	if err != nil {
		return nil, err
	}
	ss, err := store.NewSynapseStore(gn.Backend, scap)
	if err != nil {
		return nil, err
	}
	cn := &Connectome{
		Neurons:   ns,
		Synapses:  ss,
		Engine:    gn.Engine,
		Plast:     gn.Plasticity,
		byName:    make(map[string]*CorticalArea, len(gn.Areas)),
		neuronIDs: store.NewIDArena(reclaimLag),
		synIDs:    store.NewIDArena(reclaimLag),
		rnd:       rand.New(rand.NewSource(gn.Seed)),
		nThreads:  runtime.GOMAXPROCS(0),
		log:       lg,
	}
	cn.Quant.Defaults()
	cn.Quant.Precision = gn.Precision
	cn.Quant.Update()
	cn.Engine.Update()
	cn.Plast.Update()

	for i, as := range gn.Areas {
		ar := &CorticalArea{
			Name:   as.Name,
			Idx:    i,
			Dims:   as.Dims,
			Model:  as.Model,
			Params: as.Params,
			Memory: as.Memory,
			Tags:   as.Tags,
		}
		ai := i
		ar.Index = spatial.NewIndex(func(visit func(id uint32, loc mat32.Vec3i)) {
			nc := cn.Neurons.Cols()
			for id := 0; id < cn.Neurons.Cap(); id++ {
				if nc.Valid[id] && int(nc.Area[id]) == ai {
					visit(uint32(id), nc.Pos[id])
				}
			}
		})
		cn.Areas = append(cn.Areas, ar)
		cn.byName[ar.Name] = ar
		if !ar.Memory {
			if err := cn.populateArea(ar); err != nil {
				return nil, err
			}
		}
	}

	for i := range gn.Rules {
		if err := cn.applyRule(&gn.Rules[i]); err != nil {
			return nil, err
		}
	}
	cn.fanDiv = make([]bool, len(cn.Areas))
	for _, rl := range gn.Rules {
		if rl.FanOutDiv {
			cn.fanDiv[cn.byName[rl.Src].Idx] = true
		}
	}

	cn.fcl = make([]FCL, len(cn.Areas))
	for i := range cn.fcl {
		cn.fcl[i] = make(FCL)
	}
	cn.queue = NewFireQueue(len(cn.Areas))
	cn.Ledger = NewFireLedger(cn.Engine.LedgerCap)
	cn.intake = NewIntake(cn.Engine.IntakeBuffer, cn.Engine.PollBudget)
	cn.detector = newPatternDetector(cn)

	lg.Info("connectome built",
		"areas", len(cn.Areas),
		"neurons", cn.Neurons.Len(),
		"synapses", cn.Synapses.Len(),
		"precision", cn.Quant.Precision.String(),
	)
	return cn, nil
}

// populateArea creates one neuron per voxel with the area's params.  The
// spatial index is only marked stale here; it rebuilds from storage on the
// first query.
func (cn *Connectome) populateArea(ar *CorticalArea) error {
	for x := int32(0); x < ar.Dims.X; x++ {
		for y := int32(0); y < ar.Dims.Y; y++ {
			for z := int32(0); z < ar.Dims.Z; z++ {
				pos := mat32.Vec3i{X: x, Y: y, Z: z}
				id := cn.neuronIDs.Alloc()
				if err := cn.Neurons.Put(id, ar.Params.Record(uint16(ar.Idx), pos)); err != nil {
					return fmt.Errorf("populating area %s: %w", ar.Name, err)
				}
			}
		}
	}
	ar.Index.MarkDirty()
	return nil
}

// AreaByName returns the named area.
func (cn *Connectome) AreaByName(name string) (*CorticalArea, bool) {
	ar, ok := cn.byName[name]
	return ar, ok
}

// Intake returns the stimulus queue.  Producers call Offer on it from any
// goroutine.
func (cn *Connectome) Intake() *Intake {
	return cn.intake
}

// BurstIndex returns the index of the last completed burst.
func (cn *Connectome) BurstIndex() uint64 {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	return cn.burst
}

// SetThreads sets the worker count for the propagation phase.  Results are
// identical for any thread count.
func (cn *Connectome) SetThreads(n int) {
	if n < 1 {
		n = 1
	}
	cn.mu.Lock()
	cn.nThreads = n
	cn.mu.Unlock()
}

// addSynapse materializes a synapse and retains both endpoint ids so
// neither neuron id can be recycled while the synapse lives.
func (cn *Connectome) addSynapse(s store.Synapse) (uint32, error) {
	id := cn.synIDs.Alloc()
	if err := cn.Synapses.Put(id, s); err != nil {
		cn.synIDs.Release(id, cn.burst)
		return 0, err
	}
	cn.neuronIDs.Retain(s.Src)
	cn.neuronIDs.Retain(s.Dst)
	return id, nil
}

// removeSynapse invalidates a synapse and drops its endpoint retentions.
func (cn *Connectome) removeSynapse(id uint32) {
	sc := cn.Synapses.Cols()
	if !cn.Synapses.Valid(id) {
		return
	}
	cn.neuronIDs.Unref(sc.Src[id])
	cn.neuronIDs.Unref(sc.Dst[id])
	cn.Synapses.Invalidate(id)
	cn.synIDs.Release(id, cn.burst)
}

// removeNeuron retires a neuron: all synapses touching it go first, then
// the row is invalidated and its id quarantined.
func (cn *Connectome) removeNeuron(id uint32) {
	for _, sid := range append([]uint32(nil), cn.Synapses.BySource(id)...) {
		cn.removeSynapse(sid)
	}
	sc := cn.Synapses.Cols()
	for sid := 0; sid < cn.Synapses.Cap(); sid++ {
		if sc.Valid[sid] && sc.Dst[sid] == id {
			cn.removeSynapse(uint32(sid))
		}
	}
	nc := cn.Neurons.Cols()
	ar := cn.Areas[nc.Area[id]]
	cn.Neurons.Invalidate(id)
	ar.Index.MarkDirty()
	cn.neuronIDs.Release(id, cn.burst)
}

// checkSynapseTargets panics when a live synapse references a freed neuron.
// That state is memory corruption, not a recoverable error.
func (cn *Connectome) checkSynapseTarget(sid uint32) {
	sc := cn.Synapses.Cols()
	if !cn.Neurons.Valid(sc.Src[sid]) || !cn.Neurons.Valid(sc.Dst[sid]) {
		panic(fmt.Sprintf("connectome corrupt: synapse %d references freed neuron (src %d dst %d)",
			sid, sc.Src[sid], sc.Dst[sid]))
	}
}
