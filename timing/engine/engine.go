// Package engine implements the cycle-stepping execution engine.
//
// The engine owns one private cache and one instruction queue per core
// and advances every core's pipeline by exactly one discrete cycle per
// Step call. Cores are simulated, not concurrent: a step sweeps all cores
// within a single goroutine, and all engine state is consistent at step
// boundaries.
//
// Each step runs the substages in a fixed order that is part of the
// engine's contract:
//
//	Commit -> Memory -> Execute -> Fetch -> Admission
//
// The ordering is load-bearing. A miss resolved in the Execute substage
// places the instruction in the Memory stage this cycle, but its stall
// countdown is only consumed by the next step's Memory substage. Changing
// the sweep order changes cycle counts.
package engine

import (
	"fmt"

	"github.com/sarchlab/mcsim/insts"
	"github.com/sarchlab/mcsim/timing/cache"
	"github.com/sarchlab/mcsim/timing/mem"
	"github.com/sarchlab/mcsim/timing/metrics"
	"github.com/sarchlab/mcsim/timing/sched"
)

// coreState is the per-core simulation state: a private cache, the
// bounded in-flight pipeline, and the unbounded pending queue.
type coreState struct {
	cache    *cache.Cache
	pipeline []*insts.Instruction
	pending  []*insts.Instruction
	width    int
}

// busy reports whether the core still has work in flight or pending.
func (c *coreState) busy() bool {
	return len(c.pipeline) > 0 || len(c.pending) > 0
}

// Engine steps all cores in lockstep until their work drains.
type Engine struct {
	config    Config
	cores     []*coreState
	memory    *mem.Memory
	scheduler *sched.Scheduler
	metrics   *metrics.Metrics
	cycle     uint64
}

// New creates an engine. Misconfiguration (zero cores, bad cache
// geometry) is rejected here, before any stepping occurs.
func New(config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}

	scheduler, err := sched.New(config.NumCores, config.NumThreads)
	if err != nil {
		return nil, err
	}

	cores := make([]*coreState, config.NumCores)
	for i := range cores {
		coreCache, err := cache.New(config.Cache)
		if err != nil {
			return nil, err
		}
		cores[i] = &coreState{
			cache: coreCache,
			width: config.PipelineWidth,
		}
	}

	return &Engine{
		config:    config,
		cores:     cores,
		memory:    mem.New(config.Memory),
		scheduler: scheduler,
		metrics:   metrics.New(),
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Metrics returns the metrics sink the engine writes into.
func (e *Engine) Metrics() *metrics.Metrics {
	return e.metrics
}

// CurrentCycle returns the simulation clock.
func (e *Engine) CurrentCycle() uint64 {
	return e.cycle
}

// NumCores returns the number of simulated cores.
func (e *Engine) NumCores() int {
	return len(e.cores)
}

// CoreCacheStats returns the cache counters of one core.
func (e *Engine) CoreCacheStats(coreID int) cache.Statistics {
	return e.cores[coreID].cache.Stats()
}

// LoadWorkload routes one instruction stream per thread to its home core.
// Streams are appended in thread order, so instructions of a thread retire
// in issue order.
func (e *Engine) LoadWorkload(threadStreams [][]*insts.Instruction) {
	for threadID, stream := range threadStreams {
		coreID := e.scheduler.ThreadToCore(threadID)
		e.cores[coreID].pending = append(e.cores[coreID].pending, stream...)
	}
}

// Step advances every core by one cycle, running the five substages in
// contract order, then advances the clock and publishes it.
func (e *Engine) Step() {
	e.commitSubstage()
	e.memorySubstage()
	e.executeSubstage()
	e.fetchSubstage()
	e.admissionSubstage()

	e.cycle++
	e.metrics.TotalCycles = e.cycle
}

// RunToCompletion steps until every core's pending queue and pipeline are
// empty. An empty workload terminates after zero steps.
func (e *Engine) RunToCompletion() {
	for e.busy() {
		e.Step()
	}
}

// busy reports whether any core still has work.
func (e *Engine) busy() bool {
	for _, core := range e.cores {
		if core.busy() {
			return true
		}
	}
	return false
}

// commitSubstage retires Commit-stage instructions whose stage countdown
// reached zero and decrements the rest.
func (e *Engine) commitSubstage() {
	for _, core := range e.cores {
		kept := core.pipeline[:0]
		for _, inst := range core.pipeline {
			if inst.Stage == insts.StageCommit {
				if inst.StageCyclesLeft == 0 {
					continue // retired
				}
				inst.StageCyclesLeft--
			}
			kept = append(kept, inst)
		}
		core.pipeline = kept
	}
}

// memorySubstage consumes stall countdowns and moves finished
// Memory-stage instructions to Commit. A stall that reaches zero clears
// in the same substage and the instruction then pays the hit latency as
// its remaining stage occupancy.
func (e *Engine) memorySubstage() {
	for coreID, core := range e.cores {
		for _, inst := range core.pipeline {
			if inst.Stage != insts.StageMemory {
				continue
			}

			if inst.Stalled {
				if inst.StallCyclesLeft > 0 {
					inst.StallCyclesLeft--
					e.metrics.RecordStallCycle(coreID)
				}
				if inst.StallCyclesLeft == 0 {
					inst.Stalled = false
					inst.StageCyclesLeft = core.cache.HitLatency()
				}
				continue
			}

			if inst.StageCyclesLeft > 0 {
				inst.StageCyclesLeft--
				continue
			}

			inst.Stage = insts.StageCommit
			inst.StageCyclesLeft = e.config.Stages.Commit
		}
	}
}

// executeSubstage advances Execute-stage instructions. A memory operation
// that finishes executing performs exactly one cache access, records the
// outcome, and enters the Memory stage either counting down the hit
// latency or stalled for the miss penalty. Compute instructions go
// straight to Commit.
func (e *Engine) executeSubstage() {
	for coreID, core := range e.cores {
		for _, inst := range core.pipeline {
			if inst.Stage != insts.StageExecute {
				continue
			}

			if inst.StageCyclesLeft > 0 {
				inst.StageCyclesLeft--
				continue
			}

			if inst.IsMemoryOp() {
				hit := core.cache.Access(inst.Address) == cache.Hit

				var stall uint64
				if !hit {
					stall = e.memory.AccessLatency()
				}
				e.metrics.RecordAccess(coreID, hit, stall)

				inst.Stage = insts.StageMemory
				if hit {
					inst.StageCyclesLeft = core.cache.HitLatency()
				} else {
					inst.Stalled = true
					inst.StallCyclesLeft = e.memory.AccessLatency()
				}
			} else {
				inst.Stage = insts.StageCommit
				inst.StageCyclesLeft = e.config.Stages.Commit
			}
		}
	}
}

// fetchSubstage moves finished Fetch-stage instructions to Execute.
func (e *Engine) fetchSubstage() {
	for _, core := range e.cores {
		for _, inst := range core.pipeline {
			if inst.Stage != insts.StageFetch {
				continue
			}

			if inst.StageCyclesLeft > 0 {
				inst.StageCyclesLeft--
				continue
			}

			inst.Stage = insts.StageExecute
			inst.StageCyclesLeft = e.config.Stages.Execute
		}
	}
}

// admissionSubstage pops pending instructions in FIFO order into the
// pipeline at the Fetch stage, up to the pipeline width.
func (e *Engine) admissionSubstage() {
	for _, core := range e.cores {
		for len(core.pipeline) < core.width && len(core.pending) > 0 {
			inst := core.pending[0]
			core.pending = core.pending[1:]

			inst.Stage = insts.StageFetch
			inst.StageCyclesLeft = e.config.Stages.Fetch
			core.pipeline = append(core.pipeline, inst)
		}

		if len(core.pipeline) > core.width {
			panic("engine: pipeline exceeds configured width")
		}
	}
}
