// Package benchmarks provides the workload comparison harness for MCSim.
//
// The harness runs the same machine configuration against differently
// shaped workloads (a cache-friendly baseline and a conflict-heavy
// adversary) and quantifies the slowdown caused by cache-set conflicts.
package benchmarks

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/xid"
	"github.com/sarchlab/akita/v4/datarecording"

	"github.com/sarchlab/mcsim/timing/cache"
	"github.com/sarchlab/mcsim/timing/engine"
	"github.com/sarchlab/mcsim/timing/mem"
	"github.com/sarchlab/mcsim/workload"
)

// Scenario defines one workload shape to run.
type Scenario struct {
	// Name identifies the scenario.
	Name string

	// Description explains what the scenario exercises.
	Description string

	// Pattern selects the address generation scheme.
	Pattern workload.AccessPattern

	// WorkingSetLines caps the distinct lines of sequential scenarios.
	WorkingSetLines int
}

// DefaultScenarios returns the baseline-vs-adverse pair. The baseline
// working set fits in the cache, so reuse produces hits; the adverse
// scenario aliases every access into one set.
func DefaultScenarios(cacheNumSets, associativity int) []Scenario {
	return []Scenario{
		{
			Name:        "baseline_sequential",
			Description: "sequential accesses, working set resident in cache",
			Pattern:     workload.Sequential,
			// All ways of all sets stay reusable.
			WorkingSetLines: cacheNumSets * associativity,
		},
		{
			Name:            "adverse_conflict",
			Description:     "all accesses alias into one cache set",
			Pattern:         workload.ConflictHeavy,
			WorkingSetLines: 0,
		},
	}
}

// Config configures the harness machine and workload dimensions.
type Config struct {
	// NumCores is the simulated core count.
	NumCores int

	// NumThreads is the workload thread count.
	NumThreads int

	// InstructionsPerThread is the stream length per thread.
	InstructionsPerThread int

	// MemoryFraction is the fraction of memory instructions.
	MemoryFraction float64

	// CacheNumSets sizes the per-core cache (2-way, 64B lines).
	CacheNumSets int

	// MemoryLatency is the miss penalty in cycles.
	MemoryLatency uint64

	// Output is where results are written. Default: os.Stdout.
	Output io.Writer
}

// DefaultConfig mirrors the reference benchmark: two cores, two threads,
// 2000 instructions each, half of them memory operations, a 32-set cache,
// and a 45-cycle memory.
func DefaultConfig() Config {
	return Config{
		NumCores:              2,
		NumThreads:            2,
		InstructionsPerThread: 2000,
		MemoryFraction:        0.5,
		CacheNumSets:          32,
		MemoryLatency:         45,
		Output:                os.Stdout,
	}
}

// Result holds the metrics of one scenario run.
type Result struct {
	// Name identifies the scenario.
	Name string

	// Pattern is the access pattern that was run.
	Pattern workload.AccessPattern

	// TotalCycles is the simulated cycle count.
	TotalCycles uint64

	// MemoryAccesses counts loads and stores that reached the caches.
	MemoryAccesses uint64

	// HitRate and MissRate are the cache outcome rates.
	HitRate  float64
	MissRate float64

	// StallCycles is the accumulated memory stall count.
	StallCycles uint64

	// SlowdownPercent is the slowdown vs the first (baseline) scenario.
	SlowdownPercent float64

	// WallTime is the host time taken to simulate the scenario.
	WallTime time.Duration
}

// Harness runs scenarios and reports results.
type Harness struct {
	config    Config
	scenarios []Scenario
}

// NewHarness creates a harness with the default scenario pair.
func NewHarness(config Config) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{
		config:    config,
		scenarios: DefaultScenarios(config.CacheNumSets, 2),
	}
}

// AddScenario appends a scenario to the run list.
func (h *Harness) AddScenario(s Scenario) {
	h.scenarios = append(h.scenarios, s)
}

// Scenarios returns the scenarios the harness will run.
func (h *Harness) Scenarios() []Scenario {
	return h.scenarios
}

// RunAll runs every scenario on a fresh engine and returns the results.
// The first scenario serves as the baseline for slowdown percentages.
func (h *Harness) RunAll() ([]Result, error) {
	results := make([]Result, 0, len(h.scenarios))

	var baselineCycles uint64
	for i, scenario := range h.scenarios {
		result, err := h.runScenario(scenario)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}

		if i == 0 {
			baselineCycles = result.TotalCycles
		} else if baselineCycles > 0 && result.TotalCycles > baselineCycles {
			result.SlowdownPercent = float64(result.TotalCycles-baselineCycles) /
				float64(baselineCycles) * 100.0
		}

		results = append(results, result)
	}

	return results, nil
}

// runScenario builds a fresh engine and workload for one scenario.
func (h *Harness) runScenario(scenario Scenario) (Result, error) {
	simConfig := engine.Config{
		NumCores:      h.config.NumCores,
		NumThreads:    h.config.NumThreads,
		PipelineWidth: 4,
		Cache: cache.Config{
			Size:          h.config.CacheNumSets * 64 * 2,
			LineSize:      64,
			Associativity: 2,
			HitLatency:    1,
		},
		Memory: mem.Config{AccessLatency: h.config.MemoryLatency},
		Stages: engine.DefaultStageCycles(),
	}

	e, err := engine.New(simConfig)
	if err != nil {
		return Result{}, err
	}

	workloadConfig := workload.Config{
		InstructionsPerThread: h.config.InstructionsPerThread,
		MemoryFraction:        h.config.MemoryFraction,
		Pattern:               scenario.Pattern,
		LineSize:              64,
		CacheNumSets:          h.config.CacheNumSets,
		WorkingSetLines:       scenario.WorkingSetLines,
	}

	e.LoadWorkload(workload.Build(h.config.NumThreads, workloadConfig))

	start := time.Now()
	e.RunToCompletion()
	wallTime := time.Since(start)

	m := e.Metrics()
	return Result{
		Name:           scenario.Name,
		Pattern:        scenario.Pattern,
		TotalCycles:    m.TotalCycles,
		MemoryAccesses: m.TotalMemoryAccesses,
		HitRate:        m.HitRate(),
		MissRate:       m.MissRate(),
		StallCycles:    m.MemoryStallCycles,
		WallTime:       wallTime,
	}, nil
}

// PrintResults writes the results in a human-readable format.
func (h *Harness) PrintResults(results []Result) {
	out := h.config.Output

	_, _ = fmt.Fprintln(out, "=== MCSim Workload Comparison ===")
	_, _ = fmt.Fprintln(out, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(out, "Scenario: %s (%s)\n", r.Name, r.Pattern)
		_, _ = fmt.Fprintf(out, "  Total cycles:        %d\n", r.TotalCycles)
		_, _ = fmt.Fprintf(out, "  Memory accesses:     %d\n", r.MemoryAccesses)
		_, _ = fmt.Fprintf(out, "  Cache hit rate:      %.2f%%\n", r.HitRate*100.0)
		_, _ = fmt.Fprintf(out, "  Cache miss rate:     %.2f%%\n", r.MissRate*100.0)
		_, _ = fmt.Fprintf(out, "  Memory stall cycles: %d\n", r.StallCycles)
		if r.SlowdownPercent > 0 {
			_, _ = fmt.Fprintf(out, "  Slowdown vs baseline: %.2f%%\n",
				r.SlowdownPercent)
		}
		_, _ = fmt.Fprintf(out, "  Wall time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(out, "")
	}
}

// PrintCSV writes the results in CSV format.
func (h *Harness) PrintCSV(results []Result) {
	out := h.config.Output

	_, _ = fmt.Fprintln(out,
		"name,pattern,cycles,accesses,hit_rate,miss_rate,stall_cycles,slowdown_percent")
	for _, r := range results {
		_, _ = fmt.Fprintf(out, "%s,%s,%d,%d,%.4f,%.4f,%d,%.2f\n",
			r.Name, r.Pattern, r.TotalCycles, r.MemoryAccesses,
			r.HitRate, r.MissRate, r.StallCycles, r.SlowdownPercent)
	}
}

// resultEntry is the flat row shape recorded into the results database.
type resultEntry struct {
	RunID           string
	Scenario        string
	Pattern         string
	TotalCycles     uint64
	MemoryAccesses  uint64
	HitRate         float64
	MissRate        float64
	StallCycles     uint64
	SlowdownPercent float64
}

// Record writes the results into a data recorder, tagged with a unique
// run ID so multiple runs can share one database.
func (h *Harness) Record(recorder datarecording.DataRecorder, results []Result) {
	runID := xid.New().String()

	recorder.CreateTable("scenario_results", resultEntry{})
	for _, r := range results {
		recorder.InsertData("scenario_results", resultEntry{
			RunID:           runID,
			Scenario:        r.Name,
			Pattern:         r.Pattern.String(),
			TotalCycles:     r.TotalCycles,
			MemoryAccesses:  r.MemoryAccesses,
			HitRate:         r.HitRate,
			MissRate:        r.MissRate,
			StallCycles:     r.StallCycles,
			SlowdownPercent: r.SlowdownPercent,
		})
	}
	recorder.Flush()
}
