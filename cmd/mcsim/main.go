// Package main provides the entry point for MCSim.
// MCSim is a discrete-time multicore simulator that quantifies how thread
// scheduling, private caches, and shared-memory latency shape execution
// cycle counts.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/mcsim/timing/engine"
	"github.com/sarchlab/mcsim/workload"
)

var (
	configPath  = flag.String("config", "", "Path to simulation configuration JSON file")
	numCores    = flag.Int("cores", 2, "Number of simulated cores")
	numThreads  = flag.Int("threads", 2, "Number of workload threads")
	numInsts    = flag.Int("insts", 1000, "Instructions per thread")
	memFraction = flag.Float64("mem-fraction", 0.4, "Fraction of memory instructions")
	patternName = flag.String("pattern", "sequential", "Access pattern: sequential or conflict-heavy")
	workingSet  = flag.Int("working-set", 0, "Working set cap in cache lines (0 = unbounded)")
	idealCycles = flag.Uint64("ideal", 0, "Ideal cycle count for slowdown reporting (0 = skip)")
	verbose     = flag.Bool("v", false, "Verbose output (per-core breakdown)")
)

func main() {
	flag.Parse()

	// Set up simulation configuration
	var simConfig engine.Config
	if *configPath != "" {
		var err error
		simConfig, err = engine.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading simulation config: %v\n", err)
			os.Exit(1)
		}
	} else {
		simConfig = engine.DefaultConfig()
		simConfig.NumCores = *numCores
		simConfig.NumThreads = *numThreads
	}

	e, err := engine.New(simConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating engine: %v\n", err)
		os.Exit(1)
	}

	pattern, err := workload.ParsePattern(*patternName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	workloadConfig := workload.Config{
		InstructionsPerThread: *numInsts,
		MemoryFraction:        *memFraction,
		Pattern:               pattern,
		LineSize:              simConfig.Cache.LineSize,
		CacheNumSets:          simConfig.Cache.NumSets(),
		WorkingSetLines:       *workingSet,
	}

	e.LoadWorkload(workload.Build(simConfig.NumThreads, workloadConfig))
	e.RunToCompletion()

	printMetrics(e, *idealCycles, *verbose)
}

func printMetrics(e *engine.Engine, ideal uint64, verbose bool) {
	m := e.Metrics()

	fmt.Println("=== MCSim Results ===")
	fmt.Printf("Total cycles:          %d\n", m.TotalCycles)
	fmt.Printf("Total memory accesses: %d\n", m.TotalMemoryAccesses)
	fmt.Printf("Cache hits:            %d\n", m.CacheHits)
	fmt.Printf("Cache misses:          %d\n", m.CacheMisses)
	fmt.Printf("Cache hit rate:        %.2f%%\n", m.HitRate()*100.0)
	fmt.Printf("Cache miss rate:       %.2f%%\n", m.MissRate()*100.0)
	fmt.Printf("Memory stall cycles:   %d\n", m.MemoryStallCycles)

	if ideal > 0 {
		fmt.Printf("Slowdown vs ideal:     %.2f%%\n", m.SlowdownPercent(ideal))
	}

	if verbose {
		fmt.Println("\n--- Per-core breakdown ---")
		for coreID := 0; coreID < e.NumCores(); coreID++ {
			per, ok := m.PerCore[coreID]
			if !ok {
				fmt.Printf("Core %d: idle\n", coreID)
				continue
			}
			fmt.Printf("Core %d: accesses=%d hits=%d misses=%d stalls=%d\n",
				coreID, per.MemoryAccesses, per.CacheHits, per.CacheMisses,
				per.MemoryStallCycles)
		}
	}
}
