// Package workload generates synthetic instruction streams.
//
// The generator is an external collaborator of the execution engine: it
// produces ordered {kind, address} streams before a run starts and is
// never consulted during stepping. The memory-vs-compute selection uses a
// deterministic modulo pattern tied to the configured percentage, not a
// random source; it is a swappable policy, not part of the engine
// contract.
package workload

import (
	"fmt"
	"math"

	"github.com/sarchlab/mcsim/insts"
)

// AccessPattern selects how memory addresses are generated.
type AccessPattern uint8

// Access patterns.
const (
	// Sequential walks addresses line by line, optionally wrapping within
	// a working set so that reuse produces cache hits.
	Sequential AccessPattern = iota
	// ConflictHeavy aliases every address into the same cache set,
	// forcing evictions.
	ConflictHeavy
)

// String returns the pattern name.
func (p AccessPattern) String() string {
	switch p {
	case Sequential:
		return "sequential"
	case ConflictHeavy:
		return "conflict-heavy"
	default:
		return "unknown"
	}
}

// ParsePattern parses a pattern name as used on the command line.
func ParsePattern(s string) (AccessPattern, error) {
	switch s {
	case "sequential":
		return Sequential, nil
	case "conflict-heavy", "conflict":
		return ConflictHeavy, nil
	default:
		return Sequential, fmt.Errorf("unknown access pattern %q", s)
	}
}

// Config describes the instruction stream of one thread.
type Config struct {
	// InstructionsPerThread is the stream length.
	InstructionsPerThread int `json:"instructions_per_thread"`

	// MemoryFraction is the fraction of instructions that are loads or
	// stores; the rest are compute.
	MemoryFraction float64 `json:"memory_fraction"`

	// Pattern selects the address generation scheme.
	Pattern AccessPattern `json:"pattern"`

	// LineSize is the address stride in bytes.
	LineSize int `json:"line_size"`

	// CacheNumSets is used by ConflictHeavy to alias all addresses into
	// one set.
	CacheNumSets int `json:"cache_num_sets"`

	// WorkingSetLines caps the distinct lines touched by Sequential, so
	// reuse produces hits. Zero means no cap.
	WorkingSetLines int `json:"working_set_lines"`
}

// DefaultConfig returns a 1000-instruction sequential stream with 40%
// memory instructions.
func DefaultConfig() Config {
	return Config{
		InstructionsPerThread: 1000,
		MemoryFraction:        0.4,
		Pattern:               Sequential,
		LineSize:              64,
		CacheNumSets:          64,
		WorkingSetLines:       0,
	}
}

// Generator produces one thread's instruction stream.
type Generator struct {
	config Config
	index  int
}

// NewGenerator creates a generator.
func NewGenerator(config Config) *Generator {
	return &Generator{config: config}
}

// Next returns the next instruction, or false when the stream is
// exhausted. The issue cycle is recorded on the instruction for tracing.
func (g *Generator) Next(issueCycle uint64) (*insts.Instruction, bool) {
	if g.index >= g.config.InstructionsPerThread {
		return nil, false
	}

	frac := int(math.Round(g.config.MemoryFraction * 100))
	if frac > 100 {
		frac = 100
	}
	useMemory := g.index%100 < frac || g.config.MemoryFraction >= 1.0

	g.index++

	if !useMemory {
		return insts.NewCompute(issueCycle), true
	}

	kind := insts.Store
	if g.index%2 == 0 {
		kind = insts.Load
	}

	return insts.NewMemory(kind, g.nextAddress(), issueCycle), true
}

// nextAddress produces the address for the instruction just emitted.
func (g *Generator) nextAddress() uint64 {
	idx := uint64(g.index - 1)

	switch g.config.Pattern {
	case ConflictHeavy:
		// All line addresses are multiples of the set count, so every
		// access maps to set 0.
		lineAddr := idx * uint64(g.config.CacheNumSets)
		return lineAddr * uint64(g.config.LineSize)
	default:
		lineIdx := idx
		if g.config.WorkingSetLines > 0 {
			lineIdx = idx % uint64(g.config.WorkingSetLines)
		}
		return lineIdx * uint64(g.config.LineSize)
	}
}

// Remaining returns the number of instructions not yet generated.
func (g *Generator) Remaining() int {
	left := g.config.InstructionsPerThread - g.index
	if left < 0 {
		return 0
	}
	return left
}

// Config returns the generator configuration.
func (g *Generator) Config() Config {
	return g.config
}

// Build generates one instruction stream per thread, all from the same
// configuration.
func Build(numThreads int, config Config) [][]*insts.Instruction {
	streams := make([][]*insts.Instruction, 0, numThreads)

	for t := 0; t < numThreads; t++ {
		gen := NewGenerator(config)
		stream := make([]*insts.Instruction, 0, config.InstructionsPerThread)

		cycle := uint64(0)
		for {
			inst, ok := gen.Next(cycle)
			if !ok {
				break
			}
			stream = append(stream, inst)
			cycle++
		}

		streams = append(streams, stream)
	}

	return streams
}
