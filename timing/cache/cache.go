// Package cache models a private set-associative L1 cache with LRU
// replacement, built on Akita cache directory components.
//
// The cache tracks tags and replacement state only. MCSim instructions
// carry no data, so there is no data store and no writeback traffic;
// every access resolves to a hit or a miss, and every miss allocates
// exactly one line.
package cache

import (
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds cache geometry and hit timing.
type Config struct {
	// Size in bytes.
	Size int `json:"size"`
	// LineSize in bytes.
	LineSize int `json:"line_size"`
	// Associativity (number of ways per set).
	Associativity int `json:"associativity"`
	// HitLatency in cycles.
	HitLatency uint64 `json:"hit_latency"`
}

// DefaultConfig returns the default cache geometry: 4KB, 64B lines,
// 2-way, 1-cycle hits.
func DefaultConfig() Config {
	return Config{
		Size:          4096,
		LineSize:      64,
		Associativity: 2,
		HitLatency:    1,
	}
}

// NumSets returns the number of sets implied by the geometry.
func (c Config) NumSets() int {
	if c.LineSize <= 0 || c.Associativity <= 0 {
		return 0
	}
	return c.Size / c.LineSize / c.Associativity
}

// Validate checks that the geometry yields a positive power-of-two set
// count.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("cache size must be > 0, got %d", c.Size)
	}
	if c.LineSize <= 0 {
		return fmt.Errorf("cache line size must be > 0, got %d", c.LineSize)
	}
	if c.Associativity <= 0 {
		return fmt.Errorf("cache associativity must be > 0, got %d",
			c.Associativity)
	}

	numSets := c.NumSets()
	if numSets <= 0 {
		return fmt.Errorf(
			"cache geometry %dB/%dB/%d-way yields no sets",
			c.Size, c.LineSize, c.Associativity)
	}
	if numSets&(numSets-1) != 0 {
		return fmt.Errorf(
			"cache set count must be a power of two, got %d", numSets)
	}

	return nil
}

// Result is the outcome of a cache access.
type Result uint8

// Access outcomes.
const (
	Miss Result = iota
	Hit
)

// String returns the outcome name.
func (r Result) String() string {
	if r == Hit {
		return "Hit"
	}
	return "Miss"
}

// Statistics holds cache access counters.
type Statistics struct {
	Accesses  uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache is one core's private L1 cache.
type Cache struct {
	config Config

	// Akita cache directory for tag and LRU state management.
	directory *akitacache.DirectoryImpl

	stats Statistics
}

// New creates a cache. It fails if the geometry does not yield a positive
// power-of-two set count.
func New(config Config) (*Cache, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cache config: %w", err)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			config.NumSets(),
			config.Associativity,
			config.LineSize,
			akitacache.NewLRUVictimFinder(),
		),
	}, nil
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns the cache access counters.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// NumSets returns the number of sets.
func (c *Cache) NumSets() int {
	return c.config.NumSets()
}

// LineSize returns the line size in bytes.
func (c *Cache) LineSize() int {
	return c.config.LineSize
}

// HitLatency returns the hit latency in cycles.
func (c *Cache) HitLatency() uint64 {
	return c.config.HitLatency
}

// Access looks up the address and returns Hit or Miss. A hit promotes the
// line to most-recently-used. A miss evicts the least-recently-used way of
// the target set and allocates the line there.
func (c *Cache) Access(addr uint64) Result {
	c.stats.Accesses++

	lineAddr := addr / uint64(c.config.LineSize) * uint64(c.config.LineSize)

	block := c.directory.Lookup(0, lineAddr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		return Hit
	}

	c.stats.Misses++
	c.allocate(lineAddr)

	return Miss
}

// allocate places the line into the LRU way of its set.
func (c *Cache) allocate(lineAddr uint64) {
	victim := c.directory.FindVictim(lineAddr)
	if victim == nil {
		panic("cache: no victim found, directory is misconfigured")
	}

	if victim.IsValid {
		c.stats.Evictions++
	}

	victim.Tag = lineAddr
	victim.IsValid = true
	c.directory.Visit(victim)
}

// Contains reports whether the address is currently resident, without
// touching replacement state. Intended for tests and inspection.
func (c *Cache) Contains(addr uint64) bool {
	lineAddr := addr / uint64(c.config.LineSize) * uint64(c.config.LineSize)
	block := c.directory.Lookup(0, lineAddr)
	return block != nil && block.IsValid
}

// WayOrder returns, for the set holding addr, the way indices of all lines
// in the set. The result is always a permutation of [0, associativity).
// Intended for tests and inspection.
func (c *Cache) WayOrder(addr uint64) []int {
	lineAddr := addr / uint64(c.config.LineSize) * uint64(c.config.LineSize)
	setID := int(lineAddr / uint64(c.config.LineSize) %
		uint64(c.config.NumSets()))

	sets := c.directory.GetSets()
	ways := make([]int, 0, c.config.Associativity)
	for _, block := range sets[setID].Blocks {
		ways = append(ways, block.WayID)
	}

	return ways
}

// Reset invalidates all lines and clears the counters.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}
