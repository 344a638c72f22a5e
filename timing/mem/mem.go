// Package mem models shared memory as a fixed access latency.
//
// The simulator carries no data, so memory is a pure latency source: any
// cache miss costs the configured number of cycles, unconditionally.
package mem

import "fmt"

// Config holds shared-memory timing.
type Config struct {
	// AccessLatency in cycles, charged for every cache miss.
	AccessLatency uint64 `json:"access_latency"`
}

// DefaultConfig returns the default memory timing: 100-cycle accesses.
func DefaultConfig() Config {
	return Config{AccessLatency: 100}
}

// Validate checks the memory timing.
func (c Config) Validate() error {
	if c.AccessLatency == 0 {
		return fmt.Errorf("memory access latency must be > 0")
	}
	return nil
}

// Memory is the shared-memory latency model. It is stateless and has no
// failure modes.
type Memory struct {
	config Config
}

// New creates a memory model.
func New(config Config) *Memory {
	return &Memory{config: config}
}

// AccessLatency returns the number of cycles a memory access takes. It is
// the stall duration an instruction pays on a cache miss.
func (m *Memory) AccessLatency() uint64 {
	return m.config.AccessLatency
}

// Config returns the memory configuration.
func (m *Memory) Config() Config {
	return m.config
}
