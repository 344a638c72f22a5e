package engine

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/mcsim/timing/cache"
	"github.com/sarchlab/mcsim/timing/mem"
)

// StageCycles holds the base duration of each fixed-duration pipeline
// stage. The Memory stage has no base duration; its occupancy is the hit
// latency or the miss stall.
type StageCycles struct {
	// Fetch duration in cycles. Default: 1.
	Fetch uint64 `json:"fetch_cycles"`

	// Execute duration in cycles. Default: 1.
	Execute uint64 `json:"execute_cycles"`

	// Commit duration in cycles. Default: 1.
	Commit uint64 `json:"commit_cycles"`
}

// DefaultStageCycles returns single-cycle stage durations.
func DefaultStageCycles() StageCycles {
	return StageCycles{
		Fetch:   1,
		Execute: 1,
		Commit:  1,
	}
}

// Config holds the full simulation configuration.
type Config struct {
	// NumCores is the number of simulated cores. Must be > 0.
	NumCores int `json:"num_cores"`

	// NumThreads is the number of workload threads routed onto the cores.
	NumThreads int `json:"num_threads"`

	// PipelineWidth bounds the instructions in flight per core. Must be > 0.
	PipelineWidth int `json:"pipeline_width"`

	// Cache is the per-core private cache geometry and hit timing.
	Cache cache.Config `json:"cache"`

	// Memory is the shared-memory timing.
	Memory mem.Config `json:"memory"`

	// Stages holds the fixed stage durations.
	Stages StageCycles `json:"stages"`
}

// DefaultConfig returns a two-core, two-thread configuration with default
// cache and memory timing.
func DefaultConfig() Config {
	return Config{
		NumCores:      2,
		NumThreads:    2,
		PipelineWidth: 4,
		Cache:         cache.DefaultConfig(),
		Memory:        mem.DefaultConfig(),
		Stages:        DefaultStageCycles(),
	}
}

// LoadConfig loads a Config from a JSON file. Missing fields keep their
// default values.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read simulation config file: %w", err)
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse simulation config: %w", err)
	}

	return config, nil
}

// SaveConfig writes the Config to a JSON file.
func (c Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize simulation config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write simulation config file: %w", err)
	}

	return nil
}

// Validate checks the configuration. Construction-time misconfiguration
// is fatal: no engine is produced from an invalid Config.
func (c Config) Validate() error {
	if c.NumCores <= 0 {
		return fmt.Errorf("number of cores must be > 0, got %d", c.NumCores)
	}
	if c.NumThreads < 0 {
		return fmt.Errorf("number of threads must be >= 0, got %d", c.NumThreads)
	}
	if c.PipelineWidth <= 0 {
		return fmt.Errorf("pipeline width must be > 0, got %d", c.PipelineWidth)
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Memory.Validate(); err != nil {
		return err
	}
	if c.Stages.Fetch == 0 || c.Stages.Execute == 0 || c.Stages.Commit == 0 {
		return fmt.Errorf("stage durations must be > 0, got %+v", c.Stages)
	}

	return nil
}
