// Package metrics collects simulation counters.
//
// The metrics struct is a sink: the engine writes into it once per event
// and never reads it back. All counters are monotonic. Passing it by
// explicit reference into the engine keeps the engine free of ambient
// state and testable in isolation.
package metrics

// Metrics holds aggregate and per-core simulation counters.
type Metrics struct {
	// TotalCycles is the simulation clock, published once per step.
	TotalCycles uint64
	// TotalMemoryAccesses counts loads and stores that reached the cache.
	TotalMemoryAccesses uint64
	// CacheHits counts accesses that hit a private cache.
	CacheHits uint64
	// CacheMisses counts accesses that missed to shared memory.
	CacheMisses uint64
	// MemoryStallCycles accumulates miss penalties plus the cycles
	// instructions spend stalled in the Memory stage.
	MemoryStallCycles uint64
	// PerCore breaks the counters out by core ID.
	PerCore map[int]*PerCore
}

// PerCore holds the per-core counter breakdown.
type PerCore struct {
	MemoryAccesses    uint64
	CacheHits         uint64
	CacheMisses       uint64
	MemoryStallCycles uint64
}

// New creates an empty metrics sink.
func New() *Metrics {
	return &Metrics{
		PerCore: make(map[int]*PerCore),
	}
}

// perCore returns the breakdown for a core, creating it on first use.
func (m *Metrics) perCore(coreID int) *PerCore {
	per, ok := m.PerCore[coreID]
	if !ok {
		per = &PerCore{}
		m.PerCore[coreID] = per
	}
	return per
}

// RecordAccess books one cache access: the hit/miss outcome and the stall
// duration charged at access time (zero for a hit, the configured memory
// latency for a miss).
func (m *Metrics) RecordAccess(coreID int, hit bool, stallCycles uint64) {
	m.TotalMemoryAccesses++
	if hit {
		m.CacheHits++
	} else {
		m.CacheMisses++
	}
	m.MemoryStallCycles += stallCycles

	per := m.perCore(coreID)
	per.MemoryAccesses++
	if hit {
		per.CacheHits++
	} else {
		per.CacheMisses++
	}
	per.MemoryStallCycles += stallCycles
}

// RecordStallCycle books one cycle an instruction spent stalled in the
// Memory stage.
func (m *Metrics) RecordStallCycle(coreID int) {
	m.MemoryStallCycles++
	m.perCore(coreID).MemoryStallCycles++
}

// HitRate returns hits/(hits+misses), and 1.0 when no accesses occurred.
func (m *Metrics) HitRate() float64 {
	total := m.CacheHits + m.CacheMisses
	if total == 0 {
		return 1.0
	}
	return float64(m.CacheHits) / float64(total)
}

// MissRate returns misses/(hits+misses), and 0.0 when no accesses
// occurred.
func (m *Metrics) MissRate() float64 {
	total := m.CacheHits + m.CacheMisses
	if total == 0 {
		return 0.0
	}
	return float64(m.CacheMisses) / float64(total)
}

// SlowdownVsIdeal returns (actual-ideal)/ideal relative to an externally
// supplied ideal cycle count, and 0 when actual <= ideal or ideal is 0.
func (m *Metrics) SlowdownVsIdeal(idealCycles uint64) float64 {
	if idealCycles == 0 {
		return 0.0
	}
	if m.TotalCycles <= idealCycles {
		return 0.0
	}
	return float64(m.TotalCycles-idealCycles) / float64(idealCycles)
}

// SlowdownPercent returns the slowdown vs the ideal cycle count as a
// percentage.
func (m *Metrics) SlowdownPercent(idealCycles uint64) float64 {
	return m.SlowdownVsIdeal(idealCycles) * 100.0
}
