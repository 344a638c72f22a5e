// Package sched maps threads to cores.
//
// The mapping is static round-robin, computed once when a workload is
// loaded. Threads never migrate between cores during a run.
package sched

import "fmt"

// Scheduler assigns threads to cores.
type Scheduler struct {
	numCores   int
	numThreads int
}

// New creates a scheduler. It fails when the core count is zero, since
// the mapping is undefined without cores.
func New(numCores, numThreads int) (*Scheduler, error) {
	if numCores <= 0 {
		return nil, fmt.Errorf("number of cores must be > 0, got %d", numCores)
	}
	if numThreads < 0 {
		return nil, fmt.Errorf("number of threads must be >= 0, got %d",
			numThreads)
	}

	return &Scheduler{
		numCores:   numCores,
		numThreads: numThreads,
	}, nil
}

// ThreadToCore returns the home core of a thread: thread T runs on core
// T mod N.
func (s *Scheduler) ThreadToCore(threadID int) int {
	return threadID % s.numCores
}

// CoreToThread returns the first thread assigned to a core, and false for
// core IDs outside the configured range.
func (s *Scheduler) CoreToThread(coreID int) (int, bool) {
	if coreID < 0 || coreID >= s.numCores {
		return 0, false
	}
	if s.numThreads == 0 {
		return 0, false
	}
	return coreID % s.numThreads, true
}

// NumCores returns the configured core count.
func (s *Scheduler) NumCores() int {
	return s.numCores
}

// NumThreads returns the configured thread count.
func (s *Scheduler) NumThreads() int {
	return s.numThreads
}
