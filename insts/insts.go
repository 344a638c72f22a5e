// Package insts defines the synthetic instruction model for MCSim.
//
// Instructions are not decoded from machine code. Workload generation
// produces them directly as {kind, address} pairs, and the execution
// engine mutates their pipeline bookkeeping fields while stepping.
package insts

// Kind represents what an instruction does, for latency modeling.
type Kind uint8

// Instruction kinds.
const (
	// Compute occupies the execute stage only.
	Compute Kind = iota
	// Load may hit the private cache or miss to shared memory.
	Load
	// Store may hit the private cache or miss to shared memory.
	Store
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Compute:
		return "Compute"
	case Load:
		return "Load"
	case Store:
		return "Store"
	default:
		return "Unknown"
	}
}

// Stage represents a pipeline stage. Instructions move strictly forward
// through the stages; no stage is ever revisited.
type Stage uint8

// Pipeline stages, in pipeline order.
const (
	StageFetch Stage = iota
	StageExecute
	StageMemory
	StageCommit
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageFetch:
		return "Fetch"
	case StageExecute:
		return "Execute"
	case StageMemory:
		return "Memory"
	case StageCommit:
		return "Commit"
	default:
		return "Unknown"
	}
}

// Instruction is a single instruction flowing through a core's pipeline.
// It is owned exclusively by the core that fetches it and is mutated only
// by the engine during stepping.
type Instruction struct {
	Kind Kind

	// Address is the logical address accessed by loads and stores.
	// Compute instructions carry no address.
	Address uint64

	// IssueCycle is the logical cycle at which the instruction was
	// generated, kept for tracing.
	IssueCycle uint64

	// Stage is the pipeline stage the instruction currently occupies.
	Stage Stage

	// StageCyclesLeft counts down the remaining cycles in the current
	// stage. Zero means the instruction is ready to advance.
	StageCyclesLeft uint64

	// Stalled marks an instruction waiting on memory in the Memory stage.
	Stalled bool

	// StallCyclesLeft counts down the remaining stall cycles.
	StallCyclesLeft uint64
}

// NewCompute creates a compute instruction at the Fetch stage.
func NewCompute(issueCycle uint64) *Instruction {
	return &Instruction{
		Kind:            Compute,
		IssueCycle:      issueCycle,
		Stage:           StageFetch,
		StageCyclesLeft: 1,
	}
}

// NewMemory creates a load or store instruction at the Fetch stage.
func NewMemory(kind Kind, address uint64, issueCycle uint64) *Instruction {
	return &Instruction{
		Kind:            kind,
		Address:         address,
		IssueCycle:      issueCycle,
		Stage:           StageFetch,
		StageCyclesLeft: 1,
	}
}

// IsMemoryOp returns true if the instruction accesses memory.
func (i *Instruction) IsMemoryOp() bool {
	return i.Kind == Load || i.Kind == Store
}
