// Package main provides the entry point for MCSim.
// MCSim is a discrete-time multicore execution simulator built on Akita
// cache components.
//
// For the full CLI, use: go run ./cmd/mcsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("MCSim - Multicore Execution Simulator")
	fmt.Println("Models thread scheduling, private caches, and memory latency")
	fmt.Println("")
	fmt.Println("Usage: mcsim [options]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config       Path to simulation configuration JSON file")
	fmt.Println("  -cores        Number of simulated cores")
	fmt.Println("  -threads      Number of workload threads")
	fmt.Println("  -insts        Instructions per thread")
	fmt.Println("  -mem-fraction Fraction of memory instructions")
	fmt.Println("  -pattern      Access pattern: sequential or conflict-heavy")
	fmt.Println("  -v            Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/mcsim' for the full CLI,")
	fmt.Println("or 'go run ./cmd/benchmark' for the workload comparison.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/mcsim' instead.")
	}
}
