package engine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mcsim/insts"
	"github.com/sarchlab/mcsim/timing/cache"
	"github.com/sarchlab/mcsim/timing/engine"
	"github.com/sarchlab/mcsim/timing/mem"
)

// singleCoreConfig is the end-to-end geometry used throughout: one core,
// pipeline width 4, a 256B/64B-line/2-way cache, and a 10-cycle memory.
func singleCoreConfig() engine.Config {
	config := engine.DefaultConfig()
	config.NumCores = 1
	config.NumThreads = 1
	config.PipelineWidth = 4
	config.Cache = cache.Config{
		Size:          256,
		LineSize:      64,
		Associativity: 2,
		HitLatency:    1,
	}
	config.Memory = mem.Config{AccessLatency: 10}
	return config
}

func loads(addrs ...uint64) []*insts.Instruction {
	stream := make([]*insts.Instruction, 0, len(addrs))
	for i, addr := range addrs {
		stream = append(stream, insts.NewMemory(insts.Load, addr, uint64(i)))
	}
	return stream
}

func computes(n int) []*insts.Instruction {
	stream := make([]*insts.Instruction, 0, n)
	for i := 0; i < n; i++ {
		stream = append(stream, insts.NewCompute(uint64(i)))
	}
	return stream
}

var _ = Describe("Engine", func() {
	Describe("Construction", func() {
		It("should reject zero cores", func() {
			config := singleCoreConfig()
			config.NumCores = 0
			_, err := engine.New(config)
			Expect(err).To(HaveOccurred())
		})

		It("should reject zero pipeline width", func() {
			config := singleCoreConfig()
			config.PipelineWidth = 0
			_, err := engine.New(config)
			Expect(err).To(HaveOccurred())
		})

		It("should reject a non-power-of-two set count", func() {
			config := singleCoreConfig()
			config.Cache.Size = 384 // 3 sets of 2 ways x 64B
			_, err := engine.New(config)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Termination", func() {
		It("should terminate after zero steps on an empty workload", func() {
			e, err := engine.New(singleCoreConfig())
			Expect(err).NotTo(HaveOccurred())

			e.RunToCompletion()

			Expect(e.CurrentCycle()).To(Equal(uint64(0)))
			Expect(e.Metrics().TotalCycles).To(Equal(uint64(0)))
		})

		It("should drain any finite workload", func() {
			config := singleCoreConfig()
			config.NumCores = 2
			config.NumThreads = 2
			e, err := engine.New(config)
			Expect(err).NotTo(HaveOccurred())

			e.LoadWorkload([][]*insts.Instruction{
				loads(0, 64, 128, 0, 64),
				computes(20),
			})
			e.RunToCompletion()

			Expect(e.CurrentCycle()).To(BeNumerically(">", 0))
		})
	})

	Describe("Cycle-exact timing", func() {
		It("should retire one compute instruction in 7 cycles", func() {
			// Admission(1) + Fetch(2) + Execute(2) + Commit(2): a stage of
			// duration d occupies d+1 cycles because the transition out
			// happens one step after the countdown reaches zero.
			e, err := engine.New(singleCoreConfig())
			Expect(err).NotTo(HaveOccurred())

			e.LoadWorkload([][]*insts.Instruction{computes(1)})
			e.RunToCompletion()

			Expect(e.Metrics().TotalCycles).To(Equal(uint64(7)))
		})

		It("should overlap instructions within the pipeline width", func() {
			e, err := engine.New(singleCoreConfig())
			Expect(err).NotTo(HaveOccurred())

			e.LoadWorkload([][]*insts.Instruction{computes(2)})
			e.RunToCompletion()

			// Both admitted in the same cycle, both retire together.
			Expect(e.Metrics().TotalCycles).To(Equal(uint64(7)))
		})

		It("should serialize instructions beyond the pipeline width", func() {
			config := singleCoreConfig()
			config.PipelineWidth = 1
			e, err := engine.New(config)
			Expect(err).NotTo(HaveOccurred())

			e.LoadWorkload([][]*insts.Instruction{computes(2)})
			e.RunToCompletion()

			// The second instruction is admitted in the step that retires
			// the first, so it finishes 6 cycles later.
			Expect(e.Metrics().TotalCycles).To(Equal(uint64(13)))
		})

		It("should charge the miss penalty as stall cycles", func() {
			e, err := engine.New(singleCoreConfig())
			Expect(err).NotTo(HaveOccurred())

			e.LoadWorkload([][]*insts.Instruction{loads(0)})
			e.RunToCompletion()

			// One load, one miss: 5 cycles to reach the cache access, 10
			// stalled, then hit-latency occupancy and commit.
			Expect(e.Metrics().TotalCycles).To(Equal(uint64(19)))

			// The sink books the full penalty at access time and one stall
			// cycle per stalled step.
			Expect(e.Metrics().MemoryStallCycles).To(Equal(uint64(20)))
			Expect(e.Metrics().PerCore[0].MemoryStallCycles).
				To(Equal(uint64(20)))
		})
	})

	Describe("Cache interaction", func() {
		It("should miss then hit when loading the same address twice", func() {
			e, err := engine.New(singleCoreConfig())
			Expect(err).NotTo(HaveOccurred())

			e.LoadWorkload([][]*insts.Instruction{loads(0x40, 0x40)})
			e.RunToCompletion()

			m := e.Metrics()
			Expect(m.CacheMisses).To(Equal(uint64(1)))
			Expect(m.CacheHits).To(Equal(uint64(1)))
			Expect(m.TotalMemoryAccesses).To(Equal(uint64(2)))
		})

		It("should miss three times on a direct-mapped conflict", func() {
			config := singleCoreConfig()
			config.Cache = cache.Config{
				Size:          128,
				LineSize:      32,
				Associativity: 1,
				HitLatency:    1,
			}
			e, err := engine.New(config)
			Expect(err).NotTo(HaveOccurred())

			// 0 and 128 share set 0 with different tags.
			e.LoadWorkload([][]*insts.Instruction{loads(0, 128, 0)})
			e.RunToCompletion()

			m := e.Metrics()
			Expect(m.CacheMisses).To(Equal(uint64(3)))
			Expect(m.CacheHits).To(Equal(uint64(0)))
		})

		It("should keep accesses equal to hits plus misses", func() {
			config := singleCoreConfig()
			config.NumCores = 2
			config.NumThreads = 3
			e, err := engine.New(config)
			Expect(err).NotTo(HaveOccurred())

			e.LoadWorkload([][]*insts.Instruction{
				loads(0, 64, 128, 192, 0, 64),
				loads(0, 0, 0),
				computes(10),
			})
			e.RunToCompletion()

			m := e.Metrics()
			Expect(m.TotalMemoryAccesses).
				To(Equal(m.CacheHits + m.CacheMisses))
			Expect(m.TotalMemoryAccesses).To(Equal(uint64(9)))
		})

		It("should keep core caches private", func() {
			config := singleCoreConfig()
			config.NumCores = 2
			config.NumThreads = 2
			e, err := engine.New(config)
			Expect(err).NotTo(HaveOccurred())

			// Both threads touch address 0; each home cache must take its
			// own cold miss.
			e.LoadWorkload([][]*insts.Instruction{
				loads(0, 0),
				loads(0, 0),
			})
			e.RunToCompletion()

			m := e.Metrics()
			Expect(m.CacheMisses).To(Equal(uint64(2)))
			Expect(m.CacheHits).To(Equal(uint64(2)))
			Expect(m.PerCore[0].CacheMisses).To(Equal(uint64(1)))
			Expect(m.PerCore[1].CacheMisses).To(Equal(uint64(1)))
			Expect(e.CoreCacheStats(0).Accesses).To(Equal(uint64(2)))
			Expect(e.CoreCacheStats(1).Accesses).To(Equal(uint64(2)))
		})
	})

	Describe("Step boundaries", func() {
		It("should publish the clock once per step", func() {
			e, err := engine.New(singleCoreConfig())
			Expect(err).NotTo(HaveOccurred())

			e.LoadWorkload([][]*insts.Instruction{computes(3)})

			e.Step()
			Expect(e.CurrentCycle()).To(Equal(uint64(1)))
			Expect(e.Metrics().TotalCycles).To(Equal(uint64(1)))

			e.Step()
			Expect(e.CurrentCycle()).To(Equal(uint64(2)))
			Expect(e.Metrics().TotalCycles).To(Equal(uint64(2)))
		})

		It("should allow halting and resuming between steps", func() {
			e, err := engine.New(singleCoreConfig())
			Expect(err).NotTo(HaveOccurred())

			e.LoadWorkload([][]*insts.Instruction{loads(0, 0x40)})

			for i := 0; i < 3; i++ {
				e.Step()
			}
			midCycle := e.CurrentCycle()

			e.RunToCompletion()

			Expect(e.CurrentCycle()).To(BeNumerically(">", midCycle))
			m := e.Metrics()
			Expect(m.TotalMemoryAccesses).To(Equal(uint64(2)))
		})
	})
})
