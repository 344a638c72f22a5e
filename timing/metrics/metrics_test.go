package metrics_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mcsim/timing/metrics"
)

var _ = Describe("Metrics", func() {
	var m *metrics.Metrics

	BeforeEach(func() {
		m = metrics.New()
	})

	It("should default to a 1.0 hit rate and 0.0 miss rate", func() {
		Expect(m.HitRate()).To(Equal(1.0))
		Expect(m.MissRate()).To(Equal(0.0))
	})

	It("should compute hit and miss rates", func() {
		m.RecordAccess(0, true, 0)
		m.RecordAccess(0, true, 0)
		m.RecordAccess(0, false, 100)

		Expect(m.TotalMemoryAccesses).To(Equal(uint64(3)))
		Expect(m.HitRate()).To(BeNumerically("~", 2.0/3.0, 1e-9))
		Expect(m.MissRate()).To(BeNumerically("~", 1.0/3.0, 1e-9))
		Expect(m.MemoryStallCycles).To(Equal(uint64(100)))
	})

	It("should keep hit rate and miss rate summing to one", func() {
		m.RecordAccess(0, true, 0)
		m.RecordAccess(1, false, 45)
		m.RecordAccess(1, false, 45)

		Expect(m.HitRate() + m.MissRate()).To(BeNumerically("~", 1.0, 1e-12))
	})

	It("should break counters out per core", func() {
		m.RecordAccess(0, true, 0)
		m.RecordAccess(1, false, 45)
		m.RecordStallCycle(1)

		Expect(m.PerCore[0].CacheHits).To(Equal(uint64(1)))
		Expect(m.PerCore[0].CacheMisses).To(Equal(uint64(0)))
		Expect(m.PerCore[1].CacheMisses).To(Equal(uint64(1)))
		Expect(m.PerCore[1].MemoryStallCycles).To(Equal(uint64(46)))
		Expect(m.MemoryStallCycles).To(Equal(uint64(46)))
	})

	It("should report zero slowdown when actual <= ideal", func() {
		m.TotalCycles = 100
		Expect(m.SlowdownPercent(100)).To(Equal(0.0))
		Expect(m.SlowdownPercent(150)).To(Equal(0.0))
	})

	It("should report zero slowdown for a zero ideal", func() {
		m.TotalCycles = 117
		Expect(m.SlowdownPercent(0)).To(Equal(0.0))
	})

	It("should compute the percentage slowdown vs ideal", func() {
		m.TotalCycles = 117
		Expect(m.SlowdownPercent(100)).To(BeNumerically("~", 17.0, 0.01))
	})
})
