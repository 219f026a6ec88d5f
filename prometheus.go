package gcarena

import "github.com/prometheus/client_golang/prometheus"

// MetricsSource is satisfied by *Arena and *SafeArena.
type MetricsSource interface {
	Metrics() ArenaMetrics
}

type collector struct {
	src MetricsSource

	slotsInUse   *prometheus.Desc
	slotsFree    *prometheus.Desc
	chunks       *prometheus.Desc
	capacity     *prometheus.Desc
	allocations  *prometheus.Desc
	cycles       *prometheus.Desc
	failedCycles *prometheus.Desc
	deadNotified *prometheus.Desc
}

// NewCollector exports the metrics of src to Prometheus under namespace.
// Scrapes happen on other goroutines, so a plain *Arena must only be
// registered if nothing else touches it concurrently; prefer *SafeArena.
func NewCollector(namespace string, src MetricsSource) prometheus.Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "gcarena", name), help, labels, nil)
	}
	return &collector{
		src:          src,
		slotsInUse:   desc("slots_in_use", "Allocated slots."),
		slotsFree:    desc("slots_free", "Slots not currently allocated."),
		chunks:       desc("chunks", "Chunks owned by the arena."),
		capacity:     desc("capacity_bytes", "Total bytes of all chunks."),
		allocations:  desc("allocations_total", "Successful allocations."),
		cycles:       desc("cycles_total", "Completed collection cycles.", "trigger"),
		failedCycles: desc("failed_cycles_total", "Cycles aborted by a root provider error."),
		deadNotified: desc("dead_notified_total", "Slots reported dead and reclaimed."),
	}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.slotsInUse
	ch <- c.slotsFree
	ch <- c.chunks
	ch <- c.capacity
	ch <- c.allocations
	ch <- c.cycles
	ch <- c.failedCycles
	ch <- c.deadNotified
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	m := c.src.Metrics()
	ch <- prometheus.MustNewConstMetric(c.slotsInUse, prometheus.GaugeValue, float64(m.SlotsInUse))
	ch <- prometheus.MustNewConstMetric(c.slotsFree, prometheus.GaugeValue, float64(m.SlotsFree))
	ch <- prometheus.MustNewConstMetric(c.chunks, prometheus.GaugeValue, float64(m.NumChunks))
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(m.Capacity))
	ch <- prometheus.MustNewConstMetric(c.allocations, prometheus.CounterValue, float64(m.Allocations))
	ch <- prometheus.MustNewConstMetric(c.cycles, prometheus.CounterValue, float64(m.AutoCycles), "auto")
	ch <- prometheus.MustNewConstMetric(c.cycles, prometheus.CounterValue, float64(m.Cycles-m.AutoCycles), "explicit")
	ch <- prometheus.MustNewConstMetric(c.failedCycles, prometheus.CounterValue, float64(m.FailedCycles))
	ch <- prometheus.MustNewConstMetric(c.deadNotified, prometheus.CounterValue, float64(m.DeadNotified))
}
