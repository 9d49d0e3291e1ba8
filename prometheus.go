// FILE: prometheus.go
package cclog

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports a registry's counters to Prometheus. It reads whatever
// storage is installed at scrape time and emits nothing while detached.
type Collector struct {
	reg *Registry

	creations       *prometheus.Desc
	destructions    *prometheus.Desc
	active          *prometheus.Desc
	opens           *prometheus.Desc
	writes          *prometheus.Desc
	skippedMessages *prometheus.Desc
	skippedBytes    *prometheus.Desc
}

// NewCollector creates a collector for reg under namespace.
func NewCollector(reg *Registry, namespace string) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "log", name), help, nil, nil)
	}
	return &Collector{
		reg:             reg,
		creations:       desc("creations_total", "Loggers created"),
		destructions:    desc("destructions_total", "Loggers destroyed"),
		active:          desc("active", "Loggers currently alive"),
		opens:           desc("opens_total", "Log files opened, stderr excluded"),
		writes:          desc("writes_total", "Messages accepted"),
		skippedMessages: desc("skipped_messages_total", "Messages dropped on buffer overflow"),
		skippedBytes:    desc("skipped_bytes_total", "Bytes of messages dropped on buffer overflow"),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.creations
	ch <- c.destructions
	ch <- c.active
	ch <- c.opens
	ch <- c.writes
	ch <- c.skippedMessages
	ch <- c.skippedBytes
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s, err := c.reg.Snapshot()
	if err != nil {
		return
	}
	counter := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	counter(c.creations, s.Creations)
	counter(c.destructions, s.Destructions)
	ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue, float64(s.Active))
	counter(c.opens, s.Opens)
	counter(c.writes, s.Writes)
	counter(c.skippedMessages, s.SkippedMessages)
	counter(c.skippedBytes, s.SkippedBytes)
}
