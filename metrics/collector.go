// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics exports spscq queue activity as Prometheus metrics.
//
// The collector reads [spscq.Queue.Stats] on every scrape, so the queue's
// hot path stays free of Prometheus calls:
//
//	q := spscq.New[Event](1024)
//	prometheus.MustRegister(metrics.NewCollector("ingest", q))
package metrics

import (
	"code.hybscloud.com/spscq"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every exported metric name.
const Namespace = "spscq"

type counterDesc struct {
	desc  *prometheus.Desc
	value func(s *spscq.Stats) uint64
}

// Collector is a prometheus.Collector for one queue.
type Collector struct {
	source   spscq.StatsSource
	counters []counterDesc
	length   *prometheus.Desc
	capacity *prometheus.Desc
}

// NewCollector returns a collector for source. Every metric carries a
// constant label queue=name so several queues can share a registry.
func NewCollector(name string, source spscq.StatsSource) *Collector {
	labels := prometheus.Labels{"queue": name}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(Namespace, "", metric), help, nil, labels)
	}

	return &Collector{
		source: source,
		counters: []counterDesc{
			{desc("pushes_total", "Values stored by the producer."),
				func(s *spscq.Stats) uint64 { return s.Pushes }},
			{desc("push_full_total", "Non-blocking pushes rejected because the queue was full."),
				func(s *spscq.Stats) uint64 { return s.PushFull }},
			{desc("push_closed_total", "Pushes rejected because the queue was closed."),
				func(s *spscq.Stats) uint64 { return s.PushClosed }},
			{desc("push_timeouts_total", "Timed pushes that expired."),
				func(s *spscq.Stats) uint64 { return s.PushTimeouts }},
			{desc("producer_parks_total", "Times the producer parked on a full slot."),
				func(s *spscq.Stats) uint64 { return s.ProducerParks }},
			{desc("consumer_wakeups_total", "Parked consumers woken by the producer."),
				func(s *spscq.Stats) uint64 { return s.ConsumerWakeups }},
			{desc("pops_total", "Values taken by the consumer."),
				func(s *spscq.Stats) uint64 { return s.Pops }},
			{desc("pop_empty_total", "Non-blocking pops rejected because the queue was empty."),
				func(s *spscq.Stats) uint64 { return s.PopEmpty }},
			{desc("pop_closed_total", "Pops rejected because the queue was closed and drained."),
				func(s *spscq.Stats) uint64 { return s.PopClosed }},
			{desc("pop_timeouts_total", "Timed pops that expired."),
				func(s *spscq.Stats) uint64 { return s.PopTimeouts }},
			{desc("consumer_parks_total", "Times the consumer parked on an empty slot."),
				func(s *spscq.Stats) uint64 { return s.ConsumerParks }},
			{desc("producer_wakeups_total", "Parked producers woken by the consumer."),
				func(s *spscq.Stats) uint64 { return s.ProducerWakeups }},
		},
		length:   desc("length", "Values buffered in the queue."),
		capacity: desc("capacity", "Fixed capacity of the queue."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, cd := range c.counters {
		ch <- cd.desc
	}
	ch <- c.length
	ch <- c.capacity
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Stats()
	for _, cd := range c.counters {
		ch <- prometheus.MustNewConstMetric(cd.desc, prometheus.CounterValue, float64(cd.value(&s)))
	}
	ch <- prometheus.MustNewConstMetric(c.length, prometheus.GaugeValue, float64(c.source.Len()))
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(c.source.Cap()))
}

var _ prometheus.Collector = (*Collector)(nil)
