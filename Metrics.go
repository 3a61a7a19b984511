// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package webhdfs

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)

// Metrics counts and times operations driven by the harness
type Metrics struct {
	Executions *prometheus.CounterVec   // by op and outcome
	Duration   *prometheus.HistogramVec // seconds, by op
}

// NewMetrics creates a new metrics instance. Assign it to DefaultMetrics before creating
// harnesses; harnesses capture the value at construction time.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhdfs",
			Name:      "executions_total",
			Help:      "Operations driven to completion by the blocking harness.",
		}, []string{"op", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "webhdfs",
			Name:      "execution_duration_seconds",
			Help:      "Wall time spent blocking on a single operation.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"op"}),
	}
}

// DefaultMetrics specifies metrics used by new harnesses, nil disables collection
var DefaultMetrics = (*Metrics)(nil)

// Collectors returns all prometheus metrics as collectors for registration
func (m *Metrics) Collectors() []prometheus.Collector {
	if m == nil {
		return nil
	}
	return []prometheus.Collector{
		m.Executions,
		m.Duration,
	}
}

func (m *Metrics) observe(op string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil && err != io.EOF {
		outcome = OutcomeError
		if IsTimeout(err) {
			outcome = OutcomeTimeout
		}
	}
	m.Executions.WithLabelValues(op, outcome).Inc()
	m.Duration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}
