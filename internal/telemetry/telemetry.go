// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package telemetry exposes process counters for ops visibility, built on
// github.com/prometheus/client_golang: global prometheus.NewCounter/NewGauge
// values registered once and served over promhttp. It is small, always-on,
// and has no per-key cardinality, covering basic ingest/parse/flush counts
// plus queue depth so that unbounded fan-out backlogs are at least
// observable.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SamplesIngested counts successfully parsed-and-aggregated samples,
	// labeled by metric kind.
	SamplesIngested = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "statsd_samples_ingested_total",
		Help: "Total samples successfully parsed and added to the shelf, by kind.",
	}, []string{"kind"})

	// ParseErrorsTotal counts lines that failed the StatsD grammar.
	ParseErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "statsd_parse_errors_total",
		Help: "Total lines that failed to parse as a StatsD sample.",
	})

	// FlushesTotal counts completed shelf snapshot-and-clear flushes.
	FlushesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "statsd_flushes_total",
		Help: "Total shelf flushes performed by the queue processor.",
	})

	// SinkErrorsTotal counts failed Sink.Flush calls, labeled by sink.
	SinkErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "statsd_sink_errors_total",
		Help: "Total sink Flush failures, by sink.",
	}, []string{"sink"})

	// IngressQueueDepth is a gauge sampled on demand (not pushed on every
	// change) via SetIngressQueueDepth, surfacing ingress backpressure
	// before it becomes an incident.
	IngressQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "statsd_ingress_queue_depth",
		Help: "Number of request strings currently queued between collectors and the processor.",
	})

	// FanoutQueueDepth is a gauge per sink name, set by each fan-out
	// worker before it blocks on its next pop.
	FanoutQueueDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "statsd_fanout_queue_depth",
		Help: "Number of snapshots currently queued for a given sink's fan-out worker.",
	}, []string{"sink"})
)

func init() {
	prometheus.MustRegister(
		SamplesIngested,
		ParseErrorsTotal,
		FlushesTotal,
		SinkErrorsTotal,
		IngressQueueDepth,
		FanoutQueueDepth,
	)
}

// Serve starts a dedicated HTTP server exposing /metrics on addr as an
// opt-in standalone endpoint. It returns immediately; ListenAndServe runs
// on its own goroutine and its terminal error (other than the expected
// http.ErrServerClosed on Shutdown) is sent to errc.
func Serve(addr string, errc chan<- error) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()
	return srv
}
