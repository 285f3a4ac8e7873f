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

// Package processor implements the queue processor: the single goroutine
// that pops parsed requests off the ingress queue, adds samples to the
// shelf, and on a flush interval snapshots the shelf and fans the
// resulting records out to every configured sink's own queue. It runs two
// kinds of polling loop, each built on a timeout-bounded queue Pop, inside
// one component: the main ingest loop and, per sink, a fan-out worker
// draining its own queue of flushed batches.
package processor

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"statsd/internal/queue"
	"statsd/internal/shelf"
	"statsd/internal/sink"
	"statsd/internal/telemetry"
	"statsd/pkg/metric"
)

// State is the processor's lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateProcessing
	StateDraining
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateDraining:
		return "draining"
	default:
		return "unknown"
	}
}

// sentinel is pushed onto the ingress queue to signal the main loop to
// drain and stop.
const sentinel = ""

const ingressPopTimeout = time.Second

// fanoutDrainGrace bounds how long a fan-out worker spends flushing
// whatever is already queued once asked to stop: best-effort with a
// bounded grace period, not an unbounded drain.
const fanoutDrainGrace = 5 * time.Second

// Processor owns the shelf and drives the ingress→shelf→sink pipeline.
type Processor struct {
	shelf         *shelf.Shelf
	ingress       *queue.Queue[string]
	flushInterval time.Duration
	log           *logrus.Entry

	state      atomic.Int32
	processing chan struct{}
	lastFlush  time.Time

	mu       sync.Mutex
	sinks    []sink.Sink
	fanouts  []*fanoutWorker
	runDone  chan struct{}
	stopOnce sync.Once
}

// New builds a processor that aggregates into shelf and fans flushed
// snapshots out to sinks.
func New(shelf *shelf.Shelf, ingress *queue.Queue[string], flushInterval time.Duration, sinks []sink.Sink, log *logrus.Entry) *Processor {
	return &Processor{
		shelf:         shelf,
		ingress:       ingress,
		flushInterval: flushInterval,
		log:           log,
		sinks:         sinks,
		processing:    make(chan struct{}),
		runDone:       make(chan struct{}),
	}
}

// Processing returns a channel closed once Run has entered the Processing
// state and started its fan-out workers.
func (p *Processor) Processing() <-chan struct{} { return p.processing }

// State reports the processor's current lifecycle state.
func (p *Processor) State() State { return State(p.state.Load()) }

// Run executes the main loop until Stop is called. It blocks until the
// loop observes the sentinel and finishes draining.
func (p *Processor) Run() {
	p.mu.Lock()
	p.startFanoutWorkersLocked()
	p.mu.Unlock()

	p.lastFlush = time.Now()
	p.state.Store(int32(StateProcessing))
	close(p.processing)

	for {
		if time.Since(p.lastFlush) >= p.flushInterval {
			p.flush()
			p.lastFlush = time.Now()
		}

		telemetry.IngressQueueDepth.Set(float64(p.ingress.Len()))
		req, ok := p.ingress.Pop(ingressPopTimeout)
		if !ok {
			continue
		}
		if req == sentinel {
			p.state.Store(int32(StateDraining))
			break
		}
		p.ingest(req)
	}

	// Final flush so samples added before the sentinel are not lost.
	p.flush()
	p.stopFanoutWorkers()
	p.state.Store(int32(StateIdle))
	close(p.runDone)
}

// Stop pushes the sentinel and waits for Run to finish draining.
func (p *Processor) Stop() {
	p.stopOnce.Do(func() {
		p.ingress.Push(sentinel)
	})
	<-p.runDone
}

func (p *Processor) ingest(req string) {
	for _, line := range metric.SplitLines(req) {
		sample, err := metric.Parse(line)
		if err != nil {
			telemetry.ParseErrorsTotal.Inc()
			p.log.WithError(err).WithField("line", line).Error("discarding unparseable sample")
			continue
		}
		telemetry.SamplesIngested.WithLabelValues(sample.Kind.String()).Inc()
		p.shelf.Add(sample)
	}
}

// flush snapshots the shelf and non-blockingly pushes the serialized
// records onto every fan-out worker's queue.
func (p *Processor) flush() {
	snap := p.shelf.SnapshotAndClear()
	records := snap.Serialize(time.Now())
	telemetry.FlushesTotal.Inc()
	if len(records) == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, fw := range p.fanouts {
		fw.queue.Push(records)
	}
}

// SetSinks implements reload semantics: stop and join the existing
// fan-out workers, then start new ones for newSinks. The shelf and
// ingress queue are left untouched.
func (p *Processor) SetSinks(newSinks []sink.Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopFanoutWorkersLocked()
	p.sinks = newSinks
	p.startFanoutWorkersLocked()
}

func (p *Processor) startFanoutWorkersLocked() {
	p.fanouts = make([]*fanoutWorker, 0, len(p.sinks))
	for _, s := range p.sinks {
		fw := newFanoutWorker(s, p.log)
		p.fanouts = append(p.fanouts, fw)
		fw.start()
	}
}

func (p *Processor) stopFanoutWorkers() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopFanoutWorkersLocked()
}

func (p *Processor) stopFanoutWorkersLocked() {
	for _, fw := range p.fanouts {
		fw.stop()
	}
	p.fanouts = nil
}
