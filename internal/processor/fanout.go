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

package processor

import (
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"statsd/internal/errs"
	"statsd/internal/queue"
	"statsd/internal/sink"
	"statsd/internal/telemetry"
	"statsd/pkg/metric"
)

const fanoutPopTimeout = time.Second

// fanoutWorker owns one sink exclusively and drains its own queue of
// flushed record batches: its own goroutine, its own done channel, an
// atomic stop flag, and a bounded final drain before exit.
type fanoutWorker struct {
	sink  sink.Sink
	queue *queue.Queue[[]metric.Record]
	log   *logrus.Entry

	stopped atomic.Bool
	done    chan struct{}
}

func newFanoutWorker(s sink.Sink, log *logrus.Entry) *fanoutWorker {
	return &fanoutWorker{
		sink:  s,
		queue: queue.New[[]metric.Record](),
		log:   log,
		done:  make(chan struct{}),
	}
}

func (fw *fanoutWorker) start() {
	go fw.run()
}

func (fw *fanoutWorker) run() {
	defer close(fw.done)
	for !fw.stopped.Load() {
		telemetry.FanoutQueueDepth.WithLabelValues(fw.sink.Name()).Set(float64(fw.queue.Len()))
		batch, ok := fw.queue.Pop(fanoutPopTimeout)
		if !ok {
			continue
		}
		fw.flushOne(batch)
	}
	fw.drain()
}

// drain best-effort flushes whatever remains queued within a bounded grace
// period, then exits even if items remain.
func (fw *fanoutWorker) drain() {
	deadline := time.Now().Add(fanoutDrainGrace)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}
		batch, ok := fw.queue.Pop(remaining)
		if !ok {
			return
		}
		fw.flushOne(batch)
	}
}

func (fw *fanoutWorker) flushOne(batch []metric.Record) {
	if err := fw.sink.Flush(batch); err != nil {
		telemetry.SinkErrorsTotal.WithLabelValues(fw.sink.Name()).Inc()
		fw.log.WithError(errs.NewSinkError(fw.sink.Name(), err)).Error("sink flush failed, batch dropped")
	}
}

func (fw *fanoutWorker) stop() {
	fw.stopped.Store(true)
	<-fw.done
	if err := fw.sink.Close(); err != nil {
		fw.log.WithError(err).Warn("sink close failed")
	}
}
