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
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"statsd/internal/queue"
	"statsd/internal/shelf"
	"statsd/internal/sink"
	"statsd/pkg/metric"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return logrus.NewEntry(l)
}

// memSink is an in-memory test double implementing internal/sink.Sink.
type memSink struct {
	mu      sync.Mutex
	batches [][]metric.Record
	closed  bool
}

var _ sink.Sink = (*memSink)(nil)

func (m *memSink) Flush(records []metric.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]metric.Record, len(records))
	copy(cp, records)
	m.batches = append(m.batches, cp)
	return nil
}

func (m *memSink) Name() string { return "mem" }

func (m *memSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *memSink) allRecords() []metric.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []metric.Record
	for _, b := range m.batches {
		out = append(out, b...)
	}
	return out
}

func (m *memSink) batchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

func (m *memSink) wasClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func recordValue(records []metric.Record, name string) (float64, bool) {
	for _, r := range records {
		if r.Name == name {
			return r.Value, true
		}
	}
	return 0, false
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestProcessor_CounterAggregation_Scenario1(t *testing.T) {
	ingress := queue.New[string]()
	sh := shelf.New()
	ms := &memSink{}
	p := New(sh, ingress, 50*time.Millisecond, []sink.Sink{ms}, testLogger())

	go p.Run()
	<-p.Processing()
	defer p.Stop()

	ingress.Push("event:1|c\n")
	ingress.Push("event:1|c\n")
	ingress.Push("event:1|c\n")

	waitFor(t, 2*time.Second, func() bool {
		v, ok := recordValue(ms.allRecords(), "event")
		return ok && v == 3
	})
}

func TestProcessor_TimerFiveWayExpansion_Scenario2(t *testing.T) {
	ingress := queue.New[string]()
	sh := shelf.New()
	ms := &memSink{}
	p := New(sh, ingress, 30*time.Millisecond, []sink.Sink{ms}, testLogger())

	go p.Run()
	<-p.Processing()
	defer p.Stop()

	ingress.Push("process:101|ms\nprocess:102|ms\nprocess:103|ms\n")

	waitFor(t, 2*time.Second, func() bool {
		records := ms.allRecords()
		_, ok := recordValue(records, "process.count")
		return ok
	})

	records := ms.allRecords()
	expect := map[string]float64{
		"process.count":  3,
		"process.min":    101,
		"process.max":    103,
		"process.mean":   102,
		"process.median": 102,
	}
	for name, want := range expect {
		got, ok := recordValue(records, name)
		if !ok || got != want {
			t.Fatalf("%s: got %v (present=%v), want %v", name, got, ok, want)
		}
	}
}

func TestProcessor_MixedCombine_Scenario3(t *testing.T) {
	ingress := queue.New[string]()
	sh := shelf.New()
	ms := &memSink{}
	p := New(sh, ingress, 30*time.Millisecond, []sink.Sink{ms}, testLogger())

	go p.Run()
	<-p.Processing()
	defer p.Stop()

	ingress.Push("event:1|c\nevent:1|c\nprocess:85|ms\nprocess:98|ms\n")
	ingress.Push("event:1|c\nevent:1|c\nprocess:87|ms\nquery:2|ms\n")

	waitFor(t, 2*time.Second, func() bool {
		_, ok := recordValue(ms.allRecords(), "query.count")
		return ok
	})

	records := ms.allRecords()
	expect := map[string]float64{
		"event":           4,
		"process.count":   3,
		"process.min":     85,
		"process.max":     98,
		"process.mean":    90,
		"process.median":  87,
		"query.count":     1,
		"query.min":       2,
		"query.max":       2,
		"query.mean":      2,
		"query.median":    2,
	}
	for name, want := range expect {
		got, ok := recordValue(records, name)
		if !ok || got != want {
			t.Fatalf("%s: got %v (present=%v), want %v", name, got, ok, want)
		}
	}
}

func TestProcessor_ParseErrorsDoNotStopProcessing(t *testing.T) {
	ingress := queue.New[string]()
	sh := shelf.New()
	ms := &memSink{}
	p := New(sh, ingress, 30*time.Millisecond, []sink.Sink{ms}, testLogger())

	go p.Run()
	<-p.Processing()
	defer p.Stop()

	ingress.Push("not-a-valid-line\nevent:1|c\n")

	waitFor(t, 2*time.Second, func() bool {
		v, ok := recordValue(ms.allRecords(), "event")
		return ok && v == 1
	})
}

func TestProcessor_StopDrainsAndFlushesFinalSamples(t *testing.T) {
	ingress := queue.New[string]()
	sh := shelf.New()
	ms := &memSink{}
	// Flush interval long enough that only the final drain-triggered flush
	// captures the sample.
	p := New(sh, ingress, time.Hour, []sink.Sink{ms}, testLogger())

	go p.Run()
	<-p.Processing()

	ingress.Push("event:1|c\n")
	time.Sleep(20 * time.Millisecond)
	p.Stop()

	v, ok := recordValue(ms.allRecords(), "event")
	if !ok || v != 1 {
		t.Fatalf("expected final flush to contain event=1, got %v (present=%v)", v, ok)
	}
	if !ms.wasClosed() {
		t.Fatal("expected sink to be closed after Stop")
	}
}

func TestProcessor_SetSinks_ReloadPreservesShelf(t *testing.T) {
	ingress := queue.New[string]()
	sh := shelf.New()
	first := &memSink{}
	p := New(sh, ingress, time.Hour, []sink.Sink{first}, testLogger())

	go p.Run()
	<-p.Processing()
	defer p.Stop()

	second := &memSink{}
	p.SetSinks([]sink.Sink{second})

	if !first.wasClosed() {
		t.Fatal("expected old sink to be closed on reload")
	}

	ingress.Push("event:1|c\n")
	time.Sleep(20 * time.Millisecond)
	p.flush()

	waitFor(t, time.Second, func() bool {
		_, ok := recordValue(second.allRecords(), "event")
		return ok
	})
	if second.batchCount() == 0 {
		t.Fatal("expected new sink to receive the post-reload flush")
	}
}
