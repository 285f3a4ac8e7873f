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

// Package shelf implements the mutable in-memory aggregation state for the
// metrics server: the "shelf" that every parsed sample is folded into, and
// the atomic snapshot-and-clear operation that hands a flush's worth of
// data off to the queue processor.
package shelf

import (
	"sync"

	"statsd/pkg/metric"
)

// Shelf aggregates samples by name and type. A single mutex guards all four
// maps; critical sections are the per-sample update or the snapshot swap,
// matching spec.md §5's "one mutex, short critical sections" requirement.
type Shelf struct {
	mu sync.Mutex

	counters map[string]float64
	gauges   map[string]*gaugeCell
	sets     map[string]map[string]struct{}
	timers   map[string][]float64
}

// New returns an empty Shelf.
func New() *Shelf {
	return &Shelf{
		counters: make(map[string]float64),
		gauges:   make(map[string]*gaugeCell),
		sets:     make(map[string]map[string]struct{}),
		timers:   make(map[string][]float64),
	}
}

// Add applies one parsed sample to the shelf (spec.md §4.2).
func (s *Shelf) Add(sample metric.Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch sample.Kind {
	case metric.KindCounter:
		s.counters[sample.Name] += float64(sample.Count) / sample.SampleRate

	case metric.KindGauge:
		cell, ok := s.gauges[sample.Name]
		if !ok {
			cell = &gaugeCell{}
			s.gauges[sample.Name] = cell
		}
		cell.applyAbsolute(sample.Value)

	case metric.KindGaugeDelta:
		cell, ok := s.gauges[sample.Name]
		if !ok {
			cell = &gaugeCell{}
			s.gauges[sample.Name] = cell
		}
		cell.applyDelta(sample.Delta)

	case metric.KindSet:
		members, ok := s.sets[sample.Name]
		if !ok {
			members = make(map[string]struct{})
			s.sets[sample.Name] = members
		}
		members[sample.Member] = struct{}{}

	case metric.KindTimer:
		s.timers[sample.Name] = append(s.timers[sample.Name], sample.Milliseconds)
	}
}

// SnapshotAndClear atomically moves the four maps out of the shelf and
// replaces them with fresh empty ones, so subsequent Add calls never mutate
// the returned Snapshot (spec.md §3-I5).
func (s *Shelf) SnapshotAndClear() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &Snapshot{
		counters: s.counters,
		gauges:   s.gauges,
		sets:     s.sets,
		timers:   s.timers,
	}

	s.counters = make(map[string]float64)
	s.gauges = make(map[string]*gaugeCell)
	s.sets = make(map[string]map[string]struct{})
	s.timers = make(map[string][]float64)

	return snap
}
