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

package shelf

import (
	"sort"
	"time"

	"statsd/pkg/metric"
)

// Snapshot is an immutable copy of the shelf captured at a flush instant.
// Timer statistics are derived lazily in Serialize rather than maintained
// on every Add, matching spec.md §4.2's "computed at snapshot serialization
// time, not on add" and the deferred-statistics idiom of the
// nozomi1773-carbon-relay-ng aggregator (which computes its Processor
// output only when a quantized window is flushed).
type Snapshot struct {
	counters map[string]float64
	gauges   map[string]*gaugeCell
	sets     map[string]map[string]struct{}
	timers   map[string][]float64
}

// Serialize expands the snapshot into the ordered (name, value, timestamp)
// records sinks receive (spec.md §3). Records are grouped by kind
// (counters, then gauges, sets and timers) and sorted by name within each
// group for deterministic, reproducible sink output; nothing in the spec requires a
// specific cross-name order, only that a given sink's successive flush
// batches arrive in flush order (guaranteed by the processor, not here).
func (snap *Snapshot) Serialize(now time.Time) []metric.Record {
	ts := float64(now.Unix())
	records := make([]metric.Record, 0, len(snap.counters)+len(snap.gauges)+len(snap.sets)+5*len(snap.timers))

	names := make([]string, 0, len(snap.counters))
	for name := range snap.counters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		records = append(records, metric.Record{Name: name, Value: snap.counters[name], TimestampUnix: ts})
	}

	names = names[:0]
	for name := range snap.gauges {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cell := snap.gauges[name]
		if !cell.hasValue {
			continue
		}
		records = append(records, metric.Record{Name: name, Value: cell.value, TimestampUnix: ts})
	}

	names = names[:0]
	for name := range snap.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		records = append(records, metric.Record{Name: name, Value: float64(len(snap.sets[name])), TimestampUnix: ts})
	}

	names = names[:0]
	for name := range snap.timers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		values := snap.timers[name]
		if len(values) == 0 {
			continue
		}
		records = append(records, timerRecords(name, values, ts)...)
	}

	return records
}

// timerRecords computes the five per-name timer statistics required by
// spec.md §4.2: count, min, max, mean, median.
func timerRecords(name string, values []float64, ts float64) []metric.Record {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	// Stable sort so equal-valued samples keep their arrival order, per
	// spec.md §4.2 ("Sort is stable; tie-breaks by arrival order").
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	n := len(sorted)
	min := sorted[0]
	max := sorted[n-1]

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var median float64
	switch {
	case n == 1:
		median = sorted[0]
	case n%2 == 1:
		median = sorted[n/2]
	default:
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	prefix := name + "."
	return []metric.Record{
		{Name: prefix + "count", Value: float64(n), TimestampUnix: ts},
		{Name: prefix + "min", Value: min, TimestampUnix: ts},
		{Name: prefix + "max", Value: max, TimestampUnix: ts},
		{Name: prefix + "mean", Value: mean, TimestampUnix: ts},
		{Name: prefix + "median", Value: median, TimestampUnix: ts},
	}
}
