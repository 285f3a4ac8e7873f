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

// Package metric defines the wire-level StatsD sample types and the line
// parser that turns raw bytes into them. It has no dependency on the
// aggregation shelf so it can be reused by anything that needs to read or
// write StatsD lines.
package metric

// Kind is a closed tag identifying which StatsD sample variant a Sample
// carries. Dispatch on Kind is exhaustive everywhere in this module; there
// is no string-keyed method table.
type Kind int

const (
	// KindCounter is a StatsD "c" sample.
	KindCounter Kind = iota
	// KindGauge is a StatsD "g" sample carrying an absolute value.
	KindGauge
	// KindGaugeDelta is a StatsD "g" sample whose literal began with '+' or '-'.
	KindGaugeDelta
	// KindSet is a StatsD "s" sample.
	KindSet
	// KindTimer is a StatsD "ms" sample.
	KindTimer
)

func (k Kind) String() string {
	switch k {
	case KindCounter:
		return "counter"
	case KindGauge:
		return "gauge"
	case KindGaugeDelta:
		return "gauge_delta"
	case KindSet:
		return "set"
	case KindTimer:
		return "timer"
	default:
		return "unknown"
	}
}

// Sample is one parsed StatsD metric observation. Exactly one of
// Count/Value/Delta/Member/Milliseconds is meaningful, selected by Kind.
type Sample struct {
	Name string
	Kind Kind

	// Count and SampleRate are set for KindCounter. The effective
	// contribution to the shelf is Count / SampleRate.
	Count      int64
	SampleRate float64

	// Value is set for KindGauge (absolute value).
	Value float64

	// Delta is set for KindGaugeDelta (relative change, signed).
	Delta float64

	// Member is set for KindSet.
	Member string

	// Milliseconds is set for KindTimer.
	Milliseconds float64
}

// Record is one serialized (name, value, timestamp) triple as emitted to
// sinks. TimestampUnix is whole seconds, matching the Graphite line
// protocol's "unix_timestamp" field.
type Record struct {
	Name          string
	Value         float64
	TimestampUnix float64
}
