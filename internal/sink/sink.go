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

// Package sink defines the egress contract for flushed aggregation
// snapshots and a handful of concrete implementations (Graphite line
// protocol, stdout, file/CSV). Sinks are independent: a slow or failing
// sink must never block another sink or ingress, so the contract is a
// single synchronous Flush call that the caller (one fan-out worker per
// sink) invokes from its own goroutine.
//
// The interface and the selector-based factory below pick among several
// output adapters by configuration: one Sink per stdout or file
// destination, and one Sink shared by all Graphite endpoints.
package sink

import "statsd/pkg/metric"

// Sink receives one flush's worth of records at a time.
type Sink interface {
	// Flush delivers one aggregation snapshot. A non-nil error is logged
	// and the batch is dropped by the caller; the sink must remain usable
	// for the next call.
	Flush(records []metric.Record) error

	// Close releases any resources (open files, sockets) held by the sink.
	Close() error

	// Name identifies the sink for logging and telemetry labels (e.g.
	// "graphite:127.0.0.1:2003", "stdout", "file:/var/log/statsd.out").
	Name() string
}
