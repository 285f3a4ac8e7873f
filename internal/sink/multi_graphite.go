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

package sink

import (
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-rendezvous"

	"statsd/pkg/metric"
)

// MultiGraphiteSink fans a snapshot out across several Graphite endpoints
// ("--flush-graphite host[:port][,...]"), routing each metric name to
// exactly one endpoint via rendezvous hashing so the same name always
// lands on the same downstream Graphite instance across flushes, keeping
// a metric's whole history on one shard without needing a central
// directory.
type MultiGraphiteSink struct {
	endpoints []string
	sinks     map[string]*GraphiteSink
	table     *rendezvous.Rendezvous
}

// NewMultiGraphiteSink builds one GraphiteSink per endpoint and a
// rendezvous-hash table over their addresses.
func NewMultiGraphiteSink(endpoints []string, dialTimeout time.Duration) *MultiGraphiteSink {
	sinks := make(map[string]*GraphiteSink, len(endpoints))
	for _, ep := range endpoints {
		sinks[ep] = NewGraphiteSink(ep, dialTimeout)
	}
	table := rendezvous.New(endpoints, xxhash.Sum64String)
	return &MultiGraphiteSink{endpoints: endpoints, sinks: sinks, table: table}
}

func (m *MultiGraphiteSink) Flush(records []metric.Record) error {
	grouped := make(map[string][]metric.Record, len(m.endpoints))
	for _, r := range records {
		ep := m.table.Lookup(r.Name)
		grouped[ep] = append(grouped[ep], r)
	}

	var firstErr error
	for ep, recs := range grouped {
		if err := m.sinks[ep].Flush(recs); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *MultiGraphiteSink) Name() string {
	return "graphite-multi:" + strings.Join(m.endpoints, ",")
}

func (m *MultiGraphiteSink) Close() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
