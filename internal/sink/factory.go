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
	"os"
	"time"

	"github.com/cockroachdb/errors"
)

// Config describes zero or more flush destinations. All Graphite addresses
// together become one Sink (a MultiGraphiteSink when more than one is
// given) wrapped with bounded reconnect retries; stdout and each file path
// become one Sink each, without retries.
type Config struct {
	GraphiteAddrs []string // --flush-graphite host[:port][,...]
	Stdout        bool     // --flush-stdout
	FilePaths     []string // --flush-file path[|path...]
	CSVFilePaths  []string // --flush-file-csv path[|path...]

	DialTimeout time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
}

// Build constructs the full set of sinks described by cfg.
func Build(cfg Config) ([]Sink, error) {
	var sinks []Sink

	switch len(cfg.GraphiteAddrs) {
	case 0:
	case 1:
		sinks = append(sinks, WithRetries(NewGraphiteSink(cfg.GraphiteAddrs[0], cfg.DialTimeout), cfg.MaxRetries, cfg.RetryDelay))
	default:
		sinks = append(sinks, WithRetries(NewMultiGraphiteSink(cfg.GraphiteAddrs, cfg.DialTimeout), cfg.MaxRetries, cfg.RetryDelay))
	}

	if cfg.Stdout {
		sinks = append(sinks, NewStreamSink(os.Stdout))
	}

	for _, path := range cfg.FilePaths {
		s, err := NewFileSink(path)
		if err != nil {
			return nil, errors.Wrapf(err, "build file sink")
		}
		sinks = append(sinks, s)
	}

	for _, path := range cfg.CSVFilePaths {
		s, err := NewCSVFileSink(path)
		if err != nil {
			return nil, errors.Wrapf(err, "build csv file sink")
		}
		sinks = append(sinks, s)
	}

	return sinks, nil
}
