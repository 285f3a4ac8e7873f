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
	"bufio"
	"io"
	"strconv"

	"statsd/pkg/metric"
)

// StreamSink writes each record as a Graphite-style line to an arbitrary
// io.Writer. It backs the stdout sink (--flush-stdout) and is reused by
// NewFileSink in file.go, since both destinations share the same line format and
// differ only in what they write to.
type StreamSink struct {
	w      *bufio.Writer
	closer io.Closer
	name   string
}

// NewStreamSink wraps w for --flush-stdout. Close never closes os.Stdout
// itself, only flushes buffered output, since the process (not the sink)
// owns stdout's lifetime.
func NewStreamSink(w io.Writer) *StreamSink {
	return &StreamSink{w: bufio.NewWriter(w), name: "stdout"}
}

// newNamedStreamSink wraps w with an explicit closer and telemetry/logging
// name; used by NewFileSink, where the sink does own w's lifetime.
func newNamedStreamSink(w io.Writer, closer io.Closer, name string) *StreamSink {
	return &StreamSink{w: bufio.NewWriter(w), closer: closer, name: name}
}

func (s *StreamSink) Flush(records []metric.Record) error {
	for _, r := range records {
		if _, err := s.w.WriteString(r.Name); err != nil {
			return err
		}
		if _, err := s.w.WriteString(" "); err != nil {
			return err
		}
		if _, err := s.w.WriteString(strconv.FormatFloat(r.Value, 'f', -1, 64)); err != nil {
			return err
		}
		if _, err := s.w.WriteString(" "); err != nil {
			return err
		}
		if _, err := s.w.WriteString(formatTimestamp(r.TimestampUnix)); err != nil {
			return err
		}
		if _, err := s.w.WriteString("\n"); err != nil {
			return err
		}
	}
	return s.w.Flush()
}

func (s *StreamSink) Close() error {
	if err := s.w.Flush(); err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func (s *StreamSink) Name() string { return s.name }
