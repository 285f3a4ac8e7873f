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
	"encoding/csv"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"

	"statsd/pkg/metric"
)

// NewFileSink opens path for appending and returns a line-protocol sink
// over it (--flush-file).
func NewFileSink(path string) (*StreamSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "open sink file %s", path)
	}
	return newNamedStreamSink(f, f, "file:"+path), nil
}

// CSVFileSink writes each record as a CSV row (name,value,timestamp), for
// --flush-file-csv.
type CSVFileSink struct {
	f    *os.File
	w    *csv.Writer
	path string
}

// NewCSVFileSink opens path for appending and returns a CSV sink over it.
func NewCSVFileSink(path string) (*CSVFileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "open csv sink file %s", path)
	}
	return &CSVFileSink{f: f, w: csv.NewWriter(f), path: path}, nil
}

func (s *CSVFileSink) Name() string { return "file-csv:" + s.path }

func (s *CSVFileSink) Flush(records []metric.Record) error {
	for _, r := range records {
		row := []string{
			r.Name,
			strconv.FormatFloat(r.Value, 'f', -1, 64),
			formatTimestamp(r.TimestampUnix),
		}
		if err := s.w.Write(row); err != nil {
			return errors.Wrap(err, "write csv row")
		}
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *CSVFileSink) Close() error {
	s.w.Flush()
	return s.f.Close()
}
