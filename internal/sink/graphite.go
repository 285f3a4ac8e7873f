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
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"statsd/pkg/metric"
)

// GraphiteSink serializes each record as "name value unix_timestamp\n" over
// a persistent TCP connection, reconnecting lazily after any I/O error.
type GraphiteSink struct {
	addr    string
	dialer  net.Dialer
	timeout time.Duration

	mu   sync.Mutex
	conn net.Conn
}

// NewGraphiteSink returns a sink that lazily dials addr on first Flush.
func NewGraphiteSink(addr string, dialTimeout time.Duration) *GraphiteSink {
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	return &GraphiteSink{addr: addr, timeout: dialTimeout}
}

func (g *GraphiteSink) Flush(records []metric.Record) error {
	if len(records) == 0 {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.conn == nil {
		conn, err := net.DialTimeout("tcp", g.addr, g.timeout)
		if err != nil {
			return errors.Wrapf(err, "dial graphite sink %s", g.addr)
		}
		g.conn = conn
	}

	var buf []byte
	for _, r := range records {
		buf = append(buf, []byte(formatGraphiteLine(r))...)
	}

	if err := g.conn.SetWriteDeadline(time.Now().Add(g.timeout)); err != nil {
		return errors.Wrap(err, "set write deadline")
	}
	if _, err := g.conn.Write(buf); err != nil {
		// The connection is assumed dead; drop it so the next Flush
		// reconnects.
		_ = g.conn.Close()
		g.conn = nil
		return errors.Wrapf(err, "write to graphite sink %s", g.addr)
	}
	return nil
}

func (g *GraphiteSink) Name() string { return "graphite:" + g.addr }

func (g *GraphiteSink) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.conn == nil {
		return nil
	}
	err := g.conn.Close()
	g.conn = nil
	return err
}

func formatGraphiteLine(r metric.Record) string {
	return r.Name + " " + strconv.FormatFloat(r.Value, 'f', -1, 64) + " " + formatTimestamp(r.TimestampUnix) + "\n"
}

func formatTimestamp(ts float64) string {
	return fmt.Sprintf("%d", int64(ts))
}
