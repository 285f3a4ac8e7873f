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

// Package collector implements the UDP and TCP ingress loops: accept
// bytes, frame them into request strings, push onto the shared ingress
// queue. Each collector exposes the same explicit Start/graceful-Shutdown
// lifecycle as an HTTP listener, generalized here to a raw socket loop.
package collector

import (
	"net"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"statsd/internal/errs"
	"statsd/internal/queue"
)

const defaultRecvTimeout = time.Second

// DefaultUDPBufferSize is the default datagram receive buffer.
const DefaultUDPBufferSize = 8 * 1024

// UDPCollector receives StatsD datagrams and enqueues each one (possibly
// containing multiple newline-separated samples) as a single request
// string.
type UDPCollector struct {
	addr       string
	bufferSize int
	ingress    *queue.Queue[string]
	log        *logrus.Entry

	conn      net.PacketConn
	stopped   atomic.Bool
	accepting chan struct{}
}

// NewUDPCollector builds a collector bound to addr once Run is called.
func NewUDPCollector(addr string, bufferSize int, ingress *queue.Queue[string], log *logrus.Entry) *UDPCollector {
	if bufferSize <= 0 {
		bufferSize = DefaultUDPBufferSize
	}
	return &UDPCollector{
		addr:       addr,
		bufferSize: bufferSize,
		ingress:    ingress,
		log:        log,
		accepting:  make(chan struct{}),
	}
}

// Accepting returns a channel that is closed once the socket is bound and
// the receive loop is about to start.
func (c *UDPCollector) Accepting() <-chan struct{} { return c.accepting }

// LocalAddr returns the bound socket address. Only valid after Accepting
// has closed.
func (c *UDPCollector) LocalAddr() net.Addr { return c.conn.LocalAddr() }

// Run binds the socket and receives datagrams until Shutdown is called. It
// blocks until the loop exits and the socket is closed.
func (c *UDPCollector) Run() error {
	conn, err := net.ListenPacket("udp", c.addr)
	if err != nil {
		return errs.NewCollectorIOError(c.addr, true, errors.Wrap(err, "bind"))
	}
	c.conn = conn
	defer conn.Close()
	close(c.accepting)

	buf := make([]byte, c.bufferSize)
	for !c.stopped.Load() {
		if err := conn.SetReadDeadline(time.Now().Add(defaultRecvTimeout)); err != nil {
			return errors.Wrap(err, "set udp read deadline")
		}
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if c.stopped.Load() {
				return nil
			}
			c.log.WithError(errs.NewCollectorIOError(c.addr, false, err)).Warn("udp collector: transient read error")
			continue
		}
		request := decodeLossyUTF8(buf[:n])
		c.ingress.Push(request)
	}
	return nil
}

// Shutdown causes Run's loop to exit before its next receive.
func (c *UDPCollector) Shutdown() {
	c.stopped.Store(true)
}

// decodeLossyUTF8 decodes b as UTF-8, replacing invalid sequences with the
// Unicode replacement character rather than erroring.
func decodeLossyUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
