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

package collector

import (
	"errors"
	"io"
	"net"
	"sync/atomic"
	"time"

	cockroacherrors "github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"statsd/internal/errs"
	"statsd/internal/pool"
	"statsd/internal/queue"
)

const defaultChunkSize = 4096

// TCPCollector accepts connections and hands each one to an elastic worker
// pool (spec.md §4.5). Grounded on api.Server's accept-loop/graceful
// shutdown shape, generalized to a raw net.Listener.
type TCPCollector struct {
	addr        string
	chunkSize   int
	readTimeout time.Duration
	ingress     *queue.Queue[string]
	pool        *pool.Pool
	log         *logrus.Entry

	listener  net.Listener
	stopped   atomic.Bool
	accepting chan struct{}
}

// NewTCPCollector builds a collector that dispatches accepted connections
// to p.
func NewTCPCollector(addr string, chunkSize int, readTimeout time.Duration, ingress *queue.Queue[string], p *pool.Pool, log *logrus.Entry) *TCPCollector {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if readTimeout <= 0 {
		readTimeout = defaultRecvTimeout
	}
	return &TCPCollector{
		addr:        addr,
		chunkSize:   chunkSize,
		readTimeout: readTimeout,
		ingress:     ingress,
		pool:        p,
		log:         log,
		accepting:   make(chan struct{}),
	}
}

// Accepting returns a channel closed once the listener is bound.
func (c *TCPCollector) Accepting() <-chan struct{} { return c.accepting }

// LocalAddr returns the bound listener address. Only valid after Accepting
// has closed.
func (c *TCPCollector) LocalAddr() net.Addr { return c.listener.Addr() }

// Run binds the listener and accepts connections until Shutdown is called.
func (c *TCPCollector) Run() error {
	listener, err := net.Listen("tcp", c.addr)
	if err != nil {
		return errs.NewCollectorIOError(c.addr, true, cockroacherrors.Wrap(err, "bind"))
	}
	c.listener = listener
	defer listener.Close()
	close(c.accepting)

	tcpListener, _ := listener.(*net.TCPListener)

	for !c.stopped.Load() {
		if tcpListener != nil {
			_ = tcpListener.SetDeadline(time.Now().Add(defaultRecvTimeout))
		}
		conn, err := listener.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if c.stopped.Load() {
				return nil
			}
			c.log.WithError(errs.NewCollectorIOError(c.addr, false, err)).Warn("tcp collector: transient accept error")
			continue
		}
		// Never refuse a connection: submit and let the elastic pool
		// grow (up to its cap) or queue it if already at cap, per
		// spec.md §4.5.
		c.pool.Submit(func() { c.handleConnection(conn) })
	}
	return nil
}

// Shutdown causes Run's accept loop to exit before its next Accept.
func (c *TCPCollector) Shutdown() {
	c.stopped.Store(true)
}

func (c *TCPCollector) handleConnection(conn net.Conn) {
	defer conn.Close()

	f := &framer{}
	buf := make([]byte, c.chunkSize)
	for {
		if c.stopped.Load() {
			break
		}
		if err := conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			break
		}
		n, err := conn.Read(buf)
		if n > 0 {
			if request := f.Feed(string(buf[:n])); request != "" {
				c.ingress.Push(request)
			}
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if errors.Is(err, io.EOF) {
				break
			}
			break
		}
	}

	if residual := f.Flush(); residual != "" {
		c.ingress.Push(residual)
	}
}
