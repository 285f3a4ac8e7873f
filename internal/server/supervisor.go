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

// Package server implements the Supervisor: the component that owns the
// ingress queue, the collectors, and the processor, and drives the
// Start → Running → Shutdown/Reload lifecycle. It follows the usual
// construct-start-block-on-signal-stop orchestration shape, generalized
// into a reusable, restartable type with an explicit lifecycle state
// field instead of inline main-function code.
package server

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"statsd/internal/collector"
	"statsd/internal/errs"
	"statsd/internal/pool"
	"statsd/internal/processor"
	"statsd/internal/queue"
	"statsd/internal/shelf"
	"statsd/internal/sink"
)

// State is the supervisor's lifecycle state.
type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateReloading
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateReloading:
		return "reloading"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

const processorStartTimeout = 30 * time.Second

// CollectorSpec describes one collector to run, built fresh on every
// Start/Reload cycle so a reload can change bind addresses.
type CollectorSpec struct {
	Kind string // "udp" or "tcp"
	Addr string

	// OnReady, if set, is invoked with the collector's actual bound local
	// address once it starts accepting — useful for tests and for
	// "addr:0"-style ephemeral-port bindings.
	OnReady func(addr string)

	UDPBufferSize int

	TCPChunkSize      int
	TCPReadTimeout    time.Duration
	TCPWorkerBaseline int
	TCPWorkerMax      int
}

// Config is the set of parameters a (re)started supervisor cycle needs.
type Config struct {
	Collectors    []CollectorSpec
	FlushInterval time.Duration
	Sinks         []sink.Sink
}

type runningCollector struct {
	shutdown func()
	done     chan struct{}
}

// Supervisor owns the ingress queue, collectors, and processor for one
// server instance and drives its lifecycle.
type Supervisor struct {
	log *logrus.Entry

	mu      sync.Mutex
	state   State
	shelf   *shelf.Shelf
	cfg     Config
	reload  chan Config
	pause   chan struct{}
	stopped chan struct{}
}

// New builds a supervisor. The shelf is created once and survives
// reloads, preserved by living outside the processor.
func New(cfg Config, log *logrus.Entry) *Supervisor {
	return &Supervisor{
		log:   log,
		state: StateStopped,
		shelf: shelf.New(),
		cfg:   cfg,
	}
}

// State reports the supervisor's current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run executes the full Start → Running → pause → (reload loop or exit)
// lifecycle, blocking until a terminal Shutdown completes. Intended to
// run on its own goroutine/task.
func (s *Supervisor) Run() error {
	cfg := s.cfg
	for {
		s.mu.Lock()
		s.state = StateStarting
		s.pause = make(chan struct{})
		s.stopped = make(chan struct{})
		s.mu.Unlock()

		ingress := queue.New[string]()
		proc := processor.New(s.shelf, ingress, cfg.FlushInterval, cfg.Sinks, s.log)

		procDone := make(chan struct{})
		go func() {
			proc.Run()
			close(procDone)
		}()

		select {
		case <-proc.Processing():
		case <-time.After(processorStartTimeout):
			return errors.New("supervisor: processor did not signal processing within timeout")
		}

		collectors, err := startCollectors(cfg.Collectors, ingress, s.log)
		if err != nil {
			proc.Stop()
			return errors.Wrap(err, "supervisor: failed to start collectors")
		}

		s.mu.Lock()
		s.state = StateRunning
		s.mu.Unlock()
		s.log.Info("supervisor running")

		<-s.pause

		s.mu.Lock()
		s.state = StateStopping
		s.mu.Unlock()

		for _, c := range collectors {
			c.shutdown()
			<-c.done
		}
		proc.Stop()
		<-procDone

		s.mu.Lock()
		reloadCfg, isReload := s.drainReload()
		s.mu.Unlock()

		if !isReload {
			s.mu.Lock()
			s.state = StateStopped
			s.mu.Unlock()
			close(s.stopped)
			return nil
		}

		cfg = reloadCfg
		s.log.Info("supervisor reloading")
	}
}

func (s *Supervisor) drainReload() (Config, bool) {
	select {
	case cfg := <-s.reload:
		return cfg, true
	default:
		return Config{}, false
	}
}

// Shutdown requests a graceful stop and waits up to timeout for it to
// complete.
func (s *Supervisor) Shutdown(timeout time.Duration) error {
	s.mu.Lock()
	pause := s.pause
	stopped := s.stopped
	s.mu.Unlock()

	if pause == nil {
		return nil
	}
	closePauseOnce(pause)

	select {
	case <-stopped:
		return nil
	case <-time.After(timeout):
		return errs.NewShutdownTimeoutError("supervisor", errors.Newf("exceeded %s budget", timeout))
	}
}

// Reload requests the supervisor recreate its collectors/processor/sinks
// with newCfg, preserving the shelf.
func (s *Supervisor) Reload(newCfg Config) {
	s.mu.Lock()
	s.state = StateReloading
	if s.reload == nil {
		s.reload = make(chan Config, 1)
	}
	s.reload <- newCfg
	pause := s.pause
	s.mu.Unlock()

	if pause != nil {
		closePauseOnce(pause)
	}
}

// closePauseOnce closes pause, tolerating a pause channel that a concurrent
// Shutdown/Reload call already closed.
func closePauseOnce(pause chan struct{}) {
	defer func() { recover() }()
	close(pause)
}

func startCollectors(specs []CollectorSpec, ingress *queue.Queue[string], log *logrus.Entry) ([]runningCollector, error) {
	var running []runningCollector
	for _, spec := range specs {
		switch spec.Kind {
		case "udp":
			c := collector.NewUDPCollector(spec.Addr, spec.UDPBufferSize, ingress, log)
			done := make(chan struct{})
			startErr := make(chan error, 1)
			go func() {
				if err := c.Run(); err != nil {
					log.WithError(err).Error("udp collector exited with error")
					startErr <- err
				}
				close(done)
			}()
			if err := waitReady(c.Accepting(), startErr); err != nil {
				return nil, errors.Wrapf(err, "starting udp collector on %s", spec.Addr)
			}
			if spec.OnReady != nil {
				spec.OnReady(c.LocalAddr().String())
			}
			running = append(running, runningCollector{shutdown: c.Shutdown, done: done})

		case "tcp":
			p := newTCPPool(spec)
			p.Start()
			c := collector.NewTCPCollector(spec.Addr, spec.TCPChunkSize, spec.TCPReadTimeout, ingress, p, log)
			done := make(chan struct{})
			startErr := make(chan error, 1)
			go func() {
				if err := c.Run(); err != nil {
					log.WithError(err).Error("tcp collector exited with error")
					startErr <- err
				}
				_ = p.Stop(5 * time.Second)
				close(done)
			}()
			if err := waitReady(c.Accepting(), startErr); err != nil {
				return nil, errors.Wrapf(err, "starting tcp collector on %s", spec.Addr)
			}
			if spec.OnReady != nil {
				spec.OnReady(c.LocalAddr().String())
			}
			running = append(running, runningCollector{shutdown: c.Shutdown, done: done})

		default:
			return nil, errors.Newf("supervisor: unknown collector kind %q", spec.Kind)
		}
	}
	return running, nil
}

func newTCPPool(spec CollectorSpec) *pool.Pool {
	baseline := spec.TCPWorkerBaseline
	if baseline < 1 {
		baseline = 1
	}
	return pool.New(baseline, spec.TCPWorkerMax)
}

// waitReady waits for a collector to become ready, but also watches its
// start error channel so a fatal bind error (net.Listen/ListenPacket
// failure) aborts startup immediately instead of waiting out the full
// timeout, per spec.md §7 ("fatal bind errors surface at Start and abort
// supervisor startup").
func waitReady(accepting <-chan struct{}, startErr <-chan error) error {
	select {
	case <-accepting:
		return nil
	case err := <-startErr:
		return err
	case <-time.After(processorStartTimeout):
		return errors.New("collector did not become ready within timeout")
	}
}
