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

// Package errs collects the server's named error kinds, each a concrete
// type wrapping github.com/cockroachdb/errors the same way
// pkg/metric.ParseError and the rest of the module already do. Callers type
// switch or errors.As on these rather than matching on string messages.
package errs

import "github.com/cockroachdb/errors"

// SinkError reports that a sink's Flush failed for one batch. The batch is
// dropped at the processor boundary; the sink worker keeps running.
type SinkError struct {
	Sink string
	Err  error
}

func (e *SinkError) Error() string {
	return errors.Wrapf(e.Err, "sink %q flush failed", e.Sink).Error()
}

func (e *SinkError) Unwrap() error { return e.Err }

// NewSinkError wraps err as a SinkError for the named sink.
func NewSinkError(sinkName string, err error) *SinkError {
	return &SinkError{Sink: sinkName, Err: err}
}

// CollectorIOError reports a transient or fatal socket error inside a
// collector's recv/accept loop. Transient errors are logged and the loop
// continues; a bind failure surfaces this at Start and aborts supervisor
// startup.
type CollectorIOError struct {
	Collector string
	Fatal     bool
	Err       error
}

func (e *CollectorIOError) Error() string {
	kind := "transient"
	if e.Fatal {
		kind = "fatal"
	}
	return errors.Wrapf(e.Err, "%s collector %s I/O error", e.Collector, kind).Error()
}

func (e *CollectorIOError) Unwrap() error { return e.Err }

// NewCollectorIOError wraps err as a CollectorIOError for the named
// collector.
func NewCollectorIOError(collector string, fatal bool, err error) *CollectorIOError {
	return &CollectorIOError{Collector: collector, Fatal: fatal, Err: err}
}

// ShutdownTimeoutError reports that a bounded shutdown wait was exceeded.
// The supervisor still marks itself Stopped and releases what it can.
type ShutdownTimeoutError struct {
	Component string
	Err       error
}

func (e *ShutdownTimeoutError) Error() string {
	return errors.Wrapf(e.Err, "%s shutdown timed out", e.Component).Error()
}

func (e *ShutdownTimeoutError) Unwrap() error { return e.Err }

// NewShutdownTimeoutError wraps err as a ShutdownTimeoutError for component.
func NewShutdownTimeoutError(component string, err error) *ShutdownTimeoutError {
	return &ShutdownTimeoutError{Component: component, Err: err}
}

// ConfigError reports a startup configuration problem (bad address, flag
// range violation, unreadable config file). Config errors surface before
// any collector or processor task is started and abort the process.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return errors.Wrapf(e.Err, "invalid configuration for %q", e.Field).Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError wraps err as a ConfigError for the named field.
func NewConfigError(field string, err error) *ConfigError {
	return &ConfigError{Field: field, Err: err}
}
