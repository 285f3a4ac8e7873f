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

package errs

import (
	"errors"
	"testing"
)

func TestSinkError_UnwrapAndAs(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewSinkError("graphite:127.0.0.1:2003", inner)

	var se *SinkError
	if !errors.As(err, &se) {
		t.Fatal("expected errors.As to find *SinkError")
	}
	if !errors.Is(err, inner) {
		t.Fatal("expected errors.Is to find the wrapped inner error")
	}
	if se.Sink != "graphite:127.0.0.1:2003" {
		t.Fatalf("unexpected sink name: %q", se.Sink)
	}
}

func TestCollectorIOError_FatalFlag(t *testing.T) {
	err := NewCollectorIOError("127.0.0.1:8125", true, errors.New("bind: address in use"))
	var cie *CollectorIOError
	if !errors.As(err, &cie) {
		t.Fatal("expected errors.As to find *CollectorIOError")
	}
	if !cie.Fatal {
		t.Fatal("expected Fatal to be true")
	}
}

func TestShutdownTimeoutError(t *testing.T) {
	err := NewShutdownTimeoutError("supervisor", errors.New("exceeded 30s budget"))
	if err.Component != "supervisor" {
		t.Fatalf("unexpected component: %q", err.Component)
	}
	if err.Error() == "" {
		t.Fatal("expected non-empty error message")
	}
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("log-level", errors.New("invalid log level \"TRACE\""))
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatal("expected errors.As to find *ConfigError")
	}
	if ce.Field != "log-level" {
		t.Fatalf("unexpected field: %q", ce.Field)
	}
}
