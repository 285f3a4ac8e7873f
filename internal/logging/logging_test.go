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

package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_DefaultsToStderrWhenNothingEnabled(t *testing.T) {
	log, err := New(Options{Level: "INFO"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(log.Hooks) == 0 {
		t.Fatal("expected New to register a default stderr hook")
	}
	log.Info("hello")
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statsd.log")
	log, err := New(Options{Level: "DEBUG", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Info("hello from file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected log file to contain output")
	}
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	if _, err := New(Options{Level: "TRACE"}); err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

func TestToLogrusLevel_CriticalFoldsToFatal(t *testing.T) {
	if got := toLogrusLevel("CRITICAL"); got.String() != "fatal" {
		t.Fatalf("expected CRITICAL to map to fatal, got %s", got)
	}
}
