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

// Package logging builds the structured logger every core component
// receives at construction (spec.md §9: "structured logger value passed by
// the supervisor into each component ... no implicit inheritance"). Built
// on github.com/sirupsen/logrus, already part of the teacher's module
// graph (nozomi1773-carbon-relay-ng's go.mod). Multi-destination behavior
// (stderr/file/syslog simultaneously) is grounded on navdoon/app.py's
// _create_logger, which attaches one handler per enabled destination to a
// single logger instance.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	lSyslog "github.com/sirupsen/logrus/hooks/syslog"
	"log/syslog"

	"statsd/internal/config"
	"statsd/internal/errs"
)

// Options controls where log output goes, mirroring spec.md §6's
// --log-level/--log-file/--log-stderr/--log-syslog/--syslog-socket flags.
type Options struct {
	Level        string
	File         string
	Stderr       bool
	Syslog       bool
	SyslogSocket string
}

// New builds a *logrus.Logger configured per opts. At least one of
// File/Stderr/Syslog should be set by the caller; New defaults to stderr if
// none are, so the server is never silently unobservable.
func New(opts Options) (*logrus.Logger, error) {
	if err := config.ValidateLogLevel(opts.Level); err != nil {
		return nil, err
	}
	level := toLogrusLevel(opts.Level)

	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetOutput(io.Discard)

	wroteAny := false

	if opts.Stderr {
		log.AddHook(newWriterHook(os.Stderr, level))
		wroteAny = true
	}

	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errs.NewConfigError("log-file", err)
		}
		log.AddHook(newWriterHook(f, level))
		wroteAny = true
	}

	if opts.Syslog {
		network, addr := "", opts.SyslogSocket
		if addr == "" {
			network, addr = "", ""
		} else {
			network = "unix"
		}
		hook, err := lSyslog.NewSyslogHook(network, addr, syslog.LOG_INFO, "statsd")
		if err != nil {
			return nil, errs.NewConfigError("log-syslog", err)
		}
		log.AddHook(hook)
		wroteAny = true
	}

	if !wroteAny {
		log.AddHook(newWriterHook(os.Stderr, level))
	}

	return log, nil
}

// toLogrusLevel maps spec.md §6's six log level names onto logrus's level
// set. logrus has no native CRITICAL level, so it is folded into
// logrus.FatalLevel, the most severe level logrus exposes short of Panic;
// config.ValidateLogLevel has already rejected anything outside the six
// accepted names by the time this runs.
func toLogrusLevel(name string) logrus.Level {
	switch name {
	case "DEBUG":
		return logrus.DebugLevel
	case "INFO":
		return logrus.InfoLevel
	case "WARN":
		return logrus.WarnLevel
	case "ERROR":
		return logrus.ErrorLevel
	case "FATAL":
		return logrus.FatalLevel
	case "CRITICAL":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

// writerHook is a small logrus.Hook that writes every entry at or above
// its configured level to w, formatted by the logger's own formatter. It
// lets New attach several independent destinations (stderr, file, syslog)
// to one logger, matching navdoon/app.py's one-logger/many-handlers shape.
type writerHook struct {
	w     io.Writer
	level logrus.Level
}

func newWriterHook(w io.Writer, level logrus.Level) *writerHook {
	return &writerHook{w: w, level: level}
}

func (h *writerHook) Levels() []logrus.Level {
	return logrus.AllLevels[:h.level+1]
}

func (h *writerHook) Fire(entry *logrus.Entry) error {
	line, err := entry.Logger.Formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.w.Write(line)
	return err
}
