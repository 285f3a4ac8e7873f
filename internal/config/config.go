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

// Package config parses and validates the CLI/INI surface: collector
// address lists, flush destinations, and logging knobs. Explicit
// command-line flags always win over an INI file's values. INI file
// loading uses github.com/go-ini/ini.
package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-ini/ini"

	"statsd/internal/errs"
)

// DefaultHost and DefaultPort are the defaults applied by the address
// parsing rule.
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 8125

	DefaultGraphitePort = 2003
)

// LogLevelNames is the closed set of accepted --log-level values.
var LogLevelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL", "CRITICAL"}

// Config is the fully resolved, validated configuration a Supervisor cycle
// is built from. Every field corresponds to one CLI flag (or an INI-file
// equivalent with the same name, dashes turned to underscores).
type Config struct {
	CollectUDP []string // host:port entries, defaults filled in
	CollectTCP []string

	CollectorThreads      int
	CollectorThreadsLimit int

	FlushInterval time.Duration

	FlushGraphite []string // host:port, default graphite port filled in
	FlushStdout   bool
	FlushFile     []string
	FlushFileCSV  []string

	LogLevel  string
	LogFile   string
	LogStderr bool
	LogSyslog bool

	SyslogSocket string

	// DropUser/DropGroup, if non-empty, are the user/group the process
	// switches to after binding its sockets.
	DropUser  string
	DropGroup string

	// MetricsAddr, if non-empty, serves self-telemetry (internal/telemetry)
	// over HTTP on this address.
	MetricsAddr string
}

// Default returns the baseline configuration applied before flags or an
// INI file override anything.
func Default() Config {
	return Config{
		CollectorThreads:      1,
		CollectorThreadsLimit: 0,
		FlushInterval:         10 * time.Second,
		LogLevel:              "INFO",
	}
}

// ParseAddrList splits a comma-separated host:port list, filling in
// defaultHost/defaultPort where omitted, and validates that every port is
// unique within the list and in [1,65535]. An empty flagValue returns a
// nil slice and no error.
func ParseAddrList(flagValue, fieldName string, defaultHost string, defaultPort int) ([]string, error) {
	if strings.TrimSpace(flagValue) == "" {
		return nil, nil
	}

	seenPorts := make(map[int]struct{})
	var addrs []string
	for _, raw := range strings.Split(flagValue, ",") {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}

		host, portStr, hasColon := strings.Cut(entry, ":")
		host = strings.TrimSpace(host)
		if host == "" {
			host = defaultHost
		}

		port := defaultPort
		if hasColon {
			portStr = strings.TrimSpace(portStr)
			p, err := strconv.Atoi(portStr)
			if err != nil {
				return nil, errs.NewConfigError(fieldName, errors.Newf("invalid port %q in %q", portStr, entry))
			}
			port = p
		}

		if port < 1 || port > 65535 {
			return nil, errs.NewConfigError(fieldName, errors.Newf("port %d out of range [1,65535] in %q", port, entry))
		}
		if _, dup := seenPorts[port]; dup {
			return nil, errs.NewConfigError(fieldName, errors.Newf("duplicate port %d in %q", port, flagValue))
		}
		seenPorts[port] = struct{}{}

		addrs = append(addrs, host+":"+strconv.Itoa(port))
	}
	return addrs, nil
}

// ParsePipeList splits a '|'-separated list ("--flush-file path[|path…]").
func ParsePipeList(flagValue string) []string {
	if flagValue == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(flagValue, "|") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateLogLevel checks name against LogLevelNames.
func ValidateLogLevel(name string) error {
	for _, n := range LogLevelNames {
		if n == name {
			return nil
		}
	}
	return errs.NewConfigError("log-level", errors.Newf("invalid log level %q", name))
}

// IniOverrides loads key/value pairs from the "[statsd]" section of an INI
// file at path. Flags passed on the command line take precedence over
// these; callers apply overrides only for flags the user left unset.
func IniOverrides(path string) (map[string]string, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, errs.NewConfigError("config", err)
	}

	section := cfg.Section("statsd")
	out := make(map[string]string, len(section.Keys()))
	for _, key := range section.Keys() {
		out[key.Name()] = key.Value()
	}
	return out, nil
}
