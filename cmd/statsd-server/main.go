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

// Package main wires the CLI surface from spec.md §6 to the core
// Supervisor: flag parsing (plus an optional INI config file), logging,
// self-telemetry, and OS signal handling. Grounded on the teacher's
// cmd/ratelimiter-api/main.go (flags as production knobs, construct
// components, start, block on signal, graceful shutdown), extended with
// SIGHUP reload per navdoon/app.py's signal handlers.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"statsd/internal/collector"
	"statsd/internal/config"
	"statsd/internal/errs"
	"statsd/internal/logging"
	"statsd/internal/privdrop"
	"statsd/internal/server"
	"statsd/internal/sink"
	"statsd/internal/telemetry"
)

const shutdownBudget = 30 * time.Second

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := parseConfig(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "statsd-server:", err)
		return 1
	}

	log, err := logging.New(logging.Options{
		Level:        cfg.LogLevel,
		File:         cfg.LogFile,
		Stderr:       cfg.LogStderr,
		Syslog:       cfg.LogSyslog,
		SyslogSocket: cfg.SyslogSocket,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "statsd-server:", err)
		return 1
	}
	entry := log.WithField("component", "statsd-server")

	if cfg.DropUser != "" || cfg.DropGroup != "" {
		if err := privdrop.To(cfg.DropUser, cfg.DropGroup); err != nil {
			entry.WithError(err).Error("failed to drop privileges")
			return 1
		}
	}

	sinks, err := sink.Build(sinkConfig(cfg))
	if err != nil {
		entry.WithError(err).Error("failed to build sinks")
		return 1
	}

	sup := server.New(server.Config{
		Collectors:    collectorSpecs(cfg),
		FlushInterval: cfg.FlushInterval,
		Sinks:         sinks,
	}, entry)

	var metricsSrv *metricsServer
	if cfg.MetricsAddr != "" {
		metricsErrc := make(chan error, 1)
		srv := telemetry.Serve(cfg.MetricsAddr, metricsErrc)
		metricsSrv = &metricsServer{srv: srv, errc: metricsErrc}
		go func() {
			if err := <-metricsErrc; err != nil {
				entry.WithError(err).Error("metrics server exited with error")
			}
		}()
		entry.WithField("addr", cfg.MetricsAddr).Info("serving self-telemetry")
	}

	runDone := make(chan error, 1)
	go func() { runDone <- sup.Run() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		select {
		case sig := <-stop:
			switch sig {
			case syscall.SIGHUP:
				entry.Info("received SIGHUP, reloading")
				newSinks, err := sink.Build(sinkConfig(cfg))
				if err != nil {
					entry.WithError(err).Error("reload failed: could not rebuild sinks, keeping running config")
					continue
				}
				sup.Reload(server.Config{
					Collectors:    collectorSpecs(cfg),
					FlushInterval: cfg.FlushInterval,
					Sinks:         newSinks,
				})
			default:
				entry.Info("received shutdown signal")
				if err := sup.Shutdown(shutdownBudget); err != nil {
					entry.WithError(err).Error("shutdown did not complete cleanly")
				}
			}
		case err := <-runDone:
			if metricsSrv != nil {
				metricsSrv.close()
			}
			if err != nil {
				entry.WithError(err).Error("supervisor exited with error")
				return 1
			}
			return 0
		}
	}
}

type metricsServer struct {
	srv  interface{ Shutdown(ctx context.Context) error }
	errc chan error
}

func (m *metricsServer) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = m.srv.Shutdown(ctx)
}

func sinkConfig(cfg config.Config) sink.Config {
	return sink.Config{
		GraphiteAddrs: cfg.FlushGraphite,
		Stdout:        cfg.FlushStdout,
		FilePaths:     cfg.FlushFile,
		CSVFilePaths:  cfg.FlushFileCSV,
		DialTimeout:   5 * time.Second,
		MaxRetries:    3,
		RetryDelay:    500 * time.Millisecond,
	}
}

func collectorSpecs(cfg config.Config) []server.CollectorSpec {
	var specs []server.CollectorSpec
	for _, addr := range cfg.CollectUDP {
		specs = append(specs, server.CollectorSpec{
			Kind:          "udp",
			Addr:          addr,
			UDPBufferSize: collector.DefaultUDPBufferSize,
		})
	}
	for _, addr := range cfg.CollectTCP {
		specs = append(specs, server.CollectorSpec{
			Kind:              "tcp",
			Addr:              addr,
			TCPWorkerBaseline: cfg.CollectorThreads,
			TCPWorkerMax:      cfg.CollectorThreadsLimit,
		})
	}
	if len(specs) == 0 {
		// spec.md §6: "If no collector flag is given, a single default
		// UDP collector on 127.0.0.1:8125 is created."
		specs = append(specs, server.CollectorSpec{
			Kind:          "udp",
			Addr:          fmt.Sprintf("%s:%d", config.DefaultHost, config.DefaultPort),
			UDPBufferSize: collector.DefaultUDPBufferSize,
		})
	}
	return specs
}

// parseConfig parses flags, merges an optional --config INI file (flags
// win on conflict, per navdoon/app.py precedence), and validates addresses
// per spec.md §6.
func parseConfig(args []string) (config.Config, error) {
	fs := flag.NewFlagSet("statsd-server", flag.ContinueOnError)

	collectUDP := fs.String("collect-udp", "", "UDP collector address list, host:port[,host:port...]")
	collectTCP := fs.String("collect-tcp", "", "TCP collector address list, host:port[,host:port...]")
	collectorThreads := fs.Int("collector-threads", 1, "initial TCP worker count")
	collectorThreadsLimit := fs.Int("collector-threads-limit", 0, "max TCP worker count (0 = unbounded)")
	flushInterval := fs.Float64("flush-interval", 10, "flush interval in seconds")
	flushGraphite := fs.String("flush-graphite", "", "Graphite destination list, host[:port][,...]")
	flushStdout := fs.Bool("flush-stdout", false, "flush to stdout")
	flushFile := fs.String("flush-file", "", "file destination list, path[|path...]")
	flushFileCSV := fs.String("flush-file-csv", "", "CSV file destination list, path[|path...]")
	configPath := fs.String("config", "", "path to an INI config file")
	logLevel := fs.String("log-level", "INFO", "log level: DEBUG, INFO, WARN, ERROR, FATAL, CRITICAL")
	logFile := fs.String("log-file", "", "path to log file")
	logStderr := fs.Bool("log-stderr", false, "log to stderr")
	logSyslog := fs.Bool("log-syslog", false, "log to syslog")
	syslogSocket := fs.String("syslog-socket", "", "syslog socket path")
	dropUser := fs.String("user", "", "user to drop privileges to after binding sockets")
	dropGroup := fs.String("group", "", "group to drop privileges to after binding sockets")
	metricsAddr := fs.String("metrics-addr", "", "if non-empty, serve self-telemetry /metrics on this address")

	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	cfg := config.Default()

	if *configPath != "" {
		overrides, err := config.IniOverrides(*configPath)
		if err != nil {
			return config.Config{}, err
		}
		applyIniDefaults(&cfg, overrides)
	}

	if *collectUDP != "" {
		udp, err := config.ParseAddrList(*collectUDP, "collect-udp", config.DefaultHost, config.DefaultPort)
		if err != nil {
			return config.Config{}, err
		}
		cfg.CollectUDP = udp
	}
	if *collectTCP != "" {
		tcp, err := config.ParseAddrList(*collectTCP, "collect-tcp", config.DefaultHost, config.DefaultPort)
		if err != nil {
			return config.Config{}, err
		}
		cfg.CollectTCP = tcp
	}
	if explicit["collector-threads"] || cfg.CollectorThreads == 0 {
		cfg.CollectorThreads = *collectorThreads
	}
	if explicit["collector-threads-limit"] {
		cfg.CollectorThreadsLimit = *collectorThreadsLimit
	}
	if cfg.CollectorThreadsLimit != 0 && cfg.CollectorThreadsLimit < cfg.CollectorThreads {
		return config.Config{}, errs.NewConfigError("collector-threads-limit",
			fmt.Errorf("must be 0 or >= collector-threads (%d), got %d", cfg.CollectorThreads, cfg.CollectorThreadsLimit))
	}

	if *flushInterval <= 0 {
		return config.Config{}, errs.NewConfigError("flush-interval", fmt.Errorf("must be > 0, got %v", *flushInterval))
	}
	cfg.FlushInterval = time.Duration(*flushInterval * float64(time.Second))

	if *flushGraphite != "" {
		graphite, err := config.ParseAddrList(*flushGraphite, "flush-graphite", "", config.DefaultGraphitePort)
		if err != nil {
			return config.Config{}, err
		}
		cfg.FlushGraphite = graphite
	}
	if explicit["flush-stdout"] {
		cfg.FlushStdout = *flushStdout
	}
	if explicit["flush-file"] {
		cfg.FlushFile = config.ParsePipeList(*flushFile)
	}
	if explicit["flush-file-csv"] {
		cfg.FlushFileCSV = config.ParsePipeList(*flushFileCSV)
	}

	if explicit["log-level"] {
		cfg.LogLevel = *logLevel
	}
	if err := config.ValidateLogLevel(cfg.LogLevel); err != nil {
		return config.Config{}, err
	}
	if explicit["log-file"] {
		cfg.LogFile = *logFile
	}
	if explicit["log-stderr"] {
		cfg.LogStderr = *logStderr
	}
	if explicit["log-syslog"] {
		cfg.LogSyslog = *logSyslog
	}
	if explicit["syslog-socket"] {
		cfg.SyslogSocket = *syslogSocket
	}
	if explicit["user"] {
		cfg.DropUser = *dropUser
	}
	if explicit["group"] {
		cfg.DropGroup = *dropGroup
	}
	if explicit["metrics-addr"] {
		cfg.MetricsAddr = *metricsAddr
	}

	return cfg, nil
}

// applyIniDefaults fills in cfg fields from an INI file's key/value pairs
// for flags the caller has not yet overridden, matching navdoon/app.py's
// "file values first, then flags overwrite non-nil ones" precedence.
func applyIniDefaults(cfg *config.Config, overrides map[string]string) {
	if v, ok := overrides["flush_stdout"]; ok {
		cfg.FlushStdout = v == "true" || v == "1"
	}
	if v, ok := overrides["flush_graphite"]; ok {
		cfg.FlushGraphite = config.ParsePipeList(v)
	}
	if v, ok := overrides["log_level"]; ok {
		cfg.LogLevel = v
	}
	if v, ok := overrides["log_file"]; ok {
		cfg.LogFile = v
	}
	if v, ok := overrides["log_stderr"]; ok {
		cfg.LogStderr = v == "true" || v == "1"
	}
	if v, ok := overrides["log_syslog"]; ok {
		cfg.LogSyslog = v == "true" || v == "1"
	}
}
