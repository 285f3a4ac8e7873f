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

package telemetry

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSamplesIngested_CountsByKind(t *testing.T) {
	before := testutil.ToFloat64(SamplesIngested.WithLabelValues("counter"))
	SamplesIngested.WithLabelValues("counter").Inc()
	after := testutil.ToFloat64(SamplesIngested.WithLabelValues("counter"))
	if after != before+1 {
		t.Fatalf("expected counter to increment by 1, got %v -> %v", before, after)
	}
}

func TestFanoutQueueDepth_PerSinkLabel(t *testing.T) {
	FanoutQueueDepth.WithLabelValues("graphite:127.0.0.1:2003").Set(3)
	got := testutil.ToFloat64(FanoutQueueDepth.WithLabelValues("graphite:127.0.0.1:2003"))
	if got != 3 {
		t.Fatalf("expected 3, got %v", got)
	}
}

func TestServe_DoesNotReportAnImmediateError(t *testing.T) {
	errc := make(chan error, 1)
	srv := Serve("127.0.0.1:0", errc)
	defer srv.Close()

	select {
	case err := <-errc:
		t.Fatalf("unexpected server error: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMetricsEndpoint_ServesPrometheusText(t *testing.T) {
	srv := httptest.NewServer(promhttp.Handler())
	defer srv.Close()

	FlushesTotal.Inc()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "statsd_flushes_total") {
		t.Fatal("expected exported metrics to include statsd_flushes_total")
	}
}
