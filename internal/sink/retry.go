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

package sink

import (
	"time"

	"statsd/pkg/metric"
)

// retryingSink wraps another Sink with a bounded number of reconnect
// retries on Flush failure, separated by a fixed backoff: reconnect up to a configured retry
// cap before giving up on the current batch. It adds a concern (retrying)
// the wrapped sink knows nothing about, so any Sink can opt in.
type retryingSink struct {
	inner      Sink
	maxRetries int
	backoff    time.Duration
}

// WithRetries wraps a sink so that a failed Flush is retried up to
// maxRetries additional times, with a fixed backoff between attempts.
func WithRetries(inner Sink, maxRetries int, backoff time.Duration) Sink {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &retryingSink{inner: inner, maxRetries: maxRetries, backoff: backoff}
}

func (r *retryingSink) Flush(records []metric.Record) error {
	var err error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 && r.backoff > 0 {
			time.Sleep(r.backoff)
		}
		if err = r.inner.Flush(records); err == nil {
			return nil
		}
	}
	return err
}

func (r *retryingSink) Close() error { return r.inner.Close() }

func (r *retryingSink) Name() string { return r.inner.Name() }
