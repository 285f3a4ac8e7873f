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
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"statsd/internal/pool"
	"statsd/internal/queue"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return logrus.NewEntry(l)
}

func TestUDPCollector_EnqueuesDatagram(t *testing.T) {
	ingress := queue.New[string]()
	c := NewUDPCollector("127.0.0.1:0", 0, ingress, testLogger())

	errCh := make(chan error, 1)
	go func() { errCh <- c.Run() }()

	select {
	case <-c.Accepting():
	case <-time.After(time.Second):
		t.Fatal("collector never became ready")
	}
	defer c.Shutdown()

	conn, err := net.Dial("udp", c.conn.LocalAddr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte("event:1|c\nevent:1|c\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	req, ok := ingress.Pop(time.Second)
	if !ok {
		t.Fatal("expected a request on the ingress queue")
	}
	if req != "event:1|c\nevent:1|c\n" {
		t.Fatalf("unexpected request: %q", req)
	}
}

func TestTCPCollector_FramesLongLine(t *testing.T) {
	ingress := queue.New[string]()
	p := pool.New(2, 0)
	p.Start()
	defer p.Stop(time.Second)

	c := NewTCPCollector("127.0.0.1:0", 16, 2*time.Second, ingress, p, testLogger())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run() }()

	select {
	case <-c.Accepting():
	case <-time.After(time.Second):
		t.Fatal("collector never became ready")
	}
	defer c.Shutdown()

	conn, err := net.Dial("tcp", c.listener.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	payload := ""
	for i := 0; i < 500; i++ {
		payload += "m:1|c\n"
	}
	payload += "query:2|ms"
	if _, err := conn.Write([]byte(payload)); err != nil {
		t.Fatalf("write: %v", err)
	}
	conn.Close()

	var got string
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		req, ok := ingress.Pop(200 * time.Millisecond)
		if ok {
			got += req
		}
		if got == payload {
			break
		}
	}
	if got != payload {
		t.Fatalf("reassembled request mismatch:\ngot:  %q\nwant: %q", got, payload)
	}
}
