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

package privdrop

import "testing"

func TestTo_NoOpWhenBothEmpty(t *testing.T) {
	if err := To("", ""); err != nil {
		t.Fatalf("expected no-op to succeed, got: %v", err)
	}
}

func TestTo_UnknownUserFailsBeforeSetuid(t *testing.T) {
	err := To("no-such-user-statsd-test", "")
	if err == nil {
		t.Fatal("expected an error resolving an unknown user")
	}
}

func TestTo_UnknownGroupFailsBeforeSetgid(t *testing.T) {
	err := To("", "no-such-group-statsd-test")
	if err == nil {
		t.Fatal("expected an error resolving an unknown group")
	}
}

func TestLookupUID_InvalidName(t *testing.T) {
	if _, err := lookupUID("no-such-user-statsd-test"); err == nil {
		t.Fatal("expected lookup failure for a nonexistent user")
	}
}

func TestLookupGID_InvalidName(t *testing.T) {
	if _, err := lookupGID("no-such-group-statsd-test"); err == nil {
		t.Fatal("expected lookup failure for a nonexistent group")
	}
}
