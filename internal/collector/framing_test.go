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
	"strings"
	"testing"
)

func TestFramer_SplitAcrossChunks(t *testing.T) {
	f := &framer{}
	out1 := f.Feed("m:1|c\nm:2")
	if out1 != "m:1|c\n" {
		t.Fatalf("unexpected first chunk output: %q", out1)
	}
	out2 := f.Feed("|c\nm:3|c\n")
	if out2 != "m:2|c\nm:3|c\n" {
		t.Fatalf("unexpected second chunk output: %q", out2)
	}
}

func TestFramer_FlushesResidualOnClose(t *testing.T) {
	f := &framer{}
	_ = f.Feed("m:1|c\nquery:2|ms")
	residual := f.Flush()
	if residual != "query:2|ms" {
		t.Fatalf("unexpected residual: %q", residual)
	}
}

func TestFramer_ArbitraryChunkingPreservesBytes(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 500; i++ {
		b.WriteString("m:1|c\n")
	}
	b.WriteString("query:2|ms")
	full := b.String()

	f := &framer{}
	var reassembled strings.Builder
	chunkSize := 13
	for i := 0; i < len(full); i += chunkSize {
		end := i + chunkSize
		if end > len(full) {
			end = len(full)
		}
		reassembled.WriteString(f.Feed(full[i:end]))
	}
	reassembled.WriteString(f.Flush())

	if reassembled.String() != full {
		t.Fatalf("reassembled stream does not match original:\ngot:  %q\nwant: %q", reassembled.String(), full)
	}
}
