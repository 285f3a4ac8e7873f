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

import "strings"

// framer reassembles a stream of arbitrarily-sized chunks into complete
// newline-terminated lines, holding back a trailing partial line in a
// carry buffer until more bytes (or EOF) complete it. The carry is
// prepended to the first line of the next chunk.
type framer struct {
	carry strings.Builder
}

// Feed processes one chunk and returns a single request string containing
// every complete line found (carry-prefixed on the first), with newline
// terminators preserved for downstream splitting. Any trailing partial line
// is retained in the carry buffer rather than returned.
func (f *framer) Feed(chunk string) string {
	combined := f.carry.String() + chunk
	f.carry.Reset()

	lastNL := strings.LastIndexByte(combined, '\n')
	if lastNL == -1 {
		// No complete line yet; the whole chunk becomes carry.
		f.carry.WriteString(combined)
		return ""
	}

	complete := combined[:lastNL+1]
	remainder := combined[lastNL+1:]
	if remainder != "" {
		f.carry.WriteString(remainder)
	}
	return complete
}

// Flush returns any residual carry as a final request, even though it
// lacks a trailing newline. Called on EOF or shutdown so a connection
// closed mid-line still delivers its last partial sample.
func (f *framer) Flush() string {
	residual := f.carry.String()
	f.carry.Reset()
	return residual
}
