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

package shelf

// gaugeCell holds one named gauge's current value plus whether it has been
// touched at all since the last clear. Before the first absolute value,
// deltas accumulate starting from zero; an absolute value always overwrites
// whatever came before it (spec.md §3-I2). A gauge is live and emitted at
// the next snapshot as soon as any sample — absolute or delta — has
// touched it.
//
// The cell itself is not separately locked: all access to a gaugeCell goes
// through the shelf's single mutex, so no per-cell synchronization is
// needed here. This mirrors the teacher's VSA value type in spirit (a small
// struct holding a stable value alongside volatile adjustments) without its
// locking, since the shelf already serializes access.
type gaugeCell struct {
	value    float64
	hasValue bool
}

// applyAbsolute overwrites the cell with an absolute value.
func (g *gaugeCell) applyAbsolute(v float64) {
	g.value = v
	g.hasValue = true
}

// applyDelta adds a relative change. If no absolute value has arrived yet,
// the delta accumulates as if starting from zero, and the gauge is still
// live (emitted at the next snapshot) even though no absolute value has
// ever arrived for it.
func (g *gaugeCell) applyDelta(delta float64) {
	g.value += delta
	g.hasValue = true
}
