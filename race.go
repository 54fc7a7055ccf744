// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package spscq

// RaceEnabled is true when the race detector is active.
// Used by tests to skip producer/consumer stress runs: the detector does
// not see the ordering atomix gives the slot state word, so every value
// handed over through a slot looks like a race.
const RaceEnabled = true
