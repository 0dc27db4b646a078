// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package fillq

// RaceEnabled is true when the race detector is active.
// Used by tests to skip concurrent slab and counting tests, whose atomix
// operations the detector cannot observe as synchronization.
const RaceEnabled = true
