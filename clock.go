// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

import "time"

// Clock supplies the monotonic millisecond timestamps the firmware device
// state machine uses for retry and command timeouts, the same seam the
// libpldm_clock_gettime weak symbol provides over
// CLOCK_MONOTONIC.
type Clock interface {
	// Now returns a monotonically non-decreasing millisecond timestamp.
	// Callers only ever compare two Now() values, never its absolute
	// value.
	Now() uint64
}

// SystemClock is a Clock backed by the Go runtime's monotonic clock.
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a SystemClock anchored at the current instant.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now implements Clock.
func (c *SystemClock) Now() uint64 {
	return uint64(time.Since(c.start).Milliseconds())
}
