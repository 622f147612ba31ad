// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock is the time source for every timer in qnetctl.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once d
	// has elapsed. If d <= 0 the channel is ready immediately.
	After(d time.Duration) <-chan time.Time

	// AfterFunc calls f once d has elapsed. The returned Timer can
	// cancel or re-arm the pending call. The real clock runs f on its
	// own goroutine; the fake clock runs it inside Advance.
	AfterFunc(d time.Duration, f func()) *Timer

	// NewTicker delivers ticks every d on the returned Ticker's C.
	// Panics if d <= 0.
	NewTicker(d time.Duration) *Ticker
}

// Timer is a single-shot timer created by AfterFunc.
type Timer struct {
	stop  func() bool
	reset func(time.Duration) bool
}

// Stop cancels the pending call. Reports whether the call was still
// pending.
func (t *Timer) Stop() bool { return t.stop() }

// Reset re-arms the timer to fire d from now, whether or not it has
// already fired. Reports whether the call was still pending.
func (t *Timer) Reset(d time.Duration) bool { return t.reset(d) }

// Ticker delivers periodic ticks on C. C is buffered with capacity 1;
// ticks are dropped while the receiver is behind.
type Ticker struct {
	C <-chan time.Time

	stop func()
}

// Stop turns the ticker off. No more ticks are delivered.
func (t *Ticker) Stop() { t.stop() }
