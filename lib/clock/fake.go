// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// FakeClock is a Clock that only moves when Advance is called.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	timers  []*fakeTimer
	changed *sync.Cond
}

// fakeTimer is one pending AfterFunc, After, or ticker registration.
// Exactly one of callback and channel is set.
type fakeTimer struct {
	deadline time.Time
	period   time.Duration // non-zero for tickers
	callback func()
	channel  chan time.Time
	active   bool
}

// Fake returns a FakeClock reading initial.
func Fake(initial time.Time) *FakeClock {
	fake := &FakeClock{now: initial}
	fake.changed = sync.NewCond(&fake.mu)
	return fake
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	channel := make(chan time.Time, 1)
	c.mu.Lock()
	defer c.mu.Unlock()
	if d <= 0 {
		channel <- c.now
		return channel
	}
	c.addLocked(&fakeTimer{deadline: c.now.Add(d), channel: channel})
	return channel
}

func (c *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	timer := &fakeTimer{callback: f}
	c.mu.Lock()
	timer.deadline = c.now.Add(d)
	c.addLocked(timer)
	c.mu.Unlock()

	return &Timer{
		stop: func() bool {
			c.mu.Lock()
			defer c.mu.Unlock()
			wasActive := timer.active
			c.removeLocked(timer)
			return wasActive
		},
		reset: func(d time.Duration) bool {
			c.mu.Lock()
			defer c.mu.Unlock()
			wasActive := timer.active
			c.removeLocked(timer)
			timer.deadline = c.now.Add(d)
			c.addLocked(timer)
			return wasActive
		},
	}
}

func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}
	channel := make(chan time.Time, 1)
	timer := &fakeTimer{period: d, channel: channel}
	c.mu.Lock()
	timer.deadline = c.now.Add(d)
	c.addLocked(timer)
	c.mu.Unlock()

	return &Ticker{
		C: channel,
		stop: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.removeLocked(timer)
		},
	}
}

// Advance moves the clock forward by d, firing every timer whose
// deadline falls inside the window in deadline order. Callbacks run
// synchronously on the calling goroutine with the clock set to their
// deadline, so a callback that re-arms a timer inside the window sees
// it fire during the same Advance.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		next := c.earliestLocked(target)
		if next == nil {
			break
		}
		c.now = next.deadline
		if next.period > 0 {
			next.deadline = next.deadline.Add(next.period)
		} else {
			c.removeLocked(next)
		}
		fireTime := c.now
		c.mu.Unlock()
		if next.callback != nil {
			next.callback()
		} else {
			select {
			case next.channel <- fireTime:
			default:
			}
		}
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// PendingCount returns the number of registered timers that have not
// fired or been stopped. Tickers count as pending until stopped.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// WaitForTimers blocks until at least n timers are pending. Tests use
// it to wait for a goroutine to arm its timer before calling Advance.
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.timers) < n {
		c.changed.Wait()
	}
}

func (c *FakeClock) addLocked(timer *fakeTimer) {
	timer.active = true
	c.timers = append(c.timers, timer)
	c.changed.Broadcast()
}

func (c *FakeClock) removeLocked(timer *fakeTimer) {
	if !timer.active {
		return
	}
	timer.active = false
	for i, candidate := range c.timers {
		if candidate == timer {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			break
		}
	}
	c.changed.Broadcast()
}

// earliestLocked returns the active timer with the earliest deadline
// not after target, or nil. Ties go to the earlier registration.
func (c *FakeClock) earliestLocked(target time.Time) *fakeTimer {
	var earliest *fakeTimer
	for _, timer := range c.timers {
		if timer.deadline.After(target) {
			continue
		}
		if earliest == nil || timer.deadline.Before(earliest.deadline) {
			earliest = timer
		}
	}
	return earliest
}
