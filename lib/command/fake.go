// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"sync"
)

// FakeRunner returns scripted results. Lines without a script succeed
// with empty output. Safe for concurrent use.
type FakeRunner struct {
	mu        sync.Mutex
	responses map[string][]Result
	gates     map[string]chan struct{}
	calls     []string
	waiters   []callWaiter
}

type callWaiter struct {
	line  string
	count int
	ch    chan struct{}
}

// NewFakeRunner returns an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		responses: make(map[string][]Result),
		gates:     make(map[string]chan struct{}),
	}
}

// Respond queues results for line. Each call consumes one; the last
// one repeats.
func (f *FakeRunner) Respond(line string, results ...Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[line] = append(f.responses[line], results...)
}

// Output is shorthand for a successful result with the given stdout.
func Output(stdout string) Result { return Result{Output: stdout} }

// Block makes every call of line wait until release is called or the
// call's context ends.
func (f *FakeRunner) Block(line string) (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gates[line] = gate
	f.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			if f.gates[line] == gate {
				delete(f.gates, line)
			}
			f.mu.Unlock()
			close(gate)
		})
	}
}

// Called returns a channel closed once line has been called n times
// in total.
func (f *FakeRunner) Called(line string, n int) <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	if f.countLocked(line) >= n {
		close(ch)
		return ch
	}
	f.waiters = append(f.waiters, callWaiter{line: line, count: n, ch: ch})
	return ch
}

// Calls returns every command line run so far, in order.
func (f *FakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Count returns how often line was run.
func (f *FakeRunner) Count(line string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.countLocked(line)
}

func (f *FakeRunner) countLocked(line string) int {
	count := 0
	for _, call := range f.calls {
		if call == line {
			count++
		}
	}
	return count
}

// Run records the call, waits on any gate, and returns the next
// scripted result.
func (f *FakeRunner) Run(ctx context.Context, name string, args ...string) Result {
	line := Line(name, args...)

	f.mu.Lock()
	f.calls = append(f.calls, line)
	count := f.countLocked(line)
	remaining := f.waiters[:0]
	for _, waiter := range f.waiters {
		if waiter.line == line && count >= waiter.count {
			close(waiter.ch)
			continue
		}
		remaining = append(remaining, waiter)
	}
	f.waiters = remaining
	gate := f.gates[line]

	var result Result
	if queue := f.responses[line]; len(queue) > 0 {
		result = queue[0]
		if len(queue) > 1 {
			f.responses[line] = queue[1:]
		}
	}
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return Result{Status: CrashExit, Code: -1}
		}
	}
	return result
}
