// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"log/slog"
	"sync"

	"github.com/qnetctl/qnetctl/lib/ipc"
)

// outbox is an unbounded FIFO of requests drained by one writer
// goroutine, so the loop never blocks on the socket.
type outbox struct {
	mu       sync.Mutex
	ready    *sync.Cond
	queue    []ipc.Request
	closed   bool
	finished chan struct{}
}

func newOutbox() *outbox {
	o := &outbox{finished: make(chan struct{})}
	o.ready = sync.NewCond(&o.mu)
	return o
}

// push queues request. It reports false once the outbox is closed.
func (o *outbox) push(request ipc.Request) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return false
	}
	o.queue = append(o.queue, request)
	o.ready.Signal()
	return true
}

// run writes queued requests until the outbox is closed and drained
// or a write fails.
func (o *outbox) run(channel Channel, logger *slog.Logger) {
	defer close(o.finished)
	for {
		o.mu.Lock()
		for len(o.queue) == 0 && !o.closed {
			o.ready.Wait()
		}
		if len(o.queue) == 0 {
			o.mu.Unlock()
			return
		}
		request := o.queue[0]
		o.queue = o.queue[1:]
		o.mu.Unlock()

		if err := channel.Send(request); err != nil {
			logger.Warn("sending request failed", "tag", request.Tag, "error", err)
			o.mu.Lock()
			o.closed = true
			o.queue = nil
			o.mu.Unlock()
			return
		}
	}
}

// close stops accepting requests and waits until the queued ones were
// written.
func (o *outbox) close() {
	o.mu.Lock()
	o.closed = true
	o.ready.Broadcast()
	o.mu.Unlock()
	<-o.finished
}
