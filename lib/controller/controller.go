// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/qnetctl/qnetctl/lib/autoconnect"
	"github.com/qnetctl/qnetctl/lib/clock"
	"github.com/qnetctl/qnetctl/lib/command"
	"github.com/qnetctl/qnetctl/lib/discovery"
	"github.com/qnetctl/qnetctl/lib/ipc"
	"github.com/qnetctl/qnetctl/lib/netprofile"
	"github.com/qnetctl/qnetctl/lib/reconcile"
)

var (
	// ErrHelperGone is returned by Run when the helper connection
	// fails before quit was sent.
	ErrHelperGone = errors.New("helper connection lost")

	// ErrStopped is returned by calls made after Run returned.
	ErrStopped = errors.New("controller stopped")
)

// Channel is the request/reply connection to the helper. *ipc.Stream
// implements it.
type Channel interface {
	Send(value any) error
	Receive(target any) error
	Close() error
}

// Tools are the paths of the read-only query commands.
type Tools struct {
	IP        string
	IW        string
	Netctl    string
	Systemctl string
}

// Timing configures the controller's timers.
type Timing struct {
	RebuildDelay     time.Duration
	RescanInterval   time.Duration
	AutoconnectDelay time.Duration
}

// Config configures a Controller.
type Config struct {
	Tools  Tools
	Timing Timing

	Profiles *netprofile.Store
	Runner   command.Runner
	Clock    clock.Clock
	Channel  Channel
	Resolver *autoconnect.Resolver

	// Observer is told about every view change. Nil logs them.
	Observer reconcile.Observer

	// Watcher, if set, reloads the profile list when the profile
	// directory changes. Run closes it.
	Watcher *netprofile.Watcher

	Logger *slog.Logger
}

// Controller is the front-end event loop. Run it once; the other
// methods may be called from any goroutine while it runs.
type Controller struct {
	tools      Tools
	timing     Timing
	profiles   *netprofile.Store
	runner     command.Runner
	clock      clock.Clock
	channel    Channel
	resolver   *autoconnect.Resolver
	watcher    *netprofile.Watcher
	logger     *slog.Logger
	aggregator *discovery.Aggregator
	view       *reconcile.View
	outbox     *outbox

	events chan func()
	done   chan struct{}

	// Loop-owned state.
	ctx              context.Context
	inflight         int
	scans            int
	dirty            bool
	profilesBusy     bool
	profilesStale    bool
	waiters          map[string][]chan ipc.Reply
	settled          []chan []reconcile.Network
	autoconnectTimer *clock.Timer
	autoconnectDue   bool
	stopping         bool
	lost             error
}

// New returns a Controller.
func New(config Config) *Controller {
	observer := config.Observer
	if observer == nil {
		observer = logObserver{logger: config.Logger}
	}
	c := &Controller{
		tools:    config.Tools,
		timing:   config.Timing,
		profiles: config.Profiles,
		runner:   config.Runner,
		clock:    config.Clock,
		channel:  config.Channel,
		resolver: config.Resolver,
		watcher:  config.Watcher,
		logger:   config.Logger,
		view:     reconcile.NewView(observer),
		outbox:   newOutbox(),
		events:   make(chan func(), 32),
		done:     make(chan struct{}),
		waiters:  make(map[string][]chan ipc.Reply),
	}
	c.aggregator = discovery.NewAggregator(config.Clock, config.Timing.RebuildDelay, func(snapshot discovery.Snapshot) {
		c.post(func() { c.rebuild(snapshot) })
	}, config.Logger)
	return c
}

// Run starts discovery and processes events until quit was sent, the
// helper connection fails, or ctx is cancelled. It returns nil after
// a quit.
func (c *Controller) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.ctx = ctx

	var background sync.WaitGroup
	background.Add(2)
	go func() {
		defer background.Done()
		c.outbox.run(c.channel, c.logger)
	}()
	go func() {
		defer background.Done()
		c.readReplies()
	}()
	if c.watcher != nil {
		background.Add(1)
		go func() {
			defer background.Done()
			c.watcher.Run(ctx, func(change netprofile.Change) {
				c.post(func() {
					c.logger.Debug("profile directory changed", "profile", change.Name, "removed", change.Removed)
					c.refreshProfiles()
				})
			})
		}()
	}

	ticker := c.clock.NewTicker(c.timing.RescanInterval)
	defer func() {
		close(c.done)
		ticker.Stop()
		c.aggregator.Stop()
		if c.autoconnectTimer != nil {
			c.autoconnectTimer.Stop()
		}
		if c.stopping {
			c.outbox.close()
			c.channel.Close()
		} else {
			c.channel.Close()
			c.outbox.close()
		}
		if c.watcher != nil {
			c.watcher.Close()
		}
		cancel()
		background.Wait()
	}()

	c.logger.Info("controller started")
	c.refreshUnits()
	c.refreshProfiles()
	c.checkDevices()

	for {
		select {
		case event := <-c.events:
			event()
		case <-ticker.C:
			c.rescan()
		case <-ctx.Done():
			return ctx.Err()
		}
		if c.stopping {
			c.logger.Info("controller stopped")
			return nil
		}
		if c.lost != nil {
			return fmt.Errorf("%w: %v", ErrHelperGone, c.lost)
		}
	}
}

// post hands an event to the loop from another goroutine. It gives up
// once Run returned.
func (c *Controller) post(event func()) {
	select {
	case c.events <- event:
	case <-c.done:
	}
}

// do runs fn on the loop and waits for it.
func (c *Controller) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	event := func() {
		defer close(finished)
		fn()
	}
	select {
	case c.events <- event:
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		// The loop may have run fn just before returning.
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	}
}

// query runs a read-only command and hands its result to settle on
// the loop.
func (c *Controller) query(settle func(command.Result), name string, args ...string) {
	c.inflight++
	ctx := c.ctx
	go func() {
		result := c.runner.Run(ctx, name, args...)
		c.post(func() {
			c.inflight--
			c.dirty = true
			settle(result)
			c.checkSettled()
		})
	}()
}

func (c *Controller) readReplies() {
	for {
		var reply ipc.Reply
		if err := c.channel.Receive(&reply); err != nil {
			c.post(func() {
				if !c.stopping && c.lost == nil {
					c.logger.Warn("helper connection closed", "error", err)
					c.lost = err
				}
			})
			return
		}
		c.post(func() { c.handleReply(reply) })
	}
}

// send queues a request for the helper. Loop only.
func (c *Controller) send(request ipc.Request) {
	c.logger.Debug("request", "tag", request.Tag, "payload_bytes", len(request.Payload))
	if !c.outbox.push(request) {
		c.logger.Warn("dropping request, helper connection closed", "tag", request.Tag)
	}
}

func (c *Controller) rebuild(snapshot discovery.Snapshot) {
	working := reconcile.Merge(snapshot.Profiles, snapshot.Devices, snapshot.Scans)
	changes := c.view.Rebuild(working, c.resolver.Enabled())
	c.dirty = false
	c.logger.Debug("view rebuilt",
		"added", len(changes.Added),
		"updated", len(changes.Updated),
		"removed", len(changes.Removed),
	)
	c.checkSettled()
}

// checkSettled wakes Settled callers once nothing is running, no scan
// reply is outstanding and the view reflects every result.
func (c *Controller) checkSettled() {
	if len(c.settled) == 0 || c.inflight > 0 || c.scans > 0 || c.dirty || c.aggregator.Pending() {
		return
	}
	entries := c.view.Entries()
	for _, waiter := range c.settled {
		waiter <- entries
	}
	c.settled = nil
}

// Settled waits until discovery is idle and returns the view.
func (c *Controller) Settled(ctx context.Context) ([]reconcile.Network, error) {
	result := make(chan []reconcile.Network, 1)
	if err := c.do(ctx, func() {
		c.settled = append(c.settled, result)
		c.checkSettled()
	}); err != nil {
		return nil, err
	}
	select {
	case entries := <-result:
		return entries, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrStopped
	}
}

// Entries returns the current view.
func (c *Controller) Entries() []reconcile.Network {
	return c.view.Entries()
}

// Lookup returns the entry with the given display name.
func (c *Controller) Lookup(name string) (reconcile.Network, bool) {
	return c.view.Lookup(name)
}

// WirelessDevices returns the interfaces known to be wireless.
func (c *Controller) WirelessDevices(ctx context.Context) ([]string, error) {
	var devices []string
	err := c.do(ctx, func() { devices = c.aggregator.WirelessDevices() })
	return devices, err
}
