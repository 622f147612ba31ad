// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/qnetctl/qnetctl/lib/autoconnect"
	"github.com/qnetctl/qnetctl/lib/ipc"
	"github.com/qnetctl/qnetctl/lib/netmodel"
	"github.com/qnetctl/qnetctl/lib/netprofile"
)

// ErrKeyRequired is returned by SaveProfile for an encrypted network
// without a key.
var ErrKeyRequired = errors.New("an encrypted network needs a key")

// ReplyError is a failure reply to a Call made through one of the
// convenience methods.
type ReplyError struct {
	Tag    string
	Result string
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Tag, e.Result)
}

// Call sends request and waits for the next reply with its tag.
func (c *Controller) Call(ctx context.Context, request ipc.Request) (ipc.Reply, error) {
	replies := make(chan ipc.Reply, 1)
	if err := c.do(ctx, func() {
		c.waiters[request.Tag] = append(c.waiters[request.Tag], replies)
		c.send(request)
	}); err != nil {
		return ipc.Reply{}, err
	}
	select {
	case reply := <-replies:
		return reply, nil
	case <-ctx.Done():
		return ipc.Reply{}, ctx.Err()
	case <-c.done:
		return ipc.Reply{}, ErrStopped
	}
}

// call is Call with failure replies turned into a *ReplyError.
func (c *Controller) call(ctx context.Context, request ipc.Request) (string, error) {
	reply, err := c.Call(ctx, request)
	if err != nil {
		return "", err
	}
	if reply.Failed() {
		return "", &ReplyError{Tag: reply.Tag, Result: reply.Result}
	}
	return reply.Result, nil
}

// Send queues request without waiting for its reply. It satisfies
// autoconnect.Sender.
func (c *Controller) Send(ctx context.Context, request ipc.Request) error {
	return c.do(ctx, func() { c.send(request) })
}

// callSender sends each request with Call, so a failure reply comes
// back as an error wrapping autoconnect.ErrRejected.
type callSender struct{ c *Controller }

func (s callSender) Send(ctx context.Context, request ipc.Request) error {
	_, err := s.c.call(ctx, request)
	var replyErr *ReplyError
	if errors.As(err, &replyErr) {
		return fmt.Errorf("%w: %w", autoconnect.ErrRejected, replyErr)
	}
	return err
}

// loopSender sends from the loop goroutine itself.
type loopSender struct{ c *Controller }

func (s loopSender) Send(_ context.Context, request ipc.Request) error {
	s.c.send(request)
	return nil
}

// Connect switches to the named profile.
func (c *Controller) Connect(ctx context.Context, profile string) error {
	_, err := c.call(ctx, ipc.NewRequest(ipc.ActionSwitchToProfile, profile))
	return err
}

// Forget disables the named profile and deletes its file.
func (c *Controller) Forget(ctx context.Context, profile string) error {
	_, err := c.call(ctx, ipc.NewRequest(ipc.ActionRemoveProfile, profile))
	return err
}

// SaveProfile writes updated as a profile. previous is the entry it
// was edited from; its profile name is the old name when renaming.
// updated.Key must already be escaped.
//
// If the autoconnect flag changed, both names are enabled or disabled
// right away. If it changed or is set, a full autoconnect pass is
// scheduled. The returned name is the profile actually written.
func (c *Controller) SaveProfile(ctx context.Context, previous, updated netmodel.Connection) (string, error) {
	if updated.Type >= netmodel.WEP && updated.Key == "" {
		return "", ErrKeyRequired
	}
	name := updated.Profile
	if name == "" {
		name = netprofile.Name(updated)
		updated.Profile = name
	}
	if err := netprofile.ValidateName(name); err != nil {
		return "", err
	}

	toggled := previous.AutoConnect != updated.AutoConnect
	if toggled {
		if err := c.resolver.SetProfileAutoConnect(ctx, c, previous.Profile, name, updated.AutoConnect); err != nil {
			return "", err
		}
	}

	request := ipc.Request{Tag: ipc.WriteProfileTag(name), Payload: netprofile.Serialize(updated)}
	if _, err := c.call(ctx, request); err != nil {
		return "", err
	}
	c.logger.Info("profile saved", "profile", name, "autoconnect", updated.AutoConnect)

	if toggled || updated.AutoConnect {
		if err := c.do(ctx, c.scheduleAutoconnect); err != nil {
			return name, err
		}
	}
	return name, nil
}

// scheduleAutoconnect (re)arms the delayed autoconnect pass. Loop only.
func (c *Controller) scheduleAutoconnect() {
	c.autoconnectDue = true
	if c.autoconnectTimer == nil {
		c.autoconnectTimer = c.clock.AfterFunc(c.timing.AutoconnectDelay, func() {
			c.post(func() {
				if err := c.runAutoconnect(); err != nil {
					c.logger.Error("autoconnect pass failed", "error", err)
				}
			})
		})
		return
	}
	c.autoconnectTimer.Reset(c.timing.AutoconnectDelay)
}

// AutoconnectPending reports whether a delayed autoconnect pass is
// scheduled.
func (c *Controller) AutoconnectPending(ctx context.Context) (bool, error) {
	var due bool
	err := c.do(ctx, func() { due = c.autoconnectDue })
	return due, err
}

// runAutoconnect runs the scheduled pass, if it is still due. Missing
// daemons abort it. Loop only.
func (c *Controller) runAutoconnect() error {
	if !c.autoconnectDue {
		return nil
	}
	c.autoconnectDue = false
	if c.autoconnectTimer != nil {
		c.autoconnectTimer.Stop()
	}
	_, err := c.resolver.Apply(c.ctx, c.view.Connections(), nil, loopSender{c})
	c.aggregator.RequestRebuild()
	return err
}

// Autoconnect runs a resolver pass over the current view now and
// cancels a scheduled one. decide is consulted when daemons are
// missing and may block, for example on a prompt. Each request waits
// for its reply; failed ones are reported in an
// *autoconnect.ApplyError, and each failure reply makes the loop read
// the enabled units again.
func (c *Controller) Autoconnect(ctx context.Context, decide autoconnect.Decider) (autoconnect.Plan, error) {
	if err := c.do(ctx, func() {
		c.autoconnectDue = false
		if c.autoconnectTimer != nil {
			c.autoconnectTimer.Stop()
		}
	}); err != nil {
		return autoconnect.Plan{}, err
	}
	plan, err := c.resolver.Apply(ctx, c.view.Connections(), decide, callSender{c})
	if err != nil {
		return plan, err
	}
	c.aggregator.RequestRebuild()
	return plan, nil
}

// Quit runs a pending autoconnect pass, then tells the helper to quit
// and stops Run. If the pass fails, Quit returns its error and the
// controller keeps running; quitting again skips the pass.
func (c *Controller) Quit(ctx context.Context) error {
	var passErr error
	err := c.do(ctx, func() {
		if passErr = c.runAutoconnect(); passErr != nil {
			return
		}
		c.stop()
	})
	if err != nil {
		return err
	}
	if passErr != nil {
		return fmt.Errorf("refusing to quit: %w", passErr)
	}
	<-c.done
	return nil
}

// Shutdown tells the helper to quit and stops Run without running a
// pending autoconnect pass.
func (c *Controller) Shutdown(ctx context.Context) error {
	if err := c.do(ctx, c.stop); err != nil {
		if errors.Is(err, ErrStopped) {
			return nil
		}
		return err
	}
	<-c.done
	return nil
}

func (c *Controller) stop() {
	if c.autoconnectDue {
		c.logger.Warn("dropping scheduled autoconnect pass")
		c.autoconnectDue = false
	}
	c.send(ipc.NewRequest(ipc.ActionQuit, ""))
	c.stopping = true
}
