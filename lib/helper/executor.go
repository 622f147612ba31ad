// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package helper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/qnetctl/qnetctl/lib/clock"
	"github.com/qnetctl/qnetctl/lib/command"
	"github.com/qnetctl/qnetctl/lib/ipc"
	"github.com/qnetctl/qnetctl/lib/netprofile"
)

// ErrQuit is returned by Run and Serve after a quit request once all
// operations in flight have finished.
var ErrQuit = errors.New("quit requested")

// Tools are the absolute paths of the privileged commands.
type Tools struct {
	IP        string
	IW        string
	Netctl    string
	Systemctl string
}

// Settings is the reloadable part of the executor configuration.
type Settings struct {
	Tools Tools

	// LinkPollInterval is the delay between link checks while waiting
	// for an interface to come up.
	LinkPollInterval time.Duration

	// LinkPollLimit bounds the number of link checks after bring-up.
	// Zero polls until the link comes up.
	LinkPollLimit int

	// LinkCheckTimeout bounds the link check that decides whether a
	// scan needs a bring-up. Zero means no bound.
	LinkCheckTimeout time.Duration
}

// Config configures an Executor.
type Config struct {
	Settings Settings

	// Profiles is the profile directory written by write_profile and
	// cleaned up by remove_profile.
	Profiles *netprofile.Store

	Runner command.Runner
	Clock  clock.Clock

	// Reload re-reads the configuration for reparse_config. Nil makes
	// reparse_config a successful no-op.
	Reload func() (Settings, error)

	Logger *slog.Logger
}

// Executor executes channel requests. Run may be called again after
// it returns, for the next connection.
type Executor struct {
	profiles *netprofile.Store
	runner   command.Runner
	clock    clock.Clock
	reload   func() (Settings, error)
	logger   *slog.Logger

	// Loop-owned state.
	settings  Settings
	events    chan func()
	done      chan struct{}
	reply     func(ipc.Reply)
	commands  context.Context
	scanning  map[string]*operation
	uplinking map[string]bool
	pending   int
	nextID    uint64
}

// New returns an Executor.
func New(config Config) *Executor {
	return &Executor{
		profiles: config.Profiles,
		runner:   config.Runner,
		clock:    config.Clock,
		reload:   config.Reload,
		logger:   config.Logger,
		settings: config.Settings,
	}
}

// Run executes requests until the channel is closed, a quit request
// arrives, or ctx is cancelled. In the first two cases it stops
// reading requests and waits for in-flight operations before
// returning nil or ErrQuit. Cancelling ctx returns at once; commands
// still running finish unobserved.
//
// reply is called from the loop goroutine.
func (e *Executor) Run(ctx context.Context, requests <-chan ipc.Request, reply func(ipc.Reply)) error {
	e.events = make(chan func(), 16)
	e.done = make(chan struct{})
	defer close(e.done)
	e.reply = reply
	e.commands = context.WithoutCancel(ctx)
	e.scanning = make(map[string]*operation)
	e.uplinking = make(map[string]bool)
	e.pending = 0

	var exitErr error
	draining := false
	for {
		if draining && e.pending == 0 {
			return exitErr
		}
		select {
		case request, ok := <-requests:
			if !ok {
				e.logger.Debug("request stream ended", "pending", e.pending)
				requests = nil
				draining = true
				continue
			}
			if e.dispatch(request) {
				e.logger.Info("quit requested", "pending", e.pending)
				requests = nil
				draining = true
				exitErr = ErrQuit
			}
		case event := <-e.events:
			event()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// poster returns a function that hands completions to the current
// loop. It gives up once that Run returned.
func (e *Executor) poster() func(func()) {
	events, done := e.events, e.done
	return func(event func()) {
		select {
		case events <- event:
		case <-done:
		}
	}
}

// dispatch handles one request on the loop. Reports whether it was
// quit.
func (e *Executor) dispatch(request ipc.Request) bool {
	parsed := ipc.ParseTag(request.Tag)
	e.logger.Debug("request", "tag", request.Tag, "action", parsed.Action.String())

	tools := e.settings.Tools
	switch parsed.Action {
	case ipc.ActionSwitchToProfile:
		e.profileCommand(request, tools.Netctl, "switch-to")
	case ipc.ActionEnableProfile:
		e.profileCommand(request, tools.Netctl, "enable")
	case ipc.ActionDisableProfile:
		e.profileCommand(request, tools.Netctl, "disable")
	case ipc.ActionEnableService:
		e.serviceCommand(request, "enable")
	case ipc.ActionDisableService:
		e.serviceCommand(request, "disable")
	case ipc.ActionRemoveProfile:
		e.removeProfile(request)
	case ipc.ActionScanWifi:
		e.scanWifi(request)
	case ipc.ActionWriteProfile:
		e.writeProfile(request, parsed.Name)
	case ipc.ActionReparseConfig:
		e.reparseConfig(request)
	case ipc.ActionQuit:
		return true
	default:
		e.unsupported(request)
	}
	return false
}

func (e *Executor) send(tag, result string) {
	if ipc.IsError(result) {
		e.logger.Warn("request failed", "tag", tag, "result", result)
	} else {
		e.logger.Debug("reply", "tag", tag, "bytes", len(result))
	}
	e.reply(ipc.Reply{Tag: tag, Result: result})
}

func (e *Executor) unsupported(request ipc.Request) {
	e.send(request.Tag, ipc.UnsupportedResult(request.Payload))
}

// start runs a command on its own goroutine and hands its result to
// settle on the loop.
func (e *Executor) start(ctx context.Context, settle func(command.Result), name string, args ...string) {
	e.pending++
	post := e.poster()
	go func() {
		result := e.runner.Run(ctx, name, args...)
		post(func() {
			e.pending--
			settle(result)
		})
	}()
}

// after calls fn on the loop once d has elapsed on the clock.
func (e *Executor) after(d time.Duration, fn func()) {
	e.pending++
	post := e.poster()
	e.clock.AfterFunc(d, func() {
		post(func() {
			e.pending--
			fn()
		})
	})
}

func (e *Executor) profileCommand(request ipc.Request, netctl, verb string) {
	if netprofile.ValidateName(request.Payload) != nil {
		e.unsupported(request)
		return
	}
	op := e.newOperation(request, request.Payload)
	e.start(e.commands, func(result command.Result) {
		e.finish(op, result)
	}, netctl, verb, request.Payload)
}

// serviceCommand only touches netctl's own units.
func (e *Executor) serviceCommand(request ipc.Request, verb string) {
	unit := request.Payload
	if !strings.HasPrefix(unit, "netctl-") || strings.ContainsAny(unit, "/ \t\n") {
		e.unsupported(request)
		return
	}
	op := e.newOperation(request, unit)
	e.start(e.commands, func(result command.Result) {
		e.finish(op, result)
	}, e.settings.Tools.Systemctl, verb, unit)
}

// finish replies with a single-step command's result.
func (e *Executor) finish(op *operation, result command.Result) {
	if result.Failed() {
		e.fail(op, result)
		return
	}
	op.advance(phaseStepTwoDone)
	e.send(op.request.Tag, result.Output)
}

func (e *Executor) fail(op *operation, result command.Result) {
	op.advance(phaseFailed)
	if result.Stderr != "" {
		e.logger.Debug("command stderr", "tag", op.request.Tag, "target", op.target, "stderr", strings.TrimSpace(result.Stderr))
	}
	e.send(op.request.Tag, ipc.ExitResult(int(result.Status), result.Code))
}

func (e *Executor) removeProfile(request ipc.Request) {
	name := request.Payload
	if netprofile.ValidateName(name) != nil {
		e.unsupported(request)
		return
	}
	op := e.newOperation(request, name)
	e.start(e.commands, func(result command.Result) {
		if result.Failed() {
			e.fail(op, result)
			return
		}
		op.advance(phaseStepOneDone)
		if err := e.profiles.Remove(name); err != nil {
			op.advance(phaseFailed)
			e.send(request.Tag, ipc.FailureResult(err))
			return
		}
		op.advance(phaseStepTwoDone)
		e.send(request.Tag, result.Output)
	}, e.settings.Tools.Netctl, "disable", name)
}

func (e *Executor) writeProfile(request ipc.Request, name string) {
	if err := e.profiles.Write(name, request.Payload); err != nil {
		e.logger.Error("writing profile failed", "profile", name, "error", err)
		e.send(request.Tag, ipc.ResultError)
		return
	}
	e.logger.Info("profile written", "profile", name)
	e.send(request.Tag, ipc.ResultSuccess)
}

func (e *Executor) reparseConfig(request ipc.Request) {
	if e.reload == nil {
		e.send(request.Tag, ipc.ResultSuccess)
		return
	}
	settings, err := e.reload()
	if err != nil {
		e.send(request.Tag, ipc.FailureResult(fmt.Errorf("reloading configuration: %w", err)))
		return
	}
	e.settings = settings
	e.logger.Info("configuration reloaded")
	e.send(request.Tag, ipc.ResultSuccess)
}
