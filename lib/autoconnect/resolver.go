// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package autoconnect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/qnetctl/qnetctl/lib/ipc"
	"github.com/qnetctl/qnetctl/lib/netmodel"
)

var (
	// ErrConflict means two wired profiles request autoconnect on the
	// same interface.
	ErrConflict = errors.New("conflicting autoconnect setup")

	// ErrMissingDependencies means a required automation daemon is not
	// installed.
	ErrMissingDependencies = errors.New("missing autoconnect dependencies")

	// ErrRejected marks a Sender error for a request the helper ran and
	// answered with a failure. Apply sends the remaining requests after
	// it; any other Sender error stops the pass.
	ErrRejected = errors.New("request rejected")
)

// ConflictError names the wired interfaces with more than one
// autoconnect profile.
type ConflictError struct {
	Interfaces []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v: several profiles autoconnect on wired interface %s; select only one per interface",
		ErrConflict, strings.Join(e.Interfaces, ", "))
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// MissingError names the absent daemon executables. Fallback is the
// set that would be enabled if every autoconnect profile were started
// unconditionally.
type MissingError struct {
	Daemons  []string
	Fallback []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%v: %s not installed", ErrMissingDependencies, strings.Join(e.Daemons, " and "))
}

func (e *MissingError) Unwrap() error { return ErrMissingDependencies }

// ApplyError names the requests of a pass the helper rejected.
type ApplyError struct {
	Enable  []string
	Disable []string
	Err     error
}

func (e *ApplyError) Error() string {
	var parts []string
	if len(e.Disable) > 0 {
		parts = append(parts, "disabling "+strings.Join(e.Disable, ", "))
	}
	if len(e.Enable) > 0 {
		parts = append(parts, "enabling "+strings.Join(e.Enable, ", "))
	}
	return fmt.Sprintf("autoconnect: %s failed: %v", strings.Join(parts, " and "), e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }

// Decision is a Decider's answer to a MissingError.
type Decision int

const (
	Abort Decision = iota
	Retry
)

// Decider is asked what to do when daemons are missing. A nil Decider
// aborts.
type Decider func(missing *MissingError) Decision

// Dependencies are the absolute paths of the automation daemons.
type Dependencies struct {
	Ifplugd    string
	WpaActiond string
}

// Prober reports whether an executable exists.
type Prober func(path string) bool

// FileExists is the production Prober.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Sender delivers one request over the privileged channel.
type Sender interface {
	Send(ctx context.Context, request ipc.Request) error
}

// Plan is the outcome of one resolver pass.
type Plan struct {
	// Required is the new enabled set.
	Required []string
	// Disable lists enabled names not in Required.
	Disable []string
}

// Requests returns the disable requests followed by an enable request
// for every required name.
func (p Plan) Requests() []ipc.Request {
	requests := make([]ipc.Request, 0, len(p.Disable)+len(p.Required))
	for _, name := range p.Disable {
		requests = append(requests, Request(name, false))
	}
	for _, name := range p.Required {
		requests = append(requests, Request(name, true))
	}
	return requests
}

// Request routes name to the service manager when it is a unit and to
// netctl otherwise.
func Request(name string, enable bool) ipc.Request {
	var action ipc.Action
	switch {
	case netmodel.IsServiceUnit(name) && enable:
		action = ipc.ActionEnableService
	case netmodel.IsServiceUnit(name):
		action = ipc.ActionDisableService
	case enable:
		action = ipc.ActionEnableProfile
	default:
		action = ipc.ActionDisableProfile
	}
	return ipc.NewRequest(action, name)
}

// Resolver owns the enabled automation set. Safe for concurrent use.
type Resolver struct {
	dependencies Dependencies
	exists       Prober
	logger       *slog.Logger

	mu      sync.Mutex
	enabled netmodel.EnabledSet
}

// NewResolver returns a Resolver with an empty enabled set. A nil
// exists uses FileExists.
func NewResolver(dependencies Dependencies, exists Prober, logger *slog.Logger) *Resolver {
	if exists == nil {
		exists = FileExists
	}
	return &Resolver{dependencies: dependencies, exists: exists, logger: logger}
}

// Enabled returns a copy of the enabled set.
func (r *Resolver) Enabled() netmodel.EnabledSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	return netmodel.NewEnabledSet(r.enabled.Names()...)
}

// SetEnabled replaces the enabled set with what the system reports.
func (r *Resolver) SetEnabled(names []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = netmodel.NewEnabledSet(names...)
}

// Plan computes the pass for entries without changing any state.
func (r *Resolver) Plan(entries []netmodel.Connection, decide Decider) (Plan, error) {
	wired, wireless := partition(entries, r.logger)

	if conflicts := duplicates(wired); len(conflicts) > 0 {
		return Plan{}, &ConflictError{Interfaces: conflicts}
	}

	failover := len(wired) > 0 && len(wireless) > 0
	wirelessAuto := len(wireless) > 0
	for {
		missing := r.missing(failover, wirelessAuto)
		if len(missing) == 0 {
			break
		}
		missingErr := &MissingError{Daemons: missing, Fallback: profileNames(entries)}
		if decide == nil || decide(missingErr) != Retry {
			return Plan{}, missingErr
		}
		r.logger.Info("probing autoconnect dependencies again", "missing", missing)
	}

	var required netmodel.EnabledSet
	if failover || wirelessAuto {
		if failover {
			for _, iface := range wired {
				required.Add(netmodel.IfplugdUnit(iface))
			}
		}
		for _, iface := range wireless {
			required.Add(netmodel.AutoUnit(iface))
		}
	} else {
		for _, name := range profileNames(entries) {
			required.Add(name)
		}
	}

	r.mu.Lock()
	current := r.enabled.Names()
	r.mu.Unlock()

	plan := Plan{Required: required.Names()}
	for _, name := range current {
		if !required.Contains(name) {
			plan.Disable = append(plan.Disable, name)
		}
	}
	return plan, nil
}

// Apply plans a pass, replaces the enabled set with the plan's
// required names and sends the plan's requests. Nothing is sent or
// changed when planning fails.
//
// Requests the sender reports as rejected (ErrRejected) are collected
// into an *ApplyError and the enabled set is corrected: a failed
// enable leaves it, a failed disable stays in it.
func (r *Resolver) Apply(ctx context.Context, entries []netmodel.Connection, decide Decider, sender Sender) (Plan, error) {
	plan, err := r.Plan(entries, decide)
	if err != nil {
		return Plan{}, err
	}

	r.mu.Lock()
	r.enabled = netmodel.NewEnabledSet(plan.Required...)
	r.mu.Unlock()

	r.logger.Info("applying autoconnect plan", "disable", plan.Disable, "enable", plan.Required)
	var (
		failed   ApplyError
		rejected []error
	)
	for _, request := range plan.Requests() {
		err := sender.Send(ctx, request)
		switch {
		case err == nil:
		case errors.Is(err, ErrRejected):
			r.logger.Warn("autoconnect request failed", "tag", request.Tag, "name", request.Payload, "error", err)
			rejected = append(rejected, err)
			if isEnable(request) {
				failed.Enable = append(failed.Enable, request.Payload)
			} else {
				failed.Disable = append(failed.Disable, request.Payload)
			}
		default:
			return plan, fmt.Errorf("sending %s %s: %w", request.Tag, request.Payload, err)
		}
	}
	if len(rejected) == 0 {
		return plan, nil
	}

	r.mu.Lock()
	for _, name := range failed.Enable {
		r.enabled.Remove(name)
	}
	for _, name := range failed.Disable {
		r.enabled.Add(name)
	}
	r.mu.Unlock()
	failed.Err = errors.Join(rejected...)
	return plan, &failed
}

func isEnable(request ipc.Request) bool {
	action := ipc.ParseTag(request.Tag).Action
	return action == ipc.ActionEnableProfile || action == ipc.ActionEnableService
}

// SetProfileAutoConnect handles an edit that toggled one profile's
// autoconnect flag, possibly while renaming it from oldName to
// newName. Both names leave the enabled set, newName is added back
// when enabling, and an enable or disable request goes out for each
// distinct non-empty name.
func (r *Resolver) SetProfileAutoConnect(ctx context.Context, sender Sender, oldName, newName string, enable bool) error {
	r.mu.Lock()
	r.enabled.Remove(oldName)
	r.enabled.Remove(newName)
	if enable {
		r.enabled.Add(newName)
	}
	r.mu.Unlock()

	names := []string{oldName}
	if newName != oldName {
		names = append(names, newName)
	}
	for _, name := range names {
		if name == "" {
			continue
		}
		request := Request(name, enable)
		if err := sender.Send(ctx, request); err != nil {
			return fmt.Errorf("sending %s %s: %w", request.Tag, name, err)
		}
	}
	return nil
}

func (r *Resolver) missing(failover, wirelessAuto bool) []string {
	var missing []string
	if failover && !r.exists(r.dependencies.Ifplugd) {
		missing = append(missing, "ifplugd")
	}
	if wirelessAuto && !r.exists(r.dependencies.WpaActiond) {
		missing = append(missing, "wpa_actiond")
	}
	return missing
}

// partition splits the autoconnect entries by interface kind. Wired
// interfaces are listed once per entry so duplicates can be detected;
// wireless interfaces are deduplicated. Entries without an interface
// cannot name a unit and are skipped.
func partition(entries []netmodel.Connection, logger *slog.Logger) (wired, wireless []string) {
	for _, entry := range entries {
		if !entry.AutoConnect {
			continue
		}
		if entry.Interface == "" {
			logger.Warn("autoconnect profile has no interface, skipping", "profile", entry.Profile)
			continue
		}
		if entry.Type.IsWireless() {
			if !slices.Contains(wireless, entry.Interface) {
				wireless = append(wireless, entry.Interface)
			}
			continue
		}
		wired = append(wired, entry.Interface)
	}
	return wired, wireless
}

func duplicates(names []string) []string {
	seen := make(map[string]bool, len(names))
	var repeated []string
	for _, name := range names {
		if seen[name] && !slices.Contains(repeated, name) {
			repeated = append(repeated, name)
		}
		seen[name] = true
	}
	return repeated
}

func profileNames(entries []netmodel.Connection) []string {
	var set netmodel.EnabledSet
	for _, entry := range entries {
		if entry.AutoConnect {
			set.Add(entry.Profile)
		}
	}
	return set.Names()
}
