// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import "strings"

// Action is the closed set of operations the helper performs.
type Action int

const (
	// ActionUnsupported is any tag outside the vocabulary below.
	ActionUnsupported Action = iota
	ActionSwitchToProfile
	ActionScanWifi
	ActionEnableProfile
	ActionEnableService
	ActionDisableProfile
	ActionDisableService
	ActionRemoveProfile
	ActionWriteProfile
	ActionReparseConfig
	ActionQuit
)

var actionTags = map[Action]string{
	ActionSwitchToProfile: "switch_to_profile",
	ActionScanWifi:        "scan_wifi",
	ActionEnableProfile:   "enable_profile",
	ActionEnableService:   "enable_service",
	ActionDisableProfile:  "disable_profile",
	ActionDisableService:  "disable_service",
	ActionRemoveProfile:   "remove_profile",
	ActionWriteProfile:    "write_profile",
	ActionReparseConfig:   "reparse_config",
	ActionQuit:            "quit",
}

var tagActions = func() map[string]Action {
	reverse := make(map[string]Action, len(actionTags))
	for action, tag := range actionTags {
		reverse[tag] = action
	}
	return reverse
}()

// String returns the wire tag, or "unsupported".
func (a Action) String() string {
	if tag, ok := actionTags[a]; ok {
		return tag
	}
	return "unsupported"
}

// Command is a parsed request tag.
type Command struct {
	Action Action

	// Name is the profile name carried in the tag itself. Only
	// write_profile has one ("write_profile <name>").
	Name string
}

// ParseTag maps a wire tag to its Command. write_profile is the only
// tag with an argument; everything after the first space is the
// profile name. Unknown tags parse as ActionUnsupported.
func ParseTag(tag string) Command {
	head, rest, _ := strings.Cut(tag, " ")
	action, ok := tagActions[head]
	if !ok {
		return Command{Action: ActionUnsupported}
	}
	if action == ActionWriteProfile {
		return Command{Action: action, Name: rest}
	}
	if rest != "" {
		return Command{Action: ActionUnsupported}
	}
	return Command{Action: action}
}

// Tag returns the wire tag for the command.
func (c Command) Tag() string {
	if c.Action == ActionWriteProfile {
		return WriteProfileTag(c.Name)
	}
	return c.Action.String()
}

// WriteProfileTag returns the tag for writing the named profile.
func WriteProfileTag(name string) string {
	return actionTags[ActionWriteProfile] + " " + name
}

// NewRequest builds a request for an argument-free action.
func NewRequest(action Action, payload string) Request {
	return Request{Tag: action.String(), Payload: payload}
}
