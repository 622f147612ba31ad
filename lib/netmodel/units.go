// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package netmodel

import "strings"

const (
	serviceSuffix = ".service"
	ifplugdPrefix = "netctl-ifplugd@"
	autoPrefix    = "netctl-auto@"
)

// IfplugdUnit names the wired failover unit for iface.
func IfplugdUnit(iface string) string { return ifplugdPrefix + iface + serviceSuffix }

// AutoUnit names the wireless autoconnect unit for iface.
func AutoUnit(iface string) string { return autoPrefix + iface + serviceSuffix }

// IsServiceUnit reports whether name is a systemd unit rather than a
// plain profile name. Profile names may not end in ".service".
func IsServiceUnit(name string) bool { return strings.HasSuffix(name, serviceSuffix) }

// IsInterfaceUnit reports whether name is an ifplugd or auto unit.
func IsInterfaceUnit(name string) bool {
	if !IsServiceUnit(name) {
		return false
	}
	return strings.HasPrefix(name, ifplugdPrefix) || strings.HasPrefix(name, autoPrefix)
}

// EnabledSet is the ordered set of unit and profile names enabled for
// autostart. The zero value is empty and ready to use.
type EnabledSet struct {
	names []string
}

// NewEnabledSet returns a set holding names, first occurrence kept.
func NewEnabledSet(names ...string) EnabledSet {
	var set EnabledSet
	for _, name := range names {
		set.Add(name)
	}
	return set
}

// Contains reports whether name is enabled. The empty name is never
// enabled.
func (s EnabledSet) Contains(name string) bool {
	if name == "" {
		return false
	}
	for _, existing := range s.names {
		if existing == name {
			return true
		}
	}
	return false
}

// Add appends name unless it is empty or already present.
func (s *EnabledSet) Add(name string) {
	if name == "" || s.Contains(name) {
		return
	}
	s.names = append(s.names, name)
}

// Remove deletes name if present.
func (s *EnabledSet) Remove(name string) {
	for i, existing := range s.names {
		if existing == name {
			s.names = append(s.names[:i:i], s.names[i+1:]...)
			return
		}
	}
}

// Names returns a copy of the names in insertion order.
func (s EnabledSet) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of names.
func (s EnabledSet) Len() int { return len(s.names) }

// WiredAutoConnect reports whether a wired entry on iface named
// profile is enabled, either by its failover unit or directly.
func (s EnabledSet) WiredAutoConnect(iface, profile string) bool {
	return s.Contains(IfplugdUnit(iface)) || s.Contains(profile)
}

// PolicyManaged reports whether the wireless autoconnect daemon owns
// iface, in which case per-profile flags come from the profile file.
func (s EnabledSet) PolicyManaged(iface string) bool {
	return s.Contains(AutoUnit(iface))
}
