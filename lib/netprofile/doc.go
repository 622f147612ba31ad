// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

// Package netprofile reads and writes netctl profile files.
//
// Only the fields the reconciliation engine needs are interpreted:
// Description, Connection, Interface, ESSID, Security, Key, IP,
// Address, Gateway and ExcludeAuto. Everything after a '#' on a line
// is a comment. Any other field is ignored on read and never written.
//
// [Store] wraps a profile directory (normally /etc/netctl). Reading is
// lenient: a missing or unreadable file yields a default profile and a
// log line, never an error, because the profile list and the directory
// can disagree for a moment while netctl rewrites its state. Writing
// and removing are strict and report errors.
//
// [Watcher] follows the profile directory with fsnotify so a front end
// can re-read profiles edited outside of qnetctl.
package netprofile
