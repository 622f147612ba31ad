// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

// Qnetctl is the unprivileged front end of the netctl manager. It
// discovers profiles, devices and wireless networks, reconciles them
// into one list, and asks the privileged qnetctl-tool helper to act on
// them. When the helper socket is absent it starts the helper through
// the configured leverage command, typically pkexec.
//
// "qnetctl daemon" keeps the view current and applies autoconnect
// changes; the other subcommands perform one operation and exit.
package main
