// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

// Package controller is the unprivileged front end's event loop.
//
// A [Controller] owns the discovery [discovery.Aggregator], the
// unified [reconcile.View] and the autoconnect [autoconnect.Resolver],
// and talks to qnetctl-tool over a [Channel]. It runs the read-only
// queries itself (netctl list, ip link show, iw dev, systemctl
// list-unit-files) and asks the helper for everything that needs
// root.
//
// Discovery follows a fixed cascade. A profile list refresh loads the
// profile files and then checks devices; a device check that finds
// new interfaces asks iw which are wireless, and every newly wireless
// interface is scanned at once. A ticker repeats the device check and
// rescans all wireless interfaces, but only while no scan reply is
// outstanding. Every result lands in the aggregator, whose debounced
// rebuild merges the collections into the view.
//
// Replies are routed by action: a successful switch, removal or
// profile write reloads the profile list, a scan reply replaces the
// scan results, and failures are logged. [Controller.Call] additionally
// hands a reply to the caller that sent the request; replies carry no
// request ID, so callers waiting on the same tag are served in order.
//
// Editing a profile that toggles or keeps autoconnect schedules a full
// resolver pass after the autoconnect delay. [Controller.Quit] runs a
// pass that is still pending before it sends quit, and refuses to quit
// if that pass fails.
package controller
