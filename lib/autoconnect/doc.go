// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

// Package autoconnect decides which netctl units and profiles are
// enabled at boot and emits the enable and disable requests that make
// it so.
//
// The policy depends on which kinds of interface have an autoconnect
// entry:
//
//   - Wired only: the profiles are enabled directly. Two profiles on
//     one wired interface are a conflict.
//   - Wireless present: each wireless interface gets
//     netctl-auto@<iface>.service, which needs wpa_actiond.
//   - Both: each wired interface additionally gets
//     netctl-ifplugd@<iface>.service for failover, which needs
//     ifplugd.
//
// Planning is all-or-nothing. A conflict or a missing daemon returns
// an error and no request is sent. For a missing daemon the caller's
// [Decider] may ask to probe again after the user installed it; on
// abort the [MissingError] carries the permissive fallback (every
// autoconnect profile enabled directly) for the caller to present.
package autoconnect
