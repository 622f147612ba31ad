// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

// Package discovery turns the output of the unprivileged system
// queries into model values and keeps the three raw collections the
// reconciliation engine merges.
//
// The parsers cover:
//
//   - `ip link show`: broadcast-capable links and their carrier state
//   - `iw dev`: which interfaces are wireless
//   - `iw dev <iface> scan`: one scan result per BSS block
//   - `systemctl list-unit-files`: the enabled netctl units
//
// [Aggregator] owns the profile list, the device map and the scan
// results. Every mutation re-arms one debounce timer; when it fires
// the rebuild callback runs once with a snapshot of all three,
// however many mutations arrived inside the window. Profiles and scan
// results are always replaced wholesale. Devices accumulate for the
// lifetime of the Aggregator and are never pruned.
package discovery
