// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

// Package reconcile merges profiles, devices and scan results into the
// unified network list and keeps that list's identity stable across
// rebuilds.
//
// [Merge] builds the working set: profiles first, scan results folded
// into the profile (or earlier scan result) that shares their SSID or
// MAC, then a bare entry for every device no entry mentions.
//
// [View] holds the displayed list. [View.Rebuild] matches each
// displayed entry to a working-set entry by its match key (profile
// name, else SSID, else interface). A match updates the entry in place
// and keeps its ID; an unmatched displayed entry is removed; leftover
// working-set entries are appended with fresh IDs. Before matching,
// every working-set entry's AutoConnect flag is derived from the
// enabled automation set.
package reconcile
