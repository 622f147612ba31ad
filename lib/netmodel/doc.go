// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

// Package netmodel holds the types shared by discovery, reconciliation
// and the autoconnect resolver: connection types and their ordering,
// the [Connection] record that profiles, scan results and unified
// entries all share, and the naming rules for automation units.
package netmodel
