// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides entrypoint helpers for the qnetctl
// binaries: fatal error reporting before the structured logger exists.
package process
