// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for qnetctl packages.
//
// [SocketDir] creates a temporary directory in /tmp suitable for Unix
// domain sockets. Socket paths are limited to 108 bytes (sun_path in
// sockaddr_un) and t.TempDir() paths can exceed that when the test
// name is long. The directory is removed when the test completes.
//
// [RequireReceive], [RequireSend], and [RequireClosed] encapsulate the
// timeout safety valve pattern (select with time.After fallback) so
// that individual tests do not need direct time.After calls. Timer
// behavior itself is tested on the fake clock in lib/clock.
//
// [Logger] returns a slog logger that writes through t.Log, so log
// output is attached to the failing test instead of interleaved on
// stderr.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
