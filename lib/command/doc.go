// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

// Package command runs the external tools qnetctl drives (ip, iw,
// netctl, systemctl) and reports how they ended.
//
// The output of these tools is parsed as fixed-format text, so every
// command runs with LC_ALL and LANG removed from its environment.
//
// A [Result] mirrors what the privileged channel reports back: the
// captured standard output, whether the process exited normally or
// crashed, and its exit code. Start failures and signals count as a
// crash with code -1.
//
// [FakeRunner] is a scripted [Runner] for tests, keyed by the command
// line ("name arg1 arg2").
package command
