// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the qnetctl
// front end.
//
// The central type is [Command], which represents a named subcommand
// with optional nested [Command.Subcommands], a [pflag.FlagSet]
// factory, and a Run function. Commands are assembled into a tree in
// cmd/qnetctl/main.go and dispatched via [Command.Execute], which
// handles flag parsing, subcommand routing, and help output with
// examples.
//
// When a user types an unknown subcommand or flag, the framework
// computes Levenshtein edit distance against all known names and
// suggests the closest match (threshold: distance <= 3).
//
// [NewCommandLogger] builds the slog logger every binary uses, text on
// a terminal and JSON otherwise. [ExitError] lets a command exit
// non-zero without an extra error line.
package cli
