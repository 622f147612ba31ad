// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the qnetctl
// front end and the qnetctl-tool helper.
//
// Configuration comes from a single file given by the --config flag
// or the QNETCTL_CONFIG environment variable (see [Resolve]). Without
// either, [Default] applies: both binaries have to work on a machine
// nobody configured. There is no search path and no ~/.config
// discovery.
//
// The file may carry development and production sections that override
// base values when [Config].Environment matches. After loading,
// ${HOME} and ${VAR:-default} patterns are expanded in tool and path
// fields. No other environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Tools, Paths, Leverage, Timing
//   - [Default] -- a Config with the stock netctl locations
//   - [Resolve], [Load] and [LoadFile] -- the entry points for loading
//
// This package depends on no other qnetctl packages.
package config
