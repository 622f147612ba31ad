// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

// Package helper is the privileged side of the command channel. It
// runs as root in qnetctl-tool and executes the closed set of
// operations the unprivileged front end may request.
//
// An [Executor] runs a single event loop. The loop parses each
// request, checks its argument, and either answers immediately
// (write_profile, reparse_config, unsupported requests) or starts the
// external command on its own goroutine. Completions are posted back
// to the loop, so the per-interface scanning and uplinking sets and
// every operation's state are only touched by the loop goroutine.
// Replies go out in completion order, tagged like their request.
//
// Two requests are chained:
//
//   - remove_profile disables the profile and, only if that worked,
//     deletes its file before replying.
//   - scan_wifi checks the link, brings it up if it is down (polling
//     on the clock until the UP flag shows), scans, replies, and then
//     brings it back down if it was the one to bring it up.
//
// A second scan_wifi for an interface whose scan is still running is
// dropped without a reply. Dispatched operations always run to
// completion; after quit the loop stops taking requests and returns
// once the operations in flight (trailing steps included) finish.
package helper
