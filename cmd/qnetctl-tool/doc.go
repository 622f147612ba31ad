// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

// Qnetctl-tool is the privileged half of qnetctl. It runs as root,
// normally started by the front end through pkexec or sudo, and
// executes the fixed request vocabulary (switch profiles, enable and
// disable units, scan, write and remove profile files) on behalf of
// one front-end connection at a time over a Unix socket at
// /run/qnetctl/tool.sock. Connections from users other than root and
// the owning user are refused.
package main
