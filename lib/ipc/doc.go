// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

// Package ipc defines the privileged command channel between the
// qnetctl front end and qnetctl-tool. Both binaries import it so the
// wire types and the tag vocabulary are defined once.
//
// The channel is a single bidirectional Unix socket connection carrying
// a sequence of CBOR values. The front end writes [Request] values and
// the helper writes [Reply] values. Replies are asynchronous: several
// requests may be outstanding at once and replies arrive in completion
// order. A reply is matched to its request only by the tag it carries.
//
// A reply result beginning with "ERROR" is a failure; anything else,
// including the empty string, is a success payload.
package ipc
