// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration shared by both ends of the
// privileged command channel. The front end and qnetctl-tool import it
// so requests and replies encode identically on either side.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): the same
// request always produces the same bytes. The decoder ignores unknown
// fields so an older helper can talk to a newer front end.
//
// Buffer-oriented use:
//
//	data, err := codec.Marshal(request)
//
// Stream-oriented use (the channel socket):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
package codec
