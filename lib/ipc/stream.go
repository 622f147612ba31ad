// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"net"
	"sync"

	"github.com/qnetctl/qnetctl/lib/codec"
)

// Stream carries CBOR values in both directions over one connection.
// Send is safe for concurrent use; Receive must be called from a
// single goroutine.
type Stream struct {
	conn    net.Conn
	decoder *codec.Decoder

	sendMu  sync.Mutex
	encoder *codec.Encoder
}

// NewStream wraps conn.
func NewStream(conn net.Conn) *Stream {
	return &Stream{
		conn:    conn,
		decoder: codec.NewDecoder(conn),
		encoder: codec.NewEncoder(conn),
	}
}

// Send writes one value.
func (s *Stream) Send(value any) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	return s.encoder.Encode(value)
}

// Receive reads the next value into target. Returns io.EOF when the
// peer closed the connection cleanly.
func (s *Stream) Receive(target any) error {
	return s.decoder.Decode(target)
}

// Close closes the underlying connection, unblocking Receive.
func (s *Stream) Close() error {
	return s.conn.Close()
}

// Conn returns the underlying connection.
func (s *Stream) Conn() net.Conn {
	return s.conn
}
