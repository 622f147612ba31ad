// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"fmt"
	"strings"
)

// Request is one front end → helper message.
type Request struct {
	// Tag names the operation, e.g. "scan_wifi" or
	// "write_profile home". See [ParseTag].
	Tag string `cbor:"tag"`

	// Payload is the operation argument: a profile name, a unit name,
	// an interface name, or the serialized profile for write_profile.
	Payload string `cbor:"payload"`
}

// Reply is one helper → front end message. Tag is copied verbatim
// from the originating request.
type Reply struct {
	Tag    string `cbor:"tag"`
	Result string `cbor:"result"`
}

// Failed reports whether the reply carries an error result.
func (r Reply) Failed() bool { return IsError(r.Result) }

const (
	// ResultSuccess is the result of a successful write_profile or
	// reparse_config request.
	ResultSuccess = "SUCCESS"

	// ResultError is the bare failure result of write_profile.
	ResultError = "ERROR"
)

// IsError reports whether result signals failure.
func IsError(result string) bool {
	return strings.HasPrefix(result, ResultError)
}

// ExitResult formats the failure result for an external command that
// exited abnormally or with a non-zero code. status is 0 for a normal
// exit and 1 for a crash.
func ExitResult(status, code int) string {
	return fmt.Sprintf("ERROR: %d, %d", status, code)
}

// UnsupportedResult formats the failure result for a request whose tag
// is not recognized or whose payload is not acceptable for its tag.
func UnsupportedResult(payload string) string {
	return "ERROR: unsupported command / request: " + payload
}

// FailureResult formats a failure that is not a process exit, such as
// an I/O error while removing a profile file.
func FailureResult(err error) string {
	return "ERROR: " + err.Error()
}
