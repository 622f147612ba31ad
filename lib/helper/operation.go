// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package helper

import (
	"log/slog"

	"github.com/qnetctl/qnetctl/lib/ipc"
)

type phase int

const (
	phaseDispatched phase = iota
	phaseStepOneDone
	phaseStepTwoDone
	phaseFailed
)

func (p phase) String() string {
	switch p {
	case phaseDispatched:
		return "dispatched"
	case phaseStepOneDone:
		return "step-one-done"
	case phaseStepTwoDone:
		return "step-two-done"
	case phaseFailed:
		return "failed"
	}
	return "unknown"
}

// operation tracks one in-flight request. Only the loop touches it.
type operation struct {
	id      uint64
	request ipc.Request
	target  string
	phase   phase
	logger  *slog.Logger

	// Scan state.
	broughtUp bool
	polls     int
}

func (e *Executor) newOperation(request ipc.Request, target string) *operation {
	e.nextID++
	op := &operation{
		id:      e.nextID,
		request: request,
		target:  target,
		logger:  e.logger.With("operation", e.nextID, "tag", request.Tag, "target", target),
	}
	op.logger.Debug("operation dispatched")
	return op
}

func (op *operation) advance(next phase) {
	op.logger.Debug("operation advanced", "from", op.phase.String(), "to", next.String())
	op.phase = next
}
