// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package helper

import (
	"context"
	"fmt"
	"strings"

	"github.com/qnetctl/qnetctl/lib/command"
	"github.com/qnetctl/qnetctl/lib/discovery"
	"github.com/qnetctl/qnetctl/lib/ipc"
)

func validInterface(name string) bool {
	return name != "" && !strings.HasPrefix(name, "-") && !strings.ContainsAny(name, "/ \t\n")
}

func (e *Executor) scanWifi(request ipc.Request) {
	iface := request.Payload
	if !validInterface(iface) {
		e.unsupported(request)
		return
	}
	if _, busy := e.scanning[iface]; busy {
		e.logger.Debug("scan already running, dropping request", "interface", iface)
		return
	}
	op := e.newOperation(request, iface)
	e.scanning[iface] = op

	ctx := e.commands
	var cancel context.CancelFunc = func() {}
	if timeout := e.settings.LinkCheckTimeout; timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}
	e.start(ctx, func(result command.Result) {
		cancel()
		e.linkChecked(op, result)
	}, e.settings.Tools.IP, "link", "show", iface)
}

// linkChecked decides whether the scan needs a bring-up first. A
// failed check is treated as "up" and the scan goes ahead.
func (e *Executor) linkChecked(op *operation, result command.Result) {
	iface := op.target
	if result.Failed() || discovery.LinkUp(result.Output) || e.uplinking[iface] {
		op.advance(phaseStepOneDone)
		e.startScan(op)
		return
	}

	e.uplinking[iface] = true
	op.broughtUp = true
	op.logger.Info("bringing interface up for scan", "interface", iface)
	e.start(e.commands, func(result command.Result) {
		if result.Failed() {
			delete(e.uplinking, iface)
			op.broughtUp = false
			e.fail(op, result)
			e.scanDone(op)
			return
		}
		e.pollLink(op)
	}, e.settings.Tools.IP, "link", "set", iface, "up")
}

// pollLink waits one interval and checks the UP flag again.
func (e *Executor) pollLink(op *operation) {
	e.after(e.settings.LinkPollInterval, func() {
		e.start(e.commands, func(result command.Result) {
			op.polls++
			if !result.Failed() && discovery.LinkUp(result.Output) {
				op.advance(phaseStepOneDone)
				e.startScan(op)
				return
			}
			if limit := e.settings.LinkPollLimit; limit > 0 && op.polls >= limit {
				op.advance(phaseFailed)
				e.send(op.request.Tag, ipc.FailureResult(fmt.Errorf("link %s did not come up after %d checks", op.target, op.polls)))
				e.scanDone(op)
				e.bringDown(op)
				return
			}
			e.pollLink(op)
		}, e.settings.Tools.IP, "link", "show", op.target)
	})
}

func (e *Executor) startScan(op *operation) {
	e.start(e.commands, func(result command.Result) {
		if result.Failed() {
			e.fail(op, result)
		} else {
			op.advance(phaseStepTwoDone)
			e.send(op.request.Tag, result.Output)
		}
		e.scanDone(op)
		e.bringDown(op)
	}, e.settings.Tools.IW, "dev", op.target, "scan")
}

// bringDown undoes this operation's bring-up after the reply went
// out. Its result is only logged. The interface stays in uplinking
// until it is down, so a scan requested meanwhile does not bring it
// up again.
func (e *Executor) bringDown(op *operation) {
	if !op.broughtUp {
		return
	}
	e.start(e.commands, func(result command.Result) {
		if err := result.Err(); err != nil {
			op.logger.Warn("bringing interface down after scan failed", "interface", op.target, "error", err)
		}
		delete(e.uplinking, op.target)
	}, e.settings.Tools.IP, "link", "set", op.target, "down")
}

// scanDone frees iface for the next scan request. It runs as soon as
// the reply is sent.
func (e *Executor) scanDone(op *operation) {
	if e.scanning[op.target] == op {
		delete(e.scanning, op.target)
	}
}
