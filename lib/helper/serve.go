// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package helper

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/qnetctl/qnetctl/lib/ipc"
)

// Serve runs the executor over one front-end connection and closes the
// stream before returning. It returns ErrQuit after a quit request and
// nil when the front end disconnected.
func (e *Executor) Serve(ctx context.Context, stream *ipc.Stream) error {
	defer stream.Close()

	requests := make(chan ipc.Request)
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		defer close(requests)
		for {
			var request ipc.Request
			if err := stream.Receive(&request); err != nil {
				if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
					e.logger.Warn("reading request failed", "error", err)
				}
				return
			}
			select {
			case requests <- request:
			case <-ctx.Done():
				return
			}
			if ipc.ParseTag(request.Tag).Action == ipc.ActionQuit {
				return
			}
		}
	}()

	err := e.Run(ctx, requests, func(reply ipc.Reply) {
		if err := stream.Send(reply); err != nil {
			e.logger.Warn("sending reply failed", "tag", reply.Tag, "error", err)
		}
	})
	stream.Close()
	<-readerDone
	return err
}
