// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/qnetctl/qnetctl/lib/helper"
	"github.com/qnetctl/qnetctl/lib/ipc"
)

// listenSocket creates a unix socket listener, removing any stale socket
// file. The socket is 0660 and, when ownerUID is not negative, owned by
// that user so the front end can connect.
func listenSocket(socketPath string, ownerUID int) (net.Listener, error) {
	socketDir := filepath.Dir(socketPath)
	if err := os.MkdirAll(socketDir, 0755); err != nil {
		return nil, fmt.Errorf("creating socket directory %s: %w", socketDir, err)
	}

	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("removing stale socket %s: %w", socketPath, err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, err
	}

	if err := os.Chmod(socketPath, 0660); err != nil {
		listener.Close()
		return nil, fmt.Errorf("setting socket permissions: %w", err)
	}
	if ownerUID >= 0 {
		if err := os.Chown(socketPath, ownerUID, -1); err != nil {
			listener.Close()
			return nil, fmt.Errorf("setting socket owner: %w", err)
		}
	}

	return listener, nil
}

// peerCredentials returns the SO_PEERCRED credentials of a unix socket
// connection.
func peerCredentials(conn net.Conn) (*unix.Ucred, error) {
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		return nil, fmt.Errorf("not a unix connection: %T", conn)
	}
	raw, err := unixConn.SyscallConn()
	if err != nil {
		return nil, err
	}
	var (
		credentials *unix.Ucred
		credErr     error
	)
	if err := raw.Control(func(fd uintptr) {
		credentials, credErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	}); err != nil {
		return nil, err
	}
	if credErr != nil {
		return nil, fmt.Errorf("reading peer credentials: %w", credErr)
	}
	return credentials, nil
}

// peerPolicy decides which peers may drive the helper: root, and the
// owning user when one is set.
type peerPolicy struct {
	ownerUID int
}

func (p peerPolicy) allows(uid uint32) bool {
	return uid == 0 || (p.ownerUID >= 0 && uid == uint32(p.ownerUID))
}

// serve accepts front-end connections one at a time until a quit
// request or ctx is cancelled. A front end that disconnects without
// quitting leaves the helper waiting for the next one.
func serve(ctx context.Context, listener net.Listener, executor *helper.Executor, policy peerPolicy, logger *slog.Logger) error {
	stopAccepting := context.AfterFunc(ctx, func() { listener.Close() })
	defer stopAccepting()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("shutting down", "reason", context.Cause(ctx))
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			logger.Error("accept error", "error", err)
			continue
		}

		credentials, err := peerCredentials(conn)
		if err != nil {
			logger.Warn("rejecting connection", "error", err)
			conn.Close()
			continue
		}
		peer := logger.With("peer_pid", credentials.Pid, "peer_uid", credentials.Uid)
		if !policy.allows(credentials.Uid) {
			peer.Warn("rejecting connection from unauthorized user")
			conn.Close()
			continue
		}

		peer.Info("front end connected")
		err = executor.Serve(ctx, ipc.NewStream(conn))
		switch {
		case errors.Is(err, helper.ErrQuit):
			peer.Info("quit requested")
			return nil
		case ctx.Err() != nil:
			logger.Info("shutting down", "reason", context.Cause(ctx))
			return nil
		case err != nil:
			return fmt.Errorf("serving front end: %w", err)
		}
		peer.Info("front end disconnected")
	}
}
