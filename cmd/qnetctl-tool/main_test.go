// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/qnetctl/qnetctl/lib/clock"
	"github.com/qnetctl/qnetctl/lib/command"
	"github.com/qnetctl/qnetctl/lib/config"
	"github.com/qnetctl/qnetctl/lib/helper"
	"github.com/qnetctl/qnetctl/lib/ipc"
	"github.com/qnetctl/qnetctl/lib/netprofile"
	"github.com/qnetctl/qnetctl/lib/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const timeout = 5 * time.Second

func TestListenSocket(t *testing.T) {
	socketDir := testutil.SocketDir(t)
	socketPath := filepath.Join(socketDir, "nested", "tool.sock")

	listener, err := listenSocket(socketPath, -1)
	if err != nil {
		t.Fatalf("listenSocket() error: %v", err)
	}
	defer listener.Close()

	info, err := os.Stat(socketPath)
	if err != nil {
		t.Fatalf("socket file not created: %v", err)
	}
	if info.Mode().Perm() != 0660 {
		t.Errorf("socket permissions = %o, want 0660", info.Mode().Perm())
	}
	if info.Mode()&os.ModeSocket == 0 {
		t.Errorf("socket file mode = %v, want a socket", info.Mode())
	}
}

func TestListenSocketRemovesStale(t *testing.T) {
	socketPath := filepath.Join(testutil.SocketDir(t), "tool.sock")
	if err := os.WriteFile(socketPath, []byte("stale"), 0600); err != nil {
		t.Fatalf("writing stale file: %v", err)
	}

	listener, err := listenSocket(socketPath, -1)
	if err != nil {
		t.Fatalf("listenSocket() with stale file: %v", err)
	}
	listener.Close()
}

func TestPeerCredentials(t *testing.T) {
	socketPath := filepath.Join(testutil.SocketDir(t), "tool.sock")
	listener, err := listenSocket(socketPath, -1)
	if err != nil {
		t.Fatalf("listenSocket() error: %v", err)
	}
	defer listener.Close()

	client, err := net.Dial("unix", socketPath)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()
	server, err := listener.Accept()
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	defer server.Close()

	credentials, err := peerCredentials(server)
	if err != nil {
		t.Fatalf("peerCredentials: %v", err)
	}
	if int(credentials.Uid) != os.Getuid() {
		t.Errorf("peer uid = %d, want %d", credentials.Uid, os.Getuid())
	}
	if int(credentials.Pid) != os.Getpid() {
		t.Errorf("peer pid = %d, want %d", credentials.Pid, os.Getpid())
	}

	left, right := net.Pipe()
	defer left.Close()
	defer right.Close()
	if _, err := peerCredentials(left); err == nil {
		t.Error("peerCredentials accepted a pipe")
	}
}

func TestPeerPolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy peerPolicy
		uid    uint32
		want   bool
	}{
		{"root without owner", peerPolicy{ownerUID: -1}, 0, true},
		{"user without owner", peerPolicy{ownerUID: -1}, 1000, false},
		{"owner", peerPolicy{ownerUID: 1000}, 1000, true},
		{"root with owner", peerPolicy{ownerUID: 1000}, 0, true},
		{"other user", peerPolicy{ownerUID: 1000}, 1001, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.policy.allows(test.uid); got != test.want {
				t.Errorf("allows(%d) = %v, want %v", test.uid, got, test.want)
			}
		})
	}
}

func TestInvokingUID(t *testing.T) {
	t.Setenv("PKEXEC_UID", "")
	t.Setenv("SUDO_UID", "")
	if got := invokingUID(); got != -1 {
		t.Errorf("invokingUID() with nothing set = %d, want -1", got)
	}
	t.Setenv("SUDO_UID", "1001")
	if got := invokingUID(); got != 1001 {
		t.Errorf("invokingUID() = %d, want 1001", got)
	}
	t.Setenv("PKEXEC_UID", "1000")
	if got := invokingUID(); got != 1000 {
		t.Errorf("invokingUID() = %d, want PKEXEC_UID 1000", got)
	}
	t.Setenv("PKEXEC_UID", "nobody")
	if got := invokingUID(); got != 1001 {
		t.Errorf("invokingUID() with bad PKEXEC_UID = %d, want 1001", got)
	}
}

func TestHelperSettings(t *testing.T) {
	cfg := config.Default()
	want := helper.Settings{
		Tools: helper.Tools{
			IP:        "/usr/bin/ip",
			IW:        "/usr/bin/iw",
			Netctl:    "/usr/bin/netctl",
			Systemctl: "/usr/bin/systemctl",
		},
		LinkPollInterval: 500 * time.Millisecond,
		LinkPollLimit:    20,
		LinkCheckTimeout: 5 * time.Second,
	}
	if diff := cmp.Diff(want, helperSettings(cfg)); diff != "" {
		t.Errorf("helperSettings mismatch (-want +got):\n%s", diff)
	}
}

type serveHarness struct {
	socketPath string
	runner     *command.FakeRunner
	done       chan error
}

func startServe(t *testing.T, policy peerPolicy) *serveHarness {
	t.Helper()
	logger := testutil.Logger(t)
	socketPath := filepath.Join(testutil.SocketDir(t), "tool.sock")
	listener, err := listenSocket(socketPath, -1)
	if err != nil {
		t.Fatalf("listenSocket() error: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	runner := command.NewFakeRunner()
	executor := helper.New(helper.Config{
		Settings: helper.Settings{
			Tools:            helper.Tools{IP: "ip", IW: "iw", Netctl: "netctl", Systemctl: "systemctl"},
			LinkPollInterval: time.Millisecond,
		},
		Profiles: netprofile.NewStore(t.TempDir(), logger),
		Runner:   runner,
		Clock:    clock.Real(),
		Logger:   logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	h := &serveHarness{socketPath: socketPath, runner: runner, done: make(chan error, 1)}
	go func() { h.done <- serve(ctx, listener, executor, policy, logger) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-h.done:
		case <-time.After(timeout):
			t.Error("serve did not return")
		}
	})
	return h
}

func (h *serveHarness) dial(t *testing.T) *ipc.Stream {
	t.Helper()
	conn, err := net.Dial("unix", h.socketPath)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	conn.SetDeadline(time.Now().Add(timeout))
	stream := ipc.NewStream(conn)
	t.Cleanup(func() { stream.Close() })
	return stream
}

func TestServeConnectionsUntilQuit(t *testing.T) {
	h := startServe(t, peerPolicy{ownerUID: os.Getuid()})

	first := h.dial(t)
	if err := first.Send(ipc.NewRequest(ipc.ActionEnableProfile, "home")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	var reply ipc.Reply
	if err := first.Receive(&reply); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if diff := cmp.Diff(ipc.Reply{Tag: "enable_profile", Result: ""}, reply); diff != "" {
		t.Errorf("reply mismatch (-want +got):\n%s", diff)
	}
	first.Close()

	// A disconnect without quit leaves the helper serving.
	second := h.dial(t)
	if err := second.Send(ipc.NewRequest(ipc.ActionQuit, "")); err != nil {
		t.Fatalf("Send quit: %v", err)
	}
	if err := testutil.RequireReceive(t, h.done, timeout, "serve did not stop after quit"); err != nil {
		t.Errorf("serve = %v, want nil", err)
	}
	h.done <- nil

	if count := h.runner.Count("netctl enable home"); count != 1 {
		t.Errorf("netctl enable home ran %d times, want 1", count)
	}
}

func TestServeRejectsOtherUsers(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root is always allowed")
	}
	h := startServe(t, peerPolicy{ownerUID: -1})

	stream := h.dial(t)
	var reply ipc.Reply
	if err := stream.Receive(&reply); err == nil {
		t.Fatalf("rejected connection received %+v", reply)
	}
	if count := len(h.runner.Calls()); count != 0 {
		t.Errorf("rejected peer ran %d commands", count)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	logger := testutil.Logger(t)
	listener, err := listenSocket(filepath.Join(testutil.SocketDir(t), "tool.sock"), -1)
	if err != nil {
		t.Fatalf("listenSocket() error: %v", err)
	}
	defer listener.Close()
	executor := helper.New(helper.Config{
		Profiles: netprofile.NewStore(t.TempDir(), logger),
		Runner:   command.NewFakeRunner(),
		Clock:    clock.Real(),
		Logger:   logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, listener, executor, peerPolicy{ownerUID: -1}, logger) }()
	cancel()
	if err := testutil.RequireReceive(t, done, timeout, "serve did not stop"); err != nil {
		t.Errorf("serve = %v, want nil", err)
	}
}
