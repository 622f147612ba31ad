// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/qnetctl/qnetctl/lib/cli"
	"github.com/qnetctl/qnetctl/lib/clock"
	"github.com/qnetctl/qnetctl/lib/command"
	"github.com/qnetctl/qnetctl/lib/config"
	"github.com/qnetctl/qnetctl/lib/helper"
	"github.com/qnetctl/qnetctl/lib/netprofile"
	"github.com/qnetctl/qnetctl/lib/process"
	"github.com/qnetctl/qnetctl/lib/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}

func run(args []string) error {
	var (
		configPath  string
		socketPath  string
		ownerUID    int
		debug       bool
		showVersion bool
	)

	flags := pflag.NewFlagSet("qnetctl-tool", pflag.ContinueOnError)
	flags.StringVar(&configPath, "config", "", "configuration file (default: $"+config.EnvVar+", else built-in defaults)")
	flags.StringVar(&socketPath, "socket", "", "socket path (overrides paths.socket)")
	flags.IntVar(&ownerUID, "owner-uid", -1, "user allowed to connect besides root (default: $PKEXEC_UID or $SUDO_UID)")
	flags.BoolVar(&debug, "debug", false, "log per-request traces")
	flags.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if showVersion {
		fmt.Printf("qnetctl-tool %s\n", version.Info())
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if socketPath != "" {
		cfg.Paths.Socket = socketPath
	}
	if ownerUID < 0 {
		ownerUID = invokingUID()
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := cli.NewCommandLogger(level).With("binary", "qnetctl-tool")

	if euid := os.Geteuid(); euid != 0 {
		return fmt.Errorf("qnetctl-tool must run as root (effective uid %d)", euid)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listener, err := listenSocket(cfg.Paths.Socket, ownerUID)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Paths.Socket, err)
	}
	defer os.Remove(cfg.Paths.Socket)
	defer listener.Close()

	executor := helper.New(helper.Config{
		Settings: helperSettings(cfg),
		Profiles: netprofile.NewStore(cfg.Paths.Profiles, logger),
		Runner:   command.NewExecRunner(),
		Clock:    clock.Real(),
		Reload: func() (helper.Settings, error) {
			reloaded, err := loadConfig(configPath)
			if err != nil {
				return helper.Settings{}, err
			}
			return helperSettings(reloaded), nil
		},
		Logger: logger,
	})

	logger.Info("helper listening",
		"socket", cfg.Paths.Socket,
		"owner_uid", ownerUID,
		"version", version.Info(),
	)
	return serve(ctx, listener, executor, peerPolicy{ownerUID: ownerUID}, logger)
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Resolve(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func helperSettings(cfg *config.Config) helper.Settings {
	return helper.Settings{
		Tools: helper.Tools{
			IP:        cfg.Tools.IP,
			IW:        cfg.Tools.IW,
			Netctl:    cfg.Tools.Netctl,
			Systemctl: cfg.Tools.Systemctl,
		},
		LinkPollInterval: cfg.Timing.LinkPollInterval,
		LinkPollLimit:    cfg.Timing.LinkPollLimit,
		LinkCheckTimeout: cfg.Timing.LinkCheckTimeout,
	}
}

// invokingUID returns the uid pkexec or sudo recorded for the user who
// started the helper, or -1.
func invokingUID() int {
	for _, name := range []string{"PKEXEC_UID", "SUDO_UID"} {
		if value := os.Getenv(name); value != "" {
			if uid, err := strconv.Atoi(value); err == nil && uid >= 0 {
				return uid
			}
		}
	}
	return -1
}
