// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/pflag"

	"github.com/qnetctl/qnetctl/lib/autoconnect"
	"github.com/qnetctl/qnetctl/lib/cli"
	"github.com/qnetctl/qnetctl/lib/clock"
	"github.com/qnetctl/qnetctl/lib/command"
	"github.com/qnetctl/qnetctl/lib/config"
	"github.com/qnetctl/qnetctl/lib/controller"
	"github.com/qnetctl/qnetctl/lib/ipc"
	"github.com/qnetctl/qnetctl/lib/netprofile"
)

// stopTimeout bounds quitting and shutting down a session.
const stopTimeout = 10 * time.Second

// globalOptions are the flags every subcommand that talks to the
// helper accepts.
type globalOptions struct {
	configPath string
	toolPath   string
	debug      bool
}

func (o *globalOptions) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&o.configPath, "config", "", "configuration file (default: $"+config.EnvVar+", else built-in defaults)")
	flagSet.StringVar(&o.toolPath, "tool", "", "qnetctl-tool binary to launch (default: next to qnetctl, then PATH)")
	flagSet.BoolVarP(&o.debug, "debug", "d", false, "log per-request traces")
}

func (o *globalOptions) logger(command string) *slog.Logger {
	level := slog.LevelWarn
	if command == "daemon" {
		level = slog.LevelInfo
	}
	if o.debug {
		level = slog.LevelDebug
	}
	return cli.NewCommandLogger(level).With("command", command)
}

// session is a running controller connected to the helper.
type session struct {
	config *config.Config
	ctl    *controller.Controller
	helper *helperProcess
	logger *slog.Logger
	done   chan error
}

type sessionOptions struct {
	// watch reloads the profile list when the profile directory
	// changes.
	watch bool
}

func openSession(ctx context.Context, options *globalOptions, logger *slog.Logger, extra sessionOptions) (*session, error) {
	cfg, err := config.Resolve(options.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	launch := helperLaunch{
		socket:  cfg.Paths.Socket,
		timeout: cfg.Timing.ConnectTimeout,
		clock:   clock.Real(),
	}
	toolPath := options.toolPath
	if toolPath == "" {
		toolPath = findSiblingBinary("qnetctl-tool", logger)
	}
	if toolPath != "" {
		launch.argv = helperArgv(cfg, toolPath, options.configPath)
	}
	conn, helper, err := connectHelper(ctx, launch, logger)
	if err != nil {
		return nil, err
	}

	var watcher *netprofile.Watcher
	if extra.watch {
		watcher, err = netprofile.NewWatcher(cfg.Paths.Profiles, logger)
		if err != nil {
			logger.Warn("not watching the profile directory", "error", err)
			watcher = nil
		}
	}

	ctl := controller.New(controller.Config{
		Tools:    controllerTools(cfg),
		Timing:   controllerTiming(cfg),
		Profiles: netprofile.NewStore(cfg.Paths.Profiles, logger),
		Runner:   command.NewExecRunner(),
		Clock:    clock.Real(),
		Channel:  ipc.NewStream(conn),
		Resolver: autoconnect.NewResolver(resolverDependencies(cfg), autoconnect.FileExists, logger),
		Watcher:  watcher,
		Logger:   logger,
	})
	s := &session{
		config: cfg,
		ctl:    ctl,
		helper: helper,
		logger: logger,
		done:   make(chan error, 1),
	}
	go func() { s.done <- ctl.Run(context.Background()) }()
	return s, nil
}

// quit runs a pending autoconnect pass and ends the session. When the
// pass fails the session is shut down anyway and the pass error is
// returned.
func (s *session) quit() error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := s.ctl.Quit(ctx); err != nil {
		if shutdownErr := s.ctl.Shutdown(ctx); shutdownErr != nil {
			s.logger.Warn("shutdown failed", "error", shutdownErr)
		}
		return errors.Join(err, s.wait())
	}
	return s.wait()
}

// shutdown ends the session without the autoconnect pass.
func (s *session) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := s.ctl.Shutdown(ctx); err != nil {
		return err
	}
	return s.wait()
}

// wait collects the controller and, after a clean stop, the helper
// process this session started.
func (s *session) wait() error {
	err := <-s.done
	if s.helper != nil {
		if err != nil {
			s.helper.release()
		} else {
			s.helper.wait(stopTimeout, s.logger)
		}
	}
	return err
}

// settled waits for discovery to finish.
func (s *session) settled(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if _, err := s.ctl.Settled(ctx); err != nil {
		return fmt.Errorf("waiting for discovery: %w", err)
	}
	return nil
}

// discoveryTimeout bounds the initial discovery pass: a scan that brings
// an interface up may poll the link for a while.
func (s *session) discoveryTimeout() time.Duration {
	timing := s.config.Timing
	polls := time.Duration(max(timing.LinkPollLimit, 1))
	return 10*time.Second + timing.LinkCheckTimeout + polls*timing.LinkPollInterval
}

func controllerTools(cfg *config.Config) controller.Tools {
	return controller.Tools{
		IP:        cfg.Tools.IP,
		IW:        cfg.Tools.IW,
		Netctl:    cfg.Tools.Netctl,
		Systemctl: cfg.Tools.Systemctl,
	}
}

func controllerTiming(cfg *config.Config) controller.Timing {
	return controller.Timing{
		RebuildDelay:     cfg.Timing.RebuildDelay,
		RescanInterval:   cfg.Timing.RescanInterval,
		AutoconnectDelay: cfg.Timing.AutoconnectDelay,
	}
}

func resolverDependencies(cfg *config.Config) autoconnect.Dependencies {
	return autoconnect.Dependencies{
		Ifplugd:    cfg.Tools.Ifplugd,
		WpaActiond: cfg.Tools.WpaActiond,
	}
}
