// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/qnetctl/qnetctl/lib/cli"
	"github.com/qnetctl/qnetctl/lib/ipc"
)

func daemonCommand(options *globalOptions) *cli.Command {
	return &cli.Command{
		Name:    "daemon",
		Summary: "Keep the view current and log its changes",
		Description: `Run discovery continuously: check devices and rescan wireless networks
periodically, reload profiles when the profile directory changes, and
log every network that appears, changes or disappears.

SIGHUP makes the helper reload its configuration. SIGINT or SIGTERM
runs any pending autoconnect pass and stops the helper.`,
		Usage: "qnetctl daemon [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("daemon", pflag.ContinueOnError)
			options.register(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("usage: qnetctl daemon")
			}
			logger := options.logger("daemon")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			hangups := make(chan os.Signal, 1)
			signal.Notify(hangups, syscall.SIGHUP)
			defer signal.Stop(hangups)

			s, err := openSession(ctx, options, logger, sessionOptions{watch: true})
			if err != nil {
				return err
			}

			for {
				select {
				case <-ctx.Done():
					logger.Info("stopping", "reason", context.Cause(ctx))
					return s.quit()
				case <-hangups:
					reload(s)
				case err := <-s.done:
					if s.helper != nil {
						s.helper.release()
					}
					if err == nil {
						err = errors.New("quit by another caller")
					}
					return fmt.Errorf("controller stopped: %w", err)
				}
			}
		},
	}
}

// reload asks the helper to re-read its configuration.
func reload(s *session) {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	reply, err := s.ctl.Call(ctx, ipc.NewRequest(ipc.ActionReparseConfig, ""))
	switch {
	case err != nil:
		s.logger.Error("reloading helper configuration", "error", err)
	case reply.Failed():
		s.logger.Error("helper rejected its configuration", "result", reply.Result)
	default:
		s.logger.Info("helper configuration reloaded")
	}
}
