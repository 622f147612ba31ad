// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/qnetctl/qnetctl/lib/autoconnect"
	"github.com/qnetctl/qnetctl/lib/cli"
)

func autoconnectCommand(options *globalOptions) *cli.Command {
	var abortOnMissing bool
	return &cli.Command{
		Name:    "autoconnect",
		Summary: "Recompute the enabled autoconnect units",
		Description: `Enable exactly the units the profiles' autoconnect flags call for and
disable every other enabled netctl unit.

A single autoconnecting wired profile is enabled directly. Once a
wireless profile autoconnects, wireless interfaces are handed to
netctl-auto (needs wpa_actiond) and wired interfaces to netctl-ifplugd
(needs ifplugd). When a needed daemon is missing the command asks
whether to retry after installing it; on abort nothing changes.`,
		Usage: "qnetctl autoconnect [--abort-on-missing] [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("autoconnect", pflag.ContinueOnError)
			options.register(flagSet)
			flagSet.BoolVar(&abortOnMissing, "abort-on-missing", false, "fail instead of prompting when a daemon is missing")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("usage: qnetctl autoconnect")
			}
			decide := abortDecider
			if !abortOnMissing && cli.IsTerminal(os.Stdin) {
				decide = promptDecider(os.Stdin, os.Stderr)
			}
			return runSession(options, "autoconnect", func(ctx context.Context, s *session) error {
				plan, err := s.ctl.Autoconnect(ctx, decide)
				var conflict *autoconnect.ConflictError
				if errors.As(err, &conflict) {
					return fmt.Errorf("several autoconnecting profiles on %s: enable at most one per wired interface; no changes applied",
						strings.Join(conflict.Interfaces, ", "))
				}
				var missing *autoconnect.MissingError
				if errors.As(err, &missing) {
					fmt.Fprintf(os.Stderr, "%s\nNo changes applied.\n", missingMessage(missing))
					return &cli.ExitError{Code: 2}
				}
				if err != nil {
					return err
				}
				printPlan(os.Stdout, plan)
				return nil
			})
		},
	}
}

func abortDecider(*autoconnect.MissingError) autoconnect.Decision {
	return autoconnect.Abort
}

// promptDecider asks on out whether to retry after the missing daemons
// were installed, reading the answer from in. Anything but an answer
// starting with "r" aborts.
func promptDecider(in io.Reader, out io.Writer) autoconnect.Decider {
	reader := bufio.NewReader(in)
	return func(missing *autoconnect.MissingError) autoconnect.Decision {
		fmt.Fprintf(out, "%s\nInstall it and retry, or abort? [r/a] ", missingMessage(missing))
		answer, err := reader.ReadString('\n')
		if err != nil && answer == "" {
			fmt.Fprintln(out)
			return autoconnect.Abort
		}
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "r") {
			return autoconnect.Retry
		}
		if len(missing.Fallback) > 1 {
			fmt.Fprintf(out, "Without the daemons only manual selection is safe: enabling %s together would start them all at once.\n",
				strings.Join(missing.Fallback, ", "))
		}
		return autoconnect.Abort
	}
}

func missingMessage(missing *autoconnect.MissingError) string {
	var lines []string
	for _, daemon := range missing.Daemons {
		switch filepath.Base(daemon) {
		case "ifplugd":
			lines = append(lines, "Activating a wired connection automatically when it is available needs ifplugd ("+daemon+").")
		case "wpa_actiond":
			lines = append(lines, "Activating a wireless connection automatically when it is available needs wpa_actiond ("+daemon+").")
		default:
			lines = append(lines, "Missing "+daemon+".")
		}
	}
	return strings.Join(lines, "\n")
}

func printPlan(w io.Writer, plan autoconnect.Plan) {
	for _, name := range plan.Disable {
		fmt.Fprintf(w, "disabled %s\n", name)
	}
	for _, name := range plan.Required {
		fmt.Fprintf(w, "enabled %s\n", name)
	}
	if len(plan.Disable) == 0 && len(plan.Required) == 0 {
		fmt.Fprintln(w, "no autoconnect units")
	}
}
