// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/qnetctl/qnetctl/lib/cli"
	"github.com/qnetctl/qnetctl/lib/process"
	"github.com/qnetctl/qnetctl/lib/version"
)

func main() {
	if err := root().Execute(os.Args[1:]); err != nil {
		// Commands that already reported the problem return a bare exit
		// code.
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		process.Fatal(err)
	}
}

func root() *cli.Command {
	options := &globalOptions{}
	return &cli.Command{
		Name: "qnetctl",
		Description: `qnetctl: netctl network manager.

Lists wired profiles, wireless networks and devices as one view,
switches between profiles, edits and removes them, and keeps the
netctl autoconnect units consistent with the profiles' settings.
Privileged operations run in the qnetctl-tool helper.`,
		Subcommands: []*cli.Command{
			listCommand(options),
			connectCommand(options),
			forgetCommand(options),
			editCommand(options),
			autoconnectCommand(options),
			daemonCommand(options),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("qnetctl %s\n", version.Full())
					return nil
				},
			},
		},
	}
}
