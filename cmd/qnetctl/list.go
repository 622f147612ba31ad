// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/qnetctl/qnetctl/lib/cli"
	"github.com/qnetctl/qnetctl/lib/netmodel"
	"github.com/qnetctl/qnetctl/lib/reconcile"
)

func listCommand(options *globalOptions) *cli.Command {
	var jsonOutput bool
	return &cli.Command{
		Name:    "list",
		Summary: "Show profiles, devices and wireless networks",
		Description: `Run one discovery pass and print the unified view.

Profiles are merged with the scan results for their SSID and with the
device they name; devices and networks without a profile are listed on
their own. The first column marks the active profile with "*" and other
profiles with "+".`,
		Usage: "qnetctl list [--json] [flags]",
		Examples: []cli.Example{
			{Description: "Show the view", Command: "qnetctl list"},
			{Description: "Machine-readable output", Command: "qnetctl list --json"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			options.register(flagSet)
			flagSet.BoolVar(&jsonOutput, "json", false, "print the view as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("usage: qnetctl list [--json]")
			}
			var entries []reconcile.Network
			err := runSession(options, "list", func(_ context.Context, s *session) error {
				entries = s.ctl.Entries()
				return nil
			})
			if err != nil {
				return err
			}
			if jsonOutput {
				return cli.WriteJSON(os.Stdout, entries)
			}
			return writeTable(os.Stdout, entries)
		},
	}
}

// writeTable prints the view in the order the reconciliation produced.
func writeTable(w io.Writer, entries []reconcile.Network) error {
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintln(tw, " \tNAME\tSECURITY\tQUALITY\tAUTO\tINTERFACE")
	for _, entry := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			marker(entry.Connection),
			entry.DisplayName(),
			security(entry.Connection),
			quality(entry.Connection),
			autoconnectColumn(entry.Connection),
			entry.Interface,
		)
	}
	return tw.Flush()
}

func marker(conn netmodel.Connection) string {
	switch {
	case conn.Active:
		return "*"
	case conn.Profile != "":
		return "+"
	}
	return " "
}

func security(conn netmodel.Connection) string {
	if conn.AdHoc {
		return conn.Type.Describe() + " (ad-hoc)"
	}
	return conn.Type.Describe()
}

func quality(conn netmodel.Connection) string {
	if conn.LinkBroken() {
		return "no carrier"
	}
	return conn.QualityBar()
}

func autoconnectColumn(conn netmodel.Connection) string {
	if conn.AutoConnect {
		return "yes"
	}
	return "no"
}
