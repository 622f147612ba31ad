// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "qnetctl",
		Subcommands: []*Command{
			{
				Name: "version",
				Run: func(args []string) error {
					called = "version"
					return nil
				},
			},
			{
				Name: "list",
				Run: func(args []string) error {
					called = "list"
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"list"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "list" {
		t.Errorf("dispatched to %q, want %q", called, "list")
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var ssid string
	var dhcp bool
	var target string

	command := &Command{
		Name: "edit",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("edit", pflag.ContinueOnError)
			flagSet.StringVar(&ssid, "ssid", "", "network name")
			flagSet.BoolVar(&dhcp, "dhcp", false, "use DHCP")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				target = args[0]
			}
			return nil
		},
	}

	if err := command.Execute([]string{"--ssid", "cafe", "--dhcp", "qnetctl-cafe"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if ssid != "cafe" || !dhcp {
		t.Errorf("ssid = %q, dhcp = %v", ssid, dhcp)
	}
	if target != "qnetctl-cafe" {
		t.Errorf("target = %q, want %q", target, "qnetctl-cafe")
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "autoconnect",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("autoconnect", pflag.ContinueOnError)
			flagSet.Bool("abort-on-missing", false, "abort instead of prompting")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--abort-on-misisng"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "did you mean --abort-on-missing") {
		t.Errorf("error = %q, want suggestion for '--abort-on-missing'", errStr)
	}
	if !strings.Contains(errStr, "--help") {
		t.Errorf("error = %q, should point to --help", errStr)
	}
}

func TestCommand_Execute_UnknownCommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "qnetctl",
		Subcommands: []*Command{
			{Name: "connect", Run: func([]string) error { return nil }},
			{Name: "forget", Run: func([]string) error { return nil }},
		},
	}

	err := root.Execute([]string{"conect"})
	if err == nil {
		t.Fatal("Execute() = nil, want error")
	}
	if !strings.Contains(err.Error(), `did you mean "connect"`) {
		t.Errorf("error = %q, want suggestion", err)
	}

	err = root.Execute([]string{"frobnicate"})
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %v, want no suggestion", err)
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:       "qnetctl",
		HelpOutput: &help,
		Subcommands: []*Command{
			{Name: "list", Summary: "Show networks", Run: func([]string) error { return nil }},
		},
	}

	if err := root.Execute(nil); err == nil || err.Error() != "subcommand required" {
		t.Errorf("Execute(nil) = %v", err)
	}
	if !strings.Contains(help.String(), "Show networks") {
		t.Errorf("help output missing subcommand summary:\n%s", help.String())
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	root := &Command{Name: "qnetctl"}
	edit := &Command{
		Name:        "edit",
		Description: "Write a profile.",
		Usage:       "qnetctl edit <name> [flags]",
		Examples: []Example{
			{Description: "Static address", Command: "qnetctl edit office --address 10.0.0.5/24"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("edit", pflag.ContinueOnError)
			flagSet.String("address", "", "static address")
			return flagSet
		},
		parent: root,
	}

	var buffer bytes.Buffer
	edit.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"Write a profile.",
		"Usage:\n  qnetctl edit <name> [flags]",
		"--address",
		"# Static address",
		"qnetctl edit office --address 10.0.0.5/24",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q:\n%s", want, output)
		}
	}
}

func TestCommand_Execute_HelpFlagInheritsOutput(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:       "qnetctl",
		HelpOutput: &help,
		Subcommands: []*Command{
			{Name: "connect", Summary: "Switch to a profile", Run: func([]string) error {
				t.Error("Run called for --help")
				return nil
			}},
		},
	}

	if err := root.Execute([]string{"connect", "--help"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(help.String(), "Switch to a profile") {
		t.Errorf("help went elsewhere: %q", help.String())
	}
}

func TestExitError(t *testing.T) {
	err := &ExitError{Code: 3}
	if err.ExitCode() != 3 || err.Error() != "exit code 3" {
		t.Errorf("ExitError = %q / %d", err.Error(), err.ExitCode())
	}
}

func TestWriteJSON_NilSlice(t *testing.T) {
	var buffer bytes.Buffer
	var entries []string
	if err := WriteJSON(&buffer, entries); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buffer.String()); got != "[]" {
		t.Errorf("WriteJSON(nil slice) = %q, want []", got)
	}
}

func TestNewLogger(t *testing.T) {
	var buffer bytes.Buffer
	newLogger(&buffer, false, slog.LevelInfo).Info("started", "interface", "wlan0")
	if !strings.HasPrefix(buffer.String(), "{") || !strings.Contains(buffer.String(), `"interface":"wlan0"`) {
		t.Errorf("non-terminal output is not JSON: %q", buffer.String())
	}

	buffer.Reset()
	logger := newLogger(&buffer, true, slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("shown", "interface", "eth0")
	if strings.Contains(buffer.String(), "hidden") || !strings.Contains(buffer.String(), "interface=eth0") {
		t.Errorf("terminal output = %q", buffer.String())
	}
}
