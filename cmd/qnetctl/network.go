// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/qnetctl/qnetctl/lib/cli"
	"github.com/qnetctl/qnetctl/lib/controller"
	"github.com/qnetctl/qnetctl/lib/netmodel"
	"github.com/qnetctl/qnetctl/lib/netprofile"
	"github.com/qnetctl/qnetctl/lib/reconcile"
)

// runSession opens a session, waits for discovery, runs fn and quits,
// which applies any autoconnect pass fn scheduled. If fn fails the
// session is shut down without the pass.
func runSession(options *globalOptions, name string, fn func(ctx context.Context, s *session) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx, options, options.logger(name), sessionOptions{})
	if err != nil {
		return err
	}
	if err := s.settled(s.discoveryTimeout()); err != nil {
		return errors.Join(err, s.shutdown())
	}
	if err := fn(ctx, s); err != nil {
		return errors.Join(err, s.shutdown())
	}
	return s.quit()
}

// lookup finds a view entry by display name.
func lookup(s *session, name string) (reconcile.Network, error) {
	entry, ok := s.ctl.Lookup(name)
	if !ok {
		return reconcile.Network{}, fmt.Errorf("no network named %q (see 'qnetctl list')", name)
	}
	return entry, nil
}

// wirelessInterface picks the interface for a wireless entry that does
// not name one: the only wireless device, or an error.
func wirelessInterface(ctx context.Context, ctl *controller.Controller) (string, error) {
	devices, err := ctl.WirelessDevices(ctx)
	if err != nil {
		return "", err
	}
	switch len(devices) {
	case 0:
		return "", errors.New("no wireless device found")
	case 1:
		return devices[0], nil
	}
	return "", fmt.Errorf("several wireless devices (%s); choose one with --interface", strings.Join(devices, ", "))
}

func connectCommand(options *globalOptions) *cli.Command {
	var key, iface string
	return &cli.Command{
		Name:    "connect",
		Summary: "Switch to a profile or network",
		Description: `Switch to the named profile. A network without a profile first gets
one, configured for DHCP and without autoconnect; encrypted networks
need --key for that.`,
		Usage: "qnetctl connect <network> [--key KEY] [--interface IFACE] [flags]",
		Examples: []cli.Example{
			{Description: "Switch to a saved profile", Command: "qnetctl connect home"},
			{Description: "Join a WPA network seen in a scan", Command: "qnetctl connect cafe --key 'correct horse'"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("connect", pflag.ContinueOnError)
			options.register(flagSet)
			flagSet.StringVar(&key, "key", "", "key for a new encrypted profile")
			flagSet.StringVar(&iface, "interface", "", "interface for a new wireless profile")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: qnetctl connect <network>")
			}
			return runSession(options, "connect", func(ctx context.Context, s *session) error {
				entry, err := lookup(s, args[0])
				if err != nil {
					return err
				}
				profile := entry.Profile
				if profile == "" {
					conn := newProfile(entry.Connection, key, iface)
					if conn.Type.IsWireless() && conn.Interface == "" {
						if conn.Interface, err = wirelessInterface(ctx, s.ctl); err != nil {
							return err
						}
					}
					if profile, err = s.ctl.SaveProfile(ctx, entry.Connection, conn); err != nil {
						if errors.Is(err, controller.ErrKeyRequired) {
							return fmt.Errorf("%s is encrypted: pass --key", entry.DisplayName())
						}
						return err
					}
					fmt.Printf("created profile %s\n", profile)
				}
				if err := s.ctl.Connect(ctx, profile); err != nil {
					return err
				}
				fmt.Printf("switched to %s\n", profile)
				return nil
			})
		},
	}
}

// newProfile turns a scanned network or bare device into a profile
// to save: DHCP and no autoconnect.
func newProfile(conn netmodel.Connection, key, iface string) netmodel.Connection {
	conn.IPConfig = netmodel.DHCP
	conn.AutoConnect = false
	conn.Active = false
	if key != "" {
		conn.Key = netprofile.EscapeKey(conn.Type, key)
	}
	if iface != "" {
		conn.Interface = iface
	}
	return conn
}

func forgetCommand(options *globalOptions) *cli.Command {
	return &cli.Command{
		Name:    "forget",
		Summary: "Disable and delete a profile",
		Usage:   "qnetctl forget <profile> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("forget", pflag.ContinueOnError)
			options.register(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: qnetctl forget <profile>")
			}
			return runSession(options, "forget", func(ctx context.Context, s *session) error {
				entry, err := lookup(s, args[0])
				if err != nil {
					return err
				}
				if entry.Profile == "" {
					return fmt.Errorf("%s has no profile", entry.DisplayName())
				}
				if err := s.ctl.Forget(ctx, entry.Profile); err != nil {
					return err
				}
				fmt.Printf("removed profile %s\n", entry.Profile)
				return nil
			})
		},
	}
}
