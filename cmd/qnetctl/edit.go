// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/qnetctl/qnetctl/lib/cli"
	"github.com/qnetctl/qnetctl/lib/controller"
	"github.com/qnetctl/qnetctl/lib/netmodel"
	"github.com/qnetctl/qnetctl/lib/netprofile"
)

// editParams are the edit flags. Only flags given on the command line
// change the profile.
type editParams struct {
	profile     string
	ssid        string
	iface       string
	typeName    string
	dhcp        bool
	address     string
	gateway     string
	key         string
	autoconnect bool
}

func (p *editParams) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&p.profile, "profile", "", "profile name to save as (renames an existing profile)")
	flagSet.StringVar(&p.ssid, "ssid", "", "network SSID")
	flagSet.StringVar(&p.iface, "interface", "", "network interface")
	flagSet.StringVar(&p.typeName, "type", "", "connection type: ethernet, wireless, wep, wpa, wpa1 or wpa2")
	flagSet.BoolVar(&p.dhcp, "dhcp", false, "configure the address by DHCP")
	flagSet.StringVar(&p.address, "address", "", "static address with netmask, e.g. 192.168.1.20/24")
	flagSet.StringVar(&p.gateway, "gateway", "", "static gateway")
	flagSet.StringVar(&p.key, "key", "", "network key as typed; WEP hex keys are escaped")
	flagSet.BoolVar(&p.autoconnect, "autoconnect", false, "connect automatically (use --autoconnect=false to stop)")
}

func editCommand(options *globalOptions) *cli.Command {
	var (
		params  editParams
		flagSet *pflag.FlagSet
	)
	return &cli.Command{
		Name:    "edit",
		Summary: "Create or change a profile",
		Description: `Write a profile for the named network, starting from its current
settings. Changing --autoconnect enables or disables the profile right
away and then recomputes the autoconnect units for all profiles.`,
		Usage: "qnetctl edit <network> [--dhcp | --address ADDR [--gateway GW]] [--key KEY] [--autoconnect] [flags]",
		Examples: []cli.Example{
			{Description: "Give a scanned network a profile with a key", Command: "qnetctl edit cafe --key 'correct horse'"},
			{Description: "Static address on a wired profile", Command: "qnetctl edit office --address 10.0.0.5/24 --gateway 10.0.0.1"},
			{Description: "Stop connecting automatically", Command: "qnetctl edit home --autoconnect=false"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet = pflag.NewFlagSet("edit", pflag.ContinueOnError)
			options.register(flagSet)
			params.register(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: qnetctl edit <network> [flags]")
			}
			changed := func(name string) bool { return flagSet != nil && flagSet.Changed(name) }
			return runSession(options, "edit", func(ctx context.Context, s *session) error {
				entry, err := lookup(s, args[0])
				if err != nil {
					return err
				}
				updated, err := applyEdit(entry.Connection, params, changed)
				if err != nil {
					return err
				}
				if updated.Type.IsWireless() && updated.Interface == "" {
					if updated.Interface, err = wirelessInterface(ctx, s.ctl); err != nil {
						return err
					}
				}
				name, err := s.ctl.SaveProfile(ctx, entry.Connection, updated)
				if errors.Is(err, controller.ErrKeyRequired) {
					return fmt.Errorf("%s is encrypted: pass --key", entry.DisplayName())
				}
				if err != nil {
					return err
				}
				fmt.Printf("saved profile %s\n", name)

				// The pass on quit reads the autoconnect flags from the
				// view, so wait for the rewritten profile to show up.
				return s.settled(s.discoveryTimeout())
			})
		},
	}
}

// applyEdit returns conn with the changed flags applied.
func applyEdit(conn netmodel.Connection, params editParams, changed func(string) bool) (netmodel.Connection, error) {
	updated := conn
	updated.Active = false

	if changed("profile") {
		if err := netprofile.ValidateName(params.profile); err != nil {
			return conn, err
		}
		updated.Profile = params.profile
	}
	if changed("ssid") {
		updated.SSID = params.ssid
	}
	if changed("interface") {
		updated.Interface = params.iface
	}
	if changed("type") {
		typ, err := netmodel.ParseConnectionType(params.typeName)
		if err != nil {
			return conn, err
		}
		updated.Type = typ
	}

	switch {
	case changed("dhcp") && params.dhcp && (changed("address") || changed("gateway")):
		return conn, errors.New("--dhcp cannot be combined with --address or --gateway")
	case changed("dhcp") && params.dhcp:
		updated.IPConfig = netmodel.DHCP
	case changed("address") || changed("gateway"):
		address, gateway := staticParts(updated.IPConfig)
		if changed("address") {
			address = params.address
		}
		if changed("gateway") {
			gateway = params.gateway
		}
		if address == "" {
			return conn, errors.New("a static configuration needs --address")
		}
		updated.IPConfig = address
		if gateway != "" {
			updated.IPConfig += ";" + gateway
		}
	case changed("dhcp"):
		if updated.IPConfig == netmodel.DHCP {
			return conn, errors.New("--dhcp=false needs --address")
		}
	}
	if updated.IPConfig == "" {
		updated.IPConfig = netmodel.DHCP
	}

	if changed("key") {
		updated.Key = netprofile.EscapeKey(updated.Type, params.key)
	}
	if !updated.Type.IsWireless() {
		updated.Key = ""
	}
	if changed("autoconnect") {
		updated.AutoConnect = params.autoconnect
	}
	return updated, nil
}

// staticParts splits a static IPConfig into address and gateway.
func staticParts(ipConfig string) (address, gateway string) {
	if ipConfig == netmodel.DHCP {
		return "", ""
	}
	address, gateway, _ = strings.Cut(ipConfig, ";")
	return address, gateway
}
