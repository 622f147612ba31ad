// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package netprofile

import (
	"bufio"
	"io"
	"strings"

	"github.com/qnetctl/qnetctl/lib/netmodel"
)

// WrittenDescription is the Description line of every profile this
// package serializes.
const WrittenDescription = "'Written by QNetCtl'"

// NamePrefix is prepended to the SSID or interface of an entry that
// has no profile name when it is first saved.
const NamePrefix = "qnetctl-"

// Parse reads a profile body. The result has Profile set to name,
// AutoConnect true unless ExcludeAuto=yes, and Quality 100 for
// ethernet profiles.
//
// IP=dhcp wins over Address and Gateway wherever it appears. A static
// configuration is reported as "address;gateway", or just "address"
// when no gateway is set.
func Parse(name string, r io.Reader) (netmodel.Connection, error) {
	conn := netmodel.Connection{Profile: name, AutoConnect: true}

	var security netmodel.ConnectionType
	var ipMode, address, gateway string
	haveGateway := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line, _, _ := strings.Cut(scanner.Text(), "#")
		key, value, found := strings.Cut(strings.TrimSpace(line), "=")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Description":
			conn.Description = value
		case "Connection":
			switch value {
			case "ethernet":
				conn.Type = netmodel.Ethernet
				conn.Quality = 100
			case "wireless":
				conn.Type = netmodel.Wireless
			}
		case "Interface":
			conn.Interface = value
		case "ESSID":
			conn.SSID = value
		case "AP":
			conn.MAC = value
		case "Security":
			switch value {
			case "wep":
				security = netmodel.WEP
			case "wpa":
				security = netmodel.WPA
			}
		case "Key":
			conn.Key = value
		case "IP":
			if ipMode != netmodel.DHCP {
				ipMode = value
			}
		case "Address":
			address = value
		case "Gateway":
			gateway = value
			haveGateway = true
		case "ExcludeAuto":
			conn.AutoConnect = value != "yes"
		case "AdHoc":
			conn.AdHoc = value == "yes"
		}
	}
	if err := scanner.Err(); err != nil {
		return conn, err
	}

	if conn.Type == netmodel.Wireless && security != netmodel.Unknown {
		conn.Type = security
	}

	switch {
	case ipMode == netmodel.DHCP:
		conn.IPConfig = netmodel.DHCP
	case address != "":
		conn.IPConfig = address
		if haveGateway {
			conn.IPConfig += ";" + gateway
		}
	default:
		conn.IPConfig = ipMode
	}
	return conn, nil
}

// Name returns the file name an entry is saved under.
func Name(conn netmodel.Connection) string {
	if conn.Profile != "" {
		return conn.Profile
	}
	if conn.SSID != "" {
		return NamePrefix + conn.SSID
	}
	return NamePrefix + conn.Interface
}

// EscapeKey converts a key as typed by a user into its file form.
// 10 and 26 character WEP keys are hex and get a leading '"'; a key
// starting with '"' gets a backslash in front of it.
func EscapeKey(typ netmodel.ConnectionType, key string) string {
	if typ == netmodel.WEP && (len(key) == 10 || len(key) == 26) {
		key = `"` + key
	}
	if strings.HasPrefix(key, `"`) {
		key = `\` + key
	}
	return key
}

// UnescapeKey reverses EscapeKey for display and editing.
func UnescapeKey(key string) string {
	if rest, ok := strings.CutPrefix(key, `\"`); ok {
		return rest
	}
	return key
}

// Serialize renders conn as a profile body. conn.Key must already be
// in file form (see EscapeKey).
func Serialize(conn netmodel.Connection) string {
	wireless := conn.Type.IsWireless()

	var b strings.Builder
	b.WriteString("Description=" + WrittenDescription + "\n")
	if wireless {
		b.WriteString("Connection=wireless\n")
	} else {
		b.WriteString("Connection=ethernet\n")
	}
	b.WriteString("Interface=" + conn.Interface + "\n")

	if conn.IPConfig == netmodel.DHCP || conn.IPConfig == "" {
		b.WriteString("IP=dhcp\n")
	} else {
		address, gateway, haveGateway := strings.Cut(conn.IPConfig, ";")
		b.WriteString("IP=static\nAddress=" + address + "\n")
		if haveGateway {
			b.WriteString("Gateway=" + gateway + "\n")
		}
	}

	if wireless {
		security := "none"
		switch {
		case conn.Type > netmodel.WEP:
			security = "wpa"
		case conn.Type == netmodel.WEP:
			security = "wep"
		}
		if !conn.AutoConnect {
			b.WriteString("ExcludeAuto=yes\n")
		}
		b.WriteString("Security=" + security + "\n")
		b.WriteString("ESSID=" + conn.SSID + "\n")
		b.WriteString("AP=" + conn.MAC + "\n")
		b.WriteString("Key=" + conn.Key + "\n")
		if conn.AdHoc {
			b.WriteString("AdHoc=yes\n")
		} else {
			b.WriteString("AdHoc=no\n")
		}
	}
	return b.String()
}

// ListEntry is one line of `netctl list`.
type ListEntry struct {
	Name   string
	Active bool
}

// ParseList parses `netctl list` output. The active profile is marked
// with a leading "* ".
func ParseList(output string) []ListEntry {
	var entries []ListEntry
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if name, active := strings.CutPrefix(line, "* "); active {
			entries = append(entries, ListEntry{Name: strings.TrimSpace(name), Active: true})
			continue
		}
		entries = append(entries, ListEntry{Name: strings.TrimSpace(line)})
	}
	return entries
}
