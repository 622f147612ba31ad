// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"strconv"
	"strings"

	"github.com/qnetctl/qnetctl/lib/netmodel"
)

// Link is one broadcast-capable interface from `ip link show`.
type Link struct {
	Interface string
	// Broken is set when the link reports NO-CARRIER.
	Broken bool
}

// ParseLinks extracts broadcast-capable links. Loopback and
// point-to-point devices are skipped.
func ParseLinks(output string) []Link {
	var links []Link
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "BROADCAST") {
			continue
		}
		fields := strings.SplitN(line, ":", 3)
		if len(fields) < 2 {
			continue
		}
		name := strings.TrimSpace(fields[1])
		if name == "" {
			continue
		}
		links = append(links, Link{
			Interface: name,
			Broken:    strings.Contains(line, "NO-CARRIER"),
		})
	}
	return links
}

// LinkUp reports whether `ip link show <iface>` output carries the
// administrative UP flag. Operational state is not considered: a
// wireless interface that is up but not associated reports "state
// DOWN" and can still scan.
func LinkUp(output string) bool {
	start := strings.IndexByte(output, '<')
	end := strings.IndexByte(output, '>')
	if start < 0 || end < start {
		return false
	}
	for _, flag := range strings.Split(output[start+1:end], ",") {
		if flag == "UP" {
			return true
		}
	}
	return false
}

// ParseWirelessInterfaces returns the interface names listed by
// `iw dev`.
func ParseWirelessInterfaces(output string) []string {
	var names []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		rest, ok := strings.CutPrefix(line, "Interface")
		if !ok {
			continue
		}
		if name := strings.TrimSpace(rest); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// ParseScan parses `iw dev <iface> scan` output. Each BSS block
// yields one entry with MAC, SSID, Type, Quality and AdHoc set.
//
// Type starts at Wireless and takes the maximum over the privacy bit
// (WEP), a WPA element (WPA1) and an RSN element (WPA2). Quality is
// the signal mapped through [netmodel.ScanQuality].
func ParseScan(output string) []netmodel.Connection {
	var results []netmodel.Connection
	for _, block := range strings.Split(output, "\nBSS") {
		var lines []string
		for _, line := range strings.Split(block, "\n") {
			if simplified := simplify(line); simplified != "" {
				lines = append(lines, simplified)
			}
		}
		if len(lines) == 0 {
			continue
		}

		result := netmodel.Connection{
			Type: netmodel.Wireless,
			MAC:  bssid(lines[0]),
		}
		for _, field := range lines[1:] {
			switch {
			case strings.HasPrefix(field, "capability"):
				if hasWord(field, "Privacy") {
					result.Type = netmodel.MaxType(result.Type, netmodel.WEP)
				}
				if hasWord(field, "IBSS") {
					result.AdHoc = true
				}
			case strings.HasPrefix(field, "signal:"):
				value, _, _ := strings.Cut(strings.TrimSpace(strings.TrimPrefix(field, "signal:")), " ")
				if dBm, err := strconv.ParseFloat(value, 64); err == nil {
					result.Quality = netmodel.ScanQuality(dBm)
				}
			case strings.HasPrefix(field, "SSID:"):
				result.SSID = strings.TrimSpace(strings.TrimPrefix(field, "SSID:"))
			case strings.HasPrefix(field, "RSN:"):
				result.Type = netmodel.MaxType(result.Type, netmodel.WPA2)
			case strings.HasPrefix(field, "WPA:"):
				result.Type = netmodel.MaxType(result.Type, netmodel.WPA1)
			}
		}
		results = append(results, result)
	}
	return results
}

// bssid extracts the MAC from a block header such as
// "BSS 00:11:22:33:44:55(on wlan0) -- associated".
func bssid(header string) string {
	header = strings.TrimPrefix(header, "BSS ")
	header, _, _ = strings.Cut(header, " ")
	header, _, _ = strings.Cut(header, "(")
	return header
}

// simplify trims line and collapses internal whitespace runs to one
// space.
func simplify(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

func hasWord(line, word string) bool {
	for _, field := range strings.Fields(line) {
		if field == word {
			return true
		}
	}
	return false
}

// ParseEnabledUnits extracts the enabled netctl names from
// `systemctl list-unit-files`. Interface units
// (netctl-ifplugd@<iface>.service, netctl-auto@<iface>.service) are
// kept whole; netctl@<profile>.service is reduced to the profile name.
func ParseEnabledUnits(output string) []string {
	var names []string
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[1] != "enabled" {
			continue
		}
		unit := fields[0]
		if !strings.HasPrefix(unit, "netctl") || !netmodel.IsServiceUnit(unit) {
			continue
		}
		if netmodel.IsInterfaceUnit(unit) {
			names = append(names, unit)
			continue
		}
		_, instance, found := strings.Cut(unit, "@")
		if !found {
			continue
		}
		profile := unescapeUnit(strings.TrimSuffix(instance, ".service"))
		if profile != "" {
			names = append(names, profile)
		}
	}
	return names
}

// unescapeUnit reverses systemd's \xNN escaping of instance names.
func unescapeUnit(name string) string {
	if !strings.Contains(name, `\x`) {
		return name
	}
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		if name[i] == '\\' && i+3 < len(name) && name[i+1] == 'x' {
			if value, err := strconv.ParseUint(name[i+2:i+4], 16, 8); err == nil {
				b.WriteByte(byte(value))
				i += 3
				continue
			}
		}
		b.WriteByte(name[i])
	}
	return b.String()
}
