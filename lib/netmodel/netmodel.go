// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package netmodel

import (
	"fmt"
	"strings"
)

// ConnectionType is totally ordered from least to most specific.
// Merges keep the larger value.
type ConnectionType int

const (
	Unknown ConnectionType = iota
	Ethernet
	Wireless
	WEP
	WPA
	WPA1
	WPA2
)

var typeNames = [...]string{
	Unknown:  "unknown",
	Ethernet: "ethernet",
	Wireless: "wireless",
	WEP:      "wep",
	WPA:      "wpa",
	WPA1:     "wpa1",
	WPA2:     "wpa2",
}

func (t ConnectionType) String() string {
	if t < Unknown || int(t) >= len(typeNames) {
		return fmt.Sprintf("ConnectionType(%d)", int(t))
	}
	return typeNames[t]
}

// ParseConnectionType is the inverse of String. Matching is case
// insensitive.
func ParseConnectionType(s string) (ConnectionType, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	for i, name := range typeNames {
		if name == lower {
			return ConnectionType(i), nil
		}
	}
	return Unknown, fmt.Errorf("unknown connection type %q", s)
}

// IsWireless reports whether t is any wireless type, secured or not.
func (t ConnectionType) IsWireless() bool { return t > Ethernet }

// MaxType returns the more specific of a and b.
func MaxType(a, b ConnectionType) ConnectionType {
	if a > b {
		return a
	}
	return b
}

// Describe returns the human label for the security column.
func (t ConnectionType) Describe() string {
	switch t {
	case Wireless:
		return "Insecure"
	case WEP:
		return "Security: WEP"
	case WPA:
		return "Security: WPA"
	case WPA1:
		return "Security: WPA1"
	case WPA2:
		return "Security: WPA2"
	default:
		return "Wired"
	}
}

// PlaceholderName is the display name of an entry with no profile,
// SSID, MAC or interface.
const PlaceholderName = "Nameless Network"

// DHCP is the IPConfig value of a dynamically configured profile.
// Any other non-empty value has the form "address;gateway" with the
// gateway part optional.
const DHCP = "dhcp"

// Connection is the record shared by profiles, scan results and
// unified entries. A profile has Profile set; a scan result or a bare
// device entry does not.
type Connection struct {
	Profile     string `json:"profile,omitempty"`
	Description string `json:"description,omitempty"`
	SSID        string `json:"ssid,omitempty"`
	MAC         string `json:"mac,omitempty"`
	Interface   string `json:"interface,omitempty"`
	IPConfig    string `json:"ip,omitempty"`
	Key         string `json:"-"`

	Type ConnectionType `json:"type"`

	// Quality is 0-100 for scanned networks and 100 for a configured
	// wired profile. A negative value marks a wired profile whose link
	// has no carrier.
	Quality int `json:"quality"`

	AdHoc       bool `json:"adhoc,omitempty"`
	AutoConnect bool `json:"autoconnect"`
	Active      bool `json:"active,omitempty"`
}

// DisplayName returns the first non-empty of profile name, SSID, MAC
// and interface, or [PlaceholderName].
func (c Connection) DisplayName() string {
	for _, candidate := range []string{c.Profile, c.SSID, c.MAC, c.Interface} {
		if candidate != "" {
			return candidate
		}
	}
	return PlaceholderName
}

// KeyKind says which field a [MatchKey] was taken from.
type KeyKind int

const (
	KeyProfile KeyKind = iota
	KeySSID
	KeyInterface
	// KeyNone never matches anything.
	KeyNone
)

// MatchKey identifies a unified entry across rebuilds.
type MatchKey struct {
	Kind  KeyKind
	Value string
}

// MatchKey returns c's identity: profile name, else SSID, else
// interface.
func (c Connection) MatchKey() MatchKey {
	switch {
	case c.Profile != "":
		return MatchKey{Kind: KeyProfile, Value: c.Profile}
	case c.SSID != "":
		return MatchKey{Kind: KeySSID, Value: c.SSID}
	case c.Interface != "":
		return MatchKey{Kind: KeyInterface, Value: c.Interface}
	}
	return MatchKey{Kind: KeyNone}
}

// Matches reports whether c is identified by key. Only the field
// named by key.Kind is compared.
func (c Connection) Matches(key MatchKey) bool {
	switch key.Kind {
	case KeyProfile:
		return c.Profile == key.Value
	case KeySSID:
		return c.SSID == key.Value
	case KeyInterface:
		return c.Interface == key.Value
	}
	return false
}

// LinkBroken reports whether the link-broken flag is set.
func (c Connection) LinkBroken() bool { return c.Quality < 0 }

// QualityBar renders quality as "<n>%  " followed by five stars,
// round(n/20) of them filled.
func (c Connection) QualityBar() string {
	quality := max(0, c.Quality)
	filled := (quality + 10) / 20
	return fmt.Sprintf("%d%%  %s%s", quality,
		strings.Repeat("★", filled), strings.Repeat("☆", 5-filled))
}

// Device is a live network interface.
type Device struct {
	Name     string
	Wireless bool
}

// ScanQuality maps a signal level in dBm onto 0-100: -90 dBm and below
// is 0, -70 dBm and above is 100.
func ScanQuality(dBm float64) int {
	return min(100, max(0, int(5*(dBm+90))))
}
