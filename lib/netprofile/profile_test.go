// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package netprofile

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/qnetctl/qnetctl/lib/netmodel"
)

func mustParse(t *testing.T, name, body string) netmodel.Connection {
	t.Helper()
	conn, err := Parse(name, strings.NewReader(body))
	if err != nil {
		t.Fatalf("Parse(%s): %v", name, err)
	}
	return conn
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want netmodel.Connection
	}{
		{
			name: "ethernet dhcp",
			body: "Description='Wired'\nConnection=ethernet\nInterface=eth0\nIP=dhcp\n",
			want: netmodel.Connection{
				Profile: "ethernet dhcp", Description: "'Wired'", Interface: "eth0",
				IPConfig: "dhcp", Type: netmodel.Ethernet, Quality: 100, AutoConnect: true,
			},
		},
		{
			name: "wpa with comments",
			body: "# generated\nConnection=wireless # radio\nInterface=wlan0\nSecurity=wpa\nESSID=HomeNet\nKey=secret\nIP=dhcp\nExcludeAuto=yes\n",
			want: netmodel.Connection{
				Profile: "wpa with comments", SSID: "HomeNet", Interface: "wlan0", Key: "secret",
				IPConfig: "dhcp", Type: netmodel.WPA,
			},
		},
		{
			name: "wep",
			body: "Connection=wireless\nSecurity=wep\nESSID=Old\n",
			want: netmodel.Connection{Profile: "wep", SSID: "Old", Type: netmodel.WEP, AutoConnect: true},
		},
		{
			name: "static",
			body: "Connection=ethernet\nIP=static\nAddress=10.0.0.2/24\nGateway=10.0.0.1\n",
			want: netmodel.Connection{
				Profile: "static", IPConfig: "10.0.0.2/24;10.0.0.1",
				Type: netmodel.Ethernet, Quality: 100, AutoConnect: true,
			},
		},
		{
			name: "dhcp trumps address",
			body: "Connection=ethernet\nAddress=10.0.0.2/24\nGateway=10.0.0.1\nIP=dhcp\nIP=static\n",
			want: netmodel.Connection{
				Profile: "dhcp trumps address", IPConfig: "dhcp",
				Type: netmodel.Ethernet, Quality: 100, AutoConnect: true,
			},
		},
		{
			name: "security ignored on ethernet",
			body: "Connection=ethernet\nSecurity=wpa\n",
			want: netmodel.Connection{Profile: "security ignored on ethernet", Type: netmodel.Ethernet, Quality: 100, AutoConnect: true},
		},
		{
			name: "unknown connection kind",
			body: "Connection=bond\nPriority=3\nCommented#=value\n",
			want: netmodel.Connection{Profile: "unknown connection kind", AutoConnect: true},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := mustParse(t, test.name, test.body)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Parse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	original := netmodel.Connection{
		Profile:     "cafe",
		SSID:        "Cafe",
		MAC:         "00:11:22:33:44:55",
		Interface:   "wlan0",
		IPConfig:    "192.168.1.5/24;192.168.1.1",
		Key:         EscapeKey(netmodel.WEP, "1A23B4C56D"),
		Type:        netmodel.WEP,
		AdHoc:       true,
		AutoConnect: false,
	}
	body := Serialize(original)
	for _, line := range []string{
		"Description='Written by QNetCtl'",
		"Connection=wireless",
		"IP=static",
		"Address=192.168.1.5/24",
		"Gateway=192.168.1.1",
		"ExcludeAuto=yes",
		"Security=wep",
		"AP=00:11:22:33:44:55",
		`Key=\"1A23B4C56D`,
		"AdHoc=yes",
	} {
		if !strings.Contains(body, line+"\n") {
			t.Errorf("serialized profile lacks %q:\n%s", line, body)
		}
	}

	parsed := mustParse(t, "cafe", body)
	original.Description = WrittenDescription
	if diff := cmp.Diff(original, parsed); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSerializeEthernet(t *testing.T) {
	body := Serialize(netmodel.Connection{Interface: "eth0", Type: netmodel.Ethernet, IPConfig: "dhcp"})
	want := "Description='Written by QNetCtl'\nConnection=ethernet\nInterface=eth0\nIP=dhcp\n"
	if body != want {
		t.Errorf("Serialize = %q, want %q", body, want)
	}
}

func TestSerializeSecurity(t *testing.T) {
	tests := map[netmodel.ConnectionType]string{
		netmodel.Wireless: "Security=none\n",
		netmodel.WEP:      "Security=wep\n",
		netmodel.WPA:      "Security=wpa\n",
		netmodel.WPA2:     "Security=wpa\n",
	}
	for typ, want := range tests {
		if body := Serialize(netmodel.Connection{Type: typ, AutoConnect: true}); !strings.Contains(body, want) {
			t.Errorf("Serialize(%v) lacks %q:\n%s", typ, want, body)
		}
	}
}

func TestEscapeKey(t *testing.T) {
	tests := []struct {
		typ  netmodel.ConnectionType
		key  string
		want string
	}{
		{netmodel.WEP, "1A23B4C56D", `\"1A23B4C56D`},
		{netmodel.WEP, "short", "short"},
		{netmodel.WEP, strings.Repeat("a", 26), `\"` + strings.Repeat("a", 26)},
		{netmodel.WPA, "1A23B4C56D", "1A23B4C56D"},
		{netmodel.WPA, `"quoted`, `\"quoted`},
	}
	for _, test := range tests {
		got := EscapeKey(test.typ, test.key)
		if got != test.want {
			t.Errorf("EscapeKey(%v, %q) = %q, want %q", test.typ, test.key, got, test.want)
		}
	}
	if got := UnescapeKey(`\"1A23B4C56D`); got != "1A23B4C56D" {
		t.Errorf("UnescapeKey = %q", got)
	}
}

func TestName(t *testing.T) {
	if got := Name(netmodel.Connection{Profile: "home", SSID: "HomeNet"}); got != "home" {
		t.Errorf("Name(profile) = %q", got)
	}
	if got := Name(netmodel.Connection{SSID: "HomeNet", Interface: "wlan0"}); got != "qnetctl-HomeNet" {
		t.Errorf("Name(ssid) = %q", got)
	}
	if got := Name(netmodel.Connection{Interface: "eth0"}); got != "qnetctl-eth0" {
		t.Errorf("Name(interface) = %q", got)
	}
}

func TestParseList(t *testing.T) {
	output := "  home\n* office\n\n  wired-eth0\n"
	want := []ListEntry{{Name: "home"}, {Name: "office", Active: true}, {Name: "wired-eth0"}}
	if diff := cmp.Diff(want, ParseList(output)); diff != "" {
		t.Errorf("ParseList mismatch (-want +got):\n%s", diff)
	}
	if got := ParseList(""); len(got) != 0 {
		t.Errorf("ParseList(\"\") = %v", got)
	}
}
