// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package netmodel

import "testing"

func TestConnectionTypeOrder(t *testing.T) {
	order := []ConnectionType{Unknown, Ethernet, Wireless, WEP, WPA, WPA1, WPA2}
	for i := 1; i < len(order); i++ {
		if !(order[i-1] < order[i]) {
			t.Errorf("%v should sort before %v", order[i-1], order[i])
		}
	}
	if got := MaxType(Wireless, WPA2); got != WPA2 {
		t.Errorf("MaxType(Wireless, WPA2) = %v", got)
	}
	if got := MaxType(WPA1, WEP); got != WPA1 {
		t.Errorf("MaxType(WPA1, WEP) = %v", got)
	}
	if Ethernet.IsWireless() || Unknown.IsWireless() || !WEP.IsWireless() {
		t.Error("IsWireless misclassifies types")
	}
}

func TestParseConnectionType(t *testing.T) {
	for _, want := range []ConnectionType{Unknown, Ethernet, Wireless, WEP, WPA, WPA1, WPA2} {
		got, err := ParseConnectionType(want.String())
		if err != nil || got != want {
			t.Errorf("ParseConnectionType(%q) = %v, %v", want.String(), got, err)
		}
	}
	if got, err := ParseConnectionType(" WPA2 "); err != nil || got != WPA2 {
		t.Errorf("ParseConnectionType is not case insensitive: %v, %v", got, err)
	}
	if _, err := ParseConnectionType("token-ring"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestScanQuality(t *testing.T) {
	tests := []struct {
		dBm  float64
		want int
	}{
		{-90, 0},
		{-70, 100},
		{-100, 0},
		{-60, 100},
		{-80, 50},
		{-89, 5},
	}
	for _, test := range tests {
		if got := ScanQuality(test.dBm); got != test.want {
			t.Errorf("ScanQuality(%v) = %d, want %d", test.dBm, got, test.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		conn Connection
		want string
	}{
		{"profile wins", Connection{Profile: "home", SSID: "HomeNet", Interface: "wlan0"}, "home"},
		{"ssid", Connection{SSID: "Cafe", MAC: "aa:bb", Interface: "wlan0"}, "Cafe"},
		{"mac", Connection{MAC: "aa:bb", Interface: "wlan0"}, "aa:bb"},
		{"interface", Connection{Interface: "wlan0"}, "wlan0"},
		{"placeholder", Connection{}, PlaceholderName},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.conn.DisplayName(); got != test.want {
				t.Errorf("DisplayName() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestMatchKey(t *testing.T) {
	home := Connection{Profile: "home", SSID: "HomeNet"}
	if key := home.MatchKey(); key != (MatchKey{KeyProfile, "home"}) {
		t.Errorf("MatchKey() = %+v", key)
	}
	// A scan result for the same SSID but without the profile name is
	// not the same entry under a profile key.
	if (Connection{SSID: "HomeNet"}).Matches(home.MatchKey()) {
		t.Error("profile key matched an entry without a profile")
	}
	if !(Connection{SSID: "HomeNet", Interface: "wlan1"}).Matches(MatchKey{KeySSID, "HomeNet"}) {
		t.Error("SSID key did not match")
	}
	if key := (Connection{MAC: "aa:bb"}).MatchKey(); key.Kind != KeyNone {
		t.Errorf("MAC-only entry should have no key, got %+v", key)
	}
	if (Connection{}).Matches(MatchKey{Kind: KeyNone}) {
		t.Error("KeyNone must never match")
	}
}

func TestQualityBar(t *testing.T) {
	tests := []struct {
		quality int
		want    string
	}{
		{100, "100%  ★★★★★"},
		{0, "0%  ☆☆☆☆☆"},
		{-100, "0%  ☆☆☆☆☆"},
		{50, "50%  ★★★☆☆"},
		{49, "49%  ★★☆☆☆"},
	}
	for _, test := range tests {
		if got := (Connection{Quality: test.quality}).QualityBar(); got != test.want {
			t.Errorf("QualityBar(%d) = %q, want %q", test.quality, got, test.want)
		}
	}
}

func TestEnabledSet(t *testing.T) {
	set := NewEnabledSet("home", "", IfplugdUnit("eth0"), "home")
	if set.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (%v)", set.Len(), set.Names())
	}
	if !set.WiredAutoConnect("eth0", "") || !set.WiredAutoConnect("eth1", "home") {
		t.Error("WiredAutoConnect missed an enabled name")
	}
	if set.Contains("") {
		t.Error("empty name reported as enabled")
	}
	set.Remove("home")
	set.Add(AutoUnit("wlan0"))
	if set.Contains("home") || !set.PolicyManaged("wlan0") {
		t.Errorf("unexpected contents %v", set.Names())
	}

	names := set.Names()
	names[0] = "mutated"
	if set.Contains("mutated") {
		t.Error("Names() must return a copy")
	}
}

func TestUnitNames(t *testing.T) {
	if got := IfplugdUnit("eth0"); got != "netctl-ifplugd@eth0.service" {
		t.Errorf("IfplugdUnit = %q", got)
	}
	if got := AutoUnit("wlan0"); got != "netctl-auto@wlan0.service" {
		t.Errorf("AutoUnit = %q", got)
	}
	if !IsServiceUnit("netctl@home.service") || IsServiceUnit("home") {
		t.Error("IsServiceUnit misclassifies")
	}
	if !IsInterfaceUnit(AutoUnit("wlan0")) || IsInterfaceUnit("netctl@home.service") {
		t.Error("IsInterfaceUnit misclassifies")
	}
}
