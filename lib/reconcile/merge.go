// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import "github.com/qnetctl/qnetctl/lib/netmodel"

// Merge builds the working set. devices should be sorted by name so
// the order of bare device entries is stable.
//
// A scan result merges into the first entry with the same non-empty
// SSID or the same non-empty MAC, raising its type to the more
// specific of the two and taking over quality, MAC and ad-hoc mode.
// Scan results are not deduplicated first: two access points with one
// SSID both land on the same entry and the later one wins.
//
// A device already named by some entry's interface is skipped; every
// other device gets a bare Wireless or Ethernet entry.
func Merge(profiles []netmodel.Connection, devices []netmodel.Device, scans []netmodel.Connection) []netmodel.Connection {
	working := make([]netmodel.Connection, 0, len(profiles)+len(scans)+len(devices))
	working = append(working, profiles...)

	for _, scan := range scans {
		if i := findScanMatch(working, scan); i >= 0 {
			entry := &working[i]
			entry.Type = netmodel.MaxType(entry.Type, scan.Type)
			entry.Quality = scan.Quality
			entry.MAC = scan.MAC
			entry.AdHoc = scan.AdHoc
			continue
		}
		working = append(working, scan)
	}

	for _, device := range devices {
		if referencesInterface(working, device.Name) {
			continue
		}
		entry := netmodel.Connection{Interface: device.Name, Type: netmodel.Ethernet}
		if device.Wireless {
			entry.Type = netmodel.Wireless
		}
		working = append(working, entry)
	}
	return working
}

func findScanMatch(working []netmodel.Connection, scan netmodel.Connection) int {
	for i, entry := range working {
		if scan.SSID != "" && entry.SSID == scan.SSID {
			return i
		}
		if scan.MAC != "" && entry.MAC == scan.MAC {
			return i
		}
	}
	return -1
}

func referencesInterface(working []netmodel.Connection, iface string) bool {
	for _, entry := range working {
		if entry.Interface == iface {
			return true
		}
	}
	return false
}

// Annotate sets each entry's AutoConnect flag from enabled. Wireless
// entries on an interface run by the wireless autoconnect daemon keep
// the flag they already carry, which for a profile comes from its
// ExcludeAuto field. Every other entry is enabled when its profile
// name is, or, for wired entries, when its interface's failover unit
// is.
func Annotate(entries []netmodel.Connection, enabled netmodel.EnabledSet) {
	for i := range entries {
		entry := &entries[i]
		if entry.Type.IsWireless() && enabled.PolicyManaged(entry.Interface) {
			continue
		}
		if entry.Type.IsWireless() {
			entry.AutoConnect = enabled.Contains(entry.Profile)
			continue
		}
		entry.AutoConnect = enabled.WiredAutoConnect(entry.Interface, entry.Profile)
	}
}
