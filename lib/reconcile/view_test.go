// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"testing"

	"github.com/qnetctl/qnetctl/lib/netmodel"
)

type countingObserver struct {
	added, updated, removed []string
}

func (o *countingObserver) Added(network Network) {
	o.added = append(o.added, network.DisplayName())
}

func (o *countingObserver) Updated(_, current Network) {
	o.updated = append(o.updated, current.DisplayName())
}

func (o *countingObserver) Removed(network Network) {
	o.removed = append(o.removed, network.DisplayName())
}

func (o *countingObserver) reset() {
	o.added, o.updated, o.removed = nil, nil, nil
}

func TestViewPreservesIdentity(t *testing.T) {
	observer := &countingObserver{}
	view := NewView(observer)

	view.Rebuild([]netmodel.Connection{
		{Profile: "home", SSID: "HomeNet", Type: netmodel.WPA},
	}, netmodel.EnabledSet{})
	first := view.Entries()
	if len(first) != 1 || len(observer.added) != 1 {
		t.Fatalf("initial rebuild: entries %v, observer %+v", first, observer)
	}
	observer.reset()

	changes := view.Rebuild(Merge(
		[]netmodel.Connection{{Profile: "home", SSID: "HomeNet", Type: netmodel.WPA}},
		nil,
		[]netmodel.Connection{{SSID: "HomeNet", MAC: "aa:bb", Type: netmodel.WPA2, Quality: 80}},
	), netmodel.EnabledSet{})

	if len(observer.updated) <= len(observer.added)+len(observer.removed) {
		t.Errorf("updates %v should outnumber adds %v and removes %v", observer.updated, observer.added, observer.removed)
	}
	second := view.Entries()
	if len(second) != 1 || second[0].ID != first[0].ID {
		t.Fatalf("identity lost: before %+v, after %+v", first, second)
	}
	if second[0].Type != netmodel.WPA2 || second[0].Quality != 80 {
		t.Errorf("entry not updated in place: %+v", second[0])
	}
	if len(changes.Updated) != 1 || len(changes.Added) != 0 || len(changes.Removed) != 0 {
		t.Errorf("changes = %+v", changes)
	}
}

func TestViewMatchKeyPriority(t *testing.T) {
	view := NewView(nil)
	view.Rebuild([]netmodel.Connection{
		{Profile: "home", SSID: "HomeNet"},
		{SSID: "Cafe"},
		{Interface: "eth1", Type: netmodel.Ethernet},
		{MAC: "ee:ee"},
	}, netmodel.EnabledSet{})
	before := view.Entries()

	changes := view.Rebuild([]netmodel.Connection{
		// Saving the cafe network as a profile keeps the entry: the
		// displayed entry is still keyed by its SSID.
		{Profile: "cafe", SSID: "Cafe"},
		{Profile: "home", SSID: "HomeNet"},
		{Interface: "eth1", Type: netmodel.Ethernet},
		{MAC: "ee:ee"},
	}, netmodel.EnabledSet{})

	after := view.Entries()
	if len(after) != 4 {
		t.Fatalf("entries = %+v", after)
	}
	if after[0].ID != before[0].ID || after[0].Profile != "home" {
		t.Errorf("home lost identity: %+v", after[0])
	}
	if after[1].ID != before[1].ID || after[1].Profile != "cafe" {
		t.Errorf("cafe lost identity: %+v", after[1])
	}
	if after[2].ID != before[2].ID || after[2].Interface != "eth1" {
		t.Errorf("eth1 lost identity: %+v", after[2])
	}
	// An entry with no profile, SSID or interface never matches.
	if len(changes.Removed) != 1 || changes.Removed[0].MAC != "ee:ee" {
		t.Errorf("removed = %+v, want the MAC-only entry", changes.Removed)
	}
	if len(changes.Added) != 1 || after[3].ID == before[3].ID {
		t.Errorf("added = %+v, want the MAC-only entry under a new ID", changes.Added)
	}

	// Once keyed by profile name, a plain scan of the SSID is a new entry.
	view.Rebuild([]netmodel.Connection{{SSID: "Cafe"}}, netmodel.EnabledSet{})
	if entries := view.Entries(); len(entries) != 1 || entries[0].ID == before[1].ID {
		t.Errorf("profile-keyed entry matched an SSID-only entry: %+v", entries)
	}

	seen := make(map[uint64]bool)
	for _, entry := range after {
		if seen[entry.ID] {
			t.Errorf("duplicate ID %d", entry.ID)
		}
		seen[entry.ID] = true
	}
}

func TestViewSSIDKeyMatchesByScanAlone(t *testing.T) {
	view := NewView(nil)
	view.Rebuild([]netmodel.Connection{{SSID: "Cafe", Quality: 30}}, netmodel.EnabledSet{})
	id := view.Entries()[0].ID
	view.Rebuild([]netmodel.Connection{{SSID: "Cafe", Quality: 60}}, netmodel.EnabledSet{})
	entries := view.Entries()
	if len(entries) != 1 || entries[0].ID != id || entries[0].Quality != 60 {
		t.Errorf("entries = %+v", entries)
	}
}

func TestViewAnnotatesAutoConnect(t *testing.T) {
	view := NewView(nil)
	view.Rebuild([]netmodel.Connection{
		{Profile: "wired", Interface: "eth0", Type: netmodel.Ethernet},
	}, netmodel.NewEnabledSet(netmodel.IfplugdUnit("eth0")))
	if !view.Entries()[0].AutoConnect {
		t.Error("ifplugd unit should enable the wired entry")
	}
	view.Rebuild([]netmodel.Connection{
		{Profile: "wired", Interface: "eth0", Type: netmodel.Ethernet, AutoConnect: true},
	}, netmodel.EnabledSet{})
	if view.Entries()[0].AutoConnect {
		t.Error("entry stayed enabled after its unit was disabled")
	}
}

func TestViewLookupAndConnections(t *testing.T) {
	view := NewView(nil)
	view.Rebuild([]netmodel.Connection{{Profile: "home"}, {Interface: "wlan0", Type: netmodel.Wireless}}, netmodel.EnabledSet{})
	if entry, ok := view.Lookup("wlan0"); !ok || entry.Interface != "wlan0" {
		t.Errorf("Lookup(wlan0) = %+v, %v", entry, ok)
	}
	if _, ok := view.Lookup("absent"); ok {
		t.Error("Lookup(absent) succeeded")
	}
	if got := view.Connections(); len(got) != 2 || got[0].Profile != "home" {
		t.Errorf("Connections() = %+v", got)
	}
}
