// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"sync"

	"github.com/qnetctl/qnetctl/lib/netmodel"
)

// Network is one entry of the unified list. ID is assigned when the
// entry first appears and never changes.
type Network struct {
	ID uint64 `json:"id"`
	netmodel.Connection
}

// Observer is told about every change a rebuild makes. Updated is
// called for every entry that survived, whether or not its fields
// changed; compare previous and current to tell.
type Observer interface {
	Added(network Network)
	Updated(previous, current Network)
	Removed(network Network)
}

// Changes summarizes one rebuild.
type Changes struct {
	Added   []Network
	Updated []Network
	Removed []Network
}

// View is the identity-bearing unified list. Safe for concurrent use;
// observer callbacks run with the View locked and must not call back
// into it.
type View struct {
	mu       sync.Mutex
	entries  []Network
	nextID   uint64
	observer Observer
}

// NewView returns an empty view. observer may be nil.
func NewView(observer Observer) *View {
	return &View{observer: observer, nextID: 1}
}

// Rebuild annotates working with enabled and diffs it into the view.
// working is consumed.
func (v *View) Rebuild(working []netmodel.Connection, enabled netmodel.EnabledSet) Changes {
	Annotate(working, enabled)

	v.mu.Lock()
	defer v.mu.Unlock()

	var changes Changes
	remaining := working
	kept := make([]Network, 0, len(v.entries)+len(working))
	for _, entry := range v.entries {
		key := entry.MatchKey()
		index := -1
		for i := range remaining {
			if remaining[i].Matches(key) {
				index = i
				break
			}
		}
		if index < 0 {
			changes.Removed = append(changes.Removed, entry)
			if v.observer != nil {
				v.observer.Removed(entry)
			}
			continue
		}

		updated := Network{ID: entry.ID, Connection: remaining[index]}
		remaining = append(remaining[:index:index], remaining[index+1:]...)
		kept = append(kept, updated)
		changes.Updated = append(changes.Updated, updated)
		if v.observer != nil {
			v.observer.Updated(entry, updated)
		}
	}

	for _, conn := range remaining {
		added := Network{ID: v.nextID, Connection: conn}
		v.nextID++
		kept = append(kept, added)
		changes.Added = append(changes.Added, added)
		if v.observer != nil {
			v.observer.Added(added)
		}
	}

	v.entries = kept
	return changes
}

// Entries returns a copy of the current list in display order.
func (v *View) Entries() []Network {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Network(nil), v.entries...)
}

// Connections returns the current list without IDs, for the
// autoconnect resolver.
func (v *View) Connections() []netmodel.Connection {
	v.mu.Lock()
	defer v.mu.Unlock()
	connections := make([]netmodel.Connection, len(v.entries))
	for i, entry := range v.entries {
		connections[i] = entry.Connection
	}
	return connections
}

// Lookup returns the entry with the given display name.
func (v *View) Lookup(name string) (Network, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, entry := range v.entries {
		if entry.DisplayName() == name {
			return entry, true
		}
	}
	return Network{}, false
}
