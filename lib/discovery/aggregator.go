// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/qnetctl/qnetctl/lib/clock"
	"github.com/qnetctl/qnetctl/lib/netmodel"
)

// Snapshot is a copy of the raw collections at rebuild time. Devices
// are sorted by name.
type Snapshot struct {
	Profiles []netmodel.Connection
	Devices  []netmodel.Device
	Scans    []netmodel.Connection
}

// Aggregator owns the raw discovery collections and schedules
// debounced rebuilds. Safe for concurrent use.
type Aggregator struct {
	clock   clock.Clock
	delay   time.Duration
	rebuild func(Snapshot)
	logger  *slog.Logger

	mu       sync.Mutex
	profiles []netmodel.Connection
	scans    []netmodel.Connection
	devices  map[string]bool
	broken   map[string]bool
	timer    *clock.Timer
	pending  bool
	stopped  bool
}

// NewAggregator returns an Aggregator that calls rebuild delay after
// the last mutation of a burst. rebuild runs on the clock's timer
// goroutine and must not block.
func NewAggregator(clk clock.Clock, delay time.Duration, rebuild func(Snapshot), logger *slog.Logger) *Aggregator {
	return &Aggregator{
		clock:   clk,
		delay:   delay,
		rebuild: rebuild,
		logger:  logger,
		devices: make(map[string]bool),
		broken:  make(map[string]bool),
	}
}

// SetProfiles replaces the profile list. The last known carrier state
// of each profile's interface is applied to its quality.
func (a *Aggregator) SetProfiles(profiles []netmodel.Connection) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.profiles = append([]netmodel.Connection(nil), profiles...)
	for i := range a.profiles {
		if broken, known := a.broken[a.profiles[i].Interface]; known {
			applyCarrier(&a.profiles[i], broken)
		}
	}
	a.scheduleLocked()
}

// UpdateLinks records a device refresh. Unknown interfaces are added
// as wired devices, and the return value reports whether there were
// any so the caller can ask `iw dev` which of them are wireless. The
// quality sign of profiles on each link follows its carrier state.
func (a *Aggregator) UpdateLinks(links []Link) (newDevices bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, link := range links {
		if _, known := a.devices[link.Interface]; !known {
			a.devices[link.Interface] = false
			newDevices = true
			a.logger.Debug("new device", "interface", link.Interface)
		}
		a.broken[link.Interface] = link.Broken
		for i := range a.profiles {
			if a.profiles[i].Interface == link.Interface {
				applyCarrier(&a.profiles[i], link.Broken)
			}
		}
	}
	a.scheduleLocked()
	return newDevices
}

// applyCarrier makes quality negative when broken and non-negative
// otherwise, keeping its magnitude.
func applyCarrier(profile *netmodel.Connection, broken bool) {
	if profile.LinkBroken() != broken {
		profile.Quality = -profile.Quality
	}
}

// MarkWireless flags the named devices as wireless and returns those
// that were not already known to be. Names not seen by UpdateLinks are
// added.
func (a *Aggregator) MarkWireless(names []string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var newlyWireless []string
	for _, name := range names {
		if a.devices[name] {
			continue
		}
		a.devices[name] = true
		newlyWireless = append(newlyWireless, name)
	}
	if len(newlyWireless) > 0 {
		a.scheduleLocked()
	}
	return newlyWireless
}

// WirelessDevices returns the wireless device names, sorted.
func (a *Aggregator) WirelessDevices() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var names []string
	for name, wireless := range a.devices {
		if wireless {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// SetScanResults replaces the scan results.
func (a *Aggregator) SetScanResults(results []netmodel.Connection) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scans = append([]netmodel.Connection(nil), results...)
	a.scheduleLocked()
}

// RequestRebuild schedules a rebuild without changing any collection,
// for inputs the Aggregator does not own such as the enabled units.
func (a *Aggregator) RequestRebuild() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scheduleLocked()
}

// Pending reports whether a rebuild is scheduled.
func (a *Aggregator) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending
}

// Snapshot copies the current collections.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// Stop cancels any pending rebuild. Later mutations are recorded but
// schedule nothing.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	a.pending = false
	if a.timer != nil {
		a.timer.Stop()
	}
}

func (a *Aggregator) snapshotLocked() Snapshot {
	snapshot := Snapshot{
		Profiles: append([]netmodel.Connection(nil), a.profiles...),
		Scans:    append([]netmodel.Connection(nil), a.scans...),
		Devices:  make([]netmodel.Device, 0, len(a.devices)),
	}
	for name, wireless := range a.devices {
		snapshot.Devices = append(snapshot.Devices, netmodel.Device{Name: name, Wireless: wireless})
	}
	sort.Slice(snapshot.Devices, func(i, j int) bool {
		return snapshot.Devices[i].Name < snapshot.Devices[j].Name
	})
	return snapshot
}

// scheduleLocked arms the debounce timer, or re-arms it to the full
// delay if a rebuild is already pending.
func (a *Aggregator) scheduleLocked() {
	if a.stopped {
		return
	}
	a.pending = true
	if a.timer == nil {
		a.timer = a.clock.AfterFunc(a.delay, a.fire)
		return
	}
	a.timer.Reset(a.delay)
}

func (a *Aggregator) fire() {
	a.mu.Lock()
	if !a.pending || a.stopped {
		a.mu.Unlock()
		return
	}
	a.pending = false
	snapshot := a.snapshotLocked()
	a.mu.Unlock()

	a.rebuild(snapshot)
}
