// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the timers used by the front end and the
// privileged helper: the rebuild debounce, the periodic rescan, the
// delayed autoconnect pass, and the link-up poll.
//
// Components take a Clock instead of calling the time package
// directly. Production code passes Real(); tests pass Fake() and move
// time forward with Advance, so debounce and poll behavior is checked
// without sleeping:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	aggregator := discovery.NewAggregator(fake, 250*time.Millisecond, rebuild, logger)
//	aggregator.SetProfiles(profiles)
//	fake.Advance(250 * time.Millisecond) // rebuild fires once
package clock
