// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"github.com/qnetctl/qnetctl/lib/command"
	"github.com/qnetctl/qnetctl/lib/discovery"
	"github.com/qnetctl/qnetctl/lib/ipc"
	"github.com/qnetctl/qnetctl/lib/netprofile"
)

// refreshProfiles reloads the profile list, then checks devices. A
// refresh requested while one runs is repeated once it finished.
func (c *Controller) refreshProfiles() {
	if c.profilesBusy {
		c.profilesStale = true
		return
	}
	c.profilesBusy = true
	c.query(func(result command.Result) {
		if err := result.Err(); err != nil {
			c.logger.Warn("listing profiles failed", "error", err)
			c.aggregator.RequestRebuild()
			c.profilesDone()
			return
		}
		c.loadProfiles(netprofile.ParseList(result.Output))
	}, c.tools.Netctl, "list")
}

// loadProfiles reads the listed profile files off the loop.
func (c *Controller) loadProfiles(entries []netprofile.ListEntry) {
	c.inflight++
	go func() {
		profiles := c.profiles.Load(entries)
		c.post(func() {
			c.inflight--
			c.dirty = true
			c.logger.Debug("profiles loaded", "count", len(profiles))
			c.aggregator.SetProfiles(profiles)
			c.profilesDone()
			c.checkDevices()
		})
	}()
}

func (c *Controller) profilesDone() {
	c.profilesBusy = false
	if c.profilesStale {
		c.profilesStale = false
		c.refreshProfiles()
	}
}

// checkDevices refreshes the link list and identifies new devices.
func (c *Controller) checkDevices() {
	c.query(func(result command.Result) {
		if err := result.Err(); err != nil {
			c.logger.Warn("listing links failed", "error", err)
			c.aggregator.RequestRebuild()
			return
		}
		if c.aggregator.UpdateLinks(discovery.ParseLinks(result.Output)) {
			c.identifyWireless()
		}
	}, c.tools.IP, "link", "show")
}

// identifyWireless asks iw which devices are wireless and scans the
// ones that just turned out to be.
func (c *Controller) identifyWireless() {
	c.query(func(result command.Result) {
		c.aggregator.RequestRebuild()
		if err := result.Err(); err != nil {
			c.logger.Warn("listing wireless devices failed", "error", err)
			return
		}
		for _, iface := range c.aggregator.MarkWireless(discovery.ParseWirelessInterfaces(result.Output)) {
			c.logger.Info("wireless device found", "interface", iface)
			c.scan(iface)
		}
	}, c.tools.IW, "dev")
}

// refreshUnits reloads the enabled netctl units into the resolver.
func (c *Controller) refreshUnits() {
	c.query(func(result command.Result) {
		c.aggregator.RequestRebuild()
		if err := result.Err(); err != nil {
			c.logger.Warn("listing unit files failed", "error", err)
			return
		}
		units := discovery.ParseEnabledUnits(result.Output)
		c.logger.Debug("enabled units", "units", units)
		c.resolver.SetEnabled(units)
	}, c.tools.Systemctl, "list-unit-files")
}

func (c *Controller) scan(iface string) {
	c.scans++
	c.send(ipc.NewRequest(ipc.ActionScanWifi, iface))
}

// rescan is the periodic tick: check devices, and scan every wireless
// device unless an earlier scan has not answered yet.
func (c *Controller) rescan() {
	c.checkDevices()
	if c.scans > 0 {
		c.logger.Debug("skipping rescan, scans outstanding", "outstanding", c.scans)
		return
	}
	for _, iface := range c.aggregator.WirelessDevices() {
		c.scan(iface)
	}
}

// handleReply routes one helper reply and wakes its Call waiter.
func (c *Controller) handleReply(reply ipc.Reply) {
	action := ipc.ParseTag(reply.Tag).Action
	switch {
	case action == ipc.ActionScanWifi:
		if c.scans > 0 {
			c.scans--
		}
		c.dirty = true
		if reply.Failed() {
			c.logger.Warn("scan failed", "result", reply.Result)
			c.aggregator.RequestRebuild()
			break
		}
		results := discovery.ParseScan(reply.Result)
		c.logger.Debug("scan results", "networks", len(results))
		c.aggregator.SetScanResults(results)
	case reply.Failed() && isUnitChange(action):
		// The enabled set assumed the change went through.
		c.logger.Warn("enable or disable failed", "tag", reply.Tag, "result", reply.Result)
		c.refreshUnits()
	case reply.Failed():
		c.logger.Warn("request failed", "tag", reply.Tag, "result", reply.Result)
	case action == ipc.ActionSwitchToProfile, action == ipc.ActionRemoveProfile, action == ipc.ActionWriteProfile:
		c.refreshProfiles()
	default:
		c.logger.Debug("reply", "tag", reply.Tag)
	}

	if queue := c.waiters[reply.Tag]; len(queue) > 0 {
		queue[0] <- reply
		if len(queue) == 1 {
			delete(c.waiters, reply.Tag)
		} else {
			c.waiters[reply.Tag] = queue[1:]
		}
	}
	c.checkSettled()
}

func isUnitChange(action ipc.Action) bool {
	switch action {
	case ipc.ActionEnableProfile, ipc.ActionDisableProfile, ipc.ActionEnableService, ipc.ActionDisableService:
		return true
	}
	return false
}
