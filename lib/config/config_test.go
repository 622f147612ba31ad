// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "qnetctl.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Production {
		t.Errorf("expected environment=production, got %s", cfg.Environment)
	}
	if cfg.Paths.Profiles != "/etc/netctl" {
		t.Errorf("expected profiles=/etc/netctl, got %s", cfg.Paths.Profiles)
	}
	if cfg.Timing.RescanInterval != 8*time.Second {
		t.Errorf("expected rescan_interval=8s, got %s", cfg.Timing.RescanInterval)
	}
	if cfg.Timing.AutoconnectDelay != 30*time.Second {
		t.Errorf("expected autoconnect_delay=30s, got %s", cfg.Timing.AutoconnectDelay)
	}
	if cfg.Timing.RebuildDelay != 250*time.Millisecond {
		t.Errorf("expected rebuild_delay=250ms, got %s", cfg.Timing.RebuildDelay)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoad_WithoutConfigUsesDefaults(t *testing.T) {
	t.Setenv(EnvVar, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() without %s failed: %v", EnvVar, err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() differs from Default() (-want +got):\n%s", diff)
	}
}

func TestLoad_WithConfigEnv(t *testing.T) {
	configPath := writeConfig(t, `
environment: development
paths:
  profiles: /test/netctl
`)
	t.Setenv(EnvVar, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Paths.Profiles != "/test/netctl" {
		t.Errorf("expected profiles=/test/netctl, got %s", cfg.Paths.Profiles)
	}
}

func TestResolve_FlagWinsOverEnv(t *testing.T) {
	t.Setenv(EnvVar, writeConfig(t, "paths:\n  socket: /env/tool.sock\n"))
	flagPath := writeConfig(t, "paths:\n  socket: /flag/tool.sock\n")

	cfg, err := Resolve(flagPath)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if cfg.Paths.Socket != "/flag/tool.sock" {
		t.Errorf("expected socket from --config, got %s", cfg.Paths.Socket)
	}
}

func TestLoadFile(t *testing.T) {
	configPath := writeConfig(t, `
environment: production

tools:
  netctl: /opt/netctl/bin/netctl
  ifplugd: /usr/sbin/ifplugd

paths:
  socket: /run/custom/tool.sock

leverage: sudo -n

timing:
  rescan_interval: 15s
  link_poll_interval: 250ms
  link_poll_limit: 0
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Tools.Netctl != "/opt/netctl/bin/netctl" {
		t.Errorf("expected netctl=/opt/netctl/bin/netctl, got %s", cfg.Tools.Netctl)
	}
	if cfg.Tools.Ifplugd != "/usr/sbin/ifplugd" {
		t.Errorf("expected ifplugd=/usr/sbin/ifplugd, got %s", cfg.Tools.Ifplugd)
	}
	if cfg.Tools.IP != "/usr/bin/ip" {
		t.Errorf("unset tool lost its default: ip=%s", cfg.Tools.IP)
	}
	if cfg.Paths.Socket != "/run/custom/tool.sock" {
		t.Errorf("expected socket=/run/custom/tool.sock, got %s", cfg.Paths.Socket)
	}
	if cfg.Leverage != "sudo -n" {
		t.Errorf("expected leverage=sudo -n, got %q", cfg.Leverage)
	}
	if cfg.Timing.RescanInterval != 15*time.Second {
		t.Errorf("expected rescan_interval=15s, got %s", cfg.Timing.RescanInterval)
	}
	if cfg.Timing.LinkPollInterval != 250*time.Millisecond {
		t.Errorf("expected link_poll_interval=250ms, got %s", cfg.Timing.LinkPollInterval)
	}
	if cfg.Timing.LinkPollLimit != 0 {
		t.Errorf("expected an explicit link_poll_limit of 0 to stick, got %d", cfg.Timing.LinkPollLimit)
	}
	if cfg.Timing.AutoconnectDelay != 30*time.Second {
		t.Errorf("unset timing lost its default: autoconnect_delay=%s", cfg.Timing.AutoconnectDelay)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}

	configPath := writeConfig(t, "timing:\n  rescan_interval: soon\n")
	_, err := LoadFile(configPath)
	if err == nil {
		t.Fatal("expected error for an unparseable duration")
	}
	if !strings.Contains(err.Error(), configPath) {
		t.Errorf("error %q does not name the file", err)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	configPath := writeConfig(t, `
environment: development

paths:
  profiles: /etc/netctl

leverage: pkexec

development:
  paths:
    profiles: ${HOME}/netctl-test
  leverage: sudo -n
  timing:
    autoconnect_delay: 2s

production:
  leverage: doas
`)
	t.Setenv("HOME", "/home/tester")

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Paths.Profiles != "/home/tester/netctl-test" {
		t.Errorf("expected profiles=/home/tester/netctl-test, got %s", cfg.Paths.Profiles)
	}
	if cfg.Leverage != "sudo -n" {
		t.Errorf("expected leverage from development section, got %q", cfg.Leverage)
	}
	if cfg.Timing.AutoconnectDelay != 2*time.Second {
		t.Errorf("expected autoconnect_delay=2s, got %s", cfg.Timing.AutoconnectDelay)
	}
	if cfg.Timing.RescanInterval != 8*time.Second {
		t.Errorf("override cleared rescan_interval: %s", cfg.Timing.RescanInterval)
	}
}

func TestEnvVarsDoNotOverride(t *testing.T) {
	t.Setenv("QNETCTL_SOCKET", "/env/tool.sock")
	t.Setenv("QNETCTL_ENVIRONMENT", "development")

	cfg, err := LoadFile(writeConfig(t, "paths:\n  socket: /file/tool.sock\n"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Environment != Production {
		t.Errorf("expected environment=production, got %s (env vars should not override)", cfg.Environment)
	}
	if cfg.Paths.Socket != "/file/tool.sock" {
		t.Errorf("expected socket=/file/tool.sock, got %s (env vars should not override)", cfg.Paths.Socket)
	}
}

func TestExpandVars(t *testing.T) {
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{
			input:    "${HOME}/netctl",
			vars:     map[string]string{"HOME": "/home/user"},
			expected: "/home/user/netctl",
		},
		{
			input:    "${QNETCTL_TEST_MISSING:-/run/qnetctl}/tool.sock",
			vars:     map[string]string{},
			expected: "/run/qnetctl/tool.sock",
		},
		{
			input:    "${PRESENT:-default}",
			vars:     map[string]string{"PRESENT": "value"},
			expected: "value",
		},
		{
			input:    "no variables here",
			vars:     map[string]string{},
			expected: "no variables here",
		},
	}

	for _, tt := range tests {
		result := expandVars(tt.input, tt.vars)
		if result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default config",
			modify: func(c *Config) {},
		},
		{
			name:    "invalid environment",
			modify:  func(c *Config) { c.Environment = "staging" },
			wantErr: "invalid environment",
		},
		{
			name:    "relative tool path",
			modify:  func(c *Config) { c.Tools.Netctl = "netctl" },
			wantErr: "tools.netctl must be an absolute path",
		},
		{
			name:    "empty socket path",
			modify:  func(c *Config) { c.Paths.Socket = "" },
			wantErr: "paths.socket",
		},
		{
			name:    "zero rescan interval",
			modify:  func(c *Config) { c.Timing.RescanInterval = 0 },
			wantErr: "timing.rescan_interval must be positive",
		},
		{
			name:    "negative poll limit",
			modify:  func(c *Config) { c.Timing.LinkPollLimit = -1 },
			wantErr: "timing.link_poll_limit",
		},
		{
			name:   "unbounded link check",
			modify: func(c *Config) { c.Timing.LinkCheckTimeout = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			switch {
			case tt.wantErr == "" && err != nil:
				t.Errorf("Validate() = %v, want nil", err)
			case tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)):
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLeverageCommand(t *testing.T) {
	tests := []struct {
		leverage string
		want     []string
	}{
		{"", nil},
		{"pkexec", []string{"pkexec"}},
		{"sudo -n", []string{"sudo", "-n"}},
		{"polkit-launch --parent=%p --", []string{"polkit-launch", "--parent=4242", "--"}},
	}
	for _, tt := range tests {
		cfg := Default()
		cfg.Leverage = tt.leverage
		if diff := cmp.Diff(tt.want, cfg.LeverageCommand(4242)); diff != "" {
			t.Errorf("LeverageCommand with %q (-want +got):\n%s", tt.leverage, diff)
		}
	}
}
