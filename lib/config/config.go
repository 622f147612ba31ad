// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable that points at the config file.
const EnvVar = "QNETCTL_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for running against a test profile directory.
	Development Environment = "development"
	// Production is an installed system.
	Production Environment = "production"
)

// Config is the master configuration.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment"`

	// Tools are the absolute paths of the external commands.
	Tools ToolsConfig `yaml:"tools"`

	// Paths configures file locations.
	Paths PathsConfig `yaml:"paths"`

	// Leverage is the command prefix the front end uses to start the
	// helper with root privileges, for example "pkexec" or "sudo -n".
	// "%p" is replaced with the front end's process ID.
	Leverage string `yaml:"leverage"`

	// Timing configures the front end's timers and the helper's link
	// polling.
	Timing TimingConfig `yaml:"timing"`

	Development *ConfigOverrides `yaml:"development,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Tools    *ToolsConfig  `yaml:"tools,omitempty"`
	Paths    *PathsConfig  `yaml:"paths,omitempty"`
	Leverage string        `yaml:"leverage,omitempty"`
	Timing   *TimingConfig `yaml:"timing,omitempty"`
}

// ToolsConfig holds the paths of the external commands. The helper
// runs ip, iw, netctl and systemctl as root, so only absolute paths
// are accepted.
type ToolsConfig struct {
	IP        string `yaml:"ip"`
	IW        string `yaml:"iw"`
	Netctl    string `yaml:"netctl"`
	Systemctl string `yaml:"systemctl"`

	// Ifplugd and WpaActiond are only checked for existence by the
	// autoconnect resolver.
	Ifplugd    string `yaml:"ifplugd"`
	WpaActiond string `yaml:"wpa_actiond"`
}

// PathsConfig configures file locations.
type PathsConfig struct {
	// Profiles is the netctl profile directory.
	// Default: /etc/netctl
	Profiles string `yaml:"profiles"`

	// Socket is the helper's Unix socket.
	// Default: /run/qnetctl/tool.sock
	Socket string `yaml:"socket"`
}

// TimingConfig configures timers. All durations accept Go duration
// strings ("250ms", "8s").
type TimingConfig struct {
	// RebuildDelay debounces reconciliation after discovery changes.
	RebuildDelay time.Duration `yaml:"rebuild_delay"`

	// RescanInterval is the period of the device check and wireless
	// rescan.
	RescanInterval time.Duration `yaml:"rescan_interval"`

	// AutoconnectDelay is how long after a profile edit the full
	// autoconnect pass runs.
	AutoconnectDelay time.Duration `yaml:"autoconnect_delay"`

	// LinkPollInterval is the helper's delay between link checks while
	// bringing an interface up for a scan.
	LinkPollInterval time.Duration `yaml:"link_poll_interval"`

	// LinkPollLimit bounds those checks. Zero polls until the link is
	// up.
	LinkPollLimit int `yaml:"link_poll_limit"`

	// LinkCheckTimeout bounds the first link check of a scan. Zero
	// means no bound.
	LinkCheckTimeout time.Duration `yaml:"link_check_timeout"`

	// ConnectTimeout bounds how long the front end waits for the
	// helper socket to appear after launching it.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Environment: Production,
		Tools: ToolsConfig{
			IP:         "/usr/bin/ip",
			IW:         "/usr/bin/iw",
			Netctl:     "/usr/bin/netctl",
			Systemctl:  "/usr/bin/systemctl",
			Ifplugd:    "/usr/bin/ifplugd",
			WpaActiond: "/usr/bin/wpa_actiond",
		},
		Paths: PathsConfig{
			Profiles: "/etc/netctl",
			Socket:   "/run/qnetctl/tool.sock",
		},
		Leverage: "pkexec",
		Timing: TimingConfig{
			RebuildDelay:     250 * time.Millisecond,
			RescanInterval:   8 * time.Second,
			AutoconnectDelay: 30 * time.Second,
			LinkPollInterval: 500 * time.Millisecond,
			LinkPollLimit:    20,
			LinkCheckTimeout: 5 * time.Second,
			ConnectTimeout:   30 * time.Second,
		},
	}
}

// Resolve loads the file named by flagPath, else the file named by
// QNETCTL_CONFIG, else returns the defaults.
func Resolve(flagPath string) (*Config, error) {
	if flagPath != "" {
		return LoadFile(flagPath)
	}
	return Load()
}

// Load loads configuration from the QNETCTL_CONFIG environment
// variable, or returns the defaults when it is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the section matching Environment.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	if overrides.Tools != nil {
		override(&c.Tools.IP, overrides.Tools.IP)
		override(&c.Tools.IW, overrides.Tools.IW)
		override(&c.Tools.Netctl, overrides.Tools.Netctl)
		override(&c.Tools.Systemctl, overrides.Tools.Systemctl)
		override(&c.Tools.Ifplugd, overrides.Tools.Ifplugd)
		override(&c.Tools.WpaActiond, overrides.Tools.WpaActiond)
	}

	if overrides.Paths != nil {
		override(&c.Paths.Profiles, overrides.Paths.Profiles)
		override(&c.Paths.Socket, overrides.Paths.Socket)
	}

	override(&c.Leverage, overrides.Leverage)

	if timing := overrides.Timing; timing != nil {
		overrideDuration(&c.Timing.RebuildDelay, timing.RebuildDelay)
		overrideDuration(&c.Timing.RescanInterval, timing.RescanInterval)
		overrideDuration(&c.Timing.AutoconnectDelay, timing.AutoconnectDelay)
		overrideDuration(&c.Timing.LinkPollInterval, timing.LinkPollInterval)
		overrideDuration(&c.Timing.LinkCheckTimeout, timing.LinkCheckTimeout)
		overrideDuration(&c.Timing.ConnectTimeout, timing.ConnectTimeout)
		if timing.LinkPollLimit != 0 {
			c.Timing.LinkPollLimit = timing.LinkPollLimit
		}
	}
}

func override(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func overrideDuration(target *time.Duration, value time.Duration) {
	if value != 0 {
		*target = value
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in tool
// and path fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	for _, field := range []*string{
		&c.Tools.IP,
		&c.Tools.IW,
		&c.Tools.Netctl,
		&c.Tools.Systemctl,
		&c.Tools.Ifplugd,
		&c.Tools.WpaActiond,
		&c.Paths.Profiles,
		&c.Paths.Socket,
	} {
		*field = expandVars(*field, vars)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	tools := []struct {
		key   string
		value string
	}{
		{"tools.ip", c.Tools.IP},
		{"tools.iw", c.Tools.IW},
		{"tools.netctl", c.Tools.Netctl},
		{"tools.systemctl", c.Tools.Systemctl},
		{"tools.ifplugd", c.Tools.Ifplugd},
		{"tools.wpa_actiond", c.Tools.WpaActiond},
		{"paths.profiles", c.Paths.Profiles},
		{"paths.socket", c.Paths.Socket},
	}
	for _, tool := range tools {
		if !filepath.IsAbs(tool.value) {
			errs = append(errs, fmt.Errorf("%s must be an absolute path, got %q", tool.key, tool.value))
		}
	}

	intervals := []struct {
		key   string
		value time.Duration
	}{
		{"timing.rebuild_delay", c.Timing.RebuildDelay},
		{"timing.rescan_interval", c.Timing.RescanInterval},
		{"timing.autoconnect_delay", c.Timing.AutoconnectDelay},
		{"timing.link_poll_interval", c.Timing.LinkPollInterval},
		{"timing.connect_timeout", c.Timing.ConnectTimeout},
	}
	for _, interval := range intervals {
		if interval.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", interval.key, interval.value))
		}
	}
	if c.Timing.LinkPollLimit < 0 {
		errs = append(errs, fmt.Errorf("timing.link_poll_limit must not be negative"))
	}
	if c.Timing.LinkCheckTimeout < 0 {
		errs = append(errs, fmt.Errorf("timing.link_check_timeout must not be negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// LeverageCommand returns the launch prefix split into arguments with
// "%p" replaced by pid. An empty Leverage yields nil: the helper is
// run directly.
func (c *Config) LeverageCommand(pid int) []string {
	fields := strings.Fields(c.Leverage)
	if len(fields) == 0 {
		return nil
	}
	for i, field := range fields {
		fields[i] = strings.ReplaceAll(field, "%p", strconv.Itoa(pid))
	}
	return fields
}
