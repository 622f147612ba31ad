// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package netprofile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/qnetctl/qnetctl/lib/netmodel"
)

// ErrInvalidName is returned for profile names that would escape the
// profile directory or collide with temporary files.
var ErrInvalidName = errors.New("invalid profile name")

// Store is a directory of profile files.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore returns a Store over dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Dir returns the profile directory.
func (s *Store) Dir() string { return s.dir }

// ValidateName rejects empty names, path separators, and names
// starting with '.' or '-'. The latter would be read as an option by
// netctl.
func ValidateName(name string) error {
	if name == "" || strings.ContainsRune(name, '/') || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "-") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Path returns the file path for name.
func (s *Store) Path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// Read returns the parsed profile. A missing, protected or malformed
// file yields a default profile carrying only the name and a log line.
func (s *Store) Read(name string) netmodel.Connection {
	empty := netmodel.Connection{Profile: name, AutoConnect: true}

	path, err := s.Path(name)
	if err != nil {
		s.logger.Warn("skipping profile with invalid name", "profile", name)
		return empty
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("attempted to read non-existing profile", "profile", name)
		} else {
			s.logger.Warn("attempted to read protected profile", "profile", name, "error", err)
		}
		return empty
	}
	defer file.Close()

	conn, err := Parse(name, file)
	if err != nil {
		s.logger.Warn("reading profile failed", "profile", name, "error", err)
		return empty
	}
	return conn
}

// Load reads every listed profile in order and marks the active one.
func (s *Store) Load(entries []ListEntry) []netmodel.Connection {
	profiles := make([]netmodel.Connection, 0, len(entries))
	for _, entry := range entries {
		profile := s.Read(entry.Name)
		profile.Active = entry.Active
		profiles = append(profiles, profile)
	}
	return profiles
}

// Write replaces the named profile with body. The file is written to a
// hidden temporary name in the same directory and renamed into place
// with mode 0600, since profiles carry keys.
func (s *Store) Write(name, body string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	temporaryPath := filepath.Join(s.dir, "."+name+".tmp")

	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temporary profile: %w", err)
	}
	if _, err := file.WriteString(body); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing profile %s: %w", name, err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing profile %s: %w", name, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing profile %s: %w", name, err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming profile %s into place: %w", name, err)
	}
	return nil
}

// Remove deletes the named profile. Removing a profile that does not
// exist is not an error.
func (s *Store) Remove(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing profile %s: %w", name, err)
	}
	return nil
}
