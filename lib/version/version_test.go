// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	savedCommit, savedDirty := GitCommit, GitDirty
	t.Cleanup(func() { GitCommit, GitDirty = savedCommit, savedDirty })

	GitCommit, GitDirty = "abc1234", "true"
	info := Info()
	if !strings.Contains(info, "abc1234-dirty") || !strings.HasPrefix(info, Version) {
		t.Errorf("Info() = %q", info)
	}
	if !strings.HasPrefix(Full(), info) {
		t.Errorf("Full() should start with Info(): %q", Full())
	}
}
