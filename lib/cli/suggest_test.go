// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"abc", "ab", 1},
		{"ab", "abc", 1},
		{"abc", "bac", 2},
		{"kitten", "sitting", 3},
		{"connect", "conect", 1},
		{"forget", "froget", 2},
	}

	for _, test := range tests {
		t.Run(test.a+"/"+test.b, func(t *testing.T) {
			got := levenshtein(test.a, test.b)
			if got != test.want {
				t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
			}
			if reverse := levenshtein(test.b, test.a); reverse != got {
				t.Errorf("levenshtein is not symmetric for %q, %q: %d vs %d", test.a, test.b, got, reverse)
			}
		})
	}
}

func TestSuggestFlag(t *testing.T) {
	newFlagSet := func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("edit", pflag.ContinueOnError)
		flagSet.String("gateway", "", "")
		flagSet.String("address", "", "")
		flagSet.BoolP("verbose", "v", false, "")
		return flagSet
	}

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--gatway=10.0.0.1"}, "--gateway"},
		{[]string{"--address", "x", "--adress", "y"}, "--address"},
		{[]string{"-v", "--zzzzzzzz"}, ""},
		{[]string{"--", "--gatway"}, ""},
	}
	for _, test := range tests {
		if got := suggestFlag(test.args, newFlagSet()); got != test.want {
			t.Errorf("suggestFlag(%v) = %q, want %q", test.args, got, test.want)
		}
	}
}
