package util

import (
	"reflect"
	"testing"
)

func TestParseMemStringAsMb(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		want      uint64
		expectErr bool
	}{
		{"gigabytes", "16G", 16384, false},
		{"megabytes", "4096M", 4096, false},
		{"default unit is MB", "4096", 4096, false},
		{"fractional gigabytes", "1.5G", 1536, false},
		{"kilobytes round up", "512K", 1, false},
		{"bytes round up", "1B", 1, false},
		{"negative", "-5M", 0, true},
		{"unknown unit", "5T", 0, true},
		{"not a number", "lots", 0, true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseMemStringAsMb(tc.input)
			if tc.expectErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("unexpected size: %d want %d", got, tc.want)
			}
		})
	}
}

func TestParseHostList(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		want     []string
		expectOk bool
	}{
		{"single", "vm01", []string{"vm01"}, true},
		{"comma list", "vm01,vm02", []string{"vm01", "vm02"}, true},
		{"zero padded range", "vm[01-03]", []string{"vm01", "vm02", "vm03"}, true},
		{"range and enumeration", "gpu[1-2,5]", []string{"gpu1", "gpu2", "gpu5"}, true},
		{"mixed", "vm01,gpu[1-2]", []string{"vm01", "gpu1", "gpu2"}, true},
		{"unbalanced bracket", "vm[01-03", nil, false},
		{"isolated bracket", "vm01-03]", nil, false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseHostList(tc.input)
			if ok != tc.expectOk {
				t.Fatalf("unexpected ok: %v want %v", ok, tc.expectOk)
			}
			if tc.expectOk && !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("unexpected hosts: %v want %v", got, tc.want)
			}
		})
	}
}

func TestSecondTimeFormat(t *testing.T) {
	testCases := []struct {
		seconds int64
		want    string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{3600, "01:00:00"},
		{9045, "02:30:45"},
		{86400, "1-00:00:00"},
		{90061, "1-01:01:01"},
	}

	for _, tc := range testCases {
		if got := SecondTimeFormat(tc.seconds); got != tc.want {
			t.Fatalf("unexpected format for %d: %q want %q", tc.seconds, got, tc.want)
		}
	}
}
