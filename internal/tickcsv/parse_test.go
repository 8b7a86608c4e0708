// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package tickcsv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"2023-10-26 09:30:00", 1698312600000},
		{"2023-10-26 09:30:00.042", 1698312600042},
		// pandas writes microseconds
		{"2023-10-26 09:30:00.042999", 1698312600042},
		{" 2023-10-26 09:30:01 ", 1698312601000},
		{"2023-10-26T09:30:00.5Z", 1698312600500},
		{"1698312600042", 1698312600042},
		{"0", 0},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "yesterday", "2023-13-01 00:00:00", "1969-12-31 23:59:59", "-5"} {
		_, err := ParseTimestamp(bad)
		assert.Error(t, err, bad)
	}

	assert.Equal(t, "2023-10-26 09:30:00.042", FormatTimestamp(1698312600042))
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in    string
		scale int32
		want  uint64
	}{
		{"100", 0, 100},
		{"100.4", 0, 100},
		{"100.5", 0, 101},
		{"99.5", 0, 100},
		{"100.12345", 2, 10012},
		{"100.125", 2, 10013},
		{"0.01", 2, 1},
		{"1e3", 0, 1000},
		{"12300", -2, 123},
		{"18446744073709551615", 0, 18446744073709551615},
	}
	for _, tt := range tests {
		got, err := ParsePrice(tt.in, tt.scale)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "abc", "-1", "18446744073709551616", "1.5.5"} {
		_, err := ParsePrice(bad, 0)
		assert.Error(t, err, bad)
	}

	assert.Equal(t, "100.13", FormatPrice(10013, 2))
	assert.Equal(t, "0.01", FormatPrice(1, 2))
	assert.Equal(t, "100", FormatPrice(100, 0))
	assert.InDelta(t, 100.13, PriceFloat(10013, 2), 1e-9)
}

func TestParseVolume(t *testing.T) {
	for in, want := range map[string]uint64{"10": 10, " 7 ": 7, "10.0": 10, "0": 0} {
		got, err := ParseVolume(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "10.5", "-3", "ten"} {
		_, err := ParseVolume(bad)
		assert.Error(t, err, bad)
	}
}
