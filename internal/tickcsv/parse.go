// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package tickcsv

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the text form of a timestamp, always in UTC.  A
// fractional second of any precision may follow the seconds; anything
// finer than a millisecond is truncated.
const TimestampLayout = "2006-01-02 15:04:05"

var errNegative = errors.New("negative values can't be stored")

// ParseTimestamp parses either TimestampLayout, RFC 3339, or integer
// milliseconds since the Unix epoch.
func ParseTimestamp(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty timestamp")
	}
	if ms, err := strconv.ParseUint(s, 10, 64); err == nil {
		return ms, nil
	}

	t, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err != nil {
		var rfcErr error
		if t, rfcErr = time.Parse(time.RFC3339Nano, s); rfcErr != nil {
			return 0, fmt.Errorf("timestamp %q: %w", s, err)
		}
	}
	ms := t.UnixMilli()
	if ms < 0 {
		return 0, fmt.Errorf("timestamp %q: %w", s, errNegative)
	}
	return uint64(ms), nil
}

// FormatTimestamp is the inverse of ParseTimestamp, with millisecond
// precision.
func FormatTimestamp(ms uint64) string {
	return time.UnixMilli(int64(ms)).UTC().Format(TimestampLayout + ".000")
}

func toUint64(d decimal.Decimal, what, s string) (uint64, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("%s %q: %w", what, s, errNegative)
	}
	b := d.BigInt()
	if !b.IsUint64() {
		return 0, fmt.Errorf("%s %q overflows 64 bits", what, s)
	}
	return b.Uint64(), nil
}

// ParsePrice parses a decimal price and scales it to a fixed-point integer
// with scale decimal places, rounding half away from zero.
func ParsePrice(s string, scale int32) (uint64, error) {
	s = strings.TrimSpace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("price %q: %w", s, err)
	}
	return toUint64(d.Shift(scale).Round(0), "price", s)
}

func fixed(p uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(p), 0)
}

// FormatPrice is the inverse of ParsePrice.
func FormatPrice(p uint64, scale int32) string {
	d := fixed(p).Shift(-scale)
	if scale <= 0 {
		return d.String()
	}
	return d.StringFixed(scale)
}

// PriceFloat converts a fixed-point price to a float64, for consumers that
// want one.
func PriceFloat(p uint64, scale int32) float64 {
	f, _ := fixed(p).Shift(-scale).Float64()
	return f
}

// ParseVolume parses an unsigned integer volume.  A decimal with a zero
// fractional part, like "10.0", is accepted.
func ParseVolume(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return v, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("volume %q: %w", s, err)
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("volume %q is not a whole number", s)
	}
	return toUint64(d, "volume", s)
}

// checkScale rejects scales whose 10^scale can't be represented.
func checkScale(scale int32) error {
	if scale < -18 || scale > 18 {
		return fmt.Errorf("price scale %d outside [-18, 18]", scale)
	}
	return nil
}
