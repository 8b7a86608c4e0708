// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package chunk

import (
	"math"
)

// Width is the number of bytes used to store one field of one record.
type Width uint8

const (
	Width8  Width = 1
	Width16 Width = 2
	Width32 Width = 4
	Width64 Width = 8
)

// Valid reports whether w is one of the four supported widths.
func (w Width) Valid() bool {
	switch w {
	case Width8, Width16, Width32, Width64:
		return true
	}
	return false
}

// Max returns the largest unsigned value representable in w bytes.
func (w Width) Max() uint64 {
	switch w {
	case Width8:
		return math.MaxUint8
	case Width16:
		return math.MaxUint16
	case Width32:
		return math.MaxUint32
	default:
		return math.MaxUint64
	}
}

// SelectWidth returns the smallest width whose maximum is >= v.  Values
// sitting exactly on a width's maximum stay in that width.
func SelectWidth(v uint64) Width {
	switch {
	case v <= math.MaxUint8:
		return Width8
	case v <= math.MaxUint16:
		return Width16
	case v <= math.MaxUint32:
		return Width32
	default:
		return Width64
	}
}

func maxWidth(a, b Width) Width {
	if a > b {
		return a
	}
	return b
}
