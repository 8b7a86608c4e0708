// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package chunk

import (
	"encoding/binary"
	"fmt"

	"github.com/bpowers/ticksio/internal/status"
)

// putUint stores the low w bytes of v.  Bits above w are dropped.
func putUint(b []byte, v uint64, w Width, order binary.ByteOrder) {
	switch w {
	case Width8:
		b[0] = uint8(v)
	case Width16:
		order.PutUint16(b[:2], uint16(v))
	case Width32:
		order.PutUint32(b[:4], uint32(v))
	default:
		order.PutUint64(b[:8], v)
	}
}

func getUint(b []byte, w Width, order binary.ByteOrder) uint64 {
	switch w {
	case Width8:
		return uint64(b[0])
	case Width16:
		return uint64(order.Uint16(b[:2]))
	case Width32:
		return uint64(order.Uint32(b[:4]))
	default:
		return order.Uint64(b[:8])
	}
}

// Encode serializes records using widths, storing each timestamp as its
// distance from timeBase.  The returned slice is exactly
// len(records)*widths.RecordSize() bytes long.
func Encode(records []Record, timeBase uint64, widths Widths, order binary.ByteOrder) ([]byte, error) {
	if !widths.Valid() {
		return nil, fmt.Errorf("%w: widths %+v", status.ErrInvalidArguments, widths)
	}
	tw, pw, vw := int(widths.Timestamp), int(widths.Price), int(widths.Volume)
	recordSize := tw + pw + vw

	data := make([]byte, len(records)*recordSize)
	b := data
	for _, r := range records {
		putUint(b, r.Timestamp-timeBase, widths.Timestamp, order)
		putUint(b[tw:], r.Price, widths.Price, order)
		putUint(b[tw+pw:], r.Volume, widths.Volume, order)
		b = b[recordSize:]
	}
	return data, nil
}

// Decode is the inverse of Encode.
func Decode(data []byte, widths Widths, timeBase uint64, n int, order binary.ByteOrder) ([]Record, error) {
	if !widths.Valid() {
		return nil, fmt.Errorf("%w: unsupported widths %+v", status.ErrInvalidFormat, widths)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative record count %d", status.ErrInvalidArguments, n)
	}
	tw, pw := int(widths.Timestamp), int(widths.Price)
	recordSize := widths.RecordSize()
	if len(data) != n*recordSize {
		return nil, fmt.Errorf("%w: chunk is %d bytes, expected %d records of %d bytes", status.ErrInvalidFormat, len(data), n, recordSize)
	}

	records := make([]Record, n)
	for i := range records {
		b := data[i*recordSize : (i+1)*recordSize]
		// bounds check elimination
		_ = b[recordSize-1]
		records[i] = Record{
			Timestamp: timeBase + getUint(b, widths.Timestamp, order),
			Price:     getUint(b[tw:], widths.Price, order),
			Volume:    getUint(b[tw+pw:], widths.Volume, order),
		}
	}
	return records, nil
}
