// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package ondisk provides typed views of fixed regions of a file.
package ondisk

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Field is a patch region: an unsigned integer at a fixed byte offset that may
// be rewritten in place after the surrounding file has been written.  Width is
// 4 or 8 bytes.
type Field struct {
	Name  string
	Off   int64
	Width int
}

// NewU32Field returns a 4-byte field at off.
func NewU32Field(name string, off int64) Field {
	return Field{Name: name, Off: off, Width: 4}
}

// NewU64Field returns an 8-byte field at off.
func NewU64Field(name string, off int64) Field {
	return Field{Name: name, Off: off, Width: 8}
}

// End is the offset of the first byte after the field.
func (f Field) End() int64 {
	return f.Off + int64(f.Width)
}

// Put encodes value into the field's bytes of buf, where buf starts at file
// offset 0.
func (f Field) Put(buf []byte, order binary.ByteOrder, value uint64) error {
	if int64(len(buf)) < f.End() {
		return fmt.Errorf("%s: buffer of %d bytes too short for field ending at %d", f.Name, len(buf), f.End())
	}
	b := buf[f.Off:f.End()]
	switch f.Width {
	case 4:
		if value > uint64(^uint32(0)) {
			return fmt.Errorf("%s: value %d overflows 32 bits", f.Name, value)
		}
		order.PutUint32(b, uint32(value))
	case 8:
		order.PutUint64(b, value)
	default:
		return fmt.Errorf("%s: unsupported width %d", f.Name, f.Width)
	}
	return nil
}

// Value decodes the field from buf, where buf starts at file offset 0.
func (f Field) Value(buf []byte, order binary.ByteOrder) (uint64, error) {
	if int64(len(buf)) < f.End() {
		return 0, fmt.Errorf("%s: buffer of %d bytes too short for field ending at %d", f.Name, len(buf), f.End())
	}
	b := buf[f.Off:f.End()]
	switch f.Width {
	case 4:
		return uint64(order.Uint32(b)), nil
	case 8:
		return order.Uint64(b), nil
	default:
		return 0, fmt.Errorf("%s: unsupported width %d", f.Name, f.Width)
	}
}

// Set overwrites the field in w.
func (f Field) Set(w io.WriterAt, order binary.ByteOrder, value uint64) error {
	buf := make([]byte, f.End())
	if err := f.Put(buf, order, value); err != nil {
		return err
	}
	n, err := w.WriteAt(buf[f.Off:], f.Off)
	if err != nil {
		return fmt.Errorf("%s: f.WriteAt(%d): %w", f.Name, f.Off, err)
	} else if n != f.Width {
		return fmt.Errorf("%s: short write of %d bytes at %d", f.Name, n, f.Off)
	}
	return nil
}

// Get reads the field from r.
func (f Field) Get(r io.ReaderAt, order binary.ByteOrder) (uint64, error) {
	buf := make([]byte, f.End())
	n, err := r.ReadAt(buf[f.Off:], f.Off)
	if n != f.Width {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return 0, fmt.Errorf("%s: f.ReadAt(%d): %w", f.Name, f.Off, err)
	}
	return f.Value(buf, order)
}
