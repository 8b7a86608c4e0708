// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package ticksio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Builder writes a new ticks file to a temporary file next to its
// destination, and only renames it into place once it is complete.  Readers
// of the destination never see a half-written file.
type Builder struct {
	resultPath string
	f          *File
}

// NewBuilder creates a Builder that will produce a file at path.
func NewBuilder(path string, header Header, opts ...Option) (*Builder, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	if err := header.Validate(); err != nil {
		return nil, err
	}

	// we want to write to a new file and do an atomic rename when we're done on disk
	path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: filepath.Abs: %w", ErrInvalidArguments, err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "ticks-builder.*.tmp")
	if err != nil {
		return nil, fmt.Errorf("%w: CreateTemp failed (may need permissions for dir %q): %w", ErrFileIO, dir, err)
	}

	f, err := newFile(tmp.Name(), tmp, header, o)
	if err != nil {
		_ = os.Remove(tmp.Name())
		return nil, err
	}
	return &Builder{resultPath: path, f: f}, nil
}

// File is the file being built.  It must not be closed directly.
func (b *Builder) File() *File {
	return b.f
}

func (b *Builder) AddData(records []Record) error {
	return b.f.AddData(records)
}

func (b *Builder) AddFrom(src RecordSource, batchSize int) (int, error) {
	return b.f.AddFrom(src, batchSize)
}

// Finalize writes the index and moves the file to its destination.  If
// anything fails the temporary file is removed.
func (b *Builder) Finalize() error {
	tmpPath := b.f.Path()
	if err := b.f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	// CreateTemp makes the file private; match what Create would produce
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: os.Chmod(0644): %w", ErrFileIO, err)
	}
	if err := os.Rename(tmpPath, b.resultPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: os.Rename: %w", ErrFileIO, err)
	}
	b.f.path = b.resultPath
	return nil
}

// Abort discards the file being built.
func (b *Builder) Abort() error {
	tmpPath := b.f.Path()
	closeErr := b.f.Close()
	if err := os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Join(closeErr, fmt.Errorf("%w: os.Remove: %w", ErrFileIO, err))
	}
	return closeErr
}
