// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package export

import (
	"io"

	"github.com/parquet-go/parquet-go"
)

// ParquetSaver writes rows as a Parquet file with columns t, p and v.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) NewWriter(w io.Writer) Writer {
	return &parquetWriter{w: parquet.NewGenericWriter[Row](w)}
}

type parquetWriter struct {
	w *parquet.GenericWriter[Row]
}

func (p *parquetWriter) Write(rows []Row) error {
	_, err := p.w.Write(rows)
	return err
}

func (p *parquetWriter) Close() error {
	return p.w.Close()
}
