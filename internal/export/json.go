// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package export

import (
	"bufio"
	"encoding/json"
	"io"
)

// JSONSaver writes rows as a JSON array, one object per line.
type JSONSaver struct{}

func (JSONSaver) Extension() string { return "json" }

func (JSONSaver) NewWriter(w io.Writer) Writer {
	return &jsonWriter{w: bufio.NewWriter(w)}
}

type jsonWriter struct {
	w *bufio.Writer
	n int
}

func (j *jsonWriter) Write(rows []Row) error {
	for _, r := range rows {
		sep := ",\n"
		if j.n == 0 {
			sep = "[\n"
		}
		if _, err := j.w.WriteString(sep); err != nil {
			return err
		}
		b, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := j.w.Write(b); err != nil {
			return err
		}
		j.n++
	}
	return nil
}

func (j *jsonWriter) Close() error {
	end := "\n]\n"
	if j.n == 0 {
		end = "[]\n"
	}
	if _, err := j.w.WriteString(end); err != nil {
		return err
	}
	return j.w.Flush()
}
