package io

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/matzehuels/trigen/pkg/errors"
	"github.com/matzehuels/trigen/pkg/rules"
)

// Writer appends records to a bucket file. It is not safe for concurrent
// use; the pipeline funnels all writes through one goroutine.
type Writer struct {
	f   *os.File
	zw  *gzip.Writer
	enc *json.Encoder
	n   int
}

// Create opens path for appending, creating it and its directory as
// needed.
func Create(path string) (*Writer, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	zw := gzip.NewWriter(f)
	return &Writer{f: f, zw: zw, enc: json.NewEncoder(zw)}, nil
}

// Write encodes c as one line.
func (w *Writer) Write(c *rules.Candidate) error {
	rec, err := NewRecord(c)
	if err != nil {
		return err
	}
	return w.WriteRecord(rec)
}

// WriteRecord writes an encoded record.
func (w *Writer) WriteRecord(r Record) error {
	if err := w.enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	w.n++
	return nil
}

// Count returns the number of records written through w.
func (w *Writer) Count() int { return w.n }

// Close flushes the gzip member and closes the file.
func (w *Writer) Close() error {
	zerr := w.zw.Close()
	ferr := w.f.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}

// WriteFile appends cs to the file at path.
func WriteFile(path string, cs ...*rules.Candidate) error {
	w, err := Create(path)
	if err != nil {
		return err
	}
	for _, c := range cs {
		if err := w.Write(c); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}
