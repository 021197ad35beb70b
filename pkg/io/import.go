package io

import (
	"bufio"
	"encoding/json"
	"fmt"
	"iter"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/matzehuels/trigen/pkg/errors"
	"github.com/matzehuels/trigen/pkg/rules"
)

// maxLine bounds one JSON record.
const maxLine = 64 << 20

// Reader streams records from a bucket file.
type Reader struct {
	f  *os.File
	zr *gzip.Reader
	sc *bufio.Scanner
}

// Open opens a bucket file for reading.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "bucket file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(errors.ErrCodeMalformedData, err, "gzip %s", path)
	}
	sc := bufio.NewScanner(zr)
	sc.Buffer(make([]byte, 0, 64<<10), maxLine)
	return &Reader{f: f, zr: zr, sc: sc}, nil
}

// Records yields the raw records in file order with their 0-based index.
// A decode failure is yielded once and ends iteration.
func (r *Reader) Records() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		line := 0
		for r.sc.Scan() {
			line++
			if len(r.sc.Bytes()) == 0 {
				continue
			}
			var rec Record
			if err := json.Unmarshal(r.sc.Bytes(), &rec); err != nil {
				yield(Record{}, errors.Wrap(errors.ErrCodeMalformedData, err, "line %d", line))
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
		if err := r.sc.Err(); err != nil {
			yield(Record{}, errors.Wrap(errors.ErrCodeMalformedData, err, "read"))
		}
	}
}

// All yields the decoded candidates in file order.
func (r *Reader) All() iter.Seq2[*rules.Candidate, error] {
	return func(yield func(*rules.Candidate, error) bool) {
		n := 0
		for rec, err := range r.Records() {
			if err != nil {
				yield(nil, err)
				return
			}
			c, err := rec.Candidate()
			if err != nil {
				yield(nil, fmt.Errorf("record %d: %w", n, err))
				return
			}
			n++
			if !yield(c, nil) {
				return
			}
		}
	}
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	zerr := r.zr.Close()
	ferr := r.f.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}

// ReadFile loads every candidate of the file at path.
func ReadFile(path string) ([]*rules.Candidate, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var out []*rules.Candidate
	for c, err := range r.All() {
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
