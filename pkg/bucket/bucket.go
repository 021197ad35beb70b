// Package bucket names the output partitions of a generation run.
//
// A [Bucket] is the triple (vertex count, edge count, type). Every generated
// graph belongs to exactly one bucket, each bucket has one output file
// ("6_9_rt.jsonl.gz") and one certificate store, and duplicates are only
// detected within a bucket.
package bucket

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/trigen/pkg/errors"
)

// RootType labels buckets holding root graphs.
const RootType = "rt"

// Bucket is an output partition.
type Bucket struct {
	N    int    `toml:"n" json:"n"`
	M    int    `toml:"m" json:"m"`
	Type string `toml:"type" json:"type"`
}

// Of returns the bucket of a graph with n vertices and m edges produced by
// typ.
func Of(n, m int, typ string) Bucket {
	return Bucket{N: n, M: m, Type: typ}
}

// String formats b as "n_m_type", the stem of its file name.
func (b Bucket) String() string {
	return strconv.Itoa(b.N) + "_" + strconv.Itoa(b.M) + "_" + b.Type
}

// Validate checks that b can name a file and a store.
func (b Bucket) Validate() error {
	if b.N < 0 || b.M < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "bucket %s: negative count", b)
	}
	return errors.ValidateBucketType(b.Type)
}

// Parse reads a bucket from its "n_m_type" form. A trailing file extension
// is ignored.
func Parse(s string) (Bucket, error) {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(s, "_")
	if len(parts) != 3 {
		return Bucket{}, errors.New(errors.ErrCodeInvalidInput, "bucket %q: want n_m_type", s)
	}
	n, errN := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errN != nil || errM != nil {
		return Bucket{}, errors.New(errors.ErrCodeInvalidInput, "bucket %q: counts must be integers", s)
	}
	b := Bucket{N: n, M: m, Type: parts[2]}
	if err := b.Validate(); err != nil {
		return Bucket{}, err
	}
	return b, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Bucket {
	b, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("bucket.MustParse(%q): %v", s, err))
	}
	return b
}
