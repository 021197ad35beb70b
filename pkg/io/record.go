package io

import (
	"path/filepath"

	"github.com/matzehuels/trigen/pkg/bucket"
	"github.com/matzehuels/trigen/pkg/cycles"
	"github.com/matzehuels/trigen/pkg/errors"
	"github.com/matzehuels/trigen/pkg/graph"
	"github.com/matzehuels/trigen/pkg/rules"
)

// Ext is the bucket file extension.
const Ext = ".jsonl.gz"

// Record is the persisted form of one candidate. Byte fields are base64 in
// JSON.
type Record struct {
	N       int    `json:"n"`
	M       int    `json:"m"`
	Adj     []byte `json:"adj"`
	History []byte `json:"history"`
	Cycles  []byte `json:"cycles"`
}

// NewRecord encodes c.
func NewRecord(c *rules.Candidate) (Record, error) {
	hist, err := c.Graph.History().MarshalBinary()
	if err != nil {
		return Record{}, err
	}
	cyc, err := c.Cycles.MarshalBinary()
	if err != nil {
		return Record{}, err
	}
	return Record{
		N:       c.Graph.Size(),
		M:       c.Graph.EdgeCount(),
		Adj:     c.Graph.Bytes(),
		History: hist,
		Cycles:  cyc,
	}, nil
}

// Candidate decodes r.
func (r Record) Candidate() (*rules.Candidate, error) {
	var h graph.History
	if err := h.UnmarshalBinary(r.History); err != nil {
		return nil, err
	}
	g, err := graph.FromBytes(r.N, r.Adj, h)
	if err != nil {
		return nil, err
	}
	if g.EdgeCount() != r.M {
		return nil, errors.New(errors.ErrCodeMalformedData, "record claims %d edges, adjacency holds %d", r.M, g.EdgeCount())
	}
	set := cycles.NewSet()
	if err := set.UnmarshalBinary(r.Cycles); err != nil {
		return nil, err
	}
	return &rules.Candidate{Graph: g, Cycles: set}, nil
}

// Bucket returns the bucket a record of type typ belongs to.
func (r Record) Bucket(typ string) bucket.Bucket {
	return bucket.Of(r.N, r.M, typ)
}

// Path returns the file of b under dir.
func Path(dir string, b bucket.Bucket) string {
	return filepath.Join(dir, b.String()+Ext)
}

// BucketOf parses the bucket from a bucket file path.
func BucketOf(path string) (bucket.Bucket, error) {
	return bucket.Parse(filepath.Base(path))
}
