package io

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/matzehuels/trigen/pkg/bucket"
	"github.com/matzehuels/trigen/pkg/errors"
	"github.com/matzehuels/trigen/pkg/graph"
	"github.com/matzehuels/trigen/pkg/rules"
)

func prism(t *testing.T) *rules.Candidate {
	t.Helper()
	g, err := graph.FromEdges(6, "PR", [][2]int{
		{0, 1}, {1, 2}, {2, 0},
		{3, 4}, {4, 5}, {5, 3},
		{0, 3}, {1, 4}, {2, 5},
	})
	if err != nil {
		t.Fatalf("FromEdges: %v", err)
	}
	return rules.Seed(g)
}

func children(t *testing.T, parent *rules.Candidate) []*rules.Candidate {
	t.Helper()
	seq, err := rules.E1.Apply(parent)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	var out []*rules.Candidate
	for c, err := range seq {
		if err != nil {
			t.Fatalf("child: %v", err)
		}
		out = append(out, c)
	}
	return out
}

func sameCandidate(t *testing.T, want, got *rules.Candidate) {
	t.Helper()
	if !want.Graph.Equal(got.Graph) {
		t.Errorf("graph mismatch")
	}
	if !want.Graph.History().Equal(got.Graph.History()) {
		t.Errorf("history mismatch")
	}
	if !want.Cycles.Equal(got.Cycles) {
		t.Errorf("cycles = %v, want %v", got.Cycles, want.Cycles)
	}
}

func TestPath(t *testing.T) {
	got := Path("data", bucket.Of(6, 9, bucket.RootType))
	want := filepath.Join("data", "6_9_rt.jsonl.gz")
	if got != want {
		t.Errorf("Path = %q, want %q", got, want)
	}
	b, err := BucketOf(got)
	if err != nil {
		t.Fatalf("BucketOf: %v", err)
	}
	if b != bucket.Of(6, 9, bucket.RootType) {
		t.Errorf("BucketOf = %v", b)
	}
}

func TestRoundTrip(t *testing.T) {
	root := prism(t)
	kids := children(t, root)
	path := filepath.Join(t.TempDir(), "out", "7_10_e1.jsonl.gz")

	if err := WriteFile(path, kids...); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != len(kids) {
		t.Fatalf("read %d records, want %d", len(got), len(kids))
	}
	for i := range kids {
		sameCandidate(t, kids[i], got[i])
	}
}

func TestAppendMembers(t *testing.T) {
	root := prism(t)
	path := filepath.Join(t.TempDir(), "6_9_rt.jsonl.gz")

	for range 3 {
		if err := WriteFile(path, root); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("read %d records, want 3", len(got))
	}
	for _, c := range got {
		sameCandidate(t, root, c)
	}
}

func TestWriterCount(t *testing.T) {
	root := prism(t)
	w, err := Create(filepath.Join(t.TempDir(), "x.jsonl.gz"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for range 2 {
		if err := w.Write(root); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if w.Count() != 2 {
		t.Errorf("Count = %d, want 2", w.Count())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestEarlyStop(t *testing.T) {
	root := prism(t)
	path := filepath.Join(t.TempDir(), "6_9_rt.jsonl.gz")
	if err := WriteFile(path, root, root, root); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	n := 0
	for _, err := range r.All() {
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		n++
		break
	}
	if n != 1 {
		t.Errorf("yielded %d, want 1", n)
	}
}

func writeRaw(t *testing.T, lines ...string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	for _, l := range lines {
		zw.Write([]byte(l + "\n"))
	}
	zw.Close()
	path := filepath.Join(t.TempDir(), "raw.jsonl.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadMalformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"not json", "{nope"},
		{"short adjacency", `{"n":6,"m":9,"adj":"AA==","history":"","cycles":""}`},
		{"edge count mismatch", `{"n":3,"m":2,"adj":"Bw==","history":"UFIAAA==","cycles":"AAAAAA=="}`},
		{"bad history", `{"n":3,"m":3,"adj":"Bw==","history":"UA==","cycles":"AAAAAA=="}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFile(writeRaw(t, tt.line))
			if !errors.Is(err, errors.ErrCodeMalformedData) {
				t.Errorf("err = %v, want MALFORMED_DATA", err)
			}
		})
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.jsonl.gz"))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestOpenNotGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.jsonl.gz")
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	if !errors.Is(err, errors.ErrCodeMalformedData) {
		t.Errorf("err = %v, want MALFORMED_DATA", err)
	}
}
