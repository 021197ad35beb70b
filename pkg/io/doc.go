// Package io reads and writes bucket files of generated graphs.
//
// # File Format
//
// Each bucket (n, m, type) is stored in DIR/<n>_<m>_<type>.jsonl.gz: a gzip
// stream of newline-delimited JSON records, one graph per line:
//
//	{"n":7,"m":11,"adj":"...","history":"...","cycles":"..."}
//
// Fields:
//   - n, m: vertex and edge count
//   - adj: base64 of the packed adjacency bytes (see package graph)
//   - history: base64 of the binary history codec
//   - cycles: base64 of the binary cycle set codec
//
// Writers append a new gzip member on every open, so several steps can feed
// the same bucket file; readers consume all members in order.
//
// # Reading
//
// Use [Open] and iterate, or [ReadFile] to load everything:
//
//	r, err := io.Open(path)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	for c, err := range r.All() {
//	    ...
//	}
//
// Decoding checks the record against itself: the adjacency length must fit
// n, the edge count must match m, and both codecs must consume their bytes
// exactly. It does not replay the history; roots.Verify does that.
package io
