// Package graph provides the compact graph model used throughout trigen.
//
// A [Graph] is a simple undirected graph on vertices 0..Size()-1 whose
// adjacency relation is stored as one bit per unordered vertex pair. The pair
// (i, j) with i > j lives at bit i*(i-1)/2 + j of a byte slice, least
// significant bit first. Because new vertices only append pairs, growing a
// graph never moves existing bits, and the byte form returned by
// [Graph.Bytes] is the exact representation persisted on disk.
//
// # History
//
// Every graph carries a [History]: the 2-character tag of the root graph it
// was grown from plus the ordered list of [Transformation] records applied
// since. A history is the graph's only provenance. Replaying the root through
// it with [Replay] reproduces the graph bit for bit.
//
// History introspection goes through typed queries such as
// [History.LastEdge], which return the endpoints of the first operation of
// the most recent transformation when that transformation has a given tag.
//
// # Transformations
//
// [Apply] builds a new graph from a parent and a transformation. All
// AddVertex operations are applied first, then edge operations run left to
// right against the enlarged vertex range. Adding a present edge or deleting
// an absent one is an invariant violation: Apply returns an error coded
// INVARIANT_VIOLATION and no graph. The parent is never mutated.
//
// # Binary Codec
//
// [History.MarshalBinary] and [History.UnmarshalBinary] implement the
// little-endian history format:
//
//	root[2] count:u16 { alg[2] nops:u16 { op[2] [i:u16 j:u16] }* }*
//
// Op tags are "v ", "e " and "d ". Decoding rejects truncated input, unknown
// tags and trailing bytes with MALFORMED_DATA; encoding rejects values above
// 65535 with OUT_OF_RANGE.
package graph
