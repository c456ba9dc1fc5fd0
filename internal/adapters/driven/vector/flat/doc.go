// Package flat provides an exact, brute-force L2 vector index.
//
// Vectors live in one contiguous float32 slice addressed by ordinal.
// Search scans every vector and returns squared Euclidean distances, so
// results are exact and deterministic: ties are broken by ascending position.
//
// The index serialises to an opaque little-endian blob:
//
//	magic "DMVF0001" | dimension uint32 | count uint32 | count*dimension float32
package flat
