// Package dataset produces and stores the (plaintext, ciphertext) pairs
// the linear analyzer streams over.
package dataset

// RecordSize is the on-disk size in bytes of one Pair record.
const RecordSize = 16

// BufferPairs is the chunk size used both by the parallel producer's
// per-worker flush buffer and by the analyzer's streaming reader.
const BufferPairs = 4096

// Pair is one known plaintext/ciphertext pair produced under a single,
// fixed master key. Immutable once produced.
type Pair struct {
	Plaintext  uint64
	Ciphertext uint64
}
