package dataset

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"fmt"
	mathrand "math/rand"
	"sync"
	"sync/atomic"

	"github.com/treewonwoo/mgfn-linear-cryptanalysis/cipher"
)

// ProgressFunc is called periodically during Generate with the number of
// pairs produced so far and the total requested. It may be called from
// multiple goroutines' perspective but each call carries a consistent
// snapshot of the shared counter; implementations should not assume a
// particular calling goroutine.
type ProgressFunc func(done, total uint64)

// Generate produces `pairs` random plaintexts, encrypts each under ks,
// and writes the resulting (P, C) records to path (truncating any
// existing file), fanning the work out
// across `workers` goroutines. Each worker owns a private PRNG seeded
// from crypto/rand so that streams are statistically independent without
// sharing mutable generator state, and buffers BufferPairs records
// before flushing them to the writer under a single mutex.
func Generate(path string, pairs uint64, ks *cipher.KeySchedule, workers int, progress ProgressFunc) error {
	if workers < 1 {
		workers = 1
	}

	w, err := CreateWriter(path)
	if err != nil {
		return err
	}

	var writeMu sync.Mutex
	var done uint64
	var firstErr error
	var errMu sync.Mutex

	recordErr := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}

	perWorker := pairs / uint64(workers)
	remainder := pairs % uint64(workers)

	var wg sync.WaitGroup
	for wi := 0; wi < workers; wi++ {
		n := perWorker
		if uint64(wi) < remainder {
			n++
		}
		wg.Add(1)
		go func(count uint64) {
			defer wg.Done()

			rng := mathrand.New(mathrand.NewSource(seedFromCryptoRand()))
			buf := make([]Pair, 0, BufferPairs)

			for i := uint64(0); i < count; i++ {
				pt := rng.Uint64()
				ct := cipher.Encrypt(pt, ks)
				buf = append(buf, Pair{Plaintext: pt, Ciphertext: ct})

				if len(buf) == BufferPairs {
					writeMu.Lock()
					err := w.WriteBatch(buf)
					writeMu.Unlock()
					if err != nil {
						recordErr(err)
					}
					buf = buf[:0]
				}

				total := atomic.AddUint64(&done, 1)
				if progress != nil && total&0xFFFF == 0 {
					progress(total, pairs)
				}
			}

			if len(buf) > 0 {
				writeMu.Lock()
				err := w.WriteBatch(buf)
				writeMu.Unlock()
				if err != nil {
					recordErr(err)
				}
			}
		}(n)
	}

	wg.Wait()

	if err := w.Close(); err != nil {
		recordErr(err)
	}

	if firstErr != nil {
		return fmt.Errorf("dataset: generate: %w", firstErr)
	}
	if progress != nil {
		progress(pairs, pairs)
	}
	return nil
}

// seedFromCryptoRand draws a fresh 64-bit seed from crypto/rand for one
// worker's private math/rand source, keeping per-worker streams
// independent without coordinating on a shared clock-derived seed.
func seedFromCryptoRand() int64 {
	var b [8]byte
	if _, err := cryptorand.Read(b[:]); err != nil {
		// crypto/rand failing is not something a dataset-generation
		// worker can sensibly recover from; fall back to the fixed seed 0,
		// so every worker whose read failed draws the same stream.
		return 0
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}
