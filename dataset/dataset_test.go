package dataset

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/treewonwoo/mgfn-linear-cryptanalysis/cipher"
)

func testMasterKey() [16]byte {
	return [16]byte{
		0xB7, 0x45, 0xC5, 0xC6, 0x10, 0x61, 0x98, 0xF3,
		0xCA, 0x4C, 0xD4, 0x5E, 0x2B, 0x9F, 0x91, 0x0F,
	}
}

func TestWriterReaderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.bin")

	w, err := CreateWriter(path)
	require.NoError(t, err)

	want := []Pair{
		{Plaintext: 0, Ciphertext: 1},
		{Plaintext: 0xdeadbeef, Ciphertext: 0xcafebabe},
		{Plaintext: 0xffffffffffffffff, Ciphertext: 0x0000000000000001},
	}
	require.NoError(t, w.WriteBatch(want))
	require.NoError(t, w.Close())

	r, err := OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	got := make([]Pair, len(want))
	n, err := r.ReadBatch(got)
	require.NoError(t, err)
	require.Equal(t, len(want), n)
	require.Equal(t, want, got)

	// reading past the end reports a short read, not an error
	tail := make([]Pair, 4)
	n, err = r.ReadBatch(tail)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestReaderRewind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.bin")
	w, err := CreateWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteBatch([]Pair{{Plaintext: 7, Ciphertext: 8}}))
	require.NoError(t, w.Close())

	r, err := OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	buf := make([]Pair, 1)
	n, err := r.ReadBatch(buf)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, r.Rewind())
	n, err = r.ReadBatch(buf)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, uint64(7), buf[0].Plaintext)
}

func TestGenerateProducesConsistentCiphertexts(t *testing.T) {
	ks := cipher.Expand(testMasterKey())
	path := filepath.Join(t.TempDir(), "gen.bin")

	const n = 10_000
	require.NoError(t, Generate(path, n, &ks, 4, nil))

	r, err := OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	buf := make([]Pair, n)
	got, err := r.ReadBatch(buf)
	require.NoError(t, err)
	require.Equal(t, n, got)

	for _, p := range buf[:got] {
		require.Equal(t, cipher.Encrypt(p.Plaintext, &ks), p.Ciphertext)
	}
}

func TestGenerateReportsProgressAgainstFixedTotal(t *testing.T) {
	ks := cipher.Expand(testMasterKey())
	path := filepath.Join(t.TempDir(), "gen.bin")

	var mu sync.Mutex
	var calls int
	var final uint64
	require.NoError(t, Generate(path, 200_000, &ks, 8, func(done, total uint64) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		require.Equal(t, uint64(200_000), total)
		if done > final {
			final = done
		}
	}))
	require.Greater(t, calls, 0)
	require.Equal(t, uint64(200_000), final)
}
