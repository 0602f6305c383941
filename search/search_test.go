package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/treewonwoo/mgfn-linear-cryptanalysis/cipher"
	"github.com/treewonwoo/mgfn-linear-cryptanalysis/dataset"
)

func referenceMasterKey() [16]byte {
	return [16]byte{
		0xB7, 0x45, 0xC5, 0xC6, 0x10, 0x61, 0x98, 0xF3,
		0xCA, 0x4C, 0xD4, 0x5E, 0x2B, 0x9F, 0x91, 0x0F,
	}
}

func TestUnpermuteKeyIsInverseOfPermuteKey(t *testing.T) {
	hi, lo := cipher.SplitMasterKey(referenceMasterKey())
	phi, plo := cipher.PermuteKey(hi, lo)

	rh, rl := UnpermuteKey(phi, plo)
	require.Equal(t, hi, rh)
	require.Equal(t, lo, rl)
}

// TestExpandTemplateReconstructsRealPermutedKeyBits is the search
// package's ground-truth check: rather than running the brute-force
// search to completion (64 templates of 2^29 candidates each, never
// meant to finish inside a unit test), it derives the one outer
// template and the one inner counter that correspond to a known master
// key's actual permuted state, and checks that expandTemplate and the
// inner-loop OR-in formula reconstruct that state bit for bit.
func TestExpandTemplateReconstructsRealPermutedKeyBits(t *testing.T) {
	mk := referenceMasterKey()
	ks := cipher.Expand(mk)

	hi, lo := cipher.SplitMasterKey(mk)
	phi, plo := cipher.PermuteKey(hi, lo)

	rk16 := uint32(ks.Rk[17])
	rk17 := uint32(ks.Rk[18])
	rk18 := uint32(ks.Rk[19])

	mk59 := byte((plo >> 59) & 1)
	mk60 := byte((plo >> 60) & 1)
	mk61 := byte((plo >> 61) & 1)
	mk62 := byte((plo >> 62) & 1)
	mk63 := byte((plo >> 63) & 1)
	mk64 := byte(phi & 1)
	inBits := (mk64 << 5) | (mk63 << 4) | (mk62 << 3) | (mk61 << 2) | (mk60 << 1) | mk59

	tmplHi, tmplLo := expandTemplate(inBits, rk16, rk17, rk18)

	free17 := uint64(rk17) & 0x1FFFFFFF
	iFromHi := ((phi >> 32) & 0x1FFFFFFF) ^ free17
	iFromLo := (plo >> 29) & 0x1FFFFFFF
	require.Equal(t, iFromLo, iFromHi, "the hi-word and lo-word encodings of the free inner counter must agree")

	i := iFromLo
	gotHi := tmplHi | ((i ^ free17) << 32)
	gotLo := tmplLo | (i << 29)
	require.Equal(t, phi, gotHi, "reconstructed hi word must match the real permuted key")
	require.Equal(t, plo, gotLo, "reconstructed lo word must match the real permuted key")

	rh, rl := UnpermuteKey(gotHi, gotLo)
	require.Equal(t, mk, cipher.JoinMasterKey(rh, rl))
}

func TestContextVerifyAcceptsTrueKeyAndRejectsWrongKey(t *testing.T) {
	mk := referenceMasterKey()
	ks := cipher.Expand(mk)

	pairs := [2]dataset.Pair{
		{Plaintext: 0x1111111111111111, Ciphertext: cipher.Encrypt(0x1111111111111111, &ks)},
		{Plaintext: 0x2222222222222222, Ciphertext: cipher.Encrypt(0x2222222222222222, &ks)},
	}

	ctx := NewContext(pairs, 0, 0, 0)
	hi, lo := cipher.SplitMasterKey(mk)

	wrongHi := hi ^ 1
	require.False(t, ctx.verify(wrongHi, lo))
	require.False(t, ctx.Found())

	require.True(t, ctx.verify(hi, lo))
	require.True(t, ctx.Found())
	require.Equal(t, mk, ctx.FoundKey())
}

func TestContextPublishIsWriteOnce(t *testing.T) {
	var pairs [2]dataset.Pair
	ctx := NewContext(pairs, 0, 0, 0)

	first := [16]byte{1}
	second := [16]byte{2}
	ctx.publish(first)
	ctx.publish(second)

	require.True(t, ctx.Found())
	require.Equal(t, first, ctx.FoundKey())
}
