// Package search implements the constrained master-key search (C6):
// given two known (plaintext, ciphertext) pairs and the three recovered
// trailing-round subkeys, it enumerates 64 outer templates times 2^29
// inner candidates, undoes the key-schedule permutation on each, and
// verifies by re-encryption.
package search

import "github.com/treewonwoo/mgfn-linear-cryptanalysis/cipher"

// UnpermuteKey undoes the key schedule's forward permutation, recovering
// the original master key's (hi, lo) from a fully permuted state. It is
// the exact inverse of cipher.PermuteKey.
func UnpermuteKey(mkh, mkl uint64) (uint64, uint64) {
	rotl61(&mkh, &mkl)
	for r := 10; r > 0; r-- {
		undoRoundConstant(&mkh, &mkl, r)

		sb := byte(mkh >> 56)
		n0, n1 := (sb>>4)&0xF, sb&0xF
		o0, o1 := cipher.IS[n0], cipher.IS[n1]
		mkh = (mkh & 0x00FFFFFFFFFFFFFF) | uint64(o0)<<60 | uint64(o1)<<56

		rotl67(&mkh, &mkl)
	}
	return mkh, mkl
}

// undoRoundConstant undoes the self-inverse round-constant fold applied
// at forward schedule round r.
func undoRoundConstant(hi, lo *uint64, r int) {
	up := uint64((r >> 2) & 3)
	dn := uint64(r & 3)
	*hi = (*hi &^ 3) | ((*hi & 3) ^ up)
	*lo = (*lo &^ (3 << 62)) | ((((*lo >> 62) & 3) ^ dn) << 62)
}

func rotl61(hi, lo *uint64) {
	h, l := *hi, *lo
	*hi = (h << 61) | (l >> 3)
	*lo = (l << 61) | (h >> 3)
}

func rotl67(hi, lo *uint64) {
	h, l := *hi, *lo
	*hi = (l << 3) | (h >> 61)
	*lo = (h << 3) | (l >> 61)
}
