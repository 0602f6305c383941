package cipher

import "math/bits"

// KeySchedule holds the expanded key material for one attack run: the 14
// raw round keys produced while permuting the master key, and the 26-word
// schedule actually consumed by the encryption loop.
type KeySchedule struct {
	RoundKeys [14]uint64
	Rk        [26]uint64
}

// SplitMasterKey packs a 16-byte big-endian master key into (hi, lo),
// where hi holds bytes 0..7 and lo holds bytes 8..15, both MSB-first.
func SplitMasterKey(masterKey [16]byte) (hi, lo uint64) {
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(masterKey[i])
	}
	for i := 8; i < 16; i++ {
		lo = lo<<8 | uint64(masterKey[i])
	}
	return hi, lo
}

// JoinMasterKey is the inverse of SplitMasterKey.
func JoinMasterKey(hi, lo uint64) [16]byte {
	var mk [16]byte
	for i := 0; i < 8; i++ {
		mk[i] = byte(hi >> (56 - 8*i))
	}
	for i := 0; i < 8; i++ {
		mk[8+i] = byte(lo >> (56 - 8*i))
	}
	return mk
}

// roundConstant applies the self-inverse round-constant fold used at
// schedule round r: the low 2 bits of hi are XORed with (r>>2)&3, and the
// top 2 bits of lo are XORed with r&3.
func roundConstant(hi, lo *uint64, r int) {
	up := uint64((r >> 2) & 3)
	dn := uint64(r & 3)
	*hi = (*hi &^ 3) | ((*hi & 3) ^ up)
	*lo = (*lo &^ (3 << 62)) | ((((*lo >> 62) & 3) ^ dn) << 62)
}

// scheduleStep advances the permuted key state by one forward round:
// rotate left 61, substitute the top byte of hi through S, fold in the
// round constant for r. This is the exact inverse, applied in reverse
// order, of the per-round undo steps in the searcher's unpermute.
func scheduleStep(hi, lo *uint64, r int) {
	rotl61(hi, lo)
	top := byte(*hi >> 56)
	*hi = (*hi & 0x00FFFFFFFFFFFFFF) | uint64(substituteByte(top))<<56
	roundConstant(hi, lo, r)
}

// PermuteKey runs the full 10-round forward permutation over the master
// key's (hi, lo) representation, ending with the trailing rotl67. It is
// the exact inverse of the searcher's UnpermuteKey.
func PermuteKey(hi, lo uint64) (uint64, uint64) {
	for r := 1; r <= 10; r++ {
		scheduleStep(&hi, &lo, r)
	}
	rotl67(&hi, &lo)
	return hi, lo
}

// Expand builds a KeySchedule from a 16-byte master key. The 14 raw round
// keys are the (hi, lo) snapshots taken at the end of schedule rounds
// 1..7; the permutation continues through round 10 purely as the
// mixing step PermuteKey also performs, so that the two stay consistent.
func Expand(masterKey [16]byte) KeySchedule {
	hi, lo := SplitMasterKey(masterKey)

	var ks KeySchedule
	for r := 1; r <= 10; r++ {
		scheduleStep(&hi, &lo, r)
		if r <= 7 {
			ks.RoundKeys[2*(r-1)] = hi
			ks.RoundKeys[2*(r-1)+1] = lo
		}
	}

	for j := 0; j < 26; j++ {
		ks.Rk[j] = bits.RotateLeft64(ks.RoundKeys[j%14], j)
	}
	return ks
}
