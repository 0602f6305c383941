package cipher

import "math/bits"

// roundF is the cipher's round function: substitute X XOR K through the
// T-tables, then rotate the 32-bit result left by 11, matching the
// GOST-style post-substitution mix this cipher's round structure follows.
func roundF(x, k uint32) uint32 {
	return bits.RotateLeft32(uint32(tableLookup(uint64(x^k))), 11)
}

// Encrypt runs the 18-round reduced Feistel transform over a 64-bit
// block under the given key schedule.
func Encrypt(plaintext uint64, ks *KeySchedule) uint64 {
	l := uint32(plaintext>>32) ^ uint32(ks.Rk[0])
	r := uint32(plaintext) ^ uint32(ks.Rk[1])

	for i := 0; i < 18; i++ {
		k := uint32(ks.Rk[2+i])
		newR := l ^ roundF(r, k)
		l = r
		r = newR
	}
	return uint64(l)<<32 | uint64(r)
}

// DecryptHalfOneRound peels back the final round of encryption given the
// packed 9-nibble subkey for that round, returning the 32-bit left half
// of the state one round before the ciphertext.
func DecryptHalfOneRound(ciphertext uint64, nibKey NibbleKey) uint32 {
	return DecryptHalfOneRound1(ciphertext, PackNibbles(nibKey))
}

// DecryptHalfOneRound1 is the pre-packed-key variant of
// DecryptHalfOneRound.
func DecryptHalfOneRound1(ciphertext uint64, rk18 uint32) uint32 {
	l18 := uint32(ciphertext >> 32)
	r18 := uint32(ciphertext)
	return r18 ^ roundF(l18, rk18)
}

// DecryptHalfTwoRound peels back the final two rounds, given the packed
// 9-nibble subkeys for the last round and the one before it.
func DecryptHalfTwoRound(ciphertext uint64, nibKey0, nibKey1 NibbleKey) uint32 {
	l18 := uint32(ciphertext >> 32)
	l17 := DecryptHalfOneRound(ciphertext, nibKey0)
	r17 := l18
	rk17 := PackNibbles(nibKey1)
	return r17 ^ roundF(l17, rk17)
}

// DecryptHalfThreeRound peels back the final three rounds.
func DecryptHalfThreeRound(ciphertext uint64, nibKey0, nibKey1, nibKey2 NibbleKey) uint32 {
	l17 := DecryptHalfOneRound(ciphertext, nibKey0)
	l16 := DecryptHalfTwoRound(ciphertext, nibKey0, nibKey1)
	r16 := l17
	rk16 := PackNibbles(nibKey2)
	return r16 ^ roundF(l16, rk16)
}
