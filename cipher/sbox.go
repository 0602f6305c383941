// Package cipher implements the MGFN-18R block primitives: the 4-bit
// S-box, the byte-wide T-tables built from it, the 128-bit key schedule,
// and the 18-round Feistel encryptor together with its trailing-round
// partial-decryption helpers.
package cipher

// S is the cipher's 4-bit substitution box, indexed by the low nibble of
// its argument.
var S = [16]byte{
	0x7, 0xE, 0xF, 0x0, 0xD, 0xB, 0x8, 0x1,
	0x9, 0x3, 0x4, 0xC, 0x2, 0x5, 0xA, 0x6,
}

// IS is the inverse of S: IS[S[x]] == x for all x in 0..15.
var IS [16]byte

func init() {
	for x, y := range S {
		IS[y] = byte(x)
	}
}

// SubstituteWithSBox runs a single nibble through S, matching the
// original encryptor's substitute_with_sbox entry point.
func SubstituteWithSBox(nibble byte) byte {
	return S[nibble&0xF]
}

// substituteByte runs each nibble of b through S independently, used to
// build the T-tables and to substitute the top byte of the key-schedule
// state.
func substituteByte(b byte) byte {
	return S[(b>>4)&0xF]<<4 | S[b&0xF]
}

// inverseSubstituteByte is the nibble-wise inverse of substituteByte,
// used by the key-schedule inversion.
func inverseSubstituteByte(b byte) byte {
	return IS[(b>>4)&0xF]<<4 | IS[b&0xF]
}
