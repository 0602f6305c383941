package cipher

// te1..te4 are the cipher's AES-like T-tables: each places a
// nibble-substituted byte at a fixed lane of a 32-bit word, so that a
// 32-bit input can be substituted one byte at a time and recombined with
// four table lookups and three XORs, the way te1 sat-1 (GOST-derived)
// tables work. te1 occupies the most significant byte lane, te4 the
// least significant.
var (
	te1 [256]uint32
	te2 [256]uint32
	te3 [256]uint32
	te4 [256]uint32
)

func init() {
	for i := 0; i < 256; i++ {
		sb := uint32(substituteByte(byte(i)))
		te1[i] = sb << 24
		te2[i] = sb << 16
		te3[i] = sb << 8
		te4[i] = sb
	}
}

// tableLookup substitutes each byte of the low 32 bits of input through
// the matching T-table and recombines the results, mirroring the
// original encryptor's Table_lookup(uint64_t) -> uint64_t entry point.
func tableLookup(input uint64) uint64 {
	v := uint32(input)
	out := te1[(v>>24)&0xFF] ^ te2[(v>>16)&0xFF] ^ te3[(v>>8)&0xFF] ^ te4[v&0xFF]
	return uint64(out)
}
