package analyzer

import "github.com/treewonwoo/mgfn-linear-cryptanalysis/cipher"

// sbox looks up a candidate or already-recovered nibble through the
// cipher's 4-bit S-box, matching the global `S[16]` the original linear
// cryptanalysis reads directly.
func sbox(nibble uint32) uint32 {
	return uint32(cipher.S[nibble&0xF])
}

// substituteWithSBox mirrors the original's substitute_with_sbox entry
// point used by rounds 1 and 2's approximations.
func substituteWithSBox(nibble uint32) uint32 {
	return uint32(cipher.SubstituteWithSBox(byte(nibble)))
}

// parityBit evaluates the single linear-approximation bit for (round,
// stage) over one (P, C) sample, against the already-recovered nibbles
// of rk[round] and the trial candidate key. round is 0, 1, or 2 (the
// last, second-to-last, and third-to-last cipher rounds respectively);
// stage is 0..7. d1 and d2 are the one- and two-round peel-backs of C,
// required for round >= 1 and round >= 2 respectively; callers pass 0
// when not required. Every bit position and S-box argument below is a
// literal constant of the cipher's linear trail, transcribed unchanged
// from the reference cryptanalysis; they are not derived from first
// principles and must not be "simplified".
func parityBit(round, stage int, p, c uint64, d1, d2 uint32, rk [3]cipher.NibbleKey, key uint32) uint64 {
	rk0, rk1, rk2 := rk[0], rk[1], rk[2]

	switch round {
	case 0:
		rotatedC := uint32((((c >> 15) & 0xE) ^ ((c >> 31) & 1)) & 0xF)

		var t uint64
		switch stage {
		case 0:
			t = (c >> 48) & 1 ^ (p>>48)&1 ^ (c>>16)&1
			t ^= uint64(sbox(rotatedC^key) & 1)
		case 1:
			t = (p>>48)&1 ^ (c>>16)&1 ^ (c>>50)&1
			t ^= uint64((sbox(uint32((c>>8)&0xF)^key) >> 2) & 1)
		case 2:
			t = (p>>48)&1 ^ (c>>16)&1 ^ (c>>50)&1 ^ (c>>63)&1
			t ^= uint64((sbox(uint32((c>>8)&0xF)^uint32(rk0[1])) >> 2) & 1)
			t ^= uint64(sbox(uint32((c>>19)&0xF)^key) & 1)
		case 3:
			t = (p>>48)&1 ^ (c>>16)&1 ^ (c>>49)&1 ^ (c>>63)&1
			t ^= uint64(sbox(uint32((c>>19)&0xF)^uint32(rk0[5])) & 1)
			t ^= uint64(sbox(uint32((c>>27)&0xF)^key) & 1)
		case 4:
			t = (p >> 16) & 1
			t ^= (c>>18)&1 ^ (c>>40)&1 ^ (c>>43)&1 ^ (c>>48)&1
			t ^= uint64(sbox(rotatedC^uint32(rk0[8])) & 1)
			t ^= uint64((sbox(uint32((c>>8)&0xF)^uint32(rk0[1])) >> 1) & 1)
			t ^= uint64((sbox(uint32((c>>4)&0xF)^key) >> 1) & 1)
		case 5:
			t = (p >> 16) & 1
			t ^= (c>>18)&1 ^ (c>>41)&1 ^ (c>>43)&1 ^ (c>>48)&1
			t ^= uint64(sbox(rotatedC^uint32(rk0[8])) & 1)
			t ^= uint64((sbox(uint32((c>>8)&0xF)^uint32(rk0[1])) >> 1) & 1)
			t ^= uint64(sbox(uint32((c>>23)&0xF)^key) & 1)
		case 6:
			t = (p >> 16) & 1
			t ^= (c>>17)&1 ^ (c>>31)&1 ^ (c>>48)&1 ^ (c>>51)&1 ^ (c>>53)&1 ^ (c>>59)&1 ^ (c>>61)&1
			t ^= uint64(sbox(rotatedC^uint32(rk0[8])) & 1)
			t ^= uint64((sbox(rotatedC^uint32(rk0[8])) >> 3) & 1)
			t ^= uint64((sbox(uint32((c>>19)&0xF)^uint32(rk0[5])) >> 3) & 1)
			t ^= uint64((sbox(uint32((c>>4)&0xF)^uint32(rk0[4])) >> 2) & 1)
			t ^= uint64((sbox(uint32((c>>12)&0xF)^key) >> 1) & 1)
		case 7:
			t = (p >> 16) & 1
			t ^= (c>>17)&1 ^ (c>>31)&1 ^ (c>>48)&1 ^ (c>>51)&1 ^ (c>>53)&1 ^ (c>>60)&1
			t ^= uint64(sbox(rotatedC^uint32(rk0[8])) & 1)
			t ^= uint64((sbox(uint32((c>>19)&0xF)^uint32(rk0[5])) >> 3) & 1)
			t ^= uint64((sbox(uint32((c>>12)&0xF)^uint32(rk0[2])) >> 1) & 1)
			t ^= uint64((sbox(uint32(c&0xF)^key) >> 3) & 1)
		}
		return t & 1

	case 1:
		d := uint64(d1)
		var t uint64
		switch stage {
		case 0:
			t = (d>>16)&1 ^ (p>>16)&1 ^ (c>>16)&1
			t ^= uint64(substituteWithSBox(uint32((((d1>>15)&0xE)^((d1>>31)&1)))^key) & 1)
		case 1:
			t = (p>>16)&1 ^ (c>>18)&1 ^ (d>>16)&1
			t ^= uint64((substituteWithSBox(uint32((d1>>8)&0xF)^key) >> 2) & 1)
		case 2:
			t = (p>>16)&1 ^ (c>>18)&1 ^ (c>>31)&1 ^ (d>>16)&1
			t ^= uint64((substituteWithSBox(uint32((d1>>8)&0xF)^uint32(rk1[1])) >> 2) & 1)
			t ^= uint64(substituteWithSBox(uint32((d1>>19)&0xF)^key) & 1)
		case 3:
			t = (p>>16)&1 ^ (c>>17)&1 ^ (c>>31)&1 ^ (d>>16)&1
			t ^= uint64(substituteWithSBox(uint32((d1>>19)&0xF)^uint32(rk1[5])) & 1)
			t ^= uint64(substituteWithSBox(uint32((d1>>27)&0xF)^key) & 1)
		case 4:
			t = (p>>48)&1 ^ (p>>16)&1 ^ (c>>8)&1 ^ (c>>11)&1 ^ (c>>16)&1 ^ (d>>18)&1
			t ^= uint64(substituteWithSBox(uint32((((d1>>15)&0xE)^((d1>>31)&1)))^uint32(rk1[8])) & 1)
			t ^= uint64((substituteWithSBox(uint32((d1>>8)&0xF)^uint32(rk1[1])) >> 1) & 1)
			t ^= uint64((substituteWithSBox(uint32((d1>>4)&0xF)^key) >> 1) & 1)
		case 5:
			t = (p>>48)&1 ^ (p>>16)&1 ^ (c>>9)&1 ^ (c>>11)&1 ^ (c>>16)&1 ^ (d>>18)&1
			t ^= uint64(substituteWithSBox(uint32((((d1>>15)&0xE)^((d1>>31)&1)))^uint32(rk1[8])) & 1)
			t ^= uint64((substituteWithSBox(uint32((d1>>8)&0xF)^uint32(rk1[1])) >> 1) & 1)
			t ^= uint64(substituteWithSBox(uint32((d1>>23)&0xF)^key) & 1)
		case 6:
			t = (p>>48)&1 ^ (p>>16)&1 ^ (c>>16)&1 ^ (c>>19)&1 ^ (c>>21)&1 ^ (c>>27)&1 ^ (c>>29)&1 ^ (d>>17)&1 ^ (d>>31)&1
			t ^= uint64(substituteWithSBox(uint32((((d1>>15)&0xE)^((d1>>31)&1)))^uint32(rk1[8])) & 1)
			t ^= uint64((substituteWithSBox(uint32((((d1>>15)&0xE)^((d1>>31)&1)))^uint32(rk1[8])) >> 3) & 1)
			t ^= uint64((substituteWithSBox(uint32((d1>>19)&0xF)^uint32(rk1[5])) >> 3) & 1)
			t ^= uint64((substituteWithSBox(uint32((d1>>4)&0xF)^uint32(rk1[4])) >> 2) & 1)
			t ^= uint64((substituteWithSBox(uint32((d1>>12)&0xF)^key) >> 1) & 1)
		case 7:
			t = (p>>48)&1 ^ (p>>16)&1 ^ (c>>16)&1 ^ (c>>19)&1 ^ (c>>21)&1 ^ (c>>28)&1 ^ (d>>17)&1 ^ (d>>31)&1
			t ^= uint64(substituteWithSBox(uint32((((d1>>15)&0xE)^((d1>>31)&1)))^uint32(rk1[8])) & 1)
			t ^= uint64((substituteWithSBox(uint32((d1>>19)&0xF)^uint32(rk1[5])) >> 3) & 1)
			t ^= uint64((substituteWithSBox(uint32((d1>>12)&0xF)^uint32(rk1[2])) >> 1) & 1)
			t ^= uint64((substituteWithSBox(uint32(d1&0xF)^key) >> 3) & 1)
		}
		return t & 1

	default: // round == 2
		dd1 := uint64(d1)
		dd2 := uint64(d2)
		var t uint64
		switch stage {
		case 0:
			t = (p>>48)&1 ^ (p>>16)&1 ^ (dd1>>16)&1 ^ (dd2>>16)&1
			t ^= uint64(substituteWithSBox(uint32((((d2>>15)&0xE)^((d2>>31)&1)))^key) & 1)
		case 1:
			t = (p>>48)&1 ^ (p>>16)&1 ^ (dd1>>18)&1 ^ (dd2>>16)&1
			t ^= uint64((substituteWithSBox(uint32((d2>>8)&0xF)^key) >> 2) & 1)
		case 2:
			t = (p>>48)&1 ^ (p>>16)&1 ^ (dd1>>18)&1 ^ (dd1>>31)&1 ^ (dd2>>16)&1
			t ^= uint64((substituteWithSBox(uint32((d2>>8)&0xF)^uint32(rk2[1])) >> 2) & 1)
			t ^= uint64(substituteWithSBox(uint32((d2>>19)&0xF)^key) & 1)
		case 3:
			t = (p>>48)&1 ^ (p>>16)&1 ^ (dd1>>17)&1 ^ (dd1>>31)&1 ^ (dd2>>16)&1
			t ^= uint64(substituteWithSBox(uint32((d2>>19)&0xF)^uint32(rk2[5])) & 1)
			t ^= uint64(substituteWithSBox(uint32((d2>>27)&0xF)^key) & 1)
		case 4:
			t = (p>>48)&1 ^ (dd1>>8)&1 ^ (dd1>>11)&1 ^ (dd1>>16)&1 ^ (dd2>>18)&1
			t ^= uint64(substituteWithSBox(uint32((((d2>>15)&0xE)^((d2>>31)&1)))^uint32(rk2[8])) & 1)
			t ^= uint64((substituteWithSBox(uint32((d2>>8)&0xF)^uint32(rk2[1])) >> 1) & 1)
			t ^= uint64((substituteWithSBox(uint32((d2>>4)&0xF)^key) >> 1) & 1)
		case 5:
			t = (p>>48)&1 ^ (dd1>>9)&1 ^ (dd1>>11)&1 ^ (dd1>>16)&1 ^ (dd2>>18)&1
			t ^= uint64(substituteWithSBox(uint32((((d2>>15)&0xE)^((d2>>31)&1)))^uint32(rk2[8])) & 1)
			t ^= uint64((substituteWithSBox(uint32((d2>>8)&0xF)^uint32(rk2[1])) >> 1) & 1)
			t ^= uint64(substituteWithSBox(uint32((d2>>23)&0xF)^key) & 1)
		case 6:
			t = (p>>48)&1 ^ (dd1>>16)&1 ^ (dd1>>19)&1 ^ (dd1>>21)&1 ^ (dd1>>27)&1 ^ (dd1>>29)&1 ^ (dd2>>17)&1 ^ (dd2>>31)&1
			t ^= uint64(substituteWithSBox(uint32((((d2>>15)&0xE)^((d2>>31)&1)))^uint32(rk2[8])) & 1)
			t ^= uint64((substituteWithSBox(uint32((((d2>>15)&0xE)^((d2>>31)&1)))^uint32(rk2[8])) >> 3) & 1)
			t ^= uint64((substituteWithSBox(uint32((d2>>19)&0xF)^uint32(rk2[5])) >> 3) & 1)
			t ^= uint64((substituteWithSBox(uint32((d2>>4)&0xF)^uint32(rk2[4])) >> 2) & 1)
			t ^= uint64((substituteWithSBox(uint32((d2>>12)&0xF)^key) >> 1) & 1)
		case 7:
			t = (p>>48)&1 ^ (dd1>>16)&1 ^ (dd1>>19)&1 ^ (dd1>>21)&1 ^ (dd1>>28)&1 ^ (dd2>>17)&1 ^ (dd2>>31)&1
			t ^= uint64(substituteWithSBox(uint32((((d2>>15)&0xE)^((d2>>31)&1)))^uint32(rk2[8])) & 1)
			t ^= uint64((substituteWithSBox(uint32((d2>>19)&0xF)^uint32(rk2[5])) >> 3) & 1)
			t ^= uint64((substituteWithSBox(uint32((d2>>12)&0xF)^uint32(rk2[2])) >> 1) & 1)
			t ^= uint64((substituteWithSBox(uint32(d2&0xF)^key) >> 3) & 1)
		}
		return t & 1
	}
}
