package search

import (
	"runtime"
	"sync"

	"github.com/treewonwoo/mgfn-linear-cryptanalysis/cipher"
)

// invSBox applies the cipher's inverse S-box to a single 4-bit value,
// the same table unpermute_key uses on the top byte of the permuted key.
func invSBox(nibble byte) byte {
	return cipher.IS[nibble&0xF]
}

// innerIterations is the size of one template's inner candidate space:
// the 29 middle bits of the master key left undetermined once RK16,
// RK17, RK18 and the outer template's 6 free bits are fixed.
const innerIterations = uint64(1) << 29

// outerTemplates is the number of distinct settings of the 6 free bits
// (MK59..MK64) a full search walks before giving up.
const outerTemplates = 64

// expandTemplate derives the fixed bits of a candidate master key from
// one outer template's 6 free bits (in_bits) together with the three
// recovered trailing-round subkeys, mirroring search_one's bit-expansion
// table bit for bit. It returns the partial (hi, lo) with every bit the
// expansion determines already set; the caller ORs in the 29 free bits
// of the inner loop.
func expandTemplate(inBits byte, rk16, rk17, rk18 uint32) (tmplHi, tmplLo uint64) {
	mk64 := (inBits >> 5) & 1
	mk63 := (inBits >> 4) & 1
	mk62 := (inBits >> 3) & 1
	mk61 := (inBits >> 2) & 1
	mk60 := (inBits >> 1) & 1
	mk59 := inBits & 1

	a := invSBox(((mk62 << 3) | (mk61 << 2) | (mk60 << 1) | mk59)) ^ 0x8 ^ byte((rk16>>1)&0xF)
	b := invSBox(((a & 3) << 2) | (mk64 << 1) | mk63) ^ 0x4 ^ byte((rk16>>5)&0xF)

	mk68 := (a >> 3) & 1
	mk67 := (a >> 2) & 1
	mk66 := (a >> 1) & 1
	mk65 := a & 1
	mk72 := (b >> 3) & 1
	mk71 := (b >> 2) & 1
	mk70 := (b >> 1) & 1
	mk69 := b & 1

	xor1 := func(x byte, off uint) byte { return x ^ byte((rk18>>off)&1) }
	xor2 := func(x byte, off uint) byte { return x ^ byte((rk16>>off)&1) }

	mk125 := xor1(mk64, 0)
	mk126 := xor1(mk65, 1)
	mk127 := xor1(mk66, 2)
	mk0 := xor1(mk67, 3)
	mk1 := xor1(mk68, 4)
	mk2 := xor1(mk69, 5) ^ 1
	mk3 := xor1(mk70, 6)
	mk4 := xor1(mk71, 7) ^ 1
	mk5 := xor1(mk72, 8)

	mk58 := xor2(mk64, 0)
	mk73 := xor2(mk67, 9)
	mk74 := xor2(mk68, 10)
	mk75 := xor2(mk69, 11)
	mk76 := xor2(mk70, 12)
	mk77 := xor2(mk71, 13)
	mk78 := xor2(mk72, 14)

	mk6 := xor1(mk73, 9)
	mk7 := xor1(mk74, 10)
	mk8 := xor1(mk75, 11)
	mk9 := xor1(mk76, 12)
	mk10 := xor1(mk77, 13)
	mk11 := xor1(mk78, 14)

	mk79 := xor2(mk73, 15)
	mk80 := xor2(mk74, 16)
	mk81 := xor2(mk75, 17)
	mk82 := xor2(mk76, 18)
	mk83 := xor2(mk77, 19)
	mk84 := xor2(mk78, 20)

	mk12 := xor1(mk79, 15)
	mk13 := xor1(mk80, 16)
	mk14 := xor1(mk81, 17)
	mk15 := xor1(mk82, 18)
	mk16 := xor1(mk83, 19)
	mk17 := xor1(mk84, 20)

	mk85 := xor2(mk79, 21)
	mk86 := xor2(mk80, 22)
	mk87 := xor2(mk81, 23)
	mk88 := xor2(mk82, 24)
	mk89 := xor2(mk83, 25)
	mk90 := xor2(mk84, 26)

	mk18 := xor1(mk85, 21)
	mk19 := xor1(mk86, 22)
	mk20 := xor1(mk87, 23)
	mk21 := xor1(mk88, 24)
	mk22 := xor1(mk89, 25)
	mk23 := xor1(mk90, 26)

	mk91 := xor2(mk85, 27)
	mk92 := xor2(mk86, 28)
	mk93 := xor2(mk87, 29)
	mk94 := xor2(mk88, 30)
	mk95 := xor2(mk89, 31)

	mk24 := xor1(mk91, 27)
	mk25 := xor1(mk92, 28)
	mk26 := xor1(mk93, 29)
	mk27 := xor1(mk94, 30)
	mk28 := xor1(mk95, 31)

	setH := func(pos uint, val byte) { tmplHi |= uint64(val) << pos }
	setL := func(pos uint, val byte) { tmplLo |= uint64(val) << pos }

	setH(0, mk64)
	setH(1, mk65)
	setH(2, mk66)
	setH(3, mk67)
	setH(4, mk68)
	setH(5, mk69)
	setH(6, mk70)
	setH(7, mk71)
	setH(8, mk72)
	setH(9, mk73)
	setH(10, mk74)
	setH(11, mk75)
	setH(12, mk76)
	setH(13, mk77)
	setH(14, mk78)
	setH(15, mk79)
	setH(16, mk80)
	setH(17, mk81)
	setH(18, mk82)
	setH(19, mk83)
	setH(20, mk84)
	setH(21, mk85)
	setH(22, mk86)
	setH(23, mk87)
	setH(24, mk88)
	setH(25, mk89)
	setH(26, mk90)
	setH(27, mk91)
	setH(28, mk92)
	setH(29, mk93)
	setH(30, mk94)
	setH(31, mk95)
	setH(61, mk125)
	setH(62, mk126)
	setH(63, mk127)

	setL(0, mk0)
	setL(1, mk1)
	setL(2, mk2)
	setL(3, mk3)
	setL(4, mk4)
	setL(5, mk5)
	setL(6, mk6)
	setL(7, mk7)
	setL(8, mk8)
	setL(9, mk9)
	setL(10, mk10)
	setL(11, mk11)
	setL(12, mk12)
	setL(13, mk13)
	setL(14, mk14)
	setL(15, mk15)
	setL(16, mk16)
	setL(17, mk17)
	setL(18, mk18)
	setL(19, mk19)
	setL(20, mk20)
	setL(21, mk21)
	setL(22, mk22)
	setL(23, mk23)
	setL(24, mk24)
	setL(25, mk25)
	setL(26, mk26)
	setL(27, mk27)
	setL(28, mk28)
	setL(58, mk58)
	setL(59, mk59)
	setL(60, mk60)
	setL(61, mk61)
	setL(62, mk62)
	setL(63, mk63)

	return tmplHi, tmplLo
}

// searchOne walks one outer template's 2^29 inner candidates across a
// pool of workers, OR-ing the free 29 bits into the template, undoing
// the schedule permutation, and verifying by re-encryption. It returns
// as soon as ctx reports a candidate found, by any template's workers.
func searchOne(ctx *Context, inBits byte, workers int) {
	tmplHi, tmplLo := expandTemplate(inBits, ctx.RK16, ctx.RK17, ctx.RK18)
	free17 := uint64(ctx.RK17) & 0x1FFFFFFF

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	chunk := innerIterations / uint64(workers)
	if chunk == 0 {
		chunk = innerIterations
		workers = 1
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := uint64(w) * chunk
		end := start + chunk
		if w == workers-1 {
			end = innerIterations
		}

		wg.Add(1)
		go func(start, end uint64) {
			defer wg.Done()
			for i := start; i < end; i++ {
				if ctx.Found() {
					return
				}

				hi := tmplHi | ((i ^ free17) << 32)
				lo := tmplLo | (i << 29)

				rh, rl := UnpermuteKey(hi, lo)
				if ctx.verify(rh, rl) {
					return
				}
			}
		}(start, end)
	}
	wg.Wait()
}
