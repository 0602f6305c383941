package search

import "github.com/treewonwoo/mgfn-linear-cryptanalysis/dataset"

// FindMasterKey recovers the 128-bit master key from two known
// (plaintext, ciphertext) pairs and the three trailing-round subkeys
// already recovered by the analyzer (rk16 = round 16, rk17 = round 17,
// rk18 = round 18, the cipher's last round). It walks the 64 outer
// templates in order, stopping as soon as one of its worker pools
// verifies a candidate against both pairs.
//
// workers bounds the goroutines spawned per template; a value <= 0
// defaults to runtime.NumCPU().
func FindMasterKey(pairs [2]dataset.Pair, rk16, rk17, rk18 uint32, workers int) ([16]byte, bool) {
	ctx := NewContext(pairs, rk16, rk17, rk18)

	for in := 0; in < outerTemplates && !ctx.Found(); in++ {
		searchOne(ctx, byte(in), workers)
	}

	if !ctx.Found() {
		return [16]byte{}, false
	}
	return ctx.FoundKey(), true
}
