package analyzer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/treewonwoo/mgfn-linear-cryptanalysis/cipher"
	"github.com/treewonwoo/mgfn-linear-cryptanalysis/dataset"
)

func TestFindMaxDeviationIndexPicksLargestBias(t *testing.T) {
	var bucket [16]uint64
	used := uint64(1000)
	for i := range bucket {
		bucket[i] = used / 2
	}
	bucket[9] = used/2 + 400 // clearly the most biased candidate

	best, report := findMaxDeviationIndex(bucket, used)
	require.Equal(t, 9, best)
	require.Equal(t, uint64(400), report[9].Diff)
}

func TestFindMaxDeviationIndexTieBreaksToSmallestIndex(t *testing.T) {
	var bucket [16]uint64
	used := uint64(1000)
	for i := range bucket {
		bucket[i] = used / 2
	}
	bucket[3] = used/2 + 100
	bucket[11] = used/2 + 100 // same bias as index 3, but discovered later

	best, _ := findMaxDeviationIndex(bucket, used)
	require.Equal(t, 3, best)
}

func TestStageToPosCoversPositionsOneThroughEight(t *testing.T) {
	seen := make(map[int]bool)
	for _, pos := range stageToPos {
		seen[pos] = true
	}
	for pos := 1; pos <= 8; pos++ {
		require.True(t, seen[pos], "position %d must be covered by some stage", pos)
	}
	require.False(t, seen[0], "position 0 is never statistically determined")
}

func TestParityBitIsDeterministic(t *testing.T) {
	var rk [3]cipher.NibbleKey
	for r := range rk {
		for i := range rk[r] {
			rk[r][i] = byte(i)
		}
	}

	const p, c = 0x0011223344556677, 0x8899aabbccddeeff
	for round := 0; round < 3; round++ {
		for stage := 0; stage < 8; stage++ {
			a := parityBit(round, stage, p, c, 0x12345678, 0x9abcdef0, rk, 5)
			b := parityBit(round, stage, p, c, 0x12345678, 0x9abcdef0, rk, 5)
			require.Equal(t, a, b, "round %d stage %d must be a pure function of its inputs", round, stage)
			require.LessOrEqual(t, a, uint64(1), "parity must be a single bit")
		}
	}
}

func TestParityBitVariesWithCandidateKey(t *testing.T) {
	var rk [3]cipher.NibbleKey
	const p, c = 0x0011223344556677, 0x8899aabbccddeeff

	different := false
	base := parityBit(0, 0, p, c, 0, 0, rk, 0)
	for k := uint32(1); k < 16; k++ {
		if parityBit(0, 0, p, c, 0, 0, rk, k) != base {
			different = true
			break
		}
	}
	require.True(t, different, "varying the candidate key should change at least one parity outcome across 16 candidates")
}

// TestRecoverWithExponentsRunsToCompletionOnASyntheticScale exercises the
// full three-round, eight-stage pipeline against a reduced sample-size
// table so the scenario fits in a unit test; it checks the pipeline's
// structural contract (every position gets a 0..15 nibble, the bias
// table accounts for all 16 candidates, no insufficient-data condition
// when the dataset covers the reduced requirement).
//
// This deliberately does not assert rk_nib equals the dataset's planted
// ground-truth key, the way spec §8 scenario 3 describes. The 24 linear
// approximations in parity.go are ported bit-for-bit from the true
// cipher's recovered source, but the T-tables and round-mixing rotation
// they are meant to bias against (cipher/tables.go, cipher/cipher.go)
// are this tree's own reconstruction (DESIGN.md Open Questions 4-5) —
// whether that reconstruction actually exhibits the same linear trail as
// the real cipher cannot be established without running the statistical
// attack, which is out of scope here. See DESIGN.md's Open Question 8 for
// the full disclosure.
func TestRecoverWithExponentsRunsToCompletionOnASyntheticScale(t *testing.T) {
	mk := [16]byte{
		0xB7, 0x45, 0xC5, 0xC6, 0x10, 0x61, 0x98, 0xF3,
		0xCA, 0x4C, 0xD4, 0x5E, 0x2B, 0x9F, 0x91, 0x0F,
	}
	ks := cipher.Expand(mk)

	path := filepath.Join(t.TempDir(), "synthetic.bin")
	const pairs = 1 << 8
	require.NoError(t, dataset.Generate(path, pairs, &ks, 4, nil))

	r, err := dataset.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	var reduced [3][8]int
	for round := range reduced {
		for stage := range reduced[round] {
			reduced[round][stage] = 6 // 2^6 = 64 < pairs, comfortably satisfiable
		}
	}

	rk, report, err := RecoverWithExponents(r, reduced)
	require.NoError(t, err)

	for round := 0; round < 3; round++ {
		for stage := 0; stage < 8; stage++ {
			var total uint64
			for _, res := range report[round][stage] {
				total += res.Value
			}
			require.LessOrEqual(t, total, uint64(16)<<reduced[round][stage])
		}
		for _, pos := range stageToPos {
			require.LessOrEqual(t, rk[round][pos], byte(15))
		}
	}
}

// TestRecoverWithExponentsIsDeterministic exercises spec §8's "Parity
// bucket determinism" property directly: re-running the same (round,
// stage) passes against the same dataset prefix must yield identical
// bucket values and therefore identical recovered nibbles and bias
// reports, regardless of how runStage's per-candidate goroutines happen
// to interleave. Unlike ground-truth recovery (see the test above), this
// holds unconditionally by construction — the bucket accumulation is a
// commutative integer sum over a fixed set of samples — so it is asserted
// directly rather than disclosed as a limitation.
func TestRecoverWithExponentsIsDeterministic(t *testing.T) {
	mk := [16]byte{
		0xB7, 0x45, 0xC5, 0xC6, 0x10, 0x61, 0x98, 0xF3,
		0xCA, 0x4C, 0xD4, 0x5E, 0x2B, 0x9F, 0x91, 0x0F,
	}
	ks := cipher.Expand(mk)

	path := filepath.Join(t.TempDir(), "determinism.bin")
	const pairs = 1 << 8
	require.NoError(t, dataset.Generate(path, pairs, &ks, 4, nil))

	var reduced [3][8]int
	for round := range reduced {
		for stage := range reduced[round] {
			reduced[round][stage] = 6
		}
	}

	r1, err := dataset.OpenReader(path)
	require.NoError(t, err)
	defer r1.Close()
	rk1, report1, err := RecoverWithExponents(r1, reduced)
	require.NoError(t, err)

	r2, err := dataset.OpenReader(path)
	require.NoError(t, err)
	defer r2.Close()
	rk2, report2, err := RecoverWithExponents(r2, reduced)
	require.NoError(t, err)

	require.Equal(t, rk1, rk2, "recovered nibble keys must be identical across independent runs over the same dataset")
	require.Equal(t, report1, report2, "bias reports must be identical across independent runs over the same dataset")
}
