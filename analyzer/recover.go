// Package analyzer implements the per-round, per-stage linear-bias
// subkey recovery: for rounds 0..2 (the cipher's last, second-to-last,
// and third-to-last rounds) and stages 0..7, it streams a dataset,
// accumulates a 16-way parity bucket, and commits the highest-bias
// candidate into the round's nibble key.
package analyzer

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/treewonwoo/mgfn-linear-cryptanalysis/cipher"
	"github.com/treewonwoo/mgfn-linear-cryptanalysis/dataset"
)

// ErrInsufficientData is reported (not returned as a hard failure) when a
// stage's dataset prefix runs out before its required sample size; the
// stage still commits its best-bias candidate from what it read.
var ErrInsufficientData = errors.New("analyzer: dataset exhausted before a stage's required sample size")

// stageToPos maps a stage index to the nibble position of the round's
// NibbleKey it determines.
var stageToPos = [8]int{8, 1, 5, 7, 4, 6, 2, 3}

// stageExp[r][s] is the sample-size exponent (base 2) required for round
// r, stage s.
var stageExp = [3][8]int{
	{29, 31, 31, 29, 33, 33, 33, 33},
	{29, 31, 31, 29, 31, 31, 31, 31},
	{27, 29, 29, 27, 29, 29, 29, 29},
}

// MaxSampleExponent is the largest exponent appearing in stageExp; a
// dataset must contain at least 2^MaxSampleExponent pairs to support the
// worst stage without triggering ErrInsufficientData.
const MaxSampleExponent = 33

// StageResult records one candidate's raw counter and its deviation from
// used/2, the full bias table find_max_deviation_index prints.
type StageResult struct {
	Index int
	Value uint64
	Diff  uint64
}

// StageReport is the 16-entry bias table for one (round, stage) pass.
type StageReport [16]StageResult

// Report holds the per-stage bias tables for all three rounds, exposed
// so a caller can inspect runner-up candidates, not just the winners.
type Report [3][8]StageReport

// Recover runs the full C5 pipeline against the dataset behind r,
// returning the three recovered NibbleKeys (rk[0] = last round, rk[1] =
// second-to-last, rk[2] = third-to-last) and the full bias report. If
// any stage ran out of data before its required sample size, Recover
// still returns its best-effort result alongside a wrapped
// ErrInsufficientData; callers that need a hard failure should check for
// it with errors.Is.
func Recover(r *dataset.Reader) ([3]cipher.NibbleKey, Report, error) {
	return RecoverWithExponents(r, stageExp)
}

// RecoverWithExponents runs the same pipeline as Recover but against a
// caller-supplied sample-size table instead of the cipher's real
// stage_exp, so a reduced synthetic configuration (stage_exp lowered by
// a fixed offset) can be exercised end-to-end without materializing a
// multi-gigabyte dataset.
func RecoverWithExponents(r *dataset.Reader, exponents [3][8]int) ([3]cipher.NibbleKey, Report, error) {
	var rk [3]cipher.NibbleKey
	var report Report
	var insufficientStages []string

	for round := 0; round < 3; round++ {
		for stage := 0; stage < 8; stage++ {
			if err := r.Rewind(); err != nil {
				return rk, report, fmt.Errorf("analyzer: round %d stage %d: %w", round, stage, err)
			}

			bucket, used, err := runStage(r, round, stage, exponents, rk)
			if err != nil {
				return rk, report, fmt.Errorf("analyzer: round %d stage %d: %w", round, stage, err)
			}

			need := uint64(1) << uint(exponents[round][stage])
			if used < need {
				insufficientStages = append(insufficientStages, fmt.Sprintf("round %d stage %d (%d/%d pairs)", round, stage, used, need))
			}

			best, stageReport := findMaxDeviationIndex(bucket, used)
			report[round][stage] = stageReport

			pos := stageToPos[stage]
			rk[round][pos] = byte(best)
		}
	}

	if len(insufficientStages) > 0 {
		return rk, report, fmt.Errorf("%w: %v", ErrInsufficientData, insufficientStages)
	}
	return rk, report, nil
}

// runStage streams the dataset (already rewound) in BufferPairs-sized
// chunks until the stage's required sample size is consumed or the
// dataset runs out, accumulating a 16-candidate parity bucket across a
// goroutine per candidate.
func runStage(r *dataset.Reader, round, stage int, exponents [3][8]int, rk [3]cipher.NibbleKey) ([16]uint64, uint64, error) {
	var bucket [16]uint64
	need := uint64(1) << uint(exponents[round][stage])
	var used uint64

	for used < need {
		want := uint64(dataset.BufferPairs)
		if used+want > need {
			want = need - used
		}
		buf := make([]dataset.Pair, want)
		n, err := r.ReadBatch(buf)
		if err != nil {
			return bucket, used, err
		}
		if n == 0 {
			break
		}
		buf = buf[:n]

		var wg sync.WaitGroup
		for k := 0; k < 16; k++ {
			wg.Add(1)
			go func(key uint32) {
				defer wg.Done()
				var local uint64
				for _, pr := range buf {
					var d1, d2 uint32
					if round >= 1 {
						d1 = cipher.DecryptHalfOneRound(pr.Ciphertext, rk[0])
					}
					if round >= 2 {
						d2 = cipher.DecryptHalfTwoRound(pr.Ciphertext, rk[0], rk[1])
					}
					local += parityBit(round, stage, pr.Plaintext, pr.Ciphertext, d1, d2, rk, key)
				}
				atomic.AddUint64(&bucket[key], local)
			}(uint32(k))
		}
		wg.Wait()

		used += uint64(n)
		if uint64(n) < want {
			break
		}
	}
	return bucket, used, nil
}

// findMaxDeviationIndex selects the candidate whose bucket value
// deviates most from used/2, ties broken by smallest index, and returns
// the full bias table alongside it.
func findMaxDeviationIndex(bucket [16]uint64, used uint64) (int, StageReport) {
	half := used / 2
	var report StageReport
	best := 0
	var maxDiff uint64

	for i := 0; i < 16; i++ {
		var diff uint64
		if bucket[i] > half {
			diff = bucket[i] - half
		} else {
			diff = half - bucket[i]
		}
		report[i] = StageResult{Index: i, Value: bucket[i], Diff: diff}
		if diff > maxDiff {
			maxDiff = diff
			best = i
		}
	}
	return best, report
}
