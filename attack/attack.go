// Package attack sequences the full MGFN-18R recovery pipeline: expand a
// key schedule, generate a dataset under it, recover the three
// trailing-round subkeys statistically, then brute-force the master key
// those subkeys constrain. It is the library cmd/mgfnattack drives; it
// owns no flags, paths beyond what it's given, or process exit codes.
package attack

import (
	"errors"
	"fmt"
	"io"

	"github.com/treewonwoo/mgfn-linear-cryptanalysis/analyzer"
	"github.com/treewonwoo/mgfn-linear-cryptanalysis/cipher"
	"github.com/treewonwoo/mgfn-linear-cryptanalysis/dataset"
	"github.com/treewonwoo/mgfn-linear-cryptanalysis/search"
)

// ErrNoCandidate is returned when C6 exhausts its search space without
// verifying a candidate master key; not a bug, just a failed recovery.
var ErrNoCandidate = errors.New("attack: master-key search exhausted without a match")

// Result collects everything one attack run produced, so a caller (or a
// test) can inspect intermediate state instead of only a pass/fail.
type Result struct {
	// NibbleKeys holds the three recovered subkeys: [0] is the last
	// round (18), [1] the second-to-last (17), [2] the third-to-last (16).
	NibbleKeys [3]cipher.NibbleKey
	Report     analyzer.Report

	RK16, RK17, RK18 uint32

	MasterKey [16]byte
	Found     bool
}

// ProgressFunc reports dataset-generation progress; see dataset.ProgressFunc.
type ProgressFunc = dataset.ProgressFunc

// Run expands masterKey into a key schedule, writes a pairs-sized
// dataset under it to path, statistically recovers the three trailing
// subkeys, and brute-forces the master key they constrain. masterKey is
// only ever used to generate the dataset and to build the KeySchedule
// the cipher encrypts under; everything from the dataset onward treats
// it as unknown.
//
// If logw is non-nil, one line per recovered subkey is written to it in
// the shape "R%d: %08X\n": R18, R17, then R16, each followed by its
// packed 32-bit subkey.
func Run(masterKey [16]byte, path string, pairs uint64, workers int, progress ProgressFunc, logw io.Writer) (Result, error) {
	var result Result

	ks := cipher.Expand(masterKey)

	if err := dataset.Generate(path, pairs, &ks, workers, progress); err != nil {
		return result, fmt.Errorf("attack: generating dataset: %w", err)
	}

	r, err := dataset.OpenReader(path)
	if err != nil {
		return result, fmt.Errorf("attack: opening dataset: %w", err)
	}
	defer r.Close()

	rk, report, recoverErr := analyzer.Recover(r)
	if recoverErr != nil && !errors.Is(recoverErr, analyzer.ErrInsufficientData) {
		return result, fmt.Errorf("attack: recovering subkeys: %w", recoverErr)
	}
	result.NibbleKeys = rk
	result.Report = report

	result.RK18 = cipher.PackNibbles(rk[0])
	result.RK17 = cipher.PackNibbles(rk[1])
	result.RK16 = cipher.PackNibbles(rk[2])

	if logw != nil {
		fmt.Fprintf(logw, "R18: %08X\n", result.RK18)
		fmt.Fprintf(logw, "R17: %08X\n", result.RK17)
		fmt.Fprintf(logw, "R16: %08X\n", result.RK16)
	}

	if err := r.Rewind(); err != nil {
		return result, fmt.Errorf("attack: rewinding dataset for verification pairs: %w", err)
	}
	var buf [2]dataset.Pair
	n, err := r.ReadBatch(buf[:])
	if err != nil {
		return result, fmt.Errorf("attack: reading verification pairs: %w", err)
	}
	if n < 2 {
		return result, fmt.Errorf("attack: dataset has fewer than 2 pairs, cannot verify a candidate")
	}

	mk, found := search.FindMasterKey(buf, result.RK16, result.RK17, result.RK18, workers)
	result.MasterKey = mk
	result.Found = found

	if recoverErr != nil {
		return result, fmt.Errorf("%w", recoverErr)
	}
	if !found {
		return result, ErrNoCandidate
	}
	return result, nil
}
