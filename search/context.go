package search

import (
	"sync"
	"sync/atomic"

	"github.com/treewonwoo/mgfn-linear-cryptanalysis/cipher"
	"github.com/treewonwoo/mgfn-linear-cryptanalysis/dataset"
)

// Context owns the state one FindMasterKey run is searching against: the
// two known (plaintext, ciphertext) pairs, the three trailing-round
// subkeys the search is constrained by, and the monotone found/found-key
// publication the original source kept as file-scope globals.
//
// found is a single-writer monotone flag: once true it never returns to
// false, and foundKey is written at most once, under foundMu, before found is
// stored. Readers only need the atomic load; the mutex exists purely to
// serialize the (rare) write.
type Context struct {
	Pairs            [2]dataset.Pair
	RK16, RK17, RK18 uint32

	found    atomic.Bool
	foundMu  sync.Mutex
	foundKey [16]byte
}

// NewContext builds a Context for one search run.
func NewContext(pairs [2]dataset.Pair, rk16, rk17, rk18 uint32) *Context {
	return &Context{Pairs: pairs, RK16: rk16, RK17: rk17, RK18: rk18}
}

// Found reports whether a candidate has been verified yet. Safe to call
// from any goroutine without additional synchronization.
func (c *Context) Found() bool {
	return c.found.Load()
}

// FoundKey returns the recovered master key once Found reports true; the
// result is meaningless before that.
func (c *Context) FoundKey() [16]byte {
	c.foundMu.Lock()
	defer c.foundMu.Unlock()
	return c.foundKey
}

// publish records mk as the winning key, the first time it is called;
// subsequent calls (from other goroutines racing past an already-found
// candidate) are no-ops so foundKey is written exactly once.
func (c *Context) publish(mk [16]byte) {
	c.foundMu.Lock()
	defer c.foundMu.Unlock()
	if c.found.Load() {
		return
	}
	c.foundKey = mk
	c.found.Store(true)
}

// verify builds a full key schedule from the candidate (hi, lo),
// re-encrypts both stored plaintexts, and publishes the candidate as the
// answer on a double match.
func (c *Context) verify(hi, lo uint64) bool {
	mk := cipher.JoinMasterKey(hi, lo)
	ks := cipher.Expand(mk)

	if cipher.Encrypt(c.Pairs[0].Plaintext, &ks) != c.Pairs[0].Ciphertext {
		return false
	}
	if cipher.Encrypt(c.Pairs[1].Plaintext, &ks) != c.Pairs[1].Ciphertext {
		return false
	}

	c.publish(mk)
	return true
}
