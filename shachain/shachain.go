// Package shachain stores the append-only chain of revocation preimages a
// peer reveals as it revokes old commitments (spec.md §4.7). Instead of
// keeping one preimage per commitment — unbounded growth over a channel's
// life — it keeps at most 64, pruning any whose value can be re-derived
// from a newer one it still holds. The derivation and bucketing scheme
// mirrors the "store O(log n) nodes, derive the rest" shape of the
// teacher's elkrem receiver (elkrem/serdes.go), adapted to the flat,
// fixed-slot array this on-disk format calls for, keyed by each index's
// trailing-zero count rather than elkrem's explicit tree height.
package shachain

import (
	"crypto/sha256"
	"fmt"
	"math/bits"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// numBuckets is the number of (index, hash) slots: one per possible
// trailing-zero count of a 64-bit index.
const numBuckets = 64

type entry struct {
	index uint64
	hash  chainhash.Hash
}

// Store holds the revocation preimages revealed so far for one channel
// side. The zero value is an empty chain, ready to use.
type Store struct {
	buckets  [numBuckets]*entry
	minIndex uint64
	haveAny  bool
}

// ErrNotMonotonic is returned by AddHash when index is not exactly one below
// the minimum index already stored: indices must decrease by one per
// insertion, matching commit_num counting up by one while
// index = 2^64-1-commit_num counts down (spec.md §4.4 step 3).
var ErrNotMonotonic = fmt.Errorf("shachain: index is not one below the chain's minimum stored index")

// ErrNotDerivable is returned by AddHash when the new hash does not
// correctly re-derive an already-verified descendant: either the caller
// supplied the wrong hash, or the chain has been corrupted.
var ErrNotDerivable = fmt.Errorf("shachain: hash does not derive a previously stored descendant")

// bucketFor returns the trailing-zero-count bucket an index is stored
// under. An index of zero has no trailing-zero count under the usual
// definition; it is treated as the highest bucket, a degenerate case that
// never arises in practice (commit_num would have to reach 2^64-1).
func bucketFor(index uint64) int {
	if index == 0 {
		return numBuckets - 1
	}
	b := bits.TrailingZeros64(index)
	if b > numBuckets-1 {
		b = numBuckets - 1
	}
	return b
}

// dominates reports whether the hash stored at fromIndex can be used to
// derive the hash at toIndex: toIndex must agree with fromIndex on every
// bit above fromIndex's trailing-zero count.
func dominates(fromIndex, toIndex uint64) bool {
	t := bucketFor(fromIndex)
	if t >= 64 {
		return fromIndex == toIndex
	}
	mask := ^uint64(0) << uint(t)
	return fromIndex&mask == toIndex&mask
}

// derive computes the hash at toIndex from the hash known at fromIndex,
// which must dominate it. For each bit position below fromIndex's
// trailing-zero count, from high to low, if that bit is set in toIndex the
// running hash has the corresponding byte's bit flipped and is rehashed.
// This is the standard shachain/elkrem generation step, independent of any
// seed: it only manipulates already-revealed hash bytes.
func derive(hash chainhash.Hash, fromIndex, toIndex uint64) chainhash.Hash {
	cur := hash
	t := bucketFor(fromIndex)
	for b := t - 1; b >= 0; b-- {
		if toIndex&(uint64(1)<<uint(b)) == 0 {
			continue
		}
		cur[b/8] ^= 1 << uint(b%8)
		cur = chainhash.Hash(sha256.Sum256(cur[:]))
	}
	return cur
}

// AddHash inserts the preimage hash revealed for index. It is rejected if
// index is not exactly one below the minimum stored index (ErrNotMonotonic),
// or if it claims to dominate an already-stored descendant but fails to
// correctly derive it (ErrNotDerivable) — per spec.md §8 P6, every stored
// hash must satisfy SHA256(preimage) == the revocation hash it is paired
// with, which this check enforces transitively across derived entries.
func (s *Store) AddHash(index uint64, hash chainhash.Hash) error {
	if s.haveAny && (s.minIndex == 0 || index != s.minIndex-1) {
		return ErrNotMonotonic
	}

	bucket := bucketFor(index)
	for b := 0; b < bucket; b++ {
		existing := s.buckets[b]
		if existing == nil || !dominates(index, existing.index) {
			continue
		}
		if derive(hash, index, existing.index) != existing.hash {
			return ErrNotDerivable
		}
		s.buckets[b] = nil
	}

	s.buckets[bucket] = &entry{index: index, hash: hash}
	s.haveAny = true
	s.minIndex = index
	return nil
}

// NumValid returns the number of (index, hash) pairs currently held, after
// pruning of derivable descendants.
func (s *Store) NumValid() int {
	n := 0
	for _, e := range s.buckets {
		if e != nil {
			n++
		}
	}
	return n
}

// MinIndex returns the smallest index inserted so far (the most recently
// revealed commitment), and whether anything has been inserted at all.
func (s *Store) MinIndex() (uint64, bool) {
	return s.minIndex, s.haveAny
}

// ErrNotFound is returned by Hash when index cannot be derived from any
// currently stored entry.
var ErrNotFound = fmt.Errorf("shachain: index not derivable from any stored entry")

// Hash returns the revealed hash for index, deriving it from a dominating
// stored entry if index itself was pruned.
func (s *Store) Hash(index uint64) (chainhash.Hash, error) {
	for _, e := range s.buckets {
		if e == nil {
			continue
		}
		if e.index == index {
			return e.hash, nil
		}
		if dominates(e.index, index) {
			return derive(e.hash, e.index, index), nil
		}
	}
	return chainhash.Hash{}, ErrNotFound
}
