package shachain

import (
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
)

// seedChain builds a fully self-consistent chain of hashes: every one is
// derived from a single synthetic root anchored at genesisIndex, the
// highest bucket (most trailing zeros) that still shares its one
// significant bit with every index these tests exercise. Because derive
// only consults the target index's bits below the source's trailing-zero
// count, two hashes derived this way from the same root are themselves
// mutually derivable — exactly the property AddHash's pruning check
// enforces when a later, dominating entry is inserted.
const genesisIndex = uint64(1) << 63

func seedChain(root chainhash.Hash, indices []uint64) map[uint64]chainhash.Hash {
	out := make(map[uint64]chainhash.Hash, len(indices))
	for _, idx := range indices {
		out[idx] = derive(root, genesisIndex, idx)
	}
	return out
}

// TestAddHashDerivedChain checks P6: a chain of mutually-derivable hashes,
// inserted in descending index order, is accepted and later prunes
// dominated entries, while every stored or derived hash is retrievable.
func TestAddHashDerivedChain(t *testing.T) {
	root := chainhash.Hash(sha256.Sum256([]byte("test-seed")))
	indices := []uint64{^uint64(0), ^uint64(0) - 1, ^uint64(0) - 2, ^uint64(0) - 3}
	hashes := seedChain(root, indices)

	var s Store
	for _, idx := range indices {
		require.NoError(t, s.AddHash(idx, hashes[idx]))
	}

	for _, idx := range indices {
		got, err := s.Hash(idx)
		require.NoError(t, err)
		require.Equal(t, hashes[idx], got)
	}
}

// TestScenarioSix walks spec.md §8 scenario 6 literally: inserting hashes
// at indices 2^64-1, 2^64-2, 2^64-3 in that order succeeds, and
// re-inserting 2^64-1 afterward fails.
func TestScenarioSix(t *testing.T) {
	root := chainhash.Hash(sha256.Sum256([]byte("scenario-6")))
	indices := []uint64{^uint64(0), ^uint64(0) - 1, ^uint64(0) - 2}
	hashes := seedChain(root, indices)

	var s Store
	for _, idx := range indices {
		require.NoError(t, s.AddHash(idx, hashes[idx]))
	}

	err := s.AddHash(^uint64(0), hashes[^uint64(0)])
	require.ErrorIs(t, err, ErrNotMonotonic)
}

func TestAddHashRejectsNonMonotonic(t *testing.T) {
	var s Store
	require.NoError(t, s.AddHash(100, chainhash.Hash{1}))
	err := s.AddHash(100, chainhash.Hash{1})
	require.ErrorIs(t, err, ErrNotMonotonic)
	err = s.AddHash(200, chainhash.Hash{2})
	require.ErrorIs(t, err, ErrNotMonotonic)
}

func TestAddHashRejectsWrongDerivation(t *testing.T) {
	var s Store
	require.NoError(t, s.AddHash(^uint64(0), chainhash.Hash{9}))

	err := s.AddHash(^uint64(0)-1, chainhash.Hash{9})
	require.ErrorIs(t, err, ErrNotDerivable)
}

func TestHashNotFound(t *testing.T) {
	var s Store
	require.NoError(t, s.AddHash(500, chainhash.Hash{1}))

	_, err := s.Hash(999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	root := chainhash.Hash(sha256.Sum256([]byte("codec-seed")))
	indices := []uint64{^uint64(0), ^uint64(0) - 1, ^uint64(0) - 2}
	hashes := seedChain(root, indices)

	var s Store
	for _, idx := range indices {
		require.NoError(t, s.AddHash(idx, hashes[idx]))
	}

	b, err := s.ToBytes()
	require.NoError(t, err)
	require.Len(t, b, EncodedSize)

	decoded, err := FromBytes(b)
	require.NoError(t, err)
	require.Equal(t, s.NumValid(), decoded.NumValid())
	minIdx, haveAny := decoded.MinIndex()
	require.True(t, haveAny)
	require.Equal(t, s.minIndex, minIdx)

	for _, idx := range indices {
		got, err := decoded.Hash(idx)
		require.NoError(t, err)
		want, err := s.Hash(idx)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestFromBytesRejectsWrongSize(t *testing.T) {
	_, err := FromBytes(make([]byte, 10))
	require.ErrorIs(t, err, ErrWrongSize)
}
