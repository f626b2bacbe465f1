package shachain

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// EncodedSize is the fixed on-disk size of a Store: an 8 byte min_index, a
// 4 byte num_valid, and 64 fixed slots of 8 byte index + 32 byte hash,
// unused slots zero-filled (spec.md §4.7).
const EncodedSize = 8 + 4 + numBuckets*(8+32)

// ErrWrongSize is returned by FromBytes when the input isn't exactly
// EncodedSize bytes long.
var ErrWrongSize = fmt.Errorf("shachain: encoded store must be exactly %d bytes", EncodedSize)

// ToBytes serializes the store to its fixed-size on-disk form: min_index
// (uint64 LE), num_valid (uint32 LE), then the 64 buckets in order, each as
// index (uint64 LE) + hash (32 bytes), zero-filled where empty.
func (s *Store) ToBytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(EncodedSize)

	if err := binary.Write(&buf, binary.LittleEndian, s.minIndex); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint32(s.NumValid())); err != nil {
		return nil, err
	}

	for _, e := range s.buckets {
		var index uint64
		var hash chainhash.Hash
		if e != nil {
			index = e.index
			hash = e.hash
		}
		if err := binary.Write(&buf, binary.LittleEndian, index); err != nil {
			return nil, err
		}
		if _, err := buf.Write(hash[:]); err != nil {
			return nil, err
		}
	}

	if buf.Len() != EncodedSize {
		return nil, fmt.Errorf("shachain: encoded wrong size, got %d want %d", buf.Len(), EncodedSize)
	}
	return buf.Bytes(), nil
}

// FromBytes reconstructs a Store from its on-disk form. Bucket occupancy is
// recovered from whichever slots are not entirely zero (index and hash
// both zero marks an empty slot); num_valid is
// checked against that count as a consistency guard, not relied upon to
// locate entries.
func FromBytes(b []byte) (*Store, error) {
	if len(b) != EncodedSize {
		return nil, ErrWrongSize
	}
	buf := bytes.NewReader(b)

	var s Store
	if err := binary.Read(buf, binary.LittleEndian, &s.minIndex); err != nil {
		return nil, err
	}
	var numValid uint32
	if err := binary.Read(buf, binary.LittleEndian, &numValid); err != nil {
		return nil, err
	}

	haveAny := false
	for i := 0; i < numBuckets; i++ {
		var index uint64
		if err := binary.Read(buf, binary.LittleEndian, &index); err != nil {
			return nil, err
		}
		var hash chainhash.Hash
		if _, err := buf.Read(hash[:]); err != nil {
			return nil, err
		}
		if index == 0 && hash == (chainhash.Hash{}) {
			continue
		}
		s.buckets[i] = &entry{index: index, hash: hash}
		haveAny = true
	}

	if uint32(s.NumValid()) != numValid {
		return nil, fmt.Errorf("shachain: num_valid mismatch, header says %d, found %d occupied slots",
			numValid, s.NumValid())
	}
	s.haveAny = haveAny
	return &s, nil
}
