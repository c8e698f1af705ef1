package versatiles

import (
	"encoding/binary"
	"fmt"
)

// tileIndexEntryLenBytes is the fixed size of one on-disk (offset, length)
// pair, per spec.md §6: u64 offset + u64 length.
const tileIndexEntryLenBytes = 16

// TileIndex is the dense array of ByteRange for one block, indexed by the
// block-local row-major tile position. A length-0 range means "tile
// absent".
type TileIndex struct {
	entries []ByteRange
}

// ParseTileIndex decodes a brotli-compressed sequence of (offset, length)
// pairs. N is inferred from the decompressed length.
func ParseTileIndex(blob Blob) (TileIndex, error) {
	decompressed, err := Decompress(blob, Brotli)
	if err != nil {
		return TileIndex{}, &CorruptIndexError{Reason: "decompressing tile index: " + err.Error()}
	}
	data := decompressed.AsSlice()
	if len(data)%tileIndexEntryLenBytes != 0 {
		return TileIndex{}, &CorruptIndexError{Reason: fmt.Sprintf("tile index length %d not a multiple of entry size %d", len(data), tileIndexEntryLenBytes)}
	}

	n := len(data) / tileIndexEntryLenBytes
	entries := make([]ByteRange, n)
	for i := 0; i < n; i++ {
		rec := data[i*tileIndexEntryLenBytes : (i+1)*tileIndexEntryLenBytes]
		entries[i] = ByteRange{
			Offset: binary.LittleEndian.Uint64(rec[0:8]),
			Length: binary.LittleEndian.Uint64(rec[8:16]),
		}
	}
	return TileIndex{entries: entries}, nil
}

// AddOffset rebases every non-empty entry's offset by base, turning
// block-relative offsets into absolute file offsets. Entries with
// length == 0 remain marker-absent and are left untouched.
func (t *TileIndex) AddOffset(base uint64) {
	for i := range t.entries {
		if t.entries[i].Length > 0 {
			t.entries[i].Offset += base
		}
	}
}

// Len returns the number of entries.
func (t TileIndex) Len() int {
	return len(t.entries)
}

// Get returns the i'th entry.
func (t TileIndex) Get(i int) ByteRange {
	return t.entries[i]
}

// Iter returns all entries, in block-local row-major order.
func (t TileIndex) Iter() []ByteRange {
	return t.entries
}

// SizeBytes is the cache weight of this tile index: one ByteRange per
// entry, per spec.md §3's LimitedCache contract.
func (t TileIndex) SizeBytes() int {
	return len(t.entries) * 16
}
