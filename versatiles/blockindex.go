package versatiles

import (
	"encoding/binary"
	"fmt"
)

// blockDimension is the side length, in tiles, of a block (the unit of
// index paging), per spec.md §3/§9: "256x256 super-tiles".
const blockDimension = 256

// blockRecordLenBytes is the fixed size of one on-disk BlockDefinition
// record, per spec.md §6: z(1) + block_y(4) + block_x(4) + local bbox(4) +
// tiles_range(16) + index_range(16).
const blockRecordLenBytes = 1 + 4 + 4 + 4 + 16 + 16

// BlockDefinition is a per-block record: the block's position, the
// rectangular subset of its 256x256 grid that is actually populated, and
// the byte ranges of its tile index and tile payloads.
type BlockDefinition struct {
	Z          uint8
	BlockX     uint32
	BlockY     uint32
	LocalBBox  TileBBox // level == 0 is meaningless here; only x/y min/max within [0,255] are used
	TilesRange ByteRange
	IndexRange ByteRange
}

// GlobalBBox returns the block's local bbox offset into the level's global
// tile grid.
func (b BlockDefinition) GlobalBBox() TileBBox {
	ox := b.BlockX * blockDimension
	oy := b.BlockY * blockDimension
	return NewTileBBox(b.Z, b.LocalBBox.XMin+ox, b.LocalBBox.YMin+oy, b.LocalBBox.XMax+ox, b.LocalBBox.YMax+oy)
}

// CountTiles returns the number of tile-index slots this block has, i.e.
// the area of its local bbox.
func (b BlockDefinition) CountTiles() uint64 {
	return b.LocalBBox.CountTiles()
}

type blockKey struct {
	z      uint8
	blockX uint32
	blockY uint32
}

// BlockIndex is the sparse set of BlockDefinitions for a container,
// keyed by (z, block_x, block_y), built once at open and shared read-only
// for the reader's lifetime.
type BlockIndex struct {
	byKey   map[blockKey]BlockDefinition
	ordered []BlockDefinition // ascending z, then y, then x
}

// ParseBlockIndex decodes a brotli-compressed sequence of fixed-size
// BlockDefinition records, per spec.md §4.3/§6.
func ParseBlockIndex(blob Blob) (BlockIndex, error) {
	decompressed, err := Decompress(blob, Brotli)
	if err != nil {
		return BlockIndex{}, &CorruptIndexError{Reason: "decompressing block index: " + err.Error()}
	}
	data := decompressed.AsSlice()
	if len(data)%blockRecordLenBytes != 0 {
		return BlockIndex{}, &CorruptIndexError{Reason: fmt.Sprintf("block index length %d not a multiple of record size %d", len(data), blockRecordLenBytes)}
	}

	idx := BlockIndex{byKey: make(map[blockKey]BlockDefinition)}
	n := len(data) / blockRecordLenBytes
	for i := 0; i < n; i++ {
		rec := data[i*blockRecordLenBytes : (i+1)*blockRecordLenBytes]
		z := rec[0]
		blockY := binary.LittleEndian.Uint32(rec[1:5])
		blockX := binary.LittleEndian.Uint32(rec[5:9])
		localXMin, localYMin, localXMax, localYMax := rec[9], rec[10], rec[11], rec[12]
		tilesRange := ByteRange{Offset: binary.LittleEndian.Uint64(rec[13:21]), Length: binary.LittleEndian.Uint64(rec[21:29])}
		indexRange := ByteRange{Offset: binary.LittleEndian.Uint64(rec[29:37]), Length: binary.LittleEndian.Uint64(rec[37:45])}

		def := BlockDefinition{
			Z:          z,
			BlockX:     blockX,
			BlockY:     blockY,
			LocalBBox:  NewTileBBox(0, uint32(localXMin), uint32(localYMin), uint32(localXMax), uint32(localYMax)),
			TilesRange: tilesRange,
			IndexRange: indexRange,
		}
		if def.LocalBBox.IsEmpty() || def.CountTiles() == 0 {
			return BlockIndex{}, &CorruptIndexError{Reason: "block with empty local bbox"}
		}
		key := blockKey{z: z, blockX: blockX, blockY: blockY}
		if _, dup := idx.byKey[key]; dup {
			return BlockIndex{}, &CorruptIndexError{Reason: "duplicate block key"}
		}
		idx.byKey[key] = def
		idx.ordered = append(idx.ordered, def)
	}

	sortBlocksAscZYX(idx.ordered)
	return idx, nil
}

func sortBlocksAscZYX(blocks []BlockDefinition) {
	// simple insertion sort: block indices are small relative to tile counts
	for i := 1; i < len(blocks); i++ {
		for j := i; j > 0 && blockLess(blocks[j], blocks[j-1]); j-- {
			blocks[j], blocks[j-1] = blocks[j-1], blocks[j]
		}
	}
}

func blockLess(a, b BlockDefinition) bool {
	if a.Z != b.Z {
		return a.Z < b.Z
	}
	if a.BlockY != b.BlockY {
		return a.BlockY < b.BlockY
	}
	return a.BlockX < b.BlockX
}

// Get returns the block at (z, blockX, blockY), and whether it exists.
func (idx BlockIndex) Get(z uint8, blockX, blockY uint32) (BlockDefinition, bool) {
	def, ok := idx.byKey[blockKey{z: z, blockX: blockX, blockY: blockY}]
	return def, ok
}

// Iter enumerates all blocks in deterministic order: ascending z, then y,
// then x.
func (idx BlockIndex) Iter() []BlockDefinition {
	return idx.ordered
}

// BboxPyramid returns the union of every block's global bbox, grouped by
// zoom level.
func (idx BlockIndex) BboxPyramid() TileBBoxPyramid {
	p := NewTileBBoxPyramid()
	for _, b := range idx.ordered {
		p.Include(b.Z, b.GlobalBBox())
	}
	return p
}
