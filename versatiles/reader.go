package versatiles

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// VersaTilesReader opens a single versatiles container and serves random
// point and bounding-box tile access, orchestrating header/index/tile
// reads against a DataReader.
type VersaTilesReader struct {
	source     DataReader
	header     FileHeader
	blockIndex BlockIndex
	tileCache  *LimitedCache[blockKey, *TileIndex]
	params     TilesReaderParameters
	meta       *Blob
	logger     *log.Logger

	// cacheMu bounds the hold time of the per-block tile-index lookup to
	// one cache operation (plus the ReadRange it may trigger), per
	// spec.md §5.
	cacheMu sync.Mutex
}

// OpenVersaTilesReader reads the header, meta blob and block index from
// source and constructs a reader. Fails fast on any step, per spec.md
// §4.6.
func OpenVersaTilesReader(ctx context.Context, source DataReader, logger *log.Logger) (*VersaTilesReader, error) {
	if logger == nil {
		logger = log.Default()
	}

	header, err := ReadFileHeader(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", source.Name(), err)
	}

	var meta *Blob
	if header.MetaRange.Length > 0 {
		rawMeta, err := source.ReadRange(ctx, header.MetaRange)
		if err != nil {
			return nil, fmt.Errorf("reading meta blob of %s: %w", source.Name(), &IoError{Op: "read meta", Err: err})
		}
		decompressed, err := Decompress(rawMeta, header.Compression)
		if err != nil {
			return nil, fmt.Errorf("decompressing meta blob of %s: %w", source.Name(), err)
		}
		meta = &decompressed
	}

	blocksBlob, err := source.ReadRange(ctx, header.BlocksRange)
	if err != nil {
		return nil, fmt.Errorf("reading block index of %s: %w", source.Name(), &IoError{Op: "read block index", Err: err})
	}
	blockIndex, err := ParseBlockIndex(blocksBlob)
	if err != nil {
		return nil, fmt.Errorf("parsing block index of %s: %w", source.Name(), err)
	}

	params := TilesReaderParameters{
		BboxPyramid:     blockIndex.BboxPyramid(),
		TileCompression: header.Compression,
		TileFormat:      header.TileFormat,
	}

	return &VersaTilesReader{
		source:     source,
		header:     header,
		blockIndex: blockIndex,
		tileCache:  NewLimitedCache[blockKey, *TileIndex](DefaultCacheCapacityBytes),
		params:     params,
		meta:       meta,
		logger:     logger,
	}, nil
}

// GetMeta returns a copy of the uncompressed meta blob, or nil if absent.
func (r *VersaTilesReader) GetMeta() *Blob {
	if r.meta == nil {
		return nil
	}
	cp := CopyBlob(r.meta.AsSlice())
	return &cp
}

// GetParameters returns the reader's tile coverage/format/compression.
func (r *VersaTilesReader) GetParameters() *TilesReaderParameters {
	return &r.params
}

// OverrideCompression sets the reported compression without touching
// stored data. Used when an upstream transform is known to have
// recompressed tiles already.
func (r *VersaTilesReader) OverrideCompression(c TileCompression) {
	r.params.TileCompression = c
}

// GetTileData returns the tile at coord, or nil if the tile is absent.
func (r *VersaTilesReader) GetTileData(ctx context.Context, coord TileCoord3) (*Blob, error) {
	blockX := coord.X >> 8
	blockY := coord.Y >> 8

	block, ok := r.blockIndex.Get(coord.Z, blockX, blockY)
	if !ok {
		return nil, nil
	}

	global := block.GlobalBBox()
	if !global.ContainsCoord2(coord.AsCoord2()) {
		return nil, nil
	}
	tileID := global.GetTileIndex(coord.AsCoord2())

	tileIndex, err := r.getBlockTileIndex(ctx, block)
	if err != nil {
		return nil, err
	}

	if tileID >= uint64(tileIndex.Len()) {
		return nil, &CorruptIndexError{Reason: fmt.Sprintf("tile index %d out of range for block with %d entries", tileID, tileIndex.Len())}
	}
	entry := tileIndex.Get(int(tileID))
	if entry.Empty() {
		return nil, nil
	}

	blob, err := r.source.ReadRange(ctx, entry)
	if err != nil {
		return nil, &IoError{Op: fmt.Sprintf("read tile %d/%d/%d", coord.Z, coord.X, coord.Y), Err: err}
	}
	return &blob, nil
}

// getBlockTileIndex returns the TileIndex for block, loading and caching it
// on first touch. The lock is held only across the cache lookup/insert and
// (on miss) the index read+parse for this one block, per spec.md §5.
func (r *VersaTilesReader) getBlockTileIndex(ctx context.Context, block BlockDefinition) (*TileIndex, error) {
	key := blockKey{z: block.Z, blockX: block.BlockX, blockY: block.BlockY}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	if cached, ok := r.tileCache.Get(key); ok {
		return cached, nil
	}

	raw, err := r.source.ReadRange(ctx, block.IndexRange)
	if err != nil {
		return nil, &IoError{Op: "read block tile index", Err: err}
	}
	tileIndex, err := ParseTileIndex(raw)
	if err != nil {
		return nil, err
	}
	tileIndex.AddOffset(block.TilesRange.Offset)

	if uint64(tileIndex.Len()) != block.CountTiles() {
		return nil, &CorruptIndexError{Reason: fmt.Sprintf("tile index has %d entries, block expects %d", tileIndex.Len(), block.CountTiles())}
	}

	r.tileCache.Add(key, &tileIndex)
	return &tileIndex, nil
}
