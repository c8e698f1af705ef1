package versatiles

import (
	"context"
	"sort"
)

// MaxChunkSize is the upper bound on bytes read in one coalesced chunk,
// per spec.md §4.7.
const MaxChunkSize = 64 * 1024 * 1024

// MaxChunkGap is the largest gap in file offsets that is still cheaper to
// read through than to split into a second request, per spec.md §4.7.
const MaxChunkGap = 32 * 1024

// tileRef pairs a tile coordinate with its absolute byte range.
type tileRef struct {
	coord TileCoord3
	rng   ByteRange
}

// chunk is one contiguous byte span issued to the DataReader as a single
// read, plus the tiles it covers.
type chunk struct {
	rng   ByteRange
	tiles []tileRef
}

// GetBboxTileStream yields every non-empty tile in bbox, coalescing
// adjacent tile byte ranges into as few DataReader reads as possible, per
// spec.md §4.7. Emission order is: blocks in BlockIndex iteration order;
// within a block, tiles in ascending chunk then ascending intra-chunk file
// offset (spec.md §5) — not spatial order.
func (r *VersaTilesReader) GetBboxTileStream(ctx context.Context, bbox TileBBox) TileStream {
	out := make(chan TileItem)

	go func() {
		defer close(out)

		blockBBox := bbox.ScaleDown(blockDimension)
		if blockBBox.IsEmpty() {
			return
		}

		var chunks []chunk
		var streamErr error

		blockBBox.IterCoords(func(bc TileCoord3) {
			if streamErr != nil {
				return
			}
			block, ok := r.blockIndex.Get(bbox.Level, bc.X, bc.Y)
			if !ok {
				streamErr = &CorruptIndexError{Reason: "block referenced by bbox scale-down is absent from block index"}
				return
			}

			intersection := bbox.Intersect(block.GlobalBBox())
			if intersection.IsEmpty() {
				return
			}

			tileIndex, err := r.getBlockTileIndex(ctx, block)
			if err != nil {
				streamErr = err
				return
			}

			global := block.GlobalBBox()
			var refs []tileRef
			intersection.IterCoords(func(c TileCoord3) {
				tid := global.GetTileIndex(c.AsCoord2())
				if tid >= uint64(tileIndex.Len()) {
					streamErr = &CorruptIndexError{Reason: "tile index out of range during bbox scan"}
					return
				}
				entry := tileIndex.Get(int(tid))
				if entry.Empty() {
					return
				}
				refs = append(refs, tileRef{coord: c, rng: entry})
			})
			if streamErr != nil {
				return
			}

			chunks = append(chunks, packChunks(refs)...)
		})

		if streamErr != nil {
			select {
			case out <- TileItem{Err: streamErr}:
			case <-ctx.Done():
			}
			return
		}

		for _, ch := range chunks {
			if ctx.Err() != nil {
				return
			}
			blob, err := r.source.ReadRange(ctx, ch.rng)
			if err != nil {
				select {
				case out <- TileItem{Err: &IoError{Op: "read bbox chunk", Err: err}}:
				case <-ctx.Done():
				}
				return
			}
			for _, t := range ch.tiles {
				localOffset := t.rng.Offset - ch.rng.Offset
				tileBlob := blob.Slice(ByteRange{Offset: localOffset, Length: t.rng.Length})
				item := TileItem{Coord: t.coord, Blob: tileBlob}
				select {
				case out <- item:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return TileStream{ch: out}
}

// packChunks sorts refs by file offset and greedily packs them into
// chunks, per spec.md §4.7's algorithm.
func packChunks(refs []tileRef) []chunk {
	if len(refs) == 0 {
		return nil
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].rng.Offset < refs[j].rng.Offset })

	var chunks []chunk
	cur := chunk{rng: refs[0].rng, tiles: []tileRef{refs[0]}}

	for _, e := range refs[1:] {
		fitsSize := cur.rng.Offset+MaxChunkSize > e.rng.End()
		fitsGap := cur.rng.End()+MaxChunkGap > e.rng.Offset
		if fitsSize && fitsGap {
			cur.tiles = append(cur.tiles, e)
			newLen := e.rng.End() - cur.rng.Offset
			if newLen > cur.rng.Length {
				cur.rng.Length = newLen
			}
			continue
		}
		chunks = append(chunks, cur)
		cur = chunk{rng: e.rng, tiles: []tileRef{e}}
	}
	chunks = append(chunks, cur)
	return chunks
}
