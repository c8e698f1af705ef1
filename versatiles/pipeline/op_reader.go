package pipeline

import (
	"context"

	"github.com/versatiles-org/go-versatiles/versatiles"
)

// ReaderOperation is the leaf Operation wrapping an open
// versatiles.VersaTilesReader.
type ReaderOperation struct {
	reader *versatiles.VersaTilesReader
}

// NewReaderOperation wraps reader as a pipeline leaf.
func NewReaderOperation(reader *versatiles.VersaTilesReader) *ReaderOperation {
	return &ReaderOperation{reader: reader}
}

// GetParameters implements Operation.
func (o *ReaderOperation) GetParameters() *versatiles.TilesReaderParameters {
	return o.reader.GetParameters()
}

// GetMeta implements Operation.
func (o *ReaderOperation) GetMeta() *versatiles.Blob {
	return o.reader.GetMeta()
}

// GetTileData implements Operation.
func (o *ReaderOperation) GetTileData(ctx context.Context, coord versatiles.TileCoord3) (*versatiles.Blob, error) {
	return o.reader.GetTileData(ctx, coord)
}

// GetBboxTileStream implements Operation.
func (o *ReaderOperation) GetBboxTileStream(ctx context.Context, bbox versatiles.TileBBox) versatiles.TileStream {
	return o.reader.GetBboxTileStream(ctx, bbox)
}
