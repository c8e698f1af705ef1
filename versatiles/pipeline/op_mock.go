package pipeline

import (
	"context"

	"github.com/versatiles-org/go-versatiles/versatiles"
)

// MockOperation is an in-memory leaf Operation for tests and the "from_mock"
// VPL tag, mirroring the teacher's mockBucket fixture.
type MockOperation struct {
	params versatiles.TilesReaderParameters
	meta   *versatiles.Blob
	tiles  map[versatiles.TileCoord3]versatiles.Blob
}

// NewMockOperation builds a fixture leaf serving tiles from an in-memory
// map.
func NewMockOperation(params versatiles.TilesReaderParameters, meta *versatiles.Blob, tiles map[versatiles.TileCoord3]versatiles.Blob) *MockOperation {
	return &MockOperation{params: params, meta: meta, tiles: tiles}
}

// GetParameters implements Operation.
func (o *MockOperation) GetParameters() *versatiles.TilesReaderParameters {
	return &o.params
}

// GetMeta implements Operation.
func (o *MockOperation) GetMeta() *versatiles.Blob {
	return o.meta
}

// GetTileData implements Operation.
func (o *MockOperation) GetTileData(_ context.Context, coord versatiles.TileCoord3) (*versatiles.Blob, error) {
	b, ok := o.tiles[coord]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

// GetBboxTileStream implements Operation.
func (o *MockOperation) GetBboxTileStream(ctx context.Context, bbox versatiles.TileBBox) versatiles.TileStream {
	out := make(chan versatiles.TileItem)
	go func() {
		defer close(out)
		bbox.IterCoords(func(c versatiles.TileCoord3) {
			b, ok := o.tiles[c]
			if !ok {
				return
			}
			select {
			case out <- versatiles.TileItem{Coord: c, Blob: b}:
			case <-ctx.Done():
			}
		})
	}()
	return versatiles.NewTileStream(out)
}
