// Package pipeline implements the tile-pipeline runtime: a tree of
// lazily-evaluated tile-producing Operations, constructed from a
// declarative configuration by a PipelineFactory, per spec.md §4.9.
package pipeline

import (
	"context"

	"github.com/versatiles-org/go-versatiles/versatiles"
)

// Operation is an async tile producer. Leaves wrap readers (or, for tests,
// an in-memory fixture); internal nodes are transforms that wrap one or
// more child Operations, forward meta unless they override it, and derive
// their own parameters from their child's.
type Operation interface {
	GetParameters() *versatiles.TilesReaderParameters
	GetMeta() *versatiles.Blob
	GetTileData(ctx context.Context, coord versatiles.TileCoord3) (*versatiles.Blob, error)
	GetBboxTileStream(ctx context.Context, bbox versatiles.TileBBox) versatiles.TileStream
}
