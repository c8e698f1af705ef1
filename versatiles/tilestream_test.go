package versatiles

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeStream(items ...TileItem) TileStream {
	ch := make(chan TileItem, len(items))
	for _, it := range items {
		ch <- it
	}
	close(ch)
	return NewTileStream(ch)
}

func TestTileStreamCollect(t *testing.T) {
	s := makeStream(
		TileItem{Coord: TileCoord3{X: 1}, Blob: NewBlob([]byte("a"))},
		TileItem{Coord: TileCoord3{X: 2}, Blob: NewBlob([]byte("b"))},
	)
	items, err := s.Collect()
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestTileStreamCollectStopsAtFirstError(t *testing.T) {
	boom := fmt.Errorf("boom")
	s := makeStream(
		TileItem{Coord: TileCoord3{X: 1}, Blob: NewBlob([]byte("a"))},
		TileItem{Err: boom},
		TileItem{Coord: TileCoord3{X: 2}, Blob: NewBlob([]byte("b"))},
	)
	items, err := s.Collect()
	assert.ErrorIs(t, err, boom)
	assert.Len(t, items, 1)
}

func TestFilterMapBlobParallelTransformsAndPreservesCompleteness(t *testing.T) {
	var items []TileItem
	for i := 0; i < 20; i++ {
		items = append(items, TileItem{Coord: TileCoord3{X: uint32(i)}, Blob: NewBlob([]byte(fmt.Sprintf("v%d", i)))})
	}
	s := makeStream(items...)

	out := s.FilterMapBlobParallel(context.Background(), func(b Blob) (Blob, bool, error) {
		return NewBlob(append([]byte("x"), b.AsSlice()...)), true, nil
	})

	results, err := out.Collect()
	require.NoError(t, err)
	assert.Len(t, results, 20)
	for _, r := range results {
		assert.Equal(t, byte('x'), r.Blob.AsSlice()[0])
	}
}

func TestFilterMapBlobParallelDropsFilteredItems(t *testing.T) {
	s := makeStream(
		TileItem{Coord: TileCoord3{X: 0}, Blob: NewBlob([]byte("keep"))},
		TileItem{Coord: TileCoord3{X: 1}, Blob: NewBlob([]byte("drop"))},
	)
	out := s.FilterMapBlobParallel(context.Background(), func(b Blob) (Blob, bool, error) {
		return b, b.AsString() == "keep", nil
	})
	results, err := out.Collect()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "keep", results[0].Blob.AsString())
}

func TestFilterMapBlobParallelPropagatesError(t *testing.T) {
	boom := fmt.Errorf("transform failed")
	s := makeStream(TileItem{Coord: TileCoord3{X: 0}, Blob: NewBlob([]byte("v"))})
	out := s.FilterMapBlobParallel(context.Background(), func(b Blob) (Blob, bool, error) {
		return Blob{}, false, boom
	})
	_, err := out.Collect()
	assert.ErrorIs(t, err, boom)
}
