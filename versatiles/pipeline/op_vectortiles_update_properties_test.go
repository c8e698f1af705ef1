package pipeline

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versatiles-org/go-versatiles/versatiles"
	"github.com/versatiles-org/go-versatiles/versatiles/vectortile"
)

func buildPBFTile(t *testing.T, z uint8, x, y uint32, layerName string, idField string, id string, extraProps map[string]interface{}) []byte {
	t.Helper()
	tile := maptile.New(x, y, maptile.Zoom(z))

	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(orb.Point{tile.Bound().Center().Lon(), tile.Bound().Center().Lat()})
	f.Properties[idField] = id
	for k, v := range extraProps {
		f.Properties[k] = v
	}
	fc.Append(f)

	layer := mvt.NewLayer(layerName, fc)
	layer.ProjectToTile(tile)
	layers := mvt.Layers{layer}

	data, err := mvt.Marshal(layers)
	require.NoError(t, err)
	return data
}

func sourceOperation(t *testing.T, coord versatiles.TileCoord3, pbf []byte) *MockOperation {
	t.Helper()
	return NewMockOperation(
		versatiles.TilesReaderParameters{TileFormat: versatiles.FormatPBF, TileCompression: versatiles.Uncompressed},
		nil,
		map[versatiles.TileCoord3]versatiles.Blob{coord: versatiles.NewBlob(pbf)},
	)
}

func TestVectorTilePropertyRewriteMergesProperties(t *testing.T) {
	coord, err := versatiles.NewTileCoord3(4, 2, 3)
	require.NoError(t, err)
	pbf := buildPBFTile(t, 4, 2, 3, "places", "feature_id", "42", map[string]interface{}{"name": "old"})
	src := sourceOperation(t, coord, pbf)

	args := VectorTilePropertyRewriteArgs{
		IDFieldTiles: "feature_id",
		IDFieldData:  "id",
	}
	rows := []map[string]string{{"id": "42", "name": "new", "population": "100"}}

	op, err := NewVectorTilePropertyRewriteOperation(args, rows, src, nil)
	require.NoError(t, err)

	out, err := op.GetTileData(context.Background(), coord)
	require.NoError(t, err)
	require.NotNil(t, out)

	vt, err := vectortile.FromBytes(out.AsSlice(), coord.Z, coord.X, coord.Y)
	require.NoError(t, err)
	props := vt.Layers()[0].Features()[0].Properties()
	assert.Equal(t, "new", props["name"])
	assert.Equal(t, "100", props["population"])
}

func TestVectorTilePropertyRewriteReplacesProperties(t *testing.T) {
	coord, err := versatiles.NewTileCoord3(4, 2, 3)
	require.NoError(t, err)
	pbf := buildPBFTile(t, 4, 2, 3, "places", "feature_id", "42", map[string]interface{}{"name": "old", "extra": "gone"})
	src := sourceOperation(t, coord, pbf)

	args := VectorTilePropertyRewriteArgs{
		IDFieldTiles:      "feature_id",
		IDFieldData:       "id",
		ReplaceProperties: true,
	}
	rows := []map[string]string{{"id": "42", "name": "new"}}

	op, err := NewVectorTilePropertyRewriteOperation(args, rows, src, nil)
	require.NoError(t, err)

	out, err := op.GetTileData(context.Background(), coord)
	require.NoError(t, err)

	vt, err := vectortile.FromBytes(out.AsSlice(), coord.Z, coord.X, coord.Y)
	require.NoError(t, err)
	props := vt.Layers()[0].Features()[0].Properties()
	assert.Equal(t, map[string]interface{}{"name": "new"}, props)
}

func TestVectorTilePropertyRewriteRemovesNonMatching(t *testing.T) {
	coord, err := versatiles.NewTileCoord3(4, 2, 3)
	require.NoError(t, err)
	pbf := buildPBFTile(t, 4, 2, 3, "places", "feature_id", "no-match", nil)
	src := sourceOperation(t, coord, pbf)

	args := VectorTilePropertyRewriteArgs{
		IDFieldTiles:      "feature_id",
		IDFieldData:       "id",
		RemoveNonMatching: true,
	}
	rows := []map[string]string{{"id": "42", "name": "new"}}

	op, err := NewVectorTilePropertyRewriteOperation(args, rows, src, nil)
	require.NoError(t, err)

	out, err := op.GetTileData(context.Background(), coord)
	require.NoError(t, err)

	vt, err := vectortile.FromBytes(out.AsSlice(), coord.Z, coord.X, coord.Y)
	require.NoError(t, err)
	assert.Len(t, vt.Layers()[0].Features(), 0)
}

func TestVectorTilePropertyRewriteRejectsNonPBFSource(t *testing.T) {
	src := NewMockOperation(versatiles.TilesReaderParameters{TileFormat: versatiles.FormatPNG}, nil, nil)
	_, err := NewVectorTilePropertyRewriteOperation(VectorTilePropertyRewriteArgs{IDFieldData: "id"}, nil, src, nil)
	assert.Error(t, err)
}

func TestVectorTilePropertyRewriteGetParametersForcesUncompressed(t *testing.T) {
	coord, _ := versatiles.NewTileCoord3(0, 0, 0)
	src := NewMockOperation(versatiles.TilesReaderParameters{TileFormat: versatiles.FormatPBF, TileCompression: versatiles.Brotli}, nil, map[versatiles.TileCoord3]versatiles.Blob{})
	op, err := NewVectorTilePropertyRewriteOperation(VectorTilePropertyRewriteArgs{IDFieldData: "id"}, nil, src, nil)
	require.NoError(t, err)
	assert.Equal(t, versatiles.Uncompressed, op.GetParameters().TileCompression)
	_ = coord
}
