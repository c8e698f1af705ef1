package vectortile

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSampleTileBytes(t *testing.T, z uint8, x, y uint32) []byte {
	t.Helper()
	tile := maptile.New(x, y, maptile.Zoom(z))

	fc := geojson.NewFeatureCollection()
	feature := geojson.NewFeature(orb.Point{tile.Bound().Center().Lon(), tile.Bound().Center().Lat()})
	feature.Properties["feature_id"] = "42"
	feature.Properties["name"] = "original"
	fc.Append(feature)

	layer := mvt.NewLayer("places", fc)
	layer.ProjectToTile(tile)

	layers := mvt.Layers{layer}
	data, err := mvt.Marshal(layers)
	require.NoError(t, err)
	return data
}

func TestFromBytesDecodesLayersAndFeatures(t *testing.T) {
	data := buildSampleTileBytes(t, 4, 2, 3)
	vt, err := FromBytes(data, 4, 2, 3)
	require.NoError(t, err)

	layers := vt.Layers()
	require.Len(t, layers, 1)
	assert.Equal(t, "places", layers[0].Name())

	features := layers[0].Features()
	require.Len(t, features, 1)
	assert.Equal(t, "42", features[0].Properties()["feature_id"])
}

func TestSetPropertiesReplacesWholesale(t *testing.T) {
	data := buildSampleTileBytes(t, 4, 2, 3)
	vt, err := FromBytes(data, 4, 2, 3)
	require.NoError(t, err)

	feature := vt.Layers()[0].Features()[0]
	feature.SetProperties(map[string]interface{}{"replaced": true})
	assert.Equal(t, map[string]interface{}{"replaced": true}, feature.Properties())
}

func TestFilterFeaturesKeepsSurvivors(t *testing.T) {
	data := buildSampleTileBytes(t, 4, 2, 3)
	vt, err := FromBytes(data, 4, 2, 3)
	require.NoError(t, err)

	layer := vt.Layers()[0]
	layer.FilterFeatures(func(f Feature) bool { return false })
	assert.Len(t, layer.Features(), 0)
}

func TestToBytesRoundTrip(t *testing.T) {
	data := buildSampleTileBytes(t, 4, 2, 3)
	vt, err := FromBytes(data, 4, 2, 3)
	require.NoError(t, err)

	out, err := vt.ToBytes()
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	vt2, err := FromBytes(out, 4, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, "42", vt2.Layers()[0].Features()[0].Properties()["feature_id"])
}
