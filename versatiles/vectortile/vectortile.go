// Package vectortile gives the spec's Blob<->VectorTile contract (out of
// scope as new codec work per spec.md §1) a concrete binding onto
// github.com/paulmach/orb/encoding/mvt, a direct teacher dependency
// already used for geometry work in the teacher's pmtiles/bitmap.go.
package vectortile

import (
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/maptile"
)

// Feature is one vector-tile feature: a geometry (opaque to this package)
// plus a property map, the only part the property-rewrite transform
// touches.
type Feature struct {
	raw *mvt.Layer
	idx int
}

// Properties returns the feature's property map. Mutating the returned
// map mutates the feature.
func (f Feature) Properties() map[string]interface{} {
	return map[string]interface{}(f.raw.Features[f.idx].Properties)
}

// SetProperties replaces the feature's property map wholesale.
func (f Feature) SetProperties(props map[string]interface{}) {
	f.raw.Features[f.idx].Properties = props
}

// Layer is one named layer of a vector tile.
type Layer struct {
	raw *mvt.Layer
}

// Name returns the layer's name.
func (l Layer) Name() string { return l.raw.Name }

// Features returns the layer's features.
func (l Layer) Features() []Feature {
	out := make([]Feature, len(l.raw.Features))
	for i := range l.raw.Features {
		out[i] = Feature{raw: l.raw, idx: i}
	}
	return out
}

// FilterFeatures replaces the layer's feature list with keep(f) == true
// survivors, in original order.
func (l Layer) FilterFeatures(keep func(Feature) bool) {
	kept := l.raw.Features[:0]
	for i, feat := range l.raw.Features {
		if keep(Feature{raw: l.raw, idx: i}) {
			kept = append(kept, feat)
		}
	}
	l.raw.Features = kept
}

// VectorTile is a decoded Mapbox Vector Tile: a set of named layers.
type VectorTile struct {
	layers mvt.Layers
	tile   maptile.Tile
}

// FromBytes decodes an uncompressed MVT payload addressed at z/x/y. The
// tile coordinate is needed because MVT geometry is tile-local; decoding
// projects it to WGS84 so layer/feature operations are coordinate-system
// agnostic.
func FromBytes(data []byte, z uint8, x, y uint32) (*VectorTile, error) {
	layers, err := mvt.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	tile := maptile.New(x, y, maptile.Zoom(z))
	layers.ProjectToWGS84(tile)
	return &VectorTile{layers: layers, tile: tile}, nil
}

// Layers returns the tile's layers.
func (v *VectorTile) Layers() []Layer {
	out := make([]Layer, len(v.layers))
	for i := range v.layers {
		out[i] = Layer{raw: v.layers[i]}
	}
	return out
}

// ToBytes re-projects to tile-local coordinates and re-encodes as an
// uncompressed MVT payload.
func (v *VectorTile) ToBytes() ([]byte, error) {
	v.layers.ProjectToTile(v.tile)
	data, err := mvt.Marshal(v.layers)
	v.layers.ProjectToWGS84(v.tile) // leave the in-memory tile usable afterwards
	return data, err
}
