package versatiles

// TileFormat tells downstream consumers what a decompressed tile Blob
// contains.
type TileFormat uint8

// TileFormat values, matching spec.md §3's enumeration.
const (
	FormatUnknown TileFormat = iota
	FormatPBF
	FormatPNG
	FormatJPG
	FormatWEBP
	FormatAVIF
	FormatBIN
	FormatGEOJSON
	FormatSVG
	FormatTOPOJSON
	FormatJSON
)

func (f TileFormat) String() string {
	switch f {
	case FormatPBF:
		return "pbf"
	case FormatPNG:
		return "png"
	case FormatJPG:
		return "jpg"
	case FormatWEBP:
		return "webp"
	case FormatAVIF:
		return "avif"
	case FormatBIN:
		return "bin"
	case FormatGEOJSON:
		return "geojson"
	case FormatSVG:
		return "svg"
	case FormatTOPOJSON:
		return "topojson"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ContentType returns the MIME type for a format, and whether one is known.
func (f TileFormat) ContentType() (string, bool) {
	switch f {
	case FormatPBF:
		return "application/x-protobuf", true
	case FormatPNG:
		return "image/png", true
	case FormatJPG:
		return "image/jpeg", true
	case FormatWEBP:
		return "image/webp", true
	case FormatAVIF:
		return "image/avif", true
	case FormatGEOJSON, FormatTOPOJSON, FormatJSON:
		return "application/json", true
	case FormatSVG:
		return "image/svg+xml", true
	default:
		return "", false
	}
}

// TileCompression is the compression algorithm applied to an individual
// tile payload, or none.
type TileCompression uint8

// TileCompression values, matching spec.md §3.
const (
	CompressionUnknown TileCompression = iota
	Uncompressed
	Gzip
	Brotli
)

func (c TileCompression) String() string {
	switch c {
	case Uncompressed:
		return "uncompressed"
	case Gzip:
		return "gzip"
	case Brotli:
		return "brotli"
	default:
		return "unknown"
	}
}

// TilesReaderParameters describes the coverage and encoding of a tile
// source: its bbox pyramid, the compression applied to individual tiles,
// and the tile payload format.
type TilesReaderParameters struct {
	BboxPyramid     TileBBoxPyramid
	TileCompression TileCompression
	TileFormat      TileFormat
}
