package versatiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTileFormatString(t *testing.T) {
	assert.Equal(t, "pbf", FormatPBF.String())
	assert.Equal(t, "png", FormatPNG.String())
	assert.Equal(t, "unknown", FormatUnknown.String())
}

func TestTileFormatContentType(t *testing.T) {
	ct, ok := FormatPBF.ContentType()
	assert.True(t, ok)
	assert.Equal(t, "application/x-protobuf", ct)

	_, ok = FormatUnknown.ContentType()
	assert.False(t, ok)
}

func TestTileCompressionString(t *testing.T) {
	assert.Equal(t, "uncompressed", Uncompressed.String())
	assert.Equal(t, "gzip", Gzip.String())
	assert.Equal(t, "brotli", Brotli.String())
}
