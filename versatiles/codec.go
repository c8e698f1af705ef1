package versatiles

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/andybalholm/brotli"
)

// BrotliQuality selects the effort/ratio trade-off for brotli encoding, per
// spec.md §4.8.
type BrotliQuality struct {
	Quality    int
	WindowBits int
}

// BrotliBest and BrotliFast are the two brotli parameter presets spec.md
// §4.8 fixes.
var (
	BrotliBest = BrotliQuality{Quality: 10, WindowBits: 19}
	BrotliFast = BrotliQuality{Quality: 3, WindowBits: 16}
)

// Compress encodes b using compression c. Gzip always uses best
// compression (level 9); brotli uses the "best" preset.
func Compress(b Blob, c TileCompression) (Blob, error) {
	return compressWithBrotli(b, c, BrotliBest)
}

// CompressFast is like Compress but uses the brotli "fast" preset.
func CompressFast(b Blob, c TileCompression) (Blob, error) {
	return compressWithBrotli(b, c, BrotliFast)
}

func compressWithBrotli(b Blob, c TileCompression, q BrotliQuality) (Blob, error) {
	switch c {
	case Uncompressed, CompressionUnknown:
		return b, nil
	case Gzip:
		var buf bytes.Buffer
		w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
		if err != nil {
			return Blob{}, &CompressionError{Reason: "creating gzip writer", Err: err}
		}
		if _, err := w.Write(b.AsSlice()); err != nil {
			return Blob{}, &CompressionError{Reason: "writing gzip stream", Err: err}
		}
		if err := w.Close(); err != nil {
			return Blob{}, &CompressionError{Reason: "closing gzip stream", Err: err}
		}
		return NewBlob(buf.Bytes()), nil
	case Brotli:
		var buf bytes.Buffer
		w := brotli.NewWriterOptions(&buf, brotli.WriterOptions{Quality: q.Quality, LGWin: q.WindowBits})
		if _, err := w.Write(b.AsSlice()); err != nil {
			return Blob{}, &CompressionError{Reason: "writing brotli stream", Err: err}
		}
		if err := w.Close(); err != nil {
			return Blob{}, &CompressionError{Reason: "closing brotli stream", Err: err}
		}
		return NewBlob(buf.Bytes()), nil
	default:
		return Blob{}, &CompressionError{Reason: "unsupported compression for encode"}
	}
}

// Decompress decodes b, which was encoded using compression c.
func Decompress(b Blob, c TileCompression) (Blob, error) {
	switch c {
	case Uncompressed, CompressionUnknown:
		return b, nil
	case Gzip:
		r, err := gzip.NewReader(bytes.NewReader(b.AsSlice()))
		if err != nil {
			return Blob{}, &CompressionError{Reason: "creating gzip reader", Err: err}
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return Blob{}, &CompressionError{Reason: "reading gzip stream", Err: err}
		}
		return NewBlob(out), nil
	case Brotli:
		r := brotli.NewReader(bytes.NewReader(b.AsSlice()))
		out, err := io.ReadAll(r)
		if err != nil {
			return Blob{}, &CompressionError{Reason: "reading brotli stream", Err: err}
		}
		return NewBlob(out), nil
	default:
		return Blob{}, &CompressionError{Reason: "unsupported compression for decode"}
	}
}
