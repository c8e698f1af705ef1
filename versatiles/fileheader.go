package versatiles

import (
	"context"
	"encoding/binary"
	"fmt"
)

// FileMagic is the fixed magic tag at the start of every versatiles
// container, per spec.md §6.
const FileMagic = "versatiles"

// FileHeaderVersion is the only format version this implementation
// understands.
const FileHeaderVersion = 1

// FileHeaderLenBytes is the fixed size of the on-disk preamble, chosen so
// it can always be read in a single request (spec.md §3/§6).
const FileHeaderLenBytes = 64

// FileHeader is the fixed-layout container preamble at file offset 0.
type FileHeader struct {
	Version     uint8
	TileFormat  TileFormat
	Compression TileCompression
	ZoomMin     uint8
	ZoomMax     uint8
	MinLonE7    int32
	MinLatE7    int32
	MaxLonE7    int32
	MaxLatE7    int32
	MetaRange   ByteRange
	BlocksRange ByteRange
}

// SerializeFileHeader encodes h into the fixed-size on-disk layout, all
// integers little-endian, per spec.md §6.
func SerializeFileHeader(h FileHeader) []byte {
	b := make([]byte, FileHeaderLenBytes)
	copy(b[0:10], FileMagic)
	b[10] = h.Version
	b[11] = uint8(h.TileFormat)
	b[12] = uint8(h.Compression)
	b[13] = h.ZoomMin
	b[14] = h.ZoomMax
	binary.LittleEndian.PutUint32(b[16:20], uint32(h.MinLonE7))
	binary.LittleEndian.PutUint32(b[20:24], uint32(h.MinLatE7))
	binary.LittleEndian.PutUint32(b[24:28], uint32(h.MaxLonE7))
	binary.LittleEndian.PutUint32(b[28:32], uint32(h.MaxLatE7))
	binary.LittleEndian.PutUint64(b[32:40], h.MetaRange.Offset)
	binary.LittleEndian.PutUint64(b[40:48], h.MetaRange.Length)
	binary.LittleEndian.PutUint64(b[48:56], h.BlocksRange.Offset)
	binary.LittleEndian.PutUint64(b[56:64], h.BlocksRange.Length)
	return b
}

// DeserializeFileHeader parses a FileHeaderLenBytes-sized buffer into a
// FileHeader, validating the magic tag, format version and enum fields.
func DeserializeFileHeader(d []byte) (FileHeader, error) {
	var h FileHeader
	if len(d) < FileHeaderLenBytes {
		return h, &InvalidHeaderError{Reason: fmt.Sprintf("short header: %d bytes", len(d))}
	}
	if string(d[0:10]) != FileMagic {
		return h, &InvalidHeaderError{Reason: "magic tag mismatch"}
	}
	version := d[10]
	if version != FileHeaderVersion {
		return h, &InvalidHeaderError{Reason: fmt.Sprintf("unsupported format version %d", version)}
	}

	format := TileFormat(d[11])
	if format > FormatJSON {
		return h, &InvalidHeaderError{Reason: fmt.Sprintf("invalid tile format %d", d[11])}
	}
	compression := TileCompression(d[12])
	if compression > Brotli {
		return h, &InvalidHeaderError{Reason: fmt.Sprintf("invalid tile compression %d", d[12])}
	}

	h.Version = version
	h.TileFormat = format
	h.Compression = compression
	h.ZoomMin = d[13]
	h.ZoomMax = d[14]
	h.MinLonE7 = int32(binary.LittleEndian.Uint32(d[16:20]))
	h.MinLatE7 = int32(binary.LittleEndian.Uint32(d[20:24]))
	h.MaxLonE7 = int32(binary.LittleEndian.Uint32(d[24:28]))
	h.MaxLatE7 = int32(binary.LittleEndian.Uint32(d[28:32]))
	h.MetaRange = ByteRange{
		Offset: binary.LittleEndian.Uint64(d[32:40]),
		Length: binary.LittleEndian.Uint64(d[40:48]),
	}
	h.BlocksRange = ByteRange{
		Offset: binary.LittleEndian.Uint64(d[48:56]),
		Length: binary.LittleEndian.Uint64(d[56:64]),
	}
	return h, nil
}

// ReadFileHeader reads and parses the fixed-size preamble from r.
func ReadFileHeader(ctx context.Context, r DataReader) (FileHeader, error) {
	blob, err := r.ReadRange(ctx, ByteRange{Offset: 0, Length: FileHeaderLenBytes})
	if err != nil {
		return FileHeader{}, &IoError{Op: "read file header", Err: err}
	}
	return DeserializeFileHeader(blob.AsSlice())
}
