package versatiles

// Blob is an immutable owned byte buffer. Callers never receive a view into
// reader-internal state; every Blob handed across a package boundary is a
// fresh copy.
type Blob struct {
	data []byte
}

// NewBlob takes ownership of b and returns it wrapped as a Blob. Callers
// must not mutate b afterwards.
func NewBlob(b []byte) Blob {
	return Blob{data: b}
}

// CopyBlob copies b into a new Blob, leaving the caller's slice untouched.
func CopyBlob(b []byte) Blob {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Blob{data: cp}
}

// Len returns the number of bytes in the blob.
func (b Blob) Len() int {
	return len(b.data)
}

// AsSlice returns the blob's bytes. The caller must not mutate the
// returned slice.
func (b Blob) AsSlice() []byte {
	return b.data
}

// AsString interprets the blob's bytes as UTF-8 text.
func (b Blob) AsString() string {
	return string(b.data)
}

// Slice returns the sub-range of the blob denoted by r as a new Blob,
// copying the underlying bytes so the result owns its own storage.
func (b Blob) Slice(r ByteRange) Blob {
	end := r.Offset + r.Length
	if end > uint64(len(b.data)) {
		end = uint64(len(b.data))
	}
	if r.Offset >= end {
		return Blob{}
	}
	return CopyBlob(b.data[r.Offset:end])
}

// ByteRange is an (offset, length) pair denoting a span of bytes in a file
// or in a Blob.
type ByteRange struct {
	Offset uint64
	Length uint64
}

// End returns the first offset past the range.
func (r ByteRange) End() uint64 {
	return r.Offset + r.Length
}

// Empty reports whether the range spans zero bytes, the sentinel used
// throughout the index formats for "tile absent".
func (r ByteRange) Empty() bool {
	return r.Length == 0
}

// Overlaps reports whether r and o denote overlapping byte spans.
func (r ByteRange) Overlaps(o ByteRange) bool {
	return r.Offset < o.End() && o.Offset < r.End()
}

// Contains reports whether off falls within r.
func (r ByteRange) Contains(off uint64) bool {
	return off >= r.Offset && off < r.End()
}
