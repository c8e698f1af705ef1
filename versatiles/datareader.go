package versatiles

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
)

// DataReader is the external collaborator contract (spec.md §4.1): reads
// are independent, may be issued concurrently, and honor exact length.
type DataReader interface {
	// ReadRange reads exactly r.Length bytes starting at r.Offset. A short
	// read is surfaced as an IoError, never returned as a partial Blob.
	ReadRange(ctx context.Context, r ByteRange) (Blob, error)
	// Name identifies the underlying resource, for logging.
	Name() string
}

// FileDataReader reads byte ranges from a local file, mirroring the
// teacher's FileBucket.
type FileDataReader struct {
	path string
	file *os.File
}

// OpenFileDataReader opens path for random-access reads.
func OpenFileDataReader(path string) (*FileDataReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IoError{Op: "open " + path, Err: err}
	}
	return &FileDataReader{path: path, file: f}, nil
}

// Close releases the underlying file handle.
func (r *FileDataReader) Close() error {
	return r.file.Close()
}

// Name returns the filesystem path.
func (r *FileDataReader) Name() string { return r.path }

// ReadRange implements DataReader.
func (r *FileDataReader) ReadRange(_ context.Context, rng ByteRange) (Blob, error) {
	buf := make([]byte, rng.Length)
	n, err := r.file.ReadAt(buf, int64(rng.Offset))
	if err != nil && err != io.EOF {
		return Blob{}, &IoError{Op: fmt.Sprintf("read %s at %d", r.path, rng.Offset), Err: err}
	}
	if uint64(n) != rng.Length {
		return Blob{}, &IoError{Op: fmt.Sprintf("read %s at %d", r.path, rng.Offset), Err: fmt.Errorf("short read: got %d of %d bytes", n, rng.Length)}
	}
	return NewBlob(buf), nil
}

// MockDataReader serves range reads from an in-memory buffer, for tests.
// Grounded on the teacher's mockBucket.
type MockDataReader struct {
	name string
	data []byte
}

// NewMockDataReader wraps data as a DataReader under the given name.
func NewMockDataReader(name string, data []byte) *MockDataReader {
	return &MockDataReader{name: name, data: data}
}

// Name returns the mock reader's label.
func (r *MockDataReader) Name() string { return r.name }

// ReadRange implements DataReader.
func (r *MockDataReader) ReadRange(_ context.Context, rng ByteRange) (Blob, error) {
	end := rng.Offset + rng.Length
	if end > uint64(len(r.data)) {
		return Blob{}, &IoError{Op: "mock read", Err: fmt.Errorf("range %d-%d exceeds buffer of %d bytes", rng.Offset, end, len(r.data))}
	}
	return CopyBlob(r.data[rng.Offset:end]), nil
}

// ETag returns a content hash (hex-encoded MD5) of the mock buffer.
func (r *MockDataReader) ETag() string {
	sum := md5.Sum(r.data)
	return hex.EncodeToString(sum[:])
}

// HTTPClient is the subset of *http.Client used by HTTPDataReader. Tests
// inject a fake implementation instead of hitting the network, mirroring
// the teacher's HTTPBucket seam.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPDataReader reads byte ranges from a remote file over HTTP range
// requests.
type HTTPDataReader struct {
	url    string
	client HTTPClient
}

// NewHTTPDataReader builds a reader against url using client.
func NewHTTPDataReader(url string, client HTTPClient) *HTTPDataReader {
	return &HTTPDataReader{url: url, client: client}
}

// Name returns the remote URL.
func (r *HTTPDataReader) Name() string { return r.url }

// ReadRange implements DataReader via an HTTP Range request.
func (r *HTTPDataReader) ReadRange(ctx context.Context, rng ByteRange) (Blob, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return Blob{}, &IoError{Op: "build range request", Err: err}
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", rng.Offset, rng.End()-1))

	resp, err := r.client.Do(req)
	if err != nil {
		return Blob{}, &IoError{Op: "http range request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return Blob{}, &IoError{Op: "http range request", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Blob{}, &IoError{Op: "read http response body", Err: err}
	}
	if uint64(len(data)) != rng.Length {
		return Blob{}, &IoError{Op: "http range request", Err: fmt.Errorf("short read: got %d of %d bytes", len(data), rng.Length)}
	}
	return NewBlob(data), nil
}
