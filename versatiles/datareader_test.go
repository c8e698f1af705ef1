package versatiles

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockDataReaderReadRange(t *testing.T) {
	r := NewMockDataReader("mock", []byte("0123456789"))
	b, err := r.ReadRange(context.Background(), ByteRange{Offset: 2, Length: 4})
	assert.NoError(t, err)
	assert.Equal(t, "2345", b.AsString())
	assert.Equal(t, "mock", r.Name())
}

func TestMockDataReaderReadRangeOutOfBounds(t *testing.T) {
	r := NewMockDataReader("mock", []byte("abc"))
	_, err := r.ReadRange(context.Background(), ByteRange{Offset: 0, Length: 10})
	assert.Error(t, err)
}

func TestMockDataReaderETagStable(t *testing.T) {
	r := NewMockDataReader("mock", []byte("same bytes"))
	assert.Equal(t, r.ETag(), r.ETag())
}

func TestFileDataReaderReadRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	require.NoError(t, os.WriteFile(path, []byte("hello versatiles"), 0o644))

	r, err := OpenFileDataReader(path)
	require.NoError(t, err)
	defer r.Close()

	b, err := r.ReadRange(context.Background(), ByteRange{Offset: 6, Length: 10})
	assert.NoError(t, err)
	assert.Equal(t, "versatiles", b.AsString())
	assert.Equal(t, path, r.Name())
}

func TestFileDataReaderShortReadErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.bin")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	r, err := OpenFileDataReader(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.ReadRange(context.Background(), ByteRange{Offset: 0, Length: 10})
	assert.Error(t, err)
}

type fakeHTTPClient struct {
	lastRequest *http.Request
	status      int
	body        []byte
}

func (c *fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.lastRequest = req
	return &http.Response{
		StatusCode: c.status,
		Body:       io.NopCloser(bytes.NewReader(c.body)),
	}, nil
}

func TestHTTPDataReaderReadRangeSetsRangeHeader(t *testing.T) {
	client := &fakeHTTPClient{status: http.StatusPartialContent, body: []byte("chunk")}
	r := NewHTTPDataReader("https://example.com/tiles.versatiles", client)

	b, err := r.ReadRange(context.Background(), ByteRange{Offset: 10, Length: 5})
	assert.NoError(t, err)
	assert.Equal(t, "chunk", b.AsString())
	assert.Equal(t, "bytes=10-14", client.lastRequest.Header.Get("Range"))
	assert.Equal(t, "https://example.com/tiles.versatiles", r.Name())
}

func TestHTTPDataReaderNonOKStatusErrors(t *testing.T) {
	client := &fakeHTTPClient{status: http.StatusNotFound, body: nil}
	r := NewHTTPDataReader("https://example.com/missing", client)

	_, err := r.ReadRange(context.Background(), ByteRange{Offset: 0, Length: 1})
	assert.Error(t, err)
}
