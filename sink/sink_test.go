package sink

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSink map[string][]byte

func (m memSink) Put(_ context.Context, name string, data []byte) error {
	m[name] = data
	return nil
}

func TestFileSinkPlainAndGzip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	doc := []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`)

	plain := filepath.Join(dir, "out", "a.svg")
	require.NoError(t, FileSink{}.Put(ctx, plain, doc))
	got, err := os.ReadFile(plain)
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	zipped := filepath.Join(dir, "a.svgz")
	require.NoError(t, FileSink{}.Put(ctx, zipped, doc))
	f, err := os.Open(zipped)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	got, err = io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestSplit(t *testing.T) {
	lines := []string{"aaaa", "bbbb", "cc", strings.Repeat("x", 20), "d"}
	chunks := Split(lines, 10)
	require.Len(t, chunks, 4)
	assert.Equal(t, "aaaa\nbbbb\n", string(chunks[0]))
	assert.Equal(t, "cc\n", string(chunks[1]))
	assert.Equal(t, strings.Repeat("x", 20)+"\n", string(chunks[2]))
	assert.Equal(t, "d\n", string(chunks[3]))

	assert.Empty(t, Split(nil, 10))
}

func TestWriteSplit(t *testing.T) {
	mem := memSink{}
	names, err := WriteSplit(context.Background(), mem, "output/video", ".bas", []string{"one", "two", "three"}, 8)
	require.NoError(t, err)
	assert.Equal(t, []string{"output/video_0.bas", "output/video_1.bas"}, names)
	assert.Equal(t, "one\ntwo\n", string(mem["output/video_0.bas"]))
	assert.Equal(t, "three\n", string(mem["output/video_1.bas"]))
}

func TestEncodePassThrough(t *testing.T) {
	data := []byte("{}")
	got, err := Encode("frames.json", data)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, got))
}

func TestParseS3URL(t *testing.T) {
	bucket, key, ok := ParseS3URL("s3://media/traces/frame.svg")
	assert.True(t, ok)
	assert.Equal(t, "media", bucket)
	assert.Equal(t, "traces/frame.svg", key)

	for _, u := range []string{"out.svg", "s3://", "s3://bucket", "s3:///key"} {
		_, _, ok := ParseS3URL(u)
		assert.False(t, ok, u)
	}

	s, name, err := Open("local/out.svg", "us-east-1")
	require.NoError(t, err)
	assert.IsType(t, FileSink{}, s)
	assert.Equal(t, "local/out.svg", name)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/svg+xml", contentType("a.svg"))
	assert.Equal(t, "image/svg+xml", contentType("a.SVGZ"))
	assert.Equal(t, "text/plain; charset=utf-8", contentType("a.bas"))
	assert.Equal(t, "application/octet-stream", contentType("a.unknownext"))
}
