package digest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashBytesDeterministic(t *testing.T) {
	a, err := HashBytes(bytes.NewReader([]byte("hello world")))
	require.NoError(t, err)
	b, err := HashBytes(bytes.NewReader([]byte("hello world")))
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
	assert.Len(t, a.String(), HexSize)
}

func TestHashBytesDiffers(t *testing.T) {
	a, err := HashBytes(bytes.NewReader([]byte("hello world")))
	require.NoError(t, err)
	b, err := HashBytes(bytes.NewReader([]byte("hello worlt")))
	require.NoError(t, err)
	assert.False(t, a.Equal(b))
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	fromFile, err := HashFile(path)
	require.NoError(t, err)
	fromBytes, err := HashBytes(bytes.NewReader([]byte("content")))
	require.NoError(t, err)
	assert.Equal(t, fromBytes, fromFile)
}

func TestHashFileMissing(t *testing.T) {
	_, err := HashFile(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestParseRoundTrip(t *testing.T) {
	d, err := HashBytes(bytes.NewReader([]byte("round trip")))
	require.NoError(t, err)

	parsed, err := Parse(d.String())
	require.NoError(t, err)
	assert.Equal(t, d, parsed)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse("not-hex")
	assert.Error(t, err)

	_, err = Parse("deadbeef")
	assert.Error(t, err)
}

func TestTeeHasherMatchesHashBytes(t *testing.T) {
	var buf bytes.Buffer
	tee := NewTeeHasher(&buf)
	_, err := tee.Write([]byte("streamed "))
	require.NoError(t, err)
	_, err = tee.Write([]byte("content"))
	require.NoError(t, err)

	want, err := HashBytes(bytes.NewReader([]byte("streamed content")))
	require.NoError(t, err)
	assert.Equal(t, want, tee.Sum())
	assert.Equal(t, "streamed content", buf.String())
}
