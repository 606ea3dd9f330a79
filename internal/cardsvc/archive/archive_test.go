package archive

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, entries [][2]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e[0])
		require.NoError(t, err)
		_, err = w.Write([]byte(e[1]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractFlattensDirectories(t *testing.T) {
	t.Parallel()

	data := buildZip(t, [][2]string{
		{"goblin.png", "goblin bytes"},
		{"art/deep/dragon.jpg", "dragon bytes"},
	})

	images, err := Extract(data)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, []byte("goblin bytes"), images["goblin.png"])
	assert.Equal(t, []byte("dragon bytes"), images["dragon.jpg"])
}

func TestExtractLastEntryWins(t *testing.T) {
	t.Parallel()

	data := buildZip(t, [][2]string{
		{"a/x.png", "first"},
		{"b/x.png", "second"},
	})

	images, err := Extract(data)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, []byte("second"), images["x.png"])
}

func TestExtractEmptyInput(t *testing.T) {
	t.Parallel()

	images, err := Extract(nil)
	require.NoError(t, err)
	assert.Empty(t, images)

	images, err = Extract([]byte{})
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestExtractEmptyArchive(t *testing.T) {
	t.Parallel()

	data := buildZip(t, nil)
	images, err := Extract(data)
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestExtractCorruptArchive(t *testing.T) {
	t.Parallel()

	_, err := Extract([]byte("this is not a zip file"))
	require.ErrorIs(t, err, ErrArchiveRead)
}
