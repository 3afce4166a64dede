package pkg

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00,
	0x01, 0x00, 0x00, 0x00, 0x00, 0x21, 0xf9, 0x04,
	0x01, 0x0a, 0x00, 0x01, 0x00, 0x2c, 0x00, 0x00,
	0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02,
	0x02, 0x4c, 0x01, 0x00, 0x3b,
}

func TestSaveImage(t *testing.T) {
	store := NewMediaStore(t.TempDir())

	rel, err := store.save(bytes.NewReader(smallGIF))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "posts/"))
	assert.True(t, strings.HasSuffix(rel, ".gif"))

	data, err := os.ReadFile(filepath.Join(store.Root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, smallGIF, data)

	require.NoError(t, store.Remove(rel))
	require.NoError(t, store.Remove(rel))
}

func TestSaveRejectsNonImage(t *testing.T) {
	store := NewMediaStore(t.TempDir())
	_, err := store.save(bytes.NewReader([]byte("just some text")))
	assert.ErrorIs(t, err, ErrNotImage)
}
