package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewLocalStore(dir, "https://api.example.com/")
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "a.png", []byte("png-bytes")))

	data, err := os.ReadFile(filepath.Join(dir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "https://api.example.com/uploads/a.png", s.URL("a.png"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")

	require.NoError(t, s.Delete(ctx, "a.png"))
	_, err = os.Stat(filepath.Join(dir, "a.png"))
	assert.True(t, os.IsNotExist(err))

	// Deleting twice is fine
	assert.NoError(t, s.Delete(ctx, "a.png"))
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	for _, key := range []string{"", "../etc/passwd", "sub/a.png", ".hidden"} {
		assert.Error(t, s.Put(context.Background(), key, []byte("x")), key)
	}
}
