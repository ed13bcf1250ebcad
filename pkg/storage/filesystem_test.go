package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveStream(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	name, err := store.SaveStream("event_test.png", bytes.NewReader([]byte("image bytes")))
	require.NoError(t, err)
	assert.Equal(t, "event_test.png", name)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "image bytes", string(data))
}

func TestLocalStorageDeleteMissingIsNoop(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Delete("never-existed.png"))
}

func TestGenerateFilename(t *testing.T) {
	one := GenerateFilename("event", "poster.PNG")
	two := GenerateFilename("event", "poster.PNG")

	assert.True(t, strings.HasPrefix(one, "event_"))
	assert.True(t, strings.HasSuffix(one, ".png"))
	assert.NotEqual(t, one, two)

	noExt := GenerateFilename("event", "raw-upload")
	assert.True(t, strings.HasSuffix(noExt, ".bin"))
}
