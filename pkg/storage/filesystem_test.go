package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStoreSaveLoad(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("qr/qr-1-512.png", []byte("png-bytes")))
	require.True(t, store.Exists("qr/qr-1-512.png"))

	data, err := store.Load("qr/qr-1-512.png")
	require.NoError(t, err)
	require.Equal(t, []byte("png-bytes"), data)

	_, err = store.Load("qr/missing.png")
	require.Error(t, err)
}

func TestFileStoreRejectsEscapingNames(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.Error(t, store.Save("../escape.png", []byte("nope")))
	require.Error(t, store.Save("/etc/passwd", []byte("nope")))
	require.False(t, store.Exists("../escape.png"))
}

func TestFileStoreSweep(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("exports/shop-1/scans.csv", []byte("a,b")))

	removed, err := store.Sweep(0)
	require.NoError(t, err)
	require.Equal(t, 1, removed)
	require.False(t, store.Exists("exports/shop-1/scans.csv"))
}
