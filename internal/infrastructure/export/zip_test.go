package export

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/We2399/idea-launcher-pro-sub001/internal/application/document"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZIPArchiver_WriteArchive(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryObjectStorage()
	require.NoError(t, store.Upload(ctx, "k/1", []byte("contract v1"), "application/pdf"))
	require.NoError(t, store.Upload(ctx, "k/2", []byte("passport scan"), "image/png"))
	require.NoError(t, store.Upload(ctx, "k/3", []byte("second copy"), "image/png"))

	a := NewZIPArchiver(store, nil)
	var buf bytes.Buffer
	n, err := a.WriteArchive(ctx, &buf, []document.ArchiveEntry{
		{Name: "E001/contract/Employment-Contract-v1.pdf", StorageKey: "k/1"},
		{Name: "E001/identity/Passport-v2.png", StorageKey: "k/2"},
		{Name: "E001/identity/Passport-v2.png", StorageKey: "k/3"},
		{Name: "E002/tax/Missing-v1.pdf", StorageKey: "k/missing"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	contents := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		contents[f.Name] = string(data)
	}
	assert.Equal(t, map[string]string{
		"E001/contract/Employment-Contract-v1.pdf": "contract v1",
		"E001/identity/Passport-v2.png":            "passport scan",
		"E001/identity/Passport-v2-2.png":          "second copy",
	}, contents)
}

func TestZIPArchiver_Empty(t *testing.T) {
	var buf bytes.Buffer
	n, err := NewZIPArchiver(storage.NewMemoryObjectStorage(), nil).WriteArchive(context.Background(), &buf, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Empty(t, zr.File)
}

func TestZIPArchiver_CancelledContext(t *testing.T) {
	store := storage.NewMemoryObjectStorage()
	require.NoError(t, store.Upload(context.Background(), "k", []byte("x"), ""))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewZIPArchiver(store, nil).WriteArchive(ctx, io.Discard, []document.ArchiveEntry{{Name: "a.pdf", StorageKey: "k"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUniqueName(t *testing.T) {
	seen := map[string]int{}
	assert.Equal(t, "a/b.pdf", uniqueName(seen, "a/b.pdf"))
	assert.Equal(t, "a/b-2.pdf", uniqueName(seen, "a/b.pdf"))
	assert.Equal(t, "a/b-3.pdf", uniqueName(seen, "a/b.pdf"))
	assert.Equal(t, "etc/passwd", uniqueName(seen, "../../etc/passwd"))
}
