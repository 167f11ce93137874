package document

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectMissing is returned by ObjectStorage.Open when nothing is stored under the key
var ErrObjectMissing = errors.New("object not found in storage")

// ObjectStorage is the blob store behind document versions and avatars
type ObjectStorage interface {
	// GenerateUploadURL presigns a PUT. A zero expiresIn uses the store default.
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
}

// ArchiveEntry is one file of a ZIP export
type ArchiveEntry struct {
	Name       string
	StorageKey string
	Modified   time.Time
}

// ArchiveWriter streams stored objects into an archive
type ArchiveWriter interface {
	// WriteArchive writes every entry to w and returns how many were written.
	// Entries whose object is missing are skipped.
	WriteArchive(ctx context.Context, w io.Writer, entries []ArchiveEntry) (int, error)
}
