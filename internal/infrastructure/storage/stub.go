package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/application/document"
)

// MemoryObjectStorage keeps objects in process. It is used when no S3
// backend is configured and in tests. Presigned URLs point at BaseURL and
// are not servable.
type MemoryObjectStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryObjectStorage creates an empty store
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{
		BaseURL: "https://storage.example.com",
		objects: make(map[string][]byte),
	}
}

var _ document.ObjectStorage = (*MemoryObjectStorage)(nil)

// GenerateUploadURL returns a placeholder upload URL
func (s *MemoryObjectStorage) GenerateUploadURL(
	_ context.Context,
	storageKey, _ string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/upload/" + storageKey + "?expires=" + expiresAt.Format(time.RFC3339), expiresAt, nil
}

// GenerateDownloadURL returns a placeholder download URL
func (s *MemoryObjectStorage) GenerateDownloadURL(
	_ context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/download/" + storageKey + "?expires=" + expiresAt.Format(time.RFC3339), expiresAt, nil
}

// DeleteObject removes the object
func (s *MemoryObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	delete(s.objects, storageKey)
	s.mu.Unlock()
	return nil
}

// ObjectExists reports whether Upload stored the key
func (s *MemoryObjectStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}
	s.mu.RLock()
	_, ok := s.objects[storageKey]
	s.mu.RUnlock()
	return ok, nil
}

// Open returns a reader over a copy of the stored bytes
func (s *MemoryObjectStorage) Open(_ context.Context, storageKey string) (io.ReadCloser, error) {
	s.mu.RLock()
	data, ok := s.objects[storageKey]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("object %s: %w", storageKey, document.ErrObjectMissing)
	}
	return io.NopCloser(bytes.NewReader(bytes.Clone(data))), nil
}

// Upload stores the bytes
func (s *MemoryObjectStorage) Upload(_ context.Context, storageKey string, data []byte, _ string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	s.objects[storageKey] = bytes.Clone(data)
	s.mu.Unlock()
	return nil
}
