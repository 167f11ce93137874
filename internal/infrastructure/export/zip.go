// Package export writes the binary downloads: the documents ZIP and the
// payroll register workbook.
package export

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/application/document"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ZIPArchiver implements document.ArchiveWriter on top of object storage
type ZIPArchiver struct {
	storage document.ObjectStorage
	logger  *zap.Logger
}

// NewZIPArchiver creates an archiver reading from storage
func NewZIPArchiver(storage document.ObjectStorage, logger *zap.Logger) *ZIPArchiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZIPArchiver{storage: storage, logger: logger}
}

var _ document.ArchiveWriter = (*ZIPArchiver)(nil)

// WriteArchive copies each object into a deflated entry. Duplicate names
// get a numeric suffix before the extension.
func (a *ZIPArchiver) WriteArchive(ctx context.Context, w io.Writer, entries []document.ArchiveEntry) (int, error) {
	log := logger.Enrich(ctx, a.logger)
	zw := zip.NewWriter(w)
	seen := make(map[string]int, len(entries))
	written := 0

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			_ = zw.Close()
			return written, err
		}
		name := uniqueName(seen, entry.Name)
		ok, err := a.copyEntry(ctx, zw, name, entry)
		if err != nil {
			_ = zw.Close()
			return written, err
		}
		if !ok {
			log.Warn("Skipping document missing from storage",
				zap.String("entry", entry.Name),
				zap.String("storage_key", entry.StorageKey))
			continue
		}
		written++
	}
	if err := zw.Close(); err != nil {
		return written, fmt.Errorf("finish zip: %w", err)
	}
	log.Info("Document archive written", zap.Int("entries", written), zap.Int("requested", len(entries)))
	return written, nil
}

func (a *ZIPArchiver) copyEntry(ctx context.Context, zw *zip.Writer, name string, entry document.ArchiveEntry) (bool, error) {
	rc, err := a.storage.Open(ctx, entry.StorageKey)
	if errors.Is(err, document.ErrObjectMissing) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open %s: %w", entry.StorageKey, err)
	}
	defer rc.Close()

	modified := entry.Modified
	if modified.IsZero() {
		modified = time.Now()
	}
	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return false, fmt.Errorf("create entry %s: %w", name, err)
	}
	if _, err := io.Copy(fw, rc); err != nil {
		return false, fmt.Errorf("copy %s: %w", entry.StorageKey, err)
	}
	return true, nil
}

func uniqueName(seen map[string]int, name string) string {
	name = strings.TrimLeft(path.Clean("/"+name), "/")
	n := seen[name]
	seen[name] = n + 1
	if n == 0 {
		return name
	}
	ext := path.Ext(name)
	candidate := fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n+1, ext)
	if _, taken := seen[candidate]; taken {
		return uniqueName(seen, candidate)
	}
	seen[candidate] = 1
	return candidate
}
