package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"wa-bridge/contract"

	"github.com/gabriel-vasile/mimetype"
)

var _ contract.BlobStore = (*DiskBlobStore)(nil)

// DiskBlobStore writes media files under a single directory.
// Files are never removed by the bridge.
type DiskBlobStore struct {
	dir string
	log *slog.Logger
}

func NewDiskBlobStore(dir string, log *slog.Logger) *DiskBlobStore {
	return &DiskBlobStore{dir: dir, log: log}
}

// Save writes data to dir/name and returns the file path as handle.
func (d *DiskBlobStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid blob name %q", name)
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating media directory: %w", err)
	}

	path := filepath.Join(d.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}

	d.log.Debug("Media stored", "path", path, "size", len(data), "mime", mimetype.Detect(data).String())
	return path, nil
}
