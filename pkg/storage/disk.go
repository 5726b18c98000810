// Package storage provides the file storage used for item images.
//
// Two drivers implement Disk:
//   - "local"  local filesystem, served by the HTTP kernel under /storage/
//   - "s3"     S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
//	disk, err := storage.New(ctx, cfg)
//	err = disk.Put(ctx, "items/65f.../photo.jpg", file, "image/jpeg")
//	url := disk.URL("items/65f.../photo.jpg")
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/shashiranjanraj/storefront/config"
)

// ErrInvalidPath is returned for paths escaping the disk root.
var ErrInvalidPath = errors.New("storage: invalid path")

// Disk is the filesystem driver interface.
type Disk interface {
	// Put writes r to p, creating parent directories as needed.
	Put(ctx context.Context, p string, r io.Reader, contentType string) error

	// Exists reports whether a file exists at p.
	Exists(ctx context.Context, p string) bool

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, p string) error

	// URL returns the public URL for p.
	URL(p string) string
}

// New returns the disk selected by cfg.StorageDisk.
func New(ctx context.Context, cfg *config.Config) (Disk, error) {
	switch cfg.StorageDisk {
	case "local", "":
		return NewLocal(cfg.StorageLocalRoot, cfg.StorageURL)
	case "s3":
		return NewS3(ctx, S3Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Key:      cfg.S3Key,
			Secret:   cfg.S3Secret,
			Endpoint: cfg.S3Endpoint,
			BaseURL:  cfg.S3URL,
		})
	default:
		return nil, fmt.Errorf("storage: unknown disk %q", cfg.StorageDisk)
	}
}

// clean normalises p to a slash-separated relative key.
func clean(p string) (string, error) {
	c := path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	c = strings.TrimPrefix(c, "/")
	if c == "" || c == "." {
		return "", ErrInvalidPath
	}
	return c, nil
}
