// Package storage persists rendered barcode images and hands out their
// public URLs.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/ManuelReschke/SupplierComply/internal/pkg/env"
)

const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// ObjectStore is a flat key/value blob store.
type ObjectStore interface {
	// Put stores body under key and returns its public URL.
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Ping checks that the backend is reachable and writable.
	Ping(ctx context.Context) error
	Backend() string
}

// NewFromEnv builds the store selected by BARCODE_STORAGE.
func NewFromEnv(ctx context.Context) (ObjectStore, error) {
	switch backend := strings.ToLower(env.GetEnv("BARCODE_STORAGE", BackendLocal)); backend {
	case BackendLocal:
		return NewLocalStore(
			env.GetEnv("BARCODE_LOCAL_DIR", "uploads/barcodes"),
			env.GetEnv("BARCODE_PUBLIC_BASE_URL", "/uploads/barcodes"),
		)
	case BackendS3:
		cfg, err := LoadS3Config()
		if err != nil {
			return nil, err
		}
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown BARCODE_STORAGE backend %q", backend)
	}
}

// cleanKey rejects keys that would escape the store root.
func cleanKey(key string) (string, error) {
	k := path.Clean("/" + strings.TrimSpace(key))
	k = strings.TrimPrefix(k, "/")
	if k == "" || k == "." {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return k, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}

// ContentType returns the MIME type for an object key's extension.
func ContentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".svg":
		return "image/svg+xml"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
