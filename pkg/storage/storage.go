// Package storage provides blob storage operations with local filesystem and
// Azure Blob Storage implementations.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/actigraphy/pkg/lifecycle"
)

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that initializes the backing store.
	Start(lc *lifecycle.Coordinator) error
	// Upload streams data to a blob at the given key with the specified content type.
	// An existing blob at the key is replaced.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	// Download returns a stream for the blob at the given key. The caller must close the body.
	// Returns ErrNotFound if the blob does not exist.
	Download(ctx context.Context, key string) (*BlobResult, error)
	// Find returns the metadata of the blob at the given key.
	Find(ctx context.Context, key string) (*BlobMeta, error)
	// List returns up to maxResults blobs whose keys start with prefix, beginning after marker.
	List(ctx context.Context, prefix, marker string, maxResults int32) (*BlobList, error)
	// Delete removes the blob at the given key. Returns ErrNotFound if the blob does not exist.
	Delete(ctx context.Context, key string) error
	// Exists reports whether a blob exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)
}

// BlobMeta describes a stored blob.
type BlobMeta struct {
	Key           string    `json:"key"`
	ContentType   string    `json:"content_type"`
	ContentLength int64     `json:"content_length"`
	LastModified  time.Time `json:"last_modified"`
}

// BlobList is one page of List results. NextMarker is empty on the last page.
type BlobList struct {
	Blobs      []BlobMeta `json:"blobs"`
	NextMarker string     `json:"next_marker,omitempty"`
}

// BlobResult is an open blob stream with its headers.
type BlobResult struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// New creates the storage system selected by cfg.Backend.
// No I/O happens until Start is called.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "storage", "backend", cfg.Backend)

	switch cfg.Backend {
	case BackendAzure:
		return newAzure(cfg, logger)
	case BackendLocal, "":
		return newLocal(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
