package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/JaimeStill/actigraphy/pkg/lifecycle"
)

// local stores blobs as files under root; keys are slash-separated relative paths.
// Content types are derived from the key extension.
type local struct {
	root   string
	logger *slog.Logger
}

func newLocal(cfg *Config, logger *slog.Logger) *local {
	return &local{
		root:   cfg.Root,
		logger: logger,
	}
}

func (l *local) Start(lc *lifecycle.Coordinator) error {
	l.logger.Info("starting storage system")

	lc.OnStartup(func() {
		if err := os.MkdirAll(l.root, 0o755); err != nil {
			l.logger.Error("storage root initialization failed", "error", err)
			lc.Fail("storage", err)
			return
		}

		l.logger.Info("storage root ready", "root", l.root)
	})

	return nil
}

func (l *local) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	target := l.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, contextReader{ctx, reader}); err != nil {
		tmp.Close()
		return fmt.Errorf("upload blob %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}

	return nil
}

func (l *local) Download(ctx context.Context, key string) (*BlobResult, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	f, err := os.Open(l.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download blob %s: %w", key, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("download blob %s: %w", key, err)
	}

	return &BlobResult{
		Body:          f,
		ContentType:   contentTypeOf(key),
		ContentLength: info.Size(),
	}, nil
}

func (l *local) Find(ctx context.Context, key string) (*BlobMeta, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	info, err := os.Stat(l.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find blob %s: %w", key, err)
	}
	if info.IsDir() {
		return nil, ErrNotFound
	}

	return l.meta(key, info), nil
}

func (l *local) List(ctx context.Context, prefix, marker string, maxResults int32) (*BlobList, error) {
	keys := make([]string, 0)
	metas := make(map[string]BlobMeta)

	err := filepath.WalkDir(l.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}

		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) || key <= marker {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		keys = append(keys, key)
		metas[key] = *l.meta(key, info)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list blobs %s: %w", prefix, err)
	}

	sort.Strings(keys)

	limit := int(min(max(maxResults, 1), MaxListCap))
	result := &BlobList{Blobs: make([]BlobMeta, 0, min(limit, len(keys)))}

	for i, key := range keys {
		if i == limit {
			result.NextMarker = keys[i-1]
			break
		}
		result.Blobs = append(result.Blobs, metas[key])
	}

	return result, nil
}

func (l *local) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	if err := os.Remove(l.path(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete blob %s: %w", key, err)
	}

	return nil
}

func (l *local) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	info, err := os.Stat(l.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("check blob existence %s: %w", key, err)
	}

	return !info.IsDir(), nil
}

func (l *local) path(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

func (l *local) meta(key string, info fs.FileInfo) *BlobMeta {
	return &BlobMeta{
		Key:           key,
		ContentType:   contentTypeOf(key),
		ContentLength: info.Size(),
		LastModified:  info.ModTime().UTC(),
	}
}

func contentTypeOf(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
