package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/codeGROOVE-dev/retry"

	"github.com/JaimeStill/actigraphy/pkg/lifecycle"
)

type azure struct {
	client       *azblob.Client
	container    string
	initAttempts uint
	logger       *slog.Logger
}

func newAzure(cfg *Config, logger *slog.Logger) (*azure, error) {
	client, err := newAzureClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:       client,
		container:    cfg.ContainerName,
		initAttempts: uint(max(cfg.InitAttempts, 1)),
		logger:       logger,
	}, nil
}

func newAzureClient(cfg *Config) (*azblob.Client, error) {
	if cfg.ConnectionString != "" {
		return azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}
	return azblob.NewClient(cfg.ServiceURL, cred, nil)
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting storage system")

	lc.OnStartup(func() {
		err := retry.Do(
			func() error {
				_, err := a.client.CreateContainer(lc.Context(), a.container, nil)
				if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
					return err
				}
				return nil
			},
			retry.Context(lc.Context()),
			retry.Attempts(a.initAttempts),
			retry.DelayType(retry.FullJitterBackoffDelay),
			retry.OnRetry(func(n uint, err error) {
				a.logger.Warn("retrying storage container initialization", "attempt", n+1, "error", err)
			}),
		)
		if err != nil {
			a.logger.Error("storage container initialization failed", "error", err)
			lc.Fail("storage", err)
			return
		}

		a.logger.Info("storage container ready", "container", a.container)
	})

	return nil
}

func (a *azure) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: to.Ptr(contentType),
		},
	}

	if _, err := a.client.UploadStream(ctx, a.container, key, reader, opts); err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}

	return nil
}

func (a *azure) Download(ctx context.Context, key string) (*BlobResult, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	resp, err := a.client.DownloadStream(ctx, a.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download blob %s: %w", key, err)
	}

	return &BlobResult{
		Body:          resp.Body,
		ContentType:   deref(resp.ContentType),
		ContentLength: deref(resp.ContentLength),
	}, nil
}

func (a *azure) Find(ctx context.Context, key string) (*BlobMeta, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	props, err := a.blobClient(key).GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find blob %s: %w", key, err)
	}

	return &BlobMeta{
		Key:           key,
		ContentType:   deref(props.ContentType),
		ContentLength: deref(props.ContentLength),
		LastModified:  deref(props.LastModified),
	}, nil
}

func (a *azure) List(ctx context.Context, prefix, marker string, maxResults int32) (*BlobList, error) {
	opts := &azblob.ListBlobsFlatOptions{
		MaxResults: to.Ptr(min(maxResults, MaxListCap)),
	}
	if prefix != "" {
		opts.Prefix = to.Ptr(prefix)
	}
	if marker != "" {
		opts.Marker = to.Ptr(marker)
	}

	pager := a.client.NewListBlobsFlatPager(a.container, opts)
	page, err := pager.NextPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blobs %s: %w", prefix, err)
	}

	result := &BlobList{
		Blobs:      make([]BlobMeta, 0),
		NextMarker: deref(page.NextMarker),
	}

	if page.Segment == nil {
		return result, nil
	}

	for _, item := range page.Segment.BlobItems {
		meta := BlobMeta{Key: deref(item.Name)}
		if p := item.Properties; p != nil {
			meta.ContentType = deref(p.ContentType)
			meta.ContentLength = deref(p.ContentLength)
			meta.LastModified = deref(p.LastModified)
		}
		result.Blobs = append(result.Blobs, meta)
	}

	return result, nil
}

func (a *azure) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	if _, err := a.client.DeleteBlob(ctx, a.container, key, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete blob %s: %w", key, err)
	}

	return nil
}

func (a *azure) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	if _, err := a.blobClient(key).GetProperties(ctx, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check blob existence %s: %w", key, err)
	}

	return true, nil
}

func (a *azure) blobClient(key string) *blob.Client {
	return a.client.
		ServiceClient().
		NewContainerClient(a.container).
		NewBlobClient(key)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
