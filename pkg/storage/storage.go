// Package storage provides blob storage operations with an Azure Blob Storage
// implementation, including presigned upload URL issuance for direct client transfers.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"github.com/google/uuid"

	"github.com/mwhitson/banter/pkg/lifecycle"
)

// PresignedUpload carries a time-limited upload target and the public URL
// the uploaded blob will be served from.
type PresignedUpload struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"presignedUrl"`
	PublicURL string    `json:"cdnUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that initializes the storage container.
	Start(lc *lifecycle.Coordinator) error
	// Presign issues a SAS upload URL for a new blob of the given content type.
	// The blob key is generated from a random UUID and the content type extension.
	Presign(ctx context.Context, contentType string) (*PresignedUpload, error)
	// Upload streams data to a blob at the given key with the specified content type.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	// Download returns a stream for the blob at the given key. The caller must close the reader.
	// Returns ErrNotFound if the blob does not exist.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the blob at the given key. Returns ErrNotFound if the blob does not exist.
	Delete(ctx context.Context, key string) error
	// Exists reports whether a blob exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)
	// PublicURL returns the public (CDN) URL for the given key.
	PublicURL(key string) string
	// KeyFromPublicURL resolves a public URL back to its blob key.
	// Returns ErrForeignURL when the URL is not rooted at the public base.
	KeyFromPublicURL(publicURL string) (string, error)
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/heic": ".heic",
}

type azure struct {
	client    *azblob.Client
	shared    *azblob.SharedKeyCredential
	endpoint  string
	container string
	publicURL string
	uploadTTL time.Duration
	keyPrefix string
	logger    *slog.Logger
}

// New creates a storage system from the given configuration.
// It validates the connection string and creates the Azure client
// but does not establish a connection until Start is called.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	account, err := ParseConnectionString(cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	shared, err := azblob.NewSharedKeyCredential(account.Name, account.Key)
	if err != nil {
		return nil, fmt.Errorf("create shared key credential: %w", err)
	}

	publicURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if publicURL == "" {
		publicURL = fmt.Sprintf("%s/%s", account.BlobEndpoint, cfg.ContainerName)
	}

	return &azure{
		client:    client,
		shared:    shared,
		endpoint:  account.BlobEndpoint,
		container: cfg.ContainerName,
		publicURL: publicURL,
		uploadTTL: cfg.UploadTTLDuration(),
		keyPrefix: cfg.KeyPrefix,
		logger:    logger.With("system", "storage"),
	}, nil
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting storage system")

	lc.OnStartup(func() {
		_, err := a.client.CreateContainer(lc.Context(), a.container, nil)
		if err != nil {
			if !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
				a.logger.Error("storage container initialization failed", "error", err)
				return
			}
		}

		a.logger.Info("storage container ready", "container", a.container)
	})

	return nil
}

func (a *azure) Presign(ctx context.Context, contentType string) (*PresignedUpload, error) {
	ext, ok := extensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}

	key := fmt.Sprintf("%s/%s%s", a.keyPrefix, uuid.New(), ext)
	now := time.Now().UTC()
	expiry := now.Add(a.uploadTTL)

	values := sas.BlobSignatureValues{
		Protocol:      sas.ProtocolHTTPS,
		StartTime:     now.Add(-5 * time.Minute),
		ExpiryTime:    expiry,
		Permissions:   (&sas.BlobPermissions{Create: true, Write: true}).String(),
		ContainerName: a.container,
		BlobName:      key,
	}

	params, err := values.SignWithSharedKey(a.shared)
	if err != nil {
		return nil, fmt.Errorf("sign upload url for %s: %w", key, err)
	}

	return &PresignedUpload{
		Key:       key,
		UploadURL: fmt.Sprintf("%s/%s/%s?%s", a.endpoint, a.container, key, params.Encode()),
		PublicURL: a.PublicURL(key),
		ExpiresAt: expiry,
	}, nil
}

func (a *azure) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}

	_, err := a.client.UploadStream(ctx, a.container, key, reader, opts)
	if err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}

	return nil
}

func (a *azure) Download(ctx context.Context, key string) (io.ReadCloser, error) {
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

	return resp.Body, nil
}

func (a *azure) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	_, err := a.client.DeleteBlob(ctx, a.container, key, nil)
	if err != nil {
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

	blobClient := a.client.
		ServiceClient().
		NewContainerClient(a.container).
		NewBlobClient(key)

	_, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check blob existence %s: %w", key, err)
	}

	return true, nil
}

func (a *azure) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s", a.publicURL, key)
}

func (a *azure) KeyFromPublicURL(publicURL string) (string, error) {
	base := a.publicURL + "/"
	if !strings.HasPrefix(publicURL, base) {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, publicURL)
	}

	key := strings.TrimPrefix(publicURL, base)
	if err := validateKey(key); err != nil {
		return "", err
	}
	return key, nil
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
