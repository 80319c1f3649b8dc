// Package ingest provides a typed client for the image ingestion API. Each
// method covers one remote call of the upload pipeline; sequencing and
// failure policy live in the pipeline package.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mwhitson/banter/internal/images"
)

// PresignGrant is a short-lived permission to upload one blob.
type PresignGrant struct {
	UploadURL string `json:"presignedUrl"`
	PublicURL string `json:"cdnUrl"`
}

// Client calls the ingestion endpoints of a banter API instance.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
	logger *slog.Logger
}

func NewClient(config Config, tokens TokenSource, logger *slog.Logger) *Client {
	return &Client{
		base:   strings.TrimRight(config.BaseURL, "/"),
		http:   &http.Client{Timeout: config.TimeoutDuration()},
		tokens: tokens,
		logger: logger.With("system", "ingest"),
	}
}

// Presign requests an upload grant for a blob of the given content type.
func (c *Client) Presign(ctx context.Context, contentType string) (*PresignGrant, error) {
	var grant PresignGrant
	err := c.postJSON(ctx, "presign", "/pipeline/generate-presigned-url",
		map[string]string{"fileType": contentType}, &grant)
	if err != nil {
		return nil, err
	}
	if grant.UploadURL == "" || grant.PublicURL == "" {
		return nil, &TransportError{Op: "presign", Err: fmt.Errorf("incomplete grant")}
	}
	return &grant, nil
}

// Transfer uploads the blob bytes to the granted URL. The grant already
// carries its authorization; no bearer token is attached.
func (c *Client) Transfer(ctx context.Context, grant *PresignGrant, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, grant.UploadURL, body)
	if err != nil {
		return &TransportError{Op: "transfer", Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-ms-blob-type", "BlockBlob")

	res, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: "transfer", Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return transportStatusError("transfer", res)
	}
	return nil
}

// Register records the uploaded blob as an image owned by the caller.
func (c *Client) Register(ctx context.Context, publicURL string) (*images.Image, error) {
	var img images.Image
	err := c.postJSON(ctx, "register", "/pipeline/upload-image-from-url",
		map[string]string{"imageUrl": publicURL}, &img)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// GenerateCaptions asks the API to caption the registered image.
func (c *Client) GenerateCaptions(ctx context.Context, imageID uuid.UUID) ([]images.Caption, error) {
	var captions []images.Caption
	err := c.postJSON(ctx, "generate", "/pipeline/generate-captions",
		map[string]string{"imageId": imageID.String()}, &captions)
	if err != nil {
		return nil, err
	}
	return captions, nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, payload, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("failed to resolve credential: %w", err)}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return transportStatusError(op, res)
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return &TransportError{Op: op, Status: res.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
		}
	}
	return nil
}

func transportStatusError(op string, res *http.Response) *TransportError {
	excerpt, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return &TransportError{
		Op:     op,
		Status: res.StatusCode,
		Body:   strings.TrimSpace(string(excerpt)),
		Err:    fmt.Errorf("unexpected status %d", res.StatusCode),
	}
}
