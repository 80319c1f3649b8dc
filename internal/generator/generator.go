// Package generator produces candidate captions for stored images using a
// vision model.
package generator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"golang.org/x/sync/errgroup"

	"github.com/mwhitson/banter/pkg/formatting"
	"github.com/mwhitson/banter/pkg/storage"
)

// System generates captions for an image addressed by its public URL.
type System interface {
	Generate(ctx context.Context, imageURL string) ([]string, error)
}

type captionResponse struct {
	Captions []string `json:"captions"`
}

type generator struct {
	agent   gaconfig.AgentConfig
	storage storage.System
	logger  *slog.Logger
	config  Config
}

func New(config Config, agentConfig gaconfig.AgentConfig, store storage.System, logger *slog.Logger) System {
	return &generator{
		agent:   agentConfig,
		storage: store,
		logger:  logger.With("system", "generator"),
		config:  config,
	}
}

// Generate downloads the image from blob storage, sends it to the vision
// model, and returns the parsed captions. Multiple model calls run in
// parallel when the requested caption count exceeds what a single call
// asks for.
func (g *generator) Generate(ctx context.Context, imageURL string) ([]string, error) {
	dataURI, err := g.encodeImage(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	a, err := agent.New(&g.agent)
	if err != nil {
		return nil, fmt.Errorf("%w: create agent: %w", ErrGenerateFailed, err)
	}

	batches := batchSizes(g.config.CaptionCount, g.config.PerRequest)
	results := make([][]string, len(batches))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.config.Concurrency)

	for i, size := range batches {
		eg.Go(func() error {
			captions, err := g.request(gctx, a, dataURI, size)
			if err != nil {
				return err
			}
			results[i] = captions
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	captions := collect(results, g.config.CaptionCount)
	if len(captions) == 0 {
		return nil, ErrNoCaptions
	}

	g.logger.InfoContext(ctx, "captions generated", "image", imageURL, "count", len(captions))
	return captions, nil
}

func (g *generator) request(ctx context.Context, a agent.Agent, dataURI string, count int) ([]string, error) {
	prompt := fmt.Sprintf(g.config.Prompt, count)

	resp, err := a.Vision(ctx, prompt, []string{dataURI})
	if err != nil {
		return nil, fmt.Errorf("%w: vision call: %w", ErrGenerateFailed, err)
	}

	parsed, err := formatting.Parse[captionResponse](resp.Content())
	if err != nil {
		return nil, fmt.Errorf("%w: parse response: %w", ErrGenerateFailed, err)
	}

	return parsed.Captions, nil
}

func (g *generator) encodeImage(ctx context.Context, imageURL string) (string, error) {
	key, err := g.storage.KeyFromPublicURL(imageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrImageNotFound, err)
	}

	blob, err := g.storage.Download(ctx, key)
	if err != nil {
		return "", fmt.Errorf("%w: download blob: %w", ErrImageNotFound, err)
	}
	defer blob.Close()

	data, err := io.ReadAll(blob)
	if err != nil {
		return "", fmt.Errorf("%w: read blob: %w", ErrGenerateFailed, err)
	}

	return EncodeDataURI(data, contentTypeForKey(key)), nil
}

// batchSizes splits a caption count into per-call requests of at most
// perRequest captions each.
func batchSizes(total, perRequest int) []int {
	if perRequest <= 0 || perRequest >= total {
		return []int{total}
	}

	var sizes []int
	for remaining := total; remaining > 0; remaining -= perRequest {
		sizes = append(sizes, min(perRequest, remaining))
	}
	return sizes
}

func collect(results [][]string, limit int) []string {
	seen := make(map[string]struct{})
	captions := make([]string, 0, limit)

	for _, batch := range results {
		for _, caption := range batch {
			caption = strings.TrimSpace(caption)
			if caption == "" {
				continue
			}
			if _, dup := seen[strings.ToLower(caption)]; dup {
				continue
			}
			seen[strings.ToLower(caption)] = struct{}{}

			captions = append(captions, caption)
			if len(captions) == limit {
				return captions
			}
		}
	}

	return captions
}
