// Command upload pushes a local image through the full ingestion pipeline
// against a running banter API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mwhitson/banter/internal/ingest"
	"github.com/mwhitson/banter/internal/pipeline"
)

var ingestEnv = &ingest.Env{
	BaseURL: "BANTER_INGEST_BASE_URL",
	Timeout: "BANTER_INGEST_TIMEOUT",
}

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
	".heic": "image/heic",
}

func main() {
	var (
		file  = flag.String("file", "", "Image file to upload")
		token = flag.String("token", os.Getenv("BANTER_TOKEN"), "Bearer token (defaults to BANTER_TOKEN)")
		api   = flag.String("api", "", "API base URL (overrides config)")
	)
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read file: %v", err)
	}

	cfg := ingest.Config{}
	if err := cfg.Finalize(ingestEnv); err != nil {
		log.Fatalf("config: %v", err)
	}
	if *api != "" {
		cfg.BaseURL = *api
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	tokens := ingest.StaticToken(*token)

	rt := &pipeline.Runtime{
		Client: ingest.NewClient(cfg, tokens, logger),
		Tokens: tokens,
		Logger: logger,
	}

	upload := pipeline.Upload{
		Filename:    filepath.Base(*file),
		ContentType: contentTypes[strings.ToLower(filepath.Ext(*file))],
		Data:        data,
	}

	result, err := pipeline.Run(context.Background(), rt, upload)
	if err != nil {
		if stage, ok := pipeline.FailedStage(err); ok {
			log.Fatalf("upload failed at stage %s: %v", stage, err)
		}
		log.Fatalf("upload failed: %v", err)
	}

	fmt.Printf("image: %s\nurl: %s\n", result.Image.ID, result.Image.URL)
	for _, caption := range result.Captions {
		fmt.Printf("caption: %s\n", caption.Content)
	}
}
