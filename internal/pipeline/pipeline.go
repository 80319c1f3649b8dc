package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/mwhitson/banter/internal/images"
	"github.com/mwhitson/banter/internal/ingest"
)

// Run pushes one upload through the full pipeline. Validation and the
// credential check happen before any network call; after that the stages
// run strictly in order, and the first failure ends the run tagged with its
// stage. A blob already transferred when a later stage fails is left in
// place.
func Run(ctx context.Context, rt *Runtime, upload Upload) (*Result, error) {
	if err := validate(upload); err != nil {
		return nil, err
	}

	if _, err := rt.Tokens.Token(ctx); err != nil {
		return nil, stageErr(StageValidate, err)
	}

	run := &run{rt: rt}

	graph, err := buildGraph(run)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initialState := state.New(nil)
	initialState = initialState.Set(KeyUpload, upload)

	finalState, err := graph.Execute(ctx, initialState)
	if err != nil {
		if run.failure != nil {
			return nil, run.failure
		}
		return nil, err
	}

	return extractResult(finalState)
}

// run carries per-execution context for the graph nodes, chiefly the stage
// failure so it survives whatever wrapping graph execution applies.
type run struct {
	rt      *Runtime
	failure *StageError
}

func (r *run) fail(stage Stage, err error) error {
	r.failure = stageErr(stage, err)
	return r.failure
}

func validate(upload Upload) error {
	if len(upload.Data) == 0 {
		return stageErr(StageValidate, ErrEmptyUpload)
	}

	contentType := strings.ToLower(strings.TrimSpace(upload.ContentType))
	if _, ok := allowedTypes[contentType]; !ok {
		return stageErr(StageValidate, fmt.Errorf("%w: %q", ErrUnsupportedType, upload.ContentType))
	}

	return nil
}

func buildGraph(r *run) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("banter-ingest")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode("presign", presignNode(r)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("transfer", transferNode(r)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("register", registerNode(r)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("generate", generateNode(r)); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("presign", "transfer", nil); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("transfer", "register", nil); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("register", "generate", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("presign"); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint("generate"); err != nil {
		return nil, err
	}

	return graph, nil
}

// presignNode requests the upload grant for the file's content type.
func presignNode(r *run) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		upload, err := extractUpload(s)
		if err != nil {
			return s, r.fail(StagePresign, err)
		}

		grant, err := r.rt.Client.Presign(ctx, upload.ContentType)
		if err != nil {
			return s, r.fail(StagePresign, err)
		}

		r.rt.Logger.InfoContext(ctx, "upload grant acquired", "filename", upload.Filename)

		s = s.Set(KeyGrant, *grant)
		return s, nil
	})
}

// transferNode uploads the file bytes to the granted URL.
func transferNode(r *run) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		upload, err := extractUpload(s)
		if err != nil {
			return s, r.fail(StageTransfer, err)
		}

		grant, err := extractGrant(s)
		if err != nil {
			return s, r.fail(StageTransfer, err)
		}

		if err := r.rt.Client.Transfer(ctx, &grant, upload.ContentType, bytes.NewReader(upload.Data)); err != nil {
			return s, r.fail(StageTransfer, err)
		}

		r.rt.Logger.InfoContext(
			ctx, "blob transferred",
			"filename", upload.Filename,
			"bytes", len(upload.Data),
		)

		return s, nil
	})
}

// registerNode records the transferred blob as an image.
func registerNode(r *run) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		grant, err := extractGrant(s)
		if err != nil {
			return s, r.fail(StageRegister, err)
		}

		img, err := r.rt.Client.Register(ctx, grant.PublicURL)
		if err != nil {
			return s, r.fail(StageRegister, err)
		}

		r.rt.Logger.InfoContext(ctx, "image registered", "id", img.ID)

		s = s.Set(KeyImage, *img)
		return s, nil
	})
}

// generateNode asks the API to caption the registered image.
func generateNode(r *run) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		img, err := extractImage(s)
		if err != nil {
			return s, r.fail(StageGenerate, err)
		}

		captions, err := r.rt.Client.GenerateCaptions(ctx, img.ID)
		if err != nil {
			return s, r.fail(StageGenerate, err)
		}

		r.rt.Logger.InfoContext(
			ctx, "captions generated",
			"image", img.ID,
			"count", len(captions),
		)

		s = s.Set(KeyCaptions, captions)
		return s, nil
	})
}

func extractUpload(s state.State) (Upload, error) {
	val, ok := s.Get(KeyUpload)
	if !ok {
		return Upload{}, fmt.Errorf("missing %s in state", KeyUpload)
	}

	upload, ok := val.(Upload)
	if !ok {
		return Upload{}, fmt.Errorf("%s is not Upload", KeyUpload)
	}

	return upload, nil
}

func extractGrant(s state.State) (ingest.PresignGrant, error) {
	val, ok := s.Get(KeyGrant)
	if !ok {
		return ingest.PresignGrant{}, fmt.Errorf("missing %s in state", KeyGrant)
	}

	grant, ok := val.(ingest.PresignGrant)
	if !ok {
		return ingest.PresignGrant{}, fmt.Errorf("%s is not PresignGrant", KeyGrant)
	}

	return grant, nil
}

func extractImage(s state.State) (images.Image, error) {
	val, ok := s.Get(KeyImage)
	if !ok {
		return images.Image{}, fmt.Errorf("missing %s in state", KeyImage)
	}

	img, ok := val.(images.Image)
	if !ok {
		return images.Image{}, fmt.Errorf("%s is not Image", KeyImage)
	}

	return img, nil
}

func extractResult(s state.State) (*Result, error) {
	img, err := extractImage(s)
	if err != nil {
		return nil, err
	}

	grant, err := extractGrant(s)
	if err != nil {
		return nil, err
	}

	val, ok := s.Get(KeyCaptions)
	if !ok {
		return nil, fmt.Errorf("missing %s in final state", KeyCaptions)
	}

	captions, ok := val.([]images.Caption)
	if !ok {
		return nil, fmt.Errorf("%s is not []Caption", KeyCaptions)
	}

	return &Result{
		Image:    img,
		Captions: captions,
		Grant:    grant,
	}, nil
}
