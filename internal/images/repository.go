package images

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/mwhitson/banter/pkg/pagination"
	"github.com/mwhitson/banter/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an image repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "images"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

const imageColumns = "id, url, is_public, is_common_use, uploaded_by, created_at, updated_at"

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
) (*pagination.PageResult[Image], error) {
	page.Normalize(r.pagination)

	var total int
	if err := r.db.QueryRowContext(
		ctx,
		"SELECT count(*) FROM images",
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("count images: %w", err)
	}

	q := fmt.Sprintf(`
		SELECT %s FROM images
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, imageColumns)

	imgs, err := repository.QueryMany(
		ctx, r.db, q,
		[]any{page.PageSize, page.Offset()},
		scanImage,
	)
	if err != nil {
		return nil, fmt.Errorf("query images: %w", err)
	}

	result := pagination.NewPageResult(imgs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) ListPublicWithCaptions(ctx context.Context, limit int) ([]ImageWithCaptions, error) {
	q := fmt.Sprintf(`
		SELECT %s FROM images
		WHERE is_public
		ORDER BY created_at DESC
		LIMIT $1`, imageColumns)

	imgs, err := repository.QueryMany(ctx, r.db, q, []any{limit}, scanImage)
	if err != nil {
		return nil, fmt.Errorf("query public images: %w", err)
	}

	if len(imgs) == 0 {
		return []ImageWithCaptions{}, nil
	}

	ids := make([]uuid.UUID, len(imgs))
	for i, img := range imgs {
		ids[i] = img.ID
	}

	captions, err := repository.QueryMany(
		ctx, r.db,
		`SELECT id, image_id, content, source, created_at
		 FROM captions
		 WHERE image_id = ANY($1)
		 ORDER BY created_at`,
		[]any{ids},
		scanCaption,
	)
	if err != nil {
		return nil, fmt.Errorf("query captions: %w", err)
	}

	byImage := make(map[uuid.UUID][]Caption, len(imgs))
	for _, c := range captions {
		byImage[c.ImageID] = append(byImage[c.ImageID], c)
	}

	result := make([]ImageWithCaptions, 0, len(imgs))
	for _, img := range imgs {
		if len(byImage[img.ID]) == 0 {
			continue
		}
		result = append(result, ImageWithCaptions{
			Image:    img,
			Captions: byImage[img.ID],
		})
	}

	return result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Image, error) {
	q := fmt.Sprintf("SELECT %s FROM images WHERE id = $1", imageColumns)

	img, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanImage)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &img, nil
}

func (r *repo) Register(ctx context.Context, cmd RegisterCommand) (*Image, error) {
	if err := validateImageURL(cmd.URL); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		INSERT INTO images(id, url, is_public, is_common_use, uploaded_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s`, imageColumns)

	args := []any{uuid.New(), cmd.URL, true, cmd.IsCommonUse, cmd.UploadedBy}

	img, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Image, error) {
		return repository.QueryOne(ctx, tx, q, args, scanImage)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("image registered", "id", img.ID, "uploaded_by", img.UploadedBy)
	return &img, nil
}

func (r *repo) AttachCaptions(
	ctx context.Context,
	imageID uuid.UUID,
	contents []string,
	source string,
) ([]Caption, error) {
	trimmed := make([]string, 0, len(contents))
	for _, content := range contents {
		if c := strings.TrimSpace(content); c != "" {
			trimmed = append(trimmed, c)
		}
	}

	if len(trimmed) == 0 {
		return nil, ErrNoCaptions
	}

	if _, err := r.Find(ctx, imageID); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO captions(id, image_id, content, source)
		VALUES ($1, $2, $3, $4)
		RETURNING id, image_id, content, source, created_at`

	captions, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) ([]Caption, error) {
		out := make([]Caption, 0, len(trimmed))
		for _, content := range trimmed {
			c, err := repository.QueryOne(
				ctx, tx, q,
				[]any{uuid.New(), imageID, content, source},
				scanCaption,
			)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("captions attached", "image_id", imageID, "count", len(captions))
	return captions, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM images WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("image deleted", "id", id)
	return nil
}

func validateImageURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return nil
}

func scanImage(s repository.Scanner) (Image, error) {
	var img Image
	err := s.Scan(
		&img.ID,
		&img.URL,
		&img.IsPublic,
		&img.IsCommonUse,
		&img.UploadedBy,
		&img.CreatedAt,
		&img.UpdatedAt,
	)
	return img, err
}

func scanCaption(s repository.Scanner) (Caption, error) {
	var c Caption
	err := s.Scan(
		&c.ID,
		&c.ImageID,
		&c.Content,
		&c.Source,
		&c.CreatedAt,
	)
	return c, err
}
