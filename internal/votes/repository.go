package votes

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mwhitson/banter/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a vote repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "votes"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

const voteColumns = "id, caption_id, profile_id, vote_value, created_at, modified_at"

func (r *repo) Find(ctx context.Context, captionID uuid.UUID, profileID string) (*Vote, error) {
	q := fmt.Sprintf(`
		SELECT %s FROM caption_votes
		WHERE caption_id = $1 AND profile_id = $2`, voteColumns)

	v, err := repository.QueryOne(ctx, r.db, q, []any{captionID, profileID}, scanVote)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &v, nil
}

func (r *repo) Insert(
	ctx context.Context,
	captionID uuid.UUID,
	profileID string,
	value int,
	now time.Time,
) (*Vote, error) {
	if !ValidValue(value) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidValue, value)
	}

	q := fmt.Sprintf(`
		INSERT INTO caption_votes(id, caption_id, profile_id, vote_value, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING %s`, voteColumns)

	args := []any{uuid.New(), captionID, profileID, value, now.UTC()}

	v, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Vote, error) {
		return repository.QueryOne(ctx, tx, q, args, scanVote)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return &v, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, value int, now time.Time) (*Vote, error) {
	if !ValidValue(value) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidValue, value)
	}

	q := fmt.Sprintf(`
		UPDATE caption_votes
		SET vote_value = $2, modified_at = $3
		WHERE id = $1
		RETURNING %s`, voteColumns)

	v, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Vote, error) {
		return repository.QueryOne(ctx, tx, q, []any{id, value, now.UTC()}, scanVote)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return &v, nil
}

// Delete removes the vote row for (captionID, profileID). Deleting a row
// that does not exist is treated as success: the caller's intent is that
// no row remains.
func (r *repo) Delete(ctx context.Context, captionID uuid.UUID, profileID string) error {
	_, err := r.db.ExecContext(
		ctx,
		"DELETE FROM caption_votes WHERE caption_id = $1 AND profile_id = $2",
		captionID, profileID,
	)
	if err != nil {
		return fmt.Errorf("delete vote: %w", err)
	}

	return nil
}

func (r *repo) ListByProfile(ctx context.Context, profileID string) ([]Vote, error) {
	q := fmt.Sprintf(`
		SELECT %s FROM caption_votes
		WHERE profile_id = $1
		ORDER BY modified_at DESC`, voteColumns)

	result, err := repository.QueryMany(ctx, r.db, q, []any{profileID}, scanVote)
	if err != nil {
		return nil, fmt.Errorf("query profile votes: %w", err)
	}
	return result, nil
}

func (r *repo) TallyFor(ctx context.Context, captionID uuid.UUID) (*Tally, error) {
	tally := Tally{CaptionID: captionID}

	err := r.db.QueryRowContext(
		ctx,
		`SELECT
			count(*) FILTER (WHERE vote_value = 1),
			count(*) FILTER (WHERE vote_value = -1)
		 FROM caption_votes
		 WHERE caption_id = $1`,
		captionID,
	).Scan(&tally.Upvotes, &tally.Downvotes)
	if err != nil {
		return nil, fmt.Errorf("tally votes: %w", err)
	}

	return &tally, nil
}

func scanVote(s repository.Scanner) (Vote, error) {
	var v Vote
	err := s.Scan(
		&v.ID,
		&v.CaptionID,
		&v.ProfileID,
		&v.Value,
		&v.CreatedAt,
		&v.ModifiedAt,
	)
	return v, err
}
