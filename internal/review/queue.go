// Package review implements the caption review engine for Banter.
// It builds shuffled queues of reviewable (image, caption) cards, tracks a
// per-card vote state machine with optimistic local updates, and reconciles
// those updates against the vote store on a best-effort basis.
package review

import (
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mwhitson/banter/internal/images"
)

// VoteState is the local vote held for one card. The zero value is Unvoted;
// the non-zero values match the stored vote_value for the card's caption.
type VoteState int

const (
	Unvoted   VoteState = 0
	Upvoted   VoteState = 1
	Downvoted VoteState = -1
)

func (s VoteState) String() string {
	switch s {
	case Upvoted:
		return "upvoted"
	case Downvoted:
		return "downvoted"
	default:
		return "unvoted"
	}
}

// Card is one reviewable (image, caption) pair in a queue.
// Cards are immutable once placed in a queue.
type Card struct {
	CaptionID uuid.UUID `json:"caption_id"`
	ImageID   uuid.UUID `json:"image_id"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url"`
}

// Queue is a fixed random permutation of the flattened, filtered card set.
// The ordering never changes for the lifetime of the queue; a new ordering
// requires building a new queue from changed source data.
type Queue struct {
	cards     []Card
	positions map[uuid.UUID]int
}

// Len returns the number of cards in the queue.
func (q *Queue) Len() int {
	return len(q.cards)
}

// Card returns the card at position i.
func (q *Queue) Card(i int) Card {
	return q.cards[i]
}

// Position returns the queue position of the given caption, if present.
func (q *Queue) Position(captionID uuid.UUID) (int, bool) {
	pos, ok := q.positions[captionID]
	return pos, ok
}

// BuildQueue flattens every (image, caption) pair into cards, dropping
// captions whose trimmed content is empty and any duplicate caption IDs,
// then applies a one-time Fisher-Yates shuffle. A nil rng uses the shared
// package source; tests pass a seeded rng for a deterministic permutation.
func BuildQueue(sources []images.ImageWithCaptions, rng *rand.Rand) *Queue {
	cards := flatten(sources)

	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})

	positions := make(map[uuid.UUID]int, len(cards))
	for i, card := range cards {
		positions[card.CaptionID] = i
	}

	return &Queue{
		cards:     cards,
		positions: positions,
	}
}

func flatten(sources []images.ImageWithCaptions) []Card {
	seen := make(map[uuid.UUID]struct{})
	cards := make([]Card, 0)

	for _, img := range sources {
		for _, caption := range img.Captions {
			content := strings.TrimSpace(caption.Content)
			if content == "" {
				continue
			}
			if _, dup := seen[caption.ID]; dup {
				continue
			}
			seen[caption.ID] = struct{}{}

			cards = append(cards, Card{
				CaptionID: caption.ID,
				ImageID:   img.ID,
				Content:   content,
				ImageURL:  img.URL,
			})
		}
	}

	return cards
}

// Builder caches the most recent queue keyed by a fingerprint of its source
// data. Rebuilding from unchanged sources returns the same queue, so the
// ordering (and with it every reviewer's position) survives unrelated
// re-reads of the feed.
type Builder struct {
	mu          sync.Mutex
	fingerprint uint64
	queue       *Queue
}

// Build returns the cached queue when sources are unchanged, otherwise
// builds and caches a freshly shuffled queue.
func (b *Builder) Build(sources []images.ImageWithCaptions) *Queue {
	fp := fingerprint(sources)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.queue != nil && b.fingerprint == fp {
		return b.queue
	}

	b.queue = BuildQueue(sources, nil)
	b.fingerprint = fp
	return b.queue
}

func fingerprint(sources []images.ImageWithCaptions) uint64 {
	h := fnv.New64a()
	for _, img := range sources {
		h.Write(img.ID[:])
		h.Write([]byte(img.URL))
		for _, caption := range img.Captions {
			h.Write(caption.ID[:])
			h.Write([]byte(caption.Content))
		}
	}
	return h.Sum64()
}
