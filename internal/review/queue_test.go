package review_test

import (
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"

	"github.com/mwhitson/banter/internal/images"
	"github.com/mwhitson/banter/internal/review"
)

func feedFixture() []images.ImageWithCaptions {
	imgA := images.Image{ID: uuid.New(), URL: "https://cdn.test/images/a.jpg"}
	imgB := images.Image{ID: uuid.New(), URL: "https://cdn.test/images/b.png"}

	return []images.ImageWithCaptions{
		{
			Image: imgA,
			Captions: []images.Caption{
				{ID: uuid.New(), ImageID: imgA.ID, Content: "first"},
				{ID: uuid.New(), ImageID: imgA.ID, Content: "second"},
			},
		},
		{
			Image: imgB,
			Captions: []images.Caption{
				{ID: uuid.New(), ImageID: imgB.ID, Content: "third"},
			},
		},
	}
}

func TestBuildQueue(t *testing.T) {
	t.Run("flattens every pair", func(t *testing.T) {
		q := review.BuildQueue(feedFixture(), rand.New(rand.NewPCG(1, 2)))

		if q.Len() != 3 {
			t.Fatalf("Len() = %d, want 3", q.Len())
		}
	})

	t.Run("drops blank captions", func(t *testing.T) {
		feed := feedFixture()
		feed[0].Captions = append(feed[0].Captions,
			images.Caption{ID: uuid.New(), Content: ""},
			images.Caption{ID: uuid.New(), Content: "   \t"},
		)

		q := review.BuildQueue(feed, rand.New(rand.NewPCG(1, 2)))

		if q.Len() != 3 {
			t.Errorf("Len() = %d, want 3", q.Len())
		}
	})

	t.Run("drops duplicate caption ids", func(t *testing.T) {
		feed := feedFixture()
		feed[1].Captions = append(feed[1].Captions, feed[0].Captions[0])

		q := review.BuildQueue(feed, rand.New(rand.NewPCG(1, 2)))

		if q.Len() != 3 {
			t.Errorf("Len() = %d, want 3", q.Len())
		}
	})

	t.Run("trims caption content", func(t *testing.T) {
		feed := feedFixture()
		feed[0].Captions[0].Content = "  padded  "

		q := review.BuildQueue(feed, rand.New(rand.NewPCG(1, 2)))

		found := false
		for i := 0; i < q.Len(); i++ {
			if q.Card(i).Content == "padded" {
				found = true
			}
		}
		if !found {
			t.Error("expected trimmed caption content in queue")
		}
	})

	t.Run("same seed yields same permutation", func(t *testing.T) {
		feed := feedFixture()

		a := review.BuildQueue(feed, rand.New(rand.NewPCG(7, 7)))
		b := review.BuildQueue(feed, rand.New(rand.NewPCG(7, 7)))

		for i := 0; i < a.Len(); i++ {
			if a.Card(i).CaptionID != b.Card(i).CaptionID {
				t.Fatalf("position %d differs between identically seeded builds", i)
			}
		}
	})

	t.Run("cards carry source image url", func(t *testing.T) {
		feed := feedFixture()
		q := review.BuildQueue(feed, rand.New(rand.NewPCG(1, 2)))

		for i := 0; i < q.Len(); i++ {
			card := q.Card(i)
			if card.ImageURL == "" {
				t.Errorf("card %d has empty image url", i)
			}
			if card.ImageID != feed[0].ID && card.ImageID != feed[1].ID {
				t.Errorf("card %d references unknown image %s", i, card.ImageID)
			}
		}
	})

	t.Run("position lookup", func(t *testing.T) {
		feed := feedFixture()
		q := review.BuildQueue(feed, rand.New(rand.NewPCG(1, 2)))

		for i := 0; i < q.Len(); i++ {
			pos, ok := q.Position(q.Card(i).CaptionID)
			if !ok || pos != i {
				t.Errorf("Position(%s) = %d, %v, want %d, true", q.Card(i).CaptionID, pos, ok, i)
			}
		}

		if _, ok := q.Position(uuid.New()); ok {
			t.Error("Position() = true for caption not in queue")
		}
	})
}

func TestBuilder(t *testing.T) {
	t.Run("unchanged sources reuse the queue", func(t *testing.T) {
		feed := feedFixture()
		var b review.Builder

		first := b.Build(feed)
		second := b.Build(feed)

		if first != second {
			t.Error("expected cached queue for unchanged sources")
		}
	})

	t.Run("changed sources rebuild", func(t *testing.T) {
		feed := feedFixture()
		var b review.Builder

		first := b.Build(feed)

		feed[0].Captions[0].Content = "different"
		second := b.Build(feed)

		if first == second {
			t.Error("expected rebuild after source change")
		}
	})

	t.Run("empty sources yield empty queue", func(t *testing.T) {
		var b review.Builder
		q := b.Build(nil)

		if q.Len() != 0 {
			t.Errorf("Len() = %d, want 0", q.Len())
		}
	})
}
