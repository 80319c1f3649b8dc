package formatting_test

import (
	"errors"
	"testing"

	"github.com/mwhitson/banter/pkg/formatting"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name      string
		n         int64
		precision int
		want      string
	}{
		{"zero", 0, 1, "0 B"},
		{"bytes", 512, 0, "512 B"},
		{"kilobytes", 2048, 1, "2.0 KB"},
		{"megabytes", 20 * 1024 * 1024, 0, "20 MB"},
		{"gigabytes with precision", 1536 * 1024 * 1024, 1, "1.5 GB"},
		{"negative precision clamps", 2048, -3, "2 KB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatting.FormatBytes(tt.n, tt.precision); got != tt.want {
				t.Errorf("FormatBytes(%d, %d) = %q, want %q", tt.n, tt.precision, got, tt.want)
			}
		})
	}
}

func TestParseBytes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"bare number", "1024", 1024, false},
		{"megabytes", "20MB", 20 * 1024 * 1024, false},
		{"spaced unit", "5 KB", 5 * 1024, false},
		{"lowercase unit", "2gb", 2 * 1024 * 1024 * 1024, false},
		{"fractional", "1.5KB", 1536, false},
		{"surrounding whitespace", "  8MB  ", 8 * 1024 * 1024, false},
		{"empty", "", 0, true},
		{"unknown unit", "5XB", 0, true},
		{"not a number", "many MB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBytes(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

type captionPayload struct {
	Captions []string `json:"captions"`
}

func TestParse(t *testing.T) {
	t.Run("direct json", func(t *testing.T) {
		got, err := formatting.Parse[captionPayload](`{"captions":["one","two"]}`)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(got.Captions) != 2 || got.Captions[0] != "one" {
			t.Errorf("Parse() = %+v", got)
		}
	})

	t.Run("fenced json", func(t *testing.T) {
		content := "Here you go:\n```json\n{\"captions\":[\"fenced\"]}\n```\nEnjoy."
		got, err := formatting.Parse[captionPayload](content)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(got.Captions) != 1 || got.Captions[0] != "fenced" {
			t.Errorf("Parse() = %+v", got)
		}
	})

	t.Run("fence without language tag", func(t *testing.T) {
		content := "```\n{\"captions\":[\"plain\"]}\n```"
		got, err := formatting.Parse[captionPayload](content)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(got.Captions) != 1 || got.Captions[0] != "plain" {
			t.Errorf("Parse() = %+v", got)
		}
	})

	t.Run("unparseable content", func(t *testing.T) {
		_, err := formatting.Parse[captionPayload]("no json here")
		if !errors.Is(err, formatting.ErrParseFailed) {
			t.Errorf("Parse() error = %v, want ErrParseFailed", err)
		}
	})
}
