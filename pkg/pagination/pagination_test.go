package pagination_test

import (
	"net/url"
	"testing"

	"github.com/mwhitson/banter/pkg/pagination"
)

func testConfig(t *testing.T) pagination.Config {
	t.Helper()

	cfg := pagination.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("config finalize: %v", err)
	}
	return cfg
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		req          pagination.PageRequest
		wantPage     int
		wantPageSize int
	}{
		{"zero values pick defaults", pagination.PageRequest{}, 1, 20},
		{"negative page clamps to one", pagination.PageRequest{Page: -3, PageSize: 10}, 1, 10},
		{"oversized page size clamps to max", pagination.PageRequest{Page: 2, PageSize: 500}, 2, 100},
		{"valid request untouched", pagination.PageRequest{Page: 4, PageSize: 25}, 4, 25},
	}

	cfg := testConfig(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize(cfg)
			if tt.req.Page != tt.wantPage || tt.req.PageSize != tt.wantPageSize {
				t.Errorf("Normalize() = page %d size %d, want page %d size %d",
					tt.req.Page, tt.req.PageSize, tt.wantPage, tt.wantPageSize)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	req := pagination.PageRequest{Page: 3, PageSize: 25}
	if got := req.Offset(); got != 50 {
		t.Errorf("Offset() = %d, want 50", got)
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	cfg := testConfig(t)

	t.Run("parses query values", func(t *testing.T) {
		values := url.Values{"page": {"3"}, "page_size": {"15"}}
		req := pagination.PageRequestFromQuery(values, cfg)
		if req.Page != 3 || req.PageSize != 15 {
			t.Errorf("PageRequestFromQuery() = %+v", req)
		}
	})

	t.Run("garbage values normalize to defaults", func(t *testing.T) {
		values := url.Values{"page": {"abc"}, "page_size": {"-1"}}
		req := pagination.PageRequestFromQuery(values, cfg)
		if req.Page != 1 || req.PageSize != cfg.DefaultPageSize {
			t.Errorf("PageRequestFromQuery() = %+v", req)
		}
	})
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		pageSize  int
		wantPages int
	}{
		{"even division", 100, 20, 5},
		{"partial final page", 101, 20, 6},
		{"empty result", 0, 20, 0},
		{"zero page size", 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pagination.NewPageResult([]string{}, tt.total, 1, tt.pageSize)
			if result.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", result.TotalPages, tt.wantPages)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := pagination.Config{DefaultPageSize: 200, MaxPageSize: 100}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("Finalize() error = nil when default exceeds max")
	}
}
