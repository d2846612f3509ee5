package repository

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/mediatracker/mediatracker-go/internal/model"
)

func TestBuildListQuery(t *testing.T) {
	tests := []struct {
		name         string
		filter       model.MediaFilter
		wantClauses  []string
		wantArgCount int
	}{
		{
			name:         "owner only",
			filter:       model.MediaFilter{},
			wantArgCount: 1,
		},
		{
			name:         "status",
			filter:       model.MediaFilter{Status: model.StatusSeen},
			wantClauses:  []string{"AND status = ?"},
			wantArgCount: 2,
		},
		{
			name:         "known media type",
			filter:       model.MediaFilter{MediaType: "tv"},
			wantClauses:  []string{"AND media_type_id = ?"},
			wantArgCount: 2,
		},
		{
			name:         "unknown media type is ignored",
			filter:       model.MediaFilter{MediaType: "podcast"},
			wantArgCount: 1,
		},
		{
			name:         "search",
			filter:       model.MediaFilter{Search: "Dune"},
			wantClauses:  []string{"LOWER(title) LIKE ?", "LOWER(original_title) LIKE ?"},
			wantArgCount: 3,
		},
		{
			name:         "all filters",
			filter:       model.MediaFilter{Status: model.StatusWatchlist, MediaType: "games", Search: "zelda"},
			wantClauses:  []string{"status = ?", "media_type_id = ?", "LIKE ?"},
			wantArgCount: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildListQuery("user-1", tt.filter)

			if !strings.HasPrefix(query, "SELECT "+mediaColumns+" FROM media_items WHERE user_id = ?") {
				t.Errorf("query does not start with owner scope: %s", query)
			}
			if !strings.HasSuffix(query, "ORDER BY created_at DESC, id") {
				t.Errorf("query missing ordering: %s", query)
			}
			for _, clause := range tt.wantClauses {
				if !strings.Contains(query, clause) {
					t.Errorf("query missing %q: %s", clause, query)
				}
			}
			if len(args) != tt.wantArgCount {
				t.Errorf("len(args) = %d, want %d", len(args), tt.wantArgCount)
			}
			if args[0] != "user-1" {
				t.Errorf("args[0] = %v, want owner id", args[0])
			}
			if strings.Count(query, "?") != len(args) {
				t.Errorf("placeholder count %d does not match %d args", strings.Count(query, "?"), len(args))
			}
		})
	}
}

func TestBuildListQuerySearchPattern(t *testing.T) {
	_, args := buildListQuery("user-1", model.MediaFilter{Search: "  100% Fun_! "})

	want := "%100!% fun!_!!%"
	if args[1] != want || args[2] != want {
		t.Errorf("search args = %v, %v; want %q", args[1], args[2], want)
	}
}

func TestBuildListQueryMediaTypeArg(t *testing.T) {
	_, args := buildListQuery("user-1", model.MediaFilter{MediaType: "Series"})
	if args[1] != int(model.CategorySeries) {
		t.Errorf("media type arg = %v, want %d", args[1], model.CategorySeries)
	}
}

func TestBuildUpdate(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("empty patch only stamps updated_at", func(t *testing.T) {
		sets, args := buildUpdate(model.MediaPatch{}, now)
		if len(sets) != 1 || sets[0] != "updated_at = ?" {
			t.Fatalf("sets = %v, want [updated_at = ?]", sets)
		}
		if args[0] != now {
			t.Errorf("args[0] = %v, want %v", args[0], now)
		}
	})

	t.Run("nullable fields cleared", func(t *testing.T) {
		patch := model.MediaPatch{
			Rating:    model.Null[model.Rating](),
			Reason:    model.Null[string](),
			PosterURL: model.Null[string](),
		}
		sets, args := buildUpdate(patch, now)

		want := []string{"rating = ?", "reason = ?", "poster_url = ?", "updated_at = ?"}
		if strings.Join(sets, ",") != strings.Join(want, ",") {
			t.Fatalf("sets = %v, want %v", sets, want)
		}
		for i := 0; i < 3; i++ {
			ns, ok := args[i].(sql.NullString)
			if !ok {
				t.Fatalf("args[%d] = %T, want sql.NullString", i, args[i])
			}
			if ns.Valid {
				t.Errorf("args[%d] = %v, want NULL", i, ns)
			}
		}
	})

	t.Run("all fields", func(t *testing.T) {
		patch := model.MediaPatch{
			Title:     model.Some("Dune"),
			MediaType: model.Some("games"),
			Status:    model.Some(model.StatusSeen),
			Rating:    model.Some(model.RatingLoved),
			Reason:    model.Some("great"),
			PosterURL: model.Some("https://img.example/dune.jpg"),
		}
		sets, args := buildUpdate(patch, now)
		if len(sets) != 7 || len(args) != 7 {
			t.Fatalf("got %d sets and %d args, want 7", len(sets), len(args))
		}
		if args[0] != "Dune" {
			t.Errorf("title arg = %v", args[0])
		}
		if args[1] != int(model.CategoryGame) {
			t.Errorf("media_type_id arg = %v, want %d", args[1], model.CategoryGame)
		}
		if args[2] != "seen" {
			t.Errorf("status arg = %v", args[2])
		}
	})
}

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"dune": "dune",
		"50%":  "50!%",
		"a_b":  "a!_b",
		"wow!": "wow!!",
		"!%_":  "!!!%!_",
		"":     "",
	}
	for in, want := range tests {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}
