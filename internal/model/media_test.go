package model

import (
	"encoding/json"
	"testing"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		label  string
		want   Category
		wantOK bool
	}{
		{"movie", CategoryMovie, true},
		{"movies", CategoryMovie, true},
		{"  Movie ", CategoryMovie, true},
		{"film", CategoryMovie, true},
		{"serie", CategorySeries, true},
		{"series", CategorySeries, true},
		{"TV", CategorySeries, true},
		{"game", CategoryGame, true},
		{"games", CategoryGame, true},
		{"podcast", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := ParseCategory(tt.label)
			if ok != tt.wantOK {
				t.Fatalf("ParseCategory(%q) ok = %v, want %v", tt.label, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %d, want %d", tt.label, got, tt.want)
			}
		})
	}
}

func TestNormalizeCategoryFallsBackToMovie(t *testing.T) {
	if got := NormalizeCategory("podcast"); got != CategoryMovie {
		t.Errorf("NormalizeCategory(podcast) = %d, want %d", got, CategoryMovie)
	}
	if got := NormalizeCategory(""); got != CategoryMovie {
		t.Errorf("NormalizeCategory(\"\") = %d, want %d", got, CategoryMovie)
	}
}

func TestCategoryString(t *testing.T) {
	tests := map[Category]string{
		CategoryMovie:  "movie",
		CategorySeries: "series",
		CategoryGame:   "game",
		Category(42):   "movie",
	}
	for c, want := range tests {
		if got := c.String(); got != want {
			t.Errorf("Category(%d).String() = %q, want %q", c, got, want)
		}
	}
}

func TestStatusAndRatingValid(t *testing.T) {
	if !StatusWatchlist.Valid() || !StatusSeen.Valid() {
		t.Error("known statuses should be valid")
	}
	if Status("watching").Valid() {
		t.Error("unknown status should be invalid")
	}
	if !RatingLoved.Valid() || !RatingLiked.Valid() || !RatingDisliked.Valid() {
		t.Error("known ratings should be valid")
	}
	if Rating("5").Valid() {
		t.Error("unknown rating should be invalid")
	}
}

func TestMediaPatchUnmarshal(t *testing.T) {
	var patch MediaPatch
	if err := json.Unmarshal([]byte(`{"rating":"loved","reason":null}`), &patch); err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}

	if !patch.Rating.Set || patch.Rating.Null || patch.Rating.Value != RatingLoved {
		t.Errorf("rating = %+v, want set to loved", patch.Rating)
	}
	if !patch.Reason.Set || !patch.Reason.Null {
		t.Errorf("reason = %+v, want explicit null", patch.Reason)
	}
	if patch.Title.Set || patch.Status.Set || patch.PosterURL.Set || patch.MediaType.Set {
		t.Error("absent fields should not be marked as set")
	}
	if patch.Empty() {
		t.Error("patch with fields should not be empty")
	}
}

func TestMediaPatchEmpty(t *testing.T) {
	var patch MediaPatch
	if err := json.Unmarshal([]byte(`{}`), &patch); err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}
	if !patch.Empty() {
		t.Error("patch decoded from {} should be empty")
	}
}

func TestOptionalPtr(t *testing.T) {
	if Null[string]().Ptr() != nil {
		t.Error("Ptr() of null optional should be nil")
	}
	p := Some("x").Ptr()
	if p == nil || *p != "x" {
		t.Errorf("Ptr() = %v, want pointer to x", p)
	}
}

func TestLoginRequestIdentifier(t *testing.T) {
	if got := (LoginRequest{Username: "neo", Email: "neo@example.com"}).Identifier(); got != "neo" {
		t.Errorf("Identifier() = %q, want neo", got)
	}
	if got := (LoginRequest{Email: "neo@example.com"}).Identifier(); got != "neo@example.com" {
		t.Errorf("Identifier() = %q, want email fallback", got)
	}
}
