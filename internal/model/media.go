package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Category is the kind of media, stored as a small integer that references media_types.
type Category int

const (
	CategoryMovie  Category = 1
	CategorySeries Category = 2
	CategoryGame   Category = 3
)

var categoryLabels = map[string]Category{
	"movie":  CategoryMovie,
	"movies": CategoryMovie,
	"film":   CategoryMovie,
	"films":  CategoryMovie,
	"serie":  CategorySeries,
	"series": CategorySeries,
	"tv":     CategorySeries,
	"show":   CategorySeries,
	"shows":  CategorySeries,
	"game":   CategoryGame,
	"games":  CategoryGame,
}

// ParseCategory maps a free-form label to its category.
// The second return value is false for unrecognized labels.
func ParseCategory(label string) (Category, bool) {
	c, ok := categoryLabels[strings.ToLower(strings.TrimSpace(label))]
	return c, ok
}

// NormalizeCategory is ParseCategory with the movie category as fallback.
func NormalizeCategory(label string) Category {
	if c, ok := ParseCategory(label); ok {
		return c
	}
	return CategoryMovie
}

// String returns the canonical label.
func (c Category) String() string {
	switch c {
	case CategorySeries:
		return "series"
	case CategoryGame:
		return "game"
	default:
		return "movie"
	}
}

// Status is where a record sits in the user's tracking flow.
type Status string

const (
	StatusWatchlist Status = "watchlist"
	StatusSeen      Status = "seen"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusWatchlist || s == StatusSeen
}

// Rating is the user's verdict on a seen record.
type Rating string

const (
	RatingLoved    Rating = "loved"
	RatingLiked    Rating = "liked"
	RatingDisliked Rating = "disliked"
)

// Valid reports whether r is a known rating.
func (r Rating) Valid() bool {
	switch r {
	case RatingLoved, RatingLiked, RatingDisliked:
		return true
	}
	return false
}

// MediaRecord is one tracked movie, series or game owned by a user.
type MediaRecord struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Category      Category        `json:"media_type_id"`
	MediaType     string          `json:"media_type"`
	Title         string          `json:"title"`
	OriginalTitle *string         `json:"original_title"`
	Description   *string         `json:"description"`
	Status        Status          `json:"status"`
	Rating        *Rating         `json:"rating"`
	Reason        *string         `json:"reason"`
	PosterURL     *string         `json:"poster_url"`
	Metadata      json.RawMessage `json:"metadata"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CreateMediaRequest represents a media record creation request.
type CreateMediaRequest struct {
	Title         string          `json:"title"`
	MediaType     string          `json:"media_type"`
	OriginalTitle string          `json:"original_title"`
	Description   string          `json:"description"`
	Status        Status          `json:"status"`
	Rating        Rating          `json:"rating"`
	Reason        string          `json:"reason"`
	PosterURL     string          `json:"poster_url"`
	Metadata      json.RawMessage `json:"metadata"`
}

// MediaFilter narrows a listing. Zero values mean "no filter".
type MediaFilter struct {
	Status    Status
	MediaType string
	Search    string
}

// MediaPatch is a partial update. Only fields present in the request body are applied.
type MediaPatch struct {
	Title     Optional[string] `json:"title"`
	MediaType Optional[string] `json:"media_type"`
	Status    Optional[Status] `json:"status"`
	Rating    Optional[Rating] `json:"rating"`
	Reason    Optional[string] `json:"reason"`
	PosterURL Optional[string] `json:"poster_url"`
}

// Empty reports whether the patch changes nothing.
func (p MediaPatch) Empty() bool {
	return !p.Title.Set && !p.MediaType.Set && !p.Status.Set &&
		!p.Rating.Set && !p.Reason.Set && !p.PosterURL.Set
}

// MediaResponse wraps a record for create and update responses.
type MediaResponse struct {
	Message   string      `json:"message"`
	MediaItem MediaRecord `json:"mediaItem"`
}
