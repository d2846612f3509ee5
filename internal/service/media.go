package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mediatracker/mediatracker-go/internal/model"
	"github.com/mediatracker/mediatracker-go/internal/repository"
)

// MediaStore persists media records.
type MediaStore interface {
	Create(ctx context.Context, rec *model.MediaRecord) error
	GetByID(ctx context.Context, id string) (model.MediaRecord, error)
	List(ctx context.Context, ownerID string, filter model.MediaFilter) ([]model.MediaRecord, error)
	Update(ctx context.Context, id, ownerID string, patch model.MediaPatch, updatedAt time.Time) error
	Delete(ctx context.Context, id, ownerID string) (bool, error)
}

// MediaService handles media record business logic.
type MediaService struct {
	store MediaStore
	now   func() time.Time
	newID func() string
}

// NewMediaService creates a new MediaService.
func NewMediaService(store MediaStore) *MediaService {
	return &MediaService{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Create validates the request and stores a new record owned by ownerID.
func (s *MediaService) Create(ctx context.Context, ownerID string, req model.CreateMediaRequest) (model.MediaRecord, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return model.MediaRecord{}, ErrTitleRequired
	}

	status := req.Status
	if status == "" {
		status = model.StatusWatchlist
	}
	if !status.Valid() {
		return model.MediaRecord{}, ErrInvalidStatus
	}

	var rating *model.Rating
	if req.Rating != "" {
		if !req.Rating.Valid() {
			return model.MediaRecord{}, ErrInvalidRating
		}
		r := req.Rating
		rating = &r
	}

	category := model.NormalizeCategory(req.MediaType)
	now := s.now().UTC()
	rec := model.MediaRecord{
		ID:            s.newID(),
		UserID:        ownerID,
		Category:      category,
		MediaType:     category.String(),
		Title:         title,
		OriginalTitle: optionalString(req.OriginalTitle),
		Description:   optionalString(req.Description),
		Status:        status,
		Rating:        rating,
		Reason:        optionalString(req.Reason),
		PosterURL:     optionalString(req.PosterURL),
		Metadata:      normalizeMetadata(req.Metadata),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Create(ctx, &rec); err != nil {
		return model.MediaRecord{}, storeError(err)
	}
	return rec, nil
}

// List returns the owner's records matching filter, newest first.
func (s *MediaService) List(ctx context.Context, ownerID string, filter model.MediaFilter) ([]model.MediaRecord, error) {
	items, err := s.store.List(ctx, ownerID, filter)
	if err != nil {
		return nil, storeError(err)
	}
	if items == nil {
		items = []model.MediaRecord{}
	}
	return items, nil
}

// GetByID returns a record by ID without checking its owner.
func (s *MediaService) GetByID(ctx context.Context, id string) (model.MediaRecord, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMediaNotFound) {
			return model.MediaRecord{}, ErrMediaNotFound
		}
		return model.MediaRecord{}, storeError(err)
	}
	return rec, nil
}

// Update applies a partial update to a record owned by ownerID and returns the stored result.
// An empty patch returns the current record untouched.
func (s *MediaService) Update(ctx context.Context, id, ownerID string, patch model.MediaPatch) (model.MediaRecord, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return model.MediaRecord{}, err
	}
	if current.UserID != ownerID {
		return model.MediaRecord{}, ErrNotOwner
	}
	if patch.Empty() {
		return current, nil
	}

	patch, err = normalizePatch(patch)
	if err != nil {
		return model.MediaRecord{}, err
	}

	if err := s.store.Update(ctx, id, ownerID, patch, s.now().UTC()); err != nil {
		return model.MediaRecord{}, storeError(err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes a record owned by ownerID. It reports false when no such record exists
// for that owner; a missing record and another user's record look the same.
func (s *MediaService) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	deleted, err := s.store.Delete(ctx, id, ownerID)
	if err != nil {
		return false, storeError(err)
	}
	return deleted, nil
}

// normalizePatch validates patch and turns empty strings on nullable fields into nulls.
func normalizePatch(patch model.MediaPatch) (model.MediaPatch, error) {
	if patch.Title.Set {
		patch.Title.Value = strings.TrimSpace(patch.Title.Value)
		if patch.Title.Null || patch.Title.Value == "" {
			return patch, ErrTitleRequired
		}
	}
	if patch.Status.Set && (patch.Status.Null || !patch.Status.Value.Valid()) {
		return patch, ErrInvalidStatus
	}
	if patch.Rating.Set && !patch.Rating.Null {
		if patch.Rating.Value == "" {
			patch.Rating = model.Null[model.Rating]()
		} else if !patch.Rating.Value.Valid() {
			return patch, ErrInvalidRating
		}
	}
	if patch.Reason.Set && !patch.Reason.Null && patch.Reason.Value == "" {
		patch.Reason = model.Null[string]()
	}
	if patch.PosterURL.Set && !patch.PosterURL.Null && patch.PosterURL.Value == "" {
		patch.PosterURL = model.Null[string]()
	}
	return patch, nil
}

func optionalString(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

func normalizeMetadata(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return trimmed
}
