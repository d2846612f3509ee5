package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mediatracker/mediatracker-go/internal/model"
)

var ErrMediaNotFound = errors.New("media item not found")

const mediaColumns = `id, user_id, media_type_id, title, original_title, description, status, rating, reason, poster_url, metadata, created_at, updated_at`

type mediaRow struct {
	ID            string         `db:"id"`
	UserID        string         `db:"user_id"`
	MediaTypeID   int            `db:"media_type_id"`
	Title         string         `db:"title"`
	OriginalTitle sql.NullString `db:"original_title"`
	Description   sql.NullString `db:"description"`
	Status        string         `db:"status"`
	Rating        sql.NullString `db:"rating"`
	Reason        sql.NullString `db:"reason"`
	PosterURL     sql.NullString `db:"poster_url"`
	Metadata      sql.NullString `db:"metadata"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r mediaRow) toModel() model.MediaRecord {
	rec := model.MediaRecord{
		ID:            r.ID,
		UserID:        r.UserID,
		Category:      model.Category(r.MediaTypeID),
		MediaType:     model.Category(r.MediaTypeID).String(),
		Title:         r.Title,
		OriginalTitle: stringPtr(r.OriginalTitle),
		Description:   stringPtr(r.Description),
		Status:        model.Status(r.Status),
		Reason:        stringPtr(r.Reason),
		PosterURL:     stringPtr(r.PosterURL),
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	if r.Rating.Valid {
		rating := model.Rating(r.Rating.String)
		rec.Rating = &rating
	}
	if r.Metadata.Valid {
		rec.Metadata = json.RawMessage(r.Metadata.String)
	}
	return rec
}

// MediaRepository handles media record persistence operations.
type MediaRepository struct {
	db *sqlx.DB
}

// NewMediaRepository creates a new MediaRepository.
func NewMediaRepository(db *sqlx.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create inserts a fully populated record.
func (r *MediaRepository) Create(ctx context.Context, rec *model.MediaRecord) error {
	query := r.db.Rebind(`INSERT INTO media_items (` + mediaColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	var rating sql.NullString
	if rec.Rating != nil {
		rating = nullString(string(*rec.Rating))
	}

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.UserID, int(rec.Category), rec.Title,
		ptrString(rec.OriginalTitle), ptrString(rec.Description),
		string(rec.Status), rating, ptrString(rec.Reason), ptrString(rec.PosterURL),
		nullString(string(rec.Metadata)), rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert media: %w", err)
	}
	return nil
}

// GetByID retrieves a record by ID regardless of its owner.
func (r *MediaRepository) GetByID(ctx context.Context, id string) (model.MediaRecord, error) {
	query := r.db.Rebind(`SELECT ` + mediaColumns + ` FROM media_items WHERE id = ?`)

	var row mediaRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.MediaRecord{}, ErrMediaNotFound
		}
		return model.MediaRecord{}, fmt.Errorf("get media: %w", err)
	}
	return row.toModel(), nil
}

// List returns the owner's records matching filter, newest first.
func (r *MediaRepository) List(ctx context.Context, ownerID string, filter model.MediaFilter) ([]model.MediaRecord, error) {
	query, args := buildListQuery(ownerID, filter)

	var rows []mediaRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}

	items := make([]model.MediaRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toModel())
	}
	return items, nil
}

// Update applies patch to the owner's record and stamps updatedAt.
// The patch must already be validated.
func (r *MediaRepository) Update(ctx context.Context, id, ownerID string, patch model.MediaPatch, updatedAt time.Time) error {
	sets, args := buildUpdate(patch, updatedAt)
	query := `UPDATE media_items SET ` + strings.Join(sets, ", ") + ` WHERE id = ? AND user_id = ?`
	args = append(args, id, ownerID)

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("update media: %w", err)
	}
	return nil
}

// Delete removes the record if it belongs to ownerID and reports whether a row was removed.
func (r *MediaRepository) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	query := r.db.Rebind(`DELETE FROM media_items WHERE id = ? AND user_id = ?`)

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete media: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete media: %w", err)
	}
	return n > 0, nil
}

// buildListQuery renders the listing query with '?' placeholders.
func buildListQuery(ownerID string, filter model.MediaFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + mediaColumns + ` FROM media_items WHERE user_id = ?`)
	args := []any{ownerID}

	if filter.Status != "" {
		sb.WriteString(` AND status = ?`)
		args = append(args, string(filter.Status))
	}
	if c, ok := model.ParseCategory(filter.MediaType); ok {
		sb.WriteString(` AND media_type_id = ?`)
		args = append(args, int(c))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		sb.WriteString(` AND (LOWER(title) LIKE ? ESCAPE '!' OR LOWER(original_title) LIKE ? ESCAPE '!')`)
		args = append(args, pattern, pattern)
	}

	sb.WriteString(` ORDER BY created_at DESC, id`)
	return sb.String(), args
}

// buildUpdate returns the SET clauses and their arguments for patch.
// updated_at is always the last clause.
func buildUpdate(patch model.MediaPatch, updatedAt time.Time) ([]string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(column string, v any) {
		sets = append(sets, column+" = ?")
		args = append(args, v)
	}

	if patch.Title.Set {
		add("title", patch.Title.Value)
	}
	if patch.MediaType.Set {
		add("media_type_id", int(model.NormalizeCategory(patch.MediaType.Value)))
	}
	if patch.Status.Set {
		add("status", string(patch.Status.Value))
	}
	if patch.Rating.Set {
		var rating sql.NullString
		if !patch.Rating.Null {
			rating = nullString(string(patch.Rating.Value))
		}
		add("rating", rating)
	}
	if patch.Reason.Set {
		add("reason", ptrString(patch.Reason.Ptr()))
	}
	if patch.PosterURL.Set {
		add("poster_url", ptrString(patch.PosterURL.Ptr()))
	}
	add("updated_at", updatedAt)

	return sets, args
}

// escapeLike escapes LIKE wildcards using '!' as the escape character.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func ptrString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return nullString(*s)
}
