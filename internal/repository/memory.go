package repository

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mediatracker/mediatracker-go/internal/model"
)

// MemoryUserRepository keeps users in process memory. It backs DB_DRIVER=memory and tests.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]model.User)}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return ErrDuplicateUser
	}
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return ErrDuplicateUser
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

type memoryRecord struct {
	seq uint64
	rec model.MediaRecord
}

// MemoryMediaRepository keeps media records in process memory.
type MemoryMediaRepository struct {
	mu    sync.RWMutex
	seq   uint64
	items map[string]memoryRecord
}

func NewMemoryMediaRepository() *MemoryMediaRepository {
	return &MemoryMediaRepository{items: make(map[string]memoryRecord)}
}

func (r *MemoryMediaRepository) Create(ctx context.Context, rec *model.MediaRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	stored := *rec
	stored.MediaType = stored.Category.String()
	r.items[rec.ID] = memoryRecord{seq: r.seq, rec: stored}
	return nil
}

func (r *MemoryMediaRepository) GetByID(ctx context.Context, id string) (model.MediaRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return model.MediaRecord{}, ErrMediaNotFound
	}
	return item.rec, nil
}

func (r *MemoryMediaRepository) List(ctx context.Context, ownerID string, filter model.MediaFilter) ([]model.MediaRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, byCategory := model.ParseCategory(filter.MediaType)
	needle := strings.ToLower(strings.TrimSpace(filter.Search))

	matched := make([]memoryRecord, 0)
	for _, item := range r.items {
		rec := item.rec
		if rec.UserID != ownerID {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		if byCategory && rec.Category != category {
			continue
		}
		if needle != "" && !matchesSearch(rec, needle) {
			continue
		}
		matched = append(matched, item)
	}

	slices.SortFunc(matched, func(a, b memoryRecord) int {
		if c := b.rec.CreatedAt.Compare(a.rec.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})

	items := make([]model.MediaRecord, 0, len(matched))
	for _, item := range matched {
		items = append(items, item.rec)
	}
	return items, nil
}

func (r *MemoryMediaRepository) Update(ctx context.Context, id, ownerID string, patch model.MediaPatch, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok || item.rec.UserID != ownerID {
		return nil
	}

	rec := &item.rec
	if patch.Title.Set {
		rec.Title = patch.Title.Value
	}
	if patch.MediaType.Set {
		rec.Category = model.NormalizeCategory(patch.MediaType.Value)
		rec.MediaType = rec.Category.String()
	}
	if patch.Status.Set {
		rec.Status = patch.Status.Value
	}
	if patch.Rating.Set {
		rec.Rating = patch.Rating.Ptr()
	}
	if patch.Reason.Set {
		rec.Reason = patch.Reason.Ptr()
	}
	if patch.PosterURL.Set {
		rec.PosterURL = patch.PosterURL.Ptr()
	}
	rec.UpdatedAt = updatedAt

	r.items[id] = item
	return nil
}

func (r *MemoryMediaRepository) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok || item.rec.UserID != ownerID {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

func matchesSearch(rec model.MediaRecord, needle string) bool {
	if strings.Contains(strings.ToLower(rec.Title), needle) {
		return true
	}
	return rec.OriginalTitle != nil && strings.Contains(strings.ToLower(*rec.OriginalTitle), needle)
}
