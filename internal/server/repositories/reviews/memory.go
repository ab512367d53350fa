package reviews

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/yamdb/internal/common"
	"github.com/dmitrijs2005/yamdb/internal/server/models"
)

// MemoryRepository keeps reviews in process memory.
type MemoryRepository struct {
	mu       sync.Mutex
	items    map[int64]models.Review
	nextID   int64
	onDelete func(reviewID int64)
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: map[int64]models.Review{}}
}

// OnDelete registers fn to run after each review is removed. Not safe to
// call concurrently with the other methods.
func (m *MemoryRepository) OnDelete(fn func(reviewID int64)) {
	m.onDelete = fn
}

// AverageScore is the mean score of a title's reviews, nil without reviews.
func (m *MemoryRepository) AverageScore(titleID int64) *float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sum, n int
	for _, r := range m.items {
		if r.TitleID == titleID {
			sum += r.Score
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := float64(sum) / float64(n)
	return &avg
}

func (m *MemoryRepository) List(_ context.Context, titleID int64) ([]*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Review
	for _, r := range m.items {
		if r.TitleID == titleID {
			r := r
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryRepository) Get(_ context.Context, titleID, id int64) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.items[id]
	if !ok || r.TitleID != titleID {
		return nil, common.ErrorNotFound
	}
	return &r, nil
}

func (m *MemoryRepository) Create(_ context.Context, r *models.Review) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, x := range m.items {
		if x.TitleID == r.TitleID && x.AuthorID == r.AuthorID {
			return nil, common.NewFieldError("non_field_errors", "you have already reviewed this title", common.ErrorAlreadyExists)
		}
	}
	m.nextID++
	r.ID = m.nextID
	r.PubDate = time.Now()
	m.items[r.ID] = *r
	return r, nil
}

func (m *MemoryRepository) Update(_ context.Context, r *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.items[r.ID]
	if !ok || existing.TitleID != r.TitleID {
		return common.ErrorNotFound
	}
	existing.Text = r.Text
	existing.Score = r.Score
	m.items[r.ID] = existing
	return nil
}

// Delete removes a review; its comments go with it through the OnDelete
// hook, which runs after the lock is released.
func (m *MemoryRepository) Delete(_ context.Context, titleID, id int64) error {
	m.mu.Lock()
	r, ok := m.items[id]
	if !ok || r.TitleID != titleID {
		m.mu.Unlock()
		return common.ErrorNotFound
	}
	delete(m.items, id)
	m.mu.Unlock()

	m.deleted([]int64{id})
	return nil
}

// DeleteByTitle removes every review of a title.
func (m *MemoryRepository) DeleteByTitle(titleID int64) {
	m.deleteWhere(func(r models.Review) bool { return r.TitleID == titleID })
}

// DeleteByAuthor removes every review written by authorID.
func (m *MemoryRepository) DeleteByAuthor(authorID string) {
	m.deleteWhere(func(r models.Review) bool { return r.AuthorID == authorID })
}

func (m *MemoryRepository) deleteWhere(match func(models.Review) bool) {
	m.mu.Lock()
	var ids []int64
	for id, r := range m.items {
		if match(r) {
			delete(m.items, id)
			ids = append(ids, id)
		}
	}
	m.mu.Unlock()

	m.deleted(ids)
}

func (m *MemoryRepository) deleted(ids []int64) {
	if m.onDelete == nil {
		return
	}
	for _, id := range ids {
		m.onDelete(id)
	}
}
