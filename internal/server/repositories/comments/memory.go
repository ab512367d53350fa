package comments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/yamdb/internal/common"
	"github.com/dmitrijs2005/yamdb/internal/server/models"
)

// MemoryRepository keeps comments in process memory.
type MemoryRepository struct {
	mu     sync.Mutex
	items  map[int64]models.Comment
	nextID int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: map[int64]models.Comment{}}
}

func (m *MemoryRepository) List(_ context.Context, reviewID int64) ([]*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Comment
	for _, c := range m.items {
		if c.ReviewID == reviewID {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryRepository) Get(_ context.Context, reviewID, id int64) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.items[id]
	if !ok || c.ReviewID != reviewID {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (m *MemoryRepository) Create(_ context.Context, c *models.Comment) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	c.ID = m.nextID
	c.PubDate = time.Now()
	m.items[c.ID] = *c
	return c, nil
}

func (m *MemoryRepository) Update(_ context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.items[c.ID]
	if !ok || existing.ReviewID != c.ReviewID {
		return common.ErrorNotFound
	}
	existing.Text = c.Text
	m.items[c.ID] = existing
	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, reviewID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.items[id]
	if !ok || c.ReviewID != reviewID {
		return common.ErrorNotFound
	}
	delete(m.items, id)
	return nil
}

// DeleteByReview removes every comment on a review.
func (m *MemoryRepository) DeleteByReview(reviewID int64) {
	m.deleteWhere(func(c models.Comment) bool { return c.ReviewID == reviewID })
}

// DeleteByAuthor removes every comment written by authorID.
func (m *MemoryRepository) DeleteByAuthor(authorID string) {
	m.deleteWhere(func(c models.Comment) bool { return c.AuthorID == authorID })
}

func (m *MemoryRepository) deleteWhere(match func(models.Comment) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, c := range m.items {
		if match(c) {
			delete(m.items, id)
		}
	}
}
