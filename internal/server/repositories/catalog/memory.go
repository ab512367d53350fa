package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/yamdb/internal/common"
	"github.com/dmitrijs2005/yamdb/internal/server/models"
)

// RatingFunc returns the average review score of a title, nil when it has
// no reviews.
type RatingFunc func(titleID int64) *float64

type memoryTitle struct {
	title  models.Title
	genres []string
}

// MemoryRepository keeps the catalog in process memory.
type MemoryRepository struct {
	mu         sync.Mutex
	categories map[string]models.Category
	genres     map[string]models.Genre
	titles     map[int64]*memoryTitle
	nextID     int64
	rating     RatingFunc
	onDelete   func(titleID int64)
}

// NewMemoryRepository builds an empty catalog. rating may be nil.
func NewMemoryRepository(rating RatingFunc) *MemoryRepository {
	return &MemoryRepository{
		categories: map[string]models.Category{},
		genres:     map[string]models.Genre{},
		titles:     map[int64]*memoryTitle{},
		rating:     rating,
	}
}

func (r *MemoryRepository) ListCategories(context.Context) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepository) CreateCategory(_ context.Context, c models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[c.Slug]; ok {
		return common.NewFieldError("slug", "this slug is already in use", common.ErrorAlreadyExists)
	}
	r.categories[c.Slug] = c
	return nil
}

func (r *MemoryRepository) DeleteCategory(_ context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[slug]; !ok {
		return common.ErrorNotFound
	}
	delete(r.categories, slug)
	for _, t := range r.titles {
		if t.title.Category != nil && t.title.Category.Slug == slug {
			t.title.Category = nil
		}
	}
	return nil
}

func (r *MemoryRepository) ListGenres(context.Context) ([]models.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Genre, 0, len(r.genres))
	for _, g := range r.genres {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepository) CreateGenre(_ context.Context, g models.Genre) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.genres[g.Slug]; ok {
		return common.NewFieldError("slug", "this slug is already in use", common.ErrorAlreadyExists)
	}
	r.genres[g.Slug] = g
	return nil
}

func (r *MemoryRepository) DeleteGenre(_ context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.genres[slug]; !ok {
		return common.ErrorNotFound
	}
	delete(r.genres, slug)
	for _, t := range r.titles {
		kept := t.genres[:0]
		for _, s := range t.genres {
			if s != slug {
				kept = append(kept, s)
			}
		}
		t.genres = kept
	}
	return nil
}

// materialize must be called with mu held.
func (r *MemoryRepository) materialize(t *memoryTitle) *models.Title {
	out := t.title
	if out.Category != nil {
		c := r.categories[out.Category.Slug]
		out.Category = &c
	}
	out.Genres = make([]models.Genre, 0, len(t.genres))
	for _, s := range t.genres {
		out.Genres = append(out.Genres, r.genres[s])
	}
	sort.Slice(out.Genres, func(i, j int) bool { return out.Genres[i].Slug < out.Genres[j].Slug })
	if r.rating != nil {
		out.Rating = r.rating(out.ID)
	}
	return &out
}

func (r *MemoryRepository) ListTitles(context.Context) ([]*models.Title, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Title, 0, len(r.titles))
	for _, t := range r.titles {
		out = append(out, r.materialize(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) GetTitle(_ context.Context, id int64) (*models.Title, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.titles[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.materialize(t), nil
}

// checkCategory must be called with mu held.
func (r *MemoryRepository) checkCategory(t *models.Title) error {
	if t.Category == nil || t.Category.Slug == "" {
		t.Category = nil
		return nil
	}
	if _, ok := r.categories[t.Category.Slug]; !ok {
		return common.NewFieldError("category", "unknown category slug", common.ErrorValidation)
	}
	return nil
}

func (r *MemoryRepository) CreateTitle(_ context.Context, t *models.Title) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkCategory(t); err != nil {
		return err
	}
	r.nextID++
	t.ID = r.nextID
	stored := *t
	stored.Genres = nil
	if stored.Category != nil {
		stored.Category = &models.Category{Slug: stored.Category.Slug}
	}
	r.titles[t.ID] = &memoryTitle{title: stored}
	return nil
}

func (r *MemoryRepository) UpdateTitle(_ context.Context, t *models.Title) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.titles[t.ID]
	if !ok {
		return common.ErrorNotFound
	}
	if err := r.checkCategory(t); err != nil {
		return err
	}
	stored := *t
	stored.Genres = nil
	if stored.Category != nil {
		stored.Category = &models.Category{Slug: stored.Category.Slug}
	}
	stored.Rating = nil
	existing.title = stored
	return nil
}

func (r *MemoryRepository) SetTitleGenres(_ context.Context, id int64, slugs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.titles[id]
	if !ok {
		return common.ErrorNotFound
	}
	seen := map[string]bool{}
	genres := make([]string, 0, len(slugs))
	for _, s := range slugs {
		if _, ok := r.genres[s]; !ok {
			return common.NewFieldError("genre", fmt.Sprintf("unknown genre slug %q", s), common.ErrorValidation)
		}
		if !seen[s] {
			seen[s] = true
			genres = append(genres, s)
		}
	}
	t.genres = genres
	return nil
}

// OnTitleDelete registers fn to run after a title is removed. Not safe to
// call concurrently with the other methods.
func (r *MemoryRepository) OnTitleDelete(fn func(titleID int64)) {
	r.onDelete = fn
}

func (r *MemoryRepository) DeleteTitle(_ context.Context, id int64) error {
	r.mu.Lock()
	if _, ok := r.titles[id]; !ok {
		r.mu.Unlock()
		return common.ErrorNotFound
	}
	delete(r.titles, id)
	r.mu.Unlock()

	if r.onDelete != nil {
		r.onDelete(id)
	}
	return nil
}
