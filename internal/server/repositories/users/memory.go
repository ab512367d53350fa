package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/yamdb/internal/common"
	"github.com/dmitrijs2005/yamdb/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps users in process memory with the same uniqueness
// rules as the PostgreSQL schema.
type MemoryRepository struct {
	mu       sync.Mutex
	byID     map[string]models.User
	onDelete func(userID string)
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: map[string]models.User{}}
}

// find must be called with mu held.
func (r *MemoryRepository) find(match func(models.User) bool) (models.User, bool) {
	for _, u := range r.byID {
		if match(u) {
			return u, true
		}
	}
	return models.User{}, false
}

// taken must be called with mu held.
func (r *MemoryRepository) taken(u *models.User) error {
	if _, ok := r.find(func(x models.User) bool { return x.UserName == u.UserName && x.ID != u.ID }); ok {
		return common.NewFieldError("username", usernameTakenMessage, common.ErrConflict)
	}
	if _, ok := r.find(func(x models.User) bool { return x.Email == u.Email && x.ID != u.ID }); ok {
		return common.NewFieldError("email", emailTakenMessage, common.ErrConflict)
	}
	return nil
}

func (r *MemoryRepository) GetOrCreate(_ context.Context, username, email string) (*models.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.find(func(x models.User) bool { return x.UserName == username && x.Email == email }); ok {
		return &u, false, nil
	}

	u := models.User{UserName: username, Email: email, Role: models.RoleUser}
	if err := r.taken(&u); err != nil {
		return nil, false, err
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	r.byID[u.ID] = u
	return &u, true, nil
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.ID = ""
	if err := r.taken(user); err != nil {
		return nil, err
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	r.byID[user.ID] = *user
	return user, nil
}

func (r *MemoryRepository) get(match func(models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.find(match)
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	return r.get(func(u models.User) bool { return u.UserName == login })
}

func (r *MemoryRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return r.get(func(u models.User) bool { return u.Email == email })
}

func (r *MemoryRepository) GetUserByID(_ context.Context, id string) (*models.User, error) {
	return r.get(func(u models.User) bool { return u.ID == id })
}

func (r *MemoryRepository) List(context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.User, 0, len(r.byID))
	for _, u := range r.byID {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserName < out[j].UserName })
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[user.ID]; !ok {
		return common.ErrorNotFound
	}
	if err := r.taken(user); err != nil {
		return err
	}
	r.byID[user.ID] = *user
	return nil
}

// OnDelete registers fn to run after a user is removed. Not safe to call
// concurrently with the other methods.
func (r *MemoryRepository) OnDelete(fn func(userID string)) {
	r.onDelete = fn
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	if _, ok := r.byID[id]; !ok {
		r.mu.Unlock()
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	r.mu.Unlock()

	if r.onDelete != nil {
		r.onDelete(id)
	}
	return nil
}
