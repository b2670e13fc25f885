package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"userauth/internal/model"
)

type memoryUserRepository struct {
	mu      sync.RWMutex
	users   map[string]model.User
	byEmail map[string]string
	now     func() time.Time
}

// NewMemoryUserRepository returns a process-local repository. Data is lost
// on restart; it backs tests and STORE_DRIVER=memory.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		users:   map[string]model.User{},
		byEmail: map[string]string{},
		now:     time.Now,
	}
}

func (r *memoryUserRepository) Create(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, ErrDuplicateEmail
	}
	stored := *user
	stored.ID = uuid.NewString()
	stored.CreatedAt = r.now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.users[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID

	out := stored
	return &out, nil
}

func (r *memoryUserRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	user := r.users[id]
	return &user, nil
}

func (r *memoryUserRepository) Update(_ context.Context, id string, update model.UserUpdate) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if update.IsEmpty() {
		return &user, nil
	}
	oldEmail := user.Email
	if update.Email != nil && *update.Email != oldEmail {
		if _, taken := r.byEmail[*update.Email]; taken {
			return nil, ErrDuplicateEmail
		}
	}

	update.Apply(&user)
	user.UpdatedAt = r.now().UTC()
	r.users[id] = user
	if user.Email != oldEmail {
		delete(r.byEmail, oldEmail)
		r.byEmail[user.Email] = id
	}
	return &user, nil
}

func (r *memoryUserRepository) Delete(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.users, id)
	delete(r.byEmail, user.Email)
	return &user, nil
}

func (r *memoryUserRepository) List(_ context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}
