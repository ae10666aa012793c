package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/account-service/internal/domain"
)

type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewMemoryUserRepository returns a process-local UserRepository for running
// without Postgres. Missing rows are reported as pgx.ErrNoRows like the
// Postgres implementation.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[string]domain.User)}
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findEmail(user.Email) != nil {
		return ErrEmailTaken
	}
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.EmailVerified = false
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if other := r.findEmail(user.Email); other != nil && other.ID != user.ID {
		return ErrEmailTaken
	}
	current.Name = user.Name
	current.Email = user.Email
	current.PasswordHash = user.PasswordHash
	current.Status = user.Status
	current.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = current
	return nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user := r.findEmail(email)
	if user == nil {
		return nil, pgx.ErrNoRows
	}
	found := *user
	return &found, nil
}

func (r *memoryUserRepository) List(_ context.Context, filter UserListFilter) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	users := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})

	if filter.Offset >= len(users) {
		return []domain.User{}, nil
	}
	users = users[filter.Offset:]
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *memoryUserRepository) UpdateRole(_ context.Context, id string, role domain.Role) error {
	return r.mutate(id, func(u *domain.User) { u.Role = role })
}

func (r *memoryUserRepository) MarkEmailVerified(_ context.Context, id string) error {
	return r.mutate(id, func(u *domain.User) { u.EmailVerified = true })
}

func (r *memoryUserRepository) mutate(id string, fn func(*domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	fn(&user)
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return nil
}

func (r *memoryUserRepository) findEmail(email string) *domain.User {
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u
		}
	}
	return nil
}
