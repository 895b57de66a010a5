package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/accounts-service/internal/domain"
	apperrors "github.com/spec-kit/accounts-service/pkg/util"
)

// MemoryUserRepository is an in-process UserRepository used when no database
// DSN is configured, and by tests. It enforces the same email-uniqueness
// guarantee the Postgres schema provides and reports absence with
// pgx.ErrNoRows so callers need a single not-found check.
type MemoryUserRepository struct {
	mu      sync.Mutex
	users   map[int64]domain.User
	byEmail map[string]int64
	nextID  int64
}

// NewMemoryUserRepository creates an empty in-memory store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:   make(map[int64]domain.User),
		byEmail: make(map[string]int64),
		nextID:  1,
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := r.byEmail[key]; exists {
		return apperrors.NewEmailTaken()
	}

	now := time.Now()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.nextID++

	r.users[user.ID] = *user
	r.byEmail[key] = user.ID
	return nil
}

func (r *MemoryUserRepository) Update(_ context.Context, id int64, update UserUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}
	if update.IsActive != nil {
		user.IsActive = *update.IsActive
	}
	user.UpdatedAt = time.Now()
	r.users[id] = user

	copied := user
	return &copied, nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := user
	return &copied, nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user := r.users[id]
	return &user, nil
}

func (r *MemoryUserRepository) ListAll(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(func(domain.User) bool { return true }), nil
}

func (r *MemoryUserRepository) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(func(u domain.User) bool { return u.Role == role }), nil
}

func (r *MemoryUserRepository) snapshot(keep func(domain.User) bool) []domain.User {
	users := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		if keep(user) {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}
