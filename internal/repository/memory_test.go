package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/accounts-service/internal/domain"
	apperrors "github.com/spec-kit/accounts-service/pkg/util"
)

func newUser(email string) *domain.User {
	return &domain.User{
		Email:        email,
		PasswordHash: "h",
		FirstName:    "Test",
		LastName:     "User",
		Role:         domain.RoleCustomer,
		IsActive:     true,
	}
}

func TestMemoryRepo_CreateAssignsIDsAndTimestamps(t *testing.T) {
	repo := NewMemoryUserRepository()

	first := newUser("a@x.com")
	require.NoError(t, repo.Create(context.Background(), first))
	second := newUser("b@x.com")
	require.NoError(t, repo.Create(context.Background(), second))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.False(t, first.CreatedAt.IsZero())
	assert.False(t, first.UpdatedAt.IsZero())
}

func TestMemoryRepo_EmailUniqueness(t *testing.T) {
	repo := NewMemoryUserRepository()
	require.NoError(t, repo.Create(context.Background(), newUser("a@x.com")))

	err := repo.Create(context.Background(), newUser("a@x.com"))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeEmailTaken, apperrors.CodeOf(err))

	// case-insensitive like the normalized Postgres column
	err = repo.Create(context.Background(), newUser("A@X.COM"))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeEmailTaken, apperrors.CodeOf(err))
}

func TestMemoryRepo_FindAbsent(t *testing.T) {
	repo := NewMemoryUserRepository()

	_, err := repo.FindByID(context.Background(), 1)
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	_, err = repo.FindByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestMemoryRepo_PartialUpdate(t *testing.T) {
	repo := NewMemoryUserRepository()
	user := newUser("a@x.com")
	require.NoError(t, repo.Create(context.Background(), user))

	name := "Renamed"
	updated, err := repo.Update(context.Background(), user.ID, UserUpdate{FirstName: &name})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.FirstName)
	assert.Equal(t, user.LastName, updated.LastName)
	assert.Equal(t, user.PasswordHash, updated.PasswordHash)
	assert.Equal(t, user.Email, updated.Email)

	_, err = repo.Update(context.Background(), 404, UserUpdate{FirstName: &name})
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestMemoryRepo_Listing(t *testing.T) {
	repo := NewMemoryUserRepository()
	require.NoError(t, repo.Create(context.Background(), newUser("a@x.com")))

	admin := newUser("adm@x.com")
	admin.Role = domain.RoleAdmin
	require.NoError(t, repo.Create(context.Background(), admin))

	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].ID)

	customers, err := repo.ListByRole(context.Background(), domain.RoleCustomer)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "a@x.com", customers[0].Email)
}

func TestMemoryRepo_ReturnsCopies(t *testing.T) {
	repo := NewMemoryUserRepository()
	user := newUser("a@x.com")
	require.NoError(t, repo.Create(context.Background(), user))

	found, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	found.FirstName = "Mutated"

	again, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test", again.FirstName)
}
