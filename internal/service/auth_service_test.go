package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/accounts-service/internal/config"
	"github.com/spec-kit/accounts-service/internal/domain"
	"github.com/spec-kit/accounts-service/internal/events"
	"github.com/spec-kit/accounts-service/internal/repository"
	"github.com/spec-kit/accounts-service/internal/service"
	apperrors "github.com/spec-kit/accounts-service/pkg/util"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:     "test-secret",
		TokenTTLHours: 1,
		BcryptCost:    bcrypt.MinCost,
	}
}

func newAuthService(t *testing.T) (*service.AuthService, *repository.MemoryUserRepository) {
	t.Helper()
	repo := repository.NewMemoryUserRepository()
	return service.NewAuthService(testAuthConfig(), repo, events.NewInMemoryDispatcher()), repo
}

func register(t *testing.T, svc *service.AuthService, email, password string) *service.AuthResult {
	t.Helper()
	result, err := svc.Register(context.Background(), service.RegisterInput{
		Email:     email,
		Password:  password,
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(t, err)
	return result
}

func TestRegister_DefaultsToCustomer(t *testing.T) {
	svc, _ := newAuthService(t)

	result := register(t, svc, "a@x.com", "pw123")
	assert.Equal(t, domain.RoleCustomer, result.User.Role)
	assert.True(t, result.User.IsActive)
	assert.Positive(t, result.User.ID)
	assert.NotEmpty(t, result.Token)
}

func TestRegister_RejectsUnknownRole(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Email:     "a@x.com",
		Password:  "pw123",
		FirstName: "Test",
		LastName:  "User",
		Role:      "OVERLORD",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidationFailed, apperrors.CodeOf(err))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, repo := newAuthService(t)
	register(t, svc, "a@x.com", "pw123")

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Email:     "a@x.com",
		Password:  "other",
		FirstName: "Second",
		LastName:  "User",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeEmailTaken, apperrors.CodeOf(err))

	users, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestRegister_EmailIsCaseInsensitive(t *testing.T) {
	svc, _ := newAuthService(t)
	register(t, svc, "A@X.com", "pw123")

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Email:     "a@x.COM",
		Password:  "pw123",
		FirstName: "Test",
		LastName:  "User",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeEmailTaken, apperrors.CodeOf(err))

	result, err := svc.Login(context.Background(), "A@x.Com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", result.User.Email)
}

func TestRegister_StoresDigestNotPlaintext(t *testing.T) {
	svc, repo := newAuthService(t)
	register(t, svc, "a@x.com", "pw123")

	user, err := repo.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw123")))
}

func TestLogin_UnknownEmailAndWrongPasswordAreIdentical(t *testing.T) {
	svc, _ := newAuthService(t)
	register(t, svc, "a@x.com", "pw123")

	_, unknownErr := svc.Login(context.Background(), "nobody@x.com", "pw123")
	_, wrongErr := svc.Login(context.Background(), "a@x.com", "wrong")

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, apperrors.CodeInvalidCredentials, apperrors.CodeOf(unknownErr))
	assert.Equal(t, apperrors.CodeOf(unknownErr), apperrors.CodeOf(wrongErr))
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLogin_InactiveAccount(t *testing.T) {
	svc, repo := newAuthService(t)
	result := register(t, svc, "a@x.com", "pw123")

	inactive := false
	_, err := repo.Update(context.Background(), result.User.ID, repository.UserUpdate{IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "a@x.com", "pw123")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeAccountInactive, apperrors.CodeOf(err))

	// wrong password on an inactive account must not reveal active status
	_, err = svc.Login(context.Background(), "a@x.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidCredentials, apperrors.CodeOf(err))
}

func TestLogin_TokenCarriesIdentity(t *testing.T) {
	svc, _ := newAuthService(t)
	registered := register(t, svc, "a@x.com", "pw123")

	result, err := svc.Login(context.Background(), "a@x.com", "pw123")
	require.NoError(t, err)

	claims, err := svc.TokenManager().ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)
	assert.Equal(t, domain.RoleCustomer, claims.Role)
}

func TestPublicProjectionOmitsPasswordHash(t *testing.T) {
	svc, _ := newAuthService(t)
	result := register(t, svc, "a@x.com", "pw123")

	raw, err := json.Marshal(result.User)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "password")
	assert.NotContains(t, fields, "password_hash")
	assert.Contains(t, fields, "email")
}

func TestChangePassword(t *testing.T) {
	svc, repo := newAuthService(t)
	result := register(t, svc, "a@x.com", "pw123")

	before, err := repo.FindByID(context.Background(), result.User.ID)
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), result.User.ID, "wrong", "new-pw")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidCredentials, apperrors.CodeOf(err))

	require.NoError(t, svc.ChangePassword(context.Background(), result.User.ID, "pw123", "new-pw"))

	after, err := repo.FindByID(context.Background(), result.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, before.PasswordHash, after.PasswordHash)

	_, err = svc.Login(context.Background(), "a@x.com", "pw123")
	assert.Error(t, err)
	_, err = svc.Login(context.Background(), "a@x.com", "new-pw")
	assert.NoError(t, err)
}

func TestNonPasswordUpdateKeepsHash(t *testing.T) {
	svc, repo := newAuthService(t)
	result := register(t, svc, "a@x.com", "pw123")

	before, err := repo.FindByID(context.Background(), result.User.ID)
	require.NoError(t, err)

	name := "Renamed"
	_, err = repo.Update(context.Background(), result.User.ID, repository.UserUpdate{FirstName: &name})
	require.NoError(t, err)

	after, err := repo.FindByID(context.Background(), result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
	assert.Equal(t, "Renamed", after.FirstName)
}
