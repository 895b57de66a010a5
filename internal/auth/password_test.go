package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{name: "simple password", password: "pw123"},
		{name: "long password", password: "correct horse battery staple 42!"},
		{name: "unicode password", password: "pässwörd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password, bcrypt.MinCost)
			require.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)

			assert.NoError(t, ComparePassword(hash, tt.password))
			assert.Error(t, ComparePassword(hash, tt.password+"x"))
		})
	}
}

func TestHashPassword_SaltedDigestsDiffer(t *testing.T) {
	const password = "pw123"

	first, err := HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	second, err := HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NoError(t, ComparePassword(first, password))
	assert.NoError(t, ComparePassword(second, password))
}

func TestHashPassword_InvalidCostFallsBack(t *testing.T) {
	hash, err := HashPassword("pw123", 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, cost)
}

func TestComparePassword_WrongPasswordIsNotAnInternalFailure(t *testing.T) {
	hash, err := HashPassword("pw123", bcrypt.MinCost)
	require.NoError(t, err)

	err = ComparePassword(hash, "other")
	assert.ErrorIs(t, err, bcrypt.ErrMismatchedHashAndPassword)
}
