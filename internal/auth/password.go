package auth

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost matches the work factor used when seeding accounts.
const DefaultBcryptCost = 10

// HashPassword hashes a plaintext password with the given cost. The digest
// embeds its own salt and cost, so verification needs no side channel.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = DefaultBcryptCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value. A mismatch
// is reported as an error value, not a panic or an internal failure.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
