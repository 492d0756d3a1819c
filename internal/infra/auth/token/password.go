package token

import "golang.org/x/crypto/bcrypt"

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Hasher adapts the package functions to an injectable collaborator.
type Hasher struct{}

func (Hasher) Hash(password string) (string, error) {
	return HashPassword(password)
}

func (Hasher) Verify(hash, password string) bool {
	return VerifyPassword(hash, password)
}
