package auth

import (
	"errors"

	"github.com/dmitrijs2005/viewtube/internal/common"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// HashPassword produces a one-way bcrypt hash with a per-call random salt
// embedded in the output.
func HashPassword(plain string) (string, error) {
	if plain == "" {
		return "", common.ErrorValidation
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored hash. A wrong
// password returns (false, nil); only malformed inputs produce an error.
func CheckPassword(plain, hash string) (bool, error) {
	if plain == "" || hash == "" {
		return false, common.ErrorValidation
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
