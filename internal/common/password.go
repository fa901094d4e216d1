package common

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	// bcrypt ignores input past 72 bytes, so longer passwords are refused.
	maxPasswordBytes = 72
)

func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return Validation("password must be at least %d characters long", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return Validation("password is too long")
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "bcrypt")
	}
	return string(hashedBytes), nil
}

// CheckPassword returns nil when password matches hashedPassword.
func CheckPassword(password, hashedPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
