package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor; tests lower it to keep runs fast
var PasswordCost = bcrypt.DefaultCost

// MaxPasswordBytes is the longest input bcrypt accepts
const MaxPasswordBytes = 72

// PasswordTooLong reports whether bcrypt would refuse to hash password
func PasswordTooLong(password string) bool {
	return len(password) > MaxPasswordBytes
}

// HashPassword hashes a plaintext password with a per-hash random salt
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword compares a plaintext password against a stored bcrypt hash
func CheckPassword(password, hash string) error {
	if hash == "" {
		return errors.New("no password set")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
