package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPickupCode hashes an agent cash pickup code using bcrypt.
func HashPickupCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPickupCode compares a presented pickup code with its bcrypt hash.
func CheckPickupCode(code, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
