package hash

import (
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when no stored hash exists so that a missing
// account costs the same bcrypt work as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("blog-dummy-password"), bcrypt.DefaultCost)

func HashPassword(password string) (string, error) {
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hashbytes), nil
}

// CheckPassword reports whether password matches hash. Malformed or empty
// hashes never match.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Waste performs one throwaway comparison.
func Waste(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
