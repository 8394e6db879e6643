package identity

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// HashAlgorithm identifies the scheme a stored credential hash was produced with.
type HashAlgorithm string

const (
	// AlgorithmBcrypt stores the salt inside the hash itself.
	AlgorithmBcrypt HashAlgorithm = "bcrypt"
	// AlgorithmSHA256 is a salted digest: hex(sha256(salt || password)).
	AlgorithmSHA256 HashAlgorithm = "sha256"
)

// Credential is a stored login credential for an internal identity.
// The bridge treats it as read-only: at most one active record per username.
type Credential struct {
	Username     string        `json:"username,omitempty"`
	UserID       string        `json:"user_id,omitempty"`
	PasswordHash string        `json:"-"` // never serialize
	Salt         string        `json:"-"`
	Algorithm    HashAlgorithm `json:"algorithm,omitempty"`
	Enabled      bool          `json:"enabled,omitempty"`
	ValidFrom    *time.Time    `json:"valid_from,omitempty"`
	ValidUntil   *time.Time    `json:"valid_until,omitempty"`
}

// Active reports whether the credential may be used for login at time now.
func (c *Credential) Active(now time.Time) bool {
	if !c.Enabled {
		return false
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return false
	}
	if c.ValidUntil != nil && !now.Before(*c.ValidUntil) {
		return false
	}
	return true
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
