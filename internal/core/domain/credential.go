package domain

import (
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Credential holds a user's bcrypt password hash. The zero value means no
// password has been set; Verify reports that state as ErrCredentialNotSet
// instead of a plain mismatch.
type Credential struct {
	hash []byte
}

// CredentialFromHash rebuilds a credential from a previously stored hash.
// An empty hash yields the unset state.
func CredentialFromHash(hash string) Credential {
	if hash == "" {
		return Credential{}
	}
	return Credential{hash: []byte(hash)}
}

// Set replaces the stored hash with one derived from plaintext.
func (c *Credential) Set(plaintext string) error {
	if plaintext == "" {
		return fmt.Errorf("%w: password must not be empty", ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	c.hash = hash
	return nil
}

// Verify checks plaintext against the stored hash.
func (c Credential) Verify(plaintext string) (bool, error) {
	if len(c.hash) == 0 {
		return false, ErrCredentialNotSet
	}
	if err := bcrypt.CompareHashAndPassword(c.hash, []byte(plaintext)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Reset clears the stored hash, returning the credential to the unset state.
// Resetting an already unset credential is a no-op.
func (c *Credential) Reset() {
	c.hash = nil
}

// IsSet reports whether a password has been set.
func (c Credential) IsSet() bool { return len(c.hash) > 0 }

// Hash returns the stored bcrypt hash, empty when unset. It exists for
// storage adapters; everything else should go through Verify.
func (c Credential) Hash() string { return string(c.hash) }

// MarshalJSON encodes the hash itself, or null when unset, so persisted
// users keep verifying after a reload without rehashing.
func (c Credential) MarshalJSON() ([]byte, error) {
	if len(c.hash) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(string(c.hash))
}

// UnmarshalJSON accepts the hash string or null.
func (c *Credential) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		c.hash = nil
		return nil
	}
	c.hash = []byte(*s)
	return nil
}
