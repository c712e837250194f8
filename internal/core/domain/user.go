package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserRef is the lightweight identity of a user embedded in tasks.
type UserRef struct {
	ID          string `json:"id" bson:"id"`
	Name        string `json:"name" bson:"name"`
	DisplayName string `json:"display_name" bson:"display_name"`
	Role        Role   `json:"role" bson:"role"`
}

// User models an account in the system. Name is the unique login key; ID,
// Name and CreatedAt never change after construction.
type User struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	DisplayName string     `json:"display_name"`
	Role        Role       `json:"role"`
	Credential  Credential `json:"password_hash"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewUser builds a validated user. An empty password leaves the credential
// unset: the account exists but cannot log in until a password is assigned.
func NewUser(name, displayName string, role Role, password string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: user name must not be empty", ErrValidation)
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}
	u := &User{
		ID:          uuid.NewString(),
		Name:        name,
		DisplayName: displayName,
		Role:        role,
		CreatedAt:   time.Now().UTC(),
	}
	if password != "" {
		if err := u.Credential.Set(password); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// Authenticate checks password against the stored credential. It propagates
// ErrCredentialNotSet when no password was ever assigned.
func (u *User) Authenticate(password string) (bool, error) {
	return u.Credential.Verify(password)
}

func (u *User) IsAdmin() bool      { return u.Role == RoleAdmin }
func (u *User) IsSupervisor() bool { return u.Role == RoleSupervisor }

// Ref returns the projection of this user stored on tasks.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, DisplayName: u.DisplayName, Role: u.Role}
}

// Clone returns an independent copy safe to hand outside the service lock.
func (u *User) Clone() *User {
	c := *u
	return &c
}
