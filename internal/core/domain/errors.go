package domain

import (
	"errors"
	"fmt"
)

var ErrValidation = errors.New("validation failed")
var ErrConflict = errors.New("already exists")
var ErrNotFound = errors.New("not found")
var ErrPermission = errors.New("operation not permitted")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrState = errors.New("invalid state")

// ErrCredentialNotSet signals a login against an account whose password was
// never set (fresh account or after an admin reset). It wraps ErrState so
// generic handling still treats it as a state problem, while login flows can
// match it directly to start the password setup step.
var ErrCredentialNotSet = fmt.Errorf("%w: no password set", ErrState)
