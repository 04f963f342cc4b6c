// Package store holds the errors shared by the persistence backends.
package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrDuplicateName is an agency insert that collided on the
	// case-insensitive name index. It also matches ErrDuplicate.
	ErrDuplicateName = fmt.Errorf("%w: agency name", ErrDuplicate)
)
