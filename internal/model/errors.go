package model

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every *NotFoundError through errors.Is.
var ErrNotFound = errors.New("not found")

// NotFoundError reports an id or handle that does not resolve to a stored entity.
type NotFoundError struct {
	Kind   string // "user" or "status"
	ID     int64
	Handle string
}

func (e *NotFoundError) Error() string {
	if e.Handle != "" {
		return fmt.Sprintf("%s @%s not found", e.Kind, e.Handle)
	}
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func UserNotFound(id int64) error { return &NotFoundError{Kind: "user", ID: id} }

func PostNotFound(id int64) error { return &NotFoundError{Kind: "status", ID: id} }

// IsNotFound reports whether err is or wraps a *NotFoundError.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
