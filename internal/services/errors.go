package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/isdelr/todoshare-be/internal/store"
)

// Errors returned by the services. Handlers map them to status codes.
var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateIdentity  = errors.New("duplicate identity")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownUser        = fmt.Errorf("target user %w", ErrNotFound)
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func forbidden(msg string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, msg)
}

func notFound(msg string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, msg)
}

// translateStoreErr maps store errors onto the service taxonomy.
func translateStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotOwner):
		return forbidden("only the list owner can do this")
	case errors.Is(err, store.ErrUnknownUser):
		return ErrUnknownUser
	case errors.Is(err, store.ErrSelfShare):
		return invalid("a list cannot be shared with its owner")
	case errors.Is(err, store.ErrDuplicateIdentity):
		return fmt.Errorf("%w: %s", ErrDuplicateIdentity, duplicateField(err))
	default:
		return err
	}
}

func duplicateField(err error) string {
	return strings.TrimPrefix(err.Error(), store.ErrDuplicateIdentity.Error()+": ")
}
