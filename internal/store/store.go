// Package store persists user credential records.
package store

import (
	"context"
	"errors"

	"github.com/isdelr/placeit-be/internal/models"
)

var (
	// ErrNotFound is returned when no record matches the lookup key.
	ErrNotFound = errors.New("store: user not found")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("store: email already exists")
)

// UserStore is the credential store. Emails are expected to be normalized by
// the caller; uniqueness is enforced by the backend.
type UserStore interface {
	// Create persists user and fills in its ID and CreatedAt.
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	Ping(ctx context.Context) error
	// Name identifies the backend in health output.
	Name() string
}
