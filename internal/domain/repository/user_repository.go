package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/user-lifecycle-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no record matches the requested key.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when a write violates the unique email index.
	ErrDuplicateEmail = errors.New("duplicate email")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Save inserts the user when it has no ID yet, otherwise updates it in place.
	Save(ctx context.Context, u *entity.User) error
	DeleteByID(ctx context.Context, id int64) error
}
