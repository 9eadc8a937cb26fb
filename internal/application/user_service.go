package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-lifecycle-api/internal/domain/entity"
	repo "github.com/oksasatya/user-lifecycle-api/internal/domain/repository"
	"github.com/oksasatya/user-lifecycle-api/internal/events"
)

// EventEmitter accepts lifecycle events for asynchronous delivery. It must not
// block and has no failure path visible to the caller.
type EventEmitter interface {
	Emit(evt events.UserEvent)
}

type Service struct {
	Repo    repo.UserRepository
	Emitter EventEmitter
	Logger  *logrus.Logger
	Now     func() time.Time
}

func NewService(repo repo.UserRepository, emitter EventEmitter, logger *logrus.Logger) *Service {
	return &Service{
		Repo:    repo,
		Emitter: emitter,
		Logger:  logger,
		Now:     StorageClock,
	}
}

// StorageClock returns the current UTC time at the microsecond precision
// postgres TIMESTAMPTZ keeps, so a returned record matches a later read.
func StorageClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

type CreateUserInput struct {
	Name  string
	Email string
	Age   int
}

type UpdateUserInput struct {
	Name  string
	Email string
	Age   int
}

// NormalizeEmail trims and lower-cases an address. Uniqueness is therefore
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser persists a new record and announces it with USER_CREATED.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*entity.User, error) {
	email := NormalizeEmail(in.Email)
	if email == "" {
		return nil, newInvalidError("email is required")
	}

	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	now := s.Now()
	u := &entity.User{
		Name:      in.Name,
		Email:     email,
		Age:       in.Age,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.save(ctx, u); err != nil {
		return nil, err
	}

	s.emit(events.UserCreated(u.Email))
	return u, nil
}

// GetUserByID returns the record with the given id.
func (s *Service) GetUserByID(ctx context.Context, id int64) (*entity.User, error) {
	return s.find(ctx, id)
}

// UpdateUser overwrites name, email and age. The record keeps its own email
// without tripping the uniqueness check. No event is emitted.
func (s *Service) UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (*entity.User, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	email := NormalizeEmail(in.Email)
	if email == "" {
		return nil, newInvalidError("email is required")
	}
	if email != u.Email {
		if err := s.ensureEmailFree(ctx, email); err != nil {
			return nil, err
		}
	}

	u.Name = in.Name
	u.Email = email
	u.Age = in.Age
	u.UpdatedAt = s.Now()
	if u.UpdatedAt.Before(u.CreatedAt) {
		u.UpdatedAt = u.CreatedAt
	}

	if err := s.save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUser removes the record, then announces it with USER_DELETED.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	u, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return newUserNotFoundError(id)
		}
		s.logError("delete user", err, logrus.Fields{"user_id": id})
		return newInfrastructureError("delete user", err)
	}

	s.emit(events.UserDeleted(u.Email))
	return nil
}

func (s *Service) find(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, newUserNotFoundError(id)
		}
		s.logError("find user", err, logrus.Fields{"user_id": id})
		return nil, newInfrastructureError("find user", err)
	}
	if u == nil {
		return nil, newUserNotFoundError(id)
	}
	return u, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string) error {
	exists, err := s.Repo.ExistsByEmail(ctx, email)
	if err != nil {
		s.logError("check email", err, nil)
		return newInfrastructureError("check email", err)
	}
	if exists {
		return newEmailExistsError(nil)
	}
	return nil
}

// save relies on the unique index to close the check-then-act window.
func (s *Service) save(ctx context.Context, u *entity.User) error {
	err := s.Repo.Save(ctx, u)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrDuplicateEmail):
		return newEmailExistsError(err)
	case errors.Is(err, repo.ErrNotFound):
		return newUserNotFoundError(u.ID)
	default:
		s.logError("save user", err, logrus.Fields{"user_id": u.ID})
		return newInfrastructureError("save user", err)
	}
}

func (s *Service) emit(evt events.UserEvent) {
	if s.Emitter == nil {
		return
	}
	s.Emitter.Emit(evt)
}

func (s *Service) logError(msg string, err error, fields logrus.Fields) {
	if s.Logger == nil {
		return
	}
	s.Logger.WithError(err).WithFields(fields).Error(msg)
}
