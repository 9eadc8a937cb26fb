// Package memory is a process-local UserRepository for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/oksasatya/user-lifecycle-api/internal/domain/entity"
	"github.com/oksasatya/user-lifecycle-api/internal/domain/repository"
)

// UserRepository mirrors the postgres schema rules: ids are assigned
// sequentially and email is unique.
type UserRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]entity.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byID: map[int64]entity.User{}}
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.emailTakenLocked(email, 0), nil
}

func (r *UserRepository) Save(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTakenLocked(u.Email, u.ID) {
		return repository.ErrDuplicateEmail
	}
	if u.IsNew() {
		r.nextID++
		u.ID = r.nextID
	} else if _, ok := r.byID[u.ID]; !ok {
		return repository.ErrNotFound
	}
	r.byID[u.ID] = *u
	return nil
}

func (r *UserRepository) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *UserRepository) emailTakenLocked(email string, except int64) bool {
	for id, u := range r.byID {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

var _ repository.UserRepository = (*UserRepository)(nil)
