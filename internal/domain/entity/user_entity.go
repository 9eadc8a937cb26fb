package entity

import (
	"time"
)

// User is the aggregate root for the user domain.
// ID is assigned by storage on first save and never changes afterwards.
type User struct {
	ID        int64
	Name      string
	Email     string
	Age       int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsNew reports whether the record has not been persisted yet.
func (u *User) IsNew() bool {
	return u.ID == 0
}
