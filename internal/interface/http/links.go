package handlers

import (
	"strconv"
	"time"

	"github.com/oksasatya/user-lifecycle-api/internal/domain/entity"
)

type Link struct {
	Href   string `json:"href"`
	Method string `json:"method,omitempty"`
}

type UserLinks struct {
	Self   Link `json:"self"`
	Update Link `json:"update"`
	Delete Link `json:"delete"`
}

// UserResponse is the JSON rendering of a record.
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Links     UserLinks `json:"_links"`
}

// LinkBuilder attaches hypermedia links after the service has answered.
type LinkBuilder struct {
	BasePath string
}

func (b LinkBuilder) UserPath(id int64) string {
	return b.BasePath + "/users/" + strconv.FormatInt(id, 10)
}

func (b LinkBuilder) Decorate(u *entity.User) UserResponse {
	href := b.UserPath(u.ID)
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		Links: UserLinks{
			Self:   Link{Href: href},
			Update: Link{Href: href, Method: "PUT"},
			Delete: Link{Href: href, Method: "DELETE"},
		},
	}
}
