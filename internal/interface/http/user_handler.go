package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/user-lifecycle-api/internal/application"
	"github.com/oksasatya/user-lifecycle-api/internal/domain/entity"
	"github.com/oksasatya/user-lifecycle-api/internal/interface/middleware"
	"github.com/oksasatya/user-lifecycle-api/pkg/response"
	"github.com/oksasatya/user-lifecycle-api/pkg/validation"
)

// UserService is the slice of the lifecycle service the handler drives.
type UserService interface {
	CreateUser(ctx context.Context, in userapp.CreateUserInput) (*entity.User, error)
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	UpdateUser(ctx context.Context, id int64, in userapp.UpdateUserInput) (*entity.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type UserHandler struct {
	Svc    UserService
	Logger *logrus.Logger
	Links  LinkBuilder
}

func NewUserHandler(svc UserService, logger *logrus.Logger, basePath string) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, Links: LinkBuilder{BasePath: basePath}}
}

// userRequest is shared by create and update. Any id in the body is ignored.
type userRequest struct {
	Name  string `json:"name" binding:"required,username"`
	Email string `json:"email" binding:"required,email"`
	Age   int    `json:"age" binding:"age"`
}

func (h *UserHandler) Create(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.CreateUser(c.Request.Context(), userapp.CreateUserInput{Name: req.Name, Email: req.Email, Age: req.Age})
	if err != nil {
		h.writeError(c, err)
		return
	}
	res := h.Links.Decorate(u)
	c.Header("Location", res.Links.Self.Href)
	response.Success(c, http.StatusCreated, res)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	u, err := h.Svc.GetUserByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.Links.Decorate(u))
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.UpdateUser(c.Request.Context(), id, userapp.UpdateUserInput{Name: req.Name, Email: req.Email, Age: req.Age})
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.Links.Decorate(u))
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.Svc.DeleteUser(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid user id", map[string]string{"id": "must be an integer"})
		return 0, false
	}
	return id, true
}

func (h *UserHandler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, userapp.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, userapp.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, userapp.ErrInvalid):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		if h.Logger != nil {
			h.Logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString(middleware.RequestIDKey),
				"path":       c.Request.URL.Path,
			}).Error("user request failed")
		}
		response.Error(c, status, "internal server error", nil)
		return
	}

	msg := err.Error()
	var appErr *userapp.Error
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	response.Error(c, status, msg, nil)
}
