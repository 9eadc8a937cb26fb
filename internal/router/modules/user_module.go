package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/user-lifecycle-api/internal/interface/http"
	"github.com/oksasatya/user-lifecycle-api/internal/interface/middleware"
)

// UserModule wires the record CRUD routes:
// POST /users, GET|PUT|DELETE /users/:id
// All routes are registered under the given RouterGroup (the API base path)
type UserModule struct {
	Handler   *handlers.UserHandler
	Redis     *redis.Client
	PerMinute int
	Logger    *logrus.Logger
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client, perMinute int, logger *logrus.Logger) *UserModule {
	return &UserModule{Handler: h, Redis: rdb, PerMinute: perMinute, Logger: logger}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	readLimiter := middleware.RateLimit(middleware.RateLimitOptions{
		Redis:  m.Redis,
		Max:    m.PerMinute,
		Window: time.Minute,
		Key:    middleware.KeyByIP(),
		Logger: m.Logger,
	})
	// writes get a quarter of the read budget, tracked per method and route
	writeLimiter := middleware.RateLimit(middleware.RateLimitOptions{
		Redis:  m.Redis,
		Max:    max(m.PerMinute/4, 1),
		Window: time.Minute,
		Key:    middleware.KeyByIPAndMethod(),
		Logger: m.Logger,
	})

	users := rg.Group("/users")
	users.Use(readLimiter)
	{
		users.POST("", writeLimiter, m.Handler.Create)
		users.GET("/:id", m.Handler.Get)
		users.PUT("/:id", writeLimiter, m.Handler.Update)
		users.DELETE("/:id", writeLimiter, m.Handler.Delete)
	}
}
