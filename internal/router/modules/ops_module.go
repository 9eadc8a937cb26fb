package modules

import (
	"context"
	_ "embed"
	"expvar"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/user-lifecycle-api/internal/interface/middleware"
)

//go:embed openapi.yaml
var openAPIDoc []byte

// PingFunc checks one dependency.
type PingFunc func(ctx context.Context) error

// OpsModule exposes /healthz, /openapi.yaml, /metrics and /debug/vars.
type OpsModule struct {
	Checks         map[string]PingFunc
	MetricsEnabled bool
	Redis          *redis.Client
}

func NewOpsModule(checks map[string]PingFunc, metricsEnabled bool, rdb *redis.Client) *OpsModule {
	return &OpsModule{Checks: checks, MetricsEnabled: metricsEnabled, Redis: rdb}
}

func (m *OpsModule) Register(rg *gin.RouterGroup) {
	rg.GET("/healthz", m.health)
	rg.GET("/openapi.yaml", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/yaml", openAPIDoc)
	})
	if !m.MetricsEnabled {
		return
	}
	// scrapers from private networks are not limited
	rl := middleware.RateLimit(middleware.RateLimitOptions{
		Redis:  m.Redis,
		Max:    120,
		Window: time.Minute,
		Key:    middleware.KeyByIP(),
		Allow:  middleware.AllowPrivateIP(),
	})
	rg.GET("/metrics", rl, gin.WrapH(promhttp.Handler()))
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}

func (m *OpsModule) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(m.Checks))
	for name, ping := range m.Checks {
		if err := ping(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}
