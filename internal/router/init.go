package router

import (
	"context"

	"github.com/oksasatya/user-lifecycle-api/internal/application"
	"github.com/oksasatya/user-lifecycle-api/internal/container"
	handlers "github.com/oksasatya/user-lifecycle-api/internal/interface/http"
	"github.com/oksasatya/user-lifecycle-api/internal/router/modules"
)

func buildUserHandler() *handlers.UserHandler {
	cfg := container.GetConfig()
	service := application.NewService(
		container.GetUserRepository(),
		container.GetEmitter(),
		container.GetLogger(),
	)
	return handlers.NewUserHandler(service, container.GetLogger(), cfg.APIBasePath)
}

func buildHealthChecks() map[string]modules.PingFunc {
	checks := map[string]modules.PingFunc{}
	if pool := container.GetPGPool(); pool != nil {
		checks["postgres"] = pool.Ping
	}
	if rdb := container.GetRedis(); rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return checks
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	r.Add(modules.NewUserModule(buildUserHandler(), container.GetRedis(), cfg.RateLimitPerMinute, container.GetLogger()))
	r.AddRoot(modules.NewOpsModule(buildHealthChecks(), cfg.MetricsEnabled, container.GetRedis()))
}
