package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/user-lifecycle-api/config"
	"github.com/oksasatya/user-lifecycle-api/internal/application"
	pginfra "github.com/oksasatya/user-lifecycle-api/internal/infrastructure/postgres"
	"github.com/oksasatya/user-lifecycle-api/pkg/helpers"
)

var demoUsers = []application.CreateUserInput{
	{Name: "test", Email: "test@test.com", Age: 20},
	{Name: "admin", Email: "admin@admin.com", Age: 30},
	{Name: "demoUser", Email: "demo@example.com", Age: 25},
}

// Seeds demo records through the lifecycle service without emitting events.
// Existing emails are skipped, so the command is safe to re-run.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{MaxConns: 2, MinConns: 1, MaxConnLife: time.Hour})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer pool.Close()

	svc := application.NewService(pginfra.NewUserRepository(pool), nil, logger)
	for _, in := range demoUsers {
		u, err := svc.CreateUser(ctx, in)
		switch {
		case errors.Is(err, application.ErrConflict):
			fmt.Printf("skipped existing user: email=%s\n", in.Email)
		case err != nil:
			log.Fatalf("failed to seed user %s: %v", in.Email, err)
		default:
			fmt.Printf("seeded user: id=%d email=%s name=%s\n", u.ID, u.Email, u.Name)
		}
	}
}
