package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"kpitrack/internal/auth"
	"kpitrack/internal/platform/config"
)

// Seed provisions the bootstrap admin account so a fresh deployment can log in.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	email := strings.TrimSpace(cfg.SeedAdminEmail)
	password := strings.TrimSpace(cfg.SeedAdminPassword)
	if email == "" || password == "" {
		return nil
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE email = $1", email).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO users (name, email, password_hash, role, status)
    VALUES ('Administrator', $1, $2, 'admin', 'active')
  `, email, hash)
	return err
}
