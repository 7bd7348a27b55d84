// Command seeder populates an empty database with the reference data the
// application depends on: the workflow case states, a starter set of case
// types and offices, and an administrator account.
//
// It is idempotent: rows are inserted only when missing, keyed by their
// natural unique columns. Intended for development and first deployment,
// not as part of the main server.
//
// Flags:
//
//	--admin-user      username for the administrator account (default: admin)
//	--admin-password  password for the administrator account (required unless --skip-admin)
//	--skip-admin      seed only the catalogs
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ptrack/fiscalia-backend/internal/adapter/postgres"
	"github.com/ptrack/fiscalia-backend/internal/adapter/postgres/user"
	"github.com/ptrack/fiscalia-backend/internal/app"
	"github.com/ptrack/fiscalia-backend/internal/config"
	"github.com/ptrack/fiscalia-backend/internal/domain"
	"github.com/ptrack/fiscalia-backend/internal/service/auth"
)

var caseStates = []string{"PENDIENTE", "EN_PROCESO", "FINALIZADO"}

var caseTypes = []string{
	"PENAL",
	"CIVIL",
	"ADMINISTRATIVO",
}

var offices = []string{
	"Fiscalía Central",
	"Fiscalía Norte",
	"Fiscalía Sur",
}

func main() {
	adminUser := flag.String("admin-user", "admin", "username for the administrator account")
	adminPassword := flag.String("admin-password", "", "password for the administrator account")
	skipAdmin := flag.Bool("skip-admin", false, "seed only the catalogs")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	if !*skipAdmin && *adminPassword == "" {
		logger.Error("missing --admin-password (or pass --skip-admin)")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := seed(ctx, pool, logger, *adminUser, *adminPassword, *skipAdmin); err != nil {
		logger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("seeding completed")
}

func seed(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger, adminUser, adminPassword string, skipAdmin bool) error {
	for _, name := range caseStates {
		if err := upsertCatalogRow(ctx, pool, "case_states", name); err != nil {
			return fmt.Errorf("seed state %s: %w", name, err)
		}
	}
	logger.Info("case states seeded", slog.Int("count", len(caseStates)))

	for _, name := range caseTypes {
		if err := upsertCatalogRow(ctx, pool, "case_types", name); err != nil {
			return fmt.Errorf("seed type %s: %w", name, err)
		}
	}
	logger.Info("case types seeded", slog.Int("count", len(caseTypes)))

	for _, name := range offices {
		tag, err := pool.Exec(ctx,
			`INSERT INTO offices (name) SELECT $1 WHERE NOT EXISTS (SELECT 1 FROM offices WHERE name = $1)`,
			name)
		if err != nil {
			return fmt.Errorf("seed office %s: %w", name, err)
		}
		if tag.RowsAffected() > 0 {
			logger.Info("office created", slog.String("name", name))
		}
	}

	if skipAdmin {
		return nil
	}

	users := user.New(pool)
	if _, err := users.GetByUsername(ctx, adminUser); err == nil {
		logger.Info("administrator already exists", slog.String("username", adminUser))
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("check admin user: %w", err)
	}

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := users.Create(ctx, &domain.User{
		Username:     adminUser,
		PasswordHash: hash,
		Role:         domain.RoleAdministrator,
	}); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	logger.Info("administrator created", slog.String("username", adminUser))

	return nil
}

func upsertCatalogRow(ctx context.Context, pool *pgxpool.Pool, table, name string) error {
	_, err := pool.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, table), name)
	return err
}
