package db

import (
	"log"
	"os"

	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the drivers and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/railpos/railpos/internal/config"
)

// runSQLMigrations executes migrations in ./migrations using the golang-migrate
// file source against whichever backend the catalog is configured for.
func runSQLMigrations(cfg config.Config) error {
	dsn := cfg.DatabaseDSN
	if IsPostgresDSN(dsn) {
		dsn = NormalizeDSN(dsn)
	} else {
		if dsn == "" {
			dsn = cfg.CatalogPath()
		}
		dsn = "sqlite3://" + dsn
	}
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// RunMigrations is a lightweight entry point you can invoke from tests or a
// small main. It respects the MIGRATIONS env var just like OpenCatalog.
func RunMigrations(cfg config.Config) error {
	if v := os.Getenv("MIGRATIONS"); v == "" {
		log.Println("MIGRATIONS env not set; skipping sql migrations (in-code ensure path used at app start).")
		return nil
	}
	log.Println("Running explicit SQL migrations...")
	return runSQLMigrations(cfg)
}
