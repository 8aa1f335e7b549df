package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/railpos/railpos/internal/config"
	"github.com/railpos/railpos/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenCatalog opens the long-lived catalog database and ensures its schema.
//
// With no DATABASE_DSN the catalog is a sqlite file under the data directory
// (the normal single-terminal deployment). A postgres DSN switches the catalog
// to a shared server while per-shift order data stays in local sqlite files.
func OpenCatalog(cfg config.Config) (*gorm.DB, error) {
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var (
		conn *gorm.DB
		err  error
	)
	if IsPostgresDSN(cfg.DatabaseDSN) {
		dsn := NormalizeDSN(cfg.DatabaseDSN)
		for i := 0; i < 10; i++ {
			conn, err = gorm.Open(postgres.Open(dsn), gcfg)
			if err == nil {
				break
			}
			log.Println("Retrying catalog DB connection...", err)
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to connect catalog database after retries: %w", err)
		}
	} else {
		path := cfg.DatabaseDSN
		if path == "" {
			path = cfg.CatalogPath()
		}
		conn, err = gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open catalog sqlite %s: %w", path, err)
		}
	}

	if pingErr := conn.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("catalog db ping failed: %w", pingErr)
	}

	// MIGRATIONS=1 runs sql migrations via golang-migrate; otherwise the
	// in-code ensure path below creates and seeds tables as needed.
	if config.ParseBool("MIGRATIONS", false) {
		if err := runSQLMigrations(cfg); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else if err := EnsureCatalogSchema(conn); err != nil {
		return nil, err
	}

	// sanity check: the catalog is unusable without these
	for _, table := range []string{"categories", "dishes", "customers"} {
		if !conn.Migrator().HasTable(table) {
			return nil, fmt.Errorf("missing table after migration: %s", table)
		}
	}
	return conn, nil
}

// EnsureCatalogSchema idempotently creates the catalog tables. Default menu
// data is seeded only when a table was absent before this call, so a user who
// deletes the defaults never sees them come back on restart.
func EnsureCatalogSchema(conn *gorm.DB) error {
	seedCategories := !conn.Migrator().HasTable(&models.Category{})
	if seedCategories {
		if err := conn.Migrator().CreateTable(&models.Category{}); err != nil {
			return fmt.Errorf("create categories: %w", err)
		}
	}

	seedDishes := !conn.Migrator().HasTable(&models.Dish{})
	if seedDishes {
		if err := conn.Migrator().CreateTable(&models.Dish{}); err != nil {
			return fmt.Errorf("create dishes: %w", err)
		}
	}

	if !conn.Migrator().HasTable(&models.Customer{}) {
		if err := conn.Migrator().CreateTable(&models.Customer{}); err != nil {
			return fmt.Errorf("create customers: %w", err)
		}
	}

	if seedCategories {
		if err := seedDefaultCategories(conn); err != nil {
			return err
		}
	}
	if seedDishes {
		if err := seedDefaultDishes(conn); err != nil {
			return err
		}
	}
	return nil
}

func seedDefaultCategories(conn *gorm.DB) error {
	defaults := []models.Category{
		{Name: "Starters"},
		{Name: "Mains"},
		{Name: "Desserts"},
		{Name: "Drinks"},
	}
	return conn.Transaction(func(tx *gorm.DB) error {
		for i := range defaults {
			if err := tx.Create(&defaults[i]).Error; err != nil {
				return fmt.Errorf("seed category %s: %w", defaults[i].Name, err)
			}
		}
		return nil
	})
}

func seedDefaultDishes(conn *gorm.DB) error {
	byCategory := map[string][]models.Dish{
		"Starters": {{Name: "Spring Rolls", Price: 5.99}},
		"Mains":    {{Name: "Chicken Curry", Price: 12.99}},
		"Desserts": {{Name: "Cheesecake", Price: 6.99}},
		"Drinks":   {{Name: "Coke", Price: 2.50}},
	}
	return conn.Transaction(func(tx *gorm.DB) error {
		for catName, dishes := range byCategory {
			var cat models.Category
			if err := tx.Where("name = ?", catName).First(&cat).Error; err != nil {
				// Categories were not seeded (pre-existing table); skip menu seed.
				log.Printf("[DB] skipping dish seed, category %q missing: %v", catName, err)
				continue
			}
			for i := range dishes {
				dishes[i].CategoryID = cat.ID
				if err := tx.Create(&dishes[i]).Error; err != nil {
					return fmt.Errorf("seed dish %s: %w", dishes[i].Name, err)
				}
			}
		}
		return nil
	})
}
