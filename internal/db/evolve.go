package db

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"
)

// ColumnCopy maps a destination column in the evolved table to the source
// expression that fills it from the old table. Src may be a bare column name
// or any sqlite expression over the old row (e.g. a CAST).
type ColumnCopy struct {
	Dst string
	Src string
}

// EvolveTable rewrites a table to a new shape that sqlite's ALTER TABLE cannot
// reach in place (dropping or retyping columns, changing a CHECK constraint).
//
// createDDL must be a format string with a single %s for the table name; it is
// instantiated as "<table>_new", rows are copied per the ColumnCopy mapping,
// then the old table is dropped and the new one renamed, all inside one
// transaction. Referential integrity checking is suspended around the swap and
// re-enabled before returning, including on the failure path.
func EvolveTable(conn *gorm.DB, table, createDDL string, copies []ColumnCopy) error {
	if len(copies) == 0 {
		return fmt.Errorf("evolve %s: no columns to copy", table)
	}
	tmp := table + "_new"

	if err := conn.Exec("PRAGMA foreign_keys = OFF").Error; err != nil {
		return fmt.Errorf("evolve %s: disable foreign keys: %w", table, err)
	}
	defer func() {
		if err := conn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			log.Printf("[DB] re-enable foreign keys after evolving %s: %v", table, err)
		}
	}()

	dsts := make([]string, len(copies))
	srcs := make([]string, len(copies))
	for i, c := range copies {
		dsts[i] = c.Dst
		srcs[i] = c.Src
	}

	return conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", tmp)).Error; err != nil {
			return fmt.Errorf("evolve %s: drop stale %s: %w", table, tmp, err)
		}
		if err := tx.Exec(fmt.Sprintf(createDDL, tmp)).Error; err != nil {
			return fmt.Errorf("evolve %s: create %s: %w", table, tmp, err)
		}
		copySQL := fmt.Sprintf(
			"INSERT INTO %s (%s) SELECT %s FROM %s",
			tmp, strings.Join(dsts, ", "), strings.Join(srcs, ", "), table,
		)
		if err := tx.Exec(copySQL).Error; err != nil {
			return fmt.Errorf("evolve %s: copy rows: %w", table, err)
		}
		if err := tx.Exec(fmt.Sprintf("DROP TABLE %s", table)).Error; err != nil {
			return fmt.Errorf("evolve %s: drop old table: %w", table, err)
		}
		if err := tx.Exec(fmt.Sprintf("ALTER TABLE %s RENAME TO %s", tmp, table)).Error; err != nil {
			return fmt.Errorf("evolve %s: rename %s: %w", table, tmp, err)
		}
		return nil
	})
}
