package db

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"
)

// ordersDDL is the current shape of a shift's orders table. The CHECK
// constraint enumerates every fulfillment mode; widening it on an older file
// requires a table rebuild because sqlite cannot alter a CHECK in place.
const ordersDDL = `CREATE TABLE IF NOT EXISTS %s (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    customer_id INTEGER,
    phone_id INTEGER,
    status TEXT NOT NULL DEFAULT 'pending',
    fulfillment TEXT NOT NULL CHECK (fulfillment IN ('delivery','collection','bar','restaurant')) DEFAULT 'collection',
    payment_method TEXT,
    table_id TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

const orderItemsDDL = `CREATE TABLE IF NOT EXISTS order_items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id INTEGER NOT NULL,
    quantity INTEGER NOT NULL DEFAULT 1,
    dish_id INTEGER NOT NULL,
    price REAL NOT NULL
)`

// EnsureOrdersSchema brings a shift database up to the current table shape.
//
// New files get the full DDL. Existing files go through an additive migration
// ladder: missing columns are added, and constraint changes that sqlite cannot
// express as ALTER TABLE trigger a rebuild. Every step is best effort: a
// failed step is logged and the remaining steps still run, so an old file
// degrades to the best shape reachable rather than blocking startup.
func EnsureOrdersSchema(conn *gorm.DB) {
	if !conn.Migrator().HasTable("orders") {
		if err := conn.Exec(fmt.Sprintf(ordersDDL, "orders")).Error; err != nil {
			log.Printf("[DB] create orders table: %v", err)
		}
		if err := conn.Exec(orderItemsDDL).Error; err != nil {
			log.Printf("[DB] create order_items table: %v", err)
		}
		return
	}
	if !conn.Migrator().HasTable("order_items") {
		if err := conn.Exec(orderItemsDDL).Error; err != nil {
			log.Printf("[DB] create order_items table: %v", err)
		}
	}

	if !conn.Migrator().HasColumn("orders", "payment_method") {
		if err := conn.Exec("ALTER TABLE orders ADD COLUMN payment_method TEXT").Error; err != nil {
			log.Printf("[DB] add payment_method column: %v", err)
		}
	}
	if !conn.Migrator().HasColumn("orders", "fulfillment") {
		if err := conn.Exec("ALTER TABLE orders ADD COLUMN fulfillment TEXT NOT NULL DEFAULT 'collection'").Error; err != nil {
			log.Printf("[DB] add fulfillment column: %v", err)
		}
	}
	if stale, err := fulfillmentCheckStale(conn); err != nil {
		log.Printf("[DB] inspect fulfillment constraint: %v", err)
	} else if stale {
		if err := rebuildOrdersTable(conn); err != nil {
			log.Printf("[DB] widen fulfillment constraint: %v", err)
		}
	}
	migrateTableIDColumn(conn)
}

// fulfillmentCheckStale reports whether the orders table carries a fulfillment
// CHECK constraint that predates one of the current modes.
func fulfillmentCheckStale(conn *gorm.DB) (bool, error) {
	ddl, err := tableSQL(conn, "orders")
	if err != nil {
		return false, err
	}
	lower := strings.ToLower(ddl)
	if !strings.Contains(lower, "fulfillment in") {
		return false, nil
	}
	for _, mode := range []string{"'delivery'", "'collection'", "'bar'", "'restaurant'"} {
		if !strings.Contains(lower, mode) {
			return true, nil
		}
	}
	return false, nil
}

// migrateTableIDColumn adds table_id, or rebuilds the table when an older file
// declared it with a non-text storage type.
func migrateTableIDColumn(conn *gorm.DB) {
	typ, found, err := columnType(conn, "orders", "table_id")
	if err != nil {
		log.Printf("[DB] inspect table_id column: %v", err)
		return
	}
	if !found {
		if err := conn.Exec("ALTER TABLE orders ADD COLUMN table_id TEXT").Error; err != nil {
			log.Printf("[DB] add table_id column: %v", err)
		}
		return
	}
	if !strings.EqualFold(typ, "TEXT") {
		if err := rebuildOrdersTable(conn); err != nil {
			log.Printf("[DB] rebuild orders for table_id type: %v", err)
		}
	}
}

// rebuildOrdersTable evolves the orders table to the current DDL, copying
// whichever of the known columns the old file actually has. table_id is cast
// to text so layout-editor ids survive an integer-typed predecessor.
func rebuildOrdersTable(conn *gorm.DB) error {
	all := []ColumnCopy{
		{Dst: "id", Src: "id"},
		{Dst: "customer_id", Src: "customer_id"},
		{Dst: "phone_id", Src: "phone_id"},
		{Dst: "status", Src: "status"},
		{Dst: "fulfillment", Src: "fulfillment"},
		{Dst: "payment_method", Src: "payment_method"},
		{Dst: "table_id", Src: "CAST(table_id AS TEXT)"},
		{Dst: "created_at", Src: "created_at"},
	}
	copies := make([]ColumnCopy, 0, len(all))
	for _, c := range all {
		if _, found, err := columnType(conn, "orders", c.Dst); err != nil {
			return err
		} else if found {
			copies = append(copies, c)
		}
	}
	return EvolveTable(conn, "orders", ordersDDL, copies)
}

// tableSQL returns the stored CREATE TABLE statement for a table.
func tableSQL(conn *gorm.DB, table string) (string, error) {
	var ddl string
	err := conn.Raw(
		"SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", table,
	).Scan(&ddl).Error
	return ddl, err
}

// columnType looks up a column's declared storage type via PRAGMA table_info.
func columnType(conn *gorm.DB, table, column string) (typ string, found bool, err error) {
	var cols []struct {
		Name string
		Type string
	}
	if err = conn.Raw(fmt.Sprintf("PRAGMA table_info(%q)", table)).Scan(&cols).Error; err != nil {
		return "", false, err
	}
	for _, c := range cols {
		if c.Name == column {
			return c.Type, true, nil
		}
	}
	return "", false, nil
}
