package db

import (
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestOrdersDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.sqlite")
	conn, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return conn
}

// legacyOrdersDDL is the original shape of a shift file: two fulfillment
// modes, no payment_method, no table_id.
const legacyOrdersDDL = `CREATE TABLE orders (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    customer_id INTEGER,
    phone_id INTEGER,
    status TEXT NOT NULL DEFAULT 'pending',
    fulfillment TEXT NOT NULL CHECK (fulfillment IN ('delivery','collection')) DEFAULT 'collection',
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

func TestEnsureOrdersSchemaCreatesTables(t *testing.T) {
	conn := openTestOrdersDB(t)
	EnsureOrdersSchema(conn)

	for _, table := range []string{"orders", "order_items"} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("table %s missing after ensure", table)
		}
	}
	// All four fulfillment modes must be accepted by the CHECK constraint.
	for _, mode := range []string{"delivery", "collection", "bar", "restaurant"} {
		if err := conn.Exec("INSERT INTO orders (fulfillment) VALUES (?)", mode).Error; err != nil {
			t.Fatalf("insert %s order: %v", mode, err)
		}
	}
	if err := conn.Exec("INSERT INTO orders (fulfillment) VALUES ('drone')").Error; err == nil {
		t.Fatal("expected CHECK violation for unknown fulfillment mode")
	}
}

func TestEnsureOrdersSchemaIdempotent(t *testing.T) {
	conn := openTestOrdersDB(t)
	EnsureOrdersSchema(conn)

	if err := conn.Exec("INSERT INTO orders (fulfillment, table_id) VALUES ('restaurant', 't-1')").Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	before, err := tableSQL(conn, "orders")
	if err != nil {
		t.Fatalf("read ddl: %v", err)
	}

	EnsureOrdersSchema(conn)

	after, err := tableSQL(conn, "orders")
	if err != nil {
		t.Fatalf("read ddl: %v", err)
	}
	if before != after {
		t.Fatalf("second ensure changed the table:\nbefore: %s\nafter: %s", before, after)
	}
	var count int64
	if err := conn.Raw("SELECT COUNT(*) FROM orders").Scan(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 order after re-ensure, got %d", count)
	}
}

func TestEnsureOrdersSchemaMigratesLegacyFile(t *testing.T) {
	conn := openTestOrdersDB(t)
	if err := conn.Exec(legacyOrdersDDL).Error; err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	if err := conn.Exec("INSERT INTO orders (customer_id, phone_id, status, fulfillment) VALUES (7, 7, 'paid', 'delivery')").Error; err != nil {
		t.Fatalf("seed legacy row: %v", err)
	}

	EnsureOrdersSchema(conn)

	for _, col := range []string{"payment_method", "fulfillment", "table_id"} {
		if !conn.Migrator().HasColumn("orders", col) {
			t.Fatalf("column %s missing after migration", col)
		}
	}
	// The CHECK constraint must have been widened via rebuild.
	if err := conn.Exec("INSERT INTO orders (fulfillment) VALUES ('bar')").Error; err != nil {
		t.Fatalf("bar order rejected after migration: %v", err)
	}
	// The pre-migration row survives the rebuild.
	var status string
	if err := conn.Raw("SELECT status FROM orders WHERE customer_id = 7").Scan(&status).Error; err != nil {
		t.Fatalf("read migrated row: %v", err)
	}
	if status != "paid" {
		t.Fatalf("migrated row status = %q, want paid", status)
	}
}

func TestEnsureOrdersSchemaRetypesTableID(t *testing.T) {
	conn := openTestOrdersDB(t)
	if err := conn.Exec(legacyOrdersDDL).Error; err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	// An intermediate generation stored table_id as INTEGER.
	for _, stmt := range []string{
		"ALTER TABLE orders ADD COLUMN payment_method TEXT",
		"ALTER TABLE orders ADD COLUMN table_id INTEGER",
		"INSERT INTO orders (fulfillment, table_id) VALUES ('collection', 42)",
	} {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}

	EnsureOrdersSchema(conn)

	typ, found, err := columnType(conn, "orders", "table_id")
	if err != nil || !found {
		t.Fatalf("table_id lookup: found=%v err=%v", found, err)
	}
	if !strings.EqualFold(typ, "TEXT") {
		t.Fatalf("table_id type = %s, want TEXT", typ)
	}
	var tableID string
	if err := conn.Raw("SELECT table_id FROM orders").Scan(&tableID).Error; err != nil {
		t.Fatalf("read table_id: %v", err)
	}
	if tableID != "42" {
		t.Fatalf("table_id = %q after retype, want \"42\"", tableID)
	}
}

func TestEvolveTableRollsBackOnFailure(t *testing.T) {
	conn := openTestOrdersDB(t)
	EnsureOrdersSchema(conn)
	if err := conn.Exec("INSERT INTO orders (fulfillment) VALUES ('bar')").Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Copying from a nonexistent column fails mid-transaction; the original
	// table must be untouched and foreign keys back on.
	err := EvolveTable(conn, "orders", ordersDDL, []ColumnCopy{{Dst: "id", Src: "no_such_column"}})
	if err == nil {
		t.Fatal("expected evolve failure")
	}
	var count int64
	if err := conn.Raw("SELECT COUNT(*) FROM orders").Scan(&count).Error; err != nil {
		t.Fatalf("orders table unusable after failed evolve: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected original row to survive, got %d rows", count)
	}
	var fk int
	if err := conn.Raw("PRAGMA foreign_keys").Scan(&fk).Error; err != nil {
		t.Fatalf("read foreign_keys pragma: %v", err)
	}
	if fk != 1 {
		t.Fatal("foreign_keys not re-enabled after failed evolve")
	}
}
