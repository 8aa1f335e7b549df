package catalog

import (
	"testing"

	"github.com/railpos/railpos/internal/events"
	"github.com/railpos/railpos/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestCustomers(t *testing.T) (*Customers, *gorm.DB) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.Migrator().CreateTable(&models.Customer{}); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return NewCustomers(conn, events.NewBus()), conn
}

func TestUpsertCreatesThenUpdatesByPhone(t *testing.T) {
	svc, conn := newTestCustomers(t)

	id, err := svc.Upsert("Tony", "0151 555 0001", "12 Scotland Road")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero id")
	}

	// Same phone resolves to the same row, with name/address updated in place.
	id2, err := svc.Upsert("Anthony", "0151 555 0001", "14 Scotland Road")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if id2 != id {
		t.Fatalf("upsert created a duplicate: %d != %d", id2, id)
	}
	var row models.Customer
	if err := conn.First(&row, id).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if row.Name != "Anthony" || row.Address != "14 Scotland Road" {
		t.Fatalf("row not updated: %+v", row)
	}
	var count int64
	conn.Model(&models.Customer{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single customer, got %d", count)
	}
}

func TestSearchByPhoneSubstring(t *testing.T) {
	svc, _ := newTestCustomers(t)
	for _, c := range []struct{ name, phone string }{
		{"A", "0151 555 0001"},
		{"B", "0151 555 0002"},
		{"C", "0161 444 9999"},
	} {
		if _, err := svc.Upsert(c.name, c.phone, ""); err != nil {
			t.Fatalf("seed %s: %v", c.name, err)
		}
	}

	rows, err := svc.SearchByPhone("555", 20)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(rows))
	}
	// Newest first.
	if rows[0].Name != "B" || rows[1].Name != "A" {
		t.Fatalf("unexpected order: %+v", rows)
	}

	rows, err = svc.SearchByPhone("  ", 20)
	if err != nil {
		t.Fatalf("blank search: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("blank query should match nothing, got %d", len(rows))
	}
}

func TestByIDsBatch(t *testing.T) {
	svc, _ := newTestCustomers(t)
	idA, _ := svc.Upsert("A", "1", "")
	idB, _ := svc.Upsert("B", "2", "")

	got, err := svc.ByIDs([]uint{idA, idB, 9999})
	if err != nil {
		t.Fatalf("byIDs: %v", err)
	}
	if len(got) != 2 || got[idA].Name != "A" || got[idB].Name != "B" {
		t.Fatalf("unexpected batch: %+v", got)
	}
	empty, err := svc.ByIDs(nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("nil ids: %v %v", empty, err)
	}
}
