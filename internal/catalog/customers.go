package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/railpos/railpos/internal/events"
	"github.com/railpos/railpos/internal/models"
	"gorm.io/gorm"
)

// Customers resolves customers by phone number. Phone is the de-facto
// identity: the upsert path treats it as unique even though the schema does
// not enforce it. Two concurrent upserts for a brand-new phone could both
// insert; accepted under the single-writer assumption.
type Customers struct {
	db  *gorm.DB
	bus *events.Bus
}

func NewCustomers(db *gorm.DB, bus *events.Bus) *Customers {
	return &Customers{db: db, bus: bus}
}

// Upsert looks a customer up by phone, updating name/address in place when
// found and inserting otherwise. Returns the resolved id either way.
func (c *Customers) Upsert(name, phone, address string) (uint, error) {
	var existing models.Customer
	err := c.db.Where("phone = ?", phone).First(&existing).Error
	switch {
	case err == nil:
		existing.Name = name
		existing.Address = address
		if err := c.db.Save(&existing).Error; err != nil {
			return 0, fmt.Errorf("update customer: %w", err)
		}
		c.bus.Publish(events.Event{Entity: "customer", Action: events.ActionUpdated, ID: strconv.FormatUint(uint64(existing.ID), 10)})
		return existing.ID, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		created := models.Customer{Name: name, Phone: phone, Address: address}
		if err := c.db.Create(&created).Error; err != nil {
			return 0, fmt.Errorf("create customer: %w", err)
		}
		c.bus.Publish(events.Event{Entity: "customer", Action: events.ActionCreated, ID: strconv.FormatUint(uint64(created.ID), 10)})
		return created.ID, nil
	default:
		return 0, fmt.Errorf("lookup customer by phone: %w", err)
	}
}

// SearchByPhone returns customers whose phone contains the given substring,
// newest first, capped at limit.
func (c *Customers) SearchByPhone(sub string, limit int) ([]models.Customer, error) {
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return []models.Customer{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []models.Customer
	err := c.db.
		Where("phone LIKE ?", "%"+sub+"%").
		Order("id desc").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	return out, nil
}

// ByIDs batch-fetches customers for cross-database enrichment of orders.
func (c *Customers) ByIDs(ids []uint) (map[uint]models.Customer, error) {
	out := make(map[uint]models.Customer, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Customer
	if err := c.db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch customers by ids: %w", err)
	}
	for _, r := range rows {
		out[r.ID] = r
	}
	return out, nil
}
