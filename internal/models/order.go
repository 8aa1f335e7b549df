package models

import "time"

// Order statuses. Stored as free text but only these two values are produced.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// Fulfillment modes. The orders table carries a CHECK constraint enumerating
// exactly this set; widening it requires a table rebuild (see internal/db).
const (
	FulfillmentDelivery   = "delivery"
	FulfillmentCollection = "collection"
	FulfillmentBar        = "bar"
	FulfillmentRestaurant = "restaurant"
)

// ValidFulfillment reports whether v is one of the known fulfillment modes.
func ValidFulfillment(v string) bool {
	switch v {
	case FulfillmentDelivery, FulfillmentCollection, FulfillmentBar, FulfillmentRestaurant:
		return true
	}
	return false
}

// Order lives in the current shift's database, never in the catalog.
type Order struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	CustomerID    *uint       `json:"customer_id"`
	PhoneID       *uint       `json:"phone_id"`
	Status        string      `gorm:"not null;default:'pending'" json:"status"`
	Fulfillment   string      `gorm:"not null;default:'collection'" json:"fulfillment"`
	PaymentMethod *string     `json:"payment_method"`
	TableID       *string     `json:"table_id"`
	CreatedAt     time.Time   `json:"created_at"`
	Items         []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem captures the dish price at the moment of sale. Later menu edits
// must never alter it.
type OrderItem struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	OrderID  uint    `gorm:"not null;index" json:"order_id"`
	DishID   uint    `gorm:"not null" json:"dish_id"`
	Quantity int     `gorm:"not null;default:1" json:"quantity"`
	Price    float64 `gorm:"not null" json:"price"`
}
