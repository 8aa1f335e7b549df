package orders

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/railpos/railpos/internal/events"
	"github.com/railpos/railpos/internal/models"
	"github.com/railpos/railpos/internal/shift"
	"gorm.io/gorm"
)

// Errors returned by the order lifecycle engine. The UI pattern-matches on
// these to choose user-facing copy.
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrEmptyItems         = errors.New("items are required")
	ErrInvalidQuantity    = errors.New("quantity must be > 0")
	ErrInvalidFulfillment = errors.New("invalid fulfillment mode")
	ErrTableOccupied      = errors.New("table already has an open order")
	ErrTableNotOpen       = errors.New("no open order for table")
)

// ItemInput is one line of an order as the caller supplies it. Price is the
// caller's snapshot of the dish price; it is stored as-is, never re-read from
// the menu, so historical orders keep the price actually charged.
type ItemInput struct {
	DishID   uint    `json:"dish_id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// CreateRequest is the validated input for creating an order with items.
type CreateRequest struct {
	CustomerID    *uint       `json:"customer_id"`
	PhoneID       *uint       `json:"phone_id"`
	Fulfillment   string      `json:"fulfillment"`
	PaymentMethod *string     `json:"payment_method"`
	TableID       *string     `json:"table_id"`
	Items         []ItemInput `json:"items"`
}

// Service mutates orders and their line items against the current shift's
// database. Every operation fails with shift.ErrNoActiveShift when no shift
// is current.
type Service struct {
	shifts *shift.Manager
	bus    *events.Bus
}

func NewService(shifts *shift.Manager, bus *events.Bus) *Service {
	return &Service{shifts: shifts, bus: bus}
}

// Create inserts an order and all of its items in one transaction; either
// every item is attached or nothing is persisted. When a payment method is
// supplied the order is born paid.
func (s *Service) Create(req CreateRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}
	if req.Fulfillment == "" {
		req.Fulfillment = models.FulfillmentCollection
	}
	if !models.ValidFulfillment(req.Fulfillment) {
		return nil, ErrInvalidFulfillment
	}

	sess, err := s.shifts.Session()
	if err != nil {
		return nil, err
	}

	order := models.Order{
		CustomerID:    req.CustomerID,
		PhoneID:       req.PhoneID,
		Status:        models.StatusPending,
		Fulfillment:   req.Fulfillment,
		PaymentMethod: req.PaymentMethod,
		TableID:       req.TableID,
	}
	if req.PaymentMethod != nil && *req.PaymentMethod != "" {
		order.Status = models.StatusPaid
	}

	err = sess.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		items := make([]models.OrderItem, len(req.Items))
		for i, it := range req.Items {
			items[i] = models.OrderItem{
				OrderID:  order.ID,
				DishID:   it.DishID,
				Quantity: it.Quantity,
				Price:    it.Price,
			}
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(events.Event{Entity: "order", Action: events.ActionCreated, ID: formatID(order.ID)})
	return &order, nil
}

// UpdateItems replaces every item of an existing order with the new set,
// atomically. Concurrent edits to the same order clobber each other; that is
// accepted under the single-terminal assumption.
func (s *Service) UpdateItems(orderID uint, items []ItemInput) error {
	for _, it := range items {
		if it.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	sess, err := s.shifts.Session()
	if err != nil {
		return err
	}

	err = sess.DB().Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrOrderNotFound
		}
		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("clear order items: %w", err)
		}
		if len(items) == 0 {
			return nil
		}
		rows := make([]models.OrderItem, len(items))
		for i, it := range items {
			rows[i] = models.OrderItem{
				OrderID:  orderID,
				DishID:   it.DishID,
				Quantity: it.Quantity,
				Price:    it.Price,
			}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.bus.Publish(events.Event{Entity: "order", Action: events.ActionUpdated, ID: formatID(orderID)})
	return nil
}

// FinalizePayment records the payment method and marks the order paid.
// Returns false when the id does not exist in the current shift; callers
// treat that as a soft failure.
func (s *Service) FinalizePayment(orderID uint, method string) (bool, error) {
	sess, err := s.shifts.Session()
	if err != nil {
		return false, err
	}
	res := sess.DB().Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{"payment_method": method, "status": models.StatusPaid})
	if res.Error != nil {
		return false, fmt.Errorf("finalize payment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	s.bus.Publish(events.Event{Entity: "order", Action: events.ActionUpdated, ID: formatID(orderID)})
	return true, nil
}

// QuickSale rings up a bar sale: no customer, paid immediately.
func (s *Service) QuickSale(items []ItemInput, method string) (*models.Order, error) {
	return s.Create(CreateRequest{
		Fulfillment:   models.FulfillmentBar,
		PaymentMethod: &method,
		Items:         items,
	})
}

// OpenTable creates the pending order that marks a restaurant table occupied.
// The order starts with no items; they are added as the table runs a tab.
func (s *Service) OpenTable(tableID string) (*models.Order, error) {
	sess, err := s.shifts.Session()
	if err != nil {
		return nil, err
	}
	if existing, err := s.pendingTableOrder(sess, tableID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrTableOccupied
	}

	order := models.Order{
		Status:      models.StatusPending,
		Fulfillment: models.FulfillmentRestaurant,
		TableID:     &tableID,
	}
	if err := sess.DB().Create(&order).Error; err != nil {
		return nil, fmt.Errorf("open table %s: %w", tableID, err)
	}
	s.bus.Publish(events.Event{Entity: "table", Action: events.ActionUpdated, ID: tableID})
	return &order, nil
}

// CloseTable finalizes payment on the table's pending order, freeing the
// table. Occupancy is derived from order status, never stored.
func (s *Service) CloseTable(tableID, method string) (*models.Order, error) {
	sess, err := s.shifts.Session()
	if err != nil {
		return nil, err
	}
	order, err := s.pendingTableOrder(sess, tableID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrTableNotOpen
	}
	if _, err := s.FinalizePayment(order.ID, method); err != nil {
		return nil, err
	}
	order.Status = models.StatusPaid
	order.PaymentMethod = &method
	s.bus.Publish(events.Event{Entity: "table", Action: events.ActionUpdated, ID: tableID})
	return order, nil
}

// Occupancy returns the table ids that currently have a pending order.
func (s *Service) Occupancy() ([]string, error) {
	sess, err := s.shifts.Session()
	if err != nil {
		return nil, err
	}
	var ids []string
	err = sess.DB().Model(&models.Order{}).
		Distinct("table_id").
		Where("status = ? AND table_id IS NOT NULL", models.StatusPending).
		Pluck("table_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("query occupancy: %w", err)
	}
	return ids, nil
}

func (s *Service) pendingTableOrder(sess *shift.Session, tableID string) (*models.Order, error) {
	var order models.Order
	err := sess.DB().
		Where("table_id = ? AND status = ?", tableID, models.StatusPending).
		Order("id desc").
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
