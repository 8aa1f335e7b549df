package reports

import (
	"errors"
	"fmt"
	"time"

	"github.com/railpos/railpos/internal/catalog"
	"github.com/railpos/railpos/internal/models"
	"github.com/railpos/railpos/internal/shift"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrOrderNotFound mirrors the lifecycle engine's condition for reads.
var ErrOrderNotFound = errors.New("order not found")

// OrderSummary is a today's-orders row: the order annotated with its computed
// total and the customer joined in from the catalog database.
type OrderSummary struct {
	models.Order
	Total         float64 `json:"total"`
	CustomerName  string  `json:"customer_name,omitempty"`
	CustomerPhone string  `json:"customer_phone,omitempty"`
}

// DailyTotals counts today's orders and sums their item totals, paid or not.
type DailyTotals struct {
	Orders int     `json:"orders"`
	Total  float64 `json:"total"`
}

// DetailItem is an order line enriched with the dish name from the catalog.
type DetailItem struct {
	models.OrderItem
	DishName string `json:"dish_name,omitempty"`
}

// OrderDetail is a single order with enriched items, its customer (if any)
// and the computed subtotal.
type OrderDetail struct {
	Order    models.Order     `json:"order"`
	Items    []DetailItem     `json:"items"`
	Customer *models.Customer `json:"customer,omitempty"`
	Subtotal float64          `json:"subtotal"`
}

// Service answers read-only questions about the current shift. Orders and
// catalog rows live in separate database files, so the customer/dish joins
// happen here, batched by id set.
type Service struct {
	shifts    *shift.Manager
	catalogDB *gorm.DB
	customers *catalog.Customers
}

func NewService(shifts *shift.Manager, catalogDB *gorm.DB, customers *catalog.Customers) *Service {
	return &Service{shifts: shifts, catalogDB: catalogDB, customers: customers}
}

// TodayOrders lists today's orders in the current shift, newest first, with
// totals and customer names attached.
func (s *Service) TodayOrders() ([]OrderSummary, error) {
	sess, err := s.shifts.Session()
	if err != nil {
		return nil, err
	}
	orders, err := s.todaysOrders(sess)
	if err != nil {
		return nil, err
	}

	customerIDs := make([]uint, 0, len(orders))
	seen := make(map[uint]bool)
	for _, o := range orders {
		if o.CustomerID != nil && !seen[*o.CustomerID] {
			seen[*o.CustomerID] = true
			customerIDs = append(customerIDs, *o.CustomerID)
		}
	}
	customers, err := s.customers.ByIDs(customerIDs)
	if err != nil {
		return nil, err
	}

	out := make([]OrderSummary, len(orders))
	for i, o := range orders {
		sum := OrderSummary{Order: o, Total: itemTotal(o.Items)}
		if o.CustomerID != nil {
			if c, ok := customers[*o.CustomerID]; ok {
				sum.CustomerName = c.Name
				sum.CustomerPhone = c.Phone
			}
		}
		out[i] = sum
	}
	return out, nil
}

// Totals returns the order count and gross item total for today.
func (s *Service) Totals() (DailyTotals, error) {
	sess, err := s.shifts.Session()
	if err != nil {
		return DailyTotals{}, err
	}
	orders, err := s.todaysOrders(sess)
	if err != nil {
		return DailyTotals{}, err
	}
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(itemTotalDecimal(o.Items))
	}
	return DailyTotals{Orders: len(orders), Total: total.InexactFloat64()}, nil
}

// RevenueBreakdown sums today's paid orders by payment method. Pending orders
// never contribute. The cash and card buckets are always present so the UI
// can render zeros; "total" is the sum over every method.
func (s *Service) RevenueBreakdown() (map[string]float64, error) {
	sess, err := s.shifts.Session()
	if err != nil {
		return nil, err
	}
	orders, err := s.todaysOrders(sess)
	if err != nil {
		return nil, err
	}

	buckets := map[string]decimal.Decimal{"cash": decimal.Zero, "card": decimal.Zero}
	total := decimal.Zero
	for _, o := range orders {
		if o.Status != models.StatusPaid || o.PaymentMethod == nil {
			continue
		}
		sum := itemTotalDecimal(o.Items)
		buckets[*o.PaymentMethod] = buckets[*o.PaymentMethod].Add(sum)
		total = total.Add(sum)
	}

	out := make(map[string]float64, len(buckets)+1)
	for method, v := range buckets {
		out[method] = v.InexactFloat64()
	}
	out["total"] = total.InexactFloat64()
	return out, nil
}

// OrderDetail loads one order with its items (enriched with dish names), its
// customer and the computed subtotal.
func (s *Service) OrderDetail(orderID uint) (*OrderDetail, error) {
	sess, err := s.shifts.Session()
	if err != nil {
		return nil, err
	}
	var order models.Order
	err = sess.DB().Preload("Items").First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}

	dishIDs := make([]uint, 0, len(order.Items))
	seen := make(map[uint]bool)
	for _, it := range order.Items {
		if !seen[it.DishID] {
			seen[it.DishID] = true
			dishIDs = append(dishIDs, it.DishID)
		}
	}
	dishes, err := s.dishesByIDs(dishIDs)
	if err != nil {
		return nil, err
	}

	detail := &OrderDetail{Order: order, Subtotal: itemTotal(order.Items)}
	detail.Items = make([]DetailItem, len(order.Items))
	for i, it := range order.Items {
		di := DetailItem{OrderItem: it}
		if d, ok := dishes[it.DishID]; ok {
			di.DishName = d.Name
		}
		detail.Items[i] = di
	}
	if order.CustomerID != nil {
		customers, err := s.customers.ByIDs([]uint{*order.CustomerID})
		if err != nil {
			return nil, err
		}
		if c, ok := customers[*order.CustomerID]; ok {
			detail.Customer = &c
		}
	}
	return detail, nil
}

// todaysOrders fetches the current shift's orders created today (local time),
// newest first, items preloaded.
func (s *Service) todaysOrders(sess *shift.Session) ([]models.Order, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.Add(24 * time.Hour)

	var orders []models.Order
	err := sess.DB().
		Preload("Items").
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("id desc").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("query today's orders: %w", err)
	}
	return orders, nil
}

func (s *Service) dishesByIDs(ids []uint) (map[uint]models.Dish, error) {
	out := make(map[uint]models.Dish, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Dish
	if err := s.catalogDB.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch dishes by ids: %w", err)
	}
	for _, r := range rows {
		out[r.ID] = r
	}
	return out, nil
}

// itemTotalDecimal sums price*quantity over the lines; prices are stored as
// floats, so sums go through decimal to avoid accumulation drift.
func itemTotalDecimal(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(line)
	}
	return total
}

func itemTotal(items []models.OrderItem) float64 {
	return itemTotalDecimal(items).InexactFloat64()
}
