package services

import (
	"context"
	"time"

	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/franciscosanchezn/gin-pizza-store/internal/pricing"
	"gorm.io/gorm"
)

const (
	defaultOrderPageSize = 50
	maxOrderPageSize     = 100
)

// Days converts a window expressed in days.
func Days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

// OrderHeader is an order with its short staff-facing code.
type OrderHeader struct {
	models.Order
	OrderCode string `json:"order_code"`
}

// OrderDetail is an order with its rendered lines.
type OrderDetail struct {
	Order OrderHeader        `json:"order"`
	Items []pricing.LineView `json:"items"`
}

// OrderSummary is a row of a customer's order history.
type OrderSummary struct {
	ID            string    `json:"id"`
	OrderCode     string    `json:"order_code"`
	TotalCents    int64     `json:"total_cents"`
	Total         string    `json:"total"`
	Method        string    `json:"method"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
}

type OrderPage struct {
	Items  []OrderHeader `json:"items"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// OrderService reads orders for customers, the payment page and staff.
type OrderService interface {
	// Summary returns a payable order for the payment page
	Summary(ctx context.Context, orderID string) (*OrderDetail, error)
	ListForUser(ctx context.Context, userID uint) ([]OrderSummary, error)
	GetForUser(ctx context.Context, userID uint, orderID string) (*OrderDetail, error)
	// List returns orders newest first. limit defaults to 50 and is capped at 100
	List(ctx context.Context, limit, offset int) (*OrderPage, error)
	Get(ctx context.Context, orderID string) (*OrderDetail, error)
}

type orderService struct {
	db            *gorm.DB
	summaryWindow time.Duration
	now           func() time.Time
}

func NewOrderService(db *gorm.DB, summaryWindow time.Duration) OrderService {
	return &orderService{db: db, summaryWindow: summaryWindow, now: time.Now}
}

func (s *orderService) Summary(ctx context.Context, orderID string) (*OrderDetail, error) {
	order, err := findOrder(ctx, s.db, orderID)
	if err != nil {
		if models.IsCode(err, models.ErrNotFound) {
			return nil, models.NewNotPayableError()
		}
		return nil, err
	}
	if !order.PayableAt(s.now(), s.summaryWindow) {
		return nil, models.NewNotPayableError()
	}
	return s.detail(ctx, order)
}

func (s *orderService) ListForUser(ctx context.Context, userID uint) ([]OrderSummary, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, models.NewInternalError("Failed to list orders", err)
	}

	out := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, OrderSummary{
			ID:            o.ID,
			OrderCode:     o.Code(),
			TotalCents:    o.TotalCents,
			Total:         pricing.FormatCents(o.TotalCents),
			Method:        o.Method,
			PaymentStatus: o.PaymentStatus,
			CreatedAt:     o.CreatedAt,
		})
	}
	return out, nil
}

func (s *orderService) GetForUser(ctx context.Context, userID uint, orderID string) (*OrderDetail, error) {
	order, err := findOrder(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID == nil || *order.UserID != userID {
		return nil, models.NewNotFoundError("Order not found")
	}
	return s.detail(ctx, order)
}

func (s *orderService) List(ctx context.Context, limit, offset int) (*OrderPage, error) {
	if limit <= 0 {
		limit = defaultOrderPageSize
	}
	limit = min(limit, maxOrderPageSize)
	offset = max(offset, 0)

	var orders []models.Order
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset).Find(&orders).Error
	if err != nil {
		return nil, models.NewInternalError("Failed to list orders", err)
	}

	page := &OrderPage{Items: make([]OrderHeader, 0, len(orders)), Limit: limit, Offset: offset}
	for _, o := range orders {
		page.Items = append(page.Items, OrderHeader{Order: o, OrderCode: o.Code()})
	}
	return page, nil
}

func (s *orderService) Get(ctx context.Context, orderID string) (*OrderDetail, error) {
	order, err := findOrder(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, order)
}

func (s *orderService) detail(ctx context.Context, order *models.Order) (*OrderDetail, error) {
	var lines []models.OrderLine
	if err := s.db.WithContext(ctx).Where("order_id = ?", order.ID).Order("id").Find(&lines).Error; err != nil {
		return nil, models.NewInternalError("Failed to load order lines", err)
	}

	priced := make([]models.PricedLine, 0, len(lines))
	for _, l := range lines {
		priced = append(priced, l.PricedLine)
	}
	lookup, err := NewCatalogReader(s.db).Lookup(ctx, priced)
	if err != nil {
		return nil, err
	}

	detail := &OrderDetail{
		Order: OrderHeader{Order: *order, OrderCode: order.Code()},
		Items: make([]pricing.LineView, 0, len(lines)),
	}
	for _, l := range lines {
		detail.Items = append(detail.Items, lookup.BuildView(l.ID, l.PricedLine))
	}
	return detail, nil
}

func findOrder(ctx context.Context, db *gorm.DB, orderID string) (*models.Order, error) {
	var order models.Order
	if err := db.WithContext(ctx).Where("id = ?", orderID).Take(&order).Error; err != nil {
		return nil, notFoundOr(err, "Order not found")
	}
	return &order, nil
}
