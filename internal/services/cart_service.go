package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/franciscosanchezn/gin-pizza-store/internal/pricing"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// SetLogLevel adjusts the services logger.
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// AddLineInput describes a new cart line. A nil PizzaID is a custom build.
type AddLineInput struct {
	PizzaID           *int  `json:"pizza_id"`
	BaseID            int   `json:"base_id"`
	SauceID           int   `json:"sauce_id"`
	AddedToppingIDs   []int `json:"added_topping_ids"`
	RemovedToppingIDs []int `json:"removed_topping_ids"`
	Quantity          *int  `json:"quantity"`
}

// PatchLineInput is a partial update. Nil fields keep their current value.
type PatchLineInput struct {
	Quantity          *int   `json:"quantity"`
	AddedToppingIDs   *[]int `json:"added_topping_ids"`
	RemovedToppingIDs *[]int `json:"removed_topping_ids"`
}

// CartView is the priced, display-ready cart. ID is nil when the client has no
// cart yet.
type CartView struct {
	ID            *string            `json:"id"`
	Items         []pricing.LineView `json:"items"`
	SubtotalCents int64              `json:"subtotal_cents"`
	Subtotal      string             `json:"subtotal"`
	StaleLineIDs  []uint             `json:"stale_line_ids"`
}

// LineFailure records why a line could not be repriced.
type LineFailure struct {
	LineID uint
	Err    error
}

// RepriceReport is the outcome of a best-effort reprice pass.
type RepriceReport struct {
	Repriced []uint
	Failed   []LineFailure
}

// StaleIDs returns the lines that kept their cached price.
func (r RepriceReport) StaleIDs() []uint {
	ids := make([]uint, 0, len(r.Failed))
	for _, f := range r.Failed {
		ids = append(ids, f.LineID)
	}
	return ids
}

// CartService manages carts and their lines.
type CartService interface {
	// Resolve returns the active cart for identity or a CartNotFound error
	Resolve(ctx context.Context, identity CartIdentity) (*models.Cart, error)
	// GetOrCreate returns the active cart for identity, creating one when the
	// identity does not resolve. created tells the caller to hand out the new identity.
	GetOrCreate(ctx context.Context, identity CartIdentity) (cart *models.Cart, created bool, err error)
	AddLine(ctx context.Context, cartID string, in AddLineInput) (*models.CartLine, error)
	PatchLine(ctx context.Context, cartID string, lineID uint, in PatchLineInput) (*models.CartLine, error)
	RemoveLine(ctx context.Context, cartID string, lineID uint) (*models.CartLine, error)
	// Reprice recomputes every line of the cart from current catalog prices.
	// Lines that fail keep their cached price and are listed in the report.
	Reprice(ctx context.Context, cartID string) (RepriceReport, error)
	// View reprices the cart and renders it. It never creates a cart.
	View(ctx context.Context, identity CartIdentity) (*CartView, error)
}

type cartService struct {
	db         *gorm.DB
	catalog    CatalogReader
	calculator *pricing.Calculator
}

func NewCartService(db *gorm.DB) CartService {
	catalog := NewCatalogReader(db)
	return &cartService{
		db:         db,
		catalog:    catalog,
		calculator: pricing.NewCalculator(catalog),
	}
}

func (s *cartService) Resolve(ctx context.Context, identity CartIdentity) (*models.Cart, error) {
	if identity.IsZero() {
		return nil, models.NewCartNotFoundError()
	}
	var cart models.Cart
	err := s.db.WithContext(ctx).Where("id = ? AND status = ?", identity.Token, models.CartActive).Take(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewCartNotFoundError()
		}
		return nil, models.NewInternalError("Failed to load cart", err)
	}
	return &cart, nil
}

func (s *cartService) GetOrCreate(ctx context.Context, identity CartIdentity) (*models.Cart, bool, error) {
	cart, err := s.Resolve(ctx, identity)
	if err == nil {
		return cart, false, nil
	}
	if !models.IsCode(err, models.ErrCartNotFound) {
		return nil, false, err
	}

	cart = &models.Cart{ID: uuid.NewString(), Status: models.CartActive}
	if err := s.db.WithContext(ctx).Create(cart).Error; err != nil {
		return nil, false, models.NewInternalError("Failed to create cart", err)
	}
	log.WithField("cart_id", cart.ID).Info("Cart created")
	return cart, true, nil
}

func (s *cartService) AddLine(ctx context.Context, cartID string, in AddLineInput) (*models.CartLine, error) {
	quantity := 1
	if in.Quantity != nil {
		quantity = *in.Quantity
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if in.BaseID <= 0 {
		return nil, models.NewValidationError("base_id is required", "base_id")
	}
	if in.SauceID <= 0 {
		return nil, models.NewValidationError("sauce_id is required", "sauce_id")
	}

	line := &models.CartLine{
		CartID:     cartID,
		PricedLine: normalizeLine(in.PizzaID, in.BaseID, in.SauceID, in.AddedToppingIDs, in.RemovedToppingIDs, quantity),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockActiveCart(tx, cartID); err != nil {
			return err
		}
		price, err := pricing.NewCalculator(NewCatalogReader(tx)).Price(ctx, line.PricedLine)
		if err != nil {
			return err
		}
		line.UnitPriceCents = price

		if err := tx.Create(line).Error; err != nil {
			return models.NewInternalError("Failed to add cart line", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"cart_id":          cartID,
		"line_id":          line.ID,
		"unit_price_cents": line.UnitPriceCents,
	}).Debug("Cart line added")
	return line, nil
}

func (s *cartService) PatchLine(ctx context.Context, cartID string, lineID uint, in PatchLineInput) (*models.CartLine, error) {
	if in.Quantity != nil {
		if err := validateQuantity(*in.Quantity); err != nil {
			return nil, err
		}
	}

	var line *models.CartLine
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockActiveCart(tx, cartID); err != nil {
			return err
		}
		var err error
		if line, err = findLine(tx, cartID, lineID); err != nil {
			return err
		}

		if in.Quantity != nil {
			line.Quantity = *in.Quantity
		}
		if in.AddedToppingIDs != nil || in.RemovedToppingIDs != nil {
			added, removed := line.AddedToppingIDs, line.RemovedToppingIDs
			if in.AddedToppingIDs != nil {
				added = *in.AddedToppingIDs
			}
			if in.RemovedToppingIDs != nil {
				removed = *in.RemovedToppingIDs
			}
			line.PricedLine = normalizeLine(line.PizzaID, line.BaseID, line.SauceID, added, removed, line.Quantity)

			price, err := pricing.NewCalculator(NewCatalogReader(tx)).Price(ctx, line.PricedLine)
			if err != nil {
				return err
			}
			line.UnitPriceCents = price
		}

		if err := tx.Save(line).Error; err != nil {
			return models.NewInternalError("Failed to update cart line", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (s *cartService) RemoveLine(ctx context.Context, cartID string, lineID uint) (*models.CartLine, error) {
	var line *models.CartLine
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockActiveCart(tx, cartID); err != nil {
			return err
		}
		var err error
		if line, err = findLine(tx, cartID, lineID); err != nil {
			return err
		}
		if err := tx.Delete(&models.CartLine{}, line.ID).Error; err != nil {
			return models.NewInternalError("Failed to remove cart line", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (s *cartService) Reprice(ctx context.Context, cartID string) (RepriceReport, error) {
	var report RepriceReport
	lines, err := s.lines(ctx, cartID)
	if err != nil {
		return report, err
	}

	for _, line := range lines {
		price, err := s.calculator.Price(ctx, line.PricedLine)
		if err != nil {
			report.Failed = append(report.Failed, LineFailure{LineID: line.ID, Err: err})
			continue
		}
		if price != line.UnitPriceCents {
			err := s.db.WithContext(ctx).Model(&models.CartLine{}).Where("id = ?", line.ID).
				Update("unit_price_cents", price).Error
			if err != nil {
				report.Failed = append(report.Failed, LineFailure{LineID: line.ID, Err: err})
				continue
			}
		}
		report.Repriced = append(report.Repriced, line.ID)
	}
	return report, nil
}

func (s *cartService) View(ctx context.Context, identity CartIdentity) (*CartView, error) {
	view := &CartView{Items: []pricing.LineView{}, Subtotal: pricing.FormatCents(0), StaleLineIDs: []uint{}}

	cart, err := s.Resolve(ctx, identity)
	if err != nil {
		if models.IsCode(err, models.ErrCartNotFound) {
			return view, nil
		}
		return nil, err
	}
	view.ID = &cart.ID

	report, err := s.Reprice(ctx, cart.ID)
	if err != nil {
		log.WithError(err).WithField("cart_id", cart.ID).Warn("Cart reprice failed")
	}
	for _, f := range report.Failed {
		log.WithError(f.Err).WithFields(logrus.Fields{"cart_id": cart.ID, "line_id": f.LineID}).Warn("Cart line kept its cached price")
	}
	view.StaleLineIDs = report.StaleIDs()

	lines, err := s.lines(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	priced := make([]models.PricedLine, 0, len(lines))
	for _, l := range lines {
		priced = append(priced, l.PricedLine)
	}
	lookup, err := s.catalog.Lookup(ctx, priced)
	if err != nil {
		return nil, err
	}

	for _, l := range lines {
		view.Items = append(view.Items, lookup.BuildView(l.ID, l.PricedLine))
	}
	if view.SubtotalCents, err = subtotalOf(priced); err != nil {
		return nil, err
	}
	view.Subtotal = pricing.FormatCents(view.SubtotalCents)
	return view, nil
}

func findLine(tx *gorm.DB, cartID string, lineID uint) (*models.CartLine, error) {
	var line models.CartLine
	err := tx.Where("id = ? AND cart_id = ?", lineID, cartID).Take(&line).Error
	if err != nil {
		return nil, notFoundOr(err, "Cart item not found")
	}
	return &line, nil
}

// lockActiveCart re-reads the cart inside tx and holds its row lock on
// postgres, so line writes and checkout on the same cart serialize.
func lockActiveCart(tx *gorm.DB, cartID string) (*models.Cart, error) {
	query := tx
	if tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var cart models.Cart
	err := query.Where("id = ? AND status = ?", cartID, models.CartActive).Take(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewCartNotFoundError()
		}
		return nil, models.NewInternalError("Failed to load cart", err)
	}
	return &cart, nil
}

func validateQuantity(quantity int) error {
	if quantity < 1 || quantity > models.MaxLineQuantity {
		return models.NewValidationError(fmt.Sprintf("Quantity must be between 1 and %d", models.MaxLineQuantity), "quantity")
	}
	return nil
}

// subtotalOf sums unit price times quantity, rejecting totals that do not fit
// in cents.
func subtotalOf(lines []models.PricedLine) (int64, error) {
	subtotal, err := pricing.Subtotal(lines)
	if err != nil {
		return 0, models.NewValidationError("Cart total is too large", "quantity")
	}
	return subtotal, nil
}

func (s *cartService) lines(ctx context.Context, cartID string) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := s.db.WithContext(ctx).Where("cart_id = ?", cartID).Order("id").Find(&lines).Error; err != nil {
		return nil, models.NewInternalError("Failed to load cart lines", err)
	}
	return lines, nil
}

// normalizeLine builds the stored form of a line: topping ids as sorted sets,
// and no removed toppings on a custom build.
func normalizeLine(pizzaID *int, baseID, sauceID int, added, removed []int, quantity int) models.PricedLine {
	line := models.PricedLine{
		PizzaID:           pizzaID,
		BaseID:            baseID,
		SauceID:           sauceID,
		AddedToppingIDs:   pricing.NormalizeIDs(added),
		RemovedToppingIDs: pricing.NormalizeIDs(removed),
		Quantity:          quantity,
	}
	if pizzaID == nil {
		line.RemovedToppingIDs = []int{}
	}
	return line
}
