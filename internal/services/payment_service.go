package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/franciscosanchezn/gin-pizza-store/internal/payments"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const checkoutSessionTTL = 30 * time.Minute

// PaymentConfig configures payment reconciliation.
type PaymentConfig struct {
	Currency string
	// Window is how long after creation an unpaid order stays payable.
	Window        time.Duration
	PublicBaseURL string
}

type IntentResult struct {
	OrderID        string `json:"order_id"`
	ClientSecret   string `json:"client_secret"`
	PublishableKey string `json:"publishable_key"`
}

type SessionInput struct {
	OrderID    string `json:"order_id"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

// PaymentService keeps each order converged on one live provider transaction
// for its current total.
type PaymentService interface {
	CreateOrReuseIntent(ctx context.Context, orderID string) (*IntentResult, error)
	CreateCheckoutSession(ctx context.Context, in SessionInput) (*payments.Session, error)
	// HandleWebhook applies a verified provider notification to its order
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type paymentService struct {
	db       *gorm.DB
	provider payments.Provider
	config   PaymentConfig
	now      func() time.Time
}

func NewPaymentService(db *gorm.DB, provider payments.Provider, config PaymentConfig) PaymentService {
	return &paymentService{db: db, provider: provider, config: config, now: time.Now}
}

func (s *paymentService) CreateOrReuseIntent(ctx context.Context, orderID string) (*IntentResult, error) {
	order, amount, err := s.payableOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	logger := log.WithFields(logrus.Fields{"order_id": order.ID, "amount": amount})

	var intent *payments.Intent
	if order.StripePaymentIntentID != nil {
		existing, err := s.provider.RetrieveIntent(ctx, *order.StripePaymentIntentID)
		if err != nil {
			return nil, models.NewInternalError("Failed to retrieve payment intent", err)
		}
		switch {
		case existing.Terminal():
			logger.WithField("intent_id", existing.ID).Info("Linked payment intent is terminal, replacing it")
		case existing.Open() && existing.Amount != amount:
			intent, err = s.provider.UpdateIntentAmount(ctx, existing.ID, amount)
			if err != nil {
				return nil, models.NewInternalError("Failed to update payment intent", err)
			}
		default:
			intent = existing
		}
	}

	if intent == nil {
		intent, err = s.provider.CreateIntent(ctx, payments.IntentRequest{
			AmountCents: amount,
			Currency:    s.config.Currency,
			Email:       order.Email,
			Metadata:    map[string]string{"order_id": order.ID},
		})
		if err != nil {
			return nil, models.NewInternalError("Failed to create payment intent", err)
		}
		err = s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", order.ID).
			Update("stripe_payment_intent_id", intent.ID).Error
		if err != nil {
			return nil, models.NewInternalError("Failed to link payment intent", err)
		}
		logger.WithField("intent_id", intent.ID).Info("Payment intent linked to order")
	}

	return &IntentResult{
		OrderID:        order.ID,
		ClientSecret:   intent.ClientSecret,
		PublishableKey: s.provider.PublishableKey(),
	}, nil
}

func (s *paymentService) CreateCheckoutSession(ctx context.Context, in SessionInput) (*payments.Session, error) {
	order, amount, err := s.payableOrder(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}

	successURL := in.SuccessURL
	if successURL == "" {
		successURL = fmt.Sprintf("%s/payment/success?id=%s", s.config.PublicBaseURL, order.ID)
	}
	cancelURL := in.CancelURL
	if cancelURL == "" {
		cancelURL = fmt.Sprintf("%s/payment/cancel?id=%s", s.config.PublicBaseURL, order.ID)
	}

	session, err := s.provider.CreateCheckoutSession(ctx, payments.SessionRequest{
		Name:        "Pizza Order " + order.ID,
		AmountCents: amount,
		Currency:    s.config.Currency,
		Email:       order.Email,
		Metadata:    map[string]string{"order_id": order.ID},
		SuccessURL:  successURL,
		CancelURL:   cancelURL,
		ExpiresAt:   s.now().Add(checkoutSessionTTL),
	})
	if err != nil {
		return nil, models.NewInternalError("Failed to create checkout session", err)
	}
	return session, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, payments.ErrInvalidSignature) {
			return models.NewValidationError("Invalid webhook signature")
		}
		return models.NewInternalError("Failed to parse webhook", err)
	}

	updates := map[string]interface{}{"stripe_payment_intent_id": event.IntentID}
	switch event.Type {
	case payments.EventIntentSucceeded:
		updates["payment_status"] = models.PaymentPaid
	case payments.EventIntentFailed:
		// a declined intent returns to requires_payment_method and can be retried
		updates["payment_failed_at"] = s.now()
	default:
		log.WithField("event_type", event.Type).Debug("Ignoring webhook event")
		return nil
	}

	logger := log.WithFields(logrus.Fields{"intent_id": event.IntentID, "event_type": event.Type})
	order, err := s.orderForIntent(ctx, event)
	if err != nil {
		return err
	}
	if order == nil {
		logger.Warn("No order for payment intent")
		return nil
	}
	if order.PaymentStatus == models.PaymentPaid {
		logger.WithField("order_id", order.ID).Debug("Order already paid")
		return nil
	}

	err = s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error
	if err != nil {
		return models.NewInternalError("Failed to update payment status", err)
	}
	if event.Type == payments.EventIntentFailed {
		logger.WithField("order_id", order.ID).Warn("Payment declined, order stays payable")
		return nil
	}
	logger.WithField("order_id", order.ID).Info("Order marked paid")
	return nil
}

// payableOrder loads an order that can be charged now along with the amount.
func (s *paymentService) payableOrder(ctx context.Context, orderID string) (*models.Order, int64, error) {
	if orderID == "" {
		return nil, 0, models.NewValidationError("order_id is required", "order_id")
	}
	order, err := findOrder(ctx, s.db, orderID)
	if err != nil {
		if models.IsCode(err, models.ErrNotFound) {
			return nil, 0, models.NewNotPayableError()
		}
		return nil, 0, err
	}
	if !order.PayableAt(s.now(), s.config.Window) {
		return nil, 0, models.NewNotPayableError()
	}
	amount := max(0, order.TotalCents)
	if amount == 0 {
		return nil, 0, models.NewAmountZeroError()
	}
	return order, amount, nil
}

// orderForIntent finds the order linked to the event's intent, falling back to
// the order id in the intent metadata for intents created by checkout sessions.
func (s *paymentService) orderForIntent(ctx context.Context, event *payments.Event) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Where("stripe_payment_intent_id = ?", event.IntentID).Take(&order).Error
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewInternalError("Failed to load order", err)
	}

	orderID := event.Metadata["order_id"]
	if orderID == "" {
		return nil, nil
	}
	found, err := findOrder(ctx, s.db, orderID)
	if err != nil {
		if models.IsCode(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return found, nil
}
