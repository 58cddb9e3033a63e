package payments

import (
	"context"
	"errors"
	"time"
)

// Intent statuses as reported by the provider.
const (
	StatusRequiresPaymentMethod = "requires_payment_method"
	StatusRequiresConfirmation  = "requires_confirmation"
	StatusRequiresAction        = "requires_action"
	StatusProcessing            = "processing"
	StatusRequiresCapture       = "requires_capture"
	StatusSucceeded             = "succeeded"
	StatusCanceled              = "canceled"
)

// Webhook event types handled by the store.
const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

// ErrInvalidSignature is returned when a webhook payload fails verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Intent is the provider-side transaction for an order.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Status       string
}

// Open reports whether the intent can still be paid. Only open intents are
// reused or updated.
func (i Intent) Open() bool {
	switch i.Status {
	case StatusRequiresPaymentMethod, StatusRequiresConfirmation, StatusRequiresAction, StatusProcessing:
		return true
	}
	return false
}

// Terminal reports whether the intent can never be paid again.
func (i Intent) Terminal() bool {
	return i.Status == StatusSucceeded || i.Status == StatusCanceled
}

type IntentRequest struct {
	AmountCents int64
	Currency    string
	Email       string
	Metadata    map[string]string
}

type SessionRequest struct {
	Name        string
	AmountCents int64
	Currency    string
	Email       string
	Metadata    map[string]string
	SuccessURL  string
	CancelURL   string
	ExpiresAt   time.Time
}

// Session is a hosted checkout page.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Event is a verified webhook notification about an intent.
type Event struct {
	Type     string
	IntentID string
	Metadata map[string]string
}

// Provider is the contract the store needs from a payment gateway.
type Provider interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)
	UpdateIntentAmount(ctx context.Context, id string, amountCents int64) (*Intent, error)
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
	PublishableKey() string
}
