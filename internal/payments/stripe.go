package payments

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
	"github.com/stripe/stripe-go/v80/webhook"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// SetLogLevel adjusts the payments logger.
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// StripeConfig holds the Stripe keys. Only SecretKey is needed to talk to
// the API; WebhookSecret is needed to accept webhooks.
type StripeConfig struct {
	SecretKey      string
	PublishableKey string
	WebhookSecret  string
}

type stripeProvider struct {
	sc     *client.API
	config StripeConfig
}

// NewStripeProvider returns a Provider backed by the Stripe API.
func NewStripeProvider(cfg StripeConfig) Provider {
	return &stripeProvider{
		sc:     client.New(cfg.SecretKey, nil),
		config: cfg,
	}
}

func (p *stripeProvider) PublishableKey() string {
	return p.config.PublishableKey
}

func (p *stripeProvider) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.Email != "" {
		params.ReceiptEmail = stripe.String(req.Email)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	pi, err := p.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	log.WithFields(logrus.Fields{"intent_id": pi.ID, "amount": pi.Amount}).Info("Payment intent created")
	return toIntent(pi), nil
}

func (p *stripeProvider) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := p.sc.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve payment intent %s: %w", id, err)
	}
	return toIntent(pi), nil
}

func (p *stripeProvider) UpdateIntentAmount(ctx context.Context, id string, amountCents int64) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount: stripe.Int64(amountCents),
	}
	params.Context = ctx

	pi, err := p.sc.PaymentIntents.Update(id, params)
	if err != nil {
		return nil, fmt.Errorf("update payment intent %s: %w", id, err)
	}
	log.WithFields(logrus.Fields{"intent_id": pi.ID, "amount": pi.Amount}).Info("Payment intent amount updated")
	return toIntent(pi), nil
}

func (p *stripeProvider) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(req.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Name),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: req.Metadata,
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		ExpiresAt:  stripe.Int64(req.ExpiresAt.Unix()),
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	s, err := p.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	log.WithField("session_id", s.ID).Info("Checkout session created")
	return &Session{ID: s.ID, URL: s.URL}, nil
}

func (p *stripeProvider) ParseWebhook(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{Type: string(event.Type)}
	switch out.Type {
	case EventIntentSucceeded, EventIntentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent event: %w", err)
		}
		out.IntentID = pi.ID
		out.Metadata = pi.Metadata
	}
	return out, nil
}

func toIntent(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Status:       string(pi.Status),
	}
}
