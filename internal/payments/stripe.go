package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/multielectric/mesupply/internal/config"
)

// StripeProvider implements Provider against the Stripe API.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
	allowUnsigned bool
	appURL        string
}

func NewStripeProvider(cfg *config.StripeConfig, appURL string) *StripeProvider {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &StripeProvider{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		allowUnsigned: cfg.AllowUnsigned,
		appURL:        appURL,
	}
}

// CreateSession creates a hosted Stripe Checkout session. Product id and sku
// ride along as price metadata for the completion webhook.
func (p *StripeProvider) CreateSession(ctx context.Context, lines []SessionLine, customerEmail string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(p.appURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:          stripe.String(p.appURL + "/checkout/cancel"),
	}
	params.Context = ctx
	if customerEmail != "" {
		params.CustomerEmail = stripe.String(customerEmail)
	}

	for _, line := range lines {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(line.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(line.Currency),
				UnitAmount: stripe.Int64(line.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Name),
					Metadata: map[string]string{
						"product_id": line.ProductID,
						"sku":        line.SKU,
					},
				},
			},
		})
	}

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// SessionLineItems lists the purchased lines of a completed session and
// extracts the product_id metadata embedded at creation time.
func (p *StripeProvider) SessionLineItems(ctx context.Context, sessionID string) ([]LineItem, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(100)

	var items []LineItem
	iter := p.api.CheckoutSessions.ListLineItems(params)
	for iter.Next() {
		li := iter.LineItem()
		qty := int(li.Quantity)
		if qty <= 0 {
			qty = 1
		}
		var productID string
		if li.Price != nil {
			productID = li.Price.Metadata["product_id"]
		}
		items = append(items, LineItem{ProductID: productID, Quantity: qty})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list session line items: %w", err)
	}
	return items, nil
}

// ParseEvent verifies the webhook signature and decodes the event. When the
// signature or secret is missing, the event is rejected unless the unsigned
// fallback was explicitly enabled in config.
func (p *StripeProvider) ParseEvent(payload []byte, signatureHeader string) (*Event, error) {
	var event stripe.Event

	if signatureHeader == "" || p.webhookSecret == "" {
		if !p.allowUnsigned {
			return nil, fmt.Errorf("%w: missing signature or webhook secret", ErrBadSignature)
		}
		log.Printf("stripe: accepting unsigned webhook event (allow_unsigned is enabled)")
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
		}
	} else {
		verified, err := webhook.ConstructEvent(payload, signatureHeader, p.webhookSecret)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
		}
		event = verified
	}

	parsed := &Event{Type: string(event.Type)}
	if parsed.Type != EventCheckoutCompleted {
		return parsed, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session payload: %w", err)
	}

	completed := &CompletedSession{
		ID:          sess.ID,
		AmountTotal: sess.AmountTotal,
		Currency:    string(sess.Currency),
		Email:       sess.CustomerEmail,
	}
	if sess.PaymentIntent != nil {
		completed.PaymentIntentID = sess.PaymentIntent.ID
	}
	if details := sess.CustomerDetails; details != nil {
		if details.Email != "" {
			completed.Email = details.Email
		}
		completed.Name = details.Name
		completed.Phone = details.Phone
		if details.Address != nil {
			if raw, err := json.Marshal(details.Address); err == nil {
				completed.Address = raw
			}
		}
	}

	parsed.Session = completed
	return parsed, nil
}

var _ Provider = (*StripeProvider)(nil)
