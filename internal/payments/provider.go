// Package payments holds the checkout session initiator and the payment
// event ingester, both talking to the external payment provider through the
// Provider interface so they can be exercised against a fake in tests.
package payments

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrBadSignature marks a webhook payload whose authenticity could not be
// verified. Handlers map it to a 400 with no side effects.
var ErrBadSignature = errors.New("webhook signature verification failed")

// SessionLine is one priced entry sent to the provider when creating a
// checkout session. ProductID and SKU travel as metadata so the completion
// webhook can recover what was purchased.
type SessionLine struct {
	ProductID  string
	SKU        string
	Name       string
	UnitAmount int64
	Currency   string
	Quantity   int64
}

// CheckoutSession is the provider-hosted payment flow handle returned to the
// storefront client.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// LineItem is one purchased line retrieved back from the provider after a
// session completes. ProductID comes from the metadata embedded at session
// creation; it is empty when the metadata is missing.
type LineItem struct {
	ProductID string
	Quantity  int
}

// CompletedSession carries the fields consumed from a checkout-completed
// event.
type CompletedSession struct {
	ID              string
	PaymentIntentID string
	Email           string
	Name            string
	Phone           string
	Address         json.RawMessage
	AmountTotal     int64
	Currency        string
}

// Event is a parsed provider notification. Session is set only for
// checkout-completed events.
type Event struct {
	Type    string
	Session *CompletedSession
}

// EventCheckoutCompleted is the only event type this system acts on; all
// others are acknowledged and ignored.
const EventCheckoutCompleted = "checkout.session.completed"

// Provider is the boundary to the external payment service.
type Provider interface {
	// CreateSession creates a hosted checkout session for the priced lines.
	CreateSession(ctx context.Context, lines []SessionLine, customerEmail string) (*CheckoutSession, error)
	// SessionLineItems retrieves the authoritative purchased lines for a
	// completed session; the event payload alone is not trusted.
	SessionLineItems(ctx context.Context, sessionID string) ([]LineItem, error)
	// ParseEvent verifies and decodes a raw webhook payload. A payload that
	// fails verification returns ErrBadSignature.
	ParseEvent(payload []byte, signatureHeader string) (*Event, error)
}
