package payments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/multielectric/mesupply/internal/models"
	"github.com/multielectric/mesupply/internal/store"
)

// defaultIngestTimeout bounds the provider and store calls made while
// processing one event, so a hung dependency surfaces as a retryable failure
// instead of blocking the webhook worker.
const defaultIngestTimeout = 20 * time.Second

// OrderStore is the slice of the order store the ingester needs.
type OrderStore interface {
	ProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	OrderBySessionID(ctx context.Context, sessionID string) (*models.OrderRef, error)
	CreateOrder(ctx context.Context, p store.CreateOrderParams) (*models.OrderRef, error)
}

// Publisher fans order events out to connected clients.
type Publisher interface {
	Publish(ev models.OrderEvent)
}

// Ingestor consumes asynchronous payment events and turns a completed
// checkout session into exactly one order, no matter how many times the
// provider redelivers the event.
type Ingestor struct {
	store     OrderStore
	provider  Provider
	publisher Publisher
	timeout   time.Duration
}

func NewIngestor(st OrderStore, provider Provider, publisher Publisher) *Ingestor {
	return &Ingestor{
		store:     st,
		provider:  provider,
		publisher: publisher,
		timeout:   defaultIngestTimeout,
	}
}

// Ingest verifies and processes one raw webhook delivery.
//
// Error contract: ErrBadSignature means the event was rejected with no side
// effects; any other error means processing failed after verification and
// the delivery must not be acknowledged, so the provider retries it.
func (in *Ingestor) Ingest(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := in.provider.ParseEvent(payload, signatureHeader)
	if err != nil {
		return err
	}

	// Unhandled event types are acknowledged without action.
	if event.Type != EventCheckoutCompleted || event.Session == nil {
		return nil
	}
	sess := event.Session

	ctx, cancel := context.WithTimeout(ctx, in.timeout)
	defer cancel()

	// Redelivery pre-check. The unique constraint on the session id is the
	// real guarantee; this just skips the provider round-trip.
	if existing, err := in.store.OrderBySessionID(ctx, sess.ID); err == nil {
		log.Printf("webhook: session %s already processed as %s, acknowledging redelivery", sess.ID, existing.OrderNumber)
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to check for existing order: %w", err)
	}

	providerLines, err := in.provider.SessionLineItems(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("failed to retrieve line items for session %s: %w", sess.ID, err)
	}

	ids := make([]string, 0, len(providerLines))
	for _, line := range providerLines {
		if line.ProductID != "" {
			ids = append(ids, line.ProductID)
		}
	}
	products, err := in.store.ProductsByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to resolve purchased products: %w", err)
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	// Lines that no longer resolve to a catalog product are dropped from the
	// order, logged with enough detail to reconcile manually.
	var lines []store.OrderLine
	for _, line := range providerLines {
		prod, ok := byID[line.ProductID]
		if !ok {
			log.Printf("webhook: dropping unresolved line item session=%s product_id=%q qty=%d", sess.ID, line.ProductID, line.Quantity)
			continue
		}
		lines = append(lines, store.OrderLine{Product: prod, Qty: line.Quantity})
	}

	email := sess.Email
	if email == "" {
		email = "unknown@example.com"
	}
	currency := sess.Currency
	if currency == "" {
		currency = "usd"
	}

	params := store.CreateOrderParams{
		Customer: store.CustomerParams{
			Email:   email,
			Name:    optional(sess.Name),
			Phone:   optional(sess.Phone),
			Address: sess.Address,
		},
		Lines: lines,
		// Totals come from the provider-reported charged amount, not from
		// recomputing the resolved lines, to avoid drift against what was
		// actually paid. Tax is an extension point, always zero for now.
		Totals: store.Totals{
			SubtotalCents: sess.AmountTotal,
			TaxCents:      0,
			TotalCents:    sess.AmountTotal,
			Currency:      currency,
		},
		Payment: store.PaymentRefs{
			PaymentIntentID: optional(sess.PaymentIntentID),
			SessionID:       optional(sess.ID),
		},
	}

	ref, err := in.store.CreateOrder(ctx, params)
	if errors.Is(err, store.ErrDuplicateSession) {
		// A concurrent delivery won the race; this one is a successful no-op.
		log.Printf("webhook: session %s raced a concurrent delivery, acknowledging", sess.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create order for session %s: %w", sess.ID, err)
	}

	customerName := sess.Name
	if customerName == "" {
		customerName = email
	}
	in.publisher.Publish(models.OrderEvent{
		Type: models.EventOrderCreated,
		Payload: models.OrderCreatedPayload{
			ID:           ref.ID,
			OrderNumber:  ref.OrderNumber,
			CustomerName: customerName,
		},
	})

	log.Printf("webhook: created order %s for session %s", ref.OrderNumber, sess.ID)
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
