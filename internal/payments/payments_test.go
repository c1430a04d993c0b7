package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multielectric/mesupply/internal/models"
	"github.com/multielectric/mesupply/internal/store"
)

type fakeProvider struct {
	event    *Event
	parseErr error

	lineItems []LineItem
	lineErr   error

	createdLines []SessionLine
	createdEmail string
	session      *CheckoutSession
	createErr    error
}

func (f *fakeProvider) CreateSession(_ context.Context, lines []SessionLine, customerEmail string) (*CheckoutSession, error) {
	f.createdLines = lines
	f.createdEmail = customerEmail
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.session, nil
}

func (f *fakeProvider) SessionLineItems(context.Context, string) ([]LineItem, error) {
	return f.lineItems, f.lineErr
}

func (f *fakeProvider) ParseEvent([]byte, string) (*Event, error) {
	return f.event, f.parseErr
}

type fakeStore struct {
	products map[string]models.Product

	existing *models.OrderRef

	created   []store.CreateOrderParams
	createRef *models.OrderRef
	createErr error
}

func (f *fakeStore) ProductsByIDs(_ context.Context, ids []string) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) OrderBySessionID(context.Context, string) (*models.OrderRef, error) {
	if f.existing != nil {
		return f.existing, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) CreateOrder(_ context.Context, p store.CreateOrderParams) (*models.OrderRef, error) {
	f.created = append(f.created, p)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createRef, nil
}

type fakePublisher struct {
	events []models.OrderEvent
}

func (f *fakePublisher) Publish(ev models.OrderEvent) {
	f.events = append(f.events, ev)
}

func catalogWith(products ...models.Product) *fakeStore {
	byID := make(map[string]models.Product)
	for _, p := range products {
		byID[p.ID] = p
	}
	return &fakeStore{products: byID}
}

func TestCreateSessionRejectsEmptyCart(t *testing.T) {
	svc := NewCheckoutService(catalogWith(), &fakeProvider{})

	_, err := svc.CreateSession(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = svc.CreateSession(context.Background(), []CartItem{}, "")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreateSessionRejectsUnknownProduct(t *testing.T) {
	catalog := catalogWith(models.Product{ID: "p1", SKU: "SKU-1", Name: "Copper Cable", PriceCents: 1500, Currency: "usd"})
	provider := &fakeProvider{session: &CheckoutSession{ID: "cs_1"}}
	svc := NewCheckoutService(catalog, provider)

	_, err := svc.CreateSession(context.Background(), []CartItem{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "missing", Quantity: 1},
	}, "")

	var unknownErr *UnknownProductError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "missing", unknownErr.ProductID)
	assert.Nil(t, provider.createdLines, "provider must not be called on a partial cart")
}

func TestCreateSessionUsesAuthoritativePricing(t *testing.T) {
	catalog := catalogWith(models.Product{ID: "p1", SKU: "SKU-1", Name: "Copper Cable", PriceCents: 1500, Currency: "usd"})
	provider := &fakeProvider{session: &CheckoutSession{ID: "cs_1", URL: "https://pay.example/cs_1"}}
	svc := NewCheckoutService(catalog, provider)

	sess, err := svc.CreateSession(context.Background(), []CartItem{{ProductID: "p1", Quantity: 2}}, "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, "cs_1", sess.ID)
	assert.Equal(t, "https://pay.example/cs_1", sess.URL)
	assert.Equal(t, "buyer@example.com", provider.createdEmail)

	require.Len(t, provider.createdLines, 1)
	line := provider.createdLines[0]
	assert.Equal(t, int64(1500), line.UnitAmount, "line price must come from the catalog")
	assert.Equal(t, "p1", line.ProductID)
	assert.Equal(t, "SKU-1", line.SKU)
	assert.Equal(t, int64(2), line.Quantity)
}

func TestCreateSessionDefaultsQuantity(t *testing.T) {
	catalog := catalogWith(models.Product{ID: "p1", SKU: "SKU-1", Name: "Copper Cable", PriceCents: 1500, Currency: "usd"})
	provider := &fakeProvider{session: &CheckoutSession{ID: "cs_1"}}
	svc := NewCheckoutService(catalog, provider)

	_, err := svc.CreateSession(context.Background(), []CartItem{{ProductID: "p1"}}, "")
	require.NoError(t, err)
	require.Len(t, provider.createdLines, 1)
	assert.Equal(t, int64(1), provider.createdLines[0].Quantity)
}

func completedEvent() *Event {
	return &Event{
		Type: EventCheckoutCompleted,
		Session: &CompletedSession{
			ID:              "cs_1",
			PaymentIntentID: "pi_1",
			Email:           "buyer@example.com",
			Name:            "Buyer",
			AmountTotal:     3000,
			Currency:        "usd",
		},
	}
}

func TestIngestCreatesOrderAndPublishes(t *testing.T) {
	st := catalogWith(models.Product{ID: "p1", SKU: "SKU-1", Name: "Copper Cable", PriceCents: 1500, Currency: "usd"})
	st.createRef = &models.OrderRef{ID: "order-1", OrderNumber: "ME-2025-000001"}
	provider := &fakeProvider{
		event:     completedEvent(),
		lineItems: []LineItem{{ProductID: "p1", Quantity: 2}},
	}
	pub := &fakePublisher{}

	err := NewIngestor(st, provider, pub).Ingest(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)

	require.Len(t, st.created, 1)
	params := st.created[0]
	assert.Equal(t, "buyer@example.com", params.Customer.Email)
	require.Len(t, params.Lines, 1)
	assert.Equal(t, "p1", params.Lines[0].Product.ID)
	assert.Equal(t, 2, params.Lines[0].Qty)
	assert.Equal(t, int64(3000), params.Totals.TotalCents)
	assert.Equal(t, int64(0), params.Totals.TaxCents)
	require.NotNil(t, params.Payment.SessionID)
	assert.Equal(t, "cs_1", *params.Payment.SessionID)

	require.Len(t, pub.events, 1)
	assert.Equal(t, models.EventOrderCreated, pub.events[0].Type)
	payload, ok := pub.events[0].Payload.(models.OrderCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, "ME-2025-000001", payload.OrderNumber)
	assert.Equal(t, "Buyer", payload.CustomerName)
}

func TestIngestIsIdempotent(t *testing.T) {
	st := catalogWith(models.Product{ID: "p1", SKU: "SKU-1", Name: "Copper Cable", PriceCents: 1500, Currency: "usd"})
	st.existing = &models.OrderRef{ID: "order-1", OrderNumber: "ME-2025-000001"}
	provider := &fakeProvider{
		event:     completedEvent(),
		lineItems: []LineItem{{ProductID: "p1", Quantity: 2}},
	}
	pub := &fakePublisher{}

	err := NewIngestor(st, provider, pub).Ingest(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Empty(t, st.created, "redelivery must not create a second order")
	assert.Empty(t, pub.events, "redelivery must not re-announce the order")
}

func TestIngestTreatsDuplicateRaceAsSuccess(t *testing.T) {
	st := catalogWith(models.Product{ID: "p1", SKU: "SKU-1", Name: "Copper Cable", PriceCents: 1500, Currency: "usd"})
	st.createErr = store.ErrDuplicateSession
	provider := &fakeProvider{
		event:     completedEvent(),
		lineItems: []LineItem{{ProductID: "p1", Quantity: 1}},
	}
	pub := &fakePublisher{}

	err := NewIngestor(st, provider, pub).Ingest(context.Background(), []byte(`{}`), "sig")
	assert.NoError(t, err)
	assert.Empty(t, pub.events)
}

func TestIngestRejectsBadSignature(t *testing.T) {
	st := catalogWith()
	provider := &fakeProvider{parseErr: ErrBadSignature}

	err := NewIngestor(st, provider, &fakePublisher{}).Ingest(context.Background(), []byte(`{}`), "bad")
	assert.ErrorIs(t, err, ErrBadSignature)
	assert.Empty(t, st.created)
}

func TestIngestIgnoresOtherEventTypes(t *testing.T) {
	st := catalogWith()
	provider := &fakeProvider{event: &Event{Type: "payment_intent.created"}}
	pub := &fakePublisher{}

	err := NewIngestor(st, provider, pub).Ingest(context.Background(), []byte(`{}`), "sig")
	assert.NoError(t, err)
	assert.Empty(t, st.created)
	assert.Empty(t, pub.events)
}

func TestIngestDropsUnresolvedLines(t *testing.T) {
	st := catalogWith(models.Product{ID: "p1", SKU: "SKU-1", Name: "Copper Cable", PriceCents: 1500, Currency: "usd"})
	st.createRef = &models.OrderRef{ID: "order-1", OrderNumber: "ME-2025-000002"}
	provider := &fakeProvider{
		event: completedEvent(),
		lineItems: []LineItem{
			{ProductID: "p1", Quantity: 1},
			{ProductID: "deleted-product", Quantity: 3},
			{ProductID: "", Quantity: 1},
		},
	}

	err := NewIngestor(st, provider, &fakePublisher{}).Ingest(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)
	require.Len(t, st.created, 1)
	require.Len(t, st.created[0].Lines, 1)
	assert.Equal(t, "p1", st.created[0].Lines[0].Product.ID)
}

func TestIngestSurfacesStoreFailureForRedelivery(t *testing.T) {
	st := catalogWith(models.Product{ID: "p1", SKU: "SKU-1", Name: "Copper Cable", PriceCents: 1500, Currency: "usd"})
	st.createErr = errors.New("connection refused")
	provider := &fakeProvider{
		event:     completedEvent(),
		lineItems: []LineItem{{ProductID: "p1", Quantity: 1}},
	}
	pub := &fakePublisher{}

	err := NewIngestor(st, provider, pub).Ingest(context.Background(), []byte(`{}`), "sig")
	assert.Error(t, err, "store failure must not be acknowledged")
	assert.Empty(t, pub.events)
}

func TestIngestSurfacesProviderFailureForRedelivery(t *testing.T) {
	st := catalogWith()
	provider := &fakeProvider{
		event:   completedEvent(),
		lineErr: errors.New("timeout"),
	}

	err := NewIngestor(st, provider, &fakePublisher{}).Ingest(context.Background(), []byte(`{}`), "sig")
	assert.Error(t, err)
	assert.Empty(t, st.created)
}
