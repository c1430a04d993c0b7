package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multielectric/mesupply/internal/database"
	"github.com/multielectric/mesupply/internal/models"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(&database.DB{DB: db}), mock
}

func strPtr(s string) *string { return &s }

func TestFormatOrderNumber(t *testing.T) {
	assert.Equal(t, "ME-2025-000042", FormatOrderNumber(2025, 42))
	assert.Equal(t, "ME-2024-000001", FormatOrderNumber(2024, 1))
	assert.Equal(t, "ME-2025-123456", FormatOrderNumber(2025, 123456))
	// sequences past six digits keep growing instead of wrapping
	assert.Equal(t, "ME-2025-1000000", FormatOrderNumber(2025, 1000000))
}

func sampleParams() CreateOrderParams {
	return CreateOrderParams{
		Customer: CustomerParams{Email: "buyer@example.com", Name: strPtr("Buyer")},
		Lines: []OrderLine{
			{Product: models.Product{ID: "p1", SKU: "SKU-1", Name: "Copper Cable", PriceCents: 1500, Currency: "usd", Stock: 3}, Qty: 2},
		},
		Totals:  Totals{SubtotalCents: 3000, TaxCents: 0, TotalCents: 3000, Currency: "usd"},
		Payment: PaymentRefs{PaymentIntentID: strPtr("pi_1"), SessionID: strPtr("cs_1")},
	}
}

func TestCreateOrder(t *testing.T) {
	st, mock := newMockStore(t)
	year := time.Now().Year()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO customers").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cust-1"))
	mock.ExpectExec("INSERT INTO order_sequences").
		WithArgs(year).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("UPDATE order_sequences").
		WithArgs(year).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(42))
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("order-1"))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs("order-1", "p1", "SKU-1", "Copper Cable", 2, int64(1500), int64(3000)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE products SET stock").
		WithArgs(2, "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ref, err := st.CreateOrder(context.Background(), sampleParams())
	require.NoError(t, err)
	assert.Equal(t, "order-1", ref.ID)
	assert.Equal(t, FormatOrderNumber(year, 42), ref.OrderNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderRollsBackOnStockFailure(t *testing.T) {
	st, mock := newMockStore(t)
	year := time.Now().Year()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO customers").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cust-1"))
	mock.ExpectExec("INSERT INTO order_sequences").
		WithArgs(year).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("UPDATE order_sequences").
		WithArgs(year).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(7))
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("order-1"))
	mock.ExpectExec("INSERT INTO order_items").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE products SET stock").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	_, err := st.CreateOrder(context.Background(), sampleParams())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet(), "transaction must roll back, not commit")
}

func TestCreateOrderDuplicateSession(t *testing.T) {
	st, mock := newMockStore(t)
	year := time.Now().Year()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO customers").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cust-1"))
	mock.ExpectExec("INSERT INTO order_sequences").
		WithArgs(year).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("UPDATE order_sequences").
		WithArgs(year).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(8))
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "orders_stripe_session_id_key"})
	mock.ExpectRollback()

	_, err := st.CreateOrder(context.Background(), sampleParams())
	assert.ErrorIs(t, err, ErrDuplicateSession)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderBySessionID(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, order_number FROM orders WHERE stripe_session_id").
		WithArgs("cs_1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_number"}).AddRow("order-1", "ME-2025-000001"))

	ref, err := st.OrderBySessionID(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Equal(t, "ME-2025-000001", ref.OrderNumber)

	mock.ExpectQuery("SELECT id, order_number FROM orders WHERE stripe_session_id").
		WithArgs("cs_missing").
		WillReturnError(sql.ErrNoRows)

	_, err = st.OrderBySessionID(context.Background(), "cs_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrdersStatusFilter(t *testing.T) {
	st, mock := newMockStore(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "order_number", "status", "created_at", "total_cents", "currency", "email", "name"}).
		AddRow("o2", "ME-2025-000002", "Pending", now, int64(5000), "usd", "b@example.com", nil).
		AddRow("o1", "ME-2025-000001", "Pending", now.Add(-time.Hour), int64(3000), "usd", "a@example.com", "Alice")

	mock.ExpectQuery(`o\.status = \$1(.|\n)*ORDER BY o\.created_at DESC LIMIT 200`).
		WithArgs(models.StatusPending).
		WillReturnRows(rows)

	orders, err := st.ListOrders(context.Background(), models.StatusPending, "")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ME-2025-000002", orders[0].OrderNumber)
	for _, o := range orders {
		assert.Equal(t, models.StatusPending, o.Status)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOrdersTextQuery(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(`o\.order_number ILIKE \$1 OR c\.email ILIKE \$2 OR COALESCE\(c\.name, ''\) ILIKE \$3`).
		WithArgs("%ME-2025%", "%ME-2025%", "%ME-2025%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_number", "status", "created_at", "total_cents", "currency", "email", "name"}))

	_, err := st.ListOrders(context.Background(), "", "ME-2025")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderStatus(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM orders").
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("Pending"))
	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(models.StatusProcessing, "o1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := st.UpdateOrderStatus(context.Background(), "o1", models.StatusProcessing)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderStatusInvalidTransition(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM orders").
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("Fulfilled"))
	mock.ExpectRollback()

	err := st.UpdateOrderStatus(context.Background(), "o1", models.StatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderStatusNotFound(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM orders").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := st.UpdateOrderStatus(context.Background(), "missing", models.StatusProcessing)
	assert.ErrorIs(t, err, ErrNotFound)
}
