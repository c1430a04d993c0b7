package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/multielectric/mesupply/internal/models"
)

// maxOrderListRows bounds the order listing to protect against unbounded scans.
const maxOrderListRows = 200

// sessionUniqueConstraint guards one-order-per-checkout-session idempotency.
const sessionUniqueConstraint = "orders_stripe_session_id_key"

type CustomerParams struct {
	Email   string
	Name    *string
	Phone   *string
	Address json.RawMessage
}

// OrderLine pairs an authoritative product row with the purchased quantity.
type OrderLine struct {
	Product models.Product
	Qty     int
}

type Totals struct {
	SubtotalCents int64
	TaxCents      int64
	TotalCents    int64
	Currency      string
}

type PaymentRefs struct {
	PaymentIntentID *string
	SessionID       *string
}

type CreateOrderParams struct {
	Customer CustomerParams
	Lines    []OrderLine
	Totals   Totals
	Payment  PaymentRefs
}

// FormatOrderNumber renders the public year-scoped order number, e.g.
// ME-2025-000042.
func FormatOrderNumber(year, seq int) string {
	return fmt.Sprintf("ME-%d-%06d", year, seq)
}

// UpsertCustomer inserts or updates a customer keyed by email. The latest
// supplied name/phone/address win; there is no merge.
func (s *Store) UpsertCustomer(ctx context.Context, p CustomerParams) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO customers (email, name, phone, address_json)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, phone = EXCLUDED.phone, address_json = EXCLUDED.address_json
		RETURNING id`,
		p.Email, p.Name, p.Phone, nullableJSON(p.Address)).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to upsert customer: %w", err)
	}
	return id, nil
}

func upsertCustomerTx(ctx context.Context, tx *sql.Tx, p CustomerParams) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx, `
		INSERT INTO customers (email, name, phone, address_json)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, phone = EXCLUDED.phone, address_json = EXCLUDED.address_json
		RETURNING id`,
		p.Email, p.Name, p.Phone, nullableJSON(p.Address)).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to upsert customer: %w", err)
	}
	return id, nil
}

// nextOrderNumberTx allocates the next sequence number for the given year
// inside the caller's transaction. The row is created on first use; the
// increment-and-read is a single UPDATE ... RETURNING, so two concurrent
// allocations can never observe the same value.
func nextOrderNumberTx(ctx context.Context, tx *sql.Tx, now time.Time) (string, int, int, error) {
	year := now.Year()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO order_sequences (year, seq) VALUES ($1, 0)
		ON CONFLICT (year) DO NOTHING`, year); err != nil {
		return "", 0, 0, fmt.Errorf("failed to ensure order sequence row: %w", err)
	}

	var seq int
	if err := tx.QueryRowContext(ctx, `
		UPDATE order_sequences SET seq = seq + 1 WHERE year = $1
		RETURNING seq`, year).Scan(&seq); err != nil {
		return "", 0, 0, fmt.Errorf("failed to allocate order sequence: %w", err)
	}

	return FormatOrderNumber(year, seq), year, seq, nil
}

// CreateOrder runs the whole order creation as one transaction: customer
// upsert, order number allocation, order row, item snapshots and stock
// decrement. All of it commits or none of it does.
func (s *Store) CreateOrder(ctx context.Context, p CreateOrderParams) (*models.OrderRef, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	customerID, err := upsertCustomerTx(ctx, tx, p.Customer)
	if err != nil {
		return nil, err
	}

	orderNumber, _, _, err := nextOrderNumberTx(ctx, tx, time.Now())
	if err != nil {
		return nil, err
	}

	var orderID string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (order_number, customer_id, status, subtotal_cents, tax_cents, total_cents, currency, payment_intent_id, stripe_session_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		orderNumber, customerID, models.StatusPending,
		p.Totals.SubtotalCents, p.Totals.TaxCents, p.Totals.TotalCents, p.Totals.Currency,
		p.Payment.PaymentIntentID, p.Payment.SessionID).Scan(&orderID)
	if err != nil {
		if isUniqueViolation(err, sessionUniqueConstraint) {
			return nil, ErrDuplicateSession
		}
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	for _, line := range p.Lines {
		prod := line.Product
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, sku, name, qty, unit_price_cents, line_total_cents)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			orderID, prod.ID, prod.SKU, prod.Name, line.Qty, prod.PriceCents, prod.PriceCents*int64(line.Qty)); err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}

		// Stock is clamped at zero rather than rejecting over-sell.
		if _, err := tx.ExecContext(ctx, `
			UPDATE products SET stock = GREATEST(stock - $1, 0), updated_at = now() WHERE id = $2`,
			line.Qty, prod.ID); err != nil {
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	return &models.OrderRef{ID: orderID, OrderNumber: orderNumber}, nil
}

// OrderBySessionID looks up an order by its checkout session reference. Used
// by the webhook ingester as an idempotency pre-check before creating.
func (s *Store) OrderBySessionID(ctx context.Context, sessionID string) (*models.OrderRef, error) {
	var ref models.OrderRef
	err := s.db.QueryRowContext(ctx, `
		SELECT id, order_number FROM orders WHERE stripe_session_id = $1`,
		sessionID).Scan(&ref.ID, &ref.OrderNumber)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up order by session: %w", err)
	}
	return &ref, nil
}

// ListOrders returns order summaries, newest first, optionally filtered by
// exact status and/or a case-insensitive substring match against the order
// number, customer email or customer name.
func (s *Store) ListOrders(ctx context.Context, status models.OrderStatus, q string) ([]models.OrderSummary, error) {
	query := `
		SELECT o.id, o.order_number, o.status, o.created_at, o.total_cents, o.currency, c.email, c.name
		FROM orders o
		JOIN customers c ON c.id = o.customer_id`

	var conds []string
	var args []any
	if status != "" {
		args = append(args, status)
		conds = append(conds, fmt.Sprintf("o.status = $%d", len(args)))
	}
	if q != "" {
		pattern := "%" + q + "%"
		args = append(args, pattern, pattern, pattern)
		conds = append(conds, fmt.Sprintf("(o.order_number ILIKE $%d OR c.email ILIKE $%d OR COALESCE(c.name, '') ILIKE $%d)",
			len(args)-2, len(args)-1, len(args)))
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += fmt.Sprintf(" ORDER BY o.created_at DESC LIMIT %d", maxOrderListRows)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.OrderSummary
	for rows.Next() {
		var o models.OrderSummary
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.Status, &o.CreatedAt, &o.TotalCents, &o.Currency, &o.CustomerEmail, &o.CustomerName); err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// GetOrderDetail returns one order with its customer and item snapshots.
func (s *Store) GetOrderDetail(ctx context.Context, id string) (*models.OrderDetail, error) {
	var d models.OrderDetail
	err := s.db.QueryRowContext(ctx, `
		SELECT o.id, o.order_number, o.customer_id, o.status, o.subtotal_cents, o.tax_cents, o.total_cents,
		       o.currency, o.payment_intent_id, o.stripe_session_id, o.created_at,
		       c.id, c.email, c.name, c.phone, c.address_json, c.created_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1`, id).Scan(
		&d.ID, &d.OrderNumber, &d.CustomerID, &d.Status, &d.SubtotalCents, &d.TaxCents, &d.TotalCents,
		&d.Currency, &d.PaymentIntentID, &d.SessionID, &d.CreatedAt,
		&d.Customer.ID, &d.Customer.Email, &d.Customer.Name, &d.Customer.Phone, &d.Customer.Address, &d.Customer.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, sku, name, qty, unit_price_cents, line_total_cents
		FROM order_items WHERE order_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.SKU, &item.Name, &item.Qty, &item.UnitPriceCents, &item.LineTotalCents); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		d.Items = append(d.Items, item)
	}
	return &d, rows.Err()
}

// UpdateOrderStatus moves an order to a new status, enforcing the order
// lifecycle. The current status is read under lock so concurrent updates
// serialize.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current models.OrderStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read order status: %w", err)
	}

	if !models.CanTransition(current, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, status)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`, status, id); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	return tx.Commit()
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
