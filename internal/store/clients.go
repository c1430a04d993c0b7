package store

import (
	"context"
	"fmt"

	"github.com/multielectric/mesupply/internal/models"
)

// ListClients returns customers with their order history rolled up, newest
// activity first.
func (s *Store) ListClients(ctx context.Context) ([]models.ClientSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.email, COUNT(o.id), MAX(o.created_at)
		FROM customers c
		LEFT JOIN orders o ON o.customer_id = c.id
		GROUP BY c.id, c.name, c.email
		ORDER BY MAX(o.created_at) DESC NULLS LAST, c.email ASC
		LIMIT 200`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []models.ClientSummary
	for rows.Next() {
		var c models.ClientSummary
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.TotalOrders, &c.LastOrderAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// Search runs one case-insensitive substring search across order numbers,
// customers and products, returning unified hits for the portal search box.
func (s *Store) Search(ctx context.Context, q string) ([]models.SearchResult, error) {
	pattern := "%" + q + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT 'Order', id::text, 'Order ' || order_number
		FROM orders WHERE order_number ILIKE $1
		UNION ALL
		SELECT 'Client', id::text, COALESCE(name, email)
		FROM customers WHERE email ILIKE $1 OR COALESCE(name, '') ILIKE $1
		UNION ALL
		SELECT 'Product', id::text, name
		FROM products WHERE name ILIKE $1 OR sku ILIKE $1
		LIMIT 30`, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var r models.SearchResult
		if err := rows.Scan(&r.Type, &r.ID, &r.Title); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
