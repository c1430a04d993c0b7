package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/multielectric/mesupply/internal/models"
)

const productColumns = `id, sku, name, description, category, price_cents, currency, image_url, stock, created_at, updated_at`

// ProductsByIDs resolves authoritative product rows for the given ids.
// Unknown ids are simply absent from the result; callers decide whether a
// missing id is fatal.
func (s *Store) ProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+` FROM products WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// ListProducts returns the catalog, optionally filtered by category and a
// case-insensitive substring match on name or sku.
func (s *Store) ListProducts(ctx context.Context, category, q string) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`

	var conds []string
	var args []any
	if category != "" {
		args = append(args, category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if q != "" {
		pattern := "%" + q + "%"
		args = append(args, pattern, pattern)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR sku ILIKE $%d)", len(args)-1, len(args)))
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

type ProductParams struct {
	SKU         string
	Name        string
	Description string
	Category    string
	PriceCents  int64
	Currency    string
	ImageURL    *string
	Stock       int
}

// CreateProduct inserts a catalog row. A duplicate SKU is a validation error
// surfaced as ErrDuplicateSKU.
func (s *Store) CreateProduct(ctx context.Context, p ProductParams) (*models.Product, error) {
	var prod models.Product
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (sku, name, description, category, price_cents, currency, image_url, stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+productColumns,
		p.SKU, p.Name, p.Description, p.Category, p.PriceCents, p.Currency, p.ImageURL, p.Stock).Scan(
		&prod.ID, &prod.SKU, &prod.Name, &prod.Description, &prod.Category, &prod.PriceCents,
		&prod.Currency, &prod.ImageURL, &prod.Stock, &prod.CreatedAt, &prod.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return nil, ErrDuplicateSKU
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &prod, nil
}

type ProductUpdate struct {
	Name        *string
	Description *string
	Category    *string
	PriceCents  *int64
	Currency    *string
	ImageURL    *string
	Stock       *int
}

// UpdateProduct applies a partial update. The SKU is a stable external
// identifier and cannot change.
func (s *Store) UpdateProduct(ctx context.Context, id string, u ProductUpdate) (*models.Product, error) {
	set := "updated_at = now()"
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		set += fmt.Sprintf(", %s = $%d", col, len(args))
	}
	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.Category != nil {
		add("category", *u.Category)
	}
	if u.PriceCents != nil {
		add("price_cents", *u.PriceCents)
	}
	if u.Currency != nil {
		add("currency", *u.Currency)
	}
	if u.ImageURL != nil {
		add("image_url", *u.ImageURL)
	}
	if u.Stock != nil {
		add("stock", *u.Stock)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE products SET %s WHERE id = $%d RETURNING %s`, set, len(args), productColumns)

	var prod models.Product
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&prod.ID, &prod.SKU, &prod.Name, &prod.Description, &prod.Category, &prod.PriceCents,
		&prod.Currency, &prod.ImageURL, &prod.Stock, &prod.CreatedAt, &prod.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &prod, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Categories returns the distinct non-empty product categories.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT category FROM products WHERE category <> '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.Category, &p.PriceCents,
			&p.Currency, &p.ImageURL, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
