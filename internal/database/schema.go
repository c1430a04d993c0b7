package database

// SchemaStatements is the idempotent DDL for the storefront tables. The pgx
// driver uses the extended protocol, so statements are applied one at a time.
var SchemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

	`CREATE TABLE IF NOT EXISTS products (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		sku text UNIQUE NOT NULL,
		name text NOT NULL,
		description text NOT NULL DEFAULT '',
		category text NOT NULL DEFAULT '',
		price_cents bigint NOT NULL,
		currency text NOT NULL DEFAULT 'usd',
		image_url text,
		stock integer NOT NULL DEFAULT 0,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS customers (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		email text UNIQUE NOT NULL,
		name text,
		phone text,
		address_json jsonb,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		order_number text UNIQUE NOT NULL,
		customer_id uuid NOT NULL REFERENCES customers(id),
		status text NOT NULL,
		subtotal_cents bigint NOT NULL,
		tax_cents bigint NOT NULL,
		total_cents bigint NOT NULL,
		currency text NOT NULL DEFAULT 'usd',
		payment_intent_id text,
		stripe_session_id text UNIQUE,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS order_items (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		order_id uuid NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id uuid NOT NULL REFERENCES products(id),
		sku text NOT NULL,
		name text NOT NULL,
		qty integer NOT NULL,
		unit_price_cents bigint NOT NULL,
		line_total_cents bigint NOT NULL
	)`,

	// One row per calendar year; the sole source of order number uniqueness.
	`CREATE TABLE IF NOT EXISTS order_sequences (
		year integer PRIMARY KEY,
		seq integer NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS employees (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		name text NOT NULL,
		email text UNIQUE NOT NULL,
		role text NOT NULL DEFAULT 'employee',
		status text NOT NULL DEFAULT 'Active',
		password_hash text NOT NULL,
		last_login_at timestamptz,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items (order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products (category)`,
}
