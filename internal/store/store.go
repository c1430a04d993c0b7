// Package store owns all durable state for the storefront: products,
// customers, orders, order items, order sequences and portal employees.
// Every mutating operation is transactional; callers never see partial writes.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/multielectric/mesupply/internal/database"
)

var (
	// ErrNotFound is returned when a row lookup matches nothing.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition is returned when an order status change is not
	// allowed by the order lifecycle.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrDuplicateSession is returned when an order already exists for the
	// checkout session, so a redelivered payment event can be acknowledged
	// without creating a second order.
	ErrDuplicateSession = errors.New("order already exists for checkout session")
	// ErrDuplicateSKU is returned when creating a product with a SKU that is
	// already taken.
	ErrDuplicateSKU = errors.New("sku already exists")
	// ErrDuplicateEmail is returned when creating an employee with an email
	// that is already taken.
	ErrDuplicateEmail = errors.New("email already exists")
)

type Store struct {
	db *database.DB
}

func New(db *database.DB) *Store {
	return &Store{db: db}
}

// isUniqueViolation reports whether err is a postgres unique constraint
// violation, optionally on a specific constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
