package models

import (
	"encoding/json"
	"time"
)

// OrderStatus is the lifecycle state of an order as shown in the employee portal.
type OrderStatus string

const (
	StatusPending        OrderStatus = "Pending"
	StatusProcessing     OrderStatus = "Processing"
	StatusReadyForPickup OrderStatus = "Ready for Pickup"
	StatusFulfilled      OrderStatus = "Fulfilled"
	StatusCanceled       OrderStatus = "Canceled"
)

// ParseOrderStatus validates a raw status string from a request or query parameter.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusPending, StatusProcessing, StatusReadyForPickup, StatusFulfilled, StatusCanceled:
		return OrderStatus(s), true
	}
	return "", false
}

// Terminal reports whether no further transitions are allowed from this status.
func (s OrderStatus) Terminal() bool {
	return s == StatusFulfilled || s == StatusCanceled
}

// CanTransition reports whether an order may move from one status to another.
// The lifecycle is Pending -> Processing -> Ready for Pickup -> Fulfilled,
// with Canceled reachable from any non-terminal state.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return false
	}
	if to == StatusCanceled {
		return !from.Terminal()
	}
	switch from {
	case StatusPending:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusReadyForPickup
	case StatusReadyForPickup:
		return to == StatusFulfilled
	}
	return false
}

type Product struct {
	ID          string    `json:"id" db:"id"`
	SKU         string    `json:"sku" db:"sku"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	PriceCents  int64     `json:"price_cents" db:"price_cents"`
	Currency    string    `json:"currency" db:"currency"`
	ImageURL    *string   `json:"image_url" db:"image_url"`
	Stock       int       `json:"stock" db:"stock"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type Customer struct {
	ID        string          `json:"id" db:"id"`
	Email     string          `json:"email" db:"email"`
	Name      *string         `json:"name" db:"name"`
	Phone     *string         `json:"phone" db:"phone"`
	Address   json.RawMessage `json:"address" db:"address_json"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

type Order struct {
	ID              string      `json:"id" db:"id"`
	OrderNumber     string      `json:"order_number" db:"order_number"`
	CustomerID      string      `json:"customer_id" db:"customer_id"`
	Status          OrderStatus `json:"status" db:"status"`
	SubtotalCents   int64       `json:"subtotal_cents" db:"subtotal_cents"`
	TaxCents        int64       `json:"tax_cents" db:"tax_cents"`
	TotalCents      int64       `json:"total_cents" db:"total_cents"`
	Currency        string      `json:"currency" db:"currency"`
	PaymentIntentID *string     `json:"payment_intent_id" db:"payment_intent_id"`
	SessionID       *string     `json:"stripe_session_id" db:"stripe_session_id"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
}

// OrderItem captures the sku, name and unit price at the time of sale. It is
// written once together with its parent order and never updated.
type OrderItem struct {
	ID             string `json:"id" db:"id"`
	OrderID        string `json:"order_id" db:"order_id"`
	ProductID      string `json:"product_id" db:"product_id"`
	SKU            string `json:"sku" db:"sku"`
	Name           string `json:"name" db:"name"`
	Qty            int    `json:"qty" db:"qty"`
	UnitPriceCents int64  `json:"unit_price_cents" db:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents" db:"line_total_cents"`
}

// OrderSummary is one row of the employee order list.
type OrderSummary struct {
	ID            string      `json:"id"`
	OrderNumber   string      `json:"order_number"`
	Status        OrderStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	CustomerEmail string      `json:"customer_email"`
	CustomerName  *string     `json:"customer_name"`
	TotalCents    int64       `json:"total_cents"`
	Currency      string      `json:"currency"`
}

type OrderDetail struct {
	Order
	Customer Customer    `json:"customer"`
	Items    []OrderItem `json:"items"`
}

// OrderRef identifies a created order to callers that only need its public number.
type OrderRef struct {
	ID          string `json:"id"`
	OrderNumber string `json:"order_number"`
}
