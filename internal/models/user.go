package models

import "time"

// Employee is a portal user. PasswordHash never leaves the server.
type Employee struct {
	ID           string     `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	Role         string     `json:"role" db:"role"`
	Status       string     `json:"status" db:"status"`
	PasswordHash string     `json:"-" db:"password_hash"`
	LastLoginAt  *time.Time `json:"lastLogin" db:"last_login_at"`
}

const (
	UserStatusActive   = "Active"
	UserStatusInactive = "Inactive"
)

// ClientSummary is one row of the employee client list, derived from the
// customers table joined with their order history.
type ClientSummary struct {
	ID          string     `json:"id"`
	Name        *string    `json:"name"`
	Email       string     `json:"email"`
	TotalOrders int        `json:"totalOrders"`
	LastOrderAt *time.Time `json:"lastOrder"`
}

// SearchResult is one unified hit across orders, clients and products.
type SearchResult struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Title string `json:"title"`
}
