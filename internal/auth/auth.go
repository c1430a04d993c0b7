// Package auth issues and verifies the signed employee session tokens that
// gate every portal endpoint.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// ParseRole validates a raw role string from a request body.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleEmployee:
		return Role(s), true
	}
	return "", false
}

type Permissions struct {
	IsAdmin            bool `json:"isAdmin"`
	CanViewRevenue     bool `json:"canViewRevenue"`
	CanManageUsers     bool `json:"canManageUsers"`
	CanManageInventory bool `json:"canManageInventory"`
	CanViewInventory   bool `json:"canViewInventory"`
	CanUpdateOrders    bool `json:"canUpdateOrders"`
	CanViewClients     bool `json:"canViewClients"`
	CanDeleteClients   bool `json:"canDeleteClients"`
	CanAccessReports   bool `json:"canAccessReports"`
	CanAccessSettings  bool `json:"canAccessSettings"`
}

// PermissionsForRole maps a role to its fixed permission set.
func PermissionsForRole(role Role) Permissions {
	if role == RoleAdmin {
		return Permissions{
			IsAdmin:            true,
			CanViewRevenue:     true,
			CanManageUsers:     true,
			CanManageInventory: true,
			CanViewInventory:   true,
			CanUpdateOrders:    true,
			CanViewClients:     true,
			CanDeleteClients:   true,
			CanAccessReports:   true,
			CanAccessSettings:  true,
		}
	}
	return Permissions{
		CanViewInventory: true,
		CanUpdateOrders:  true,
		CanViewClients:   true,
	}
}

// Identity is the authenticated employee attached to each request.
type Identity struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        Role        `json:"role"`
	Permissions Permissions `json:"permissions"`
}

type claims struct {
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        Role        `json:"role"`
	Permissions Permissions `json:"permissions"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid token")

// Service signs and verifies HS256 session tokens.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Service{secret: []byte(secret), ttl: ttl}
}

// TTL is the token lifetime, also used for the session cookie max-age.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Sign issues a session token for the identity.
func (s *Service) Sign(me Identity) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Name:        me.Name,
		Email:       me.Email,
		Role:        me.Role,
		Permissions: me.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   me.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a session token and returns its identity.
func (s *Service) Verify(tokenString string) (*Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return &Identity{
		ID:          c.Subject,
		Name:        c.Name,
		Email:       c.Email,
		Role:        c.Role,
		Permissions: c.Permissions,
	}, nil
}
