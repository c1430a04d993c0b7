package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/multielectric/mesupply/internal/payments"
)

type createSessionRequest struct {
	Items    []payments.CartItem `json:"items"`
	Customer struct {
		Email string `json:"email"`
	} `json:"customer"`
}

// createCheckoutSession builds a provider-hosted checkout session from the
// submitted cart. Inventory and orders stay untouched until the payment
// provider confirms completion.
func (s *Server) createCheckoutSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sess, err := s.checkout.CreateSession(c.Request.Context(), req.Items, req.Customer.Email)
	if err != nil {
		var unknownErr *payments.UnknownProductError
		switch {
		case errors.Is(err, payments.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No items"})
		case errors.As(err, &unknownErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product not found"})
		default:
			log.Printf("checkout: failed to create session: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create session"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": sess.ID, "url": sess.URL})
}
