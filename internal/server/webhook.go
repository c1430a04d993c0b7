package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/multielectric/mesupply/internal/payments"
)

// handleStripeWebhook ingests asynchronous payment events. The status codes
// drive the provider's redelivery: 400 means the event is rejected for good,
// 500 means processing failed and the delivery should be retried.
func (s *Server) handleStripeWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusBadRequest, "Bad Request")
		return
	}

	err = s.ingestor.Ingest(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if errors.Is(err, payments.ErrBadSignature) {
		log.Printf("webhook: signature verification failed: %v", err)
		c.String(http.StatusBadRequest, "Bad Request")
		return
	}
	if err != nil {
		log.Printf("webhook: processing failed, expecting redelivery: %v", err)
		c.String(http.StatusInternalServerError, "Internal Error")
		return
	}

	c.String(http.StatusOK, "ok")
}
