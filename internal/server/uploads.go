package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// presignUpload is a placeholder until object storage is provisioned.
// Clients should treat 501 as "uploads disabled".
func (s *Server) presignUpload(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{
		"error": "Not Implemented",
		"hint":  "object storage is not configured for this deployment",
	})
}
