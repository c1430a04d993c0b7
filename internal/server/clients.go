package server

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/multielectric/mesupply/internal/models"
)

func (s *Server) listClients(c *gin.Context) {
	clients, err := s.store.ListClients(c.Request.Context())
	if err != nil {
		log.Printf("clients: list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list clients"})
		return
	}
	if clients == nil {
		clients = []models.ClientSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

func (s *Server) search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusOK, gin.H{"results": []models.SearchResult{}})
		return
	}

	results, err := s.store.Search(c.Request.Context(), q)
	if err != nil {
		log.Printf("search: query %q failed: %v", q, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
