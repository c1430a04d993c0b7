package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/multielectric/mesupply/internal/models"
	"github.com/multielectric/mesupply/internal/store"
)

func (s *Server) listProducts(c *gin.Context) {
	products, err := s.store.ListProducts(c.Request.Context(), c.Query("category"), c.Query("q"))
	if err != nil {
		log.Printf("products: list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

type createProductRequest struct {
	SKU         string  `json:"sku" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	PriceCents  int64   `json:"price_cents" binding:"required,gt=0"`
	Currency    string  `json:"currency"`
	ImageURL    *string `json:"image_url"`
	Stock       int     `json:"stock" binding:"gte=0"`
}

func (s *Server) createProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid", "details": err.Error()})
		return
	}
	if req.Currency == "" {
		req.Currency = "usd"
	}

	prod, err := s.store.CreateProduct(c.Request.Context(), store.ProductParams{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
	})
	if errors.Is(err, store.ErrDuplicateSKU) {
		c.JSON(http.StatusConflict, gin.H{"error": "SKU already exists"})
		return
	}
	if err != nil {
		log.Printf("products: create failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	log.Printf("audit: product_create by=%s sku=%s", currentIdentity(c).ID, prod.SKU)
	c.JSON(http.StatusOK, gin.H{"product": prod})
}

type updateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	PriceCents  *int64  `json:"price_cents"`
	Currency    *string `json:"currency"`
	ImageURL    *string `json:"image_url"`
	Stock       *int    `json:"stock"`
}

func (s *Server) updateProduct(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid", "details": err.Error()})
		return
	}
	if req.PriceCents != nil && *req.PriceCents <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
		return
	}
	if req.Stock != nil && *req.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stock"})
		return
	}

	prod, err := s.store.UpdateProduct(c.Request.Context(), id, store.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
	})
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	if err != nil {
		log.Printf("products: update %s failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	log.Printf("audit: product_update by=%s id=%s", currentIdentity(c).ID, id)
	c.JSON(http.StatusOK, gin.H{"product": prod})
}

func (s *Server) deleteProduct(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	err := s.store.DeleteProduct(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	if err != nil {
		log.Printf("products: delete %s failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	log.Printf("audit: product_delete by=%s id=%s", currentIdentity(c).ID, id)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.store.Categories(c.Request.Context())
	if err != nil {
		log.Printf("products: categories failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list categories"})
		return
	}
	if categories == nil {
		categories = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
