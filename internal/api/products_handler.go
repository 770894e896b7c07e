package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/phonewise/phonewise-be/internal/catalog"
	"github.com/phonewise/phonewise-be/internal/db"
)

// PhoneStore is the catalog access the product routes need.
type PhoneStore interface {
	ListPhones(ctx context.Context, limit, offset int) ([]db.Phone, error)
	SearchPhones(ctx context.Context, f db.SearchFilters, limit int) ([]db.Phone, error)
	GetPhone(ctx context.Context, id int) (*db.Phone, error)
	GetPhones(ctx context.Context, ids []int) ([]db.Phone, error)
}

type ProductsHandler struct {
	store PhoneStore
}

func NewProductsHandler(store PhoneStore) *ProductsHandler {
	return &ProductsHandler{store: store}
}

func (h *ProductsHandler) RegisterRoutes(r *gin.RouterGroup) {
	products := r.Group("/products")
	products.GET("", h.ListProducts)
	products.GET("/:id", h.GetProduct)
	products.POST("/search", h.SearchProducts)
	products.POST("/compare", h.CompareProducts)
}

func (h *ProductsHandler) ListProducts(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	filters := db.SearchFilters{
		Brand:    c.Query("brand"),
		MinPrice: queryInt(c, "min_price", 0),
		MaxPrice: queryInt(c, "max_price", 0),
		MinRAM:   queryInt(c, "min_ram", 0),
	}

	var (
		phones []db.Phone
		err    error
	)
	if filters.Brand != "" || filters.MinPrice > 0 || filters.MaxPrice > 0 || filters.MinRAM > 0 {
		phones, err = h.store.SearchPhones(c.Request.Context(), filters, limit)
	} else {
		phones, err = h.store.ListPhones(c.Request.Context(), limit, offset)
	}
	if err != nil {
		log.Printf("Failed to list products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve products"})
		return
	}
	if phones == nil {
		phones = []db.Phone{}
	}

	c.JSON(http.StatusOK, gin.H{
		"products": phones,
		"count":    len(phones),
	})
}

func (h *ProductsHandler) GetProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone ID"})
		return
	}

	phone, err := h.store.GetPhone(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Phone with ID %d not found", id)})
			return
		}
		log.Printf("Failed to get phone %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve phone"})
		return
	}

	c.JSON(http.StatusOK, phone)
}

type searchRequest struct {
	Query   string `json:"query" binding:"required"`
	Filters struct {
		Brand      string   `json:"brand"`
		MinPrice   int      `json:"min_price"`
		MaxPrice   int      `json:"max_price"`
		MinRAM     int      `json:"min_ram"`
		MinBattery int      `json:"min_battery"`
		Features   []string `json:"features"`
		Limit      int      `json:"limit"`
	} `json:"filters"`
}

func (h *ProductsHandler) SearchProducts(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	limit := req.Filters.Limit
	if limit < 1 || limit > 100 {
		limit = 10
	}
	filters := db.SearchFilters{
		Brand:      req.Filters.Brand,
		MinPrice:   req.Filters.MinPrice,
		MaxPrice:   req.Filters.MaxPrice,
		MinRAM:     req.Filters.MinRAM,
		MinBattery: req.Filters.MinBattery,
		Features:   req.Filters.Features,
		SearchText: req.Query,
	}

	phones, err := h.store.SearchPhones(c.Request.Context(), filters, limit)
	if err != nil {
		log.Printf("Failed to search products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search products"})
		return
	}
	if phones == nil {
		phones = []db.Phone{}
	}

	c.JSON(http.StatusOK, gin.H{
		"products":    phones,
		"count":       len(phones),
		"explanation": fmt.Sprintf("Found %d phones matching your search.", len(phones)),
	})
}

type compareRequest struct {
	ProductIDs []int `json:"product_ids" binding:"required"`
}

func (h *ProductsHandler) CompareProducts(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_ids is required"})
		return
	}

	if len(req.ProductIDs) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least 2 phone IDs required for comparison"})
		return
	}
	if len(req.ProductIDs) > 4 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Maximum 4 phones can be compared at once"})
		return
	}

	phones, err := h.store.GetPhones(c.Request.Context(), req.ProductIDs)
	if err != nil {
		log.Printf("Failed to fetch phones for comparison: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compare phones"})
		return
	}
	if len(phones) < 2 {
		c.JSON(http.StatusNotFound, gin.H{"error": "One or more phones not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"phones":     phones,
		"comparison": catalog.Comparison(phones),
		"summary":    catalog.ComparisonSummary(phones),
	})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
