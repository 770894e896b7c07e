package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/phonewise/phonewise-be/internal/api/middleware"
	"github.com/phonewise/phonewise-be/internal/db"
)

// AdminStore is the database access the admin routes need.
type AdminStore interface {
	GetAdminByEmail(ctx context.Context, email string) (*db.AdminUser, error)
	CreatePhone(ctx context.Context, p *db.Phone) error
	GetAnalyticsSummary(ctx context.Context) (*db.AnalyticsSummary, error)
}

type AdminHandler struct {
	store     AdminStore
	jwtSecret string
}

func NewAdminHandler(store AdminStore, jwtSecret string) *AdminHandler {
	return &AdminHandler{store: store, jwtSecret: jwtSecret}
}

func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin")
	admin.POST("/login", h.Login)

	protected := admin.Group("")
	protected.Use(middleware.RequireAdmin(h.jwtSecret))
	protected.POST("/phones", h.CreatePhone)
	protected.GET("/analytics", h.GetAnalytics)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	admin, err := h.store.GetAdminByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		log.Printf("Failed to look up admin %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.generateToken(admin)
	if err != nil {
		log.Printf("Failed to generate token for %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"email": admin.Email,
	})
}

func (h *AdminHandler) CreatePhone(c *gin.Context) {
	var phone db.Phone
	if err := c.ShouldBindJSON(&phone); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone payload"})
		return
	}
	if phone.Brand == "" || phone.Model == "" || phone.PriceINR <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "brand, model and price_inr are required"})
		return
	}

	if err := h.store.CreatePhone(c.Request.Context(), &phone); err != nil {
		log.Printf("Failed to create phone %s %s: %v", phone.Brand, phone.Model, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create phone"})
		return
	}

	c.JSON(http.StatusCreated, phone)
}

func (h *AdminHandler) GetAnalytics(c *gin.Context) {
	summary, err := h.store.GetAnalyticsSummary(c.Request.Context())
	if err != nil {
		log.Printf("Failed to get analytics summary: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve analytics"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// generateToken signs a 7 day admin token
func (h *AdminHandler) generateToken(admin *db.AdminUser) (string, error) {
	claims := middleware.JWTClaims{
		AdminID: admin.ID,
		Email:   admin.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour * 7)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
