package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"academy-svc/config"
	"academy-svc/middleware"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler issues and clears the admin JWT cookie.
type AuthHandler struct {
	cfg    config.Admin
	logger *zap.Logger
}

func NewAuthHandler(cfg config.Admin, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{cfg: cfg, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /admin/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	emailOK := subtle.ConstantTimeCompare([]byte(req.Email), []byte(h.cfg.Email)) == 1
	passOK := h.cfg.PasswordHash != "" &&
		bcrypt.CompareHashAndPassword([]byte(h.cfg.PasswordHash), []byte(req.Password)) == nil
	if !emailOK || !passOK {
		h.logger.Warn("Admin login rejected", zap.String("email", req.Email))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   req.Email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.cfg.TokenTTL)),
	})
	signed, err := token.SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		h.logger.Error("Failed to sign token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})
		return
	}

	c.SetCookie(middleware.AdminCookieName, signed, int(h.cfg.TokenTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged in"})
}

// Logout handles POST /admin/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.AdminCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
