package handlers

import (
	"net/http"
	"time"

	"safecity-dashboard/be/config"
	"safecity-dashboard/be/logger"
	"safecity-dashboard/be/middleware"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const roleAdmin = "admin"

type AuthHandler struct {
	jwtConfig config.JWTConfig
	now       func() time.Time
	log       *zap.Logger
}

func NewAuthHandler(jwtConfig config.JWTConfig) *AuthHandler {
	return &AuthHandler{
		jwtConfig: jwtConfig,
		now:       time.Now,
		log:       logger.GetLoggerWith(logger.NameAuth),
	}
}

type LoginRequest struct {
	Username string `json:"username" zog:"username"`
	Password string `json:"password" zog:"password"`
}

var loginRequestSchema = z.Struct(z.Shape{
	"Username": z.String().Required(),
	"Password": z.String().Required(),
})

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type UserResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	if !h.jwtConfig.AuthEnabled() {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Authentication is disabled"})
		return
	}

	var req LoginRequest
	if errs := loginRequestSchema.Parse(zhttp.Request(c.Request), &req); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Username and password are required"})
		return
	}

	if req.Username != h.jwtConfig.AdminUsername ||
		bcrypt.CompareHashAndPassword([]byte(h.jwtConfig.AdminPasswordHash), []byte(req.Password)) != nil {
		h.log.Warn("Failed login attempt", zap.String("username", req.Username), zap.String("client_ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid username or password"})
		return
	}

	expiry, err := time.ParseDuration(h.jwtConfig.Expiry)
	if err != nil || expiry <= 0 {
		expiry = 24 * time.Hour
	}
	expiresAt := h.now().Add(expiry)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": req.Username,
		"role":     roleAdmin,
		"exp":      expiresAt.Unix(),
	})
	tokenString, err := token.SignedString([]byte(h.jwtConfig.Secret))
	if err != nil {
		h.log.Error("Failed to sign token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to generate token"})
		return
	}

	h.log.Info("Admin logged in", zap.String("username", req.Username))
	c.JSON(http.StatusOK, LoginResponse{
		Token:     tokenString,
		ExpiresAt: expiresAt,
		User:      UserResponse{Username: req.Username, Role: roleAdmin},
	})
}

// GetMe runs behind AuthMiddleware; with auth disabled there is no user.
func (h *AuthHandler) GetMe(c *gin.Context) {
	if !h.jwtConfig.AuthEnabled() {
		c.JSON(http.StatusOK, gin.H{"auth_enabled": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"auth_enabled": true,
		"user": UserResponse{
			Username: c.GetString(middleware.ContextUsername),
			Role:     c.GetString(middleware.ContextRole),
		},
	})
}
