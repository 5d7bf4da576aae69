package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sia-robotics/sia-server/internal/api/http/dto"
	"github.com/sia-robotics/sia-server/internal/auth"
	"github.com/sia-robotics/sia-server/internal/users"
)

type AuthHandler struct {
	authService *auth.Service
	userService *users.Service
}

func NewAuthHandler(authService *auth.Service, userService *users.Service) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		slog.Error("Failed to login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token: result.Token,
		User:  dto.NewUserResponse(result.User),
	})
}

// Refresh trades a still-valid token for a fresh one so long-lived
// frontends survive the expiry window.
func (h *AuthHandler) Refresh(c *gin.Context) {
	userID, _ := c.Get("user_id")
	result, err := h.authService.Refresh(c.Request.Context(), userID.(string))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		slog.Error("Failed to refresh token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token: result.Token,
		User:  dto.NewUserResponse(result.User),
	})
}

// ChangePassword lets the authenticated operator rotate their own
// password after proving the current one.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := c.Get("user_id")
	err := h.userService.ChangePassword(c.Request.Context(), userID.(string), req.Current, req.Next)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrWrongPassword):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "current password does not match"})
		case errors.Is(err, users.ErrSamePassword), errors.Is(err, users.ErrPasswordTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, users.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			slog.Error("Failed to change password", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}
