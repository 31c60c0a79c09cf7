package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeventure/warden/core"
	"github.com/codeventure/warden/service"
)

// AuthHandlers contains HTTP handlers for auth and user endpoints.
type AuthHandlers struct {
	authService *service.SessionService
}

// NewAuthHandlers creates new auth handlers.
func NewAuthHandlers(authService *service.SessionService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// Register handles account registration.
func (h *AuthHandlers) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	pair, err := h.authService.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
		case errors.Is(err, core.ErrRegistryUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}

	setRefreshCookie(c, pair.RefreshToken, pair.RefreshTTL)
	c.JSON(http.StatusCreated, gin.H{
		"access_token": pair.AccessToken,
		"token_type":   "Bearer",
	})
}

// Login handles password login.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	pair, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		case errors.Is(err, core.ErrRegistryUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		}
		return
	}

	setRefreshCookie(c, pair.RefreshToken, pair.RefreshTTL)
	c.JSON(http.StatusOK, gin.H{
		"access_token": pair.AccessToken,
		"token_type":   "Bearer",
	})
}

// Refresh rotates the refresh token from the cookie and issues a new pair.
func (h *AuthHandlers) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(RefreshCookieName)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidToken):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		case errors.Is(err, core.ErrRegistryUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		}
		return
	}

	setRefreshCookie(c, pair.RefreshToken, pair.RefreshTTL)
	c.JSON(http.StatusOK, gin.H{
		"access_token": pair.AccessToken,
		"token_type":   "Bearer",
	})
}

// Logout revokes the refresh token and clears its cookie. Succeeds even when
// the token is expired or already revoked.
func (h *AuthHandlers) Logout(c *gin.Context) {
	refreshToken, err := c.Cookie(RefreshCookieName)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	if err := h.authService.Logout(c.Request.Context(), refreshToken); err != nil {
		if errors.Is(err, core.ErrRegistryUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}

	clearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated principal.
func (h *AuthHandlers) Me(c *gin.Context) {
	subjectID := c.GetString(subjectKey)

	principal, err := h.authService.Principal(c.Request.Context(), subjectID)
	if err != nil {
		if errors.Is(err, core.ErrPrincipalNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       principal.ID,
		"username": principal.Username,
		"email":    principal.Email,
	})
}

// User returns the public view of a principal.
func (h *AuthHandlers) User(c *gin.Context) {
	principal, err := h.authService.Principal(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, core.ErrPrincipalNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       principal.ID,
		"username": principal.Username,
	})
}
