package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-manager-api/internal/constants"
	"github.com/yukikurage/task-manager-api/internal/dto"
	"github.com/yukikurage/task-manager-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	tokenTTL    time.Duration
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, tokenTTL time.Duration) *AuthHandler {
	registerValidators()
	return &AuthHandler{
		authService: authService,
		tokenTTL:    tokenTTL,
	}
}

// Login exchanges a username and password for a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   constants.TokenTypeBearer,
		ExpiresIn:   int64(h.tokenTTL.Seconds()),
	})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateCurrentUser lets the caller change their own username, email or password.
func (h *AuthHandler) UpdateCurrentUser(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	fields, ok := bindPatch(c, &req)
	if !ok {
		return
	}

	updated, err := h.authService.UpdateProfile(c.Request.Context(), user, services.UpdateProfileInput{
		Fields:   fields,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*updated))
}
