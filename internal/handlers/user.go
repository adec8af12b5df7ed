package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-manager-api/internal/dto"
	"github.com/yukikurage/task-manager-api/internal/services"
	"github.com/yukikurage/task-manager-api/internal/utils"
)

// UserHandler serves the administrator user-management endpoints.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	registerValidators()
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers returns a page of users, optionally filtered by search and role.
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	params, err := utils.GetPaginationParams(c)
	if err != nil {
		respondError(c, err)
		return
	}

	users, total, err := h.userService.List(c.Request.Context(), actor, services.ListUsersInput{
		Search:     utils.GetSearchTerm(c),
		Role:       optionalQuery(c, "role"),
		Pagination: params,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserListResponse(users, params, total))
}

// GetUser returns one user.
func (h *UserHandler) GetUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// CreateUser adds a user.
func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), actor, services.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// UpdateUser applies a partial update to a user.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	fields, ok := bindPatch(c, &req)
	if !ok {
		return
	}

	user, err := h.userService.Update(c.Request.Context(), actor, id, services.UpdateUserInput{
		Fields:   fields,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteUser soft-deletes a user.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
