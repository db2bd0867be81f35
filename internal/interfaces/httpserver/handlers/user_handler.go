package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"r2-dashboard/internal/domain/user"
	"r2-dashboard/internal/infrastructure/auth"
	"r2-dashboard/internal/interfaces/httpserver/requests"
	"r2-dashboard/internal/interfaces/httpserver/responses"
	"r2-dashboard/internal/utils/platformerrors"
)

// UserHandler exposes account management.
type UserHandler struct {
	users UserService
	log   zerolog.Logger
}

func NewUserHandler(users UserService, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		users: users,
		log:   log.With().Str("handler", "user").Logger(),
	}
}

// Get godoc
// @Summary      Get account
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  responses.UserResponse
// @Failure      404  {object}  platformerrors.HTTPErrorResponse
// @Security     BearerAuth
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	u, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.BuildUserResponse(u))
}

// Update godoc
// @Summary      Update account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "User ID"
// @Param        request  body      requests.UpdateUserRequest  true  "Fields to change"
// @Success      200      {object}  responses.UserResponse
// @Failure      400      {object}  platformerrors.HTTPErrorResponse
// @Failure      409      {object}  platformerrors.HTTPErrorResponse
// @Security     BearerAuth
// @Router       /api/users/{id} [patch]
func (h *UserHandler) Update(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	var req requests.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	u, err := h.users.Update(c.Request.Context(), c.Param("id"), req.ToDomain())
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.BuildUserResponse(u))
}

// Delete godoc
// @Summary      Delete account
// @Tags         users
// @Produce      json
// @Param        id   path  string  true  "User ID"
// @Success      204
// @Failure      404  {object}  platformerrors.HTTPErrorResponse
// @Security     BearerAuth
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.Status(http.StatusNoContent)
}

// authorize lets admins manage every account and other roles only their own.
func (h *UserHandler) authorize(c *gin.Context) bool {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Role == user.RoleAdmin || principal.UserID == c.Param("id") {
		return true
	}
	platformerrors.WriteForbidden(c, "not allowed to manage this account")
	return false
}
