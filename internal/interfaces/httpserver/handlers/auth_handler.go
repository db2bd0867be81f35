package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"r2-dashboard/internal/domain/user"
	"r2-dashboard/internal/infrastructure/auth"
	"r2-dashboard/internal/interfaces/httpserver/requests"
	"r2-dashboard/internal/interfaces/httpserver/responses"
	"r2-dashboard/internal/utils/platformerrors"
)

// UserService is the account capability used by the auth and user handlers.
type UserService interface {
	Authenticate(ctx context.Context, email, password string) (*user.User, error)
	Get(ctx context.Context, id string) (*user.User, error)
	Update(ctx context.Context, id string, in user.UpdateInput) (*user.User, error)
	Delete(ctx context.Context, id string) error
}

// SessionIssuer signs sessions and manages the session cookie.
type SessionIssuer interface {
	Issue(u *user.User) (string, time.Time, error)
	SetSessionCookie(c *gin.Context, token string, expiresAt time.Time)
	ClearSessionCookie(c *gin.Context)
}

// AuthHandler exposes login and session endpoints.
type AuthHandler struct {
	users    UserService
	sessions SessionIssuer
	log      zerolog.Logger
}

func NewAuthHandler(users UserService, sessions SessionIssuer, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		log:      log.With().Str("handler", "auth").Logger(),
	}
}

// Login godoc
// @Summary      Log in
// @Description  Returns a session token and sets it as an HttpOnly cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      requests.LoginRequest  true  "Credentials"
// @Success      200      {object}  responses.LoginResponse
// @Failure      401      {object}  platformerrors.HTTPErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req requests.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "email and password are required")
		return
	}
	u, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	token, expiresAt, err := h.sessions.Issue(u)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	h.sessions.SetSessionCookie(c, token, expiresAt)
	c.JSON(http.StatusOK, responses.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      responses.BuildUserResponse(u),
	})
}

// Logout godoc
// @Summary      Log out
// @Tags         auth
// @Success      204
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.ClearSessionCookie(c)
	c.Status(http.StatusNoContent)
}

// Me godoc
// @Summary      Current account
// @Tags         auth
// @Produce      json
// @Success      200  {object}  responses.UserResponse
// @Failure      401  {object}  platformerrors.HTTPErrorResponse
// @Security     BearerAuth
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "not logged in")
		return
	}
	u, err := h.users.Get(c.Request.Context(), principal.UserID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.BuildUserResponse(u))
}
