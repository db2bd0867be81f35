package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"r2-dashboard/internal/domain/setup"
	"r2-dashboard/internal/domain/user"
	"r2-dashboard/internal/infrastructure/auth"
	"r2-dashboard/internal/interfaces/httpserver/requests"
	"r2-dashboard/internal/interfaces/httpserver/responses"
	"r2-dashboard/internal/utils/platformerrors"
)

// SetupService runs the first-run bootstrap.
type SetupService interface {
	Status(ctx context.Context) (*setup.Status, error)
	CreateAdmin(ctx context.Context, in setup.AdminInput) (*user.User, error)
	ConfigureR2(ctx context.Context, in setup.R2Input) (*setup.R2Result, error)
}

// SetupHandler exposes the setup endpoints. They stay reachable before setup completed.
type SetupHandler struct {
	service     SetupService
	authEnabled bool
	log         zerolog.Logger
}

func NewSetupHandler(service SetupService, authEnabled bool, log zerolog.Logger) *SetupHandler {
	return &SetupHandler{
		service:     service,
		authEnabled: authEnabled,
		log:         log.With().Str("handler", "setup").Logger(),
	}
}

// Status godoc
// @Summary      Setup status
// @Tags         setup
// @Produce      json
// @Success      200  {object}  setup.Status
// @Router       /api/setup/status [get]
func (h *SetupHandler) Status(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context())
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, status)
}

// CreateAdmin godoc
// @Summary      Create the admin account
// @Description  Only allowed while no account exists.
// @Tags         setup
// @Accept       json
// @Produce      json
// @Param        request  body      requests.SetupAdminRequest  true  "Admin"
// @Success      201      {object}  responses.UserResponse
// @Failure      400      {object}  platformerrors.HTTPErrorResponse
// @Failure      409      {object}  platformerrors.HTTPErrorResponse
// @Router       /api/setup/admin [post]
func (h *SetupHandler) CreateAdmin(c *gin.Context) {
	var req requests.SetupAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "email and password are required")
		return
	}
	u, err := h.service.CreateAdmin(c.Request.Context(), req.ToDomain())
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusCreated, responses.BuildUserResponse(u))
}

// ConfigureR2 godoc
// @Summary      Configure storage credentials
// @Description  Verifies the credentials with a live bucket listing, stores them and completes setup. Replacing credentials after setup requires a session.
// @Tags         setup
// @Accept       json
// @Produce      json
// @Param        request  body      requests.SetupR2Request  true  "Credentials"
// @Success      200      {object}  setup.R2Result
// @Failure      400      {object}  platformerrors.HTTPErrorResponse
// @Failure      409      {object}  platformerrors.HTTPErrorResponse
// @Router       /api/setup/r2 [post]
func (h *SetupHandler) ConfigureR2(c *gin.Context) {
	var req requests.SetupR2Request
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "accountId, accessKeyId and secretAccessKey are required")
		return
	}
	_, authenticated := auth.PrincipalFromContext(c)
	result, err := h.service.ConfigureR2(c.Request.Context(), req.ToDomain(authenticated || !h.authEnabled))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, result)
}
