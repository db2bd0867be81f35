package middlewares

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"r2-dashboard/internal/utils/platformerrors"
)

// SetupChecker reports whether first-run setup finished.
type SetupChecker interface {
	Completed(ctx context.Context) (bool, error)
}

// SetupGate rejects requests with 503 until setup completed. Attach it only to the
// routes that need configured storage.
func SetupGate(checker SetupChecker, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		done, err := checker.Completed(c.Request.Context())
		if err != nil {
			platformerrors.WriteError(c, err, log)
			return
		}
		if !done {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, platformerrors.HTTPErrorResponse{
				Error: &platformerrors.HTTPErrorDetail{
					Message:   "setup is not completed",
					Type:      "setup_required",
					RequestID: RequestIDFromContext(c),
				},
			})
			return
		}
		c.Next()
	}
}
