package platformerrors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HTTPErrorResponse represents the standard error response format.
type HTTPErrorResponse struct {
	Error *HTTPErrorDetail `json:"error"`
}

// HTTPErrorDetail contains error details for HTTP responses.
type HTTPErrorDetail struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteError writes err as an HTTP response. Only the PlatformError message is exposed;
// wrapped causes stay in the logs.
func WriteError(c *gin.Context, err error, log zerolog.Logger) {
	platformErr, ok := As(err)
	if !ok {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("unclassified error")
		c.AbortWithStatusJSON(http.StatusInternalServerError, HTTPErrorResponse{
			Error: &HTTPErrorDetail{
				Message:   "internal server error",
				Type:      ErrorTypeInternal.Label(),
				RequestID: RequestIDFromContext(c.Request.Context()),
			},
		})
		return
	}

	platformErr.Log(log)
	c.AbortWithStatusJSON(platformErr.Type.HTTPStatus(), HTTPErrorResponse{
		Error: &HTTPErrorDetail{
			Message:   platformErr.Message,
			Type:      platformErr.Type.Label(),
			Code:      platformErr.UUID,
			RequestID: platformErr.RequestID,
		},
	})
}

// WriteValidationError writes a 400 Bad Request response.
func WriteValidationError(c *gin.Context, message string) {
	writeTyped(c, ErrorTypeValidation, message)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(c *gin.Context, message string) {
	writeTyped(c, ErrorTypeUnauthorized, message)
}

// WriteForbidden writes a 403 Forbidden response.
func WriteForbidden(c *gin.Context, message string) {
	writeTyped(c, ErrorTypeForbidden, message)
}

func writeTyped(c *gin.Context, errorType ErrorType, message string) {
	c.AbortWithStatusJSON(errorType.HTTPStatus(), HTTPErrorResponse{
		Error: &HTTPErrorDetail{
			Message:   message,
			Type:      errorType.Label(),
			RequestID: RequestIDFromContext(c.Request.Context()),
		},
	})
}
