package platformerrors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTypeStatusAndLabel(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		status    int
		label     string
	}{
		{ErrorTypeNotFound, http.StatusNotFound, "not_found_error"},
		{ErrorTypeValidation, http.StatusBadRequest, "validation_error"},
		{ErrorTypeConflict, http.StatusConflict, "conflict_error"},
		{ErrorTypeTooLarge, http.StatusRequestEntityTooLarge, "too_large_error"},
		{ErrorTypeExternal, http.StatusBadGateway, "external_error"},
		{ErrorTypeDatabaseError, http.StatusInternalServerError, "database_error"},
		{ErrorType("SOMETHING_NEW"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(string(tt.errorType), func(t *testing.T) {
			assert.Equal(t, tt.status, tt.errorType.HTTPStatus())
			assert.Equal(t, tt.label, tt.errorType.Label())
		})
	}
}

func TestAsErrorKeepsClassification(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	cause := NewError(ctx, LayerInfrastructure, ErrorTypeNotFound, "bucket not found", errors.New("NoSuchBucket"), "code-1")

	wrapped := AsError(ctx, LayerDomain, fmt.Errorf("list: %w", cause), "list objects")
	assert.Equal(t, ErrorTypeNotFound, wrapped.Type)
	assert.Equal(t, "code-1", wrapped.UUID)
	assert.Equal(t, "list objects: bucket not found", wrapped.Message)
	assert.Equal(t, "req-1", wrapped.RequestID)
	assert.True(t, IsErrorType(wrapped, ErrorTypeNotFound))
	assert.ErrorIs(t, wrapped, cause)

	plain := AsError(ctx, LayerDomain, errors.New("boom"), "list objects")
	assert.Equal(t, ErrorTypeInternal, plain.Type)
	assert.Nil(t, AsError(ctx, LayerDomain, nil, "noop"))
	assert.False(t, IsErrorType(errors.New("boom"), ErrorTypeInternal))
}

func TestErrorString(t *testing.T) {
	err := NewError(context.Background(), LayerRepository, ErrorTypeConflict, "email already registered", errors.New("duplicate key"), "c0de")
	assert.Equal(t, "repository: email already registered (CONFLICT c0de): duplicate key", err.Error())

	bare := NewError(context.Background(), LayerHandler, ErrorTypeValidation, "key is required", nil, "")
	assert.Equal(t, "handler: key is required (VALIDATION)", bare.Error())
}

func TestLogLevelFollowsType(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	NewError(context.Background(), LayerDomain, ErrorTypeNotFound, "object not found", nil, "c1").Log(log)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "c1", entry["error_code"])

	buf.Reset()
	NewError(context.Background(), LayerInfrastructure, ErrorTypeExternal, "list failed", errors.New("503"), "c2").Log(log)
	entry = nil
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "503", entry["error"])
}

func TestWriteErrorHidesCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/classified", func(c *gin.Context) {
		WriteError(c, NewError(c.Request.Context(), LayerInfrastructure, ErrorTypeExternal, "list failed", errors.New("secret upstream detail"), "c3"), zerolog.Nop())
	})
	router.GET("/plain", func(c *gin.Context) {
		WriteError(c, errors.New("secret upstream detail"), zerolog.Nop())
	})

	tests := []struct {
		path   string
		status int
		label  string
	}{
		{"/classified", http.StatusBadGateway, "external_error"},
		{"/plain", http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.NotContains(t, rec.Body.String(), "secret upstream detail")

			var body HTTPErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.label, body.Error.Type)
		})
	}
}
