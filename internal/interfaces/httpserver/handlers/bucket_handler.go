package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"r2-dashboard/internal/domain/buckets"
	"r2-dashboard/internal/interfaces/httpserver/requests"
	"r2-dashboard/internal/interfaces/httpserver/responses"
	"r2-dashboard/internal/utils/platformerrors"
)

// BucketService is the bucket capability used by the handler.
type BucketService interface {
	List(ctx context.Context, query string) ([]buckets.Bucket, error)
	Create(ctx context.Context, in buckets.CreateInput) (*buckets.Bucket, error)
	Delete(ctx context.Context, name string) error
}

// BucketHandler exposes bucket endpoints.
type BucketHandler struct {
	service BucketService
	log     zerolog.Logger
}

func NewBucketHandler(service BucketService, log zerolog.Logger) *BucketHandler {
	return &BucketHandler{
		service: service,
		log:     log.With().Str("handler", "bucket").Logger(),
	}
}

// List godoc
// @Summary      List buckets
// @Description  Lists buckets whose name contains query, enriched with size, operation and cost approximations and domains.
// @Tags         buckets
// @Produce      json
// @Param        query  query     string  false  "Case-insensitive name filter"
// @Success      200    {object}  responses.BucketListResponse
// @Failure      401    {object}  platformerrors.HTTPErrorResponse
// @Failure      502    {object}  platformerrors.HTTPErrorResponse
// @Security     BearerAuth
// @Router       /api/buckets [get]
func (h *BucketHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), c.Query("query"))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.BuildBucketListResponse(items))
}

// Create godoc
// @Summary      Create bucket
// @Tags         buckets
// @Accept       json
// @Produce      json
// @Param        request  body      requests.CreateBucketRequest  true  "Bucket"
// @Success      201      {object}  buckets.Bucket
// @Failure      400      {object}  platformerrors.HTTPErrorResponse
// @Failure      409      {object}  platformerrors.HTTPErrorResponse
// @Security     BearerAuth
// @Router       /api/buckets [post]
func (h *BucketHandler) Create(c *gin.Context) {
	var req requests.CreateBucketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "name is required")
		return
	}
	bucket, err := h.service.Create(c.Request.Context(), req.ToDomain())
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusCreated, bucket)
}

// Delete godoc
// @Summary      Delete bucket
// @Description  Deletes an empty bucket.
// @Tags         buckets
// @Produce      json
// @Param        name  path      string  true  "Bucket name"
// @Success      200   {object}  responses.DeleteResponse
// @Failure      404   {object}  platformerrors.HTTPErrorResponse
// @Failure      409   {object}  platformerrors.HTTPErrorResponse
// @Security     BearerAuth
// @Router       /api/buckets/{name} [delete]
func (h *BucketHandler) Delete(c *gin.Context) {
	name := c.Param("name")
	if err := h.service.Delete(c.Request.Context(), name); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.DeleteResponse{Deleted: true, Bucket: name})
}
