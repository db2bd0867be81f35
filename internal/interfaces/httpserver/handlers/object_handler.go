package handlers

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"r2-dashboard/internal/config"
	"r2-dashboard/internal/domain/objects"
	"r2-dashboard/internal/infrastructure/metrics"
	"r2-dashboard/internal/interfaces/httpserver/requests"
	"r2-dashboard/internal/interfaces/httpserver/responses"
	"r2-dashboard/internal/utils/platformerrors"
)

// multipartOverhead is the allowance for form boundaries and headers on top of
// the file size limit.
const multipartOverhead = 1 << 20

// ObjectService is the object capability used by the handler.
type ObjectService interface {
	List(ctx context.Context, q objects.ListQuery) (*objects.Page, error)
	Upload(ctx context.Context, in objects.UploadInput) (*objects.Object, error)
	Download(ctx context.Context, bucket, key string) (*objects.Stream, error)
	Delete(ctx context.Context, bucket, key string) error
	DeleteMany(ctx context.Context, bucket string, keys []string) (*objects.DeleteResult, error)
	Presign(ctx context.Context, bucket, key string) (*objects.PresignedURL, error)
}

// ObjectHandler exposes object endpoints of a bucket.
type ObjectHandler struct {
	service        ObjectService
	maxUploadBytes int64
	log            zerolog.Logger
}

func NewObjectHandler(cfg *config.Config, service ObjectService, log zerolog.Logger) *ObjectHandler {
	return &ObjectHandler{
		service:        service,
		maxUploadBytes: cfg.MaxUploadBytes,
		log:            log.With().Str("handler", "object").Logger(),
	}
}

// List godoc
// @Summary      List objects
// @Description  Lists one page of objects with filters the storage API does not support natively. q accepts type:, size>, size<, after: and before: operators; explicit parameters win over q.
// @Tags         objects
// @Produce      json
// @Param        name               path   string  true   "Bucket name"
// @Param        q                  query  string  false  "Search string"
// @Param        prefix             query  string  false  "Key prefix"
// @Param        delimiter          query  string  false  "Folder delimiter, usually /"
// @Param        filename           query  string  false  "Case-insensitive name substring"
// @Param        fileType           query  string  false  "image, document, code, media, archive"
// @Param        minSize            query  string  false  "Minimum size, e.g. 10kb"
// @Param        maxSize            query  string  false  "Maximum size, e.g. 2GB"
// @Param        dateFrom           query  string  false  "Modified on or after (YYYY-MM-DD or RFC3339)"
// @Param        dateTo             query  string  false  "Modified on or before (YYYY-MM-DD or RFC3339)"
// @Param        continuationToken  query  string  false  "Token from the previous page"
// @Param        maxKeys            query  int     false  "Page size (max 1000)"
// @Param        sortBy             query  string  false  "name, size, lastModified or type"
// @Param        sortOrder          query  string  false  "asc or desc"
// @Success      200  {object}  responses.ObjectListResponse
// @Failure      400  {object}  platformerrors.HTTPErrorResponse
// @Failure      404  {object}  platformerrors.HTTPErrorResponse
// @Security     BearerAuth
// @Router       /api/buckets/{name}/objects [get]
func (h *ObjectHandler) List(c *gin.Context) {
	query, err := objects.BuildListQuery(objects.RawQuery{
		Bucket:            c.Param("name"),
		Q:                 c.Query("q"),
		Prefix:            c.Query("prefix"),
		Delimiter:         c.Query("delimiter"),
		Filename:          c.Query("filename"),
		FileType:          c.Query("fileType"),
		MinSize:           c.Query("minSize"),
		MaxSize:           c.Query("maxSize"),
		DateFrom:          c.Query("dateFrom"),
		DateTo:            c.Query("dateTo"),
		ContinuationToken: c.Query("continuationToken"),
		MaxKeys:           c.Query("maxKeys"),
		SortBy:            c.Query("sortBy"),
		SortOrder:         c.Query("sortOrder"),
	})
	if err != nil {
		platformerrors.WriteValidationError(c, err.Error())
		return
	}

	page, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	metrics.RecordListing(page.Scanned, page.Count)
	c.JSON(http.StatusOK, responses.BuildObjectListResponse(query.Bucket, query.Prefix, page))
}

// Upload godoc
// @Summary      Upload object
// @Description  Uploads the multipart file part. The key is path joined with the file name when path is empty or ends with /, otherwise path itself.
// @Tags         objects
// @Accept       multipart/form-data
// @Produce      json
// @Param        name  path      string  true   "Bucket name"
// @Param        path  query     string  false  "Target folder or key"
// @Param        file  formData  file    true   "File"
// @Success      201   {object}  responses.UploadResponse
// @Failure      400   {object}  platformerrors.HTTPErrorResponse
// @Failure      413   {object}  platformerrors.HTTPErrorResponse
// @Security     BearerAuth
// @Router       /api/buckets/{name}/objects [post]
func (h *ObjectHandler) Upload(c *gin.Context) {
	bucket := c.Param("name")
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}

	header, err := c.FormFile("file")
	if err != nil {
		metrics.RecordUpload("error", 0)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			platformerrors.WriteError(c, platformerrors.NewError(c.Request.Context(), platformerrors.LayerHandler,
				platformerrors.ErrorTypeTooLarge, "file exceeds max upload size", err, "b7d20e9f-4c13-4a6b-8e5d-f1c9a3b07e62"), h.log)
			return
		}
		platformerrors.WriteValidationError(c, "multipart field 'file' is required")
		return
	}

	file, err := header.Open()
	if err != nil {
		metrics.RecordUpload("error", 0)
		platformerrors.WriteError(c, platformerrors.NewError(c.Request.Context(), platformerrors.LayerHandler,
			platformerrors.ErrorTypeValidation, "uploaded file cannot be read", err, "2e8a61c4-d9f7-4b30-a5e2-7c0f4d9b1a86"), h.log)
		return
	}
	defer file.Close()

	path := c.Query("path")
	if path == "" {
		path = c.PostForm("path")
	}
	obj, err := h.service.Upload(c.Request.Context(), objects.UploadInput{
		Bucket:      bucket,
		Path:        path,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		metrics.RecordUpload("error", 0)
		platformerrors.WriteError(c, err, h.log)
		return
	}
	metrics.RecordUpload("success", header.Size)
	c.JSON(http.StatusCreated, responses.UploadResponse{Bucket: bucket, Object: obj})
}

// Download godoc
// @Summary      Download object
// @Description  Streams the object body. inline=1 asks the browser to display it instead of saving it.
// @Tags         objects
// @Produce      octet-stream
// @Param        name    path   string  true   "Bucket name"
// @Param        key     path   string  true   "Object key"
// @Param        inline  query  string  false  "1 for inline disposition"
// @Success      200     "binary data"
// @Failure      404     {object}  platformerrors.HTTPErrorResponse
// @Security     BearerAuth
// @Router       /api/buckets/{name}/objects/{key} [get]
func (h *ObjectHandler) Download(c *gin.Context) {
	bucket, key := c.Param("name"), objectKey(c)
	stream, err := h.service.Download(c.Request.Context(), bucket, key)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	defer stream.Body.Close()

	disposition := "attachment"
	if inline := c.Query("inline"); inline == "1" || inline == "true" {
		disposition = "inline"
	}
	headers := map[string]string{
		"Content-Disposition": mime.FormatMediaType(disposition, map[string]string{"filename": objects.BaseName(key)}),
	}
	if stream.ETag != "" {
		headers["ETag"] = strconv.Quote(stream.ETag)
	}
	if !stream.LastModified.IsZero() {
		headers["Last-Modified"] = stream.LastModified.UTC().Format(http.TimeFormat)
	}
	contentType := stream.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	length := stream.ContentLength
	if length <= 0 {
		length = -1
	}
	c.DataFromReader(http.StatusOK, length, contentType, stream.Body, headers)
}

// Delete godoc
// @Summary      Delete object
// @Tags         objects
// @Produce      json
// @Param        name  path      string  true  "Bucket name"
// @Param        key   path      string  true  "Object key"
// @Success      200   {object}  responses.DeleteResponse
// @Failure      404   {object}  platformerrors.HTTPErrorResponse
// @Security     BearerAuth
// @Router       /api/buckets/{name}/objects/{key} [delete]
func (h *ObjectHandler) Delete(c *gin.Context) {
	key := objectKey(c)
	if err := h.service.Delete(c.Request.Context(), c.Param("name"), key); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.DeleteResponse{Deleted: true, Key: key})
}

// DeleteMany godoc
// @Summary      Delete objects
// @Description  Deletes up to 1000 keys; per-key failures are reported in errors.
// @Tags         objects
// @Accept       json
// @Produce      json
// @Param        name     path      string                          true  "Bucket name"
// @Param        request  body      requests.DeleteObjectsRequest  true  "Keys"
// @Success      200      {object}  objects.DeleteResult
// @Failure      400      {object}  platformerrors.HTTPErrorResponse
// @Security     BearerAuth
// @Router       /api/buckets/{name}/objects/delete [post]
func (h *ObjectHandler) DeleteMany(c *gin.Context) {
	var req requests.DeleteObjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "keys is required")
		return
	}
	result, err := h.service.DeleteMany(c.Request.Context(), c.Param("name"), req.Keys)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	if result.Deleted == nil {
		result.Deleted = []string{}
	}
	if result.Errors == nil {
		result.Errors = []objects.DeleteFailure{}
	}
	c.JSON(http.StatusOK, result)
}

// Presign godoc
// @Summary      Presign download
// @Description  Returns a time-limited GET URL for key.
// @Tags         objects
// @Produce      json
// @Param        name  path      string  true  "Bucket name"
// @Param        key   query     string  true  "Object key"
// @Success      200   {object}  responses.PresignResponse
// @Failure      400   {object}  platformerrors.HTTPErrorResponse
// @Security     BearerAuth
// @Router       /api/buckets/{name}/presign [get]
func (h *ObjectHandler) Presign(c *gin.Context) {
	key := c.Query("key")
	url, err := h.service.Presign(c.Request.Context(), c.Param("name"), key)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.PresignResponse{Key: key, URL: url.URL, ExpiresAt: url.ExpiresAt.UTC().Truncate(time.Second)})
}

func objectKey(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("key"), "/")
}
