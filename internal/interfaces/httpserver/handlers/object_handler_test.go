package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"r2-dashboard/internal/config"
	"r2-dashboard/internal/domain/objects"
	"r2-dashboard/internal/interfaces/httpserver/handlers"
	"r2-dashboard/internal/utils/platformerrors"
)

func setupObjectTestRouter(service *MockObjectService, maxUpload int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewObjectHandler(&config.Config{MaxUploadBytes: maxUpload}, service, zerolog.Nop())
	r := gin.New()
	b := r.Group("/api/buckets")
	b.GET("/:name/objects", handler.List)
	b.POST("/:name/objects", handler.Upload)
	b.POST("/:name/objects/delete", handler.DeleteMany)
	b.GET("/:name/objects/*key", handler.Download)
	b.DELETE("/:name/objects/*key", handler.Delete)
	b.GET("/:name/presign", handler.Presign)
	return r
}

func TestObjectHandler_ListMergesSearchAndParams(t *testing.T) {
	var got objects.ListQuery
	service := &MockObjectService{
		ListFunc: func(ctx context.Context, q objects.ListQuery) (*objects.Page, error) {
			got = q
			return &objects.Page{
				Objects: []objects.Object{objects.NewObject("photos/cat.png", 2048, time.Now(), `"abc"`)},
				Count:   1,
				Scanned: 10,
			}, nil
		},
	}
	r := setupObjectTestRouter(service, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/buckets/media/objects?q=type:image+size%3E1kb&maxSize=1mb&sortBy=size&sortOrder=desc&maxKeys=50", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "media", got.Bucket)
	assert.Equal(t, 50, got.PageSize)
	assert.Equal(t, objects.CategoryImage, got.Criteria.Category)
	require.NotNil(t, got.Criteria.MinSize)
	require.NotNil(t, got.Criteria.MaxSize)
	assert.Equal(t, int64(1024), *got.Criteria.MinSize)
	assert.Equal(t, int64(1024*1024), *got.Criteria.MaxSize)
	assert.True(t, got.Sort.Descending)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, float64(10), body["scanned"])
	assert.Equal(t, "media", body["bucket"])
	assert.Equal(t, []any{}, body["prefixes"])
}

func TestObjectHandler_ListRejectsMalformedParams(t *testing.T) {
	r := setupObjectTestRouter(&MockObjectService{}, 0)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/buckets/media/objects?minSize=lots", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestObjectHandler_ListMapsMissingBucket(t *testing.T) {
	service := &MockObjectService{
		ListFunc: func(ctx context.Context, q objects.ListQuery) (*objects.Page, error) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeNotFound, "bucket not found", nil, "test")
		},
	}
	r := setupObjectTestRouter(service, 0)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/buckets/nope/objects", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body platformerrors.HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "bucket not found", body.Error.Message)
	assert.Equal(t, "not_found_error", body.Error.Type)
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestObjectHandler_Upload(t *testing.T) {
	var got objects.UploadInput
	var content string
	service := &MockObjectService{
		UploadFunc: func(ctx context.Context, in objects.UploadInput) (*objects.Object, error) {
			got = in
			data, _ := io.ReadAll(in.Body)
			content = string(data)
			obj := objects.NewObject(objects.UploadKey(in.Path, in.Filename), in.Size, time.Now(), "")
			return &obj, nil
		},
	}
	r := setupObjectTestRouter(service, 1<<20)

	body, contentType := multipartBody(t, "report.pdf", "%PDF-1.4 hello")
	req := httptest.NewRequest(http.MethodPost, "/api/buckets/docs/objects?path=reports/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "docs", got.Bucket)
	assert.Equal(t, "reports/", got.Path)
	assert.Equal(t, "report.pdf", got.Filename)
	assert.Equal(t, int64(len("%PDF-1.4 hello")), got.Size)
	assert.Equal(t, "%PDF-1.4 hello", content)
	assert.Contains(t, rec.Body.String(), `"key":"reports/report.pdf"`)
}

func TestObjectHandler_UploadRequiresFile(t *testing.T) {
	r := setupObjectTestRouter(&MockObjectService{}, 1<<20)
	req := httptest.NewRequest(http.MethodPost, "/api/buckets/docs/objects", strings.NewReader("nope"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestObjectHandler_DownloadDisposition(t *testing.T) {
	service := &MockObjectService{
		DownloadFunc: func(ctx context.Context, bucket, key string) (*objects.Stream, error) {
			assert.Equal(t, "docs", bucket)
			assert.Equal(t, "reports/q1 summary.pdf", key)
			return &objects.Stream{
				Body:          io.NopCloser(strings.NewReader("pdf-bytes")),
				ContentType:   "application/pdf",
				ContentLength: 9,
				ETag:          "abc",
			}, nil
		},
	}
	r := setupObjectTestRouter(service, 0)

	cases := []struct {
		query string
		want  string
	}{
		{"", "attachment"},
		{"?inline=1", "inline"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/buckets/docs/objects/reports/q1%20summary.pdf"+tc.query, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), tc.want), rec.Header().Get("Content-Disposition"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="q1 summary.pdf"`)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Equal(t, `"abc"`, rec.Header().Get("ETag"))
		assert.Equal(t, "pdf-bytes", rec.Body.String())
	}
}

func TestObjectHandler_DeleteMany(t *testing.T) {
	service := &MockObjectService{
		DeleteManyFunc: func(ctx context.Context, bucket string, keys []string) (*objects.DeleteResult, error) {
			return &objects.DeleteResult{Deleted: keys}, nil
		},
	}
	r := setupObjectTestRouter(service, 0)
	req := httptest.NewRequest(http.MethodPost, "/api/buckets/docs/objects/delete", strings.NewReader(`{"keys":["a.txt","b.txt"]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":["a.txt","b.txt"],"errors":[]}`, rec.Body.String())
}

func TestObjectHandler_DeleteSingle(t *testing.T) {
	var deleted string
	service := &MockObjectService{
		DeleteFunc: func(ctx context.Context, bucket, key string) error {
			deleted = bucket + ":" + key
			return nil
		},
	}
	r := setupObjectTestRouter(service, 0)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/buckets/docs/objects/a/b.txt", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "docs:a/b.txt", deleted)
}

func TestObjectHandler_Presign(t *testing.T) {
	expires := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	service := &MockObjectService{
		PresignFunc: func(ctx context.Context, bucket, key string) (*objects.PresignedURL, error) {
			return &objects.PresignedURL{URL: "https://signed/" + key, ExpiresAt: expires}, nil
		},
	}
	r := setupObjectTestRouter(service, 0)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/buckets/docs/presign?key=a.txt", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"key":"a.txt","url":"https://signed/a.txt","expiresAt":"2025-01-01T12:00:00Z"}`, rec.Body.String())
}
