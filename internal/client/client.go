// Package client talks to the dashboard HTTP API on behalf of r2ctl.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"r2-dashboard/internal/domain/buckets"
	"r2-dashboard/internal/domain/objects"
	"r2-dashboard/internal/domain/setup"
	"r2-dashboard/internal/interfaces/httpserver/requests"
	"r2-dashboard/internal/interfaces/httpserver/responses"
	"r2-dashboard/internal/utils/platformerrors"
)

const userAgent = "r2ctl/1.0"

// APIError is a non-2xx answer of the dashboard.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("%s (%d, request %s)", msg, e.StatusCode, e.RequestID)
	}
	return fmt.Sprintf("%s (%d)", msg, e.StatusCode)
}

// Client wraps the dashboard JSON API.
type Client struct {
	baseURL    string
	token      string
	httpClient *resty.Client
	streaming  *http.Client
}

// New builds a client for server. token may be empty until login.
func New(server, token string, timeout time.Duration) *Client {
	baseURL := strings.TrimRight(server, "/")
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", userAgent).
		SetTimeout(timeout)
	if token != "" {
		httpClient.SetAuthToken(token)
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: httpClient,
		// uploads may run far longer than API calls; they are bounded by ctx instead
		streaming: &http.Client{},
	}
}

// BaseURL returns the server address the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) request(ctx context.Context, result any) *resty.Request {
	req := c.httpClient.R().
		SetContext(ctx).
		SetError(&platformerrors.HTTPErrorResponse{})
	if result != nil {
		req.SetResult(result)
	}
	return req
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("dashboard request failed: %w", err)
	}
	if !resp.IsError() {
		return nil
	}
	apiErr := &APIError{StatusCode: resp.StatusCode()}
	if body, ok := resp.Error().(*platformerrors.HTTPErrorResponse); ok && body.Error != nil {
		apiErr.Type = body.Error.Type
		apiErr.Message = body.Error.Message
		apiErr.RequestID = body.Error.RequestID
	}
	return apiErr
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (*responses.LoginResponse, error) {
	var out responses.LoginResponse
	resp, err := c.request(ctx, &out).
		SetBody(requests.LoginRequest{Email: email, Password: password}).
		Post("/api/auth/login")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the account owning the token.
func (c *Client) Me(ctx context.Context) (*responses.UserResponse, error) {
	var out responses.UserResponse
	resp, err := c.request(ctx, &out).Get("/api/auth/me")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetupStatus reports the onboarding state.
func (c *Client) SetupStatus(ctx context.Context) (*setup.Status, error) {
	var out setup.Status
	resp, err := c.request(ctx, &out).Get("/api/setup/status")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAdmin registers the first account.
func (c *Client) CreateAdmin(ctx context.Context, in requests.SetupAdminRequest) (*responses.UserResponse, error) {
	var out responses.UserResponse
	resp, err := c.request(ctx, &out).SetBody(in).Post("/api/setup/admin")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfigureR2 stores and verifies storage credentials.
func (c *Client) ConfigureR2(ctx context.Context, in requests.SetupR2Request) (*setup.R2Result, error) {
	var out setup.R2Result
	resp, err := c.request(ctx, &out).SetBody(in).Post("/api/setup/r2")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Buckets lists buckets with their stats.
func (c *Client) Buckets(ctx context.Context) ([]buckets.Bucket, error) {
	var out responses.BucketListResponse
	resp, err := c.request(ctx, &out).Get("/api/buckets")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return out.Buckets, nil
}

// CreateBucket creates a bucket.
func (c *Client) CreateBucket(ctx context.Context, name string, public bool) (*buckets.Bucket, error) {
	var out buckets.Bucket
	resp, err := c.request(ctx, &out).
		SetBody(requests.CreateBucketRequest{Name: name, PublicAccess: public}).
		Post("/api/buckets")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteBucket removes an empty bucket.
func (c *Client) DeleteBucket(ctx context.Context, name string) error {
	resp, err := c.request(ctx, nil).
		SetPathParam("name", name).
		Delete("/api/buckets/{name}")
	return check(resp, err)
}

// ListObjects fetches one listing page. params carries prefix, q, filters,
// sorting and the continuation token as listing query parameters.
func (c *Client) ListObjects(ctx context.Context, bucket string, params url.Values) (*responses.ObjectListResponse, error) {
	out := responses.ObjectListResponse{Page: &objects.Page{}}
	resp, err := c.request(ctx, &out).
		SetPathParam("name", bucket).
		SetQueryParamsFromValues(params).
		Get("/api/buckets/{name}/objects")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Download streams an object into w and returns the number of bytes written.
func (c *Client) Download(ctx context.Context, bucket, key string, w io.Writer) (int64, error) {
	resp, err := c.request(ctx, nil).
		SetDoNotParseResponse(true).
		Get(c.objectPath(bucket, key))
	if err != nil {
		return 0, fmt.Errorf("dashboard request failed: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()
	if resp.IsError() {
		return 0, decodeError(resp.StatusCode(), body)
	}
	return io.Copy(w, body)
}

// DeleteObject removes a single key.
func (c *Client) DeleteObject(ctx context.Context, bucket, key string) error {
	resp, err := c.request(ctx, nil).Delete(c.objectPath(bucket, key))
	return check(resp, err)
}

// DeleteObjects removes keys in one batch.
func (c *Client) DeleteObjects(ctx context.Context, bucket string, keys []string) (*objects.DeleteResult, error) {
	var out objects.DeleteResult
	resp, err := c.request(ctx, &out).
		SetPathParam("name", bucket).
		SetBody(requests.DeleteObjectsRequest{Keys: keys}).
		Post("/api/buckets/{name}/objects/delete")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Presign returns a temporary download URL.
func (c *Client) Presign(ctx context.Context, bucket, key string) (*responses.PresignResponse, error) {
	var out responses.PresignResponse
	resp, err := c.request(ctx, &out).
		SetPathParam("name", bucket).
		SetQueryParam("key", key).
		Get("/api/buckets/{name}/presign")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) objectPath(bucket, key string) string {
	segments := strings.Split(strings.TrimPrefix(key, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return "/api/buckets/" + url.PathEscape(bucket) + "/objects/" + strings.Join(segments, "/")
}
