package cloudflare

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"r2-dashboard/internal/config"
	"r2-dashboard/internal/domain/appconfig"
	"r2-dashboard/internal/domain/buckets"
	"r2-dashboard/internal/infrastructure/metrics"
	"r2-dashboard/internal/utils/platformerrors"
)

// CredentialSource resolves the account id and API token per call so that a
// setup rotation is picked up without restarting.
type CredentialSource interface {
	Credentials(ctx context.Context) (appconfig.Credentials, error)
}

// Client talks to the Cloudflare account API for bucket domain settings.
type Client struct {
	httpClient *resty.Client
	source     CredentialSource
	log        zerolog.Logger
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type envelope[T any] struct {
	Success bool       `json:"success"`
	Errors  []apiError `json:"errors"`
	Result  T          `json:"result"`
}

type customDomains struct {
	Domains []struct {
		Domain  string `json:"domain"`
		Enabled bool   `json:"enabled"`
	} `json:"domains"`
}

type managedDomain struct {
	Domain  string `json:"domain"`
	Enabled bool   `json:"enabled"`
}

var _ buckets.DomainProvider = (*Client)(nil)

// NewClient creates a Resty-backed account API client.
func NewClient(cfg *config.Config, source CredentialSource, log zerolog.Logger) *Client {
	return &Client{
		httpClient: resty.New().
			SetBaseURL(strings.TrimRight(cfg.CloudflareBaseURL, "/")).
			SetHeader("Content-Type", "application/json").
			SetHeader("User-Agent", "r2-dashboard/1.0").
			SetTimeout(15 * time.Second),
		source: source,
		log:    log.With().Str("component", "cloudflare-client").Logger(),
	}
}

// Domains returns the custom and managed domains of bucket. Without an API
// token the account API is not consulted and an empty result is returned.
func (c *Client) Domains(ctx context.Context, bucket string) (*buckets.DomainInfo, error) {
	creds, ok, err := c.credentials(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &buckets.DomainInfo{Domains: []string{}}, nil
	}

	var custom envelope[customDomains]
	if err := c.do(ctx, "custom_domains", creds, http.MethodGet, c.path(creds, bucket, "custom"), nil, &custom); err != nil {
		return nil, err
	}
	var managed envelope[managedDomain]
	if err := c.do(ctx, "managed_domain", creds, http.MethodGet, c.path(creds, bucket, "managed"), nil, &managed); err != nil {
		return nil, err
	}

	info := &buckets.DomainInfo{Domains: []string{}}
	for _, d := range custom.Result.Domains {
		if d.Enabled && d.Domain != "" {
			info.Domains = append(info.Domains, d.Domain)
		}
	}
	applyManaged(info, managed.Result)
	return info, nil
}

// SetPublicAccess toggles the managed r2.dev domain of bucket.
func (c *Client) SetPublicAccess(ctx context.Context, bucket string, enabled bool) (*buckets.DomainInfo, error) {
	creds, ok, err := c.credentials(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeValidation,
			"a Cloudflare API token is required to change public access", nil, "4be0d2c7-95a1-4f6e-a3d8-0c7b61e2f954")
	}

	var managed envelope[managedDomain]
	body := map[string]bool{"enabled": enabled}
	if err := c.do(ctx, "set_managed_domain", creds, http.MethodPut, c.path(creds, bucket, "managed"), body, &managed); err != nil {
		return nil, err
	}
	info := &buckets.DomainInfo{Domains: []string{}}
	applyManaged(info, managed.Result)
	c.log.Info().Str("bucket", bucket).Bool("enabled", enabled).Msg("bucket public access updated")
	return info, nil
}

func applyManaged(info *buckets.DomainInfo, managed managedDomain) {
	if !managed.Enabled || managed.Domain == "" {
		return
	}
	info.PublicAccess = true
	info.PublicURL = "https://" + managed.Domain
}

func (c *Client) credentials(ctx context.Context) (appconfig.Credentials, bool, error) {
	creds, err := c.source.Credentials(ctx)
	if err != nil {
		return creds, false, err
	}
	return creds, creds.APIToken != "" && creds.AccountID != "", nil
}

func (c *Client) path(creds appconfig.Credentials, bucket, kind string) string {
	return fmt.Sprintf("/accounts/%s/r2/buckets/%s/domains/%s", creds.AccountID, bucket, kind)
}

func (c *Client) do(ctx context.Context, op string, creds appconfig.Credentials, method, path string, body any, result any) error {
	req := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(creds.APIToken).
		SetResult(result)
	var failure envelope[struct{}]
	req.SetError(&failure)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		metrics.RecordAccountAPIRequest(op, "error")
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			"account API request failed", err, "d03f6a2b-1c87-4e95-b7a4-6f2e90c8d1b3")
	}
	if resp.IsError() {
		metrics.RecordAccountAPIRequest(op, "error")
		return c.statusError(ctx, resp.StatusCode(), failure.Errors)
	}
	metrics.RecordAccountAPIRequest(op, "success")
	return nil
}

func (c *Client) statusError(ctx context.Context, status int, errs []apiError) error {
	msg := fmt.Sprintf("account API returned status %d", status)
	if len(errs) > 0 && errs[0].Message != "" {
		msg = fmt.Sprintf("account API: %s (code %d)", errs[0].Message, errs[0].Code)
	}

	errType := platformerrors.ErrorTypeExternal
	switch status {
	case http.StatusNotFound:
		errType = platformerrors.ErrorTypeNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		errType = platformerrors.ErrorTypeForbidden
	case http.StatusBadRequest:
		errType = platformerrors.ErrorTypeValidation
	}
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, errType, msg, nil, "7a91c3e5-2f0d-48b6-9e17-c54d8b2a6f03")
}
