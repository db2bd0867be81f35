package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"r2-dashboard/internal/config"
	"r2-dashboard/internal/domain/appconfig"
	"r2-dashboard/internal/utils/platformerrors"
)

// CredentialSource resolves the current storage credentials.
type CredentialSource interface {
	Credentials(ctx context.Context) (appconfig.Credentials, error)
}

// ClientFactory builds S3 clients for R2 and reuses the client of the current
// credential set. A rotation yields a new client on the next call.
type ClientFactory struct {
	source CredentialSource
	region string
	log    zerolog.Logger

	mu          sync.Mutex
	fingerprint string
	client      *s3.Client
}

func NewClientFactory(cfg *config.Config, source CredentialSource, log zerolog.Logger) *ClientFactory {
	return &ClientFactory{
		source: source,
		region: cfg.R2Region,
		log:    log.With().Str("component", "r2-client-factory").Logger(),
	}
}

// Client returns a client for the currently resolved credentials.
func (f *ClientFactory) Client(ctx context.Context) (*s3.Client, error) {
	creds, err := f.source.Credentials(ctx)
	if err != nil {
		return nil, err
	}
	if !creds.Complete() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeValidation,
			"R2 credentials are not configured; complete setup first", nil, "f92c5a1e-7d3b-4e60-8b4f-a1c6e0d59b27")
	}

	fingerprint := creds.Fingerprint()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.client != nil && f.fingerprint == fingerprint {
		return f.client, nil
	}

	client, err := NewClient(ctx, creds, f.region)
	if err != nil {
		return nil, err
	}
	if f.client != nil {
		f.log.Info().Str("fingerprint", fingerprint).Msg("storage credentials changed, client rebuilt")
	}
	f.client, f.fingerprint = client, fingerprint
	return client, nil
}

// NewClient builds an S3 client for creds without caching it.
func NewClient(ctx context.Context, creds appconfig.Credentials, region string) (*s3.Client, error) {
	if region == "" {
		region = "auto"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := creds.S3Endpoint()
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	}), nil
}
