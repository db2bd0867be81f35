package storage

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"r2-dashboard/internal/config"
	"r2-dashboard/internal/domain/appconfig"
)

// Verifier checks candidate credentials with a live ListBuckets call.
type Verifier struct {
	region string
}

func NewVerifier(cfg *config.Config) *Verifier {
	return &Verifier{region: cfg.R2Region}
}

// Verify returns the number of buckets visible with creds.
func (v *Verifier) Verify(ctx context.Context, creds appconfig.Credentials) (int, error) {
	client, err := NewClient(ctx, creds, v.region)
	if err != nil {
		return 0, err
	}
	out, err := client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return 0, mapError(ctx, "list_buckets", err)
	}
	return len(out.Buckets), nil
}
