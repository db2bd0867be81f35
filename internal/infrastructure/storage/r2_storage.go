package storage

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"r2-dashboard/internal/domain/buckets"
	"r2-dashboard/internal/domain/objects"
	"r2-dashboard/internal/infrastructure/metrics"
	"r2-dashboard/internal/infrastructure/observability"
)

// ClientProvider hands out the S3 client for the current credentials.
type ClientProvider interface {
	Client(ctx context.Context) (*s3.Client, error)
}

// R2Storage implements the object and bucket ports on top of the S3 API.
type R2Storage struct {
	clients ClientProvider
	tracer  trace.Tracer
	log     zerolog.Logger
}

func NewR2Storage(clients ClientProvider, log zerolog.Logger) *R2Storage {
	return &R2Storage{
		clients: clients,
		tracer:  observability.Tracer(),
		log:     log.With().Str("component", "r2-storage").Logger(),
	}
}

// observe starts a span for operation. The returned finish func records metrics,
// closes the span and maps err.
func (s *R2Storage) observe(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error) error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "r2."+operation, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
	return ctx, func(err error) error {
		defer span.End()
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, operation+" failed")
		}
		metrics.RecordStorageOperation(operation, status, time.Since(start).Seconds())
		return mapError(ctx, operation, err)
	}
}

func (s *R2Storage) ListObjects(ctx context.Context, in objects.ListInput) (*objects.UpstreamPage, error) {
	ctx, finish := s.observe(ctx, "list_objects", attribute.String("r2.bucket", in.Bucket), attribute.String("r2.prefix", in.Prefix))
	client, err := s.clients.Client(ctx)
	if err != nil {
		return nil, finish(err)
	}

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(in.Bucket),
		MaxKeys: aws.Int32(int32(in.MaxKeys)),
	}
	if in.Prefix != "" {
		input.Prefix = aws.String(in.Prefix)
	}
	if in.Delimiter != "" {
		input.Delimiter = aws.String(in.Delimiter)
	}
	if in.ContinuationToken != "" {
		input.ContinuationToken = aws.String(in.ContinuationToken)
	}

	out, err := client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, finish(err)
	}
	finish(nil)

	page := &objects.UpstreamPage{
		Objects:     make([]objects.Object, 0, len(out.Contents)),
		NextToken:   aws.ToString(out.NextContinuationToken),
		IsTruncated: aws.ToBool(out.IsTruncated),
	}
	for _, item := range out.Contents {
		page.Objects = append(page.Objects, objects.NewObject(
			aws.ToString(item.Key),
			aws.ToInt64(item.Size),
			aws.ToTime(item.LastModified),
			aws.ToString(item.ETag),
		))
	}
	for _, prefix := range out.CommonPrefixes {
		page.CommonPrefixes = append(page.CommonPrefixes, aws.ToString(prefix.Prefix))
	}
	return page, nil
}

func (s *R2Storage) PutObject(ctx context.Context, in objects.PutInput) (*objects.Object, error) {
	ctx, finish := s.observe(ctx, "put_object", attribute.String("r2.bucket", in.Bucket), attribute.Int64("r2.size", in.Size))
	client, err := s.clients.Client(ctx)
	if err != nil {
		return nil, finish(err)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(in.Bucket),
		Key:    aws.String(in.Key),
		Body:   in.Body,
	}
	if in.Size > 0 {
		input.ContentLength = aws.Int64(in.Size)
	}
	if in.ContentType != "" {
		input.ContentType = aws.String(in.ContentType)
	}

	out, err := client.PutObject(ctx, input)
	if err != nil {
		return nil, finish(err)
	}
	finish(nil)

	obj := objects.NewObject(in.Key, in.Size, time.Now().UTC(), aws.ToString(out.ETag))
	obj.ContentType = in.ContentType
	return &obj, nil
}

func (s *R2Storage) GetObject(ctx context.Context, bucket, key string) (*objects.Stream, error) {
	ctx, finish := s.observe(ctx, "get_object", attribute.String("r2.bucket", bucket))
	client, err := s.clients.Client(ctx)
	if err != nil {
		return nil, finish(err)
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, finish(err)
	}
	finish(nil)

	return &objects.Stream{
		Body:          out.Body,
		ContentType:   aws.ToString(out.ContentType),
		ContentLength: aws.ToInt64(out.ContentLength),
		ETag:          strings.Trim(aws.ToString(out.ETag), `"`),
		LastModified:  aws.ToTime(out.LastModified),
	}, nil
}

func (s *R2Storage) DeleteObject(ctx context.Context, bucket, key string) error {
	ctx, finish := s.observe(ctx, "delete_object", attribute.String("r2.bucket", bucket))
	client, err := s.clients.Client(ctx)
	if err != nil {
		return finish(err)
	}

	_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return finish(err)
}

func (s *R2Storage) DeleteObjects(ctx context.Context, bucket string, keys []string) (*objects.DeleteResult, error) {
	ctx, finish := s.observe(ctx, "delete_objects", attribute.String("r2.bucket", bucket), attribute.Int("r2.keys", len(keys)))
	client, err := s.clients.Client(ctx)
	if err != nil {
		return nil, finish(err)
	}

	identifiers := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		identifiers = append(identifiers, types.ObjectIdentifier{Key: aws.String(key)})
	}
	out, err := client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &types.Delete{Objects: identifiers, Quiet: aws.Bool(false)},
	})
	if err != nil {
		return nil, finish(err)
	}
	finish(nil)

	result := &objects.DeleteResult{Deleted: []string{}, Errors: []objects.DeleteFailure{}}
	for _, deleted := range out.Deleted {
		result.Deleted = append(result.Deleted, aws.ToString(deleted.Key))
	}
	for _, failure := range out.Errors {
		result.Errors = append(result.Errors, objects.DeleteFailure{
			Key:     aws.ToString(failure.Key),
			Code:    aws.ToString(failure.Code),
			Message: aws.ToString(failure.Message),
		})
	}
	return result, nil
}

func (s *R2Storage) PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	ctx, finish := s.observe(ctx, "presign_get", attribute.String("r2.bucket", bucket))
	client, err := s.clients.Client(ctx)
	if err != nil {
		return "", finish(err)
	}

	req, err := s3.NewPresignClient(client).PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", finish(err)
	}
	finish(nil)
	return req.URL, nil
}

func (s *R2Storage) ListBuckets(ctx context.Context) ([]buckets.Info, error) {
	ctx, finish := s.observe(ctx, "list_buckets")
	client, err := s.clients.Client(ctx)
	if err != nil {
		return nil, finish(err)
	}

	out, err := client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, finish(err)
	}
	finish(nil)

	infos := make([]buckets.Info, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		infos = append(infos, buckets.Info{Name: aws.ToString(b.Name), CreationDate: aws.ToTime(b.CreationDate)})
	}
	return infos, nil
}

func (s *R2Storage) CreateBucket(ctx context.Context, name string) error {
	ctx, finish := s.observe(ctx, "create_bucket", attribute.String("r2.bucket", name))
	client, err := s.clients.Client(ctx)
	if err != nil {
		return finish(err)
	}
	_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(name)})
	return finish(err)
}

func (s *R2Storage) DeleteBucket(ctx context.Context, name string) error {
	ctx, finish := s.observe(ctx, "delete_bucket", attribute.String("r2.bucket", name))
	client, err := s.clients.Client(ctx)
	if err != nil {
		return finish(err)
	}
	_, err = client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(name)})
	return finish(err)
}

// BucketStats walks the bucket listing. It stops after maxKeys keys and marks the
// result partial.
func (s *R2Storage) BucketStats(ctx context.Context, name string, maxKeys int) (*buckets.Stats, error) {
	ctx, finish := s.observe(ctx, "bucket_stats", attribute.String("r2.bucket", name))
	client, err := s.clients.Client(ctx)
	if err != nil {
		return nil, finish(err)
	}

	stats := &buckets.Stats{}
	input := &s3.ListObjectsV2Input{Bucket: aws.String(name)}
	if maxKeys > 0 {
		input.MaxKeys = aws.Int32(int32(min(maxKeys, 1000)))
	}
	paginator := s3.NewListObjectsV2Paginator(client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, finish(err)
		}
		for _, item := range page.Contents {
			size := aws.ToInt64(item.Size)
			stats.KeyCount++
			stats.Size += size
			if !(strings.HasSuffix(aws.ToString(item.Key), "/") && size == 0) {
				stats.ObjectCount++
			}
		}
		if maxKeys > 0 && stats.KeyCount >= int64(maxKeys) && paginator.HasMorePages() {
			stats.Partial = true
			break
		}
	}
	finish(nil)

	stats.ComputedAt = time.Now().UTC()
	return stats, nil
}

// Health checks that the storage API accepts the current credentials.
func (s *R2Storage) Health(ctx context.Context) error {
	ctx, finish := s.observe(ctx, "health")
	client, err := s.clients.Client(ctx)
	if err != nil {
		return finish(err)
	}
	_, err = client.ListBuckets(ctx, &s3.ListBucketsInput{})
	return finish(err)
}
