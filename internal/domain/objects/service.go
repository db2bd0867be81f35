package objects

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"r2-dashboard/internal/config"
	"r2-dashboard/internal/utils/platformerrors"
)

// sniffLen matches the read limit mimetype uses for detection.
const sniffLen = 3072

const maxBulkDelete = 1000

// Service implements the object-listing proxy and object transfers.
type Service struct {
	storage       Storage
	maxPages      int
	maxUploadSize int64
	presignTTL    time.Duration
	log           zerolog.Logger
}

func NewService(cfg *config.Config, storage Storage, log zerolog.Logger) *Service {
	maxPages := cfg.ListMaxUpstreamPages
	if maxPages <= 0 {
		maxPages = 1
	}
	return &Service{
		storage:       storage,
		maxPages:      maxPages,
		maxUploadSize: cfg.MaxUploadBytes,
		presignTTL:    cfg.PresignTTL,
		log:           log.With().Str("component", "objects-service").Logger(),
	}
}

// List returns a filtered, sorted page.
//
// Upstream pages are consumed whole until PageSize matches were collected, the
// listing is exhausted, or maxPages upstream calls were made. With maxPages == 1 a
// strict filter can yield a short or empty page while NextContinuationToken is
// still set; callers keep paging until the token is empty.
func (s *Service) List(ctx context.Context, q ListQuery) (*Page, error) {
	if q.Bucket == "" {
		return nil, validationError(ctx, "bucket is required", "5d0f6b1e-2c47-4b8a-9e13-7a64f2c90b51")
	}
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pageSize = min(pageSize, MaxPageSize)

	page := &Page{Objects: []Object{}, Prefixes: []string{}}
	seenPrefixes := make(map[string]struct{})
	token := q.ContinuationToken

	for calls := 0; calls < s.maxPages; calls++ {
		upstream, err := s.storage.ListObjects(ctx, ListInput{
			Bucket:            q.Bucket,
			Prefix:            q.Prefix,
			Delimiter:         q.Delimiter,
			ContinuationToken: token,
			MaxKeys:           pageSize,
		})
		if err != nil {
			return nil, err
		}

		page.Scanned += len(upstream.Objects)
		for _, p := range upstream.CommonPrefixes {
			if _, ok := seenPrefixes[p]; !ok {
				seenPrefixes[p] = struct{}{}
				page.Prefixes = append(page.Prefixes, p)
			}
		}
		for _, o := range upstream.Objects {
			if o.Key == q.Prefix && o.IsFolderMarker() {
				continue
			}
			if q.Criteria.Matches(o) {
				page.Objects = append(page.Objects, o)
			}
		}

		if !upstream.IsTruncated || upstream.NextToken == "" {
			token = ""
			break
		}
		token = upstream.NextToken
		if len(page.Objects) >= pageSize {
			break
		}
	}

	page.NextContinuationToken = token
	page.IsTruncated = token != ""
	Sort(page.Objects, q.Sort)
	page.Count = len(page.Objects)

	s.log.Debug().
		Str("bucket", q.Bucket).
		Str("prefix", q.Prefix).
		Int("scanned", page.Scanned).
		Int("count", page.Count).
		Bool("truncated", page.IsTruncated).
		Msg("listed objects")
	return page, nil
}

// UploadInput is a single uploaded form file.
type UploadInput struct {
	Bucket      string
	Path        string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadKey derives the object key. An empty path or one ending in "/" is treated
// as a folder and the filename is appended; any other path is the full key.
func UploadKey(dir, filename string) string {
	dir = strings.TrimLeft(dir, "/")
	filename = path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if dir == "" || strings.HasSuffix(dir, "/") {
		return dir + filename
	}
	return dir
}

// Upload stores one file and returns the created object.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*Object, error) {
	if in.Bucket == "" {
		return nil, validationError(ctx, "bucket is required", "0b7a2e4c-9d31-4f6e-8a25-c1f3d7e80a94")
	}
	if in.Filename == "" && (in.Path == "" || strings.HasSuffix(in.Path, "/")) {
		return nil, validationError(ctx, "file name is required", "e6c14d3a-70b2-4f59-a8e1-3d92b5c6f017")
	}
	if s.maxUploadSize > 0 && in.Size > s.maxUploadSize {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeTooLarge,
			fmt.Sprintf("file exceeds max size of %d bytes", s.maxUploadSize), nil, "9f2d6e1b-43a8-4c70-b5d9-e18a2f3c6b04")
	}

	key := UploadKey(in.Path, in.Filename)
	if key == "" || key == "." {
		return nil, validationError(ctx, "object key is empty", "41e8c7b2-5a3d-4f96-9c07-b2d6e1a84f35")
	}

	body, contentType, err := sniffContentType(in.Body, in.ContentType)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"failed to read upload", err, "c3a9f0d2-6e18-4b57-a4c1-8d2e7f9b0a63")
	}

	obj, err := s.storage.PutObject(ctx, PutInput{
		Bucket:      in.Bucket,
		Key:         key,
		Body:        body,
		Size:        in.Size,
		ContentType: contentType,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("bucket", in.Bucket).Str("key", key).Int64("size", in.Size).Msg("object uploaded")
	return obj, nil
}

// sniffContentType keeps a specific declared type and otherwise detects one from
// the first bytes of body. The returned reader yields the full body.
func sniffContentType(body io.Reader, declared string) (io.Reader, string, error) {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return body, declared, nil
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, "", err
	}
	head = head[:n]
	contentType := mimetype.Detect(head).String()

	// Seekable bodies are rewound so the storage client can sign and retry them.
	if seeker, ok := body.(io.ReadSeeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return nil, "", err
		}
		return seeker, contentType, nil
	}
	return io.MultiReader(bytes.NewReader(head), body), contentType, nil
}

// Download opens an object body for streaming.
func (s *Service) Download(ctx context.Context, bucket, key string) (*Stream, error) {
	if err := requireKey(ctx, bucket, key); err != nil {
		return nil, err
	}
	return s.storage.GetObject(ctx, bucket, key)
}

// Delete removes a single object.
func (s *Service) Delete(ctx context.Context, bucket, key string) error {
	if err := requireKey(ctx, bucket, key); err != nil {
		return err
	}
	return s.storage.DeleteObject(ctx, bucket, key)
}

// DeleteMany removes up to 1000 keys in one request.
func (s *Service) DeleteMany(ctx context.Context, bucket string, keys []string) (*DeleteResult, error) {
	if bucket == "" {
		return nil, validationError(ctx, "bucket is required", "7e1b3c9a-2f46-4d85-b0a7-6c5e9d1f2a38")
	}
	unique := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, key)
	}
	if len(unique) == 0 {
		return nil, validationError(ctx, "at least one key is required", "a85d2f07-1c9e-4b36-8e4a-f07b3d6c92e1")
	}
	if len(unique) > maxBulkDelete {
		return nil, validationError(ctx, fmt.Sprintf("at most %d keys can be deleted at once", maxBulkDelete), "d2f6a9c1-8b04-4e7d-a3c5-95e0b1f7d426")
	}
	return s.storage.DeleteObjects(ctx, bucket, unique)
}

// Presign returns a time-limited GET URL for key.
func (s *Service) Presign(ctx context.Context, bucket, key string) (*PresignedURL, error) {
	if err := requireKey(ctx, bucket, key); err != nil {
		return nil, err
	}
	url, err := s.storage.PresignGet(ctx, bucket, key, s.presignTTL)
	if err != nil {
		return nil, err
	}
	return &PresignedURL{URL: url, ExpiresAt: time.Now().Add(s.presignTTL).UTC()}, nil
}

func requireKey(ctx context.Context, bucket, key string) error {
	if bucket == "" {
		return validationError(ctx, "bucket is required", "3b9e0c6d-f15a-4a72-8d4e-0c7b2a6f9e13")
	}
	if key == "" {
		return validationError(ctx, "object key is required", "f4a1d8e3-6b29-4c05-9e7a-2d8c3b5f1a76")
	}
	return nil
}

func validationError(ctx context.Context, message, uuid string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, message, nil, uuid)
}
