package objects

import (
	"context"
	"io"
	"strings"
	"time"

	"r2-dashboard/internal/domain/search"
)

// Object is a single stored key as returned by listings.
type Object struct {
	Key          string    `json:"key"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	SizeHuman    string    `json:"sizeHuman"`
	LastModified time.Time `json:"lastModified"`
	ETag         string    `json:"etag"`
	ContentType  string    `json:"contentType,omitempty"`
	Category     Category  `json:"category"`
}

// NewObject fills the derived fields of an object from its storage attributes.
func NewObject(key string, size int64, lastModified time.Time, etag string) Object {
	return Object{
		Key:          key,
		Name:         BaseName(key),
		Size:         size,
		SizeHuman:    search.FormatFileSize(float64(size)),
		LastModified: lastModified,
		ETag:         strings.Trim(etag, `"`),
		Category:     CategoryOf(key),
	}
}

// IsFolderMarker reports whether the key is a zero-byte directory placeholder.
func (o Object) IsFolderMarker() bool {
	return strings.HasSuffix(o.Key, "/") && o.Size == 0
}

// BaseName returns the last path segment of key, ignoring a trailing slash.
func BaseName(key string) string {
	trimmed := strings.TrimSuffix(key, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

// Page is one filtered listing response.
type Page struct {
	Objects               []Object `json:"objects"`
	Prefixes              []string `json:"prefixes"`
	NextContinuationToken string   `json:"nextContinuationToken,omitempty"`
	IsTruncated           bool     `json:"isTruncated"`
	Count                 int      `json:"count"`
	Scanned               int      `json:"scanned"`
}

// ListInput is a single upstream list call.
type ListInput struct {
	Bucket            string
	Prefix            string
	Delimiter         string
	ContinuationToken string
	MaxKeys           int
}

// UpstreamPage is one raw page from the storage API.
type UpstreamPage struct {
	Objects        []Object
	CommonPrefixes []string
	NextToken      string
	IsTruncated    bool
}

// Stream is an object body with its response metadata.
type Stream struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
	ETag          string
	LastModified  time.Time
}

// PutInput describes an object write.
type PutInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
}

// DeleteFailure reports a key the storage API refused to delete.
type DeleteFailure struct {
	Key     string `json:"key"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// DeleteResult summarises a bulk delete.
type DeleteResult struct {
	Deleted []string        `json:"deleted"`
	Errors  []DeleteFailure `json:"errors"`
}

// PresignedURL is a time-limited download link.
type PresignedURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Storage defines the object operations the service needs from the provider.
type Storage interface {
	ListObjects(ctx context.Context, input ListInput) (*UpstreamPage, error)
	PutObject(ctx context.Context, input PutInput) (*Object, error)
	GetObject(ctx context.Context, bucket, key string) (*Stream, error)
	DeleteObject(ctx context.Context, bucket, key string) error
	DeleteObjects(ctx context.Context, bucket string, keys []string) (*DeleteResult, error)
	PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}
