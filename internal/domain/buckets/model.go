package buckets

import (
	"context"
	"regexp"
	"time"
)

var namePattern = regexp.MustCompile(`^[a-z0-9.-]{3,63}$`)

// ValidName reports whether name satisfies the provider's bucket naming rule.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Bucket is a listed bucket enriched with usage approximations and domains.
type Bucket struct {
	Name                 string     `json:"name"`
	CreationDate         time.Time  `json:"creationDate"`
	PublicAccess         bool       `json:"publicAccess"`
	PublicURL            string     `json:"publicUrl,omitempty"`
	Domains              []string   `json:"domains"`
	Size                 int64      `json:"size"`
	SizeHuman            string     `json:"sizeHuman"`
	ObjectCount          int64      `json:"objectCount"`
	ClassAOperations     int64      `json:"classAOperations"`
	ClassBOperations     int64      `json:"classBOperations"`
	EstimatedMonthlyCost string     `json:"estimatedMonthlyCost"`
	StatsPartial         bool       `json:"statsPartial"`
	StatsComputedAt      *time.Time `json:"statsComputedAt,omitempty"`
}

// Info is the raw bucket entry from the storage API.
type Info struct {
	Name         string
	CreationDate time.Time
}

// Stats aggregates a bucket listing. KeyCount includes zero-byte folder markers,
// ObjectCount does not.
type Stats struct {
	Size        int64
	ObjectCount int64
	KeyCount    int64
	Partial     bool
	ComputedAt  time.Time
}

// DomainInfo describes how a bucket is exposed publicly.
type DomainInfo struct {
	PublicAccess bool
	PublicURL    string
	Domains      []string
}

// CreateInput is a create bucket request.
type CreateInput struct {
	Name         string
	PublicAccess bool
}

// Storage defines the bucket operations of the storage API.
type Storage interface {
	ListBuckets(ctx context.Context) ([]Info, error)
	CreateBucket(ctx context.Context, name string) error
	DeleteBucket(ctx context.Context, name string) error
	BucketStats(ctx context.Context, name string, maxKeys int) (*Stats, error)
}

// DomainProvider reads and changes public exposure through the account API.
type DomainProvider interface {
	Domains(ctx context.Context, bucket string) (*DomainInfo, error)
	SetPublicAccess(ctx context.Context, bucket string, enabled bool) (*DomainInfo, error)
}
