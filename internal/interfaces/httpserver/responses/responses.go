package responses

import (
	"time"

	"r2-dashboard/internal/domain/buckets"
	"r2-dashboard/internal/domain/objects"
	"r2-dashboard/internal/domain/user"
)

// BucketListResponse lists enriched buckets
type BucketListResponse struct {
	Buckets []buckets.Bucket `json:"buckets"`
	Count   int              `json:"count"`
}

func BuildBucketListResponse(items []buckets.Bucket) *BucketListResponse {
	if items == nil {
		items = []buckets.Bucket{}
	}
	return &BucketListResponse{Buckets: items, Count: len(items)}
}

// ObjectListResponse is one filtered listing page
type ObjectListResponse struct {
	Bucket string `json:"bucket"`
	Prefix string `json:"prefix"`
	*objects.Page
}

func BuildObjectListResponse(bucket, prefix string, page *objects.Page) *ObjectListResponse {
	if page.Objects == nil {
		page.Objects = []objects.Object{}
	}
	if page.Prefixes == nil {
		page.Prefixes = []string{}
	}
	return &ObjectListResponse{Bucket: bucket, Prefix: prefix, Page: page}
}

// UploadResponse describes a stored object
type UploadResponse struct {
	Bucket string          `json:"bucket"`
	Object *objects.Object `json:"object"`
}

// DeleteResponse reports a single object or bucket deletion
type DeleteResponse struct {
	Deleted bool   `json:"deleted"`
	Key     string `json:"key,omitempty"`
	Bucket  string `json:"bucket,omitempty"`
}

// PresignResponse contains a presigned download URL
type PresignResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func BuildUserResponse(u *user.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// LoginResponse carries a session token
type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	User      *UserResponse `json:"user"`
}
