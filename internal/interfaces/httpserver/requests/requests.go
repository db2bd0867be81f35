package requests

import (
	"r2-dashboard/internal/domain/buckets"
	"r2-dashboard/internal/domain/setup"
	"r2-dashboard/internal/domain/user"
)

// CreateBucketRequest represents a bucket creation request
type CreateBucketRequest struct {
	Name         string `json:"name" binding:"required"`
	PublicAccess bool   `json:"publicAccess"`
}

func (r *CreateBucketRequest) ToDomain() buckets.CreateInput {
	return buckets.CreateInput{Name: r.Name, PublicAccess: r.PublicAccess}
}

// DeleteObjectsRequest lists the keys of a bulk delete
type DeleteObjectsRequest struct {
	Keys []string `json:"keys" binding:"required"`
}

// SetupAdminRequest creates the first account
type SetupAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (r *SetupAdminRequest) ToDomain() setup.AdminInput {
	return setup.AdminInput{Name: r.Name, Email: r.Email, Password: r.Password}
}

// SetupR2Request carries storage credentials
type SetupR2Request struct {
	AccountID       string `json:"accountId" binding:"required"`
	AccessKeyID     string `json:"accessKeyId" binding:"required"`
	SecretAccessKey string `json:"secretAccessKey" binding:"required"`
	Endpoint        string `json:"endpoint"`
	APIToken        string `json:"apiToken"`
}

func (r *SetupR2Request) ToDomain(reconfigure bool) setup.R2Input {
	return setup.R2Input{
		AccountID:       r.AccountID,
		AccessKeyID:     r.AccessKeyID,
		SecretAccessKey: r.SecretAccessKey,
		Endpoint:        r.Endpoint,
		APIToken:        r.APIToken,
		Reconfigure:     reconfigure,
	}
}

// LoginRequest authenticates an account
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest changes the set fields of an account
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (r *UpdateUserRequest) ToDomain() user.UpdateInput {
	return user.UpdateInput{Name: r.Name, Email: r.Email, Password: r.Password}
}
