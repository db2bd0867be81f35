// Package appconfig stores dashboard settings and resolves provider credentials.
package appconfig

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	KeyAccountID       = "R2_ACCOUNT_ID"
	KeyAccessKeyID     = "R2_ACCESS_KEY_ID"
	KeySecretAccessKey = "R2_SECRET_ACCESS_KEY"
	KeyEndpoint        = "R2_ENDPOINT"
	KeyAPIToken        = "CLOUDFLARE_API_TOKEN"
	KeySetupCompleted  = "SETUP_COMPLETED"
)

// Entry is a persisted configuration value.
type Entry struct {
	ID        uint
	Key       string
	Value     string
	IsSecret  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository persists configuration entries. Upsert replaces the value of an
// existing key.
type Repository interface {
	List(ctx context.Context) ([]Entry, error)
	Upsert(ctx context.Context, entries []Entry) error
}

// Credentials are the resolved storage provider settings.
type Credentials struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	APIToken        string
}

// CredentialsFrom picks the credential keys out of a resolved value map.
func CredentialsFrom(values map[string]string) Credentials {
	return Credentials{
		AccountID:       values[KeyAccountID],
		AccessKeyID:     values[KeyAccessKeyID],
		SecretAccessKey: values[KeySecretAccessKey],
		Endpoint:        values[KeyEndpoint],
		APIToken:        values[KeyAPIToken],
	}
}

// Complete reports whether the S3 API can be called with c.
func (c Credentials) Complete() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != "" && (c.AccountID != "" || c.Endpoint != "")
}

// S3Endpoint returns the configured endpoint or the account's default R2 endpoint.
func (c Credentials) S3Endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
}

// Fingerprint identifies a credential set without exposing the secrets.
func (c Credentials) Fingerprint() string {
	sum := sha256.Sum256([]byte(c.AccountID + "\x00" + c.AccessKeyID + "\x00" + c.SecretAccessKey + "\x00" + c.S3Endpoint()))
	return hex.EncodeToString(sum[:8])
}

// Entries renders c as config entries, skipping empty fields.
func (c Credentials) Entries() []Entry {
	fields := []Entry{
		{Key: KeyAccountID, Value: c.AccountID},
		{Key: KeyAccessKeyID, Value: c.AccessKeyID},
		{Key: KeySecretAccessKey, Value: c.SecretAccessKey, IsSecret: true},
		{Key: KeyEndpoint, Value: c.Endpoint},
		{Key: KeyAPIToken, Value: c.APIToken, IsSecret: true},
	}
	entries := fields[:0]
	for _, entry := range fields {
		if entry.Value != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}
