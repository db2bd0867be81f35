package handlers_test

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"r2-dashboard/internal/domain/buckets"
	"r2-dashboard/internal/domain/objects"
	"r2-dashboard/internal/domain/setup"
	"r2-dashboard/internal/domain/user"
)

type MockBucketService struct {
	ListFunc   func(ctx context.Context, query string) ([]buckets.Bucket, error)
	CreateFunc func(ctx context.Context, in buckets.CreateInput) (*buckets.Bucket, error)
	DeleteFunc func(ctx context.Context, name string) error
}

func (m *MockBucketService) List(ctx context.Context, query string) ([]buckets.Bucket, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, query)
	}
	return nil, nil
}

func (m *MockBucketService) Create(ctx context.Context, in buckets.CreateInput) (*buckets.Bucket, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in)
	}
	return &buckets.Bucket{Name: in.Name}, nil
}

func (m *MockBucketService) Delete(ctx context.Context, name string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, name)
	}
	return nil
}

type MockObjectService struct {
	ListFunc       func(ctx context.Context, q objects.ListQuery) (*objects.Page, error)
	UploadFunc     func(ctx context.Context, in objects.UploadInput) (*objects.Object, error)
	DownloadFunc   func(ctx context.Context, bucket, key string) (*objects.Stream, error)
	DeleteFunc     func(ctx context.Context, bucket, key string) error
	DeleteManyFunc func(ctx context.Context, bucket string, keys []string) (*objects.DeleteResult, error)
	PresignFunc    func(ctx context.Context, bucket, key string) (*objects.PresignedURL, error)
}

func (m *MockObjectService) List(ctx context.Context, q objects.ListQuery) (*objects.Page, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, q)
	}
	return &objects.Page{}, nil
}

func (m *MockObjectService) Upload(ctx context.Context, in objects.UploadInput) (*objects.Object, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, in)
	}
	return nil, nil
}

func (m *MockObjectService) Download(ctx context.Context, bucket, key string) (*objects.Stream, error) {
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, bucket, key)
	}
	return nil, nil
}

func (m *MockObjectService) Delete(ctx context.Context, bucket, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, bucket, key)
	}
	return nil
}

func (m *MockObjectService) DeleteMany(ctx context.Context, bucket string, keys []string) (*objects.DeleteResult, error) {
	if m.DeleteManyFunc != nil {
		return m.DeleteManyFunc(ctx, bucket, keys)
	}
	return &objects.DeleteResult{}, nil
}

func (m *MockObjectService) Presign(ctx context.Context, bucket, key string) (*objects.PresignedURL, error) {
	if m.PresignFunc != nil {
		return m.PresignFunc(ctx, bucket, key)
	}
	return nil, nil
}

type MockSetupService struct {
	StatusFunc      func(ctx context.Context) (*setup.Status, error)
	CreateAdminFunc func(ctx context.Context, in setup.AdminInput) (*user.User, error)
	ConfigureR2Func func(ctx context.Context, in setup.R2Input) (*setup.R2Result, error)
}

func (m *MockSetupService) Status(ctx context.Context) (*setup.Status, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx)
	}
	return &setup.Status{}, nil
}

func (m *MockSetupService) CreateAdmin(ctx context.Context, in setup.AdminInput) (*user.User, error) {
	if m.CreateAdminFunc != nil {
		return m.CreateAdminFunc(ctx, in)
	}
	return nil, nil
}

func (m *MockSetupService) ConfigureR2(ctx context.Context, in setup.R2Input) (*setup.R2Result, error) {
	if m.ConfigureR2Func != nil {
		return m.ConfigureR2Func(ctx, in)
	}
	return &setup.R2Result{}, nil
}

type MockUserService struct {
	AuthenticateFunc func(ctx context.Context, email, password string) (*user.User, error)
	GetFunc          func(ctx context.Context, id string) (*user.User, error)
	UpdateFunc       func(ctx context.Context, id string, in user.UpdateInput) (*user.User, error)
	DeleteFunc       func(ctx context.Context, id string) error
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, email, password)
	}
	return nil, nil
}

func (m *MockUserService) Get(ctx context.Context, id string) (*user.User, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return &user.User{ID: id}, nil
}

func (m *MockUserService) Update(ctx context.Context, id string, in user.UpdateInput) (*user.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, in)
	}
	return &user.User{ID: id}, nil
}

func (m *MockUserService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type MockSessionIssuer struct {
	IssueFunc func(u *user.User) (string, time.Time, error)
	cookie    string
}

func (m *MockSessionIssuer) Issue(u *user.User) (string, time.Time, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(u)
	}
	return "token-" + u.ID, time.Now().Add(time.Hour), nil
}

func (m *MockSessionIssuer) SetSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	m.cookie = token
	c.SetCookie("r2_session", token, 3600, "/", "", false, true)
}

func (m *MockSessionIssuer) ClearSessionCookie(c *gin.Context) {
	m.cookie = ""
	c.SetCookie("r2_session", "", -1, "/", "", false, true)
}
