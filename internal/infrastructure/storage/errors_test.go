package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"

	"r2-dashboard/internal/utils/platformerrors"
)

func TestMapErrorTranslatesAPICodes(t *testing.T) {
	tests := []struct {
		code string
		want platformerrors.ErrorType
	}{
		{code: "NoSuchBucket", want: platformerrors.ErrorTypeNotFound},
		{code: "NoSuchKey", want: platformerrors.ErrorTypeNotFound},
		{code: "BucketAlreadyExists", want: platformerrors.ErrorTypeConflict},
		{code: "BucketAlreadyOwnedByYou", want: platformerrors.ErrorTypeConflict},
		{code: "BucketNotEmpty", want: platformerrors.ErrorTypeConflict},
		{code: "AccessDenied", want: platformerrors.ErrorTypeForbidden},
		{code: "InvalidBucketName", want: platformerrors.ErrorTypeValidation},
		{code: "EntityTooLarge", want: platformerrors.ErrorTypeTooLarge},
		{code: "InternalError", want: platformerrors.ErrorTypeExternal},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := mapError(context.Background(), "create bucket", &smithy.GenericAPIError{Code: tt.code, Message: "upstream"})
			assert.True(t, platformerrors.IsErrorType(err, tt.want), "%v", err)
		})
	}
}

func TestMapErrorPassesThrough(t *testing.T) {
	assert.NoError(t, mapError(context.Background(), "noop", nil))

	err := mapError(context.Background(), "list", context.Canceled)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeInternal))

	wrapped := mapError(context.Background(), "list", errors.New("dial tcp: refused"))
	assert.Same(t, wrapped, mapError(context.Background(), "again", wrapped))
}
