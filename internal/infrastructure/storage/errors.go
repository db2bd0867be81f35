package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/smithy-go"

	"r2-dashboard/internal/utils/platformerrors"
)

// mapError classifies a storage API error. Provider messages are kept in the
// wrapped error and only a short description is exposed.
func mapError(ctx context.Context, operation string, err error) error {
	if err == nil {
		return nil
	}
	var platformErr *platformerrors.PlatformError
	if errors.As(err, &platformErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeInternal,
			operation+" was interrupted", err, "1a7c3e9f-5b20-4d84-b6e1-0f9d2c8a7b53")
	}

	errorType := platformerrors.ErrorTypeExternal
	message := fmt.Sprintf("%s failed", operation)

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket":
			errorType, message = platformerrors.ErrorTypeNotFound, "bucket not found"
		case "NoSuchKey", "NotFound":
			errorType, message = platformerrors.ErrorTypeNotFound, "object not found"
		case "BucketAlreadyExists", "BucketAlreadyOwnedByYou":
			errorType, message = platformerrors.ErrorTypeConflict, "bucket already exists"
		case "BucketNotEmpty":
			errorType, message = platformerrors.ErrorTypeConflict, "bucket is not empty"
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			errorType, message = platformerrors.ErrorTypeForbidden, "access to the storage API was denied"
		case "InvalidBucketName":
			errorType, message = platformerrors.ErrorTypeValidation, "invalid bucket name"
		case "EntityTooLarge":
			errorType, message = platformerrors.ErrorTypeTooLarge, "object is too large"
		default:
			message = fmt.Sprintf("%s failed: %s", operation, apiErr.ErrorCode())
		}
	}

	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, errorType, message, err,
		"6e0d4b8a-2f71-4c35-9a6e-d8b1f3c07e24")
}
