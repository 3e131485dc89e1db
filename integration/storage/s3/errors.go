package s3

import "errors"

// Error variables classify object storage failures so callers can branch
// on them without inspecting AWS SDK error types.
var (
	// ErrInvalidConfig indicates a missing bucket or region.
	ErrInvalidConfig = errors.New("s3: bucket and region are required")

	// ErrObjectNotFound indicates the requested object does not exist.
	ErrObjectNotFound = errors.New("s3: object not found")

	// ErrBucketNotFound indicates the configured bucket does not exist.
	ErrBucketNotFound = errors.New("s3: bucket not found")

	// ErrAccessDenied indicates the credentials lack permission for the
	// operation.
	ErrAccessDenied = errors.New("s3: access denied")

	// ErrOperationTimeout indicates the operation exceeded its deadline.
	ErrOperationTimeout = errors.New("s3: operation timed out")

	// ErrOperationCanceled indicates the caller canceled the operation.
	ErrOperationCanceled = errors.New("s3: operation canceled")

	// ErrServiceUnavailable indicates a retryable service-side condition.
	ErrServiceUnavailable = errors.New("s3: service unavailable")

	// ErrInvalidKey indicates an object key that escapes its prefix.
	ErrInvalidKey = errors.New("s3: invalid object key")
)
