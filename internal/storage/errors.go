package storage

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// Operation names used in OperationError.
const (
	OpList    = "list objects"
	OpUpload  = "put object"
	OpPresign = "presign get object"
)

// ErrBucketRequired is returned before any provider call when no bucket is configured.
var ErrBucketRequired = errors.New("storage bucket is required")

// OperationError reports a failed call to the storage provider.
type OperationError struct {
	Op     string
	Bucket string
	Key    string
	// Code is the provider error code (for example NoSuchBucket), empty when unavailable.
	Code string
	Err  error
}

func (e *OperationError) Error() string {
	target := e.Bucket
	if e.Key != "" {
		target += "/" + e.Key
	}
	if e.Code != "" {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, target, e.Code, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, target, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

func wrapError(op, bucket, key string, err error) error {
	if err == nil {
		return nil
	}
	opErr := &OperationError{Op: op, Bucket: bucket, Key: key, Err: err}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		opErr.Code = apiErr.ErrorCode()
	}
	return opErr
}
