package schema

import (
	"errors"
)

var (
	ErrNotExist = errors.New("not_exist_record")
	ErrNotFound = errors.New("not_found")
	ErrExist    = errors.New("s3_bucket_exist")

	ErrDataTooBig   = errors.New("artifact_data_too_big")
	ErrNullData     = errors.New("null_data")
	ErrNoAccess     = errors.New("no_access")
	ErrNotImplement = errors.New("method not implement")
)
