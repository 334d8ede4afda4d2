package config

import "errors"

// Sentinel kinds for configuration errors.
var (
	ErrMissingAddr        = errors.New("addr must not be empty")
	ErrUnknownStoreDriver = errors.New("store_driver must be memory or postgres")
	ErrMissingDSN         = errors.New("postgres_dsn is required for the postgres store")
	ErrUnknownBlobDriver  = errors.New("blob_driver must be memory, fs, or s3")
	ErrMissingBucket      = errors.New("s3_bucket is required for the s3 blob store")
	ErrBadCapacity        = errors.New("base_capacity must be at least 1")
)
