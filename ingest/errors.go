package ingest

import "errors"

var (
	// ErrSettingsMismatch indicates the stored embedding model or
	// dimensionality differs from the current run's. The run aborts before
	// any file is touched; pass the override flag to migrate intentionally.
	ErrSettingsMismatch = errors.New("embedding settings mismatch")

	// ErrInvalidMaxAttempts indicates maxAttempts was not positive.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrNoInputDir indicates the input directory does not exist or is not
	// a directory.
	ErrNoInputDir = errors.New("input directory not found")
)
