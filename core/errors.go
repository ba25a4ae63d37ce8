package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidStory indicates a Story failed validation.
	ErrInvalidStory = errors.New("invalid story")

	// ErrEmptyStoryID indicates a Story or SourceRecord without a story ID.
	ErrEmptyStoryID = errors.New("story id cannot be empty")

	// ErrEmptyCanonHash indicates a Story without a canonical hash.
	ErrEmptyCanonHash = errors.New("canonical hash cannot be empty")

	// ErrEmptySourcePath indicates a SourceRecord without a path.
	ErrEmptySourcePath = errors.New("source path cannot be empty")

	// ErrInvalidStatus indicates an unknown QualityStatus value.
	ErrInvalidStatus = errors.New("invalid quality status")
)
