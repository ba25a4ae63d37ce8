package core

import "fmt"

var validStatuses = map[QualityStatus]bool{
	StatusOK:               true,
	StatusTooShort:         true,
	StatusNeedsReview:      true,
	StatusPDFScannedImage:  true,
	StatusBinaryGarbage:    true,
	StatusExtractionFailed: true,
}

// ParseStatus converts a stored string into a QualityStatus.
func ParseStatus(s string) (QualityStatus, error) {
	status := QualityStatus(s)
	if !validStatuses[status] {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// Validate checks that a Story satisfies its structural invariants.
func (s *Story) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidStory, ErrEmptyStoryID)
	}
	if s.CanonHash == "" {
		return fmt.Errorf("%w: %w", ErrInvalidStory, ErrEmptyCanonHash)
	}
	if !validStatuses[s.Status] {
		return fmt.Errorf("%w: %w: %q", ErrInvalidStory, ErrInvalidStatus, s.Status)
	}
	return nil
}

// Validate checks that a SourceRecord satisfies its structural invariants.
func (r *SourceRecord) Validate() error {
	if r.Path == "" {
		return ErrEmptySourcePath
	}
	if r.StoryID == "" {
		return ErrEmptyStoryID
	}
	return nil
}
