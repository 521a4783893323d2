package reviews

import "errors"

var (
	ErrReviewExists   = errors.New("review already exists")
	ErrReviewNotFound = errors.New("review not found")
)
