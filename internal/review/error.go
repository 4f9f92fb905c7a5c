package review

import "errors"

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("you have already reviewed this material")
	ErrNotAuthor       = errors.New("review belongs to another user")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)
