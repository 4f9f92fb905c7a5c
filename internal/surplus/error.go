package surplus

import "errors"

var (
	ErrSurplusNotFound  = errors.New("surplus not found")
	ErrNotAvailable     = errors.New("surplus is no longer available")
	ErrNotOwner         = errors.New("surplus belongs to another vendor")
	ErrPaymentMismatch  = errors.New("payment does not belong to this surplus")
	ErrPaymentCompleted = errors.New("surplus payment already completed")
)
