package domain

import (
	"errors"
	"fmt"
)

// User-facing rejections. These are normal outcomes of user input, surfaced
// as HTTP responses and never logged as incidents.
var (
	ErrNotFound             = errors.New("not found")
	ErrUnauthorized         = errors.New("authentication required")
	ErrForbidden            = errors.New("permission denied")
	ErrAlreadyHighestBidder = errors.New("you already hold the highest bid")
	ErrAuctionClosed        = errors.New("auction has ended")
	ErrConflict             = errors.New("concurrent update detected, retry with refreshed price")
	ErrNoPoints             = errors.New("no bidding points remaining")
	ErrInvalidInput         = errors.New("invalid input")
)

// BidTooLowError reports the minimum acceptable amount so the caller can
// self-correct and retry.
type BidTooLowError struct {
	Minimum float64
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid too low, minimum acceptable is %.2f", e.Minimum)
}

// IsUserFacing reports whether err belongs to the recoverable rejection
// taxonomy, as opposed to a storage-layer fault.
func IsUserFacing(err error) bool {
	var tooLow *BidTooLowError
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrAlreadyHighestBidder) ||
		errors.Is(err, ErrAuctionClosed) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrNoPoints) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.As(err, &tooLow)
}
