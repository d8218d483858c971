package auction

import (
	"errors"
	"fmt"

	"auctionhouse/internal/models"
)

var (
	ErrAuctionNotActive = errors.New("auction is not active")
	ErrBidTooLow        = errors.New("bid below minimum")
	ErrSelfBidForbidden = errors.New("sellers cannot bid on their own auction")
	ErrInvalidAmount    = errors.New("bid amount is not a valid number")
	ErrUnauthorized     = errors.New("admin role required")
	ErrInvalidListing   = errors.New("invalid auction listing")
)

// NotActiveError rejects a bid outside the Active phase and carries the
// actual phase so callers can explain it to the user. errors.Is matches it
// against ErrAuctionNotActive.
type NotActiveError struct {
	Phase models.Phase
}

func (e *NotActiveError) Error() string {
	switch e.Phase {
	case models.PhasePendingApproval:
		return "auction is awaiting approval"
	case models.PhaseNotYetStarted:
		return "auction has not started yet"
	case models.PhaseEnded:
		return "auction has ended"
	default:
		return ErrAuctionNotActive.Error()
	}
}

func (e *NotActiveError) Is(target error) bool { return target == ErrAuctionNotActive }

// BidTooLowError is the recoverable rejection: it carries the authoritative
// minimum so the caller can resubmit a corrected amount.
type BidTooLowError struct {
	Minimum float64
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid too low: minimum acceptable bid is %.2f", e.Minimum)
}

func (e *BidTooLowError) Is(target error) bool { return target == ErrBidTooLow }
