// Package store defines the persistence contract for the auction engine.
// Implementations must give Settle read-modify-write atomicity per auction:
// the decide callback observes the authoritative auction state and its bid is
// appended before any concurrent settlement on the same auction can run.
package store

import (
	"context"
	"errors"

	"auctionhouse/internal/models"
)

var (
	ErrNotFound     = errors.New("auction not found")
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")

	// ErrConflict is surfaced only after an implementation has exhausted its
	// internal retries on storage-level contention.
	ErrConflict = errors.New("storage conflict")
)

// DecideFunc inspects the authoritative auction inside the settlement
// critical section and either returns the bid to append or a domain error.
// It must not retain the auction past the call.
type DecideFunc func(a *models.Auction) (*models.Bid, error)

// AuctionFilter narrows ListAuctions. Time-window filtering is deliberately
// absent: lifecycle phase is derived by the service, never by the store.
type AuctionFilter struct {
	Approved *bool
}

// AuctionStore persists auctions and their bid ledgers.
type AuctionStore interface {
	CreateAuction(ctx context.Context, a *models.Auction) error
	// GetAuction returns the auction with its full ordered bid history.
	GetAuction(ctx context.Context, id string) (*models.Auction, error)
	ListAuctions(ctx context.Context, f AuctionFilter) ([]models.Auction, error)
	// Approve flips approved=true. Approving an already-approved auction is
	// a no-op success.
	Approve(ctx context.Context, id string) (*models.Auction, error)
	// Settle runs decide atomically against the auction's current state and,
	// when decide returns a bid, appends it and sets CurrentPrice to its
	// amount as one unit. The returned auction reflects the committed bid.
	Settle(ctx context.Context, auctionID string, decide DecideFunc) (*models.Auction, error)
}

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Bool is a convenience for building AuctionFilter literals.
func Bool(v bool) *bool { return &v }
