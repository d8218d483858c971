package models

import "time"

// Phase is the derived lifecycle state of an auction. It is computed from
// stored fields and the clock on every read and is never persisted.
type Phase string

const (
	PhasePendingApproval Phase = "PendingApproval"
	PhaseNotYetStarted   Phase = "NotYetStarted"
	PhaseActive          Phase = "Active"
	PhaseEnded           Phase = "Ended"
)

// Auction is a seller's listing. CurrentPrice always equals StartPrice until
// the first bid is accepted, after which it tracks the latest bid amount.
type Auction struct {
	ID           string
	Title        string
	Description  string
	ImageURL     string
	SellerID     string
	SellerEmail  string
	StartPrice   float64
	CurrentPrice float64
	StartTime    time.Time
	EndTime      time.Time
	Approved     bool
	CreatedAt    time.Time

	// Bids is the append-only ledger, oldest first. Settlement guarantees
	// amounts are strictly increasing, so the last entry is both the most
	// recent and the highest bid.
	Bids []Bid
}

// PhaseAt derives the lifecycle phase at the given instant.
func (a *Auction) PhaseAt(now time.Time) Phase {
	switch {
	case !a.Approved:
		return PhasePendingApproval
	case now.Before(a.StartTime):
		return PhaseNotYetStarted
	case !now.Before(a.EndTime):
		return PhaseEnded
	default:
		return PhaseActive
	}
}

// Winner returns the leading bid, i.e. the last ledger entry. The second
// return value is false when no bids have been placed.
func (a *Auction) Winner() (Bid, bool) {
	if len(a.Bids) == 0 {
		return Bid{}, false
	}
	return a.Bids[len(a.Bids)-1], true
}

// Clone returns a deep copy so callers can hand auctions across goroutine
// boundaries without sharing the bid slice.
func (a *Auction) Clone() *Auction {
	cp := *a
	cp.Bids = append([]Bid(nil), a.Bids...)
	return &cp
}
