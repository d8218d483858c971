package models

import "time"

// Bid is one accepted ledger entry. Bids are immutable and never deleted;
// BidTime is assigned by the server at commit, not taken from the client.
type Bid struct {
	ID          string
	AuctionID   string
	BidderID    string
	BidderEmail string
	Amount      float64
	BidTime     time.Time
}
