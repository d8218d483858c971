// Package auction implements the marketplace engine: the lifecycle state
// machine, concurrency-safe bid settlement, the moderation gate and the
// snapshot surface that polling clients consume.
package auction

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"auctionhouse/internal/cache"
	"auctionhouse/internal/models"
	"auctionhouse/internal/pricing"
	"auctionhouse/internal/store"
)

// AuctionView is the full self-consistent snapshot returned to clients:
// the price always matches the last ledger entry because both are read in
// one settlement-ordered unit.
type AuctionView struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"imageUrl"`
	SellerID     string    `json:"sellerId"`
	SellerEmail  string    `json:"sellerEmail"`
	StartPrice   float64   `json:"startPrice"`
	CurrentPrice float64   `json:"currentPrice"`
	StartTime    time.Time `json:"startTime" example:"2026-03-01T16:00:00Z"`
	EndTime      time.Time `json:"endTime"   example:"2026-03-02T16:00:00Z"`
	Approved     bool      `json:"approved"`
	Phase        string    `json:"phase"     example:"Active"`
	MinNextBid   float64   `json:"minNextBid"`
	Bids         []BidView `json:"bids"`
	Winner       *BidView  `json:"winner,omitempty"`
}

// BidView is one ledger entry, oldest first in AuctionView.Bids.
type BidView struct {
	ID          string    `json:"id"`
	BidderID    string    `json:"bidderId"`
	BidderEmail string    `json:"bidderEmail"`
	Amount      float64   `json:"amount"`
	BidTime     time.Time `json:"bidTime"`
}

// CreateAuctionInput carries the seller-supplied listing fields.
type CreateAuctionInput struct {
	Title       string
	Description string
	ImageURL    string
	StartPrice  float64
	StartTime   time.Time
	EndTime     time.Time
}

type IAuctionService interface {
	SubmitAuction(ctx context.Context, seller models.User, in CreateAuctionInput) (*AuctionView, error)
	GetAuction(ctx context.Context, id string) (*AuctionView, error)
	ListActive(ctx context.Context) ([]AuctionView, error)
	ListPending(ctx context.Context, principal models.User) ([]AuctionView, error)
	ApproveAuction(ctx context.Context, principal models.User, id string) (*AuctionView, error)
	PlaceBid(ctx context.Context, bidder models.User, auctionID string, amount float64) (*AuctionView, error)
	RefreshSnapshots(ctx context.Context) error
}

type auctionService struct {
	store store.AuctionStore
	snaps *cache.Snapshots
	now   func() time.Time
}

func NewAuctionService(st store.AuctionStore, snaps *cache.Snapshots) IAuctionService {
	return &auctionService{
		store: st,
		snaps: snaps,
		now:   time.Now,
	}
}

// SubmitAuction creates a listing in PendingApproval. It is invisible to
// active listings until an administrator approves it.
func (svc *auctionService) SubmitAuction(ctx context.Context, seller models.User, in CreateAuctionInput) (*AuctionView, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidListing)
	}
	if math.IsNaN(in.StartPrice) || math.IsInf(in.StartPrice, 0) || in.StartPrice < 0 {
		return nil, fmt.Errorf("%w: start price must be a non-negative number", ErrInvalidListing)
	}
	if !in.EndTime.After(in.StartTime) {
		return nil, fmt.Errorf("%w: end time must be after start time", ErrInvalidListing)
	}

	startPrice := pricing.Round2(in.StartPrice)
	a := &models.Auction{
		ID:           uuid.New().String(),
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		ImageURL:     in.ImageURL,
		SellerID:     seller.ID,
		SellerEmail:  seller.Email,
		StartPrice:   startPrice,
		CurrentPrice: startPrice,
		StartTime:    in.StartTime.UTC(),
		EndTime:      in.EndTime.UTC(),
		Approved:     false,
		CreatedAt:    svc.now().UTC(),
	}
	if err := svc.store.CreateAuction(ctx, a); err != nil {
		return nil, err
	}
	zap.L().Info("auction_submitted",
		zap.String("auction_id", a.ID),
		zap.String("seller_id", seller.ID))

	view := svc.view(a)
	svc.putSnapshot(ctx, view)
	return view, nil
}

// GetAuction serves the sync contract: a full snapshot, cache first.
func (svc *auctionService) GetAuction(ctx context.Context, id string) (*AuctionView, error) {
	if payload, ok := svc.snaps.Get(ctx, id); ok {
		view := &AuctionView{}
		if err := json.Unmarshal(payload, view); err == nil {
			return view, nil
		}
		zap.L().Warn("snapshot_unmarshal_failed", zap.String("auction_id", id))
		// evict the corrupt payload so later polls don't keep hitting it
		svc.snaps.Drop(ctx, id)
	}

	a, err := svc.store.GetAuction(ctx, id)
	if err != nil {
		return nil, err
	}
	view := svc.view(a)
	svc.putSnapshot(ctx, view)
	return view, nil
}

// ListActive returns auctions whose derived phase is Active right now. The
// approved filter only narrows the candidate set; the phase evaluation is
// authoritative.
func (svc *auctionService) ListActive(ctx context.Context) ([]AuctionView, error) {
	candidates, err := svc.store.ListAuctions(ctx, store.AuctionFilter{Approved: store.Bool(true)})
	if err != nil {
		return nil, err
	}
	now := svc.now()
	out := make([]AuctionView, 0, len(candidates))
	for i := range candidates {
		if candidates[i].PhaseAt(now) == models.PhaseActive {
			out = append(out, *svc.view(&candidates[i]))
		}
	}
	return out, nil
}

// ListPending returns every unapproved auction with no time filter: a
// listing can sit pending past its nominal end time.
func (svc *auctionService) ListPending(ctx context.Context, principal models.User) ([]AuctionView, error) {
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	pending, err := svc.store.ListAuctions(ctx, store.AuctionFilter{Approved: store.Bool(false)})
	if err != nil {
		return nil, err
	}
	out := make([]AuctionView, 0, len(pending))
	for i := range pending {
		out = append(out, *svc.view(&pending[i]))
	}
	return out, nil
}

// ApproveAuction flips approved=true, irreversibly. Re-approving is a no-op
// success.
func (svc *auctionService) ApproveAuction(ctx context.Context, principal models.User, id string) (*AuctionView, error) {
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	a, err := svc.store.Approve(ctx, id)
	if err != nil {
		return nil, err
	}
	zap.L().Info("auction_approved",
		zap.String("auction_id", id),
		zap.String("admin_id", principal.ID))

	view := svc.view(a)
	svc.putSnapshot(ctx, view)
	return view, nil
}

// PlaceBid validates and commits a bid. The acceptance test and the ledger
// append run inside the store's per-auction critical section, so the decision
// is always made against the price left by the previous committed bid.
func (svc *auctionService) PlaceBid(ctx context.Context, bidder models.User, auctionID string, amount float64) (*AuctionView, error) {
	decide := func(a *models.Auction) (*models.Bid, error) {
		if phase := a.PhaseAt(svc.now()); phase != models.PhaseActive {
			return nil, &NotActiveError{Phase: phase}
		}
		if a.SellerID == bidder.ID {
			return nil, ErrSelfBidForbidden
		}
		if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
			return nil, ErrInvalidAmount
		}
		min := pricing.MinNextBid(a.CurrentPrice)
		rounded := pricing.Round2(amount)
		if rounded < min {
			return nil, &BidTooLowError{Minimum: min}
		}
		return &models.Bid{
			ID:          uuid.New().String(),
			AuctionID:   a.ID,
			BidderID:    bidder.ID,
			BidderEmail: bidder.Email,
			Amount:      rounded,
			BidTime:     svc.now().UTC(),
		}, nil
	}

	updated, err := svc.store.Settle(ctx, auctionID, decide)
	if err != nil {
		return nil, err
	}
	zap.L().Info("bid_accepted",
		zap.String("auction_id", auctionID),
		zap.String("bidder_id", bidder.ID),
		zap.Float64("amount", updated.CurrentPrice))

	view := svc.view(updated)
	svc.putSnapshot(ctx, view)
	return view, nil
}

// RefreshSnapshots mirrors every currently active auction into the snapshot
// cache in one pipelined write. Called by the background synchroniser.
func (svc *auctionService) RefreshSnapshots(ctx context.Context) error {
	active, err := svc.ListActive(ctx)
	if err != nil {
		return err
	}
	payloads := make(map[string][]byte, len(active))
	for i := range active {
		payload, err := json.Marshal(&active[i])
		if err != nil {
			return err
		}
		payloads[active[i].ID] = payload
	}
	svc.snaps.PutMany(ctx, payloads)
	return nil
}

func (svc *auctionService) view(a *models.Auction) *AuctionView {
	bids := make([]BidView, 0, len(a.Bids))
	for _, b := range a.Bids {
		bids = append(bids, BidView{
			ID:          b.ID,
			BidderID:    b.BidderID,
			BidderEmail: b.BidderEmail,
			Amount:      b.Amount,
			BidTime:     b.BidTime,
		})
	}
	view := &AuctionView{
		ID:           a.ID,
		Title:        a.Title,
		Description:  a.Description,
		ImageURL:     a.ImageURL,
		SellerID:     a.SellerID,
		SellerEmail:  a.SellerEmail,
		StartPrice:   a.StartPrice,
		CurrentPrice: a.CurrentPrice,
		StartTime:    a.StartTime,
		EndTime:      a.EndTime,
		Approved:     a.Approved,
		Phase:        string(a.PhaseAt(svc.now())),
		MinNextBid:   pricing.MinNextBid(a.CurrentPrice),
		Bids:         bids,
	}
	if len(bids) > 0 {
		view.Winner = &bids[len(bids)-1]
	}
	return view
}

func (svc *auctionService) putSnapshot(ctx context.Context, view *AuctionView) {
	payload, err := json.Marshal(view)
	if err != nil {
		return
	}
	svc.snaps.Put(ctx, view.ID, payload)
}
