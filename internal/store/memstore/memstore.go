// Package memstore is a concurrency-safe in-memory implementation of the
// store interfaces. It is the default backend for development and tests.
package memstore

import (
	"context"
	"strings"
	"sync"

	"auctionhouse/internal/models"
	"auctionhouse/internal/store"
)

// entry serializes settlement per auction: the entry mutex is the critical
// section, so bidders on different auctions never contend.
type entry struct {
	mu      sync.Mutex
	auction *models.Auction
}

type Store struct {
	mu       sync.RWMutex
	auctions map[string]*entry

	umu          sync.RWMutex
	usersByID    map[string]*models.User
	usersByEmail map[string]*models.User
}

var (
	_ store.AuctionStore = (*Store)(nil)
	_ store.UserStore    = (*Store)(nil)
)

func New() *Store {
	return &Store{
		auctions:     make(map[string]*entry),
		usersByID:    make(map[string]*models.User),
		usersByEmail: make(map[string]*models.User),
	}
}

func (s *Store) CreateAuction(_ context.Context, a *models.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auctions[a.ID] = &entry{auction: a.Clone()}
	return nil
}

func (s *Store) lookup(id string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.auctions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return e, nil
}

func (s *Store) GetAuction(_ context.Context, id string) (*models.Auction, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.auction.Clone(), nil
}

func (s *Store) ListAuctions(_ context.Context, f store.AuctionFilter) ([]models.Auction, error) {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.auctions))
	for _, e := range s.auctions {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]models.Auction, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if f.Approved == nil || e.auction.Approved == *f.Approved {
			out = append(out, *e.auction.Clone())
		}
		e.mu.Unlock()
	}
	return out, nil
}

func (s *Store) Approve(_ context.Context, id string) (*models.Auction, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.auction.Approved = true // idempotent
	return e.auction.Clone(), nil
}

func (s *Store) Settle(_ context.Context, auctionID string, decide store.DecideFunc) (*models.Auction, error) {
	e, err := s.lookup(auctionID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	bid, err := decide(e.auction)
	if err != nil {
		return nil, err
	}
	e.auction.Bids = append(e.auction.Bids, *bid)
	e.auction.CurrentPrice = bid.Amount
	return e.auction.Clone(), nil
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	key := strings.ToLower(u.Email)
	s.umu.Lock()
	defer s.umu.Unlock()
	if _, ok := s.usersByEmail[key]; ok {
		return store.ErrEmailTaken
	}
	cp := *u
	s.usersByID[u.ID] = &cp
	s.usersByEmail[key] = &cp
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.umu.RLock()
	defer s.umu.RUnlock()
	u, ok := s.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.umu.RLock()
	defer s.umu.RUnlock()
	u, ok := s.usersByID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}
