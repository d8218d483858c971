// Package pgstore persists auctions, bids and users in Postgres. Settlement
// runs inside a transaction that row-locks the auction (SELECT ... FOR
// UPDATE), so concurrent bids on one auction serialize while different
// auctions never contend.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"auctionhouse/internal/models"
	"auctionhouse/internal/store"
)

// settleAttempts bounds the internal retry on storage-level contention
// before the conflict is surfaced to the caller.
const settleAttempts = 3

type Store struct {
	db *sql.DB
}

var (
	_ store.AuctionStore = (*Store)(nil)
	_ store.UserStore    = (*Store)(nil)
)

func New(db *sql.DB) *Store { return &Store{db: db} }

// Init creates the schema when it does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS auctions (
		id            TEXT PRIMARY KEY,
		title         TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		image_url     TEXT NOT NULL DEFAULT '',
		seller_id     TEXT NOT NULL,
		seller_email  TEXT NOT NULL DEFAULT '',
		start_price   DOUBLE PRECISION NOT NULL,
		current_price DOUBLE PRECISION NOT NULL,
		start_time    TIMESTAMPTZ NOT NULL,
		end_time      TIMESTAMPTZ NOT NULL,
		approved      BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS bids (
		seq          BIGSERIAL PRIMARY KEY,
		id           TEXT NOT NULL UNIQUE,
		auction_id   TEXT NOT NULL REFERENCES auctions(id),
		bidder_id    TEXT NOT NULL,
		bidder_email TEXT NOT NULL DEFAULT '',
		amount       DOUBLE PRECISION NOT NULL,
		bid_time     TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS bids_auction_seq_idx ON bids (auction_id, seq);`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

const auctionCols = `id, title, description, image_url, seller_id, seller_email,
	start_price, current_price, start_time, end_time, approved, created_at`

func scanAuction(row interface{ Scan(...any) error }) (*models.Auction, error) {
	a := &models.Auction{}
	err := row.Scan(&a.ID, &a.Title, &a.Description, &a.ImageURL,
		&a.SellerID, &a.SellerEmail, &a.StartPrice, &a.CurrentPrice,
		&a.StartTime, &a.EndTime, &a.Approved, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) CreateAuction(ctx context.Context, a *models.Auction) error {
	const q = `INSERT INTO auctions (` + auctionCols + `)
	           VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	_, err := s.db.ExecContext(ctx, q,
		a.ID, a.Title, a.Description, a.ImageURL, a.SellerID, a.SellerEmail,
		a.StartPrice, a.CurrentPrice, a.StartTime, a.EndTime, a.Approved, a.CreatedAt)
	return err
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// loadBids reconstructs the ledger in insertion order. The seq column is the
// sole sort key; bid_time is informational and may not be monotonic.
func loadBids(ctx context.Context, q querier, auctionID string) ([]models.Bid, error) {
	const sel = `SELECT id, auction_id, bidder_id, bidder_email, amount, bid_time
	               FROM bids WHERE auction_id = $1 ORDER BY seq`
	rows, err := q.QueryContext(ctx, sel, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []models.Bid
	for rows.Next() {
		var b models.Bid
		if err := rows.Scan(&b.ID, &b.AuctionID, &b.BidderID, &b.BidderEmail,
			&b.Amount, &b.BidTime); err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

func (s *Store) GetAuction(ctx context.Context, id string) (*models.Auction, error) {
	const q = `SELECT ` + auctionCols + ` FROM auctions WHERE id = $1`
	a, err := scanAuction(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if a.Bids, err = loadBids(ctx, s.db, id); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) ListAuctions(ctx context.Context, f store.AuctionFilter) ([]models.Auction, error) {
	base := `SELECT ` + auctionCols + ` FROM auctions`
	var (
		rows *sql.Rows
		err  error
	)
	if f.Approved != nil {
		rows, err = s.db.QueryContext(ctx, base+` WHERE approved = $1 ORDER BY end_time`, *f.Approved)
	} else {
		rows, err = s.db.QueryContext(ctx, base+` ORDER BY end_time`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	// Each auction carries its full ledger so listed snapshots are as
	// consistent as single reads: a price change is never visible without
	// the bid that produced it.
	for i := range list {
		if list[i].Bids, err = loadBids(ctx, s.db, list[i].ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (s *Store) Approve(ctx context.Context, id string) (*models.Auction, error) {
	// idempotent: re-approving leaves the row as is
	const q = `UPDATE auctions SET approved = TRUE WHERE id = $1`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetAuction(ctx, id)
}

func (s *Store) Settle(ctx context.Context, auctionID string, decide store.DecideFunc) (*models.Auction, error) {
	var lastErr error
	for attempt := 0; attempt < settleAttempts; attempt++ {
		a, err := s.settleOnce(ctx, auctionID, decide)
		if err == nil || !retryable(err) {
			return a, err
		}
		lastErr = err
		zap.L().Warn("settle_retry",
			zap.String("auction_id", auctionID),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return nil, fmt.Errorf("%w: %v", store.ErrConflict, lastErr)
}

func (s *Store) settleOnce(ctx context.Context, auctionID string, decide store.DecideFunc) (*models.Auction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const lock = `SELECT ` + auctionCols + ` FROM auctions WHERE id = $1 FOR UPDATE`
	a, err := scanAuction(tx.QueryRowContext(ctx, lock, auctionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if a.Bids, err = loadBids(ctx, tx, auctionID); err != nil {
		return nil, err
	}

	bid, err := decide(a)
	if err != nil {
		return nil, err
	}

	const insBid = `INSERT INTO bids (id, auction_id, bidder_id, bidder_email, amount, bid_time)
	                VALUES ($1,$2,$3,$4,$5,$6)`
	if _, err := tx.ExecContext(ctx, insBid,
		bid.ID, bid.AuctionID, bid.BidderID, bid.BidderEmail, bid.Amount, bid.BidTime); err != nil {
		return nil, err
	}
	const upd = `UPDATE auctions SET current_price = $2 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, upd, auctionID, bid.Amount); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	a.Bids = append(a.Bids, *bid)
	a.CurrentPrice = bid.Amount
	return a, nil
}

// retryable reports whether the error is storage contention worth another
// attempt, as opposed to a business-rule rejection from decide.
func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	const q = `INSERT INTO users (id, email, password_hash, role, created_at)
	           VALUES ($1,$2,$3,$4,$5)`
	_, err := s.db.ExecContext(ctx, q,
		u.ID, strings.ToLower(u.Email), u.PasswordHash, string(u.Role), u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return store.ErrEmailTaken
		}
		return err
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, err
	}
	u.Role = models.Role(role)
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `SELECT id, email, password_hash, role, created_at
	             FROM users WHERE email = $1`
	return scanUser(s.db.QueryRowContext(ctx, q, strings.ToLower(email)))
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const q = `SELECT id, email, password_hash, role, created_at
	             FROM users WHERE id = $1`
	return scanUser(s.db.QueryRowContext(ctx, q, id))
}
