package auctionhandler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"auctionhouse/internal/http/authmw"
	"auctionhouse/internal/services/auction"
	"auctionhouse/internal/services/user"
	"auctionhouse/internal/store/memstore"
)

const adminEmail = "admin@example.com"

type testEnv struct {
	router *gin.Engine
	users  user.IUserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := memstore.New()
	users := user.NewUserService(st, "test-secret-0123", time.Hour, adminEmail)
	auctions := auction.NewAuctionService(st, nil)

	router := gin.New()
	h := New(auctions)
	h.Register(router.Group("/api/auctions"), authmw.RequireAuth(users), authmw.RequireAdmin())
	return &testEnv{router: router, users: users}
}

func (e *testEnv) registerToken(t *testing.T, email string) string {
	t.Helper()
	_, token, err := e.users.Register(t.Context(), email, "hunter2hunter2")
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// createApproved submits a listing as seller and approves it as admin,
// returning the auction id. The window is open around the current clock.
func (e *testEnv) createApproved(t *testing.T, sellerToken, adminToken string, startPrice float64) string {
	t.Helper()
	now := time.Now().UTC()
	w := e.do(t, http.MethodPost, "/api/auctions", sellerToken, CreateAuctionBody{
		Title:      "Brass desk lamp",
		StartPrice: startPrice,
		StartTime:  now.Add(-time.Hour),
		EndTime:    now.Add(time.Hour),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created auction.AuctionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, "PendingApproval", created.Phase)

	w = e.do(t, http.MethodPut, "/api/auctions/admin/approve/"+created.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return created.ID
}

func TestCreateAuctionRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auctions", "", CreateAuctionBody{
		Title:     "x",
		StartTime: time.Now(),
		EndTime:   time.Now().Add(time.Hour),
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/auctions", "not-a-jwt", CreateAuctionBody{
		Title:     "x",
		StartTime: time.Now(),
		EndTime:   time.Now().Add(time.Hour),
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAuctionValidation(t *testing.T) {
	env := newTestEnv(t)
	seller := env.registerToken(t, "seller@example.com")

	now := time.Now().UTC()

	// Binding rejects a missing title before the service runs.
	w := env.do(t, http.MethodPost, "/api/auctions", seller, CreateAuctionBody{
		StartTime: now,
		EndTime:   now.Add(time.Hour),
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// The service rejects an inverted window.
	w = env.do(t, http.MethodPost, "/api/auctions", seller, CreateAuctionBody{
		Title:     "backwards",
		StartTime: now.Add(time.Hour),
		EndTime:   now,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBidFlowAndErrorMapping(t *testing.T) {
	env := newTestEnv(t)
	seller := env.registerToken(t, "seller@example.com")
	bidder := env.registerToken(t, "alice@example.com")
	admin := env.registerToken(t, adminEmail)

	id := env.createApproved(t, seller, admin, 40.00)

	// Below the 0.50 increment tier: 409 with the authoritative minimum.
	w := env.do(t, http.MethodPost, "/api/auctions/"+id+"/bids", bidder, PlaceBidBody{Amount: 40.40})
	require.Equal(t, http.StatusConflict, w.Code)
	var rej ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rej))
	require.Equal(t, 40.50, rej.MinNextBid)

	// Exactly the minimum is accepted and moves the price.
	w = env.do(t, http.MethodPost, "/api/auctions/"+id+"/bids", bidder, PlaceBidBody{Amount: 40.50})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var view auction.AuctionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Equal(t, 40.50, view.CurrentPrice)
	require.Len(t, view.Bids, 1)
	require.NotNil(t, view.Winner)
	require.Equal(t, "alice@example.com", view.Winner.BidderEmail)

	// The seller cannot bid on their own listing.
	w = env.do(t, http.MethodPost, "/api/auctions/"+id+"/bids", seller, PlaceBidBody{Amount: 41.00})
	require.Equal(t, http.StatusForbidden, w.Code)

	// Non-positive amounts never reach the ledger.
	w = env.do(t, http.MethodPost, "/api/auctions/"+id+"/bids", bidder, PlaceBidBody{Amount: -5})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown auction.
	w = env.do(t, http.MethodPost, "/api/auctions/no-such-id/bids", bidder, PlaceBidBody{Amount: 50})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestBidOnPendingAuctionCarriesPhase(t *testing.T) {
	env := newTestEnv(t)
	seller := env.registerToken(t, "seller@example.com")
	bidder := env.registerToken(t, "alice@example.com")

	now := time.Now().UTC()
	w := env.do(t, http.MethodPost, "/api/auctions", seller, CreateAuctionBody{
		Title:      "unmoderated",
		StartPrice: 10,
		StartTime:  now.Add(-time.Hour),
		EndTime:    now.Add(time.Hour),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created auction.AuctionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = env.do(t, http.MethodPost, "/api/auctions/"+created.ID+"/bids", bidder, PlaceBidBody{Amount: 10.50})
	require.Equal(t, http.StatusConflict, w.Code)
	var rej ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rej))
	require.Equal(t, "PendingApproval", rej.Phase)
}

func TestGetAndListAuctions(t *testing.T) {
	env := newTestEnv(t)
	seller := env.registerToken(t, "seller@example.com")
	admin := env.registerToken(t, adminEmail)

	id := env.createApproved(t, seller, admin, 25.00)

	w := env.do(t, http.MethodGet, "/api/auctions/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view auction.AuctionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Equal(t, "Active", view.Phase)
	require.Equal(t, 25.50, view.MinNextBid)

	w = env.do(t, http.MethodGet, "/api/auctions/no-such-id", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/auctions", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []auction.AuctionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	require.Equal(t, id, listed[0].ID)
}

func TestModerationRoutesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	seller := env.registerToken(t, "seller@example.com")
	bidder := env.registerToken(t, "alice@example.com")
	admin := env.registerToken(t, adminEmail)

	now := time.Now().UTC()
	w := env.do(t, http.MethodPost, "/api/auctions", seller, CreateAuctionBody{
		Title:      "awaiting review",
		StartPrice: 5,
		StartTime:  now.Add(-time.Hour),
		EndTime:    now.Add(time.Hour),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created auction.AuctionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodGet, "/api/auctions/admin/pending"},
		{http.MethodPut, "/api/auctions/admin/approve/" + created.ID},
	} {
		w = env.do(t, tc.method, tc.path, bidder, nil)
		require.Equalf(t, http.StatusForbidden, w.Code, "%s %s as bidder", tc.method, tc.path)

		w = env.do(t, tc.method, tc.path, "", nil)
		require.Equalf(t, http.StatusUnauthorized, w.Code, "%s %s anonymous", tc.method, tc.path)
	}

	w = env.do(t, http.MethodGet, "/api/auctions/admin/pending", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending []auction.AuctionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	require.Len(t, pending, 1)

	// Approving twice stays a success.
	for i := 0; i < 2; i++ {
		w = env.do(t, http.MethodPut, "/api/auctions/admin/approve/"+created.ID, admin, nil)
		require.Equalf(t, http.StatusOK, w.Code, "approve attempt %d", i+1)
	}

	w = env.do(t, http.MethodGet, "/api/auctions/admin/pending", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	pending = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	require.Empty(t, pending)
}

func TestBidSequenceRaisesMinimumAcrossTiers(t *testing.T) {
	env := newTestEnv(t)
	seller := env.registerToken(t, "seller@example.com")
	bidder := env.registerToken(t, "alice@example.com")
	admin := env.registerToken(t, adminEmail)

	id := env.createApproved(t, seller, admin, 499.00)

	// 499.00 -> needs 501.00; once past 500 the increment becomes 5.00.
	w := env.do(t, http.MethodPost, "/api/auctions/"+id+"/bids", bidder, PlaceBidBody{Amount: 501.00})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/auctions/"+id+"/bids", bidder, PlaceBidBody{Amount: 503.00})
	require.Equal(t, http.StatusConflict, w.Code)
	var rej ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rej))
	require.Equal(t, 506.00, rej.MinNextBid)

	w = env.do(t, http.MethodPost, "/api/auctions/"+id+"/bids", bidder, PlaceBidBody{Amount: 506.00})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
