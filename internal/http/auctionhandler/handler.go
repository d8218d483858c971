package auctionhandler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"auctionhouse/internal/http/authmw"
	"auctionhouse/internal/services/auction"
	"auctionhouse/internal/store"
)

type Handler struct {
	svc auction.IAuctionService
}

func New(svc auction.IAuctionService) *Handler { return &Handler{svc: svc} }

// Register mounts the auction routes. requireAuth and requireAdmin are the
// authentication middlewares; admin routes run both.
func (h *Handler) Register(r *gin.RouterGroup, requireAuth, requireAdmin gin.HandlerFunc) {
	r.GET("", h.listActive)
	r.GET("/:id", h.get)
	r.POST("", requireAuth, h.create)
	r.POST("/:id/bids", requireAuth, h.placeBid)

	admin := r.Group("/admin", requireAuth, requireAdmin)
	admin.GET("/pending", h.listPending)
	admin.PUT("/approve/:id", h.approve)
}

// @Summary		List active auctions
// @Description	Returns every auction whose lifecycle phase is Active right now.
// @Tags			Auctions
// @Success		200	{array}		auction.AuctionView
// @Failure		500	{object}	ErrorResponse
// @Router			/api/auctions [get]
func (h *Handler) listActive(c *gin.Context) {
	out, err := h.svc.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary		Get auction snapshot
// @Description	Returns the full auction with its ordered bid history. Poll this endpoint to observe price changes.
// @Tags			Auctions
// @Param			id	path		string	true	"Auction ID"
// @Success		200	{object}	auction.AuctionView
// @Failure		404	{object}	ErrorResponse
// @Router			/api/auctions/{id} [get]
func (h *Handler) get(c *gin.Context) {
	view, err := h.svc.GetAuction(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary		Create an auction
// @Description	Submits a new listing. It stays PendingApproval until an administrator approves it.
// @Tags			Auctions
// @Security		BearerAuth
// @Param			body	body		CreateAuctionBody	true	"Listing fields"
// @Success		201		{object}	auction.AuctionView
// @Failure		400		{object}	ErrorResponse
// @Router			/api/auctions [post]
func (h *Handler) create(c *gin.Context) {
	var body CreateAuctionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	principal, ok := authmw.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	view, err := h.svc.SubmitAuction(c.Request.Context(), principal, auction.CreateAuctionInput{
		Title:       body.Title,
		Description: body.Description,
		ImageURL:    body.ImageURL,
		StartPrice:  body.StartPrice,
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// @Summary		Place a bid
// @Description	Validates and commits a bid against the auction's authoritative current price. On BidTooLow the response carries minNextBid.
// @Tags			Auctions
// @Security		BearerAuth
// @Param			id		path		string			true	"Auction ID"
// @Param			body	body		PlaceBidBody	true	"Bid payload"
// @Success		200		{object}	auction.AuctionView
// @Failure		400		{object}	ErrorResponse
// @Failure		403		{object}	ErrorResponse
// @Failure		409		{object}	ErrorResponse
// @Router			/api/auctions/{id}/bids [post]
func (h *Handler) placeBid(c *gin.Context) {
	var body PlaceBidBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	principal, ok := authmw.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	view, err := h.svc.PlaceBid(c.Request.Context(), principal, c.Param("id"), body.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary		List pending auctions
// @Description	Returns every unapproved listing, with no time filter.
// @Tags			Moderation
// @Security		BearerAuth
// @Success		200	{array}		auction.AuctionView
// @Failure		403	{object}	ErrorResponse
// @Router			/api/auctions/admin/pending [get]
func (h *Handler) listPending(c *gin.Context) {
	principal, _ := authmw.Principal(c)
	out, err := h.svc.ListPending(c.Request.Context(), principal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary		Approve an auction
// @Description	Flips approved=true. Approving twice is a no-op success.
// @Tags			Moderation
// @Security		BearerAuth
// @Param			id	path		string	true	"Auction ID"
// @Success		200	{object}	auction.AuctionView
// @Failure		404	{object}	ErrorResponse
// @Router			/api/auctions/admin/approve/{id} [put]
func (h *Handler) approve(c *gin.Context) {
	principal, _ := authmw.Principal(c)
	view, err := h.svc.ApproveAuction(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// respondError translates engine errors into the HTTP surface, enriching the
// two rejections that carry data the client acts on.
func respondError(c *gin.Context, err error) {
	resp := ErrorResponse{Error: err.Error()}

	var tooLow *auction.BidTooLowError
	var notActive *auction.NotActiveError
	switch {
	case errors.As(err, &tooLow):
		resp.MinNextBid = tooLow.Minimum
		c.JSON(http.StatusConflict, resp)
	case errors.As(err, &notActive):
		resp.Phase = string(notActive.Phase)
		c.JSON(http.StatusConflict, resp)
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, resp)
	case errors.Is(err, auction.ErrSelfBidForbidden):
		c.JSON(http.StatusForbidden, resp)
	case errors.Is(err, auction.ErrUnauthorized):
		c.JSON(http.StatusForbidden, resp)
	case errors.Is(err, auction.ErrInvalidAmount),
		errors.Is(err, auction.ErrInvalidListing):
		c.JSON(http.StatusBadRequest, resp)
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, resp)
	default:
		c.JSON(http.StatusInternalServerError, resp)
	}
}
