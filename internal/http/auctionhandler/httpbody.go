package auctionhandler

import "time"

type CreateAuctionBody struct {
	Title       string    `json:"title"       binding:"required" example:"Brass desk lamp"`
	Description string    `json:"description"                    example:"1950s, working"`
	ImageURL    string    `json:"imageUrl"                       example:"https://img.example.com/lamp.jpg"`
	StartPrice  float64   `json:"startPrice"  binding:"gte=0"    example:"40"`
	StartTime   time.Time `json:"startTime"   binding:"required" example:"2026-03-01T16:00:00Z"`
	EndTime     time.Time `json:"endTime"     binding:"required" example:"2026-03-02T16:00:00Z"`
} // @name CreateAuctionRequest

type PlaceBidBody struct {
	Amount float64 `json:"amount" binding:"required" example:"40.5"`
} // @name PlaceBidRequest

type ErrorResponse struct {
	Error string `json:"error"`
	// Phase is set on AuctionNotActive rejections.
	Phase string `json:"phase,omitempty"`
	// MinNextBid is set on BidTooLow rejections so the client can resubmit.
	MinNextBid float64 `json:"minNextBid,omitempty"`
} // @name ErrorResponse
