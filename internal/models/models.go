package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Auction statuses, derived from time and cached in the auctions table.
const (
	AuctionStatusUpcoming = "upcoming"
	AuctionStatusActive   = "active"
	AuctionStatusClosed   = "closed"
)

// Post-close negotiation states.
const (
	NegotiationPending   = "pending"
	NegotiationAccepted  = "accepted"
	NegotiationRejected  = "rejected"
	NegotiationCountered = "countered"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Auction represents one listing. Status is a cache of the time-derived
// value; the negotiation fields only carry meaning once the auction closes.
type Auction struct {
	ID                uuid.UUID        `db:"id" json:"id"`
	SellerID          uuid.UUID        `db:"seller_id" json:"seller_id"`
	ItemName          string           `db:"item_name" json:"item_name"`
	Description       string           `db:"description" json:"description"`
	StartingPrice     decimal.Decimal  `db:"starting_price" json:"starting_price"`
	BidIncrement      decimal.Decimal  `db:"bid_increment" json:"bid_increment"`
	GoLiveTime        time.Time        `db:"go_live_time" json:"go_live_time"`
	DurationMinutes   int              `db:"duration_minutes" json:"duration_minutes"`
	Status            string           `db:"status" json:"status"`
	StatusAfterBid    string           `db:"status_after_bid" json:"status_after_bid,omitempty"`
	CounterOfferPrice *decimal.Decimal `db:"counter_offer_price" json:"counter_offer_price,omitempty"`
	HighestBidID      *uuid.UUID       `db:"highest_bid_id" json:"highest_bid_id,omitempty"`
	WinnerID          *uuid.UUID       `db:"winner_id" json:"winner_id,omitempty"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updated_at"`
}

// EndTime returns the instant the auction stops accepting bids.
func (a *Auction) EndTime() time.Time {
	return a.GoLiveTime.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// Bid is one immutable entry in the bid ledger.
type Bid struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	AuctionID uuid.UUID       `db:"auction_id" json:"auction_id"`
	BidderID  uuid.UUID       `db:"bidder_id" json:"bidder_id"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// BidWithBidder joins a ledger entry with the bidder's identity for
// leaderboard and detail projections.
type BidWithBidder struct {
	Bid
	BidderName  string `db:"bidder_name" json:"bidder_name"`
	BidderEmail string `db:"bidder_email" json:"bidder_email"`
}

// LeaderSnapshot is the ephemeral per-auction cache entry: who must a new
// bid beat. A zero BidderID means the seeded starting-price floor with no
// bids yet. Not authoritative; reconstructible from the ledger.
type LeaderSnapshot struct {
	BidderID     uuid.UUID       `json:"bidder_id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Amount       decimal.Decimal `json:"amount"`
	ConnectionID string          `json:"connection_id"`
}

// HasBidder reports whether the snapshot belongs to a real bid, as opposed
// to the starting-price seed.
func (s *LeaderSnapshot) HasBidder() bool {
	return s.BidderID != uuid.Nil
}

// UserSummary is the public projection of a user (no credentials).
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// AuctionDetail is the detail-read projection: the auction plus the highest
// bid and, once closed and backfilled, the winner.
type AuctionDetail struct {
	Auction           Auction          `json:"auction"`
	HighestBidDetails *HighestBid      `json:"highest_bid_details"`
	WinnerDetails     *UserSummary     `json:"winner_details"`
	CounterOfferPrice *decimal.Decimal `json:"counter_offer_price,omitempty"`
}

// HighestBid is the leaderboard maximum joined with its bidder.
type HighestBid struct {
	ID     uuid.UUID       `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Bidder UserSummary     `json:"bidder"`
}

// AdminStats is the read-only aggregate for the admin dashboard.
type AdminStats struct {
	TotalAuctions  int `db:"total_auctions" json:"total_auctions"`
	ActiveAuctions int `db:"active_auctions" json:"active_auctions"`
	TotalUsers     int `db:"total_users" json:"total_users"`
	TotalBids      int `db:"total_bids" json:"total_bids"`
}

// ProcessedEvent for notification worker idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
