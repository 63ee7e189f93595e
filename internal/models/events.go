package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types pushed to an auction's room. One fixed-field record per kind;
// subscribers never receive free-form payloads.
const (
	EventTypeBidUpdated      = "bidUpdated"
	EventTypeBidAccepted     = "bidAccepted"
	EventTypeBidRejected     = "bidRejected"
	EventTypeCounterOffer    = "counterOffer"
	EventTypeCounterAccepted = "counterAccepted"
	EventTypeCounterRejected = "counterRejected"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomMessages carries the human-readable text per audience: the outbid
// previous leader, the seller, and everyone else watching the room.
type RoomMessages struct {
	PrevLeader string `json:"prev_leader,omitempty"`
	Seller     string `json:"seller,omitempty"`
	Viewer     string `json:"viewer,omitempty"`
}

// BidUpdatedEvent published when a new leading bid is accepted
type BidUpdatedEvent struct {
	BaseEvent
	AuctionID    uuid.UUID       `json:"auction_id"`
	BidderID     uuid.UUID       `json:"bidder_id"`
	BidderName   string          `json:"bidder_name"`
	Amount       decimal.Decimal `json:"amount"`
	ConnectionID string          `json:"connection_id"`
	Messages     RoomMessages    `json:"messages"`
}

// BidAcceptedEvent published when the seller accepts the highest bid
type BidAcceptedEvent struct {
	BaseEvent
	AuctionID uuid.UUID       `json:"auction_id"`
	WinnerID  uuid.UUID       `json:"winner_id"`
	Amount    decimal.Decimal `json:"amount"`
	Messages  RoomMessages    `json:"messages"`
}

// BidRejectedEvent published when the seller rejects the highest bid
type BidRejectedEvent struct {
	BaseEvent
	AuctionID uuid.UUID    `json:"auction_id"`
	Messages  RoomMessages `json:"messages"`
}

// CounterOfferEvent published when the seller counters the highest bid
type CounterOfferEvent struct {
	BaseEvent
	AuctionID uuid.UUID       `json:"auction_id"`
	BidderID  uuid.UUID       `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	Messages  RoomMessages    `json:"messages"`
}

// CounterAcceptedEvent published when the bidder accepts a counter-offer
type CounterAcceptedEvent struct {
	BaseEvent
	AuctionID uuid.UUID       `json:"auction_id"`
	WinnerID  uuid.UUID       `json:"winner_id"`
	Amount    decimal.Decimal `json:"amount"`
	Messages  RoomMessages    `json:"messages"`
}

// CounterRejectedEvent published when the bidder declines a counter-offer
type CounterRejectedEvent struct {
	BaseEvent
	AuctionID uuid.UUID    `json:"auction_id"`
	Messages  RoomMessages `json:"messages"`
}
