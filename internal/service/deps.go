package service

import (
	"context"

	"auction-service/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Datastore is the durable storage surface the services consume. *store.Store
// satisfies it; tests plug in in-memory fakes.
type Datastore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)

	CreateAuction(ctx context.Context, auction *models.Auction) error
	GetAuctionByID(ctx context.Context, id uuid.UUID) (*models.Auction, error)
	GetAuctions(ctx context.Context) ([]models.Auction, error)
	GetAuctionsBySellerID(ctx context.Context, sellerID uuid.UUID) ([]models.Auction, error)
	UpdateAuctionTerms(ctx context.Context, auction *models.Auction) error
	DeleteAuction(ctx context.Context, id uuid.UUID) error
	BackfillAuction(ctx context.Context, id uuid.UUID, status string, highestBidID, winnerID *uuid.UUID) error

	AcceptHighestBid(ctx context.Context, auctionID, winnerID, highestBidID uuid.UUID) (bool, error)
	RejectHighestBid(ctx context.Context, auctionID uuid.UUID) (bool, error)
	SetCounterOffer(ctx context.Context, auctionID uuid.UUID, amount decimal.Decimal) (bool, error)
	AcceptCounter(ctx context.Context, auctionID, winnerID uuid.UUID) (bool, error)
	RejectCounter(ctx context.Context, auctionID uuid.UUID) (bool, error)
	ResetAuction(ctx context.Context, auctionID uuid.UUID) error
	ForceStartAuction(ctx context.Context, auctionID uuid.UUID) error
	GetAdminStats(ctx context.Context) (*models.AdminStats, error)

	CreateBid(ctx context.Context, bid *models.Bid) error
	GetHighestBid(ctx context.Context, auctionID uuid.UUID) (*models.BidWithBidder, error)
	GetBidsByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]models.BidWithBidder, error)
	CountBids(ctx context.Context, auctionID uuid.UUID) (int, error)
}

// LeaderCache is the fast-bid cache surface. *redisclient.Client satisfies it.
type LeaderCache interface {
	GetLeader(ctx context.Context, auctionID uuid.UUID) (*models.LeaderSnapshot, error)
	SetLeaderIfAbsent(ctx context.Context, auctionID uuid.UUID, snapshot *models.LeaderSnapshot) (bool, error)
	ClearLeader(ctx context.Context, auctionID uuid.UUID) error
	PlaceBid(ctx context.Context, auctionID uuid.UUID, amount decimal.Decimal, seed, newLeader *models.LeaderSnapshot) (bool, decimal.Decimal, error)
}

// Publisher pushes room events. *broker.RoomPublisher satisfies it; the core
// never touches the transport directly.
type Publisher interface {
	PublishBidUpdated(ctx context.Context, event *models.BidUpdatedEvent) error
	PublishBidAccepted(ctx context.Context, event *models.BidAcceptedEvent) error
	PublishBidRejected(ctx context.Context, event *models.BidRejectedEvent) error
	PublishCounterOffer(ctx context.Context, event *models.CounterOfferEvent) error
	PublishCounterAccepted(ctx context.Context, event *models.CounterAcceptedEvent) error
	PublishCounterRejected(ctx context.Context, event *models.CounterRejectedEvent) error
}
