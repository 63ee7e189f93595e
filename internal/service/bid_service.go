package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-service/internal/auctionerrors"
	"auction-service/internal/models"
	"auction-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BidService arbitrates bid submissions against the fast-bid cache and keeps
// the durable ledger as the source of record.
type BidService struct {
	store     Datastore
	cache     LeaderCache
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewBidService creates a new bid service
func NewBidService(store Datastore, cache LeaderCache, publisher Publisher) *BidService {
	return &BidService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		logger:    util.GetLogger(),
		now:       time.Now,
	}
}

// PlaceBidRequest represents a bid submission
type PlaceBidRequest struct {
	AuctionID    uuid.UUID       `json:"auction_id" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	ConnectionID string          `json:"connection_id"`
}

// PlaceBid validates a bid against the auction's schedule, arbitrates it
// against the current leader in one atomic cache operation, appends the
// winning bid to the ledger and broadcasts the new leader to the room. The
// broadcast is best-effort: a publish failure never fails the request.
func (s *BidService) PlaceBid(ctx context.Context, bidder *models.User, req *PlaceBidRequest) (*models.LeaderSnapshot, *models.Auction, error) {
	ctx, span := util.StartSpan(ctx, "BidService.PlaceBid")
	defer span.End()

	auction, err := s.store.GetAuctionByID(ctx, req.AuctionID)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	switch DeriveStatus(auction.GoLiveTime, auction.DurationMinutes, now) {
	case models.AuctionStatusUpcoming:
		util.BidsRejectedTotal.WithLabelValues("not_started").Inc()
		return nil, nil, auctionerrors.ErrAuctionNotStarted
	case models.AuctionStatusClosed:
		util.BidsRejectedTotal.WithLabelValues("ended").Inc()
		return nil, nil, auctionerrors.ErrAuctionEnded
	}

	seed := &models.LeaderSnapshot{Amount: auction.StartingPrice}
	newLeader := &models.LeaderSnapshot{
		BidderID:     bidder.ID,
		Name:         bidder.Name,
		Email:        bidder.Email,
		Amount:       req.Amount,
		ConnectionID: req.ConnectionID,
	}

	start := time.Now()
	accepted, current, err := s.cache.PlaceBid(ctx, auction.ID, req.Amount, seed, newLeader)
	util.BidArbitrationLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, nil, fmt.Errorf("bid arbitration failed: %w", err)
	}
	if !accepted {
		util.BidsRejectedTotal.WithLabelValues("too_low").Inc()
		return nil, nil, fmt.Errorf("%w: current bid is %s",
			auctionerrors.ErrBidTooLow, current.StringFixed(2))
	}

	bid := &models.Bid{
		AuctionID: auction.ID,
		BidderID:  bidder.ID,
		Amount:    req.Amount,
	}
	if err := s.store.CreateBid(ctx, bid); err != nil {
		// Cache is now ahead of the ledger; the leader fallback and reset
		// both reconstruct it from the ledger maximum.
		return nil, nil, fmt.Errorf("failed to record bid: %w", err)
	}

	util.BidsPlacedTotal.Inc()
	s.logger.Info("Bid accepted",
		zap.String("auction_id", auction.ID.String()),
		zap.String("bidder_id", bidder.ID.String()),
		zap.String("amount", req.Amount.StringFixed(2)))

	event := &models.BidUpdatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeBidUpdated,
			Timestamp: now,
		},
		AuctionID:    auction.ID,
		BidderID:     bidder.ID,
		BidderName:   bidder.Name,
		Amount:       req.Amount,
		ConnectionID: req.ConnectionID,
		Messages: models.RoomMessages{
			PrevLeader: fmt.Sprintf("You have been outbid on %q: new highest bid is %s", auction.ItemName, req.Amount.StringFixed(2)),
			Seller:     fmt.Sprintf("New bid on %q by %s: %s", auction.ItemName, bidder.Name, req.Amount.StringFixed(2)),
			Viewer:     fmt.Sprintf("New highest bid by %s: %s", bidder.Name, req.Amount.StringFixed(2)),
		},
	}
	if err := s.publisher.PublishBidUpdated(ctx, event); err != nil {
		s.logger.Error("Failed to publish bidUpdated event", zap.Error(err))
	}

	return newLeader, auction, nil
}

// Leader returns the current leader snapshot for an auction. A cold cache
// falls back to the ledger maximum (tie-break earliest) with the starting
// price as floor, then repopulates the cache without clobbering a fresher
// concurrent bid.
func (s *BidService) Leader(ctx context.Context, auctionID uuid.UUID) (*models.LeaderSnapshot, error) {
	snapshot, err := s.cache.GetLeader(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if snapshot != nil {
		return snapshot, nil
	}

	auction, err := s.store.GetAuctionByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	snapshot = &models.LeaderSnapshot{Amount: auction.StartingPrice}
	highest, err := s.store.GetHighestBid(ctx, auctionID)
	if err != nil && !errors.Is(err, auctionerrors.ErrNoBids) {
		return nil, err
	}
	if highest != nil {
		snapshot = &models.LeaderSnapshot{
			BidderID: highest.BidderID,
			Name:     highest.BidderName,
			Email:    highest.BidderEmail,
			Amount:   highest.Amount,
		}
	}

	set, err := s.cache.SetLeaderIfAbsent(ctx, auctionID, snapshot)
	if err != nil {
		return nil, err
	}
	if !set {
		// Lost the race to a concurrent bid; its snapshot is newer.
		if fresh, err := s.cache.GetLeader(ctx, auctionID); err == nil && fresh != nil {
			return fresh, nil
		}
	}
	return snapshot, nil
}

// Bids returns the full ledger for an auction, highest first
func (s *BidService) Bids(ctx context.Context, auctionID uuid.UUID) ([]models.BidWithBidder, error) {
	if _, err := s.store.GetAuctionByID(ctx, auctionID); err != nil {
		return nil, err
	}
	return s.store.GetBidsByAuctionID(ctx, auctionID)
}
