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

// NegotiationService drives the post-close flow between seller and highest
// bidder: pending -> accepted | rejected | countered -> accepted | rejected.
// Every transition commits through a conditional update guarded on the
// expected current state, so two concurrent transitions against the same
// state can never both succeed.
type NegotiationService struct {
	store     Datastore
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewNegotiationService creates a new negotiation service
func NewNegotiationService(store Datastore, publisher Publisher) *NegotiationService {
	return &NegotiationService{
		store:     store,
		publisher: publisher,
		logger:    util.GetLogger(),
		now:       time.Now,
	}
}

// loadClosed fetches the auction and verifies the time-derived status is
// closed; negotiation actions are meaningless on a live or upcoming auction.
func (s *NegotiationService) loadClosed(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	auction, err := s.store.GetAuctionByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if DeriveStatus(auction.GoLiveTime, auction.DurationMinutes, s.now()) != models.AuctionStatusClosed {
		return nil, fmt.Errorf("%w: auction is not closed", auctionerrors.ErrInvalidState)
	}
	return auction, nil
}

// AcceptBid lets the seller accept the highest bid, assigning the winner and
// finalizing the sale.
func (s *NegotiationService) AcceptBid(ctx context.Context, callerID, auctionID uuid.UUID) (*models.BidWithBidder, error) {
	ctx, span := util.StartSpan(ctx, "NegotiationService.AcceptBid")
	defer span.End()

	auction, err := s.loadClosed(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if auction.SellerID != callerID {
		return nil, auctionerrors.ErrNotOwner
	}

	highest, err := s.store.GetHighestBid(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	ok, err := s.store.AcceptHighestBid(ctx, auctionID, highest.BidderID, highest.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to accept bid: %w", err)
	}
	if !ok {
		util.NegotiationConflictsTotal.Inc()
		return nil, fmt.Errorf("%w: bid is not pending", auctionerrors.ErrInvalidState)
	}

	util.NegotiationTransitionsTotal.WithLabelValues("accept").Inc()
	s.logger.Info("Bid accepted",
		zap.String("auction_id", auctionID.String()),
		zap.String("winner_id", highest.BidderID.String()),
		zap.String("amount", highest.Amount.StringFixed(2)))

	event := &models.BidAcceptedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeBidAccepted,
			Timestamp: s.now(),
		},
		AuctionID: auctionID,
		WinnerID:  highest.BidderID,
		Amount:    highest.Amount,
		Messages: models.RoomMessages{
			PrevLeader: fmt.Sprintf("Congratulations! Your bid of %s for %q was accepted", highest.Amount.StringFixed(2), auction.ItemName),
			Seller:     fmt.Sprintf("You accepted the bid of %s for %q", highest.Amount.StringFixed(2), auction.ItemName),
			Viewer:     fmt.Sprintf("Auction %q closed: winning bid %s", auction.ItemName, highest.Amount.StringFixed(2)),
		},
	}
	if err := s.publisher.PublishBidAccepted(ctx, event); err != nil {
		s.logger.Error("Failed to publish bidAccepted event", zap.Error(err))
	}

	return highest, nil
}

// RejectBid lets the seller reject the highest bid. The auction stays
// closed with no winner.
func (s *NegotiationService) RejectBid(ctx context.Context, callerID, auctionID uuid.UUID) error {
	ctx, span := util.StartSpan(ctx, "NegotiationService.RejectBid")
	defer span.End()

	auction, err := s.loadClosed(ctx, auctionID)
	if err != nil {
		return err
	}
	if auction.SellerID != callerID {
		return auctionerrors.ErrNotOwner
	}

	ok, err := s.store.RejectHighestBid(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("failed to reject bid: %w", err)
	}
	if !ok {
		util.NegotiationConflictsTotal.Inc()
		return fmt.Errorf("%w: bid is not pending", auctionerrors.ErrInvalidState)
	}

	util.NegotiationTransitionsTotal.WithLabelValues("reject").Inc()

	event := &models.BidRejectedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeBidRejected,
			Timestamp: s.now(),
		},
		AuctionID: auctionID,
		Messages: models.RoomMessages{
			PrevLeader: fmt.Sprintf("Your bid for %q was rejected by the seller", auction.ItemName),
			Viewer:     fmt.Sprintf("Auction %q closed without a sale", auction.ItemName),
		},
	}
	if err := s.publisher.PublishBidRejected(ctx, event); err != nil {
		s.logger.Error("Failed to publish bidRejected event", zap.Error(err))
	}

	return nil
}

// CounterOffer lets the seller counter the highest bid with a higher price
func (s *NegotiationService) CounterOffer(ctx context.Context, callerID, auctionID uuid.UUID, amount decimal.Decimal) error {
	ctx, span := util.StartSpan(ctx, "NegotiationService.CounterOffer")
	defer span.End()

	auction, err := s.loadClosed(ctx, auctionID)
	if err != nil {
		return err
	}
	if auction.SellerID != callerID {
		return auctionerrors.ErrNotOwner
	}

	highest, err := s.store.GetHighestBid(ctx, auctionID)
	if err != nil {
		return err
	}
	if amount.LessThanOrEqual(highest.Amount) {
		return auctionerrors.ErrCounterTooLow
	}

	ok, err := s.store.SetCounterOffer(ctx, auctionID, amount)
	if err != nil {
		return fmt.Errorf("failed to set counter-offer: %w", err)
	}
	if !ok {
		util.NegotiationConflictsTotal.Inc()
		return fmt.Errorf("%w: bid is not pending", auctionerrors.ErrInvalidState)
	}

	util.NegotiationTransitionsTotal.WithLabelValues("counter").Inc()
	s.logger.Info("Counter-offer sent",
		zap.String("auction_id", auctionID.String()),
		zap.String("amount", amount.StringFixed(2)))

	event := &models.CounterOfferEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCounterOffer,
			Timestamp: s.now(),
		},
		AuctionID: auctionID,
		BidderID:  highest.BidderID,
		Amount:    amount,
		Messages: models.RoomMessages{
			PrevLeader: fmt.Sprintf("The seller countered with %s for %q", amount.StringFixed(2), auction.ItemName),
			Seller:     fmt.Sprintf("Counter-offer of %s sent for %q", amount.StringFixed(2), auction.ItemName),
		},
	}
	if err := s.publisher.PublishCounterOffer(ctx, event); err != nil {
		s.logger.Error("Failed to publish counterOffer event", zap.Error(err))
	}

	return nil
}

// CounterResponse lets the highest bidder accept or decline the seller's
// counter-offer. Only the bidder who placed the current highest bid may
// respond, and only while the auction is countered.
func (s *NegotiationService) CounterResponse(ctx context.Context, callerID, auctionID uuid.UUID, accept bool) (*decimal.Decimal, error) {
	ctx, span := util.StartSpan(ctx, "NegotiationService.CounterResponse")
	defer span.End()

	auction, err := s.loadClosed(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	highest, err := s.store.GetHighestBid(ctx, auctionID)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrNoBids) {
			return nil, auctionerrors.ErrNotEligible
		}
		return nil, err
	}
	if highest.BidderID != callerID {
		return nil, auctionerrors.ErrNotEligible
	}
	if auction.StatusAfterBid != models.NegotiationCountered {
		return nil, fmt.Errorf("%w: no counter-offer to respond to", auctionerrors.ErrInvalidState)
	}

	counterPrice := auction.CounterOfferPrice

	if accept {
		ok, err := s.store.AcceptCounter(ctx, auctionID, callerID)
		if err != nil {
			return nil, fmt.Errorf("failed to accept counter: %w", err)
		}
		if !ok {
			util.NegotiationConflictsTotal.Inc()
			return nil, fmt.Errorf("%w: no counter-offer to respond to", auctionerrors.ErrInvalidState)
		}

		util.NegotiationTransitionsTotal.WithLabelValues("counter_accept").Inc()

		var amount decimal.Decimal
		if counterPrice != nil {
			amount = *counterPrice
		}
		event := &models.CounterAcceptedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeCounterAccepted,
				Timestamp: s.now(),
			},
			AuctionID: auctionID,
			WinnerID:  callerID,
			Amount:    amount,
			Messages: models.RoomMessages{
				Seller:     fmt.Sprintf("Your counter-offer of %s for %q was accepted by %s", amount.StringFixed(2), auction.ItemName, highest.BidderName),
				PrevLeader: fmt.Sprintf("You accepted the counter-offer of %s for %q", amount.StringFixed(2), auction.ItemName),
				Viewer:     fmt.Sprintf("Auction %q closed: sold at %s", auction.ItemName, amount.StringFixed(2)),
			},
		}
		if err := s.publisher.PublishCounterAccepted(ctx, event); err != nil {
			s.logger.Error("Failed to publish counterAccepted event", zap.Error(err))
		}
		return counterPrice, nil
	}

	ok, err := s.store.RejectCounter(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to reject counter: %w", err)
	}
	if !ok {
		util.NegotiationConflictsTotal.Inc()
		return nil, fmt.Errorf("%w: no counter-offer to respond to", auctionerrors.ErrInvalidState)
	}

	util.NegotiationTransitionsTotal.WithLabelValues("counter_reject").Inc()

	event := &models.CounterRejectedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCounterRejected,
			Timestamp: s.now(),
		},
		AuctionID: auctionID,
		Messages: models.RoomMessages{
			Seller: fmt.Sprintf("Your counter-offer for %q was declined by %s", auction.ItemName, highest.BidderName),
			Viewer: fmt.Sprintf("Auction %q closed without a sale", auction.ItemName),
		},
	}
	if err := s.publisher.PublishCounterRejected(ctx, event); err != nil {
		s.logger.Error("Failed to publish counterRejected event", zap.Error(err))
	}

	return nil, nil
}
