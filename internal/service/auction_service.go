package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-service/internal/auctionerrors"
	"auction-service/internal/invoice"
	"auction-service/internal/models"
	"auction-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AuctionService handles listing lifecycle: create, read (with lazy status
// backfill), update, delete.
type AuctionService struct {
	store  Datastore
	logger *zap.Logger
	now    func() time.Time
}

// NewAuctionService creates a new auction service
func NewAuctionService(store Datastore) *AuctionService {
	return &AuctionService{
		store:  store,
		logger: util.GetLogger(),
		now:    time.Now,
	}
}

// CreateAuctionRequest represents a request to create a listing
type CreateAuctionRequest struct {
	ItemName        string          `json:"item_name" binding:"required,min=3"`
	Description     string          `json:"description" binding:"required,min=5"`
	StartingPrice   decimal.Decimal `json:"starting_price" binding:"required"`
	BidIncrement    decimal.Decimal `json:"bid_increment" binding:"required"`
	GoLiveTime      time.Time       `json:"go_live_time" binding:"required"`
	DurationMinutes int             `json:"duration_minutes" binding:"required,gt=0"`
}

// Validate enforces the value constraints gin's binding tags cannot express
// for decimal fields.
func (r *CreateAuctionRequest) Validate() error {
	if !r.StartingPrice.IsPositive() {
		return fmt.Errorf("starting_price must be greater than 0")
	}
	if !r.BidIncrement.IsPositive() {
		return fmt.Errorf("bid_increment must be greater than 0")
	}
	return nil
}

// CreateAuction creates a listing. The initial status is active when the
// go-live instant has already passed, upcoming otherwise.
func (s *AuctionService) CreateAuction(ctx context.Context, sellerID uuid.UUID, req *CreateAuctionRequest) (*models.Auction, error) {
	ctx, span := util.StartSpan(ctx, "AuctionService.CreateAuction")
	defer span.End()

	status := models.AuctionStatusUpcoming
	if !req.GoLiveTime.After(s.now()) {
		status = models.AuctionStatusActive
	}

	auction := &models.Auction{
		SellerID:        sellerID,
		ItemName:        req.ItemName,
		Description:     req.Description,
		StartingPrice:   req.StartingPrice,
		BidIncrement:    req.BidIncrement,
		GoLiveTime:      req.GoLiveTime,
		DurationMinutes: req.DurationMinutes,
		Status:          status,
	}

	if err := s.store.CreateAuction(ctx, auction); err != nil {
		return nil, fmt.Errorf("failed to create auction: %w", err)
	}

	util.AuctionsCreatedTotal.Inc()
	s.logger.Info("Auction created",
		zap.String("auction_id", auction.ID.String()),
		zap.String("status", auction.Status))

	return auction, nil
}

// ListAuctions returns all listings, latest go-live first. Statuses in the
// projection are recomputed for the current instant; persistence of the
// derived value stays the detail read's job.
func (s *AuctionService) ListAuctions(ctx context.Context) ([]models.Auction, error) {
	auctions, err := s.store.GetAuctions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}

	now := s.now()
	for i := range auctions {
		auctions[i].Status = DeriveStatus(auctions[i].GoLiveTime, auctions[i].DurationMinutes, now)
	}
	return auctions, nil
}

// ListMyAuctions returns the caller's listings with recomputed statuses
func (s *AuctionService) ListMyAuctions(ctx context.Context, sellerID uuid.UUID) ([]models.Auction, error) {
	auctions, err := s.store.GetAuctionsBySellerID(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seller auctions: %w", err)
	}

	now := s.now()
	for i := range auctions {
		auctions[i].Status = DeriveStatus(auctions[i].GoLiveTime, auctions[i].DurationMinutes, now)
	}
	return auctions, nil
}

// GetAuctionDetail loads one auction with its highest bid, refreshing the
// persisted status from the schedule and backfilling highest_bid_id/winner_id
// the first time the auction is observed closed. The backfill is one-time:
// once set, later reads never overwrite it.
func (s *AuctionService) GetAuctionDetail(ctx context.Context, id uuid.UUID) (*models.AuctionDetail, error) {
	ctx, span := util.StartSpan(ctx, "AuctionService.GetAuctionDetail")
	defer span.End()

	auction, err := s.store.GetAuctionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	highest, err := s.store.GetHighestBid(ctx, id)
	if err != nil && !errors.Is(err, auctionerrors.ErrNoBids) {
		return nil, err
	}

	computedStatus := DeriveStatus(auction.GoLiveTime, auction.DurationMinutes, s.now())

	changed := computedStatus != auction.Status
	var backfillBidID, backfillWinnerID *uuid.UUID

	var winnerDetails *models.UserSummary
	if computedStatus == models.AuctionStatusClosed {
		if highest != nil {
			if auction.HighestBidID == nil {
				backfillBidID = &highest.ID
				changed = true
			}
			if auction.WinnerID == nil {
				backfillWinnerID = &highest.BidderID
				changed = true
			}
		}
		switch {
		case backfillWinnerID != nil:
			winnerDetails = &models.UserSummary{
				ID:    highest.BidderID,
				Name:  highest.BidderName,
				Email: highest.BidderEmail,
			}
		case auction.WinnerID != nil:
			// Already backfilled; the ledger maximum may have moved since.
			winner, err := s.store.GetUserByID(ctx, *auction.WinnerID)
			if err != nil {
				return nil, err
			}
			winnerDetails = &models.UserSummary{ID: winner.ID, Name: winner.Name, Email: winner.Email}
		}
	}

	if changed {
		if err := s.store.BackfillAuction(ctx, id, computedStatus, backfillBidID, backfillWinnerID); err != nil {
			return nil, fmt.Errorf("failed to backfill auction: %w", err)
		}
		auction.Status = computedStatus
		if backfillBidID != nil {
			auction.HighestBidID = backfillBidID
		}
		if backfillWinnerID != nil {
			auction.WinnerID = backfillWinnerID
		}
	}

	detail := &models.AuctionDetail{
		Auction:       *auction,
		WinnerDetails: winnerDetails,
	}
	if highest != nil {
		detail.HighestBidDetails = &models.HighestBid{
			ID:     highest.ID,
			Amount: highest.Amount,
			Bidder: models.UserSummary{
				ID:    highest.BidderID,
				Name:  highest.BidderName,
				Email: highest.BidderEmail,
			},
		}
	}

	// Negotiation fields only mean something once the auction is closed.
	if computedStatus != models.AuctionStatusClosed {
		detail.Auction.StatusAfterBid = ""
		detail.Auction.CounterOfferPrice = nil
	} else {
		detail.CounterOfferPrice = detail.Auction.CounterOfferPrice
	}

	return detail, nil
}

// InvoiceData assembles the invoice for a finalized sale. Only the seller and
// the winner may fetch it, and only once a winner has been assigned. The final
// price is the counter-offer price when the sale went through a counter,
// otherwise the winning bid amount.
func (s *AuctionService) InvoiceData(ctx context.Context, callerID, id uuid.UUID) (*invoice.Data, error) {
	auction, err := s.store.GetAuctionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if DeriveStatus(auction.GoLiveTime, auction.DurationMinutes, s.now()) != models.AuctionStatusClosed || auction.WinnerID == nil {
		return nil, auctionerrors.ErrInvoiceUnavailable
	}
	if callerID != auction.SellerID && callerID != *auction.WinnerID {
		return nil, auctionerrors.ErrForbidden
	}

	finalPrice := decimal.Zero
	if auction.CounterOfferPrice != nil {
		finalPrice = *auction.CounterOfferPrice
	} else {
		highest, err := s.store.GetHighestBid(ctx, id)
		if err != nil {
			return nil, err
		}
		finalPrice = highest.Amount
	}

	seller, err := s.store.GetUserByID(ctx, auction.SellerID)
	if err != nil {
		return nil, err
	}
	buyer, err := s.store.GetUserByID(ctx, *auction.WinnerID)
	if err != nil {
		return nil, err
	}

	return &invoice.Data{
		AuctionID:   auction.ID,
		ItemName:    auction.ItemName,
		FinalPrice:  finalPrice,
		SellerName:  seller.Name,
		SellerEmail: seller.Email,
		BuyerName:   buyer.Name,
		BuyerEmail:  buyer.Email,
		Date:        auction.UpdatedAt,
	}, nil
}

// UpdateAuction lets the owner revise listing terms
func (s *AuctionService) UpdateAuction(ctx context.Context, callerID, id uuid.UUID, req *CreateAuctionRequest) (*models.Auction, error) {
	auction, err := s.store.GetAuctionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if auction.SellerID != callerID {
		return nil, auctionerrors.ErrNotOwner
	}

	auction.ItemName = req.ItemName
	auction.Description = req.Description
	auction.StartingPrice = req.StartingPrice
	auction.BidIncrement = req.BidIncrement
	auction.GoLiveTime = req.GoLiveTime
	auction.DurationMinutes = req.DurationMinutes

	if err := s.store.UpdateAuctionTerms(ctx, auction); err != nil {
		return nil, fmt.Errorf("failed to update auction: %w", err)
	}
	return auction, nil
}

// DeleteAuction removes a listing. Deletion is refused once any bid exists,
// so committed ledger entries are never orphaned.
func (s *AuctionService) DeleteAuction(ctx context.Context, callerID, id uuid.UUID) error {
	auction, err := s.store.GetAuctionByID(ctx, id)
	if err != nil {
		return err
	}
	if auction.SellerID != callerID {
		return auctionerrors.ErrNotOwner
	}

	n, err := s.store.CountBids(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count bids: %w", err)
	}
	if n > 0 {
		return auctionerrors.ErrAuctionHasBids
	}

	return s.store.DeleteAuction(ctx, id)
}
