package store

import (
	"context"
	"database/sql"
	"fmt"

	"auction-service/internal/auctionerrors"
	"auction-service/internal/models"

	"github.com/google/uuid"
)

// CreateBid appends one immutable entry to the bid ledger
func (s *Store) CreateBid(ctx context.Context, bid *models.Bid) error {
	query := `
		INSERT INTO bids (auction_id, bidder_id, amount)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, bid, query,
		bid.AuctionID, bid.BidderID, bid.Amount)
}

// GetHighestBid returns the ledger maximum for an auction joined with the
// bidder's identity. Ties break on the earliest bid.
func (s *Store) GetHighestBid(ctx context.Context, auctionID uuid.UUID) (*models.BidWithBidder, error) {
	var bid models.BidWithBidder
	err := s.db.GetContext(ctx, &bid, `
		SELECT b.id, b.auction_id, b.bidder_id, b.amount, b.created_at,
		       u.name AS bidder_name, u.email AS bidder_email
		FROM bids b
		JOIN users u ON u.id = b.bidder_id
		WHERE b.auction_id = $1
		ORDER BY b.amount DESC, b.created_at ASC
		LIMIT 1`,
		auctionID)
	if err == sql.ErrNoRows {
		return nil, auctionerrors.ErrNoBids
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get highest bid: %w", err)
	}
	return &bid, nil
}

// GetBidsByAuctionID returns the leaderboard, highest first
func (s *Store) GetBidsByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]models.BidWithBidder, error) {
	var bids []models.BidWithBidder
	err := s.db.SelectContext(ctx, &bids, `
		SELECT b.id, b.auction_id, b.bidder_id, b.amount, b.created_at,
		       u.name AS bidder_name, u.email AS bidder_email
		FROM bids b
		JOIN users u ON u.id = b.bidder_id
		WHERE b.auction_id = $1
		ORDER BY b.amount DESC, b.created_at ASC`,
		auctionID)
	return bids, err
}

// CountBids returns how many bids an auction has received
func (s *Store) CountBids(ctx context.Context, auctionID uuid.UUID) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM bids WHERE auction_id = $1", auctionID)
	return n, err
}
