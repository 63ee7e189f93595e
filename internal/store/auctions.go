package store

import (
	"context"
	"database/sql"
	"fmt"

	"auction-service/internal/auctionerrors"
	"auction-service/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateAuction inserts a new listing
func (s *Store) CreateAuction(ctx context.Context, auction *models.Auction) error {
	query := `
		INSERT INTO auctions (seller_id, item_name, description, starting_price,
		                      bid_increment, go_live_time, duration_minutes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, status_after_bid, created_at, updated_at`

	return s.db.GetContext(ctx, auction, query,
		auction.SellerID, auction.ItemName, auction.Description, auction.StartingPrice,
		auction.BidIncrement, auction.GoLiveTime, auction.DurationMinutes, auction.Status)
}

// GetAuctionByID retrieves an auction by ID
func (s *Store) GetAuctionByID(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	var auction models.Auction
	err := s.db.GetContext(ctx, &auction, "SELECT * FROM auctions WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, auctionerrors.ErrAuctionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return &auction, nil
}

// GetAuctions retrieves all auctions, latest go-live first
func (s *Store) GetAuctions(ctx context.Context) ([]models.Auction, error) {
	var auctions []models.Auction
	err := s.db.SelectContext(ctx, &auctions,
		"SELECT * FROM auctions ORDER BY go_live_time DESC")
	return auctions, err
}

// GetAuctionsBySellerID retrieves a seller's listings
func (s *Store) GetAuctionsBySellerID(ctx context.Context, sellerID uuid.UUID) ([]models.Auction, error) {
	var auctions []models.Auction
	err := s.db.SelectContext(ctx, &auctions,
		"SELECT * FROM auctions WHERE seller_id = $1 ORDER BY go_live_time DESC", sellerID)
	return auctions, err
}

// UpdateAuctionTerms updates the mutable listing terms
func (s *Store) UpdateAuctionTerms(ctx context.Context, auction *models.Auction) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE auctions
		SET item_name = $1, description = $2, starting_price = $3, bid_increment = $4,
		    go_live_time = $5, duration_minutes = $6, updated_at = NOW()
		WHERE id = $7`,
		auction.ItemName, auction.Description, auction.StartingPrice, auction.BidIncrement,
		auction.GoLiveTime, auction.DurationMinutes, auction.ID)
	return err
}

// DeleteAuction removes a listing. Bids cascade at the schema level, but the
// service layer refuses deletion once any bid exists.
func (s *Store) DeleteAuction(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM auctions WHERE id = $1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return auctionerrors.ErrAuctionNotFound
	}
	return nil
}

// BackfillAuction persists the lazily derived status and, when provided,
// the one-time highest-bid/winner backfill. Nil ids leave existing values
// untouched.
func (s *Store) BackfillAuction(ctx context.Context, id uuid.UUID, status string, highestBidID, winnerID *uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE auctions
		SET status = $1,
		    highest_bid_id = COALESCE($2, highest_bid_id),
		    winner_id = COALESCE($3, winner_id),
		    updated_at = NOW()
		WHERE id = $4`,
		status, highestBidID, winnerID, id)
	return err
}

// AcceptHighestBid transitions pending -> accepted. The guard on the current
// status_after_bid makes racing transitions mutually exclusive: the second
// caller matches zero rows.
func (s *Store) AcceptHighestBid(ctx context.Context, auctionID, winnerID, highestBidID uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE auctions
		SET status = 'closed', status_after_bid = 'accepted',
		    winner_id = $1, highest_bid_id = $2, updated_at = NOW()
		WHERE id = $3 AND status_after_bid = 'pending'`,
		winnerID, highestBidID, auctionID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// RejectHighestBid transitions pending -> rejected
func (s *Store) RejectHighestBid(ctx context.Context, auctionID uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE auctions
		SET status = 'closed', status_after_bid = 'rejected', updated_at = NOW()
		WHERE id = $1 AND status_after_bid = 'pending'`,
		auctionID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// SetCounterOffer transitions pending -> countered with the seller's price
func (s *Store) SetCounterOffer(ctx context.Context, auctionID uuid.UUID, amount decimal.Decimal) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE auctions
		SET status_after_bid = 'countered', counter_offer_price = $1, updated_at = NOW()
		WHERE id = $2 AND status_after_bid = 'pending'`,
		amount, auctionID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// AcceptCounter transitions countered -> accepted, assigning the winner
func (s *Store) AcceptCounter(ctx context.Context, auctionID, winnerID uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE auctions
		SET status = 'closed', status_after_bid = 'accepted',
		    winner_id = $1, updated_at = NOW()
		WHERE id = $2 AND status_after_bid = 'countered'`,
		winnerID, auctionID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// RejectCounter transitions countered -> rejected, clearing the counter
// price and any winner assignment
func (s *Store) RejectCounter(ctx context.Context, auctionID uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE auctions
		SET status = 'closed', status_after_bid = 'rejected',
		    winner_id = NULL, counter_offer_price = NULL, updated_at = NOW()
		WHERE id = $1 AND status_after_bid = 'countered'`,
		auctionID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ResetAuction wipes the bid ledger and returns the auction to its initial
// pre-live state in one transaction. Running it twice lands on the same row.
func (s *Store) ResetAuction(ctx context.Context, auctionID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM bids WHERE auction_id = $1", auctionID); err != nil {
		return fmt.Errorf("failed to clear bids: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE auctions
		SET status = 'upcoming', status_after_bid = 'pending',
		    winner_id = NULL, highest_bid_id = NULL, counter_offer_price = NULL,
		    updated_at = NOW()
		WHERE id = $1`,
		auctionID)
	if err != nil {
		return fmt.Errorf("failed to reset auction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return auctionerrors.ErrAuctionNotFound
	}

	return tx.Commit()
}

// ForceStartAuction flips a listing live immediately, leaving bids and
// negotiation state alone
func (s *Store) ForceStartAuction(ctx context.Context, auctionID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE auctions
		SET status = 'active', go_live_time = NOW(), updated_at = NOW()
		WHERE id = $1`,
		auctionID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return auctionerrors.ErrAuctionNotFound
	}
	return nil
}

// GetAdminStats returns the read-only dashboard aggregates
func (s *Store) GetAdminStats(ctx context.Context) (*models.AdminStats, error) {
	var stats models.AdminStats
	err := s.db.GetContext(ctx, &stats, `
		SELECT
			(SELECT COUNT(*) FROM auctions)                          AS total_auctions,
			(SELECT COUNT(*) FROM auctions WHERE status = 'active')  AS active_auctions,
			(SELECT COUNT(*) FROM users)                             AS total_users,
			(SELECT COUNT(*) FROM bids)                              AS total_bids`)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin stats: %w", err)
	}
	return &stats, nil
}
