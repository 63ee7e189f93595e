package service

import (
	"context"
	"fmt"

	"auction-service/internal/models"
	"auction-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdminService handles the out-of-band administrative overrides and the
// read-only dashboard aggregates.
type AdminService struct {
	store  Datastore
	cache  LeaderCache
	logger *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(store Datastore, cache LeaderCache) *AdminService {
	return &AdminService{
		store:  store,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// Stats returns dashboard aggregates
func (s *AdminService) Stats(ctx context.Context) (*models.AdminStats, error) {
	return s.store.GetAdminStats(ctx)
}

// ListAuctions returns every listing for the admin view
func (s *AdminService) ListAuctions(ctx context.Context) ([]models.Auction, error) {
	return s.store.GetAuctions(ctx)
}

// ListUsers returns every account for the admin view
func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.GetUsers(ctx)
}

// StartAuction forces a listing live immediately, rescheduling its go-live
// to now. Bids and negotiation state are untouched.
func (s *AdminService) StartAuction(ctx context.Context, auctionID uuid.UUID) error {
	if err := s.store.ForceStartAuction(ctx, auctionID); err != nil {
		return err
	}
	s.logger.Info("Auction force-started", zap.String("auction_id", auctionID.String()))
	return nil
}

// ResetAuction wipes the bid ledger and negotiation state and returns the
// listing to upcoming. The cache entry is dropped so the next bid reseeds
// from the starting price. Running it twice lands on the same end state.
func (s *AdminService) ResetAuction(ctx context.Context, auctionID uuid.UUID) error {
	if err := s.store.ResetAuction(ctx, auctionID); err != nil {
		return err
	}
	if err := s.cache.ClearLeader(ctx, auctionID); err != nil {
		return fmt.Errorf("failed to clear leader cache: %w", err)
	}

	util.AuctionsResetTotal.Inc()
	s.logger.Info("Auction reset", zap.String("auction_id", auctionID.String()))
	return nil
}
