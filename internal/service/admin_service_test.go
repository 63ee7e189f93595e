package service

import (
	"context"
	"testing"
	"time"

	"auction-service/internal/models"
	"auction-service/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminFixture(t *testing.T) (*AdminService, *fakeStore, *fakeCache) {
	t.Helper()
	if err := util.InitLogger("development"); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	store := newFakeStore()
	cache := newFakeCache()
	return NewAdminService(store, cache), store, cache
}

func TestResetAuction(t *testing.T) {
	svc, store, cache := newAdminFixture(t)
	seller := seedUser(t, store)
	bidder := seedUser(t, store)
	auction := seedAuction(t, store, seller.ID)

	bid := &models.Bid{AuctionID: auction.ID, BidderID: bidder.ID, Amount: decimal.NewFromInt(150)}
	require.NoError(t, store.CreateBid(context.Background(), bid))
	_, err := cache.SetLeaderIfAbsent(context.Background(), auction.ID, &models.LeaderSnapshot{
		BidderID: bidder.ID,
		Amount:   decimal.NewFromInt(150),
	})
	require.NoError(t, err)

	require.NoError(t, svc.ResetAuction(context.Background(), auction.ID))

	n, err := store.CountBids(context.Background(), auction.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	stored := store.auctions[auction.ID]
	assert.Equal(t, models.AuctionStatusUpcoming, stored.Status)
	assert.Equal(t, models.NegotiationPending, stored.StatusAfterBid)
	assert.Nil(t, stored.WinnerID)
	assert.Nil(t, stored.HighestBidID)
	assert.Nil(t, stored.CounterOfferPrice)

	leader, err := cache.GetLeader(context.Background(), auction.ID)
	require.NoError(t, err)
	assert.Nil(t, leader)

	// Running it again lands on the same end state.
	require.NoError(t, svc.ResetAuction(context.Background(), auction.ID))
	assert.Equal(t, models.AuctionStatusUpcoming, store.auctions[auction.ID].Status)
}

func TestForceStartAuction(t *testing.T) {
	svc, store, _ := newAdminFixture(t)
	seller := seedUser(t, store)
	auction := seedAuction(t, store, seller.ID)
	store.auctions[auction.ID].GoLiveTime = time.Now().Add(24 * time.Hour)
	store.auctions[auction.ID].Status = models.AuctionStatusUpcoming

	require.NoError(t, svc.StartAuction(context.Background(), auction.ID))

	stored := store.auctions[auction.ID]
	assert.Equal(t, models.AuctionStatusActive, stored.Status)
	assert.False(t, stored.GoLiveTime.After(time.Now()))
	assert.Equal(t, models.AuctionStatusActive, DeriveStatus(stored.GoLiveTime, stored.DurationMinutes, time.Now()))
}

func TestAdminStats(t *testing.T) {
	svc, store, _ := newAdminFixture(t)
	seller := seedUser(t, store)
	bidder := seedUser(t, store)
	auction := seedAuction(t, store, seller.ID)

	bid := &models.Bid{AuctionID: auction.ID, BidderID: bidder.ID, Amount: decimal.NewFromInt(150)}
	require.NoError(t, store.CreateBid(context.Background(), bid))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalAuctions)
	assert.Equal(t, 1, stats.ActiveAuctions)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 1, stats.TotalBids)
}
