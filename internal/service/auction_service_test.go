package service

import (
	"context"
	"testing"
	"time"

	"auction-service/internal/auctionerrors"
	"auction-service/internal/models"
	"auction-service/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuctionFixture(t *testing.T) (*AuctionService, *fakeStore) {
	t.Helper()
	if err := util.InitLogger("development"); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	store := newFakeStore()
	return NewAuctionService(store), store
}

func TestCreateAuctionStatus(t *testing.T) {
	svc, store := newAuctionFixture(t)
	seller := seedUser(t, store)

	req := &CreateAuctionRequest{
		ItemName:        "Antique clock",
		Description:     "A very old clock",
		StartingPrice:   decimal.NewFromInt(50),
		BidIncrement:    decimal.NewFromInt(5),
		GoLiveTime:      time.Now().Add(time.Hour),
		DurationMinutes: 60,
	}
	auction, err := svc.CreateAuction(context.Background(), seller.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionStatusUpcoming, auction.Status)

	req.GoLiveTime = time.Now().Add(-time.Minute)
	auction, err = svc.CreateAuction(context.Background(), seller.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionStatusActive, auction.Status)
}

func TestCreateAuctionRequestValidate(t *testing.T) {
	req := &CreateAuctionRequest{
		StartingPrice: decimal.Zero,
		BidIncrement:  decimal.NewFromInt(5),
	}
	assert.Error(t, req.Validate())

	req.StartingPrice = decimal.NewFromInt(10)
	req.BidIncrement = decimal.NewFromInt(-1)
	assert.Error(t, req.Validate())

	req.BidIncrement = decimal.NewFromInt(1)
	assert.NoError(t, req.Validate())
}

func TestListAuctionsRecomputesStatus(t *testing.T) {
	svc, store := newAuctionFixture(t)
	seller := seedUser(t, store)
	auction := seedAuction(t, store, seller.ID)

	// Stale persisted status: schedule says closed.
	store.auctions[auction.ID].GoLiveTime = time.Now().Add(-4 * time.Hour)
	store.auctions[auction.ID].Status = models.AuctionStatusActive

	auctions, err := svc.ListAuctions(context.Background())
	require.NoError(t, err)
	require.Len(t, auctions, 1)
	assert.Equal(t, models.AuctionStatusClosed, auctions[0].Status)

	// List reads never persist the recomputed value.
	assert.Equal(t, models.AuctionStatusActive, store.auctions[auction.ID].Status)
}

func TestGetAuctionDetailBackfillIsOneTime(t *testing.T) {
	svc, store := newAuctionFixture(t)
	seller := seedUser(t, store)
	first := seedUser(t, store)
	second := seedUser(t, store)
	auction := seedAuction(t, store, seller.ID)
	store.auctions[auction.ID].GoLiveTime = time.Now().Add(-4 * time.Hour)

	bid1 := &models.Bid{AuctionID: auction.ID, BidderID: first.ID, Amount: decimal.NewFromInt(150)}
	require.NoError(t, store.CreateBid(context.Background(), bid1))

	detail, err := svc.GetAuctionDetail(context.Background(), auction.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionStatusClosed, detail.Auction.Status)
	require.NotNil(t, detail.Auction.HighestBidID)
	assert.Equal(t, bid1.ID, *detail.Auction.HighestBidID)
	require.NotNil(t, detail.Auction.WinnerID)
	assert.Equal(t, first.ID, *detail.Auction.WinnerID)
	require.NotNil(t, detail.WinnerDetails)
	assert.Equal(t, first.ID, detail.WinnerDetails.ID)

	// A later, higher ledger row must not steal an already backfilled win.
	bid2 := &models.Bid{AuctionID: auction.ID, BidderID: second.ID, Amount: decimal.NewFromInt(500)}
	require.NoError(t, store.CreateBid(context.Background(), bid2))

	detail, err = svc.GetAuctionDetail(context.Background(), auction.ID)
	require.NoError(t, err)
	assert.Equal(t, bid1.ID, *detail.Auction.HighestBidID)
	assert.Equal(t, first.ID, *detail.Auction.WinnerID)
}

func TestGetAuctionDetailHidesNegotiationWhileOpen(t *testing.T) {
	svc, store := newAuctionFixture(t)
	seller := seedUser(t, store)
	bidder := seedUser(t, store)
	auction := seedAuction(t, store, seller.ID)

	bid := &models.Bid{AuctionID: auction.ID, BidderID: bidder.ID, Amount: decimal.NewFromInt(150)}
	require.NoError(t, store.CreateBid(context.Background(), bid))

	detail, err := svc.GetAuctionDetail(context.Background(), auction.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionStatusActive, detail.Auction.Status)
	assert.Empty(t, detail.Auction.StatusAfterBid)
	assert.Nil(t, detail.Auction.CounterOfferPrice)
	assert.Nil(t, detail.WinnerDetails)
	require.NotNil(t, detail.HighestBidDetails)
	assert.True(t, detail.HighestBidDetails.Amount.Equal(decimal.NewFromInt(150)))
}

func TestUpdateAuctionNotOwner(t *testing.T) {
	svc, store := newAuctionFixture(t)
	seller := seedUser(t, store)
	other := seedUser(t, store)
	auction := seedAuction(t, store, seller.ID)

	req := &CreateAuctionRequest{
		ItemName:        "Renamed",
		Description:     "Updated description",
		StartingPrice:   decimal.NewFromInt(60),
		BidIncrement:    decimal.NewFromInt(5),
		GoLiveTime:      auction.GoLiveTime,
		DurationMinutes: auction.DurationMinutes,
	}
	_, err := svc.UpdateAuction(context.Background(), other.ID, auction.ID, req)
	assert.ErrorIs(t, err, auctionerrors.ErrNotOwner)
}

func TestDeleteAuctionWithBidsRefused(t *testing.T) {
	svc, store := newAuctionFixture(t)
	seller := seedUser(t, store)
	bidder := seedUser(t, store)
	auction := seedAuction(t, store, seller.ID)

	bid := &models.Bid{AuctionID: auction.ID, BidderID: bidder.ID, Amount: decimal.NewFromInt(150)}
	require.NoError(t, store.CreateBid(context.Background(), bid))

	err := svc.DeleteAuction(context.Background(), seller.ID, auction.ID)
	assert.ErrorIs(t, err, auctionerrors.ErrAuctionHasBids)

	// Without bids deletion goes through.
	empty := seedAuction(t, store, seller.ID)
	require.NoError(t, svc.DeleteAuction(context.Background(), seller.ID, empty.ID))
	_, err = store.GetAuctionByID(context.Background(), empty.ID)
	assert.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
}

func TestInvoiceData(t *testing.T) {
	svc, store := newAuctionFixture(t)
	seller := seedUser(t, store)
	bidder := seedUser(t, store)
	auction := seedAuction(t, store, seller.ID)
	store.auctions[auction.ID].GoLiveTime = time.Now().Add(-4 * time.Hour)

	bid := &models.Bid{AuctionID: auction.ID, BidderID: bidder.ID, Amount: decimal.NewFromInt(150)}
	require.NoError(t, store.CreateBid(context.Background(), bid))

	// No winner yet: unavailable.
	_, err := svc.InvoiceData(context.Background(), seller.ID, auction.ID)
	assert.ErrorIs(t, err, auctionerrors.ErrInvoiceUnavailable)

	ok, err := store.AcceptHighestBid(context.Background(), auction.ID, bidder.ID, bid.ID)
	require.NoError(t, err)
	require.True(t, ok)

	data, err := svc.InvoiceData(context.Background(), seller.ID, auction.ID)
	require.NoError(t, err)
	assert.True(t, data.FinalPrice.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, seller.Email, data.SellerEmail)
	assert.Equal(t, bidder.Email, data.BuyerEmail)

	// The winner may fetch it too; strangers may not.
	_, err = svc.InvoiceData(context.Background(), bidder.ID, auction.ID)
	assert.NoError(t, err)
	stranger := seedUser(t, store)
	_, err = svc.InvoiceData(context.Background(), stranger.ID, auction.ID)
	assert.ErrorIs(t, err, auctionerrors.ErrForbidden)
}

func TestInvoiceDataUsesCounterPrice(t *testing.T) {
	svc, store := newAuctionFixture(t)
	seller := seedUser(t, store)
	bidder := seedUser(t, store)
	auction := seedAuction(t, store, seller.ID)
	store.auctions[auction.ID].GoLiveTime = time.Now().Add(-4 * time.Hour)

	bid := &models.Bid{AuctionID: auction.ID, BidderID: bidder.ID, Amount: decimal.NewFromInt(150)}
	require.NoError(t, store.CreateBid(context.Background(), bid))

	ok, err := store.SetCounterOffer(context.Background(), auction.ID, decimal.NewFromInt(220))
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = store.AcceptCounter(context.Background(), auction.ID, bidder.ID)
	require.NoError(t, err)
	require.True(t, ok)

	data, err := svc.InvoiceData(context.Background(), seller.ID, auction.ID)
	require.NoError(t, err)
	assert.True(t, data.FinalPrice.Equal(decimal.NewFromInt(220)))
}
