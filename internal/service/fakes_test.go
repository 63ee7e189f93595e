package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"auction-service/internal/auctionerrors"
	"auction-service/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fakeStore is an in-memory Datastore whose conditional transitions mirror
// the guarded SQL updates: a transition succeeds only when the negotiation
// state matches the expected one, under a single lock.
type fakeStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*models.User
	auctions map[uuid.UUID]*models.Auction
	bids     []models.Bid
	seq      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[uuid.UUID]*models.User),
		auctions: make(map[uuid.UUID]*models.Auction),
	}
}

func (f *fakeStore) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return auctionerrors.ErrEmailTaken
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, auctionerrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auctionerrors.ErrUserNotFound
}

func (f *fakeStore) GetUsers(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeStore) CreateAuction(_ context.Context, auction *models.Auction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	auction.ID = uuid.New()
	if auction.StatusAfterBid == "" {
		auction.StatusAfterBid = models.NegotiationPending
	}
	auction.CreatedAt = time.Now()
	auction.UpdatedAt = auction.CreatedAt
	cp := *auction
	f.auctions[auction.ID] = &cp
	return nil
}

func (f *fakeStore) GetAuctionByID(_ context.Context, id uuid.UUID) (*models.Auction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.auctions[id]
	if !ok {
		return nil, auctionerrors.ErrAuctionNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeStore) GetAuctions(_ context.Context) ([]models.Auction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Auction, 0, len(f.auctions))
	for _, a := range f.auctions {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GoLiveTime.After(out[j].GoLiveTime) })
	return out, nil
}

func (f *fakeStore) GetAuctionsBySellerID(_ context.Context, sellerID uuid.UUID) ([]models.Auction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Auction
	for _, a := range f.auctions {
		if a.SellerID == sellerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateAuctionTerms(_ context.Context, auction *models.Auction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.auctions[auction.ID]
	if !ok {
		return auctionerrors.ErrAuctionNotFound
	}
	a.ItemName = auction.ItemName
	a.Description = auction.Description
	a.StartingPrice = auction.StartingPrice
	a.BidIncrement = auction.BidIncrement
	a.GoLiveTime = auction.GoLiveTime
	a.DurationMinutes = auction.DurationMinutes
	a.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) DeleteAuction(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.auctions[id]; !ok {
		return auctionerrors.ErrAuctionNotFound
	}
	delete(f.auctions, id)
	return nil
}

func (f *fakeStore) BackfillAuction(_ context.Context, id uuid.UUID, status string, highestBidID, winnerID *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.auctions[id]
	if !ok {
		return auctionerrors.ErrAuctionNotFound
	}
	a.Status = status
	if highestBidID != nil {
		a.HighestBidID = highestBidID
	}
	if winnerID != nil {
		a.WinnerID = winnerID
	}
	return nil
}

func (f *fakeStore) AcceptHighestBid(_ context.Context, auctionID, winnerID, highestBidID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.auctions[auctionID]
	if !ok || a.StatusAfterBid != models.NegotiationPending {
		return false, nil
	}
	a.Status = models.AuctionStatusClosed
	a.StatusAfterBid = models.NegotiationAccepted
	a.WinnerID = &winnerID
	a.HighestBidID = &highestBidID
	return true, nil
}

func (f *fakeStore) RejectHighestBid(_ context.Context, auctionID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.auctions[auctionID]
	if !ok || a.StatusAfterBid != models.NegotiationPending {
		return false, nil
	}
	a.Status = models.AuctionStatusClosed
	a.StatusAfterBid = models.NegotiationRejected
	return true, nil
}

func (f *fakeStore) SetCounterOffer(_ context.Context, auctionID uuid.UUID, amount decimal.Decimal) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.auctions[auctionID]
	if !ok || a.StatusAfterBid != models.NegotiationPending {
		return false, nil
	}
	a.Status = models.AuctionStatusClosed
	a.StatusAfterBid = models.NegotiationCountered
	a.CounterOfferPrice = &amount
	return true, nil
}

func (f *fakeStore) AcceptCounter(_ context.Context, auctionID, winnerID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.auctions[auctionID]
	if !ok || a.StatusAfterBid != models.NegotiationCountered {
		return false, nil
	}
	a.StatusAfterBid = models.NegotiationAccepted
	a.WinnerID = &winnerID
	return true, nil
}

func (f *fakeStore) RejectCounter(_ context.Context, auctionID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.auctions[auctionID]
	if !ok || a.StatusAfterBid != models.NegotiationCountered {
		return false, nil
	}
	a.StatusAfterBid = models.NegotiationRejected
	a.WinnerID = nil
	a.CounterOfferPrice = nil
	return true, nil
}

func (f *fakeStore) ResetAuction(_ context.Context, auctionID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.auctions[auctionID]
	if !ok {
		return auctionerrors.ErrAuctionNotFound
	}
	kept := f.bids[:0]
	for _, b := range f.bids {
		if b.AuctionID != auctionID {
			kept = append(kept, b)
		}
	}
	f.bids = kept
	a.Status = models.AuctionStatusUpcoming
	a.StatusAfterBid = models.NegotiationPending
	a.CounterOfferPrice = nil
	a.HighestBidID = nil
	a.WinnerID = nil
	return nil
}

func (f *fakeStore) ForceStartAuction(_ context.Context, auctionID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.auctions[auctionID]
	if !ok {
		return auctionerrors.ErrAuctionNotFound
	}
	a.Status = models.AuctionStatusActive
	a.GoLiveTime = time.Now()
	return nil
}

func (f *fakeStore) GetAdminStats(_ context.Context) (*models.AdminStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &models.AdminStats{
		TotalAuctions: len(f.auctions),
		TotalUsers:    len(f.users),
		TotalBids:     len(f.bids),
	}
	for _, a := range f.auctions {
		if a.Status == models.AuctionStatusActive {
			stats.ActiveAuctions++
		}
	}
	return stats, nil
}

func (f *fakeStore) CreateBid(_ context.Context, bid *models.Bid) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	bid.ID = uuid.New()
	f.seq++
	// Strictly increasing timestamps keep the earliest-wins tie-break
	// deterministic.
	bid.CreatedAt = time.Unix(0, int64(f.seq))
	f.bids = append(f.bids, *bid)
	return nil
}

func (f *fakeStore) GetHighestBid(_ context.Context, auctionID uuid.UUID) (*models.BidWithBidder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *models.Bid
	for i := range f.bids {
		b := &f.bids[i]
		if b.AuctionID != auctionID {
			continue
		}
		if best == nil || b.Amount.GreaterThan(best.Amount) ||
			(b.Amount.Equal(best.Amount) && b.CreatedAt.Before(best.CreatedAt)) {
			best = b
		}
	}
	if best == nil {
		return nil, auctionerrors.ErrNoBids
	}
	out := &models.BidWithBidder{Bid: *best}
	if u, ok := f.users[best.BidderID]; ok {
		out.BidderName = u.Name
		out.BidderEmail = u.Email
	}
	return out, nil
}

func (f *fakeStore) GetBidsByAuctionID(_ context.Context, auctionID uuid.UUID) ([]models.BidWithBidder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BidWithBidder
	for _, b := range f.bids {
		if b.AuctionID != auctionID {
			continue
		}
		row := models.BidWithBidder{Bid: b}
		if u, ok := f.users[b.BidderID]; ok {
			row.BidderName = u.Name
			row.BidderEmail = u.Email
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Amount.GreaterThan(out[j].Amount) })
	return out, nil
}

func (f *fakeStore) CountBids(_ context.Context, auctionID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.bids {
		if b.AuctionID == auctionID {
			n++
		}
	}
	return n, nil
}

// fakeCache mirrors the atomic seed-and-compare arbitration: seed the floor
// if the slot is empty, accept only strictly greater amounts, all under one
// lock so concurrent callers serialize exactly like the script does.
type fakeCache struct {
	mu      sync.Mutex
	leaders map[uuid.UUID]*models.LeaderSnapshot
}

func newFakeCache() *fakeCache {
	return &fakeCache{leaders: make(map[uuid.UUID]*models.LeaderSnapshot)}
}

func (f *fakeCache) GetLeader(_ context.Context, auctionID uuid.UUID) (*models.LeaderSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.leaders[auctionID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeCache) SetLeaderIfAbsent(_ context.Context, auctionID uuid.UUID, snapshot *models.LeaderSnapshot) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.leaders[auctionID]; ok {
		return false, nil
	}
	cp := *snapshot
	f.leaders[auctionID] = &cp
	return true, nil
}

func (f *fakeCache) ClearLeader(_ context.Context, auctionID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.leaders, auctionID)
	return nil
}

func (f *fakeCache) PlaceBid(_ context.Context, auctionID uuid.UUID, amount decimal.Decimal, seed, newLeader *models.LeaderSnapshot) (bool, decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.leaders[auctionID]
	floor := seed.Amount
	if ok {
		floor = current.Amount
	}
	if !amount.GreaterThan(floor) {
		if !ok {
			cp := *seed
			f.leaders[auctionID] = &cp
		}
		return false, floor, nil
	}
	cp := *newLeader
	f.leaders[auctionID] = &cp
	return true, floor, nil
}

// fakePublisher records every published event.
type fakePublisher struct {
	mu              sync.Mutex
	bidUpdated      []*models.BidUpdatedEvent
	bidAccepted     []*models.BidAcceptedEvent
	bidRejected     []*models.BidRejectedEvent
	counterOffer    []*models.CounterOfferEvent
	counterAccepted []*models.CounterAcceptedEvent
	counterRejected []*models.CounterRejectedEvent
}

func newFakePublisher() *fakePublisher { return &fakePublisher{} }

func (f *fakePublisher) PublishBidUpdated(_ context.Context, e *models.BidUpdatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bidUpdated = append(f.bidUpdated, e)
	return nil
}

func (f *fakePublisher) PublishBidAccepted(_ context.Context, e *models.BidAcceptedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bidAccepted = append(f.bidAccepted, e)
	return nil
}

func (f *fakePublisher) PublishBidRejected(_ context.Context, e *models.BidRejectedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bidRejected = append(f.bidRejected, e)
	return nil
}

func (f *fakePublisher) PublishCounterOffer(_ context.Context, e *models.CounterOfferEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counterOffer = append(f.counterOffer, e)
	return nil
}

func (f *fakePublisher) PublishCounterAccepted(_ context.Context, e *models.CounterAcceptedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counterAccepted = append(f.counterAccepted, e)
	return nil
}

func (f *fakePublisher) PublishCounterRejected(_ context.Context, e *models.CounterRejectedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counterRejected = append(f.counterRejected, e)
	return nil
}

func seedUser(t interface{ Fatalf(string, ...interface{}) }, store *fakeStore) *models.User {
	u := &models.User{
		Name:  gofakeit.Name(),
		Email: gofakeit.Email(),
		Role:  models.RoleUser,
	}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// seedAuction creates a listing that went live an hour ago and runs for two
// hours, so it is active at time.Now unless the caller shifts the schedule.
func seedAuction(t interface{ Fatalf(string, ...interface{}) }, store *fakeStore, sellerID uuid.UUID) *models.Auction {
	a := &models.Auction{
		SellerID:        sellerID,
		ItemName:        gofakeit.ProductName(),
		Description:     gofakeit.Sentence(8),
		StartingPrice:   decimal.NewFromInt(100),
		BidIncrement:    decimal.NewFromInt(10),
		GoLiveTime:      time.Now().Add(-time.Hour),
		DurationMinutes: 120,
		Status:          models.AuctionStatusActive,
	}
	if err := store.CreateAuction(context.Background(), a); err != nil {
		t.Fatalf("seed auction: %v", err)
	}
	return a
}
