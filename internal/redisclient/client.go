package redisclient

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"auction-service/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:embed scripts/place_bid.lua
var placeBidScript string

type Client struct {
	rdb       *redis.Client
	bidScript *redis.Script
}

// NewClient creates a new Redis client with the bid arbitration script loaded
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:       rdb,
		bidScript: redis.NewScript(placeBidScript),
	}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func leaderKey(auctionID uuid.UUID) string {
	return fmt.Sprintf("auction:%s:leader", auctionID)
}

// GetLeader returns the cached leader snapshot, or nil when the cache is cold
func (c *Client) GetLeader(ctx context.Context, auctionID uuid.UUID) (*models.LeaderSnapshot, error) {
	data, err := c.rdb.Get(ctx, leaderKey(auctionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get leader: %w", err)
	}

	var snapshot models.LeaderSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode leader snapshot: %w", err)
	}
	return &snapshot, nil
}

// SetLeader overwrites the cached leader snapshot
func (c *Client) SetLeader(ctx context.Context, auctionID uuid.UUID, snapshot *models.LeaderSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode leader snapshot: %w", err)
	}
	return c.rdb.Set(ctx, leaderKey(auctionID), data, 0).Err()
}

// SetLeaderIfAbsent seeds the cache only when no entry exists, so a
// ledger-derived fallback never clobbers a fresher bid
func (c *Client) SetLeaderIfAbsent(ctx context.Context, auctionID uuid.UUID, snapshot *models.LeaderSnapshot) (bool, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return false, fmt.Errorf("failed to encode leader snapshot: %w", err)
	}
	return c.rdb.SetNX(ctx, leaderKey(auctionID), data, 0).Result()
}

// ClearLeader drops the cache entry for an auction
func (c *Client) ClearLeader(ctx context.Context, auctionID uuid.UUID) error {
	return c.rdb.Del(ctx, leaderKey(auctionID)).Err()
}

// PlaceBid runs the arbitration script: seed the entry from the starting
// price when absent, then accept the bid only if it strictly exceeds the
// current leader. The whole sequence executes atomically on the Redis side,
// so two racing bids can never both pass the comparison.
// Returns whether the bid won and the amount it was compared against.
func (c *Client) PlaceBid(ctx context.Context, auctionID uuid.UUID, amount decimal.Decimal, seed, newLeader *models.LeaderSnapshot) (bool, decimal.Decimal, error) {
	seedData, err := json.Marshal(seed)
	if err != nil {
		return false, decimal.Zero, fmt.Errorf("failed to encode seed snapshot: %w", err)
	}
	leaderData, err := json.Marshal(newLeader)
	if err != nil {
		return false, decimal.Zero, fmt.Errorf("failed to encode leader snapshot: %w", err)
	}

	result, err := c.bidScript.Run(ctx, c.rdb, []string{leaderKey(auctionID)},
		amount.String(), seed.Amount.String(), string(seedData), string(leaderData)).Result()
	if err != nil {
		return false, decimal.Zero, fmt.Errorf("place bid script failed: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return false, decimal.Zero, fmt.Errorf("unexpected script result type")
	}

	accepted, ok := values[0].(int64)
	if !ok {
		return false, decimal.Zero, fmt.Errorf("unexpected script result type")
	}

	currentStr, ok := values[1].(string)
	if !ok {
		return false, decimal.Zero, fmt.Errorf("unexpected script result type")
	}
	current, err := decimal.NewFromString(currentStr)
	if err != nil {
		return false, decimal.Zero, fmt.Errorf("failed to parse current amount: %w", err)
	}

	return accepted == 1, current, nil
}
