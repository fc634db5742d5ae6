package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/amenelu/mekina/internal/domain"

	"github.com/go-redis/redis/v8"
)

// RedisStateCache keeps the current price and status of hot auctions so the
// realtime gateway can answer room joins without hitting MySQL.
type RedisStateCache struct {
	client *redis.Client
}

func NewRedisStateCache(client *redis.Client) *RedisStateCache {
	return &RedisStateCache{client: client}
}

func (r *RedisStateCache) SetAuctionState(ctx context.Context, auctionID string, currentPrice float64, status domain.AuctionStatus) error {
	key := fmt.Sprintf("auction:%s:state", auctionID)

	return r.client.HSet(ctx, key,
		"current_price", fmt.Sprintf("%.2f", currentPrice),
		"status", int(status),
	).Err()
}

func (r *RedisStateCache) GetAuctionState(ctx context.Context, auctionID string) (float64, domain.AuctionStatus, error) {
	key := fmt.Sprintf("auction:%s:state", auctionID)

	result, err := r.client.HMGet(ctx, key, "current_price", "status").Result()
	if err != nil {
		return 0, domain.AuctionOpen, err
	}

	if result[0] == nil || result[1] == nil {
		return 0, domain.AuctionOpen, domain.ErrNotFound
	}

	price, err := strconv.ParseFloat(result[0].(string), 64)
	if err != nil {
		return 0, domain.AuctionOpen, err
	}

	status, err := strconv.Atoi(result[1].(string))
	if err != nil {
		return 0, domain.AuctionOpen, err
	}

	return price, domain.AuctionStatus(status), nil
}
