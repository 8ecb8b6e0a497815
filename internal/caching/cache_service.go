package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"trackwise/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type CacheService interface {
	// Product caching
	GetProduct(ctx context.Context, companyID, productID uuid.UUID) (*models.Product, error)
	SetProduct(ctx context.Context, companyID uuid.UUID, product *models.Product, ttl time.Duration) error
	DeleteProduct(ctx context.Context, companyID, productID uuid.UUID) error

	// Login rate limiting. Only failed attempts count; a successful
	// login clears the counter.
	IsRateLimited(ctx context.Context, key string, limit int) (bool, error)
	RecordFailedAttempt(ctx context.Context, key string, window time.Duration) error
	ClearAttempts(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis:// URLs as well as bare host:port.
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Warn().Err(pingErr).Str("addr", parsedAddr).Msg("redis ping failed on initialization")
	}

	return &redisCacheService{client: client}
}

func productKey(companyID, productID uuid.UUID) string {
	return fmt.Sprintf("trackwise:product:%s:%s", companyID.String(), productID.String())
}

func (r *redisCacheService) GetProduct(ctx context.Context, companyID, productID uuid.UUID) (*models.Product, error) {
	data, err := r.client.Get(ctx, productKey(companyID, productID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal([]byte(data), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *redisCacheService) SetProduct(ctx context.Context, companyID uuid.UUID, product *models.Product, ttl time.Duration) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, productKey(companyID, product.ID), data, ttl).Err()
}

func (r *redisCacheService) DeleteProduct(ctx context.Context, companyID, productID uuid.UUID) error {
	return r.client.Del(ctx, productKey(companyID, productID)).Err()
}

func rateLimitKey(key string) string {
	return fmt.Sprintf("trackwise:ratelimit:%s", key)
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int) (bool, error) {
	count, err := r.client.Get(ctx, rateLimitKey(key)).Int64()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return true, err
	}
	return count >= int64(limit), nil
}

func (r *redisCacheService) RecordFailedAttempt(ctx context.Context, key string, window time.Duration) error {
	cacheKey := rateLimitKey(key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return err
	}

	// Set expiry on first failure
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}
	return nil
}

func (r *redisCacheService) ClearAttempts(ctx context.Context, key string) error {
	return r.client.Del(ctx, rateLimitKey(key)).Err()
}
