package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/nfl-lineup-optimizer/internal/optimizer"
)

// PortfolioCacheService caches finished portfolio runs keyed by a hash
// of the request, so identical seeded requests skip the solver.
type PortfolioCacheService struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewPortfolioCacheService creates a new portfolio cache service
func NewPortfolioCacheService(client *redis.Client, logger *logrus.Logger) *PortfolioCacheService {
	return &PortfolioCacheService{
		client: client,
		logger: logger,
	}
}

// RequestKey hashes the config and pool fingerprint into a cache key.
// Unseeded portfolio runs are not deterministic, so callers should only
// cache when the config carries a seed or asks for a single lineup.
func RequestKey(cfg optimizer.LineupConfig, poolFingerprint string) (string, error) {
	payload, err := json.Marshal(struct {
		Config optimizer.LineupConfig `json:"config"`
		Pool   string                 `json:"pool"`
	}{cfg, poolFingerprint})
	if err != nil {
		return "", fmt.Errorf("failed to marshal cache key payload: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// SetPortfolio stores a portfolio result in cache
func (c *PortfolioCacheService) SetPortfolio(ctx context.Context, key string, p *optimizer.Portfolio, expiration time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal portfolio: %w", err)
	}

	fullKey := fmt.Sprintf("portfolio:%s", key)
	if err := c.client.Set(ctx, fullKey, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set portfolio in cache: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key":     fullKey,
		"expiration":    expiration,
		"lineups_count": len(p.Lineups),
	}).Debug("Cached portfolio")

	return nil
}

// GetPortfolio retrieves a portfolio result from cache
func (c *PortfolioCacheService) GetPortfolio(ctx context.Context, key string) (*optimizer.Portfolio, error) {
	fullKey := fmt.Sprintf("portfolio:%s", key)
	data, err := c.client.Get(ctx, fullKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("portfolio not found in cache")
		}
		return nil, fmt.Errorf("failed to get portfolio from cache: %w", err)
	}

	var p optimizer.Portfolio
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal portfolio: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key":     fullKey,
		"lineups_count": len(p.Lineups),
	}).Debug("Retrieved portfolio from cache")

	return &p, nil
}

// DeletePortfolio removes a portfolio result from cache
func (c *PortfolioCacheService) DeletePortfolio(ctx context.Context, key string) error {
	fullKey := fmt.Sprintf("portfolio:%s", key)
	if err := c.client.Del(ctx, fullKey).Err(); err != nil {
		return fmt.Errorf("failed to delete portfolio from cache: %w", err)
	}

	c.logger.WithField("cache_key", fullKey).Debug("Deleted portfolio from cache")
	return nil
}

// GetStatus returns cache statistics
func (c *PortfolioCacheService) GetStatus(ctx context.Context) map[string]interface{} {
	dbSize := c.client.DBSize(ctx)

	status := map[string]interface{}{
		"service":   "portfolio-cache",
		"timestamp": time.Now(),
		"connected": true,
	}

	if dbSize.Err() == nil {
		status["db_size"] = dbSize.Val()
	}

	keys, err := c.client.Keys(ctx, "portfolio:*").Result()
	if err == nil {
		status["portfolio_keys"] = len(keys)
	}

	return status
}

// FlushPortfolioCache clears all portfolio results from cache
func (c *PortfolioCacheService) FlushPortfolioCache(ctx context.Context) error {
	keys, err := c.client.Keys(ctx, "portfolio:*").Result()
	if err != nil {
		return fmt.Errorf("failed to get portfolio keys: %w", err)
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete portfolio keys: %w", err)
		}
	}

	c.logger.WithField("deleted_keys", len(keys)).Info("Flushed portfolio cache")
	return nil
}
