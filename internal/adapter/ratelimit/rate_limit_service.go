package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Service limits request rates per key.
type Service interface {
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Increment(ctx context.Context, key string, window time.Duration) error
	Block(ctx context.Context, key string, duration time.Duration, reason string) error
	IsBlocked(ctx context.Context, key string) (bool, error)
}

// Config configures the Redis-backed limiter.
type Config struct {
	Enabled       bool
	RedisURL      string
	Attempts      int
	Window        time.Duration
	BlockDuration time.Duration
}

type redisService struct {
	client *redis.Client
	logger *logrus.Logger
}

// New returns a Redis-backed limiter, or a no-op when disabled.
func New(cfg Config, logger *logrus.Logger) (Service, error) {
	if !cfg.Enabled {
		logger.Info("Rate limiting disabled")
		return &noopService{}, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"attempts":       cfg.Attempts,
		"window":         cfg.Window,
		"block_duration": cfg.BlockDuration,
	}).Info("Rate limiting service initialized")

	return &redisService{client: client, logger: logger}, nil
}

func (s *redisService) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := s.client.Get(ctx, key).Int()
	if err != nil {
		if err == redis.Nil {
			return true, nil
		}
		s.logger.WithContext(ctx).WithError(err).Error("Failed to read rate limit counter")
		return false, fmt.Errorf("failed to read rate limit: %w", err)
	}
	return count < limit, nil
}

func (s *redisService) Increment(ctx context.Context, key string, window time.Duration) error {
	pipeline := s.client.Pipeline()
	pipeline.Incr(ctx, key)
	pipeline.Expire(ctx, key, window)
	if _, err := pipeline.Exec(ctx); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to increment rate limit counter")
		return fmt.Errorf("failed to increment rate limit: %w", err)
	}
	return nil
}

func (s *redisService) Block(ctx context.Context, key string, duration time.Duration, reason string) error {
	blockKey := fmt.Sprintf("blocked:%s", key)
	pipeline := s.client.Pipeline()
	pipeline.HSet(ctx, blockKey, map[string]interface{}{
		"reason":     reason,
		"blocked_at": time.Now().Unix(),
	})
	pipeline.Expire(ctx, blockKey, duration)
	if _, err := pipeline.Exec(ctx); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to block key")
		return fmt.Errorf("failed to block key: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"key":      key,
		"duration": duration,
		"reason":   reason,
	}).Warn("Key blocked due to rate limit exceeded")
	return nil
}

func (s *redisService) IsBlocked(ctx context.Context, key string) (bool, error) {
	blockKey := fmt.Sprintf("blocked:%s", key)
	exists, err := s.client.Exists(ctx, blockKey).Result()
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to check block status")
		return false, fmt.Errorf("failed to check block status: %w", err)
	}
	return exists > 0, nil
}

type noopService struct{}

func (n *noopService) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return true, nil
}

func (n *noopService) Increment(ctx context.Context, key string, window time.Duration) error {
	return nil
}

func (n *noopService) Block(ctx context.Context, key string, duration time.Duration, reason string) error {
	return nil
}

func (n *noopService) IsBlocked(ctx context.Context, key string) (bool, error) {
	return false, nil
}
