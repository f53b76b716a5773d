package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phishblock/phishguard/internal/domain"
	"github.com/phishblock/phishguard/internal/thresholds"
)

// Store persists user state in Redis. Keys have no TTL: whitelist and
// thresholds are user intent, not cache.
type Store struct {
	client *goredis.Client
}

func NewStore(client *goredis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) LoadWhitelist(ctx context.Context) ([]string, bool, error) {
	var domains []string
	found, err := s.loadJSON(ctx, KeyWhitelist, &domains)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load whitelist: %w", err)
	}
	return domains, found, nil
}

func (s *Store) SaveWhitelist(ctx context.Context, domains []string) error {
	if err := s.saveJSON(ctx, KeyWhitelist, domains); err != nil {
		return fmt.Errorf("failed to save whitelist: %w", err)
	}
	return nil
}

func (s *Store) LoadThresholds(ctx context.Context) (thresholds.Config, bool, error) {
	var cfg thresholds.Config
	found, err := s.loadJSON(ctx, KeyThresholds, &cfg)
	if err != nil {
		return thresholds.Config{}, false, fmt.Errorf("failed to load thresholds: %w", err)
	}
	return cfg, found, nil
}

func (s *Store) SaveThresholds(ctx context.Context, cfg thresholds.Config) error {
	if err := s.saveJSON(ctx, KeyThresholds, cfg); err != nil {
		return fmt.Errorf("failed to save thresholds: %w", err)
	}
	return nil
}

func (s *Store) LoadCounters(ctx context.Context) (domain.Counters, bool, error) {
	var c domain.Counters
	found, err := s.loadJSON(ctx, KeyCounters, &c)
	if err != nil {
		return domain.Counters{}, false, fmt.Errorf("failed to load counters: %w", err)
	}
	return c, found, nil
}

func (s *Store) SaveCounters(ctx context.Context, c domain.Counters) error {
	if err := s.saveJSON(ctx, KeyCounters, c); err != nil {
		return fmt.Errorf("failed to save counters: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) loadJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("corrupt payload at %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) saveJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, 0).Err()
}
