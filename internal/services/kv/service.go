package kv

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fxrates/internal/interfaces"
)

// Service provides business logic for key/value operations. The retention
// sweep uses it for cache invalidation; job records and retry counters are
// written by ProgressTracker directly through KeyValueStorage.
type Service struct {
	storage interfaces.KeyValueStorage
	logger  arbor.ILogger
}

// NewService creates a new key/value service.
func NewService(storage interfaces.KeyValueStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Get retrieves a value by key.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	value, err := s.storage.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return value, nil
}

// GetPair retrieves a full KeyValuePair by key.
func (s *Service) GetPair(ctx context.Context, key string) (*interfaces.KeyValuePair, error) {
	return s.storage.GetPair(ctx, key)
}

// Set stores or updates a key/value pair.
func (s *Service) Set(ctx context.Context, key string, value string, description string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	return s.storage.Set(ctx, key, value, description)
}

// Delete removes a key/value pair.
func (s *Service) Delete(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, key)
}

// List returns all key/value pairs.
func (s *Service) List(ctx context.Context) ([]interfaces.KeyValuePair, error) {
	return s.storage.List(ctx)
}

// DeleteByPrefix removes every key/value pair whose key starts with prefix,
// used by partition maintenance to invalidate job/retry/currency caches.
func (s *Service) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	pairs, err := s.storage.ListByPrefix(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list keys by prefix %q: %w", prefix, err)
	}

	deleted := 0
	for _, pair := range pairs {
		if err := s.storage.Delete(ctx, pair.Key); err != nil {
			s.logger.Warn().Str("key", pair.Key).Err(err).Msg("Failed to delete key during prefix invalidation")
			continue
		}
		deleted++
	}

	s.logger.Info().Str("prefix", prefix).Int("deleted", deleted).Msg("Invalidated keys by prefix")
	return deleted, nil
}
