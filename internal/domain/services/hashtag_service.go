package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/devilmonastery/projectboard/internal/domain/repositories"
	"github.com/devilmonastery/projectboard/internal/pkg/metrics"
)

// HashtagService handles hashtag listing and cleanup
type HashtagService struct {
	hashtagRepo repositories.HashtagRepository

	mu        sync.Mutex
	names     []string
	expiresAt time.Time
	cacheTTL  time.Duration
	// generation is bumped by InvalidateCache; a list read under an older
	// generation is returned but never cached.
	generation uint64
}

// NewHashtagService creates a new hashtag service
func NewHashtagService(hashtagRepo repositories.HashtagRepository) *HashtagService {
	return &HashtagService{
		hashtagRepo: hashtagRepo,
		cacheTTL:    1 * time.Minute,
	}
}

// GetHashtags returns every hashtag name in ascending order. Results are
// cached briefly; writes through ArticleService invalidate the cache.
func (s *HashtagService) GetHashtags(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	if s.names != nil && time.Now().Before(s.expiresAt) {
		names := slices.Clone(s.names)
		s.mu.Unlock()
		metrics.RecordHashtagCache(true)
		return names, nil
	}
	gen := s.generation
	s.mu.Unlock()
	metrics.RecordHashtagCache(false)

	names, err := s.hashtagRepo.ListNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list hashtags: %w", err)
	}

	s.mu.Lock()
	if s.generation == gen {
		s.names = slices.Clone(names)
		s.expiresAt = time.Now().Add(s.cacheTTL)
	}
	s.mu.Unlock()

	return names, nil
}

// DeleteHashtagWithoutArticles deletes the hashtag when no article uses it.
// It reports whether the hashtag was deleted.
func (s *HashtagService) DeleteHashtagWithoutArticles(ctx context.Context, id int64) (bool, error) {
	n, err := s.hashtagRepo.DeleteUnused(ctx, []int64{id})
	if err != nil {
		return false, fmt.Errorf("failed to delete hashtag: %w", err)
	}
	if n > 0 {
		s.InvalidateCache()
	}
	return n > 0, nil
}

// Count returns the number of hashtags
func (s *HashtagService) Count(ctx context.Context) (int64, error) {
	return s.hashtagRepo.Count(ctx)
}

// InvalidateCache drops the cached name list.
func (s *HashtagService) InvalidateCache() {
	s.mu.Lock()
	s.names = nil
	s.generation++
	s.mu.Unlock()
}
