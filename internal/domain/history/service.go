package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cardio/cardio/internal/platform/telemetry"
)

type Service struct {
	repo    Repository
	cache   *cache
	metrics *telemetry.Metrics
	logger  zerolog.Logger
}

func NewService(repo Repository, cacheSize int, metrics *telemetry.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		cache:   newCache(cacheSize),
		metrics: metrics,
		logger:  logger,
	}
}

// Record stores one served prediction under subjectID. The durable append is
// best-effort relative to the caller: a storage failure is logged and counted
// but never propagated, and the cache insert happens regardless, so the
// prediction response is never blocked on persistence.
func (s *Service) Record(ctx context.Context, subjectID string, rec *PredictionRecord) {
	if rec.ID == "" {
		rec.ID = "pred-" + uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if err := s.repo.Append(ctx, subjectID, rec); err != nil {
		if s.metrics != nil {
			s.metrics.PersistenceFailures.Inc()
		}
		s.logger.Warn().Err(err).
			Str("subject_id", subjectID).
			Str("record_id", rec.ID).
			Msg("durable history write failed, record held in cache only")
	}

	s.cache.insert(subjectID, rec)
}

// Fetch merges the cache with the durable log, most recent first, deduplicated
// by record id with cache entries winning, truncated to limit. An unknown
// subject produces an empty slice.
func (s *Service) Fetch(ctx context.Context, subjectID string, limit int) ([]*PredictionRecord, error) {
	cached := s.cache.snapshot(subjectID)

	durable, err := s.repo.ListBySubject(ctx, subjectID, limit)
	if err != nil {
		return nil, fmt.Errorf("read durable history: %w", err)
	}

	seen := make(map[string]bool, len(cached))
	for _, rec := range cached {
		seen[rec.ID] = true
	}

	merged := cached
	for _, rec := range durable {
		if !seen[rec.ID] {
			merged = append(merged, rec)
		}
	}
	if len(merged) > limit {
		merged = merged[:limit]
	}
	if merged == nil {
		merged = []*PredictionRecord{}
	}
	return merged, nil
}

// Reset destroys the durable log and clears the cache. Test isolation only.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.repo.Reset(ctx); err != nil {
		return err
	}
	s.cache.clear()
	return nil
}
