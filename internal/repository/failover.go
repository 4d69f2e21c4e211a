package repository

import (
	"context"
	"sync"
	"time"

	"palco/internal/domain"
	"palco/internal/models"

	"github.com/rs/zerolog"
)

// FailoverFeeCache serves the schedule from the primary cache and falls back
// to the secondary when the primary errors. After a failure the primary is
// skipped until the retry interval elapses, so a dead Redis does not add a
// timeout to every settlement.
type FailoverFeeCache struct {
	primary  domain.FeeSource
	fallback domain.FeeSource
	log      zerolog.Logger

	retryAfter time.Duration

	mu        sync.Mutex
	downUntil time.Time
}

func NewFailoverFeeCache(primary, fallback domain.FeeSource, log *zerolog.Logger) *FailoverFeeCache {
	return &FailoverFeeCache{
		primary:    primary,
		fallback:   fallback,
		log:        log.With().Str("component", "fee_cache").Logger(),
		retryAfter: 30 * time.Second,
	}
}

func (f *FailoverFeeCache) Schedule(ctx context.Context) (*models.FeeSchedule, error) {
	if f.primaryUp() {
		schedule, err := f.primary.Schedule(ctx)
		if err == nil {
			return schedule, nil
		}
		f.markDown(err)
	}
	return f.fallback.Schedule(ctx)
}

// Invalidate clears both layers. The fallback is invalidated even when the
// primary fails, otherwise a stale in-memory schedule outlives a fee update.
func (f *FailoverFeeCache) Invalidate(ctx context.Context) error {
	primaryErr := f.primary.Invalidate(ctx)
	if primaryErr != nil {
		f.markDown(primaryErr)
	}
	if err := f.fallback.Invalidate(ctx); err != nil {
		return err
	}
	return primaryErr
}

func (f *FailoverFeeCache) primaryUp() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return time.Now().After(f.downUntil)
}

func (f *FailoverFeeCache) markDown(err error) {
	f.mu.Lock()
	f.downUntil = time.Now().Add(f.retryAfter)
	f.mu.Unlock()
	f.log.Warn().Err(err).Msg("primary fee cache unavailable, using fallback")
}
