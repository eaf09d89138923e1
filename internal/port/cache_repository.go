package port

import (
	"context"
	"time"

	"github.com/mgarrido/wms/internal/core/domain"
)

type CacheRepository interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency frees a reserved key again. Called when the
	// reserving submit did not commit, so the caller may retry or
	// correct the request under the same id.
	ReleaseIdempotency(ctx context.Context, key string) error

	// GetStats returns the cached dashboard stats, nil on miss
	GetStats(ctx context.Context) (*domain.WarehouseStats, error)

	// SetStats caches dashboard stats for ttl
	SetStats(ctx context.Context, stats domain.WarehouseStats, ttl time.Duration) error

	// InvalidateStats drops the cached stats after an accepted movement
	InvalidateStats(ctx context.Context) error
}
