package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mgarrido/wms/internal/core/domain"
	"github.com/mgarrido/wms/internal/port"
)

const DefaultRecentLimit = 5

// ReportingService serves the dashboard: warehouse counters and the
// latest movements. Stats go through a read-side cache when one is
// wired; the engine invalidates it on every accepted movement, so a
// short TTL only bounds staleness against out-of-process writers.
type ReportingService struct {
	ledger   port.LedgerRepository
	cache    port.CacheRepository // optional
	statsTTL time.Duration
	logger   *zap.Logger
}

func NewReportingService(ledger port.LedgerRepository, cache port.CacheRepository, statsTTL time.Duration, logger *zap.Logger) *ReportingService {
	return &ReportingService{
		ledger:   ledger,
		cache:    cache,
		statsTTL: statsTTL,
		logger:   logger,
	}
}

func (s *ReportingService) Stats(ctx context.Context) (domain.WarehouseStats, error) {
	if s.cache != nil {
		cached, err := s.cache.GetStats(ctx)
		if err != nil {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		} else if cached != nil {
			return *cached, nil
		}
	}

	stats, err := s.ledger.Stats(ctx)
	if err != nil {
		return domain.WarehouseStats{}, fmt.Errorf("query stats: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetStats(ctx, stats, s.statsTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *ReportingService) RecentMovements(ctx context.Context, limit int) ([]domain.Movement, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.ledger.RecentMovements(ctx, limit)
}
