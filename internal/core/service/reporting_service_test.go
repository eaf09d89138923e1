package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mgarrido/wms/internal/core/domain"
)

func TestReporting_StatsCacheInvalidatedBySubmit(t *testing.T) {
	engine, store := newTestEngine(t)
	reporting := NewReportingService(store, store, time.Minute, zap.NewNop())
	ctx := context.Background()

	stats, err := reporting.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.OccupiedSlots != 0 || stats.TotalSlots != 5 {
		t.Errorf("unexpected initial stats: %+v", stats)
	}

	// The first read populated the cache; an accepted movement must
	// invalidate it so the next read sees the new occupancy.
	if _, err := engine.Submit(ctx, SubmitRequest{
		Kind: domain.MovementInbound, SKU: "P100", PositionID: "A-01", Quantity: 1,
	}); err != nil {
		t.Fatalf("inbound: %v", err)
	}

	stats, err = reporting.Stats(ctx)
	if err != nil {
		t.Fatalf("stats after movement: %v", err)
	}
	if stats.OccupiedSlots != 1 || stats.TotalMovements != 1 {
		t.Errorf("stale stats after accepted movement: %+v", stats)
	}
}

func TestReporting_RecentMovements(t *testing.T) {
	engine, store := newTestEngine(t)
	reporting := NewReportingService(store, nil, time.Minute, zap.NewNop())
	ctx := context.Background()

	for i, positionID := range []string{"A-01", "A-02", "A-03"} {
		if _, err := engine.Submit(ctx, SubmitRequest{
			Kind: domain.MovementInbound, SKU: "P100", PositionID: positionID, Quantity: i + 1,
		}); err != nil {
			t.Fatalf("inbound %s: %v", positionID, err)
		}
	}

	recent, err := reporting.RecentMovements(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(recent))
	}
	if recent[0].PositionID != "A-03" || recent[1].PositionID != "A-02" {
		t.Errorf("movements not newest-first: %+v", recent)
	}
	if recent[0].ProductName != "Widget" {
		t.Errorf("product name not joined: %+v", recent[0])
	}
}
