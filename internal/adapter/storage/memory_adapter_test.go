package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mgarrido/wms/internal/core/domain"
	"github.com/mgarrido/wms/internal/port"
)

func TestMemoryApplyMovement_GuardsSlotState(t *testing.T) {
	store := NewMemoryAdapter()
	ctx := context.Background()

	store.CreateProduct(ctx, domain.Product{SKU: "P100", Name: "Widget"})
	store.CreateSlot(ctx, "A-01")

	inbound := domain.Movement{
		Timestamp: time.Now(), Kind: domain.MovementInbound,
		SKU: "P100", Quantity: 1, PositionID: "A-01",
	}

	first, err := store.ApplyMovement(ctx, inbound)
	if err != nil {
		t.Fatalf("first inbound: %v", err)
	}

	// Slot is occupied now; a second inbound must fail the guard and
	// leave no ledger entry behind.
	if _, err := store.ApplyMovement(ctx, inbound); !errors.Is(err, port.ErrSlotStateChanged) {
		t.Fatalf("expected ErrSlotStateChanged, got %v", err)
	}

	history, _ := store.MovementsForSlot(ctx, "A-01")
	if len(history) != 1 {
		t.Errorf("rejected write left ledger entries: %d", len(history))
	}

	// Outbound of the wrong product fails the occupant guard.
	if _, err := store.ApplyMovement(ctx, domain.Movement{
		Timestamp: time.Now(), Kind: domain.MovementOutbound,
		SKU: "P200", Quantity: 1, PositionID: "A-01",
	}); !errors.Is(err, port.ErrSlotStateChanged) {
		t.Fatalf("expected ErrSlotStateChanged for wrong occupant, got %v", err)
	}

	second, err := store.ApplyMovement(ctx, domain.Movement{
		Timestamp: time.Now(), Kind: domain.MovementOutbound,
		SKU: "P100", Quantity: 1, PositionID: "A-01",
	})
	if err != nil {
		t.Fatalf("outbound: %v", err)
	}
	if second <= first {
		t.Errorf("ids not monotonic: %d then %d", first, second)
	}

	slot, _ := store.GetSlot(ctx, "A-01")
	if !slot.IsFree() {
		t.Errorf("slot not freed: %+v", slot)
	}
}
