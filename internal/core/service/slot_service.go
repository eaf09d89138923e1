package service

import (
	"context"
	"fmt"

	"github.com/mgarrido/wms/internal/core/domain"
	"github.com/mgarrido/wms/internal/port"
)

// SlotService is the read side of the slot registry. It never writes;
// the movement engine owns the only mutation path.
type SlotService struct {
	slots  port.SlotRepository
	ledger port.LedgerRepository
}

func NewSlotService(slots port.SlotRepository, ledger port.LedgerRepository) *SlotService {
	return &SlotService{slots: slots, ledger: ledger}
}

func (s *SlotService) Get(ctx context.Context, positionID string) (domain.Slot, error) {
	slot, err := s.slots.GetSlot(ctx, positionID)
	if err != nil {
		return domain.Slot{}, fmt.Errorf("read slot: %w", err)
	}
	if slot == nil {
		return domain.Slot{}, domain.ErrUnknownSlot
	}
	return *slot, nil
}

// ListAll returns every slot ordered by position id ascending, so map
// displays are stable across calls.
func (s *SlotService) ListAll(ctx context.Context) ([]domain.Slot, error) {
	return s.slots.ListSlots(ctx)
}

func (s *SlotService) ListFree(ctx context.Context) ([]string, error) {
	return s.slots.ListFreeSlots(ctx)
}

func (s *SlotService) ListOccupiedBy(ctx context.Context, sku string) ([]string, error) {
	return s.slots.ListSlotsOccupiedBy(ctx, sku)
}

// History returns the full movement history for one slot in append
// order. Folding it from the initial free state reproduces the slot's
// current status exactly.
func (s *SlotService) History(ctx context.Context, positionID string) ([]domain.Movement, error) {
	slot, err := s.slots.GetSlot(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("read slot: %w", err)
	}
	if slot == nil {
		return nil, domain.ErrUnknownSlot
	}
	return s.ledger.MovementsForSlot(ctx, positionID)
}
