package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mgarrido/wms/internal/core/domain"
	"github.com/mgarrido/wms/internal/port"
)

// MemoryAdapter is an in-memory implementation of the catalog, slot and
// ledger repositories plus the cache port. It honors the same
// atomicity contract as the MySQL adapter (ApplyMovement is
// all-or-nothing under one lock) and backs unit tests and the loadgen
// tool.
type MemoryAdapter struct {
	mu          sync.RWMutex
	products    map[string]domain.Product
	slots       map[string]domain.Slot
	movements   []domain.Movement
	nextID      int64
	idempotency map[string]bool
	stats       *domain.WarehouseStats
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		products:    make(map[string]domain.Product),
		slots:       make(map[string]domain.Slot),
		idempotency: make(map[string]bool),
		nextID:      1,
	}
}

// --- catalog ---

func (a *MemoryAdapter) CreateProduct(ctx context.Context, p domain.Product) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.products[p.SKU]; ok {
		return domain.ErrDuplicateSKU
	}
	a.products[p.SKU] = p
	return nil
}

func (a *MemoryAdapter) GetProduct(ctx context.Context, sku string) (*domain.Product, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	p, ok := a.products[sku]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (a *MemoryAdapter) ProductExists(ctx context.Context, sku string) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, ok := a.products[sku]
	return ok, nil
}

func (a *MemoryAdapter) ListProducts(ctx context.Context) ([]domain.Product, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	products := make([]domain.Product, 0, len(a.products))
	for _, p := range a.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].SKU < products[j].SKU })
	return products, nil
}

// --- slot registry ---

func (a *MemoryAdapter) GetSlot(ctx context.Context, positionID string) (*domain.Slot, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s, ok := a.slots[positionID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (a *MemoryAdapter) ListSlots(ctx context.Context) ([]domain.Slot, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	slots := make([]domain.Slot, 0, len(a.slots))
	for _, s := range a.slots {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].PositionID < slots[j].PositionID })
	return slots, nil
}

func (a *MemoryAdapter) ListFreeSlots(ctx context.Context) ([]string, error) {
	return a.slotIDs(func(s domain.Slot) bool { return s.IsFree() })
}

func (a *MemoryAdapter) ListSlotsOccupiedBy(ctx context.Context, sku string) ([]string, error) {
	return a.slotIDs(func(s domain.Slot) bool {
		return s.Status == domain.SlotOccupied && s.OccupantSKU == sku
	})
}

func (a *MemoryAdapter) slotIDs(keep func(domain.Slot) bool) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var ids []string
	for _, s := range a.slots {
		if keep(s) {
			ids = append(ids, s.PositionID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (a *MemoryAdapter) CountSlots(ctx context.Context) (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.slots), nil
}

func (a *MemoryAdapter) CreateSlot(ctx context.Context, positionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.slots[positionID]; ok {
		return nil
	}
	a.slots[positionID] = domain.Slot{PositionID: positionID, Status: domain.SlotFree}
	return nil
}

// --- ledger ---

func (a *MemoryAdapter) ApplyMovement(ctx context.Context, mv domain.Movement) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	slot, ok := a.slots[mv.PositionID]
	if !ok {
		return 0, port.ErrSlotStateChanged
	}

	switch mv.Kind {
	case domain.MovementInbound:
		if slot.Status != domain.SlotFree {
			return 0, port.ErrSlotStateChanged
		}
		slot.Status = domain.SlotOccupied
		slot.OccupantSKU = mv.SKU
	case domain.MovementOutbound:
		if slot.Status != domain.SlotOccupied || slot.OccupantSKU != mv.SKU {
			return 0, port.ErrSlotStateChanged
		}
		slot.Status = domain.SlotFree
		slot.OccupantSKU = ""
	default:
		return 0, port.ErrSlotStateChanged
	}

	mv.ID = a.nextID
	a.nextID++
	a.slots[mv.PositionID] = slot
	a.movements = append(a.movements, mv)
	return mv.ID, nil
}

func (a *MemoryAdapter) RecentMovements(ctx context.Context, limit int) ([]domain.Movement, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var movements []domain.Movement
	for i := len(a.movements) - 1; i >= 0 && len(movements) < limit; i-- {
		mv := a.movements[i]
		if p, ok := a.products[mv.SKU]; ok {
			mv.ProductName = p.Name
		}
		movements = append(movements, mv)
	}
	return movements, nil
}

func (a *MemoryAdapter) MovementsForSlot(ctx context.Context, positionID string) ([]domain.Movement, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var movements []domain.Movement
	for _, mv := range a.movements {
		if mv.PositionID == positionID {
			movements = append(movements, mv)
		}
	}
	return movements, nil
}

func (a *MemoryAdapter) StockLevel(ctx context.Context, sku string) (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stockLevelLocked(sku), nil
}

func (a *MemoryAdapter) stockLevelLocked(sku string) int {
	level := 0
	for _, mv := range a.movements {
		if mv.SKU != sku {
			continue
		}
		if mv.Kind == domain.MovementInbound {
			level += mv.Quantity
		} else {
			level -= mv.Quantity
		}
	}
	return level
}

func (a *MemoryAdapter) StockLevels(ctx context.Context) (map[string]int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	levels := make(map[string]int, len(a.products))
	for sku := range a.products {
		levels[sku] = a.stockLevelLocked(sku)
	}
	return levels, nil
}

func (a *MemoryAdapter) Stats(ctx context.Context) (domain.WarehouseStats, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	occupied := 0
	for _, s := range a.slots {
		if s.Status == domain.SlotOccupied {
			occupied++
		}
	}
	return domain.WarehouseStats{
		TotalProducts:  len(a.products),
		TotalSlots:     len(a.slots),
		OccupiedSlots:  occupied,
		TotalMovements: len(a.movements),
	}, nil
}

// --- cache ---

func (a *MemoryAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.idempotency[key] {
		return false, nil
	}
	a.idempotency[key] = true
	return true, nil
}

func (a *MemoryAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.idempotency, key)
	return nil
}

func (a *MemoryAdapter) GetStats(ctx context.Context) (*domain.WarehouseStats, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.stats == nil {
		return nil, nil
	}
	stats := *a.stats
	return &stats, nil
}

func (a *MemoryAdapter) SetStats(ctx context.Context, stats domain.WarehouseStats, ttl time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats = &stats
	return nil
}

func (a *MemoryAdapter) InvalidateStats(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats = nil
	return nil
}
