package port

import (
	"context"
	"errors"

	"github.com/mgarrido/wms/internal/core/domain"
)

// ErrSlotStateChanged means ApplyMovement's guarded slot update matched
// nothing: the slot's status moved between the caller's read and this
// write. The implementation rolls the whole unit back, so nothing is
// persisted when this is returned.
var ErrSlotStateChanged = errors.New("slot state changed concurrently")

// CatalogRepository is the product master data. The movement engine
// only ever reads it; writes happen through product registration and
// bootstrap seeding.
type CatalogRepository interface {
	// CreateProduct registers a catalog entry; domain.ErrDuplicateSKU
	// when the SKU is already taken.
	CreateProduct(ctx context.Context, p domain.Product) error

	// GetProduct returns nil, nil when the SKU is unknown.
	GetProduct(ctx context.Context, sku string) (*domain.Product, error)

	// ProductExists reports whether the SKU resolves to a catalog entry.
	ProductExists(ctx context.Context, sku string) (bool, error)

	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// SlotRepository is the read side of the slot registry plus the seeding
// entry point. Slot status is only ever mutated through
// LedgerRepository.ApplyMovement.
type SlotRepository interface {
	// GetSlot returns nil, nil when the position is unknown.
	GetSlot(ctx context.Context, positionID string) (*domain.Slot, error)

	// ListSlots returns every slot ordered by position id ascending.
	ListSlots(ctx context.Context) ([]domain.Slot, error)

	// ListFreeSlots returns the position ids of free slots.
	ListFreeSlots(ctx context.Context) ([]string, error)

	// ListSlotsOccupiedBy returns the position ids currently holding sku.
	ListSlotsOccupiedBy(ctx context.Context, sku string) ([]string, error)

	// CountSlots is used by bootstrap to detect an already-seeded layout.
	CountSlots(ctx context.Context) (int, error)

	// CreateSlot seeds a new free slot; an already-existing position is
	// left untouched.
	CreateSlot(ctx context.Context, positionID string) error
}

// LedgerRepository is the append-only movement history and the single
// mutation path for slot state.
type LedgerRepository interface {
	// ApplyMovement appends m to the ledger and applies the matching
	// slot transition (IN: free->occupied, OUT: occupied->free) as one
	// atomic unit: both effects commit together or neither does. The
	// slot update is conditional on the expected prior state;
	// ErrSlotStateChanged when the slot moved underneath the caller.
	// Returns the assigned movement id.
	ApplyMovement(ctx context.Context, m domain.Movement) (int64, error)

	// RecentMovements returns up to limit movements, newest first, with
	// product names populated.
	RecentMovements(ctx context.Context, limit int) ([]domain.Movement, error)

	// MovementsForSlot returns the full history for one position in
	// append order.
	MovementsForSlot(ctx context.Context, positionID string) ([]domain.Movement, error)

	// StockLevel sums the ledger for one SKU: inbound minus outbound.
	StockLevel(ctx context.Context, sku string) (int, error)

	// StockLevels sums the ledger per SKU for every cataloged product,
	// including products with no movements (level 0).
	StockLevels(ctx context.Context) (map[string]int, error)

	// Stats returns the dashboard counters.
	Stats(ctx context.Context) (domain.WarehouseStats, error)
}
