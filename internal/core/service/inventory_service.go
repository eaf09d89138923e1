package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mgarrido/wms/internal/core/domain"
	"github.com/mgarrido/wms/internal/port"
)

// InventoryService derives per-SKU stock levels by summing the ledger.
// It never consults slot state: the registry and this aggregation are
// independent projections of the same history.
type InventoryService struct {
	catalog port.CatalogRepository
	ledger  port.LedgerRepository
	logger  *zap.Logger
}

func NewInventoryService(catalog port.CatalogRepository, ledger port.LedgerRepository, logger *zap.Logger) *InventoryService {
	return &InventoryService{catalog: catalog, ledger: ledger, logger: logger}
}

// CurrentStock returns inbound minus outbound quantity for one SKU. A
// negative result means the ledger itself is inconsistent (the engine's
// preconditions should make it impossible); it is returned as-is and
// logged so the signal is never masked.
func (s *InventoryService) CurrentStock(ctx context.Context, sku string) (int, error) {
	exists, err := s.catalog.ProductExists(ctx, sku)
	if err != nil {
		return 0, fmt.Errorf("read catalog: %w", err)
	}
	if !exists {
		return 0, domain.ErrUnknownProduct
	}

	level, err := s.ledger.StockLevel(ctx, sku)
	if err != nil {
		return 0, fmt.Errorf("sum ledger: %w", err)
	}
	if level < 0 {
		s.logger.Warn("negative stock level in ledger",
			zap.String("sku", sku),
			zap.Int("level", level),
		)
	}
	return level, nil
}

// AllStock returns the stock level of every cataloged SKU, including
// products the ledger has never seen (level 0).
func (s *InventoryService) AllStock(ctx context.Context) (map[string]int, error) {
	levels, err := s.ledger.StockLevels(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum ledger: %w", err)
	}
	for sku, level := range levels {
		if level < 0 {
			s.logger.Warn("negative stock level in ledger",
				zap.String("sku", sku),
				zap.Int("level", level),
			)
		}
	}
	return levels, nil
}
