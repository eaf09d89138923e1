package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/mgarrido/wms/internal/core/domain"
	"github.com/mgarrido/wms/internal/port"
)

// BootstrapService seeds the fixed slot layout on first run and,
// optionally, a sample catalog. Running it again is a no-op: an
// already-populated relation is detected and skipped, so the slot and
// product sets after two runs equal the sets after one.
type BootstrapService struct {
	catalog port.CatalogRepository
	slots   port.SlotRepository
	logger  *zap.Logger

	Zone       string
	SlotCount  int
	SampleData bool
}

var sampleProducts = []domain.Product{
	{SKU: "P100", Name: "Widget", Category: "General"},
	{SKU: "P200", Name: "Bracket", Category: "Hardware"},
	{SKU: "P300", Name: "Sensor Module", Category: "Electronics"},
}

func NewBootstrapService(catalog port.CatalogRepository, slots port.SlotRepository, zone string, slotCount int, sampleData bool, logger *zap.Logger) *BootstrapService {
	return &BootstrapService{
		catalog:    catalog,
		slots:      slots,
		logger:     logger,
		Zone:       zone,
		SlotCount:  slotCount,
		SampleData: sampleData,
	}
}

func (s *BootstrapService) Run(ctx context.Context) error {
	count, err := s.slots.CountSlots(ctx)
	if err != nil {
		return fmt.Errorf("count slots: %w", err)
	}

	if count > 0 {
		s.logger.Info("slot layout already seeded", zap.Int("slots", count))
	} else {
		// Pad position numbers to the width of the largest so that
		// lexicographic ordering equals numeric ordering for any count.
		width := len(strconv.Itoa(s.SlotCount))
		if width < 2 {
			width = 2
		}
		for i := 1; i <= s.SlotCount; i++ {
			positionID := fmt.Sprintf("%s-%0*d", s.Zone, width, i)
			if err := s.slots.CreateSlot(ctx, positionID); err != nil {
				return fmt.Errorf("seed slot %s: %w", positionID, err)
			}
		}
		s.logger.Info("seeded slot layout",
			zap.String("zone", s.Zone),
			zap.Int("slots", s.SlotCount),
		)
	}

	if !s.SampleData {
		return nil
	}

	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	if len(products) > 0 {
		return nil
	}

	for _, p := range sampleProducts {
		if err := s.catalog.CreateProduct(ctx, p); err != nil {
			return fmt.Errorf("seed product %s: %w", p.SKU, err)
		}
	}
	s.logger.Info("seeded sample catalog", zap.Int("products", len(sampleProducts)))
	return nil
}
