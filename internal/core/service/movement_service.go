package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mgarrido/wms/internal/core/domain"
	"github.com/mgarrido/wms/internal/port"
)

// SubmitRequest is one movement submission. RequestID is optional: when
// the caller supplies one it is used for idempotent replay detection,
// otherwise the engine assigns an id for log correlation only.
type SubmitRequest struct {
	RequestID  string
	Kind       domain.MovementKind
	SKU        string
	PositionID string
	Quantity   int
}

// MovementService is the movement engine: the only entry point allowed
// to mutate the ledger or slot state. Submit serializes conflicting
// writes per slot, re-validates against freshly read state inside that
// critical section, and persists the ledger append plus the slot
// transition as one atomic unit.
type MovementService struct {
	catalog port.CatalogRepository
	slots   port.SlotRepository
	ledger  port.LedgerRepository
	cache   port.CacheRepository // optional
	logger  *zap.Logger

	mu        sync.Mutex
	slotLocks map[string]*sync.Mutex
}

func NewMovementService(
	catalog port.CatalogRepository,
	slots port.SlotRepository,
	ledger port.LedgerRepository,
	cache port.CacheRepository,
	logger *zap.Logger,
) *MovementService {
	return &MovementService{
		catalog:   catalog,
		slots:     slots,
		ledger:    ledger,
		cache:     cache,
		logger:    logger,
		slotLocks: make(map[string]*sync.Mutex),
	}
}

// Submit validates and applies one movement. It either commits both the
// ledger append and the slot transition, or leaves no observable state
// change at all. Rejections come back as the domain sentinel errors;
// anything else is a persistence failure and is safe to retry.
func (s *MovementService) Submit(ctx context.Context, req SubmitRequest) (int64, error) {
	if !req.Kind.Valid() {
		return 0, domain.ErrInvalidKind
	}

	requestID := req.RequestID
	reserved := false
	if requestID == "" {
		requestID = uuid.NewString()
	} else if s.cache != nil {
		ok, err := s.cache.SetIdempotency(ctx, requestID)
		if err != nil {
			return 0, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return 0, domain.ErrDuplicateRequest
		}
		reserved = true
	}

	// A request id is consumed only by a committed movement. If this
	// submit ends any other way, rejection or persistence failure, the
	// reservation is handed back so the caller can retry or resubmit a
	// corrected request under the same id.
	applied := false
	defer func() {
		if !reserved || applied {
			return
		}
		if err := s.cache.ReleaseIdempotency(ctx, requestID); err != nil {
			s.logger.Warn("idempotency release failed",
				zap.String("request_id", requestID),
				zap.Error(err),
			)
		}
	}()

	// Single writer per slot: the read below and the write that follows
	// it must not interleave with another submit for the same position.
	lock := s.lockFor(req.PositionID)
	lock.Lock()
	defer lock.Unlock()

	slot, err := s.slots.GetSlot(ctx, req.PositionID)
	if err != nil {
		return 0, fmt.Errorf("read slot: %w", err)
	}
	skuExists, err := s.catalog.ProductExists(ctx, req.SKU)
	if err != nil {
		return 0, fmt.Errorf("read catalog: %w", err)
	}

	if err := domain.ValidateMovement(req.Kind, req.SKU, req.Quantity, slot, skuExists); err != nil {
		return 0, err
	}

	movement := domain.Movement{
		Timestamp:  time.Now().UTC(),
		Kind:       req.Kind,
		SKU:        req.SKU,
		Quantity:   req.Quantity,
		PositionID: req.PositionID,
	}

	id, err := s.ledger.ApplyMovement(ctx, movement)
	if errors.Is(err, port.ErrSlotStateChanged) {
		// An out-of-process writer beat us to the slot; the storage
		// layer rolled everything back. Surface the matching conflict.
		if req.Kind == domain.MovementInbound {
			return 0, domain.ErrSlotOccupied
		}
		return 0, domain.ErrProductNotAtSlot
	}
	if err != nil {
		return 0, fmt.Errorf("apply movement: %w", err)
	}
	applied = true

	if s.cache != nil {
		if err := s.cache.InvalidateStats(ctx); err != nil {
			s.logger.Warn("stats cache invalidation failed",
				zap.String("request_id", requestID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("movement applied",
		zap.Int64("movement_id", id),
		zap.String("request_id", requestID),
		zap.String("kind", string(req.Kind)),
		zap.String("sku", req.SKU),
		zap.String("position_id", req.PositionID),
		zap.Int("quantity", req.Quantity),
	)
	return id, nil
}

func (s *MovementService) lockFor(positionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.slotLocks[positionID]
	if !ok {
		lock = &sync.Mutex{}
		s.slotLocks[positionID] = lock
	}
	return lock
}
