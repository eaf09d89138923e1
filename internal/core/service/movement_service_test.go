package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/mgarrido/wms/internal/adapter/storage"
	"github.com/mgarrido/wms/internal/core/domain"
	"github.com/mgarrido/wms/internal/port"
)

// failingLedger delegates to the in-memory store until tripped, then
// fails every ApplyMovement before touching any state.
type failingLedger struct {
	port.LedgerRepository
	fail atomic.Bool
}

var errStorageDown = errors.New("storage unavailable")

func (f *failingLedger) ApplyMovement(ctx context.Context, m domain.Movement) (int64, error) {
	if f.fail.Load() {
		return 0, errStorageDown
	}
	return f.LedgerRepository.ApplyMovement(ctx, m)
}

func newTestEngine(t *testing.T) (*MovementService, *storage.MemoryAdapter) {
	t.Helper()

	store := storage.NewMemoryAdapter()
	ctx := context.Background()

	for _, p := range []domain.Product{
		{SKU: "P100", Name: "Widget", Category: "General"},
		{SKU: "P200", Name: "Bracket", Category: "Hardware"},
	} {
		if err := store.CreateProduct(ctx, p); err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}
	for i := 1; i <= 5; i++ {
		if err := store.CreateSlot(ctx, fmt.Sprintf("A-%02d", i)); err != nil {
			t.Fatalf("seed slot: %v", err)
		}
	}

	return NewMovementService(store, store, store, store, zap.NewNop()), store
}

func TestSubmit_InboundThenOutbound(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	id, err := engine.Submit(ctx, SubmitRequest{
		Kind: domain.MovementInbound, SKU: "P100", PositionID: "A-01", Quantity: 5,
	})
	if err != nil {
		t.Fatalf("inbound rejected: %v", err)
	}
	if id == 0 {
		t.Error("expected a movement id")
	}

	slot, _ := store.GetSlot(ctx, "A-01")
	if slot.Status != domain.SlotOccupied || slot.OccupantSKU != "P100" {
		t.Errorf("slot after inbound: %+v", slot)
	}

	id2, err := engine.Submit(ctx, SubmitRequest{
		Kind: domain.MovementOutbound, SKU: "P100", PositionID: "A-01", Quantity: 5,
	})
	if err != nil {
		t.Fatalf("outbound rejected: %v", err)
	}
	if id2 <= id {
		t.Errorf("movement ids not monotonic: %d then %d", id, id2)
	}

	slot, _ = store.GetSlot(ctx, "A-01")
	if !slot.IsFree() || slot.OccupantSKU != "" {
		t.Errorf("slot after outbound: %+v", slot)
	}
}

func TestSubmit_Rejections(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	// Occupy A-01 with P100.
	if _, err := engine.Submit(ctx, SubmitRequest{
		Kind: domain.MovementInbound, SKU: "P100", PositionID: "A-01", Quantity: 1,
	}); err != nil {
		t.Fatalf("setup inbound: %v", err)
	}

	tests := []struct {
		name string
		req  SubmitRequest
		want error
	}{
		{"invalid kind", SubmitRequest{Kind: "SIDEWAYS", SKU: "P100", PositionID: "A-02", Quantity: 1}, domain.ErrInvalidKind},
		{"zero quantity", SubmitRequest{Kind: domain.MovementInbound, SKU: "P100", PositionID: "A-02", Quantity: 0}, domain.ErrInvalidQuantity},
		{"unknown product", SubmitRequest{Kind: domain.MovementInbound, SKU: "P999", PositionID: "A-02", Quantity: 1}, domain.ErrUnknownProduct},
		{"unknown slot", SubmitRequest{Kind: domain.MovementInbound, SKU: "P100", PositionID: "Z-99", Quantity: 1}, domain.ErrUnknownSlot},
		{"occupied slot", SubmitRequest{Kind: domain.MovementInbound, SKU: "P200", PositionID: "A-01", Quantity: 1}, domain.ErrSlotOccupied},
		{"outbound from free slot", SubmitRequest{Kind: domain.MovementOutbound, SKU: "P100", PositionID: "A-05", Quantity: 1}, domain.ErrProductNotAtSlot},
		{"outbound of wrong product", SubmitRequest{Kind: domain.MovementOutbound, SKU: "P200", PositionID: "A-01", Quantity: 1}, domain.ErrProductNotAtSlot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, _ := store.Stats(ctx)

			_, err := engine.Submit(ctx, tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
			if !domain.IsRejection(err) {
				t.Errorf("rejection %v not classified as rejection", err)
			}

			after, _ := store.Stats(ctx)
			if before != after {
				t.Errorf("rejection mutated state: %+v -> %+v", before, after)
			}
		})
	}

	// A-05 specifically must still be free after the outbound rejection.
	slot, _ := store.GetSlot(ctx, "A-05")
	if !slot.IsFree() {
		t.Errorf("A-05 no longer free: %+v", slot)
	}
}

func TestSubmit_DuplicateRequest(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	req := SubmitRequest{
		RequestID: "req-1", Kind: domain.MovementInbound,
		SKU: "P100", PositionID: "A-01", Quantity: 1,
	}

	if _, err := engine.Submit(ctx, req); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if _, err := engine.Submit(ctx, req); !errors.Is(err, domain.ErrDuplicateRequest) {
		t.Errorf("expected ErrDuplicateRequest, got: %v", err)
	}

	stats, _ := store.Stats(ctx)
	if stats.TotalMovements != 1 {
		t.Errorf("replay appended to the ledger: %d movements", stats.TotalMovements)
	}
}

func TestSubmit_PersistenceFailureLeavesNoPartialState(t *testing.T) {
	store := storage.NewMemoryAdapter()
	ctx := context.Background()

	store.CreateProduct(ctx, domain.Product{SKU: "P100", Name: "Widget"})
	store.CreateSlot(ctx, "A-01")

	ledger := &failingLedger{LedgerRepository: store}
	ledger.fail.Store(true)

	engine := NewMovementService(store, store, ledger, store, zap.NewNop())

	_, err := engine.Submit(ctx, SubmitRequest{
		Kind: domain.MovementInbound, SKU: "P100", PositionID: "A-01", Quantity: 1,
	})
	if !errors.Is(err, errStorageDown) {
		t.Fatalf("expected wrapped storage error, got: %v", err)
	}
	if domain.IsRejection(err) {
		t.Error("persistence failure misclassified as rejection")
	}

	slot, _ := store.GetSlot(ctx, "A-01")
	if !slot.IsFree() {
		t.Errorf("slot mutated despite failed write: %+v", slot)
	}
	if level, _ := store.StockLevel(ctx, "P100"); level != 0 {
		t.Errorf("ledger mutated despite failed write: stock %d", level)
	}

	// Storage recovers; the same submit goes through cleanly.
	ledger.fail.Store(false)
	if _, err := engine.Submit(ctx, SubmitRequest{
		Kind: domain.MovementInbound, SKU: "P100", PositionID: "A-01", Quantity: 1,
	}); err != nil {
		t.Fatalf("retry after recovery failed: %v", err)
	}
}

// A request id is only consumed by a committed movement: after a
// persistence failure or a rejection the same id must be accepted
// again, otherwise the failure itself would block the retry it is
// supposed to permit.
func TestSubmit_FailedSubmitDoesNotConsumeRequestID(t *testing.T) {
	store := storage.NewMemoryAdapter()
	ctx := context.Background()

	store.CreateProduct(ctx, domain.Product{SKU: "P100", Name: "Widget"})
	store.CreateSlot(ctx, "A-01")

	ledger := &failingLedger{LedgerRepository: store}
	ledger.fail.Store(true)

	engine := NewMovementService(store, store, ledger, store, zap.NewNop())

	req := SubmitRequest{
		RequestID: "req-retry", Kind: domain.MovementInbound,
		SKU: "P100", PositionID: "A-01", Quantity: 1,
	}

	if _, err := engine.Submit(ctx, req); !errors.Is(err, errStorageDown) {
		t.Fatalf("expected wrapped storage error, got: %v", err)
	}

	// Storage recovers; the identical resubmit must apply, not bounce
	// as a duplicate of the failed attempt.
	ledger.fail.Store(false)
	if _, err := engine.Submit(ctx, req); err != nil {
		t.Fatalf("retry with same request id refused: %v", err)
	}

	// Only the committed movement consumes the id.
	if _, err := engine.Submit(ctx, req); !errors.Is(err, domain.ErrDuplicateRequest) {
		t.Errorf("expected ErrDuplicateRequest after commit, got: %v", err)
	}
}

func TestSubmit_RejectedSubmitDoesNotConsumeRequestID(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	// Outbound from a free slot is rejected by the validator.
	if _, err := engine.Submit(ctx, SubmitRequest{
		RequestID: "req-fix", Kind: domain.MovementOutbound,
		SKU: "P100", PositionID: "A-01", Quantity: 1,
	}); !errors.Is(err, domain.ErrProductNotAtSlot) {
		t.Fatalf("expected ErrProductNotAtSlot, got: %v", err)
	}

	// The corrected request reuses the id and must go through.
	if _, err := engine.Submit(ctx, SubmitRequest{
		RequestID: "req-fix", Kind: domain.MovementInbound,
		SKU: "P100", PositionID: "A-01", Quantity: 1,
	}); err != nil {
		t.Fatalf("corrected resubmit refused: %v", err)
	}
}

func TestSubmit_ConcurrentInboundOneWinner(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	const racers = 50

	var accepted, occupied, other atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			_, err := engine.Submit(ctx, SubmitRequest{
				RequestID:  fmt.Sprintf("race-%d", n),
				Kind:       domain.MovementInbound,
				SKU:        "P100",
				PositionID: "A-01",
				Quantity:   1,
			})
			switch {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, domain.ErrSlotOccupied):
				occupied.Add(1)
			default:
				other.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if accepted.Load() != 1 {
		t.Errorf("expected exactly 1 accept, got %d", accepted.Load())
	}
	if occupied.Load() != racers-1 {
		t.Errorf("expected %d ErrSlotOccupied, got %d", racers-1, occupied.Load())
	}
	if other.Load() != 0 {
		t.Errorf("unexpected non-conflict errors: %d", other.Load())
	}

	stats, _ := store.Stats(ctx)
	if stats.TotalMovements != 1 {
		t.Errorf("expected 1 ledger entry, got %d", stats.TotalMovements)
	}
}

// Replaying each slot's ledger history from the initial free state must
// reproduce the registry exactly, whatever interleaving of accepted and
// rejected submissions got us here.
func TestSubmit_RegistryMatchesLedgerReplay(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	const workers = 8
	const perWorker = 200

	rng := rand.New(rand.NewSource(1))
	skus := []string{"P100", "P200"}
	// Outbound quantity mirrors the inbound quantity for the SKU, as a
	// well-behaved caller's would; only then is non-negative stock a
	// guaranteed invariant.
	quantities := map[string]int{"P100": 5, "P200": 3}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		seed := rng.Int63()
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()

			r := rand.New(rand.NewSource(seed))
			for i := 0; i < perWorker; i++ {
				kind := domain.MovementInbound
				if r.Intn(2) == 1 {
					kind = domain.MovementOutbound
				}
				sku := skus[r.Intn(len(skus))]
				engine.Submit(ctx, SubmitRequest{
					Kind:       kind,
					SKU:        sku,
					PositionID: fmt.Sprintf("A-%02d", r.Intn(5)+1),
					Quantity:   quantities[sku],
				})
			}
		}(seed)
	}
	wg.Wait()

	slots, err := store.ListSlots(ctx)
	if err != nil {
		t.Fatalf("list slots: %v", err)
	}
	for _, slot := range slots {
		history, err := store.MovementsForSlot(ctx, slot.PositionID)
		if err != nil {
			t.Fatalf("history for %s: %v", slot.PositionID, err)
		}

		replayed := domain.Slot{PositionID: slot.PositionID, Status: domain.SlotFree}
		for _, m := range history {
			switch m.Kind {
			case domain.MovementInbound:
				if replayed.Status != domain.SlotFree {
					t.Fatalf("%s: inbound appended onto occupied slot at movement %d", slot.PositionID, m.ID)
				}
				replayed.Status = domain.SlotOccupied
				replayed.OccupantSKU = m.SKU
			case domain.MovementOutbound:
				if replayed.Status != domain.SlotOccupied || replayed.OccupantSKU != m.SKU {
					t.Fatalf("%s: outbound appended without matching occupant at movement %d", slot.PositionID, m.ID)
				}
				replayed.Status = domain.SlotFree
				replayed.OccupantSKU = ""
			}
		}

		if replayed != slot {
			t.Errorf("%s: registry %+v diverges from ledger replay %+v",
				slot.PositionID, slot, replayed)
		}
	}

	// Accepted-only histories can never drive stock negative.
	levels, err := store.StockLevels(ctx)
	if err != nil {
		t.Fatalf("stock levels: %v", err)
	}
	for sku, level := range levels {
		if level < 0 {
			t.Errorf("stock for %s went negative: %d", sku, level)
		}
	}
}
