package domain

import (
	"errors"
	"testing"
)

func TestValidateMovement(t *testing.T) {
	freeSlot := &Slot{PositionID: "A-01", Status: SlotFree}
	occupied := &Slot{PositionID: "A-02", Status: SlotOccupied, OccupantSKU: "P100"}

	tests := []struct {
		name      string
		kind      MovementKind
		sku       string
		quantity  int
		slot      *Slot
		skuExists bool
		want      error
	}{
		{"inbound into free slot", MovementInbound, "P100", 5, freeSlot, true, nil},
		{"outbound of occupant", MovementOutbound, "P100", 5, occupied, true, nil},
		{"zero quantity", MovementInbound, "P100", 0, freeSlot, true, ErrInvalidQuantity},
		{"negative quantity", MovementInbound, "P100", -3, freeSlot, true, ErrInvalidQuantity},
		{"unknown product", MovementInbound, "P999", 1, freeSlot, false, ErrUnknownProduct},
		{"unknown slot", MovementInbound, "P100", 1, nil, true, ErrUnknownSlot},
		{"inbound into occupied slot", MovementInbound, "P100", 1, occupied, true, ErrSlotOccupied},
		{"outbound from free slot", MovementOutbound, "P100", 1, freeSlot, true, ErrProductNotAtSlot},
		{"outbound of wrong product", MovementOutbound, "P200", 1, occupied, true, ErrProductNotAtSlot},

		// Rule order: quantity is checked before catalog and slot
		// resolution, catalog before slot.
		{"quantity checked first", MovementInbound, "P999", 0, nil, false, ErrInvalidQuantity},
		{"catalog checked before slot", MovementInbound, "P999", 1, nil, false, ErrUnknownProduct},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMovement(tt.kind, tt.sku, tt.quantity, tt.slot, tt.skuExists)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateMovement_Deterministic(t *testing.T) {
	slot := &Slot{PositionID: "A-01", Status: SlotOccupied, OccupantSKU: "P100"}

	first := ValidateMovement(MovementInbound, "P100", 1, slot, true)
	for i := 0; i < 100; i++ {
		if err := ValidateMovement(MovementInbound, "P100", 1, slot, true); !errors.Is(err, first) {
			t.Fatalf("validation not deterministic: got %v, want %v", err, first)
		}
	}
	if slot.Status != SlotOccupied || slot.OccupantSKU != "P100" {
		t.Error("validation mutated the slot snapshot")
	}
}
