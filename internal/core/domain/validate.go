package domain

// ValidateMovement decides whether a requested movement is admissible
// against a snapshot of current state. It is pure: no I/O, no side
// effects, same inputs always give the same answer. slot is nil when
// positionID resolves to no seeded slot.
//
// Rules are evaluated in order; the first violation wins.
func ValidateMovement(kind MovementKind, sku string, quantity int, slot *Slot, skuExists bool) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if !skuExists {
		return ErrUnknownProduct
	}
	if slot == nil {
		return ErrUnknownSlot
	}

	switch kind {
	case MovementInbound:
		if !slot.IsFree() {
			return ErrSlotOccupied
		}
	case MovementOutbound:
		if slot.IsFree() || slot.OccupantSKU != sku {
			return ErrProductNotAtSlot
		}
	default:
		return ErrInvalidKind
	}
	return nil
}
