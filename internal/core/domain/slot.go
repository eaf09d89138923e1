package domain

type SlotStatus string

const (
	SlotFree     SlotStatus = "FREE"
	SlotOccupied SlotStatus = "OCCUPIED"
)

// Slot is a fixed physical storage position. Slots are seeded once at
// bootstrap and only their status and occupant ever change.
//
// Invariant: Status == SlotOccupied exactly when OccupantSKU != "".
type Slot struct {
	PositionID  string
	Status      SlotStatus
	OccupantSKU string
}

func (s Slot) IsFree() bool {
	return s.Status == SlotFree
}
