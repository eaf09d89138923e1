package domain

import "time"

type MovementKind string

const (
	MovementInbound  MovementKind = "IN"
	MovementOutbound MovementKind = "OUT"
)

func (k MovementKind) Valid() bool {
	return k == MovementInbound || k == MovementOutbound
}

// Movement is a single directional stock event. Movements form the
// append-only ledger that all derived state (slot occupancy, stock
// levels) is computed from; they are never updated or deleted.
type Movement struct {
	ID         int64
	Timestamp  time.Time
	Kind       MovementKind
	SKU        string
	Quantity   int
	PositionID string

	// ProductName is populated by joined reads for display; it is not
	// part of the ledger record itself.
	ProductName string
}
