package domain

import "errors"

// Rejection taxonomy. Input errors mean the request cannot resolve
// against the current catalog/slot sets; state conflicts mean the
// requested transition violates the slot state machine (the caller's
// view of slot state is stale). Anything else coming out of the engine
// is a persistence failure and is wrapped, never one of these values.
var (
	ErrInvalidKind      = errors.New("movement kind must be IN or OUT")
	ErrInvalidQuantity  = errors.New("quantity must be a positive integer")
	ErrUnknownProduct   = errors.New("unknown product")
	ErrUnknownSlot      = errors.New("unknown slot")
	ErrInvalidProduct   = errors.New("product needs a sku and a name")
	ErrDuplicateSKU     = errors.New("sku already registered")
	ErrDuplicateRequest = errors.New("duplicate request")

	ErrSlotOccupied     = errors.New("slot already occupied")
	ErrProductNotAtSlot = errors.New("product not at slot")
)

func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidKind) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrUnknownProduct) ||
		errors.Is(err, ErrUnknownSlot) ||
		errors.Is(err, ErrInvalidProduct) ||
		errors.Is(err, ErrDuplicateSKU) ||
		errors.Is(err, ErrDuplicateRequest)
}

func IsStateConflict(err error) bool {
	return errors.Is(err, ErrSlotOccupied) || errors.Is(err, ErrProductNotAtSlot)
}

// IsRejection reports whether err is a user-correctable rejection as
// opposed to a persistence failure.
func IsRejection(err error) bool {
	return IsInputError(err) || IsStateConflict(err)
}
