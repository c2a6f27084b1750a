package domain

import "errors"

// Domain errors
var (
	// Session date errors
	ErrInvalidDate       = errors.New("invalid date, expected YYYY-MM-DD")
	ErrDateNotSelected   = errors.New("date is not selected")
	ErrSlotNotFound      = errors.New("slot not found")
	ErrInvalidTime       = errors.New("invalid time, expected HH:MM")
	ErrSlotArrayMismatch = errors.New("times and groups must have the same length")
	ErrNoSlots           = errors.New("session date must have at least one slot")

	// Ticket group errors
	ErrInvalidGroupKey = errors.New("invalid group key")
	ErrGroupNotFound   = errors.New("ticket group not found")
	ErrDefaultGroup    = errors.New("the default ticket group cannot be deleted")
	ErrLastGroup       = errors.New("the last ticket group cannot be deleted")

	// Pricing errors
	ErrSeatingAreaNotFound = errors.New("seating area not found")
	ErrTierNotFound        = errors.New("pricing tier not found")
	ErrInvalidPrice        = errors.New("price must be a non-negative decimal")
	ErrInvalidCurrency     = errors.New("invalid ISO 4217 currency code")
	ErrCapacityExceeded    = errors.New("capacity exceeded")

	// Editor errors
	ErrEditorNotOpen = errors.New("ticket group editor is not open")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrDateNotSelected) ||
		errors.Is(err, ErrSlotNotFound) ||
		errors.Is(err, ErrGroupNotFound) ||
		errors.Is(err, ErrSeatingAreaNotFound) ||
		errors.Is(err, ErrTierNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidTime) ||
		errors.Is(err, ErrSlotArrayMismatch) ||
		errors.Is(err, ErrNoSlots) ||
		errors.Is(err, ErrInvalidGroupKey) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidCurrency) ||
		errors.Is(err, ErrCapacityExceeded)
}

// IsConflictError checks if the error is a conflict with the current state
func IsConflictError(err error) bool {
	return errors.Is(err, ErrDefaultGroup) ||
		errors.Is(err, ErrLastGroup) ||
		errors.Is(err, ErrEditorNotOpen)
}
