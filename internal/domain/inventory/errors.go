package inventory

import "errors"

var (
	// ErrItemNotFound is returned when no supply row matches the item code.
	ErrItemNotFound = errors.New("supply item not found")
	// ErrInsufficientStock is returned when a deduction would drive the
	// stock level negative.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidTransactionType is returned for unrecognized type names.
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	// ErrNoTransaction is returned when the ledger is called outside an
	// open transaction.
	ErrNoTransaction = errors.New("stock adjustment requires an open transaction")
)
