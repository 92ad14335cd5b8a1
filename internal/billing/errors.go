package billing

import "errors"

// Validation failures are surfaced to the caller as rejected operations with
// the draft left unchanged; none of them is fatal.
var (
	// ErrDuplicateItem: the medicine is already on the draft. Policy is to
	// update the quantity of the existing row instead of re-adding.
	ErrDuplicateItem = errors.New("medicine already added, update the quantity instead")

	// ErrInsufficientStock: a requested quantity exceeds the available stock,
	// either the snapshot taken when the row was added or the live stock
	// re-checked at commit.
	ErrInsufficientStock = errors.New("requested quantity exceeds available stock")

	// ErrEmptyInvoice: commit was attempted with no line items.
	ErrEmptyInvoice = errors.New("invoice needs at least one line item")

	// ErrMissingCustomer: commit was attempted without a customer name.
	ErrMissingCustomer = errors.New("customer name is required")

	// ErrNoSuchItem: a line item index is out of range.
	ErrNoSuchItem = errors.New("no line item at that position")

	// ErrCommitted: the draft was already committed and is immutable.
	ErrCommitted = errors.New("invoice already committed")
)
