package billing

import (
	"fmt"
	"strconv"
	"strings"
)

// NextInvoiceNumber derives the identifier that follows last, zero-padded to
// six digits. An empty last starts the sequence at "000001". Numbers are never
// reused or gap-filled; callers derive last from the highest persisted number.
func NextInvoiceNumber(last string) (string, error) {
	last = strings.TrimSpace(last)
	if last == "" {
		return "000001", nil
	}
	n, err := strconv.ParseInt(last, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid invoice number %q: %w", last, err)
	}
	return fmt.Sprintf("%06d", n+1), nil
}
