// Package billing implements the invoice drafting state machine and its
// commit against the record store: line items accumulate against available
// stock, totals are recomputed on every mutation, and a successful commit
// decrements stock and appends the audit trail in one store transaction.
package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"medibill/m/domain"
	"medibill/m/internal/money"
)

// Committer persists a finalized invoice. The implementation must perform the
// invoice insert, the per-item stock decrements and the stock-transaction
// appends as one atomic unit, re-validating live stock and returning
// ErrInsufficientStock on conflict.
type Committer interface {
	CommitSale(ctx context.Context, inv *domain.Invoice) error
}

// Builder accumulates invoice line items and keeps the derived totals current
// after every mutation. A Builder starts in the drafting state and becomes
// immutable once committed; start the next sale with a fresh Builder.
type Builder struct {
	inv       domain.Invoice
	committed bool
}

// NewBuilder starts a draft invoice with the given pre-assigned number.
func NewBuilder(invoiceNo string, now time.Time) *Builder {
	return &Builder{inv: domain.Invoice{
		InvoiceNo:   invoiceNo,
		Date:        now.Format("2006-01-02"),
		PaymentMode: domain.PaymentCash,
	}}
}

// Invoice returns a copy of the draft in its current state.
func (b *Builder) Invoice() domain.Invoice {
	inv := b.inv
	inv.Items = append([]domain.InvoiceItem(nil), b.inv.Items...)
	return inv
}

// AddItem appends a line item for the medicine, defaulting the quantity to 1
// and the rate to the medicine's sale rate. The medicine's current stock is
// snapshotted as the quantity ceiling for this draft.
func (b *Builder) AddItem(med domain.Medicine) error {
	if b.committed {
		return ErrCommitted
	}
	for _, it := range b.inv.Items {
		if it.MedicineID == med.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateItem, med.Name)
		}
	}
	b.inv.Items = append(b.inv.Items, domain.InvoiceItem{
		MedicineID:     med.ID,
		Description:    med.Name,
		Packing:        med.Packing,
		Batch:          med.Batch,
		Expiry:         med.Expiry,
		Quantity:       1,
		Rate:           med.SaleRate,
		Amount:         med.SaleRate,
		MRP:            med.MRP,
		AvailableStock: med.Stock,
	})
	b.recompute()
	return nil
}

// SetQuantity updates the ordered quantity of the line item at index. The
// request is rejected and the draft left unchanged if it exceeds the stock
// snapshot taken when the item was added.
func (b *Builder) SetQuantity(index int, qty float64) error {
	it, err := b.item(index)
	if err != nil {
		return err
	}
	if qty > it.AvailableStock {
		return fmt.Errorf("%w: only %g units of %s available", ErrInsufficientStock, it.AvailableStock, it.Description)
	}
	it.Quantity = qty
	b.reprice(it)
	return nil
}

// SetQtyDiscount updates the free units of the line item at index.
func (b *Builder) SetQtyDiscount(index int, free float64) error {
	it, err := b.item(index)
	if err != nil {
		return err
	}
	it.QtyDiscount = free
	b.reprice(it)
	return nil
}

// SetRate updates the unit rate of the line item at index.
func (b *Builder) SetRate(index int, rate float64) error {
	it, err := b.item(index)
	if err != nil {
		return err
	}
	it.Rate = rate
	b.reprice(it)
	return nil
}

// SetItemRemarks updates the free-text remarks of the line item at index.
func (b *Builder) SetItemRemarks(index int, remarks string) error {
	it, err := b.item(index)
	if err != nil {
		return err
	}
	it.Remarks = remarks
	return nil
}

// RemoveItem drops the line item at index. Stock is only touched at commit,
// so removal has no side effects on the store.
func (b *Builder) RemoveItem(index int) error {
	if _, err := b.item(index); err != nil {
		return err
	}
	b.inv.Items = append(b.inv.Items[:index], b.inv.Items[index+1:]...)
	b.recompute()
	return nil
}

// SetCustomer fills in the customer details.
func (b *Builder) SetCustomer(name, address, phone, pan string) {
	b.inv.CustomerName = name
	b.inv.CustomerAddress = address
	b.inv.CustomerPhone = phone
	b.inv.CustomerPAN = pan
}

// SetPaymentMode sets the payment mode, one of CASH, CREDIT, UPI or CARD.
func (b *Builder) SetPaymentMode(mode string) error {
	if !domain.ValidPaymentMode(mode) {
		return fmt.Errorf("unknown payment mode %q", mode)
	}
	b.inv.PaymentMode = mode
	return nil
}

// SetDiscount sets the invoice-level discount and recomputes totals.
func (b *Builder) SetDiscount(d float64) {
	b.inv.Discount = d
	b.recompute()
}

// SetCCOnFree sets the "CC on free" adjustment and recomputes totals.
func (b *Builder) SetCCOnFree(cc float64) {
	b.inv.CCOnFree = cc
	b.recompute()
}

// SetRemarks sets the invoice-level remarks.
func (b *Builder) SetRemarks(remarks string) {
	b.inv.Remarks = remarks
}

// SetMiti sets the local-calendar date string, carried through untouched.
func (b *Builder) SetMiti(miti string) {
	b.inv.Miti = miti
}

// SetDate overrides the invoice date (YYYY-MM-DD).
func (b *Builder) SetDate(date string) {
	b.inv.Date = date
}

// Commit validates the draft and hands it to the store for the atomic
// stock-decrement, audit-append and invoice-persist sequence. On success the
// finalized invoice is returned and the builder becomes immutable; on any
// failure the draft is left unchanged.
func (b *Builder) Commit(ctx context.Context, store Committer, now time.Time) (domain.Invoice, error) {
	if b.committed {
		return domain.Invoice{}, ErrCommitted
	}
	if len(b.inv.Items) == 0 {
		return domain.Invoice{}, ErrEmptyInvoice
	}
	if strings.TrimSpace(b.inv.CustomerName) == "" {
		return domain.Invoice{}, ErrMissingCustomer
	}

	inv := b.Invoice()
	inv.CreatedAt = now.UTC().Format(time.RFC3339)
	if err := store.CommitSale(ctx, &inv); err != nil {
		return domain.Invoice{}, err
	}
	b.committed = true
	b.inv = inv
	return inv, nil
}

func (b *Builder) item(index int) (*domain.InvoiceItem, error) {
	if b.committed {
		return nil, ErrCommitted
	}
	if index < 0 || index >= len(b.inv.Items) {
		return nil, fmt.Errorf("%w: index %d", ErrNoSuchItem, index)
	}
	return &b.inv.Items[index], nil
}

func (b *Builder) reprice(it *domain.InvoiceItem) {
	it.Amount = (it.Quantity - it.QtyDiscount) * it.Rate
	b.recompute()
}

// recompute rederives every total from scratch. It is idempotent and runs
// after each mutating operation; nothing is maintained incrementally.
func (b *Builder) recompute() {
	var total float64
	for _, it := range b.inv.Items {
		total += it.Amount
	}
	after := total - b.inv.Discount + b.inv.CCOnFree
	b.inv.Total = total
	b.inv.NetAmount = money.RoundNearest(after)
	b.inv.RoundOff = money.RoundOff(after)
	b.inv.AmountInWords = money.AmountInWords(b.inv.NetAmount)
}
