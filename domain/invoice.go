package domain

// Payment modes accepted on an invoice.
const (
	PaymentCash   = "CASH"
	PaymentCredit = "CREDIT"
	PaymentUPI    = "UPI"
	PaymentCard   = "CARD"
)

// ValidPaymentMode reports whether mode is one of the accepted payment modes.
func ValidPaymentMode(mode string) bool {
	switch mode {
	case PaymentCash, PaymentCredit, PaymentUPI, PaymentCard:
		return true
	}
	return false
}

// Invoice is a sale transaction header plus its line items. Totals are derived
// fields: Total is the sum of item amounts, NetAmount the rounded payable,
// RoundOff the signed delta introduced by rounding and AmountInWords the word
// form of NetAmount. Miti is an optional local-calendar date carried through
// untouched.
type Invoice struct {
	ID              int64         `db:"id" json:"id"`
	InvoiceNo       string        `db:"invoice_no" json:"invoice_no"`
	Date            string        `db:"date" json:"date"`
	CustomerName    string        `db:"customer_name" json:"customer_name"`
	CustomerAddress string        `db:"customer_address" json:"customer_address"`
	CustomerPhone   string        `db:"customer_phone" json:"customer_phone"`
	CustomerPAN     string        `db:"customer_pan" json:"customer_pan"`
	PaymentMode     string        `db:"payment_mode" json:"payment_mode"`
	Remarks         string        `db:"remarks" json:"remarks"`
	Total           float64       `db:"total" json:"total"`
	Discount        float64       `db:"discount" json:"discount"`
	CCOnFree        float64       `db:"cc_on_free" json:"cc_on_free"`
	RoundOff        float64       `db:"round_off" json:"round_off"`
	NetAmount       float64       `db:"net_amount" json:"net_amount"`
	AmountInWords   string        `db:"amount_in_words" json:"amount_in_words"`
	Miti            string        `db:"miti" json:"miti,omitempty"`
	CreatedAt       string        `db:"created_at" json:"created_at"`
	Items           []InvoiceItem `json:"items"`
}

// InvoiceItem is one invoice row bound to a medicine. Description, packing,
// batch and expiry are copied from the medicine when the row is added, not
// live-linked. AvailableStock is the stock snapshot taken at add time and acts
// as the quantity ceiling for the draft.
type InvoiceItem struct {
	ID             int64   `db:"id" json:"id"`
	InvoiceID      int64   `db:"invoice_id" json:"invoice_id"`
	MedicineID     int64   `db:"medicine_id" json:"medicine_id"`
	Description    string  `db:"description" json:"description"`
	Packing        string  `db:"packing" json:"packing"`
	Batch          string  `db:"batch" json:"batch"`
	Expiry         string  `db:"expiry" json:"expiry"`
	Quantity       float64 `db:"quantity" json:"quantity"`
	QtyDiscount    float64 `db:"qty_discount" json:"qty_discount"`
	Rate           float64 `db:"rate" json:"rate"`
	Amount         float64 `db:"amount" json:"amount"`
	MRP            float64 `db:"mrp" json:"mrp"`
	Remarks        string  `db:"remarks" json:"remarks"`
	AvailableStock float64 `db:"available_stock" json:"available_stock"`
}

// SoldQuantity is the stock actually consumed by the row: ordered quantity
// less free units.
func (it InvoiceItem) SoldQuantity() float64 {
	return it.Quantity - it.QtyDiscount
}
