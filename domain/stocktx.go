package domain

// Stock transaction types.
const (
	StockTxSale = "sale"
)

// StockTransaction is an append-only audit record of a stock change. For a
// sale the quantity is negative: -(ordered - free units). Rows are never
// mutated or deleted.
type StockTransaction struct {
	ID         int64   `db:"id" json:"id"`
	MedicineID int64   `db:"medicine_id" json:"medicine_id"`
	Type       string  `db:"type" json:"type"`
	Quantity   float64 `db:"quantity" json:"quantity"`
	InvoiceNo  string  `db:"invoice_no" json:"invoice_no"`
	Date       string  `db:"date" json:"date"`
}
