package domain

// Medicine is one stocked product. Expiry is kept as the MM/YY string printed
// on the strip; parsing lives in internal/expiry.
type Medicine struct {
	ID           int64   `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	Packing      string  `db:"packing" json:"packing"`
	Batch        string  `db:"batch" json:"batch"`
	Expiry       string  `db:"expiry" json:"expiry"`
	MRP          float64 `db:"mrp" json:"mrp"`
	PurchaseRate float64 `db:"purchase_rate" json:"purchase_rate"`
	SaleRate     float64 `db:"sale_rate" json:"sale_rate"`
	Stock        float64 `db:"stock" json:"stock"`
	Discount     float64 `db:"discount" json:"discount"`
	Category     string  `db:"category" json:"category"`
	Supplier     string  `db:"supplier" json:"supplier"`
	MinStock     float64 `db:"min_stock" json:"min_stock"`
	CreatedAt    string  `db:"created_at" json:"created_at"`
	UpdatedAt    string  `db:"updated_at" json:"updated_at"`
}

// DefaultMinStock is the low-stock threshold used when none is set.
const DefaultMinStock = 10

// Categories lists the accepted medicine categories.
var Categories = []string{"Tablet", "Syrup", "Injection", "Capsule", "Ointment", "Drops", "Other"}

// ValidCategory reports whether c is one of the accepted categories.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// LowOnStock reports whether the medicine is at or below its minimum-stock
// threshold.
func (m Medicine) LowOnStock() bool {
	threshold := m.MinStock
	if threshold <= 0 {
		threshold = DefaultMinStock
	}
	return m.Stock <= threshold
}
