package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"medibill/m/internal/expiry"
)

// SalesSummary aggregates the invoices of a period.
type SalesSummary struct {
	TotalSales     float64 `json:"total_sales"`
	InvoiceCount   int64   `json:"invoice_count"`
	TotalItems     int64   `json:"total_items"`
	AverageInvoice float64 `json:"average_invoice"`
}

// SalesRow is one line of the sales report.
type SalesRow struct {
	InvoiceNo    string  `db:"invoice_no" json:"invoice_no"`
	Date         string  `db:"date" json:"date"`
	CustomerName string  `db:"customer_name" json:"customer_name"`
	PaymentMode  string  `db:"payment_mode" json:"payment_mode"`
	Total        float64 `db:"total" json:"total"`
	Discount     float64 `db:"discount" json:"discount"`
	NetAmount    float64 `db:"net_amount" json:"net_amount"`
}

// StockRow is one line of the stock report; Value is the purchase value of
// the quantity on hand.
type StockRow struct {
	Name         string  `db:"name" json:"name"`
	Batch        string  `db:"batch" json:"batch"`
	Expiry       string  `db:"expiry" json:"expiry"`
	Category     string  `db:"category" json:"category"`
	Supplier     string  `db:"supplier" json:"supplier"`
	Stock        float64 `db:"stock" json:"stock"`
	PurchaseRate float64 `db:"purchase_rate" json:"purchase_rate"`
	Value        float64 `db:"value" json:"value"`
}

// Dashboard holds the headline counters for the home screen.
type Dashboard struct {
	TotalMedicines int64   `json:"total_medicines"`
	TodaySales     float64 `json:"today_sales"`
	MonthSales     float64 `json:"month_sales"`
	TodayInvoices  int64   `json:"today_invoices"`
	LowStockCount  int64   `json:"low_stock_count"`
	ExpiredCount   int64   `json:"expired_count"`
	NearExpiry     int64   `json:"near_expiry_count"`
}

// SalesSummary aggregates invoices dated in [start, end] (YYYY-MM-DD,
// inclusive; empty bounds are open).
func (s *Store) SalesSummary(ctx context.Context, start, end string) (SalesSummary, error) {
	query := `SELECT COALESCE(SUM(net_amount), 0) AS total, COUNT(*) AS n FROM invoices`
	clause, args := dateClause("date", start, end)
	var sum SalesSummary
	if err := s.db.QueryRowContext(ctx, query+clause, args...).Scan(&sum.TotalSales, &sum.InvoiceCount); err != nil {
		return SalesSummary{}, fmt.Errorf("sales summary: %w", err)
	}

	itemsQuery := `SELECT COUNT(*) FROM invoice_items ii JOIN invoices i ON i.id = ii.invoice_id`
	clause, args = dateClause("i.date", start, end)
	if err := s.db.QueryRowContext(ctx, itemsQuery+clause, args...).Scan(&sum.TotalItems); err != nil {
		return SalesSummary{}, fmt.Errorf("sales summary items: %w", err)
	}

	if sum.InvoiceCount > 0 {
		sum.AverageInvoice = sum.TotalSales / float64(sum.InvoiceCount)
	}
	return sum, nil
}

// SalesReport lists one row per invoice dated in [start, end], newest first.
func (s *Store) SalesReport(ctx context.Context, start, end string) ([]SalesRow, error) {
	query := `SELECT invoice_no, date, customer_name, payment_mode, total, discount, net_amount FROM invoices`
	clause, args := dateClause("date", start, end)
	query += clause + ` ORDER BY CAST(invoice_no AS INTEGER) DESC`

	var rows []SalesRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sales report: %w", err)
	}
	return rows, nil
}

// StockReport lists every medicine with its purchase value on hand.
func (s *Store) StockReport(ctx context.Context) ([]StockRow, error) {
	var rows []StockRow
	err := s.db.SelectContext(ctx, &rows, `SELECT name, batch, expiry, category, supplier,
        stock, purchase_rate, (stock * purchase_rate) AS value FROM medicines ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("stock report: %w", err)
	}
	return rows, nil
}

// DashboardStats computes the headline counters. Expiry classification runs
// in Go since MM/YY strings cannot be compared in SQL.
func (s *Store) DashboardStats(ctx context.Context, now time.Time) (Dashboard, error) {
	var d Dashboard

	today := now.Format("2006-01-02")
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02")

	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(net_amount), 0), COUNT(*) FROM invoices WHERE date = ?`, today).
		Scan(&d.TodaySales, &d.TodayInvoices); err != nil {
		return Dashboard{}, fmt.Errorf("dashboard today: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(net_amount), 0) FROM invoices WHERE date >= ? AND date <= ?`, monthStart, today).
		Scan(&d.MonthSales); err != nil {
		return Dashboard{}, fmt.Errorf("dashboard month: %w", err)
	}

	meds, err := s.ListMedicines(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	d.TotalMedicines = int64(len(meds))
	for _, m := range meds {
		if m.LowOnStock() {
			d.LowStockCount++
		}
		expired, err := expiry.IsExpired(m.Expiry, now)
		if err != nil {
			log.Printf("medicine %d has malformed expiry %q", m.ID, m.Expiry)
			continue
		}
		if expired {
			d.ExpiredCount++
			continue
		}
		if near, _ := expiry.IsNearExpiry(m.Expiry, expiry.DefaultHorizonDays, now); near {
			d.NearExpiry++
		}
	}
	return d, nil
}

func dateClause(column, start, end string) (string, []any) {
	switch {
	case start != "" && end != "":
		return fmt.Sprintf(" WHERE %s >= ? AND %s <= ?", column, column), []any{start, end}
	case start != "":
		return fmt.Sprintf(" WHERE %s >= ?", column), []any{start}
	case end != "":
		return fmt.Sprintf(" WHERE %s <= ?", column), []any{end}
	}
	return "", nil
}
