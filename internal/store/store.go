// Package store is the persistent record store: typed collections for
// medicines, invoices, settings and stock transactions over a single SQLite
// database. An explicit *Store handle is passed to every component that needs
// persistence; there is no ambient global.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"medibill/m/domain"
	"medibill/m/internal/billing"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrPersist wraps any underlying database failure.
	ErrPersist = errors.New("store persist failure")
)

// Store provides access to the persistent collections.
type Store struct {
	db *sqlx.DB
}

// New wraps an open database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

const medicineColumns = `id, name, packing, batch, expiry, mrp, purchase_rate, sale_rate,
        stock, discount, category, supplier, min_stock, created_at, updated_at`

// Medicines

// AddMedicine inserts a medicine and fills in its assigned identifier.
func (s *Store) AddMedicine(ctx context.Context, m *domain.Medicine) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO medicines
        (name, packing, batch, expiry, mrp, purchase_rate, sale_rate, stock, discount, category, supplier, min_stock)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Name, m.Packing, m.Batch, m.Expiry, m.MRP, m.PurchaseRate, m.SaleRate,
		m.Stock, m.Discount, m.Category, m.Supplier, m.MinStock)
	if err != nil {
		return fmt.Errorf("%w: insert medicine: %w", ErrPersist, err)
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("%w: insert medicine: %w", ErrPersist, err)
	}
	return nil
}

// UpdateMedicine rewrites every mutable column of the medicine.
func (s *Store) UpdateMedicine(ctx context.Context, m domain.Medicine) error {
	res, err := s.db.ExecContext(ctx, `UPDATE medicines SET
        name = ?, packing = ?, batch = ?, expiry = ?, mrp = ?, purchase_rate = ?, sale_rate = ?,
        stock = ?, discount = ?, category = ?, supplier = ?, min_stock = ?, updated_at = CURRENT_TIMESTAMP
        WHERE id = ?`,
		m.Name, m.Packing, m.Batch, m.Expiry, m.MRP, m.PurchaseRate, m.SaleRate,
		m.Stock, m.Discount, m.Category, m.Supplier, m.MinStock, m.ID)
	if err != nil {
		return fmt.Errorf("%w: update medicine %d: %w", ErrPersist, m.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("medicine %d: %w", m.ID, ErrNotFound)
	}
	return nil
}

// DeleteMedicine removes a medicine. Audit rows referencing it are kept.
func (s *Store) DeleteMedicine(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM medicines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: delete medicine %d: %w", ErrPersist, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("medicine %d: %w", id, ErrNotFound)
	}
	return nil
}

// Medicine loads a single medicine by identifier.
func (s *Store) Medicine(ctx context.Context, id int64) (domain.Medicine, error) {
	var m domain.Medicine
	err := s.db.GetContext(ctx, &m, `SELECT `+medicineColumns+` FROM medicines WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Medicine{}, fmt.Errorf("medicine %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("load medicine %d: %w", id, err)
	}
	return m, nil
}

// ListMedicines returns every medicine ordered by name.
func (s *Store) ListMedicines(ctx context.Context) ([]domain.Medicine, error) {
	var meds []domain.Medicine
	if err := s.db.SelectContext(ctx, &meds, `SELECT `+medicineColumns+` FROM medicines ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	return meds, nil
}

// SearchMedicines matches the query as a substring of name, batch or category.
func (s *Store) SearchMedicines(ctx context.Context, query string) ([]domain.Medicine, error) {
	like := "%" + strings.TrimSpace(query) + "%"
	var meds []domain.Medicine
	err := s.db.SelectContext(ctx, &meds, `SELECT `+medicineColumns+` FROM medicines
        WHERE name LIKE ? OR batch LIKE ? OR category LIKE ? ORDER BY name`, like, like, like)
	if err != nil {
		return nil, fmt.Errorf("search medicines: %w", err)
	}
	return meds, nil
}

// Invoices

// LastInvoiceNumber returns the highest issued invoice number, or "" when no
// invoice exists yet. It scans max(invoice_no), not insertion order, so
// deletions and reordering cannot make the sequence go backwards.
func (s *Store) LastInvoiceNumber(ctx context.Context) (string, error) {
	var max int64
	if err := s.db.GetContext(ctx, &max, `SELECT COALESCE(MAX(CAST(invoice_no AS INTEGER)), 0) FROM invoices`); err != nil {
		return "", fmt.Errorf("scan invoice numbers: %w", err)
	}
	if max == 0 {
		return "", nil
	}
	return fmt.Sprintf("%06d", max), nil
}

// NextInvoiceNumber derives the number for the next draft.
func (s *Store) NextInvoiceNumber(ctx context.Context) (string, error) {
	last, err := s.LastInvoiceNumber(ctx)
	if err != nil {
		return "", err
	}
	return billing.NextInvoiceNumber(last)
}

const invoiceColumns = `id, invoice_no, date, customer_name, customer_address, customer_phone,
        customer_pan, payment_mode, remarks, total, discount, cc_on_free, round_off,
        net_amount, amount_in_words, miti, created_at`

// InvoiceByNumber loads one invoice with its line items.
func (s *Store) InvoiceByNumber(ctx context.Context, invoiceNo string) (domain.Invoice, error) {
	var inv domain.Invoice
	err := s.db.GetContext(ctx, &inv, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_no = ?`, invoiceNo)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Invoice{}, fmt.Errorf("invoice %s: %w", invoiceNo, ErrNotFound)
	}
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("load invoice %s: %w", invoiceNo, err)
	}
	if err := s.attachItems(ctx, []*domain.Invoice{&inv}); err != nil {
		return domain.Invoice{}, err
	}
	return inv, nil
}

// InvoicesBetween returns the invoices dated in [start, end] (YYYY-MM-DD,
// inclusive), newest first, with line items attached. Empty bounds are open.
func (s *Store) InvoicesBetween(ctx context.Context, start, end string) ([]domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	var (
		clauses []string
		args    []any
	)
	if start != "" {
		clauses = append(clauses, "date >= ?")
		args = append(args, start)
	}
	if end != "" {
		clauses = append(clauses, "date <= ?")
		args = append(args, end)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY CAST(invoice_no AS INTEGER) DESC"

	var invoices []domain.Invoice
	if err := s.db.SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	refs := make([]*domain.Invoice, len(invoices))
	for i := range invoices {
		refs[i] = &invoices[i]
	}
	if err := s.attachItems(ctx, refs); err != nil {
		return nil, err
	}
	return invoices, nil
}

func (s *Store) attachItems(ctx context.Context, invoices []*domain.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	ids := make([]int64, len(invoices))
	byID := make(map[int64]*domain.Invoice, len(invoices))
	for i, inv := range invoices {
		ids[i] = inv.ID
		byID[inv.ID] = inv
	}

	query, args, err := sqlx.In(`SELECT id, invoice_id, medicine_id, description, packing, batch, expiry,
        quantity, qty_discount, rate, amount, mrp, remarks, available_stock
        FROM invoice_items WHERE invoice_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("prepare invoice items query: %w", err)
	}
	query = s.db.Rebind(query)

	var items []domain.InvoiceItem
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return fmt.Errorf("load invoice items: %w", err)
	}
	for _, it := range items {
		inv := byID[it.InvoiceID]
		inv.Items = append(inv.Items, it)
	}
	return nil
}

// CommitSale finalizes a sale in one durable transaction: the invoice and its
// items are inserted, each referenced medicine is re-read and its stock
// decremented, and one audit transaction is appended per line item. Stock is
// re-validated against live values here, not the draft snapshots; a conflict
// returns billing.ErrInsufficientStock and nothing is written.
func (s *Store) CommitSale(ctx context.Context, inv *domain.Invoice) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin sale: %w", ErrPersist, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO invoices
        (invoice_no, date, customer_name, customer_address, customer_phone, customer_pan,
         payment_mode, remarks, total, discount, cc_on_free, round_off, net_amount,
         amount_in_words, miti, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.InvoiceNo, inv.Date, inv.CustomerName, inv.CustomerAddress, inv.CustomerPhone,
		inv.CustomerPAN, inv.PaymentMode, inv.Remarks, inv.Total, inv.Discount, inv.CCOnFree,
		inv.RoundOff, inv.NetAmount, inv.AmountInWords, inv.Miti, inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert invoice %s: %w", ErrPersist, inv.InvoiceNo, err)
	}
	if inv.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("%w: insert invoice %s: %w", ErrPersist, inv.InvoiceNo, err)
	}

	for i := range inv.Items {
		it := &inv.Items[i]
		it.InvoiceID = inv.ID

		var med domain.Medicine
		err := tx.GetContext(ctx, &med, `SELECT `+medicineColumns+` FROM medicines WHERE id = ?`, it.MedicineID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("medicine %d: %w", it.MedicineID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("%w: load medicine %d: %w", ErrPersist, it.MedicineID, err)
		}

		sold := it.SoldQuantity()
		if sold > med.Stock {
			return fmt.Errorf("%w: %s has %g in stock, sale needs %g",
				billing.ErrInsufficientStock, med.Name, med.Stock, sold)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE medicines SET stock = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			med.Stock-sold, med.ID); err != nil {
			return fmt.Errorf("%w: update stock for medicine %d: %w", ErrPersist, med.ID, err)
		}

		itemRes, err := tx.ExecContext(ctx, `INSERT INTO invoice_items
            (invoice_id, medicine_id, description, packing, batch, expiry, quantity,
             qty_discount, rate, amount, mrp, remarks, available_stock)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			it.InvoiceID, it.MedicineID, it.Description, it.Packing, it.Batch, it.Expiry,
			it.Quantity, it.QtyDiscount, it.Rate, it.Amount, it.MRP, it.Remarks, it.AvailableStock)
		if err != nil {
			return fmt.Errorf("%w: insert invoice item: %w", ErrPersist, err)
		}
		if it.ID, err = itemRes.LastInsertId(); err != nil {
			return fmt.Errorf("%w: insert invoice item: %w", ErrPersist, err)
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO stock_transactions
            (medicine_id, type, quantity, invoice_no, date) VALUES (?, ?, ?, ?, ?)`,
			it.MedicineID, domain.StockTxSale, -sold, inv.InvoiceNo, inv.CreatedAt); err != nil {
			return fmt.Errorf("%w: append stock transaction: %w", ErrPersist, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit sale %s: %w", ErrPersist, inv.InvoiceNo, err)
	}
	return nil
}

// Stock transactions

// StockTransactions lists audit rows, newest first. A medicineID of 0 lists
// every medicine.
func (s *Store) StockTransactions(ctx context.Context, medicineID int64) ([]domain.StockTransaction, error) {
	query := `SELECT id, medicine_id, type, quantity, invoice_no, date FROM stock_transactions`
	var args []any
	if medicineID != 0 {
		query += ` WHERE medicine_id = ?`
		args = append(args, medicineID)
	}
	query += ` ORDER BY id DESC`

	var txs []domain.StockTransaction
	if err := s.db.SelectContext(ctx, &txs, query, args...); err != nil {
		return nil, fmt.Errorf("list stock transactions: %w", err)
	}
	return txs, nil
}

// Settings

// Settings returns the full configuration map.
func (s *Store) Settings(ctx context.Context) (map[string]string, error) {
	var rows []domain.Setting
	if err := s.db.SelectContext(ctx, &rows, `SELECT key, value FROM settings`); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		settings[row.Key] = row.Value
	}
	return settings, nil
}

// PutSetting inserts or replaces one configuration entry.
func (s *Store) PutSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES (?, ?)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("%w: put setting %s: %w", ErrPersist, key, err)
	}
	return nil
}

// Users

// CreateUser inserts the owner account with an already-hashed password.
func (s *Store) CreateUser(ctx context.Context, username, email, hashedPassword string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO users (username, email, password) VALUES (?, ?, ?)`,
		username, email, hashedPassword)
	if err != nil {
		return 0, fmt.Errorf("%w: create user: %w", ErrPersist, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: create user: %w", ErrPersist, err)
	}
	return id, nil
}

// UserByEmail loads an account by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := s.db.GetContext(ctx, &u, `SELECT id, username, email, password, created_at FROM users WHERE email = ?`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// CountUsers reports how many accounts exist.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// UpdateUserPassword replaces the stored password hash.
func (s *Store) UpdateUserPassword(ctx context.Context, id int64, hashedPassword string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE users SET password = ? WHERE id = ?`, hashedPassword, id); err != nil {
		return fmt.Errorf("%w: update password: %w", ErrPersist, err)
	}
	return nil
}
