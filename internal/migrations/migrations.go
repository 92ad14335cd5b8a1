package migrations

import (
	"log"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema for the pharmacy tracker. The secondary
// indexes mirror the lookups the app performs: medicine search by
// name/batch/category, invoice lookup by number/date/customer and the
// per-medicine audit trail.
func Run(db *sqlx.DB) {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS medicines (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            packing TEXT NOT NULL DEFAULT '',
            batch TEXT NOT NULL DEFAULT '',
            expiry TEXT NOT NULL DEFAULT '',
            mrp REAL NOT NULL DEFAULT 0,
            purchase_rate REAL NOT NULL DEFAULT 0,
            sale_rate REAL NOT NULL DEFAULT 0,
            stock REAL NOT NULL DEFAULT 0,
            discount REAL NOT NULL DEFAULT 0,
            category TEXT NOT NULL DEFAULT 'Other',
            supplier TEXT NOT NULL DEFAULT '',
            min_stock REAL NOT NULL DEFAULT 10,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            UNIQUE(name, batch)
        );`,
		`CREATE TABLE IF NOT EXISTS invoices (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            invoice_no TEXT NOT NULL UNIQUE,
            date TEXT NOT NULL,
            customer_name TEXT NOT NULL,
            customer_address TEXT NOT NULL DEFAULT '',
            customer_phone TEXT NOT NULL DEFAULT '',
            customer_pan TEXT NOT NULL DEFAULT '',
            payment_mode TEXT NOT NULL DEFAULT 'CASH',
            remarks TEXT NOT NULL DEFAULT '',
            total REAL NOT NULL DEFAULT 0,
            discount REAL NOT NULL DEFAULT 0,
            cc_on_free REAL NOT NULL DEFAULT 0,
            round_off REAL NOT NULL DEFAULT 0,
            net_amount REAL NOT NULL DEFAULT 0,
            amount_in_words TEXT NOT NULL DEFAULT '',
            miti TEXT NOT NULL DEFAULT '',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS invoice_items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            invoice_id INTEGER NOT NULL,
            medicine_id INTEGER NOT NULL,
            description TEXT NOT NULL,
            packing TEXT NOT NULL DEFAULT '',
            batch TEXT NOT NULL DEFAULT '',
            expiry TEXT NOT NULL DEFAULT '',
            quantity REAL NOT NULL,
            qty_discount REAL NOT NULL DEFAULT 0,
            rate REAL NOT NULL,
            amount REAL NOT NULL,
            mrp REAL NOT NULL DEFAULT 0,
            remarks TEXT NOT NULL DEFAULT '',
            available_stock REAL NOT NULL DEFAULT 0,
            FOREIGN KEY(invoice_id) REFERENCES invoices(id),
            FOREIGN KEY(medicine_id) REFERENCES medicines(id)
        );`,
		`CREATE TABLE IF NOT EXISTS settings (
            key TEXT PRIMARY KEY,
            value TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS stock_transactions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            medicine_id INTEGER NOT NULL,
            type TEXT NOT NULL,
            quantity REAL NOT NULL,
            invoice_no TEXT NOT NULL DEFAULT '',
            date DATETIME DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(medicine_id) REFERENCES medicines(id)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_medicines_name ON medicines(name);`,
		`CREATE INDEX IF NOT EXISTS idx_medicines_batch ON medicines(batch);`,
		`CREATE INDEX IF NOT EXISTS idx_medicines_category ON medicines(category);`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_date ON invoices(date);`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_customer ON invoices(customer_name);`,
		`CREATE INDEX IF NOT EXISTS idx_invoice_items_invoice ON invoice_items(invoice_id);`,
		`CREATE INDEX IF NOT EXISTS idx_stock_tx_medicine ON stock_transactions(medicine_id);`,
		`CREATE INDEX IF NOT EXISTS idx_stock_tx_date ON stock_transactions(date);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}
}
