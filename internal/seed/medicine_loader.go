package seed

import (
	"encoding/csv"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

// LoadCatalog ingests a medicine catalog CSV into the medicines table,
// ignoring rows already present (keyed on name+batch). Expected columns:
// name, packing, batch, expiry, mrp, purchase_rate, sale_rate, stock,
// discount, category, supplier, min_stock.
func LoadCatalog(db *sqlx.DB, csvPath string) {
	file, err := os.Open(csvPath)
	if err != nil {
		log.Printf("no medicine catalog at %s: %v", csvPath, err)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Printf("unable to read catalog header: %v", err)
		return
	}

	tx, err := db.Beginx()
	if err != nil {
		log.Printf("unable to start catalog import: %v", err)
		return
	}
	stmt, err := tx.Preparex(`INSERT OR IGNORE INTO medicines
        (name, packing, batch, expiry, mrp, purchase_rate, sale_rate, stock, discount, category, supplier, min_stock)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		log.Printf("unable to prepare catalog insert: %v", err)
		_ = tx.Rollback()
		return
	}
	defer stmt.Close()

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("unable to read catalog row: %v", err)
			continue
		}
		if len(record) < 12 {
			continue
		}

		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}
		category := strings.TrimSpace(record[9])
		if category == "" {
			category = "Other"
		}
		minStock := num(record[11])
		if minStock <= 0 {
			minStock = 10
		}

		if _, err := stmt.Exec(name, strings.TrimSpace(record[1]), strings.TrimSpace(record[2]),
			strings.TrimSpace(record[3]), num(record[4]), num(record[5]), num(record[6]),
			num(record[7]), num(record[8]), category, strings.TrimSpace(record[10]), minStock); err != nil {
			log.Printf("unable to insert medicine %s: %v", name, err)
		} else {
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("unable to commit catalog import: %v", err)
	} else {
		log.Printf("imported medicine catalog with %d rows", rows)
	}
}

func num(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
