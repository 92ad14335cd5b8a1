package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"medibill/m/domain"
	"medibill/m/internal/billing"
	"medibill/m/internal/database"
	"medibill/m/internal/migrations"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db := database.Connect(":memory:")
	t.Cleanup(func() { db.Close() })
	migrations.Run(db)
	return New(db)
}

func seedMedicine(t *testing.T, s *Store, m domain.Medicine) domain.Medicine {
	t.Helper()
	if err := s.AddMedicine(context.Background(), &m); err != nil {
		t.Fatalf("AddMedicine(%s): %v", m.Name, err)
	}
	return m
}

func TestMedicineCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	med := seedMedicine(t, s, domain.Medicine{
		Name: "Amoxicillin 250mg", Packing: "10x10", Batch: "AMX-07", Expiry: "06/27",
		MRP: 80, PurchaseRate: 55, SaleRate: 72, Stock: 40, Category: "Capsule",
		Supplier: "HealthCo", MinStock: 10,
	})
	if med.ID == 0 {
		t.Fatalf("AddMedicine did not assign an id")
	}

	got, err := s.Medicine(ctx, med.ID)
	if err != nil {
		t.Fatalf("Medicine: %v", err)
	}
	if got.Name != med.Name || got.Stock != 40 || got.Category != "Capsule" {
		t.Errorf("loaded medicine = %+v", got)
	}

	got.Stock = 35
	got.SaleRate = 75
	if err := s.UpdateMedicine(ctx, got); err != nil {
		t.Fatalf("UpdateMedicine: %v", err)
	}
	got, err = s.Medicine(ctx, med.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Stock != 35 || got.SaleRate != 75 {
		t.Errorf("update not persisted: %+v", got)
	}

	results, err := s.SearchMedicines(ctx, "amx")
	if err != nil {
		t.Fatalf("SearchMedicines: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("search by batch = %d results, want 1", len(results))
	}

	if err := s.DeleteMedicine(ctx, med.ID); err != nil {
		t.Fatalf("DeleteMedicine: %v", err)
	}
	if _, err := s.Medicine(ctx, med.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Medicine after delete = %v, want ErrNotFound", err)
	}
	if err := s.UpdateMedicine(ctx, got); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateMedicine after delete = %v, want ErrNotFound", err)
	}
}

func TestInvoiceNumberSequence(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	no, err := s.NextInvoiceNumber(ctx)
	if err != nil {
		t.Fatalf("NextInvoiceNumber: %v", err)
	}
	if no != "000001" {
		t.Errorf("first number = %q, want 000001", no)
	}

	commitSale(t, s, "000041", "2025-01-10")
	no, err = s.NextInvoiceNumber(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if no != "000042" {
		t.Errorf("next number = %q, want 000042", no)
	}
}

// commitSale drafts and commits a one-item sale for a fresh medicine.
func commitSale(t *testing.T, s *Store, invoiceNo, date string) domain.Invoice {
	t.Helper()
	med := seedMedicine(t, s, domain.Medicine{
		Name: "Cetirizine " + invoiceNo, Batch: "B-" + invoiceNo, Expiry: "12/27",
		MRP: 30, PurchaseRate: 18, SaleRate: 24, Stock: 50, Category: "Tablet",
	})

	now := time.Date(2025, time.January, 10, 9, 30, 0, 0, time.UTC)
	b := billing.NewBuilder(invoiceNo, now)
	if err := b.AddItem(med); err != nil {
		t.Fatal(err)
	}
	if err := b.SetQuantity(0, 5); err != nil {
		t.Fatal(err)
	}
	if err := b.SetQtyDiscount(0, 1); err != nil {
		t.Fatal(err)
	}
	b.SetCustomer("Walk-in", "", "", "")
	b.SetDate(date)

	inv, err := b.Commit(context.Background(), s, now)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return inv
}

func TestCommitSalePersistsEverything(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	inv := commitSale(t, s, "000001", "2025-01-10")

	loaded, err := s.InvoiceByNumber(ctx, "000001")
	if err != nil {
		t.Fatalf("InvoiceByNumber: %v", err)
	}
	if len(loaded.Items) != 1 {
		t.Fatalf("loaded items = %d, want 1", len(loaded.Items))
	}
	it := loaded.Items[0]
	if it.Quantity != 5 || it.QtyDiscount != 1 || it.Amount != 4*24 {
		t.Errorf("loaded item = %+v", it)
	}
	if loaded.NetAmount != inv.NetAmount || loaded.AmountInWords != inv.AmountInWords {
		t.Errorf("loaded totals differ: %+v vs %+v", loaded, inv)
	}

	// Stock decremented by quantity minus free units.
	med, err := s.Medicine(ctx, it.MedicineID)
	if err != nil {
		t.Fatal(err)
	}
	if med.Stock != 46 {
		t.Errorf("stock after sale = %g, want 46", med.Stock)
	}

	// One audit row per line item with the negative delta.
	txs, err := s.StockTransactions(ctx, it.MedicineID)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 {
		t.Fatalf("stock transactions = %d, want 1", len(txs))
	}
	if txs[0].Type != domain.StockTxSale || txs[0].Quantity != -4 || txs[0].InvoiceNo != "000001" {
		t.Errorf("audit row = %+v", txs[0])
	}
}

func TestCommitSaleRollsBackOnConflict(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := seedMedicine(t, s, domain.Medicine{Name: "Ibuprofen", Batch: "IB-1", SaleRate: 15, Stock: 20, Category: "Tablet"})
	second := seedMedicine(t, s, domain.Medicine{Name: "ORS Sachet", Batch: "OR-1", SaleRate: 10, Stock: 2, Category: "Other"})

	inv := domain.Invoice{
		InvoiceNo: "000001", Date: "2025-01-10", CustomerName: "Walk-in",
		PaymentMode: domain.PaymentCash, CreatedAt: "2025-01-10T09:30:00Z",
		Items: []domain.InvoiceItem{
			{MedicineID: first.ID, Description: first.Name, Quantity: 5, Rate: 15, Amount: 75},
			{MedicineID: second.ID, Description: second.Name, Quantity: 5, Rate: 10, Amount: 50},
		},
	}

	// Second item overdraws live stock; the whole commit must roll back.
	if err := s.CommitSale(ctx, &inv); !errors.Is(err, billing.ErrInsufficientStock) {
		t.Fatalf("CommitSale error = %v, want ErrInsufficientStock", err)
	}

	med, err := s.Medicine(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if med.Stock != 20 {
		t.Errorf("first medicine stock = %g, want untouched 20", med.Stock)
	}
	if _, err := s.InvoiceByNumber(ctx, "000001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("invoice persisted despite rollback: %v", err)
	}
	txs, err := s.StockTransactions(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 0 {
		t.Errorf("audit rows after rollback = %d, want 0", len(txs))
	}
}

func TestSettingsUpsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.PutSetting(ctx, "pharmacyName", "City Pharmacy"); err != nil {
		t.Fatal(err)
	}
	if err := s.PutSetting(ctx, "phone", "061-522333"); err != nil {
		t.Fatal(err)
	}
	if err := s.PutSetting(ctx, "pharmacyName", "City Pharmacy Pvt. Ltd."); err != nil {
		t.Fatal(err)
	}

	settings, err := s.Settings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if settings["pharmacyName"] != "City Pharmacy Pvt. Ltd." {
		t.Errorf("pharmacyName = %q", settings["pharmacyName"])
	}
	if settings["phone"] != "061-522333" {
		t.Errorf("phone = %q", settings["phone"])
	}
}

func TestReports(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	commitSale(t, s, "000001", "2025-01-09")
	commitSale(t, s, "000002", "2025-01-10")
	commitSale(t, s, "000003", "2025-01-10")

	sum, err := s.SalesSummary(ctx, "2025-01-10", "2025-01-10")
	if err != nil {
		t.Fatalf("SalesSummary: %v", err)
	}
	if sum.InvoiceCount != 2 || sum.TotalItems != 2 {
		t.Errorf("summary = %+v", sum)
	}
	// Each sale nets round(4 * 24) = 96.
	if sum.TotalSales != 192 || sum.AverageInvoice != 96 {
		t.Errorf("summary totals = %+v", sum)
	}

	rows, err := s.SalesReport(ctx, "", "")
	if err != nil {
		t.Fatalf("SalesReport: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("sales rows = %d, want 3", len(rows))
	}
	if rows[0].InvoiceNo != "000003" {
		t.Errorf("rows not newest-first: %q", rows[0].InvoiceNo)
	}

	stock, err := s.StockReport(ctx)
	if err != nil {
		t.Fatalf("StockReport: %v", err)
	}
	if len(stock) != 3 {
		t.Fatalf("stock rows = %d, want 3", len(stock))
	}
	for _, row := range stock {
		if row.Value != row.Stock*row.PurchaseRate {
			t.Errorf("%s value = %g, want %g", row.Name, row.Value, row.Stock*row.PurchaseRate)
		}
	}

	now := time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)
	dash, err := s.DashboardStats(ctx, now)
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if dash.TotalMedicines != 3 {
		t.Errorf("dashboard medicines = %d", dash.TotalMedicines)
	}
	if dash.TodaySales != 192 || dash.TodayInvoices != 2 {
		t.Errorf("dashboard today = %+v", dash)
	}
	if dash.MonthSales != 288 {
		t.Errorf("dashboard month = %+v", dash)
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	n, err := s.CountUsers(ctx)
	if err != nil || n != 0 {
		t.Fatalf("CountUsers = %d, %v", n, err)
	}

	id, err := s.CreateUser(ctx, "owner", "owner@pharmacy.local", "hashed")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	u, err := s.UserByEmail(ctx, "owner@pharmacy.local")
	if err != nil {
		t.Fatalf("UserByEmail: %v", err)
	}
	if u.ID != id || u.Username != "owner" {
		t.Errorf("loaded user = %+v", u)
	}

	if err := s.UpdateUserPassword(ctx, id, "rehashed"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}
	u, err = s.UserByEmail(ctx, "owner@pharmacy.local")
	if err != nil {
		t.Fatal(err)
	}
	if u.Password != "rehashed" {
		t.Errorf("password not updated")
	}

	if _, err := s.UserByEmail(ctx, "nobody@x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user error = %v, want ErrNotFound", err)
	}
}
