package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"medibill/m/domain"
	"medibill/m/internal/database"
	"medibill/m/internal/migrations"
	"medibill/m/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db := database.Connect(":memory:")
	t.Cleanup(func() { db.Close() })
	migrations.Run(db)

	srv := httptest.NewServer(New(store.New(db), "test_secret").Router())
	t.Cleanup(srv.Close)
	return srv
}

func request(t *testing.T, srv *httptest.Server, method, path, token string, payload any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, srv.URL+path, &body)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	fields := map[string]json.RawMessage{}
	_ = json.NewDecoder(resp.Body).Decode(&fields)
	return resp, fields
}

func registerOwner(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, fields := request(t, srv, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "owner", "email": "owner@pharmacy.local", "password": "s3cret",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", resp.StatusCode)
	}
	var token string
	if err := json.Unmarshal(fields["token"], &token); err != nil || token == "" {
		t.Fatalf("register returned no token: %v", err)
	}
	return token
}

func TestRegisterClosedAfterOwner(t *testing.T) {
	srv := newTestServer(t)
	registerOwner(t, srv)

	resp, _ := request(t, srv, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "intruder", "email": "other@x.com", "password": "pw",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("second register status = %d, want 403", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := request(t, srv, http.MethodGet, "/medicines", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated list status = %d, want 401", resp.StatusCode)
	}
}

func TestMedicineValidation(t *testing.T) {
	srv := newTestServer(t)
	token := registerOwner(t, srv)

	tests := []struct {
		name    string
		payload map[string]any
		want    int
	}{
		{"valid", map[string]any{"name": "Paracetamol 500mg", "batch": "P-1", "expiry": "12/27", "sale_rate": 20.0, "stock": 10.0, "category": "Tablet"}, http.StatusCreated},
		{"missing name", map[string]any{"batch": "P-2"}, http.StatusBadRequest},
		{"bad expiry", map[string]any{"name": "X", "expiry": "13/27"}, http.StatusBadRequest},
		{"bad category", map[string]any{"name": "X", "category": "Vitamins"}, http.StatusBadRequest},
		{"negative stock", map[string]any{"name": "X", "stock": -1.0}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := request(t, srv, http.MethodPost, "/medicines", token, tt.payload)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestInvoiceFlow(t *testing.T) {
	srv := newTestServer(t)
	token := registerOwner(t, srv)

	resp, fields := request(t, srv, http.MethodPost, "/medicines", token, map[string]any{
		"name": "Cetirizine 10mg", "batch": "CTZ-1", "expiry": "12/27",
		"mrp": 30.0, "purchase_rate": 18.0, "sale_rate": 24.0, "stock": 50.0, "category": "Tablet",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create medicine status = %d", resp.StatusCode)
	}
	var med domain.Medicine
	raw, _ := json.Marshal(fields)
	if err := json.Unmarshal(raw, &med); err != nil {
		t.Fatal(err)
	}

	resp, fields = request(t, srv, http.MethodPost, "/billing/invoices", token, map[string]any{
		"customer_name": "Walk-in",
		"discount":      5.0,
		"items": []map[string]any{
			{"medicine_id": med.ID, "quantity": 5.0, "qty_discount": 1.0},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create invoice status = %d: %s", resp.StatusCode, fields["error"])
	}
	var inv domain.Invoice
	raw, _ = json.Marshal(fields)
	if err := json.Unmarshal(raw, &inv); err != nil {
		t.Fatal(err)
	}
	if inv.InvoiceNo != "000001" {
		t.Errorf("invoice number = %q, want 000001", inv.InvoiceNo)
	}
	// 4 paid units at 24, minus invoice discount 5.
	if inv.NetAmount != 91 {
		t.Errorf("net amount = %g, want 91", inv.NetAmount)
	}

	resp, fields = request(t, srv, http.MethodGet, fmt.Sprintf("/medicines/%d", med.ID), token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get medicine status = %d", resp.StatusCode)
	}
	var after domain.Medicine
	raw, _ = json.Marshal(fields)
	if err := json.Unmarshal(raw, &after); err != nil {
		t.Fatal(err)
	}
	if after.Stock != 46 {
		t.Errorf("stock after sale = %g, want 46", after.Stock)
	}
}

func TestInvoiceRejectsOverdraw(t *testing.T) {
	srv := newTestServer(t)
	token := registerOwner(t, srv)

	resp, fields := request(t, srv, http.MethodPost, "/medicines", token, map[string]any{
		"name": "ORS Sachet", "batch": "OR-1", "sale_rate": 10.0, "stock": 2.0, "category": "Other",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatal("seed medicine failed")
	}
	var med domain.Medicine
	raw, _ := json.Marshal(fields)
	if err := json.Unmarshal(raw, &med); err != nil {
		t.Fatal(err)
	}

	resp, _ = request(t, srv, http.MethodPost, "/billing/invoices", token, map[string]any{
		"customer_name": "Walk-in",
		"items":         []map[string]any{{"medicine_id": med.ID, "quantity": 5.0}},
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("overdraw status = %d, want 409", resp.StatusCode)
	}
}

func TestInvoiceRejectsExpiredMedicine(t *testing.T) {
	srv := newTestServer(t)
	token := registerOwner(t, srv)

	resp, fields := request(t, srv, http.MethodPost, "/medicines", token, map[string]any{
		"name": "Old Syrup", "batch": "OS-1", "expiry": "01/20", "sale_rate": 50.0, "stock": 5.0, "category": "Syrup",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatal("seed medicine failed")
	}
	var med domain.Medicine
	raw, _ := json.Marshal(fields)
	if err := json.Unmarshal(raw, &med); err != nil {
		t.Fatal(err)
	}

	resp, _ = request(t, srv, http.MethodPost, "/billing/invoices", token, map[string]any{
		"customer_name": "Walk-in",
		"items":         []map[string]any{{"medicine_id": med.ID, "quantity": 1.0}},
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expired sale status = %d, want 409", resp.StatusCode)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	token := registerOwner(t, srv)

	resp, _ := request(t, srv, http.MethodPut, "/settings", token, map[string]string{
		"pharmacyName": "City Pharmacy", "phone": "061-522333",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put settings status = %d", resp.StatusCode)
	}

	resp, fields := request(t, srv, http.MethodGet, "/settings", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get settings status = %d", resp.StatusCode)
	}
	var name string
	if err := json.Unmarshal(fields["pharmacyName"], &name); err != nil || name != "City Pharmacy" {
		t.Errorf("pharmacyName = %q, %v", name, err)
	}
}
