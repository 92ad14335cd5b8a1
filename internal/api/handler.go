package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"medibill/m/domain"
	"medibill/m/internal/billing"
	"medibill/m/internal/expiry"
	"medibill/m/internal/store"
)

type ctxKey string

const ctxUserID ctxKey = "userID"

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	store  *store.Store
	secret string
}

// New constructs a Handler.
func New(st *store.Store, secret string) *Handler {
	return &Handler{store: st, secret: secret}
}

// Router wires up the local HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Group(func(protected chi.Router) {
			protected.Use(h.authMiddleware)
			protected.Post("/reset-password", h.resetPassword)
		})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/medicines", func(r chi.Router) {
			r.Post("/", h.createMedicine)
			r.Get("/", h.listMedicines)
			r.Get("/{id}", h.getMedicine)
			r.Put("/{id}", h.updateMedicine)
			r.Delete("/{id}", h.deleteMedicine)
		})

		pr.Route("/billing", func(r chi.Router) {
			r.Get("/next-number", h.nextInvoiceNumber)
			r.Post("/invoices", h.createInvoice)
			r.Get("/invoices", h.listInvoices)
			r.Get("/invoices/{invoiceNo}", h.getInvoice)
		})

		pr.Route("/settings", func(r chi.Router) {
			r.Get("/", h.getSettings)
			r.Put("/", h.putSettings)
		})

		pr.Route("/reports", func(r chi.Router) {
			r.Get("/sales", h.salesReport)
			r.Get("/stock", h.stockReport)
			r.Get("/dashboard", h.dashboard)
		})

		pr.Get("/inventory/alerts", h.inventoryAlerts)
		pr.Get("/stock-transactions", h.stockTransactions)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Authentication

type authClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

func (h *Handler) generateToken(userID int64) (string, error) {
	claims := authClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.secret))
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokenString := strings.TrimSpace(header[len("Bearer "):])
		token, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(h.secret), nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		claims, ok := token.Claims.(*authClaims)
		if !ok {
			respondError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// register creates the owner account. The tracker is single-user: once an
// account exists, registration is closed.
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	count, err := h.store.CountUsers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to check accounts")
		return
	}
	if count > 0 {
		respondError(w, http.StatusForbidden, "owner account already exists")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to secure password")
		return
	}

	email := strings.ToLower(req.Email)
	userID, err := h.store.CreateUser(r.Context(), req.Username, email, string(hashed))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create account")
		return
	}

	token, err := h.generateToken(userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}
	respondJSON(w, http.StatusCreated, authResponse{Token: token, User: domain.User{ID: userID, Username: req.Username, Email: email}})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.store.UserByEmail(r.Context(), strings.ToLower(req.Email))
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.generateToken(user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}
	user.Password = ""
	respondJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		NewPassword string `json:"new_password"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "new_password is required")
		return
	}
	uid := r.Context().Value(ctxUserID).(int64)
	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to secure password")
		return
	}
	if err := h.store.UpdateUserPassword(r.Context(), uid, string(hashed)); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update password")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

// Medicines

type medicineRequest struct {
	Name         string  `json:"name"`
	Packing      string  `json:"packing"`
	Batch        string  `json:"batch"`
	Expiry       string  `json:"expiry"`
	MRP          float64 `json:"mrp"`
	PurchaseRate float64 `json:"purchase_rate"`
	SaleRate     float64 `json:"sale_rate"`
	Stock        float64 `json:"stock"`
	Discount     float64 `json:"discount"`
	Category     string  `json:"category"`
	Supplier     string  `json:"supplier"`
	MinStock     float64 `json:"min_stock"`
}

func (req *medicineRequest) validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return errors.New("name is required")
	}
	if req.Category == "" {
		req.Category = "Other"
	}
	if !domain.ValidCategory(req.Category) {
		return fmt.Errorf("unknown category %q", req.Category)
	}
	if req.MRP < 0 || req.PurchaseRate < 0 || req.SaleRate < 0 || req.Stock < 0 {
		return errors.New("prices and stock cannot be negative")
	}
	if req.MinStock <= 0 {
		req.MinStock = domain.DefaultMinStock
	}
	if req.Expiry != "" {
		if _, err := expiry.Parse(req.Expiry); err != nil {
			return err
		}
	}
	return nil
}

func (req *medicineRequest) medicine() domain.Medicine {
	return domain.Medicine{
		Name:         strings.TrimSpace(req.Name),
		Packing:      req.Packing,
		Batch:        req.Batch,
		Expiry:       strings.TrimSpace(req.Expiry),
		MRP:          req.MRP,
		PurchaseRate: req.PurchaseRate,
		SaleRate:     req.SaleRate,
		Stock:        req.Stock,
		Discount:     req.Discount,
		Category:     req.Category,
		Supplier:     req.Supplier,
		MinStock:     req.MinStock,
	}
}

func (h *Handler) createMedicine(w http.ResponseWriter, r *http.Request) {
	var req medicineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	med := req.medicine()
	if err := h.store.AddMedicine(r.Context(), &med); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to save medicine")
		return
	}
	respondJSON(w, http.StatusCreated, med)
}

func (h *Handler) listMedicines(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	var (
		meds []domain.Medicine
		err  error
	)
	if query == "" {
		meds, err = h.store.ListMedicines(r.Context())
	} else {
		meds, err = h.store.SearchMedicines(r.Context(), query)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list medicines")
		return
	}
	respondJSON(w, http.StatusOK, meds)
}

func (h *Handler) getMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	med, err := h.store.Medicine(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "medicine not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load medicine")
		return
	}
	respondJSON(w, http.StatusOK, med)
}

func (h *Handler) updateMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	var req medicineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	med := req.medicine()
	med.ID = id
	if err := h.store.UpdateMedicine(r.Context(), med); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "medicine not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to update medicine")
		return
	}
	respondJSON(w, http.StatusOK, med)
}

func (h *Handler) deleteMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	if err := h.store.DeleteMedicine(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "medicine not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to delete medicine")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Billing

type invoiceItemRequest struct {
	MedicineID  int64   `json:"medicine_id"`
	Quantity    float64 `json:"quantity"`
	QtyDiscount float64 `json:"qty_discount"`
	Rate        float64 `json:"rate"`
	Remarks     string  `json:"remarks"`
}

type invoiceRequest struct {
	CustomerName    string               `json:"customer_name"`
	CustomerAddress string               `json:"customer_address"`
	CustomerPhone   string               `json:"customer_phone"`
	CustomerPAN     string               `json:"customer_pan"`
	PaymentMode     string               `json:"payment_mode"`
	Date            string               `json:"date"`
	Miti            string               `json:"miti"`
	Remarks         string               `json:"remarks"`
	Discount        float64              `json:"discount"`
	CCOnFree        float64              `json:"cc_on_free"`
	Items           []invoiceItemRequest `json:"items"`
}

func (h *Handler) nextInvoiceNumber(w http.ResponseWriter, r *http.Request) {
	no, err := h.store.NextInvoiceNumber(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to derive invoice number")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"invoice_no": no})
}

// createInvoice drafts an invoice from the request, validates it against
// current stock and commits it: one transaction covering the invoice insert,
// the stock decrements and the audit trail.
func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	now := time.Now()

	no, err := h.store.NextInvoiceNumber(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to derive invoice number")
		return
	}

	b := billing.NewBuilder(no, now)
	for i, item := range req.Items {
		med, err := h.store.Medicine(ctx, item.MedicineID)
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, fmt.Sprintf("medicine %d not found", item.MedicineID))
			return
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to load medicine")
			return
		}
		if expired, err := expiry.IsExpired(med.Expiry, now); err == nil && expired {
			respondError(w, http.StatusConflict, fmt.Sprintf("%s (batch %s) is expired", med.Name, med.Batch))
			return
		}

		if err := b.AddItem(med); err != nil {
			respondBillingError(w, err)
			return
		}
		if item.Quantity <= 0 {
			respondError(w, http.StatusBadRequest, "quantity must be positive for each item")
			return
		}
		if err := b.SetQuantity(i, item.Quantity); err != nil {
			respondBillingError(w, err)
			return
		}
		if item.QtyDiscount != 0 {
			if err := b.SetQtyDiscount(i, item.QtyDiscount); err != nil {
				respondBillingError(w, err)
				return
			}
		}
		if item.Rate > 0 {
			if err := b.SetRate(i, item.Rate); err != nil {
				respondBillingError(w, err)
				return
			}
		}
		if item.Remarks != "" {
			if err := b.SetItemRemarks(i, item.Remarks); err != nil {
				respondBillingError(w, err)
				return
			}
		}
	}

	b.SetCustomer(req.CustomerName, req.CustomerAddress, req.CustomerPhone, req.CustomerPAN)
	if req.PaymentMode != "" {
		if err := b.SetPaymentMode(req.PaymentMode); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	b.SetDiscount(req.Discount)
	b.SetCCOnFree(req.CCOnFree)
	b.SetRemarks(req.Remarks)
	b.SetMiti(req.Miti)
	if req.Date != "" {
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			respondError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
			return
		}
		b.SetDate(req.Date)
	}

	inv, err := b.Commit(ctx, h.store, now)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrEmptyInvoice), errors.Is(err, billing.ErrMissingCustomer):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, billing.ErrInsufficientStock):
			respondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, store.ErrNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		default:
			log.Printf("invoice commit failed: %v", err)
			respondError(w, http.StatusInternalServerError, "unable to save invoice")
		}
		return
	}
	respondJSON(w, http.StatusCreated, inv)
}

func respondBillingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, billing.ErrDuplicateItem), errors.Is(err, billing.ErrInsufficientStock):
		respondError(w, http.StatusConflict, err.Error())
	default:
		respondError(w, http.StatusBadRequest, err.Error())
	}
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}
	invoices, err := h.store.InvoicesBetween(r.Context(), start, end)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list invoices")
		return
	}
	respondJSON(w, http.StatusOK, invoices)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceNo := chi.URLParam(r, "invoiceNo")
	inv, err := h.store.InvoiceByNumber(r.Context(), invoiceNo)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "invoice not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load invoice")
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

// Settings

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Settings(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load settings")
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

func (h *Handler) putSettings(w http.ResponseWriter, r *http.Request) {
	var settings map[string]string
	if err := decodeJSON(r, &settings); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	for key, value := range settings {
		if strings.TrimSpace(key) == "" {
			respondError(w, http.StatusBadRequest, "setting keys cannot be empty")
			return
		}
		if err := h.store.PutSetting(r.Context(), key, value); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to save settings")
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// Reports

func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	start, end, ok := reportPeriod(w, r)
	if !ok {
		return
	}

	rows, err := h.store.SalesReport(r.Context(), start, end)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build sales report")
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		records := make([][]string, 0, len(rows))
		for _, row := range rows {
			records = append(records, []string{
				row.InvoiceNo, row.Date, row.CustomerName, row.PaymentMode,
				formatAmount(row.Total), formatAmount(row.Discount), formatAmount(row.NetAmount),
			})
		}
		respondCSV(w, "sales_report",
			[]string{"invoice_no", "date", "customer", "payment_mode", "total", "discount", "net_amount"}, records)
		return
	}

	summary, err := h.store.SalesSummary(r.Context(), start, end)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build sales summary")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"summary": summary, "rows": rows})
}

func (h *Handler) stockReport(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.StockReport(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build stock report")
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		records := make([][]string, 0, len(rows))
		for _, row := range rows {
			records = append(records, []string{
				row.Name, row.Batch, row.Expiry, row.Category, row.Supplier,
				formatAmount(row.Stock), formatAmount(row.PurchaseRate), formatAmount(row.Value),
			})
		}
		respondCSV(w, "stock_report",
			[]string{"name", "batch", "expiry", "category", "supplier", "stock", "purchase_rate", "value"}, records)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.DashboardStats(r.Context(), time.Now())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to compute dashboard")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// inventoryAlerts classifies the whole inventory into expired, expiring-soon
// (30 days) and low-stock buckets.
func (h *Handler) inventoryAlerts(w http.ResponseWriter, r *http.Request) {
	meds, err := h.store.ListMedicines(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load inventory")
		return
	}

	now := time.Now()
	alerts := struct {
		Expired      []domain.Medicine `json:"expired"`
		ExpiringSoon []domain.Medicine `json:"expiring_soon"`
		LowStock     []domain.Medicine `json:"low_stock"`
	}{
		Expired:      []domain.Medicine{},
		ExpiringSoon: []domain.Medicine{},
		LowStock:     []domain.Medicine{},
	}
	for _, med := range meds {
		expired, err := expiry.IsExpired(med.Expiry, now)
		if err != nil {
			log.Printf("medicine %d has malformed expiry %q", med.ID, med.Expiry)
		} else if expired {
			alerts.Expired = append(alerts.Expired, med)
		} else if near, _ := expiry.IsNearExpiry(med.Expiry, expiry.UrgentHorizonDays, now); near {
			alerts.ExpiringSoon = append(alerts.ExpiringSoon, med)
		}
		if med.LowOnStock() {
			alerts.LowStock = append(alerts.LowStock, med)
		}
	}
	respondJSON(w, http.StatusOK, alerts)
}

func (h *Handler) stockTransactions(w http.ResponseWriter, r *http.Request) {
	var medicineID int64
	if raw := r.URL.Query().Get("medicine_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondError(w, http.StatusBadRequest, "invalid medicine_id")
			return
		}
		medicineID = id
	}
	txs, err := h.store.StockTransactions(r.Context(), medicineID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list stock transactions")
		return
	}
	respondJSON(w, http.StatusOK, txs)
}

// Helpers

// reportPeriod resolves the period query parameter (today, month or custom
// start/end dates) into an inclusive date range.
func reportPeriod(w http.ResponseWriter, r *http.Request) (start, end string, ok bool) {
	today := time.Now().Format("2006-01-02")
	switch period := r.URL.Query().Get("period"); period {
	case "", "today":
		return today, today, true
	case "month":
		now := time.Now()
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return first.Format("2006-01-02"), today, true
	case "custom":
		return dateRange(w, r)
	default:
		respondError(w, http.StatusBadRequest, "period must be today, month or custom")
		return "", "", false
	}
}

func dateRange(w http.ResponseWriter, r *http.Request) (start, end string, ok bool) {
	start = strings.TrimSpace(r.URL.Query().Get("start"))
	end = strings.TrimSpace(r.URL.Query().Get("end"))
	for _, value := range []string{start, end} {
		if value == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", value); err != nil {
			respondError(w, http.StatusBadRequest, "dates must be in YYYY-MM-DD format")
			return "", "", false
		}
	}
	return start, end, true
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondCSV(w http.ResponseWriter, name string, headers []string, records [][]string) {
	filename := fmt.Sprintf("%s_%s.csv", name, time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	writer := csv.NewWriter(w)
	_ = writer.Write(headers)
	for _, record := range records {
		_ = writer.Write(record)
	}
	writer.Flush()
}
