package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"till/internal/service/pos/application"
	"till/internal/service/pos/domain"
)

// PosHandler exposes the engine's operations over HTTP. The handlers are
// thin: decode, call the application layer, map errors.
type PosHandler struct {
	catalog    *application.CatalogService
	sales      *application.SaleService
	settlement *application.SettlementService
	reports    *application.ReportingService
}

func NewPosHandler(
	catalog *application.CatalogService,
	sales *application.SaleService,
	settlement *application.SettlementService,
	reports *application.ReportingService,
) *PosHandler {
	return &PosHandler{catalog: catalog, sales: sales, settlement: settlement, reports: reports}
}

// RegisterRoutes registers all routes on the ServeMux.
func (h *PosHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("POST /products", h.addProduct)
	mux.HandleFunc("GET /products", h.listProducts)
	mux.HandleFunc("GET /products/{id}", h.getProduct)
	mux.HandleFunc("DELETE /products/{id}", h.deleteProduct)
	mux.HandleFunc("POST /products/{id}/restock", h.restock)
	mux.HandleFunc("GET /products/{id}/available", h.available)

	mux.HandleFunc("POST /sales", h.openSale)
	mux.HandleFunc("POST /sales/{id}/items", h.addItem)
	mux.HandleFunc("DELETE /sales/{id}/items", h.removeItem)
	mux.HandleFunc("GET /sales/{id}/total", h.saleTotal)
	mux.HandleFunc("POST /sales/{id}/abort", h.abortSale)
	mux.HandleFunc("POST /sales/{id}/settle", h.settle)

	mux.HandleFunc("GET /history", h.history)
	mux.HandleFunc("GET /reports/daily", h.dailyTotals)
	mux.HandleFunc("GET /reports/inventory", h.inventoryReport)
}

type productRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	UnitPrice  string `json:"unit_price"`
	InitialQty int64  `json:"initial_qty"`
}

type productResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	OnHand    int64  `json:"on_hand"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{ID: p.ID, Name: p.Name, UnitPrice: p.UnitPrice.String(), OnHand: p.OnHand}
}

func (h *PosHandler) addProduct(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}
	price, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "unit_price must be a decimal string")
		return
	}
	product, err := h.catalog.AddProduct(ctx, application.CreateProductInput{
		ID:         req.ID,
		Name:       req.Name,
		UnitPrice:  price,
		InitialQty: req.InitialQty,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

func (h *PosHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	products := h.catalog.ListProducts(ctx)
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *PosHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	product, err := h.catalog.GetProduct(ctx, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *PosHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	if err := h.catalog.DeleteProduct(ctx, r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type restockRequest struct {
	Delta int64 `json:"delta"`
}

func (h *PosHandler) restock(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	var req restockRequest
	if !decodeBody(w, r, &req) {
		return
	}
	product, err := h.catalog.Restock(ctx, r.PathValue("id"), req.Delta)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *PosHandler) available(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	available, err := h.catalog.AvailableQuantity(ctx, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"available": available})
}

func (h *PosHandler) openSale(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	sale, err := h.sales.Open(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"sale_id": sale.ID})
}

type itemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

func (h *PosHandler) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	var req itemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.sales.AddItem(ctx, r.PathValue("id"), req.ProductID, req.Quantity); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PosHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	var req itemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.sales.RemoveItem(ctx, r.PathValue("id"), req.ProductID, req.Quantity); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PosHandler) saleTotal(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	total, err := h.sales.Total(ctx, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"total": total.String()})
}

func (h *PosHandler) abortSale(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	if err := h.sales.Abort(ctx, r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type settleRequest struct {
	PaymentAmount string `json:"payment_amount"`
}

type settleResponse struct {
	RecordID string `json:"record_id"`
	Total    string `json:"total"`
	Change   string `json:"change"`
}

func (h *PosHandler) settle(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	started := time.Now()
	var req settleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	payment, err := decimal.NewFromString(req.PaymentAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "payment_amount must be a decimal string")
		return
	}
	result, err := h.settlement.Settle(ctx, r.PathValue("id"), payment)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	settlementsTotal.Inc()
	settlementDuration.Observe(time.Since(started).Seconds())
	writeJSON(w, http.StatusOK, settleResponse{
		RecordID: result.RecordID,
		Total:    result.Total.String(),
		Change:   result.Change.String(),
	})
}

type recordResponse struct {
	RecordID      string         `json:"record_id"`
	SaleID        string         `json:"sale_id"`
	Lines         []lineResponse `json:"lines"`
	Total         string         `json:"total"`
	PaymentAmount string         `json:"payment_amount"`
	Change        string         `json:"change"`
	SettledAt     time.Time      `json:"settled_at"`
}

type lineResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

func (h *PosHandler) history(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	records := h.reports.ListHistory(ctx)
	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		lines := make([]lineResponse, 0, len(rec.Lines))
		for _, line := range rec.Lines {
			lines = append(lines, lineResponse{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice.String(),
			})
		}
		out = append(out, recordResponse{
			RecordID:      rec.ID,
			SaleID:        rec.SaleID,
			Lines:         lines,
			Total:         rec.Total.String(),
			PaymentAmount: rec.PaymentAmount.String(),
			Change:        rec.Change.String(),
			SettledAt:     rec.SettledAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *PosHandler) dailyTotals(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	totals := h.reports.DailyTotals(ctx)
	out := make(map[string]string, len(totals))
	for day, total := range totals {
		out[day] = total.String()
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *PosHandler) inventoryReport(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	products := h.reports.InventorySnapshot(ctx)
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// extract pulls the propagated trace context out of the request headers.
func extract(r *http.Request) context.Context {
	propagator := otel.GetTextMapPropagator()
	return propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
