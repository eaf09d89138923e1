package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/mgarrido/wms/internal/core/domain"
	"github.com/mgarrido/wms/internal/core/service"
)

type HTTPHandler struct {
	movements *service.MovementService
	slots     *service.SlotService
	inventory *service.InventoryService
	catalog   *service.CatalogService
	reporting *service.ReportingService
}

func NewHTTPHandler(
	movements *service.MovementService,
	slots *service.SlotService,
	inventory *service.InventoryService,
	catalog *service.CatalogService,
	reporting *service.ReportingService,
) *HTTPHandler {
	return &HTTPHandler{
		movements: movements,
		slots:     slots,
		inventory: inventory,
		catalog:   catalog,
		reporting: reporting,
	}
}

func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HealthCheck)
	r.Route("/api", func(r chi.Router) {
		r.Post("/movements", h.SubmitMovement)
		r.Get("/slots", h.ListSlots)
		r.Get("/slots/free", h.ListFreeSlots)
		r.Get("/slots/occupied", h.ListOccupiedSlots)
		r.Get("/slots/{positionID}", h.GetSlot)
		r.Get("/stock", h.AllStock)
		r.Get("/stock/{sku}", h.CurrentStock)
		r.Get("/products", h.ListProducts)
		r.Post("/products", h.RegisterProduct)
		r.Get("/dashboard-stats", h.DashboardStats)
		r.Get("/recent-moves", h.RecentMovements)
	})
	return r
}

type MovementHTTPRequest struct {
	RequestID  string `json:"request_id"`
	Kind       string `json:"kind"`
	SKU        string `json:"sku"`
	PositionID string `json:"position_id"`
	Quantity   int    `json:"quantity"`
}

type MovementHTTPResponse struct {
	Success    bool   `json:"success"`
	MovementID int64  `json:"movement_id,omitempty"`
	Message    string `json:"message"`
}

type ProductHTTPRequest struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type productResponse struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type slotResponse struct {
	PositionID string `json:"position_id"`
	Occupied   bool   `json:"occupied"`
	SKU        string `json:"sku,omitempty"`
}

type movementResponse struct {
	ID          int64  `json:"id"`
	Timestamp   string `json:"timestamp"`
	Kind        string `json:"kind"`
	SKU         string `json:"sku"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
	PositionID  string `json:"position_id"`
}

func (h *HTTPHandler) SubmitMovement(w http.ResponseWriter, r *http.Request) {
	var req MovementHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, MovementHTTPResponse{
			Success: false,
			Message: "invalid request body",
		})
		return
	}

	id, err := h.movements.Submit(r.Context(), service.SubmitRequest{
		RequestID:  req.RequestID,
		Kind:       domain.MovementKind(req.Kind),
		SKU:        req.SKU,
		PositionID: req.PositionID,
		Quantity:   req.Quantity,
	})
	if err != nil {
		writeJSON(w, statusFor(err), MovementHTTPResponse{
			Success: false,
			Message: messageFor(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, MovementHTTPResponse{
		Success:    true,
		MovementID: id,
		Message:    "movement registered",
	})
}

func (h *HTTPHandler) GetSlot(w http.ResponseWriter, r *http.Request) {
	slot, err := h.slots.Get(r.Context(), chi.URLParam(r, "positionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSlotResponse(slot))
}

func (h *HTTPHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.slots.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]slotResponse, 0, len(slots))
	for _, s := range slots {
		resp = append(resp, toSlotResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) ListFreeSlots(w http.ResponseWriter, r *http.Request) {
	ids, err := h.slots.ListFree(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(ids))
}

func (h *HTTPHandler) ListOccupiedSlots(w http.ResponseWriter, r *http.Request) {
	sku := r.URL.Query().Get("sku")
	if sku == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sku query parameter required"})
		return
	}

	ids, err := h.slots.ListOccupiedBy(r.Context(), sku)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(ids))
}

func (h *HTTPHandler) CurrentStock(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	level, err := h.inventory.CurrentStock(r.Context(), sku)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sku": sku, "stock": level})
}

func (h *HTTPHandler) AllStock(w http.ResponseWriter, r *http.Request) {
	levels, err := h.inventory.AllStock(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, levels)
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, productResponse{SKU: p.SKU, Name: p.Name, Category: p.Category})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) RegisterProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	err := h.catalog.Register(r.Context(), domain.Product{
		SKU:      req.SKU,
		Name:     req.Name,
		Category: req.Category,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"sku": req.SKU})
}

type statsResponse struct {
	domain.WarehouseStats
	OccupancyRate string `json:"occupancy_rate"`
}

func (h *HTTPHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reporting.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		WarehouseStats: stats,
		OccupancyRate:  fmt.Sprintf("%.1f%%", stats.OccupancyRate()*100),
	})
}

func (h *HTTPHandler) RecentMovements(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	movements, err := h.reporting.RecentMovements(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]movementResponse, 0, len(movements))
	for _, m := range movements {
		resp = append(resp, movementResponse{
			ID:          m.ID,
			Timestamp:   m.Timestamp.Format("2006-01-02 15:04:05"),
			Kind:        string(m.Kind),
			SKU:         m.SKU,
			ProductName: m.ProductName,
			Quantity:    m.Quantity,
			PositionID:  m.PositionID,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps the rejection taxonomy onto HTTP statuses: input
// errors are the caller's to fix (400), state conflicts mean a stale
// view of the warehouse (409), anything else is a retryable persistence
// failure (503).
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrDuplicateRequest), errors.Is(err, domain.ErrDuplicateSKU):
		return http.StatusConflict
	case domain.IsInputError(err):
		return http.StatusBadRequest
	case domain.IsStateConflict(err):
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

func messageFor(err error) string {
	if domain.IsRejection(err) {
		return err.Error()
	}
	return "storage failure, retry later"
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": messageFor(err)})
}

func toSlotResponse(s domain.Slot) slotResponse {
	return slotResponse{
		PositionID: s.PositionID,
		Occupied:   s.Status == domain.SlotOccupied,
		SKU:        s.OccupantSKU,
	}
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
