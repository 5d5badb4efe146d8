package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/savegress/fraudsight/internal/cases"
	"github.com/savegress/fraudsight/internal/config"
	"github.com/savegress/fraudsight/internal/dashboard"
	"github.com/savegress/fraudsight/internal/ingest"
	"github.com/savegress/fraudsight/internal/kv"
	"github.com/savegress/fraudsight/internal/scheduler"
	"github.com/savegress/fraudsight/internal/simulator"
	"github.com/savegress/fraudsight/pkg/models"
)

const maxUploadBytes = 32 << 20

// Handlers contains all HTTP handlers
type Handlers struct {
	config     *config.Config
	controller *dashboard.Controller
	cases      *cases.Manager
	store      kv.Store
	hub        *Hub
	debounce   *scheduler.Debouncer
}

// NewHandlers creates new handlers
func NewHandlers(cfg *config.Config, controller *dashboard.Controller, caseMgr *cases.Manager, store kv.Store, hub *Hub, debounce *scheduler.Debouncer) *Handlers {
	return &Handlers{
		config:     cfg,
		controller: controller,
		cases:      caseMgr,
		store:      store,
		hub:        hub,
		debounce:   debounce,
	}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "fraudsight",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Upload ingests a transaction CSV plus optional profile fields and
// loads the dashboard.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	result, err := ingest.Parse(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile := models.UserProfile{
		Name:      r.FormValue("name"),
		Age:       r.FormValue("age"),
		SheetType: r.FormValue("sheet_type"),
	}
	h.controller.Load(result.Transactions, profile)

	respond(w, http.StatusOK, map[string]interface{}{
		"loaded":  len(result.Transactions),
		"dropped": result.Dropped,
	})
}

// GetDashboard returns the full dashboard payload
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.controller.Dashboard())
}

// SetThreshold applies a new risk threshold after the debounce period
func (h *Handlers) SetThreshold(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Threshold float64 `json:"threshold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	value := req.Threshold
	h.debounce.Trigger(func() {
		h.controller.SetThreshold(value)
	})

	respond(w, http.StatusAccepted, map[string]interface{}{
		"threshold": value,
		"status":    "scheduled",
	})
}

// SetTimeRange applies a new time-range filter after the debounce period
func (h *Handlers) SetTimeRange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TimeRange string `json:"time_range"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	timeRange := models.TimeRange(req.TimeRange)
	if !timeRange.Valid() {
		respondError(w, http.StatusBadRequest, "Invalid time range")
		return
	}

	h.debounce.Trigger(func() {
		if err := h.controller.SetTimeRange(timeRange); err != nil {
			log.Printf("Failed to apply time range %s: %v", timeRange, err)
		}
	})

	respond(w, http.StatusAccepted, map[string]interface{}{
		"time_range": timeRange,
		"status":     "scheduled",
	})
}

// QueryTransactions queries the general transaction table
func (h *Handlers) QueryTransactions(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.controller.QueryTransactions(tableQuery(r)))
}

// QueryReview queries the fraud review queue
func (h *Handlers) QueryReview(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.controller.QueryReview(tableQuery(r)))
}

func tableQuery(r *http.Request) dashboard.TableQuery {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	return dashboard.TableQuery{
		Page:     page,
		Sort:     q.Get("sort"),
		Desc:     q.Get("dir") == "desc",
		Search:   q.Get("q"),
		Category: q.Get("category"),
	}
}

// Simulate reports the flag count at a hypothetical threshold
func (h *Handlers) Simulate(w http.ResponseWriter, r *http.Request) {
	threshold := h.controller.Threshold()
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid threshold")
			return
		}
		threshold = parsed
	}

	respond(w, http.StatusOK, simulator.Simulate(h.controller.Filtered(), threshold))
}

// Counterfactual reports how many flags survive hypothetical mitigations
func (h *Handlers) Counterfactual(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Threshold           *float64 `json:"threshold"`
		IgnoreCountryChange bool     `json:"ignore_country_change"`
		ReduceAmount        bool     `json:"reduce_amount"`
		AmountFraction      float64  `json:"amount_fraction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	threshold := h.controller.Threshold()
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	result := simulator.Counterfactual(h.controller.Filtered(), h.controller.Snapshot(), threshold, simulator.CounterfactualOptions{
		IgnoreCountryChange: req.IgnoreCountryChange,
		ReduceAmount:        req.ReduceAmount,
		AmountFraction:      req.AmountFraction,
	})
	respond(w, http.StatusOK, result)
}

// CompareUsers summarizes two users side by side
func (h *Handlers) CompareUsers(w http.ResponseWriter, r *http.Request) {
	left := r.URL.Query().Get("left")
	right := r.URL.Query().Get("right")
	if left == "" || right == "" {
		respondError(w, http.StatusBadRequest, "Both left and right user IDs are required")
		return
	}

	respond(w, http.StatusOK, h.controller.Compare(left, right))
}

// GetHeatmap returns the category-by-country risk heatmap
func (h *Handlers) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.controller.Heatmap())
}

// GetDrivers explains one transaction's risk
func (h *Handlers) GetDrivers(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	drivers, err := h.controller.Drivers(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{
		"transaction_id": id,
		"drivers":        drivers,
	})
}

// ListCases lists all analyst cases
func (h *Handlers) ListCases(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.cases.List())
}

// CreateCase escalates a transaction into a review case
func (h *Handlers) CreateCase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TransactionID string `json:"transaction_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TransactionID == "" {
		respondError(w, http.StatusBadRequest, "transaction_id is required")
		return
	}

	txn, err := h.controller.Transaction(req.TransactionID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	c, err := h.cases.Open(r.Context(), txn)
	if errors.Is(err, cases.ErrDuplicateCase) {
		// A duplicate escalation is a notice, not a failure.
		respond(w, http.StatusConflict, map[string]string{
			"notice": "A case already exists for this transaction",
		})
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respond(w, http.StatusCreated, c)
}

// UpdateCaseStatus advances a case through the review workflow
func (h *Handlers) UpdateCaseStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.cases.UpdateStatus(r.Context(), id, models.CaseStatus(req.Status))
	if errors.Is(err, cases.ErrInvalidStatus) {
		respondError(w, http.StatusBadRequest, "Invalid case status")
		return
	}
	if errors.Is(err, cases.ErrCaseNotFound) {
		log.Printf("Status update for unknown case %s ignored", id)
		respondError(w, http.StatusNotFound, "Case not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respond(w, http.StatusOK, c)
}

// ClearCases removes every case
func (h *Handlers) ClearCases(w http.ResponseWriter, r *http.Request) {
	if err := h.cases.ClearAll(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTheme returns the persisted theme preference
func (h *Handlers) GetTheme(w http.ResponseWriter, r *http.Request) {
	theme := "light"
	if value, ok, err := h.store.Get(r.Context(), kv.KeyTheme); err == nil && ok {
		theme = string(value)
	}
	respond(w, http.StatusOK, map[string]string{"theme": theme})
}

// SetTheme persists the theme preference
func (h *Handlers) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Theme != "light" && req.Theme != "dark" {
		respondError(w, http.StatusBadRequest, "Theme must be light or dark")
		return
	}

	if err := h.store.Set(r.Context(), kv.KeyTheme, []byte(req.Theme)); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, map[string]string{"theme": req.Theme})
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]string{"error": message})
}
