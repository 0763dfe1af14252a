package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mbaxter/cashflow-service/internal/forecast"
	"github.com/mbaxter/cashflow-service/internal/models"
	"github.com/mbaxter/cashflow-service/internal/service"
)

// Handler exposes the service over HTTP. Identity is supplied by an external
// collaborator as an opaque household id; this layer never authenticates.
type Handler struct {
	svc *service.Service
}

// NewHandler creates the HTTP handler set
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

const householdHeader = "X-Household-ID"

func householdID(r *http.Request) string {
	if id := r.Header.Get(householdHeader); id != "" {
		return id
	}
	return r.URL.Query().Get("household")
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// withHousehold rejects requests that carry no household id.
func (h *Handler) withHousehold(r *http.Request, w http.ResponseWriter) (string, bool) {
	id := householdID(r)
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing household id")
		return "", false
	}
	return id, true
}

func daysParam(r *http.Request) int {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil {
		return 0
	}
	return days
}

// GetState returns the household's persisted state
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withHousehold(r, w)
	if !ok {
		return
	}
	state, err := h.svc.State(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// PutState applies a partial state update
func (h *Handler) PutState(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withHousehold(r, w)
	if !ok {
		return
	}
	var payload models.StatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	state, err := h.svc.UpdateState(id, payload)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// GetForecast runs the household's cash-flow simulation
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withHousehold(r, w)
	if !ok {
		return
	}
	res, err := h.svc.Forecast(id, daysParam(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, res)
}

type simulateRequest struct {
	Bills         []models.EntryPayload `json:"bills"`
	Income        []models.EntryPayload `json:"income"`
	Policy        models.PolicyPayload  `json:"ccPolicy"`
	DebitBalance  decimal.Decimal       `json:"debitBalance"`
	CreditBalance decimal.Decimal       `json:"creditBalance"`
	StartDate     models.Date           `json:"startDate"`
	HorizonDays   int                   `json:"horizonDays"`
}

// Simulate runs a stateless simulation for caller-supplied inputs
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	bills, err := payloadEntries(req.Bills)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	income, err := payloadEntries(req.Income)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	res := h.svc.Simulate(forecast.SimulationInput{
		Bills:         bills,
		Income:        income,
		Policy:        req.Policy.ToPolicy(),
		DebitBalance:  req.DebitBalance,
		CreditBalance: req.CreditBalance,
		Start:         req.StartDate,
		HorizonDays:   req.HorizonDays,
	})
	respondJSON(w, http.StatusOK, res)
}

func payloadEntries(payloads []models.EntryPayload) ([]models.RecurringEntry, error) {
	entries := make([]models.RecurringEntry, 0, len(payloads))
	for _, p := range payloads {
		e, err := p.ToEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

type projectRequest struct {
	DebitSeries []models.BalancePoint `json:"debitSeries"`
	Floor       *decimal.Decimal      `json:"floor"`
	AnnualPct   *decimal.Decimal      `json:"annualReturnPct"`
}

// Project runs the investment projection over a caller-supplied series
func (h *Handler) Project(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.svc.Project(req.DebitSeries, req.Floor, req.AnnualPct))
}

// GetSafeToSpend returns the guardrail scalar
func (h *Handler) GetSafeToSpend(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withHousehold(r, w)
	if !ok {
		return
	}
	amount, days, err := h.svc.SafeToSpend(id, daysParam(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"safe_to_spend": amount, "days": days})
}

// GetBillWindows returns the billing-cycle explain view
func (h *Handler) GetBillWindows(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withHousehold(r, w)
	if !ok {
		return
	}
	report, err := h.svc.BillWindows(id, daysParam(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// GetCashFlow returns the paid-aware forecast overlay
func (h *Handler) GetCashFlow(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withHousehold(r, w)
	if !ok {
		return
	}
	adj, err := h.svc.CashFlow(id, daysParam(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, adj)
}

// GetChecklist returns the keyed upcoming-event list with paid flags
func (h *Handler) GetChecklist(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withHousehold(r, w)
	if !ok {
		return
	}
	items, err := h.svc.Checklist(id, daysParam(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, items)
}

type markRequest struct {
	Key  string `json:"key"`
	Paid *bool  `json:"paid"`
}

// MarkChecklist persists one paid-event marker
func (h *Handler) MarkChecklist(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withHousehold(r, w)
	if !ok {
		return
	}
	var req markRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	paid := true
	if req.Paid != nil {
		paid = *req.Paid
	}
	if err := h.svc.MarkPaid(id, req.Key, paid); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// GetInvestmentOutlook projects the household's own forecast
func (h *Handler) GetInvestmentOutlook(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withHousehold(r, w)
	if !ok {
		return
	}
	projection, err := h.svc.InvestmentOutlook(id, daysParam(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, projection)
}

// GetSuggestions proposes recurring entries from transaction history
func (h *Handler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withHousehold(r, w)
	if !ok {
		return
	}
	suggestions, err := h.svc.Suggestions(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if suggestions == nil {
		suggestions = []forecast.Suggestion{}
	}
	respondJSON(w, http.StatusOK, suggestions)
}

func dateParam(r *http.Request, name string) (*models.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetTransactions lists stored transactions
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withHousehold(r, w)
	if !ok {
		return
	}
	start, err := dateParam(r, "start")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := dateParam(r, "end")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	txs, err := h.svc.Transactions(id, start, end)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, txs)
}

// PostTransaction stores one transaction
func (h *Handler) PostTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withHousehold(r, w)
	if !ok {
		return
	}
	var tx models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := h.svc.AddTransaction(id, &tx); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, tx)
}

// GetAlerts evaluates the household's alert rules
func (h *Handler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withHousehold(r, w)
	if !ok {
		return
	}
	alerts, err := h.svc.Alerts(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, alerts)
}

// GetWeeklySummary totals one week of transactions
func (h *Handler) GetWeeklySummary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withHousehold(r, w)
	if !ok {
		return
	}
	start, err := dateParam(r, "start")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	summary, err := h.svc.WeeklySummary(id, start)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
