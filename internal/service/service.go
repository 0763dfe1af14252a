package service

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mbaxter/cashflow-service/internal/config"
	"github.com/mbaxter/cashflow-service/internal/forecast"
	"github.com/mbaxter/cashflow-service/internal/integrations/rates"
	"github.com/mbaxter/cashflow-service/internal/models"
	"github.com/mbaxter/cashflow-service/internal/repository"
)

// Service handles business logic
type Service struct {
	repo   *repository.Repository
	rates  *rates.Client
	log    *logrus.Logger
	config *config.Config
}

// NewService initializes a new service
func NewService(repo *repository.Repository, ratesClient *rates.Client, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{repo: repo, rates: ratesClient, log: log, config: cfg}
}

// clampDays bounds a requested horizon to the configured cap; non-positive
// requests fall back to the given default.
func (s *Service) clampDays(days, fallback int) int {
	if days <= 0 {
		days = fallback
	}
	if days <= 0 {
		days = 30
	}
	limit := s.config.MaxHorizonDays
	if limit > forecast.MaxHorizonDays {
		limit = forecast.MaxHorizonDays
	}
	if days > limit {
		days = limit
	}
	return days
}

// State returns a household's full persisted state.
func (s *Service) State(householdID string) (*models.State, error) {
	settings, err := s.repo.GetSettings(householdID)
	if err != nil {
		return nil, err
	}
	bills, err := s.repo.ListBills(householdID)
	if err != nil {
		return nil, err
	}
	income, err := s.repo.ListIncome(householdID)
	if err != nil {
		return nil, err
	}
	alerts, err := s.repo.ListAlerts(householdID)
	if err != nil {
		return nil, err
	}
	return &models.State{Settings: *settings, Bills: bills, Income: income, Alerts: alerts}, nil
}

// UpdateState applies a partial state update; absent fields stay unchanged.
func (s *Service) UpdateState(householdID string, payload models.StatePayload) (*models.State, error) {
	settings, err := s.repo.GetSettings(householdID)
	if err != nil {
		return nil, err
	}
	if payload.DebitBalance != nil {
		settings.DebitBalance = *payload.DebitBalance
	}
	if payload.CreditBalance != nil {
		settings.CreditBalance = *payload.CreditBalance
	}
	if payload.CCPayDay != nil {
		settings.CCPayDay = payload.CCPayDay
	}
	if payload.CCPayMethod != nil {
		settings.CCPayMethod = payload.CCPayMethod
	}
	if payload.CCPayAmount != nil {
		settings.CCPayAmount = payload.CCPayAmount
	}
	if payload.CCPayAmountUnit != nil {
		settings.CCPayAmountUnit = payload.CCPayAmountUnit
	}
	if payload.CCAPR != nil {
		settings.CCAPR = payload.CCAPR
	}
	if payload.CashflowDays != nil {
		settings.CashflowDays = *payload.CashflowDays
	}
	if payload.SafeToSpendDays != nil {
		settings.SafeToSpendDays = *payload.SafeToSpendDays
	}
	if payload.DebitFloor != nil {
		settings.DebitFloor = *payload.DebitFloor
	}
	if payload.ReminderEmail != nil {
		settings.ReminderEmail = payload.ReminderEmail
	}
	if err := s.repo.SaveSettings(settings); err != nil {
		return nil, err
	}

	if payload.Bills != nil {
		if err := validateEntries(payload.Bills); err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceBills(householdID, payload.Bills); err != nil {
			return nil, err
		}
	}
	if payload.Income != nil {
		if err := validateEntries(payload.Income); err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceIncome(householdID, payload.Income); err != nil {
			return nil, err
		}
	}
	if payload.Alerts != nil {
		if err := s.repo.ReplaceAlerts(householdID, payload.Alerts); err != nil {
			return nil, err
		}
	}

	s.log.Infof("State updated for household %s", householdID)
	return s.State(householdID)
}

func validateEntries(payloads []models.EntryPayload) error {
	for _, p := range payloads {
		if _, err := p.ToEntry(); err != nil {
			return err
		}
	}
	return nil
}

func toEntries(payloads []models.EntryPayload) []models.RecurringEntry {
	entries := make([]models.RecurringEntry, 0, len(payloads))
	for _, p := range payloads {
		entry, err := p.ToEntry()
		if err != nil {
			// Validated on write; a bad row that slipped in contributes
			// nothing rather than poisoning the whole run.
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// simulationInput assembles a simulation run from persisted state.
func (s *Service) simulationInput(householdID string, days int) (forecast.SimulationInput, *models.Settings, error) {
	state, err := s.State(householdID)
	if err != nil {
		return forecast.SimulationInput{}, nil, err
	}
	days = s.clampDays(days, state.CashflowDays)
	return forecast.SimulationInput{
		Bills:         toEntries(state.Bills),
		Income:        toEntries(state.Income),
		Policy:        state.CardPolicy(),
		DebitBalance:  state.DebitBalance,
		CreditBalance: state.CreditBalance,
		Start:         models.Today(),
		HorizonDays:   days,
	}, &state.Settings, nil
}

// Forecast simulates the household's cash flow over the window.
func (s *Service) Forecast(householdID string, days int) (forecast.SimulationResult, error) {
	in, _, err := s.simulationInput(householdID, days)
	if err != nil {
		return forecast.SimulationResult{}, err
	}
	return forecast.Simulate(in), nil
}

// Simulate runs a stateless simulation for a caller-supplied input.
func (s *Service) Simulate(in forecast.SimulationInput) forecast.SimulationResult {
	in.HorizonDays = s.clampDays(in.HorizonDays, in.HorizonDays)
	if in.Start.IsZero() {
		in.Start = models.Today()
	}
	return forecast.Simulate(in)
}

// SafeToSpend returns the minimum projected debit balance over the window
// along with the window actually used.
func (s *Service) SafeToSpend(householdID string, days int) (decimal.Decimal, int, error) {
	state, err := s.State(householdID)
	if err != nil {
		return decimal.Zero, 0, err
	}
	if days <= 0 {
		days = state.SafeToSpendDays
	}
	days = s.clampDays(days, 14)
	res, err := s.Forecast(householdID, days)
	if err != nil {
		return decimal.Zero, 0, err
	}
	return forecast.SafeToSpend(res.DebitSeries), days, nil
}

// BillWindows returns the credit-card billing-cycle explain view.
func (s *Service) BillWindows(householdID string, days int) (forecast.WindowReport, error) {
	in, settings, err := s.simulationInput(householdID, days)
	if err != nil {
		return forecast.WindowReport{}, err
	}
	return forecast.BillWindows(in.Bills, in.CreditBalance, settings.CCPayDay, in.Start, in.HorizonDays), nil
}

// CashFlow returns the paid-aware overlay of the household's forecast.
func (s *Service) CashFlow(householdID string, days int) (forecast.PaidAdjustment, error) {
	in, _, err := s.simulationInput(householdID, days)
	if err != nil {
		return forecast.PaidAdjustment{}, err
	}
	paid, err := s.repo.PaidSet(householdID)
	if err != nil {
		return forecast.PaidAdjustment{}, err
	}
	return forecast.ApplyPaid(forecast.Simulate(in), paid, in.DebitBalance), nil
}

// Checklist returns the keyed upcoming-event list with paid flags.
func (s *Service) Checklist(householdID string, days int) ([]forecast.Event, error) {
	adj, err := s.CashFlow(householdID, days)
	if err != nil {
		return nil, err
	}
	return adj.Events, nil
}

// MarkPaid persists a paid-event marker for one occurrence key.
func (s *Service) MarkPaid(householdID, key string, paid bool) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	return s.repo.MarkPaid(householdID, key, paid)
}

// Project runs the investment projection over a caller-supplied series. A
// nil annualPct selects the default assumption.
func (s *Service) Project(series []models.BalancePoint, floor *decimal.Decimal, annualPct *decimal.Decimal) forecast.Projection {
	var dailyRate *decimal.Decimal
	if annualPct != nil {
		dr := forecast.DailyRateFromAnnualPct(*annualPct)
		dailyRate = &dr
	}
	return forecast.Project(series, floor, dailyRate)
}

// InvestmentOutlook projects the household's own forecast against its
// configured floor. When the rates feed is configured its expected return
// replaces the default assumption; a feed failure falls back rather than
// failing the request.
func (s *Service) InvestmentOutlook(householdID string, days int) (forecast.Projection, error) {
	in, settings, err := s.simulationInput(householdID, days)
	if err != nil {
		return forecast.Projection{}, err
	}
	res := forecast.Simulate(in)

	var dailyRate *decimal.Decimal
	if s.rates != nil && s.rates.Enabled() {
		if annual, err := s.rates.GetAnnualReturn(); err != nil {
			s.log.Warnf("rates feed unavailable, using default return: %v", err)
		} else {
			dr := forecast.DailyRateFromAnnualPct(annual)
			dailyRate = &dr
		}
	}

	floor := settings.DebitFloor
	return forecast.Project(res.DebitSeries, &floor, dailyRate), nil
}

// Suggestions proposes recurring entries from transaction history.
func (s *Service) Suggestions(householdID string) ([]forecast.Suggestion, error) {
	txs, err := s.repo.ListTransactions(householdID, nil, nil)
	if err != nil {
		return nil, err
	}
	return forecast.SuggestRecurring(txs), nil
}

// Transactions lists stored transactions, optionally date-bounded.
func (s *Service) Transactions(householdID string, start, end *models.Date) ([]models.Transaction, error) {
	return s.repo.ListTransactions(householdID, start, end)
}

// AddTransaction stores one transaction.
func (s *Service) AddTransaction(householdID string, tx *models.Transaction) error {
	if tx.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if tx.Type == "" {
		if tx.Amount.IsNegative() {
			tx.Type = models.TypeDebit.String()
		} else {
			tx.Type = models.TypeCredit.String()
		}
	}
	if tx.Source == "" {
		tx.Source = "manual"
	}
	return s.repo.AddTransaction(householdID, tx)
}

// Alerts evaluates the household's alert rules against the current forecast.
func (s *Service) Alerts(householdID string) ([]models.Alert, error) {
	rules, err := s.repo.ListAlerts(householdID)
	if err != nil {
		return nil, err
	}
	results := []models.Alert{}
	for _, rule := range rules {
		if rule.Type != models.AlertLowBalance || !rule.Enabled {
			continue
		}
		current, _, err := s.SafeToSpend(householdID, 14)
		if err != nil {
			return nil, err
		}
		if current.LessThan(rule.Threshold) {
			results = append(results, models.Alert{
				Type:    models.AlertLowBalance,
				Message: "Balance below threshold",
				Value:   current,
			})
		}
	}
	return results, nil
}

// WeeklySummary totals stored transactions for the week starting at start
// (defaulting to the current week's Monday).
func (s *Service) WeeklySummary(householdID string, start *models.Date) (WeeklySummary, error) {
	var weekStart models.Date
	if start != nil {
		weekStart = *start
	} else {
		today := models.Today()
		offset := (int(today.Weekday()) + 6) % 7 // days since Monday
		weekStart = today.AddDays(-offset)
	}
	weekEnd := weekStart.AddDays(6)

	txs, err := s.repo.ListTransactions(householdID, &weekStart, &weekEnd)
	if err != nil {
		return WeeklySummary{}, err
	}
	summary := WeeklySummary{WeekStart: weekStart, WeekEnd: weekEnd}
	for _, tx := range txs {
		if tx.Amount.IsPositive() {
			summary.TotalIncome = summary.TotalIncome.Add(tx.Amount)
		} else {
			summary.TotalSpend = summary.TotalSpend.Add(tx.Amount.Abs())
		}
	}
	return summary, nil
}

// WeeklySummary aggregates one week of transaction history.
type WeeklySummary struct {
	WeekStart   models.Date     `json:"week_start"`
	WeekEnd     models.Date     `json:"week_end"`
	TotalIncome decimal.Decimal `json:"total_income"`
	TotalSpend  decimal.Decimal `json:"total_spend"`
}
