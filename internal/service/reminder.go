package service

import (
	"github.com/mbaxter/cashflow-service/internal/forecast"
	"github.com/mbaxter/cashflow-service/internal/models"
	"github.com/mbaxter/cashflow-service/internal/utils/email"
)

// Reminder runs the scheduled reminder pass: for every household with a
// reminder address it emails the bills due within the lookahead window and a
// low-balance notice when an enabled alert rule trips.
type Reminder struct {
	svc    *Service
	sender *email.Sender
}

// NewReminder creates the reminder job.
func NewReminder(svc *Service, sender *email.Sender) *Reminder {
	return &Reminder{svc: svc, sender: sender}
}

// Run executes one reminder pass. Failures for one household are logged and
// do not block the others.
func (r *Reminder) Run() {
	ids, err := r.svc.repo.ReminderTargets()
	if err != nil {
		r.svc.log.Errorf("reminder pass aborted: %v", err)
		return
	}
	for _, id := range ids {
		if err := r.remindHousehold(id); err != nil {
			r.svc.log.Errorf("reminder for household %s failed: %v", id, err)
		}
	}
}

func (r *Reminder) remindHousehold(householdID string) error {
	settings, err := r.svc.repo.GetSettings(householdID)
	if err != nil {
		return err
	}
	if settings.ReminderEmail == nil || *settings.ReminderEmail == "" {
		return nil
	}
	to := *settings.ReminderEmail

	lookahead := r.svc.config.ReminderLookahead
	res, err := r.svc.Forecast(householdID, lookahead)
	if err != nil {
		return err
	}

	paid, err := r.svc.repo.PaidSet(householdID)
	if err != nil {
		return err
	}
	due := make([]models.UpcomingItem, 0, len(res.UpcomingDebitBills))
	for _, ev := range forecast.Events(res) {
		if ev.IsIncome || paid[ev.Key] {
			continue
		}
		due = append(due, models.UpcomingItem{Date: ev.Date, Name: ev.Name, Amount: ev.Amount})
	}
	if len(due) > 0 {
		if err := r.sender.SendBillReminder(to, due); err != nil {
			return err
		}
	}

	alerts, err := r.svc.repo.ListAlerts(householdID)
	if err != nil {
		return err
	}
	for _, rule := range alerts {
		if rule.Type != models.AlertLowBalance || !rule.Enabled {
			continue
		}
		projected, _, err := r.svc.SafeToSpend(householdID, 0)
		if err != nil {
			return err
		}
		if projected.LessThan(rule.Threshold) {
			if err := r.sender.SendLowBalanceNotice(to, projected, rule.Threshold); err != nil {
				return err
			}
		}
	}
	return nil
}
