// Package reminders implements the scheduled job that surfaces today's
// appointments for every doctor.
package reminders

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/vitalens/vitalens/internal/config"
	"github.com/vitalens/vitalens/internal/metrics"
	"github.com/vitalens/vitalens/internal/store"
	"go.uber.org/zap"
)

// NotifyFunc receives each appointment due today. The default just logs;
// delivery channels can hook in here.
type NotifyFunc func(appt store.Appointment)

// Runner scans appointments on a cron schedule.
type Runner struct {
	cron     *cron.Cron
	schedule string
	store    *store.Store
	logger   *zap.Logger
	notify   NotifyFunc
}

func New(st *store.Store, cfg config.RemindersConfig, logger *zap.Logger) *Runner {
	r := &Runner{
		cron:     cron.New(),
		schedule: cfg.Schedule,
		store:    st,
		logger:   logger,
	}
	r.notify = func(appt store.Appointment) {
		logger.Info("appointment due today",
			zap.String("appointmentId", appt.ID),
			zap.String("patient", appt.PatientName),
			zap.String("time", appt.Time))
	}
	return r
}

// SetNotify replaces the default notification hook.
func (r *Runner) SetNotify(fn NotifyFunc) {
	if fn != nil {
		r.notify = fn
	}
}

// Start registers the scan job and starts the scheduler.
func (r *Runner) Start() error {
	_, err := r.cron.AddFunc(r.schedule, func() {
		r.RunOnce(time.Now())
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	r.logger.Info("reminder scheduler started", zap.String("schedule", r.schedule))
	return nil
}

// Stop stops the scheduler and waits for a running scan to finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// RunOnce scans every doctor's appointments and notifies for the ones
// scheduled today. It returns the number of due appointments found.
func (r *Runner) RunOnce(now time.Time) int {
	today := now.Format("2006-01-02")
	due := 0

	for _, user := range r.store.GetUsers() {
		for _, appt := range r.store.GetAppointments(user.ID) {
			if appt.Date != today || appt.Status != store.StatusScheduled {
				continue
			}
			due++
			r.notify(appt)
		}
	}

	metrics.RecordRemindersDue(due)
	if due > 0 {
		r.logger.Info("reminder scan complete", zap.Int("due", due))
	}
	return due
}
