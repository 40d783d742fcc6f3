package services

import (
	"context"
	"time"

	"bloodlink/internal/models"

	"go.uber.org/zap"
)

type reminderStore interface {
	DueReminders(ctx context.Context, date string) ([]models.Appointment, error)
	MarkReminderSent(ctx context.Context, id string) error
}

type reminderSender interface {
	SendAppointmentReminder(ctx context.Context, donor *models.Donor, hospital *models.Hospital, appt *models.Appointment) error
}

// ReminderWorker emails donors the day before their appointment
type ReminderWorker struct {
	appointments reminderStore
	email        reminderSender
	interval     time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

func NewReminderWorker(appointments reminderStore, email reminderSender, interval time.Duration, logger *zap.Logger) *ReminderWorker {
	return &ReminderWorker{
		appointments: appointments,
		email:        email,
		interval:     interval,
		logger:       logger.Named("reminders"),
		now:          time.Now,
	}
}

// Run checks immediately and then on every tick until ctx is cancelled
func (w *ReminderWorker) Run(ctx context.Context) {
	w.logger.Info("reminder worker started", zap.Duration("interval", w.interval))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.SendDue(ctx)
		select {
		case <-ctx.Done():
			w.logger.Info("reminder worker stopped")
			return
		case <-ticker.C:
		}
	}
}

// SendDue reminds every donor with an open appointment tomorrow that has not
// been reminded. The flag is set only after a successful send, so failures
// are retried on the next tick.
func (w *ReminderWorker) SendDue(ctx context.Context) (sent, failed int) {
	tomorrow := w.now().UTC().AddDate(0, 0, 1).Format(time.DateOnly)

	appts, err := w.appointments.DueReminders(ctx, tomorrow)
	if err != nil {
		w.logger.Error("failed to load due reminders", zap.Error(err))
		return 0, 0
	}

	for i := range appts {
		appt := &appts[i]
		if ctx.Err() != nil {
			return sent, failed
		}
		if appt.Donor == nil {
			continue
		}
		if err := w.email.SendAppointmentReminder(ctx, appt.Donor, appt.Hospital, appt); err != nil {
			failed++
			w.logger.Warn("failed to send reminder", zap.String("appointment_id", appt.ID), zap.Error(err))
			continue
		}
		if err := w.appointments.MarkReminderSent(ctx, appt.ID); err != nil {
			w.logger.Error("failed to mark reminder sent", zap.String("appointment_id", appt.ID), zap.Error(err))
		}
		sent++
	}

	if sent > 0 || failed > 0 {
		w.logger.Info("appointment reminders processed",
			zap.String("date", tomorrow),
			zap.Int("sent", sent),
			zap.Int("failed", failed))
	}
	return sent, failed
}
