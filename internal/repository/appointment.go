package repository

import (
	"context"
	"time"

	"bloodlink/internal/models"
	"bloodlink/internal/rules"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AppointmentRepository struct {
	db *gorm.DB
}

// Book reserves one unit of slot capacity and inserts appt in the same
// transaction. The reservation is a single conditional UPDATE, so concurrent
// bookings of the last unit cannot both succeed.
func (r *AppointmentRepository) Book(ctx context.Context, appt *models.Appointment, capacity int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		counter := models.SlotReservation{
			HospitalID: appt.HospitalID,
			Date:       appt.Date,
			TimeSlot:   appt.TimeSlot,
			Capacity:   capacity,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&counter).Error; err != nil {
			return err
		}

		res := tx.Model(&models.SlotReservation{}).
			Where("hospital_id = ? AND date = ? AND time_slot = ? AND booked < ?",
				appt.HospitalID, appt.Date, appt.TimeSlot, capacity).
			Updates(map[string]interface{}{
				"booked":     gorm.Expr("booked + 1"),
				"capacity":   capacity,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSlotFull
		}

		return tx.Create(appt).Error
	})
}

// Transition changes an appointment's status from appt.Status to to. Leaving
// a slot-holding status for cancelled releases the reservation. A non-nil
// donation is recorded in the same transaction.
func (r *AppointmentRepository) Transition(ctx context.Context, appt *models.Appointment, to rules.AppointmentStatus, donation *models.DonationRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Appointment{}).
			Where("id = ? AND status = ?", appt.ID, appt.Status).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleStatus
		}

		if to == rules.AppointmentCancelled && appt.HoldsSlot() {
			if err := releaseSlot(tx, appt); err != nil {
				return err
			}
		}

		if donation != nil {
			if err := insertDonation(tx, donation); err != nil {
				return err
			}
		}
		return nil
	})
}

func releaseSlot(tx *gorm.DB, appt *models.Appointment) error {
	return tx.Model(&models.SlotReservation{}).
		Where("hospital_id = ? AND date = ? AND time_slot = ? AND booked > 0",
			appt.HospitalID, appt.Date, appt.TimeSlot).
		Updates(map[string]interface{}{
			"booked":     gorm.Expr("booked - 1"),
			"updated_at": time.Now(),
		}).Error
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Donor").
		Preload("Hospital").
		First(&appt, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// Bookings returns the slot labels and statuses booked at a hospital on date
func (r *AppointmentRepository) Bookings(ctx context.Context, hospitalID, date string) ([]rules.Booking, error) {
	var bookings []rules.Booking
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Select("time_slot, status").
		Where("hospital_id = ? AND date = ?", hospitalID, date).
		Scan(&bookings).Error
	return bookings, err
}

// HasOpenOnDate reports whether the donor already holds a slot on date
func (r *AppointmentRepository) HasOpenOnDate(ctx context.Context, donorID, date string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("donor_id = ? AND date = ? AND status IN ?", donorID, date,
			[]rules.AppointmentStatus{rules.AppointmentScheduled, rules.AppointmentConfirmed}).
		Count(&n).Error
	return n > 0, err
}

func (r *AppointmentRepository) ListByDonor(ctx context.Context, donorID string) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Hospital").
		Where("donor_id = ?", donorID).
		Order("date DESC, time_slot ASC").
		Find(&appts).Error
	return appts, err
}

func (r *AppointmentRepository) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	q := r.db.WithContext(ctx).Preload("Donor").Preload("Hospital")
	if filter.HospitalID != "" {
		q = q.Where("hospital_id = ?", filter.HospitalID)
	}
	if filter.Date != "" {
		q = q.Where("date = ?", filter.Date)
	}
	if filter.DonorID != "" {
		q = q.Where("donor_id = ?", filter.DonorID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var appts []models.Appointment
	err := q.Order("date ASC, time_slot ASC").Limit(500).Find(&appts).Error
	return appts, err
}

// DueReminders returns open appointments on date that have not been reminded yet
func (r *AppointmentRepository) DueReminders(ctx context.Context, date string) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Donor").
		Preload("Hospital").
		Where(`"appointments"."reminder_sent" = false AND date = ? AND status IN ?`, date,
			[]rules.AppointmentStatus{rules.AppointmentScheduled, rules.AppointmentConfirmed}).
		Find(&appts).Error
	return appts, err
}

func (r *AppointmentRepository) MarkReminderSent(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ?", id).
		Update("reminder_sent", true).Error
}

func (r *AppointmentRepository) CountOnDate(ctx context.Context, date string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("date = ? AND status <> ?", date, rules.AppointmentCancelled).
		Count(&n).Error
	return n, err
}
