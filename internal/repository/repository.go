package repository

import (
	"context"
	"errors"
	"time"

	"bloodlink/internal/rules"

	"gorm.io/gorm"
)

var (
	// ErrSlotFull is returned when a slot reservation would exceed capacity
	ErrSlotFull = errors.New("slot is full")
	// ErrStaleStatus is returned when a row's status changed between read and write
	ErrStaleStatus = errors.New("status changed concurrently")
)

// Repositories bundles every store backed by one database handle
type Repositories struct {
	Admins       *AdminRepository
	Donors       *DonorRepository
	Hospitals    *HospitalRepository
	Requests     *RequestRepository
	Alerts       *AlertRepository
	Appointments *AppointmentRepository
	Donations    *DonationRepository
}

// New creates all repositories
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Admins:       &AdminRepository{db: db},
		Donors:       &DonorRepository{db: db},
		Hospitals:    &HospitalRepository{db: db},
		Requests:     &RequestRepository{db: db},
		Alerts:       &AlertRepository{db: db},
		Appointments: &AppointmentRepository{db: db},
		Donations:    &DonationRepository{db: db},
	}
}

func paginate(q *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return q.Limit(limit).Offset(offset)
}

func (r *Repositories) CountActiveDonors(ctx context.Context) (int64, error) {
	return r.Donors.CountActive(ctx)
}

func (r *Repositories) CountRequests(ctx context.Context, status rules.RequestStatus) (int64, error) {
	return r.Requests.CountByStatus(ctx, status)
}

func (r *Repositories) CountAppointmentsOn(ctx context.Context, date string) (int64, error) {
	return r.Appointments.CountOnDate(ctx, date)
}

func (r *Repositories) CountDonationsSince(ctx context.Context, since time.Time) (int64, error) {
	return r.Donations.CountCompletedSince(ctx, since)
}
