package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bloodlink/internal/apperrors"
	"bloodlink/internal/models"
	"bloodlink/internal/repository"
	"bloodlink/internal/rules"

	"go.uber.org/zap"
)

// MaxBookingHorizonDays is how far ahead donors may book
const MaxBookingHorizonDays = 90

type appointmentStore interface {
	Book(ctx context.Context, appt *models.Appointment, capacity int) error
	Transition(ctx context.Context, appt *models.Appointment, to rules.AppointmentStatus, donation *models.DonationRecord) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	HasOpenOnDate(ctx context.Context, donorID, date string) (bool, error)
	ListByDonor(ctx context.Context, donorID string) ([]models.Appointment, error)
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error)
}

type donorLookup interface {
	GetByID(ctx context.Context, id string) (*models.Donor, error)
}

type appointmentNotifier interface {
	SendAppointmentBooked(ctx context.Context, donor *models.Donor, hospital *models.Hospital, appt *models.Appointment) error
	SendAppointmentStatus(ctx context.Context, donor *models.Donor, hospital *models.Hospital, appt *models.Appointment) error
}

type AppointmentService struct {
	appointments appointmentStore
	hospitals    hospitalLookup
	donors       donorLookup
	email        appointmentNotifier
	logger       *zap.Logger
	now          func() time.Time
}

func NewAppointmentService(appointments appointmentStore, hospitals hospitalLookup, donors donorLookup, email appointmentNotifier, logger *zap.Logger) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		hospitals:    hospitals,
		donors:       donors,
		email:        email,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *AppointmentService) today() time.Time {
	return dateOf(s.now())
}

// dateOf truncates t to midnight of its UTC date
func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Book reserves a slot for the donor. The donor must be active and eligible
// on the appointment date, and the slot must exist on that date.
func (s *AppointmentService) Book(ctx context.Context, donorID string, req models.BookAppointmentRequest) (*models.Appointment, error) {
	date, err := time.ParseInLocation(time.DateOnly, req.Date, time.UTC)
	if err != nil {
		return nil, apperrors.Validation("Date must be in YYYY-MM-DD format")
	}
	today := s.today()
	if date.Before(today) {
		return nil, apperrors.Validation("Appointments cannot be booked in the past")
	}
	if date.After(today.AddDate(0, 0, MaxBookingHorizonDays)) {
		return nil, apperrors.Validation(fmt.Sprintf("Appointments can be booked at most %d days ahead", MaxBookingHorizonDays))
	}

	donor, err := s.donors.GetByID(ctx, donorID)
	if err != nil {
		return nil, apperrors.FromDB(err, "Donor")
	}
	if !donor.Active {
		return nil, apperrors.Forbidden("This donor account has been deactivated")
	}
	// eligibility for a future date is counted in calendar days
	var lastDonation *time.Time
	if donor.LastDonationDate != nil {
		d := dateOf(*donor.LastDonationDate)
		lastDonation = &d
	}
	if elig := rules.CheckEligibility(lastDonation, date); !elig.Eligible {
		return nil, apperrors.Validation(elig.Message).WithDetails(elig)
	}

	hospital, err := s.hospitals.GetByID(ctx, req.HospitalID)
	if err != nil {
		return nil, apperrors.FromDB(err, "Hospital")
	}
	day, err := rules.GenerateSlots(hospital.Schedule(), date, nil)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !day.Open {
		return nil, apperrors.Validation(day.Message)
	}
	if _, ok := day.FindSlot(req.TimeSlot); !ok {
		return nil, apperrors.Validation(fmt.Sprintf("%s is not a valid time slot for this hospital", req.TimeSlot))
	}

	busy, err := s.appointments.HasOpenOnDate(ctx, donorID, req.Date)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if busy {
		return nil, apperrors.Conflict("You already have an appointment on this date")
	}

	appt := &models.Appointment{
		DonorID:    donorID,
		HospitalID: hospital.ID,
		Date:       req.Date,
		TimeSlot:   req.TimeSlot,
		Status:     rules.AppointmentScheduled,
		Notes:      req.Notes,
	}
	if err := s.appointments.Book(ctx, appt, hospital.SlotsPerHour); err != nil {
		if errors.Is(err, repository.ErrSlotFull) {
			return nil, apperrors.SlotUnavailable(req.TimeSlot)
		}
		return nil, apperrors.FromDB(err, "Appointment")
	}

	if err := s.email.SendAppointmentBooked(ctx, donor, hospital, appt); err != nil {
		s.logger.Warn("failed to send booking confirmation", zap.String("appointment_id", appt.ID), zap.Error(err))
	}
	s.logger.Info("appointment booked",
		zap.String("appointment_id", appt.ID),
		zap.String("hospital_id", hospital.ID),
		zap.String("date", appt.Date),
		zap.String("time_slot", appt.TimeSlot))

	appt.Hospital = hospital
	return appt, nil
}

// Cancel lets a donor cancel their own appointment
func (s *AppointmentService) Cancel(ctx context.Context, donorID, appointmentID string) (*models.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, apperrors.FromDB(err, "Appointment")
	}
	if appt.DonorID != donorID {
		return nil, apperrors.NotFound("Appointment")
	}
	return s.transition(ctx, appt, rules.AppointmentCancelled, false)
}

// UpdateStatus is the admin transition. Completing an appointment records a donation.
func (s *AppointmentService) UpdateStatus(ctx context.Context, appointmentID, status string) (*models.Appointment, error) {
	to := rules.AppointmentStatus(status)
	if !to.Valid() {
		return nil, apperrors.Validation("Unknown appointment status")
	}
	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, apperrors.FromDB(err, "Appointment")
	}
	return s.transition(ctx, appt, to, true)
}

func (s *AppointmentService) transition(ctx context.Context, appt *models.Appointment, to rules.AppointmentStatus, notify bool) (*models.Appointment, error) {
	if err := rules.CheckAppointmentTransition(appt.Status, to); err != nil {
		return nil, apperrors.InvalidStatus(err)
	}

	var donation *models.DonationRecord
	if to == rules.AppointmentCompleted {
		donation = donationFromAppointment(appt)
	}

	if err := s.appointments.Transition(ctx, appt, to, donation); err != nil {
		return nil, transitionError(err, "Appointment")
	}

	from := appt.Status
	appt.Status = to
	s.logger.Info("appointment status changed",
		zap.String("appointment_id", appt.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)))

	if notify && appt.Donor != nil && (to == rules.AppointmentConfirmed || to == rules.AppointmentCancelled) {
		if err := s.email.SendAppointmentStatus(ctx, appt.Donor, appt.Hospital, appt); err != nil {
			s.logger.Warn("failed to send status email", zap.String("appointment_id", appt.ID), zap.Error(err))
		}
	}
	return appt, nil
}

func donationFromAppointment(appt *models.Appointment) *models.DonationRecord {
	date, err := time.ParseInLocation(time.DateOnly, appt.Date, time.UTC)
	if err != nil {
		date = time.Now().UTC()
	}
	rec := &models.DonationRecord{
		DonorID:       appt.DonorID,
		HospitalID:    appt.HospitalID,
		AppointmentID: &appt.ID,
		DonationDate:  date,
		Units:         1,
		Status:        models.DonationCompleted,
	}
	if appt.Hospital != nil {
		rec.Hospital = appt.Hospital.Name
	}
	if appt.Donor != nil {
		rec.BloodType = appt.Donor.BloodType
	}
	return rec
}

func (s *AppointmentService) ListForDonor(ctx context.Context, donorID string) ([]models.Appointment, error) {
	appts, err := s.appointments.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return appts, nil
}

func (s *AppointmentService) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.Validation("Unknown appointment status")
	}
	appts, err := s.appointments.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return appts, nil
}
