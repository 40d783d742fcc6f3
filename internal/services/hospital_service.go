package services

import (
	"context"
	"fmt"
	"time"

	"bloodlink/internal/apperrors"
	"bloodlink/internal/models"
	"bloodlink/internal/rules"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
)

// MaxOpenDateDays bounds the open-dates calendar window
const MaxOpenDateDays = 90

type hospitalStore interface {
	Create(ctx context.Context, h *models.Hospital) error
	Upsert(ctx context.Context, h *models.Hospital) error
	GetByID(ctx context.Context, id string) (*models.Hospital, error)
	List(ctx context.Context) ([]models.Hospital, error)
}

type bookingLister interface {
	Bookings(ctx context.Context, hospitalID, date string) ([]rules.Booking, error)
}

// Geocoder resolves addresses; nil disables geocoding
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*models.GeoPoint, error)
}

type HospitalService struct {
	hospitals hospitalStore
	bookings  bookingLister
	geocoder  Geocoder
	logger    *zap.Logger
}

func NewHospitalService(hospitals hospitalStore, bookings bookingLister, geocoder Geocoder, logger *zap.Logger) *HospitalService {
	return &HospitalService{hospitals: hospitals, bookings: bookings, geocoder: geocoder, logger: logger}
}

func (s *HospitalService) List(ctx context.Context) ([]models.Hospital, error) {
	hospitals, err := s.hospitals.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return hospitals, nil
}

func (s *HospitalService) Get(ctx context.Context, id string) (*models.Hospital, error) {
	h, err := s.hospitals.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromDB(err, "Hospital")
	}
	return h, nil
}

// Create validates the schedule and stores a hospital. Geocoding failures
// are logged and the hospital is saved without a location.
func (s *HospitalService) Create(ctx context.Context, req models.CreateHospitalRequest) (*models.Hospital, error) {
	h := &models.Hospital{
		Name:         req.Name,
		Address:      req.Address,
		Barangay:     req.Barangay,
		Phone:        req.Phone,
		OpenTime:     req.OpenTime,
		CloseTime:    req.CloseTime,
		DonationDays: models.StringList(req.DonationDays),
		SlotDuration: req.SlotDuration,
		SlotsPerHour: req.SlotsPerHour,
	}
	if err := h.Schedule().Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	s.locate(ctx, h)
	if err := s.hospitals.Create(ctx, h); err != nil {
		return nil, apperrors.FromDB(err, "Hospital")
	}
	s.logger.Info("hospital created", zap.String("hospital_id", h.ID), zap.String("name", h.Name))
	return h, nil
}

// Seed upserts hospitals by name and returns how many were written
func (s *HospitalService) Seed(ctx context.Context, hospitals []models.Hospital) (int, error) {
	for i := range hospitals {
		s.locate(ctx, &hospitals[i])
		if err := s.hospitals.Upsert(ctx, &hospitals[i]); err != nil {
			return i, fmt.Errorf("failed to seed hospital %q: %w", hospitals[i].Name, err)
		}
	}
	return len(hospitals), nil
}

func (s *HospitalService) locate(ctx context.Context, h *models.Hospital) {
	if s.geocoder == nil {
		return
	}
	loc, err := s.geocoder.Geocode(ctx, h.Address)
	if err != nil {
		s.logger.Warn("failed to geocode hospital address", zap.String("name", h.Name), zap.Error(err))
		return
	}
	h.Location = loc
}

// Slots lists availability for every slot at the hospital on date
func (s *HospitalService) Slots(ctx context.Context, hospitalID string, date time.Time) (rules.SlotDay, error) {
	h, err := s.Get(ctx, hospitalID)
	if err != nil {
		return rules.SlotDay{}, err
	}
	return s.slotsFor(ctx, h, date)
}

func (s *HospitalService) slotsFor(ctx context.Context, h *models.Hospital, date time.Time) (rules.SlotDay, error) {
	bookings, err := s.bookings.Bookings(ctx, h.ID, date.Format(time.DateOnly))
	if err != nil {
		return rules.SlotDay{}, apperrors.Internal(err)
	}
	day, err := rules.GenerateSlots(h.Schedule(), date, bookings)
	if err != nil {
		return rules.SlotDay{}, apperrors.Internal(fmt.Errorf("hospital %s: %w", h.ID, err))
	}
	return day, nil
}

// OpenDates lists the dates in [from, from+days) on which the hospital accepts donations
func (s *HospitalService) OpenDates(ctx context.Context, hospitalID string, from time.Time, days int) ([]string, error) {
	if days <= 0 || days > MaxOpenDateDays {
		return nil, apperrors.Validation(fmt.Sprintf("days must be between 1 and %d", MaxOpenDateDays))
	}
	h, err := s.Get(ctx, hospitalID)
	if err != nil {
		return nil, err
	}
	dates, err := OpenDates(h.Schedule(), from, days)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return dates, nil
}

// OpenDates expands a weekly schedule into calendar dates with an RRULE
func OpenDates(schedule rules.Schedule, from time.Time, days int) ([]string, error) {
	weekdays := make([]rrule.Weekday, 0, len(schedule.DonationDays))
	for _, name := range schedule.DonationDays {
		d, err := rules.ParseWeekday(name)
		if err != nil {
			return nil, err
		}
		weekdays = append(weekdays, rruleWeekday(d))
	}
	if len(weekdays) == 0 {
		return []string{}, nil
	}

	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: weekdays,
		Dtstart:   start,
		Until:     start.AddDate(0, 0, days-1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build schedule rule: %w", err)
	}

	occurrences := rule.All()
	dates := make([]string, 0, len(occurrences))
	for _, t := range occurrences {
		dates = append(dates, t.Format(time.DateOnly))
	}
	return dates, nil
}

func rruleWeekday(d time.Weekday) rrule.Weekday {
	switch d {
	case time.Monday:
		return rrule.MO
	case time.Tuesday:
		return rrule.TU
	case time.Wednesday:
		return rrule.WE
	case time.Thursday:
		return rrule.TH
	case time.Friday:
		return rrule.FR
	case time.Saturday:
		return rrule.SA
	default:
		return rrule.SU
	}
}
