package services

import (
	"context"
	"time"

	"bloodlink/internal/apperrors"
	"bloodlink/internal/models"
	"bloodlink/internal/rules"

	"go.uber.org/zap"
)

type donorStore interface {
	GetByID(ctx context.Context, id string) (*models.Donor, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	List(ctx context.Context, filter models.DonorFilter) ([]models.Donor, int64, error)
}

type DonorService struct {
	donors donorStore
	logger *zap.Logger
	now    func() time.Time
}

func NewDonorService(donors donorStore, logger *zap.Logger) *DonorService {
	return &DonorService{donors: donors, logger: logger, now: time.Now}
}

func (s *DonorService) Get(ctx context.Context, id string) (*models.Donor, error) {
	donor, err := s.donors.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromDB(err, "Donor")
	}
	return donor, nil
}

// UpdateProfile applies the non-nil fields of req
func (s *DonorService) UpdateProfile(ctx context.Context, id string, req models.UpdateDonorRequest) (*models.Donor, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Barangay != nil {
		fields["barangay"] = *req.Barangay
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.DateOfBirth != nil {
		fields["date_of_birth"] = *req.DateOfBirth
	}
	if req.EmailAlerts != nil {
		fields["email_alerts"] = *req.EmailAlerts
	}

	if len(fields) > 0 {
		if err := s.donors.UpdateFields(ctx, id, fields); err != nil {
			return nil, apperrors.FromDB(err, "Donor")
		}
	}
	return s.Get(ctx, id)
}

// Eligibility applies the 56-day rule to the donor's last donation
func (s *DonorService) Eligibility(ctx context.Context, id string) (rules.Eligibility, error) {
	donor, err := s.Get(ctx, id)
	if err != nil {
		return rules.Eligibility{}, err
	}
	return rules.CheckEligibility(donor.LastDonationDate, s.now()), nil
}

func (s *DonorService) List(ctx context.Context, filter models.DonorFilter) ([]models.Donor, int64, error) {
	donors, total, err := s.donors.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return donors, total, nil
}

// SetActive activates or deactivates a donor. Donors are never deleted.
func (s *DonorService) SetActive(ctx context.Context, id string, active bool) (*models.Donor, error) {
	if err := s.donors.UpdateFields(ctx, id, map[string]interface{}{"active": active}); err != nil {
		return nil, apperrors.FromDB(err, "Donor")
	}
	s.logger.Info("donor active flag changed", zap.String("donor_id", id), zap.Bool("active", active))
	return s.Get(ctx, id)
}
