package services

import (
	"context"
	"io"
	"net/http"
	"time"

	"bloodlink/internal/apperrors"
	"bloodlink/internal/models"
	"bloodlink/internal/rules"

	"go.uber.org/zap"
)

type donationStore interface {
	Create(ctx context.Context, rec *models.DonationRecord) error
	GetByID(ctx context.Context, id string) (*models.DonationRecord, error)
	ListByDonor(ctx context.Context, donorID string) ([]models.DonationRecord, error)
	List(ctx context.Context, limit, offset int) ([]models.DonationRecord, error)
	CompletedDates(ctx context.Context, donorID string) ([]time.Time, error)
	Tallies(ctx context.Context) ([]models.DonorTally, error)
	SetCertificateURL(ctx context.Context, id, url string) error
	CountCompletedSince(ctx context.Context, since time.Time) (int64, error)
}

// CertificateUploader stores certificate files; nil disables uploads
type CertificateUploader interface {
	Upload(ctx context.Context, file io.Reader, filename, donationID string) (string, error)
}

type DonationService struct {
	donations    donationStore
	donors       donorLookup
	hospitals    hospitalLookup
	certificates CertificateUploader
	logger       *zap.Logger
}

func NewDonationService(donations donationStore, donors donorLookup, hospitals hospitalLookup, certificates CertificateUploader, logger *zap.Logger) *DonationService {
	return &DonationService{
		donations:    donations,
		donors:       donors,
		hospitals:    hospitals,
		certificates: certificates,
		logger:       logger,
	}
}

// Record stores a donation entered by an admin. A completed donation moves
// the donor's last donation date forward.
func (s *DonationService) Record(ctx context.Context, req models.RecordDonationRequest) (*models.DonationRecord, error) {
	if req.DonationDate.After(time.Now().Add(24 * time.Hour)) {
		return nil, apperrors.Validation("Donation date cannot be in the future")
	}

	donor, err := s.donors.GetByID(ctx, req.DonorID)
	if err != nil {
		return nil, apperrors.FromDB(err, "Donor")
	}
	hospital, err := s.hospitals.GetByID(ctx, req.HospitalID)
	if err != nil {
		return nil, apperrors.FromDB(err, "Hospital")
	}

	units := req.Units
	if units == 0 {
		units = 1
	}
	rec := &models.DonationRecord{
		DonorID:      donor.ID,
		HospitalID:   hospital.ID,
		Hospital:     hospital.Name,
		DonationDate: req.DonationDate.UTC(),
		BloodType:    donor.BloodType,
		Units:        units,
		Status:       models.DonationStatus(req.Status),
		Notes:        req.Notes,
	}
	if err := s.donations.Create(ctx, rec); err != nil {
		return nil, apperrors.FromDB(err, "Donation")
	}

	s.logger.Info("donation recorded",
		zap.String("donation_id", rec.ID),
		zap.String("donor_id", donor.ID),
		zap.String("status", req.Status))
	return rec, nil
}

func (s *DonationService) ListForDonor(ctx context.Context, donorID string) ([]models.DonationRecord, error) {
	recs, err := s.donations.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return recs, nil
}

func (s *DonationService) List(ctx context.Context, limit, offset int) ([]models.DonationRecord, error) {
	recs, err := s.donations.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return recs, nil
}

// Stats derives a donor's gamification stats from their completed donations
func (s *DonationService) Stats(ctx context.Context, donorID string) (rules.DonorStats, error) {
	donor, err := s.donors.GetByID(ctx, donorID)
	if err != nil {
		return rules.DonorStats{}, apperrors.FromDB(err, "Donor")
	}
	dates, err := s.donations.CompletedDates(ctx, donorID)
	if err != nil {
		return rules.DonorStats{}, apperrors.Internal(err)
	}
	return rules.ComputeStats(dates, donor.BloodType), nil
}

// Leaderboard ranks active donors by points computed from the donations table
func (s *DonationService) Leaderboard(ctx context.Context, limit int) ([]rules.LeaderboardEntry, error) {
	tallies, err := s.donations.Tallies(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	entries := make([]rules.LeaderboardEntry, 0, len(tallies))
	for _, t := range tallies {
		entries = append(entries, rules.LeaderboardEntry{
			DonorID:        t.DonorID,
			Name:           t.Name,
			BloodType:      t.BloodType,
			TotalDonations: t.Completed,
			Points:         rules.Points(t.Completed, t.BloodType),
			BadgeCount:     len(rules.AwardBadges(t.Completed, t.BloodType)),
		})
	}

	ranked := rules.RankLeaderboard(entries)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// AttachCertificate uploads a certificate file and stores its URL on the donation
func (s *DonationService) AttachCertificate(ctx context.Context, donationID string, file io.Reader, filename string, size int64) (*models.DonationRecord, error) {
	if s.certificates == nil {
		return nil, apperrors.New(apperrors.CodeExternal, "Certificate uploads are not configured", http.StatusServiceUnavailable)
	}
	if err := ValidateCertificateFile(filename, size); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	rec, err := s.donations.GetByID(ctx, donationID)
	if err != nil {
		return nil, apperrors.FromDB(err, "Donation")
	}
	if rec.Status != models.DonationCompleted {
		return nil, apperrors.Conflict("Certificates can only be attached to completed donations")
	}

	url, err := s.certificates.Upload(ctx, file, filename, rec.ID)
	if err != nil {
		return nil, apperrors.External("certificate storage", err)
	}
	if err := s.donations.SetCertificateURL(ctx, rec.ID, url); err != nil {
		return nil, apperrors.FromDB(err, "Donation")
	}
	rec.CertificateURL = url
	return rec, nil
}

// BloodTypeInfo is the public compatibility card for one blood type
type BloodTypeInfo struct {
	BloodType   rules.BloodType   `json:"bloodType"`
	CanDonateTo []rules.BloodType `json:"canDonateTo"`
	CanReceive  []rules.BloodType `json:"canReceiveFrom"`
	Rarity      rules.RarityInfo  `json:"rarity"`
}

// DescribeBloodType gathers compatibility and rarity for a type
func DescribeBloodType(raw string) (*BloodTypeInfo, error) {
	bt, err := rules.ParseBloodType(raw)
	if err != nil {
		return nil, apperrors.NotFound("Blood type")
	}
	to, _ := rules.CompatibleRecipients(bt)
	from, _ := rules.CompatibleDonors(bt)
	rarity, _ := rules.Rarity(bt)
	return &BloodTypeInfo{BloodType: bt, CanDonateTo: to, CanReceive: from, Rarity: rarity}, nil
}
