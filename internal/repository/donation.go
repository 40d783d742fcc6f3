package repository

import (
	"context"
	"time"

	"bloodlink/internal/models"

	"gorm.io/gorm"
)

type DonationRepository struct {
	db *gorm.DB
}

// Create inserts a donation record and, when it is completed, advances the
// donor's last donation date.
func (r *DonationRepository) Create(ctx context.Context, rec *models.DonationRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insertDonation(tx, rec)
	})
}

func insertDonation(tx *gorm.DB, rec *models.DonationRecord) error {
	if err := tx.Create(rec).Error; err != nil {
		return err
	}
	if rec.Status != models.DonationCompleted {
		return nil
	}
	return tx.Model(&models.Donor{}).
		Where("id = ? AND (last_donation_date IS NULL OR last_donation_date < ?)", rec.DonorID, rec.DonationDate).
		Update("last_donation_date", rec.DonationDate).Error
}

func (r *DonationRepository) GetByID(ctx context.Context, id string) (*models.DonationRecord, error) {
	var rec models.DonationRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *DonationRepository) ListByDonor(ctx context.Context, donorID string) ([]models.DonationRecord, error) {
	var recs []models.DonationRecord
	err := r.db.WithContext(ctx).
		Where("donor_id = ?", donorID).
		Order("donation_date DESC").
		Find(&recs).Error
	return recs, err
}

func (r *DonationRepository) List(ctx context.Context, limit, offset int) ([]models.DonationRecord, error) {
	var recs []models.DonationRecord
	err := paginate(r.db.WithContext(ctx), limit, offset).Order("donation_date DESC").Find(&recs).Error
	return recs, err
}

// CompletedDates returns the dates of a donor's completed donations
func (r *DonationRepository) CompletedDates(ctx context.Context, donorID string) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).Model(&models.DonationRecord{}).
		Where("donor_id = ? AND status = ?", donorID, models.DonationCompleted).
		Order("donation_date DESC").
		Pluck("donation_date", &dates).Error
	return dates, err
}

// Tallies counts completed donations per active donor, skipping donors with none
func (r *DonationRepository) Tallies(ctx context.Context) ([]models.DonorTally, error) {
	var tallies []models.DonorTally
	err := r.db.WithContext(ctx).
		Table("donations").
		Select("donors.id AS donor_id, donors.name, donors.blood_type, COUNT(donations.id) AS completed").
		Joins("JOIN donors ON donors.id = donations.donor_id").
		Where("donations.status = ? AND donors.active = ?", models.DonationCompleted, true).
		Group("donors.id, donors.name, donors.blood_type").
		Scan(&tallies).Error
	return tallies, err
}

func (r *DonationRepository) SetCertificateURL(ctx context.Context, id, url string) error {
	res := r.db.WithContext(ctx).Model(&models.DonationRecord{}).
		Where("id = ?", id).
		Update("certificate_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *DonationRepository) CountCompletedSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.DonationRecord{}).
		Where("status = ? AND donation_date >= ?", models.DonationCompleted, since).
		Count(&n).Error
	return n, err
}
