package repository

import (
	"context"

	"bloodlink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HospitalRepository struct {
	db *gorm.DB
}

func (r *HospitalRepository) Create(ctx context.Context, h *models.Hospital) error {
	return r.db.WithContext(ctx).Create(h).Error
}

// Upsert inserts h or updates the hospital with the same name
func (r *HospitalRepository) Upsert(ctx context.Context, h *models.Hospital) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"address", "barangay", "phone", "open_time", "close_time",
			"donation_days", "slot_duration", "slots_per_hour", "updated_at",
		}),
	}).Create(h).Error
}

func (r *HospitalRepository) GetByID(ctx context.Context, id string) (*models.Hospital, error) {
	var h models.Hospital
	if err := r.db.WithContext(ctx).First(&h, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *HospitalRepository) List(ctx context.Context) ([]models.Hospital, error) {
	var hospitals []models.Hospital
	err := r.db.WithContext(ctx).Order("name ASC").Find(&hospitals).Error
	return hospitals, err
}
