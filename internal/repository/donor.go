package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"bloodlink/internal/models"
	"bloodlink/internal/rules"

	"gorm.io/gorm"
)

type DonorRepository struct {
	db *gorm.DB
}

func (r *DonorRepository) Create(ctx context.Context, donor *models.Donor) error {
	return r.db.WithContext(ctx).Create(donor).Error
}

func (r *DonorRepository) GetByID(ctx context.Context, id string) (*models.Donor, error) {
	var donor models.Donor
	if err := r.db.WithContext(ctx).First(&donor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &donor, nil
}

func (r *DonorRepository) GetByEmail(ctx context.Context, email string) (*models.Donor, error) {
	var donor models.Donor
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&donor).Error; err != nil {
		return nil, err
	}
	return &donor, nil
}

func (r *DonorRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.Donor, error) {
	var donor models.Donor
	if err := r.db.WithContext(ctx).Where("google_id = ?", googleID).First(&donor).Error; err != nil {
		return nil, err
	}
	return &donor, nil
}

// UpdateFields applies a partial update
func (r *DonorRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Donor{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *DonorRepository) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Donor{}).Where("id = ?", id).Update("last_login", at).Error
}

func (r *DonorRepository) List(ctx context.Context, filter models.DonorFilter) ([]models.Donor, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Donor{})
	if filter.BloodType != "" {
		q = q.Where("blood_type = ?", filter.BloodType)
	}
	if filter.Barangay != "" {
		q = q.Where("barangay ILIKE ?", filter.Barangay)
	}
	if filter.Active != nil {
		q = q.Where("active = ?", *filter.Active)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var donors []models.Donor
	err := paginate(q, filter.Limit, filter.Offset).Order("created_at DESC").Find(&donors).Error
	return donors, total, err
}

// ListByBloodType returns every donor of the given type; alert matching filters further
func (r *DonorRepository) ListByBloodType(ctx context.Context, bt rules.BloodType) ([]models.Donor, error) {
	var donors []models.Donor
	err := r.db.WithContext(ctx).
		Where("blood_type = ?", bt).
		Order("created_at ASC").
		Find(&donors).Error
	return donors, err
}

func (r *DonorRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Donor{}).Where("active = ?", true).Count(&n).Error
	return n, err
}

// SearchPartial scores donors whose name, phone or barangay contains term
func (r *DonorRepository) SearchPartial(ctx context.Context, term string, limit int) ([]models.DonorMatchRow, error) {
	pattern := "%" + strings.ToLower(term) + "%"
	var rows []models.DonorMatchRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT *,
			CASE
				WHEN LOWER(name) LIKE @p THEN 3
				WHEN phone LIKE @p THEN 2
				WHEN LOWER(barangay) LIKE @p THEN 1
				ELSE 0.5
			END AS score
		FROM donors
		WHERE LOWER(name) LIKE @p OR phone LIKE @p OR LOWER(barangay) LIKE @p OR LOWER(email) LIKE @p
		ORDER BY score DESC, name ASC
		LIMIT @limit`,
		sql.Named("p", pattern), sql.Named("limit", limit)).
		Scan(&rows).Error
	return rows, err
}
