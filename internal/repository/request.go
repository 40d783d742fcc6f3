package repository

import (
	"context"

	"bloodlink/internal/models"
	"bloodlink/internal/rules"

	"gorm.io/gorm"
)

type RequestRepository struct {
	db *gorm.DB
}

func (r *RequestRepository) Create(ctx context.Context, req *models.BloodRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *RequestRepository) GetByID(ctx context.Context, id string) (*models.BloodRequest, error) {
	var req models.BloodRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// List returns requests newest first, optionally narrowed to one status
func (r *RequestRepository) List(ctx context.Context, status rules.RequestStatus, limit, offset int) ([]models.BloodRequest, error) {
	q := r.db.WithContext(ctx).Model(&models.BloodRequest{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var requests []models.BloodRequest
	err := paginate(q, limit, offset).Order("created_at DESC").Find(&requests).Error
	return requests, err
}

// Transition moves a request from one status to another, failing with
// ErrStaleStatus if the stored status is no longer from.
func (r *RequestRepository) Transition(ctx context.Context, id string, from, to rules.RequestStatus) error {
	res := r.db.WithContext(ctx).Model(&models.BloodRequest{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

func (r *RequestRepository) SetMatchedDonors(ctx context.Context, id string, matched int) error {
	return r.db.WithContext(ctx).Model(&models.BloodRequest{}).
		Where("id = ?", id).
		Update("matched_donors", matched).Error
}

// Delete soft-deletes the request
func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.BloodRequest{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *RequestRepository) CountByStatus(ctx context.Context, status rules.RequestStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.BloodRequest{}).Where("status = ?", status).Count(&n).Error
	return n, err
}
