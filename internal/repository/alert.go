package repository

import (
	"context"

	"bloodlink/internal/models"
	"bloodlink/internal/rules"

	"gorm.io/gorm"
)

type AlertRepository struct {
	db *gorm.DB
}

func (r *AlertRepository) Create(ctx context.Context, alert *models.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *AlertRepository) GetByID(ctx context.Context, id string) (*models.Alert, error) {
	var alert models.Alert
	if err := r.db.WithContext(ctx).First(&alert, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *AlertRepository) List(ctx context.Context, limit, offset int) ([]models.Alert, error) {
	var alerts []models.Alert
	err := paginate(r.db.WithContext(ctx), limit, offset).Order("sent_at DESC").Find(&alerts).Error
	return alerts, err
}

// RecordDelivery stores the outcome of sending an alert
func (r *AlertRepository) RecordDelivery(ctx context.Context, id string, recipients, delivered, failed int) error {
	return r.db.WithContext(ctx).Model(&models.Alert{}).Where("id = ?", id).Updates(map[string]interface{}{
		"recipients": recipients,
		"delivered":  delivered,
		"failed":     failed,
	}).Error
}

func (r *AlertRepository) Transition(ctx context.Context, id string, from, to rules.AlertStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Alert{}).
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

// FulfillForRequest marks every sent alert for requestID as fulfilled
func (r *AlertRepository) FulfillForRequest(ctx context.Context, requestID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Alert{}).
		Where("request_id = ? AND status = ?", requestID, rules.AlertSent).
		Update("status", rules.AlertFulfilled)
	return res.RowsAffected, res.Error
}
