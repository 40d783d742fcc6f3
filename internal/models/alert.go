package models

import (
	"time"

	"bloodlink/internal/rules"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Alert is a denormalized snapshot of a blood request that was broadcast to donors
type Alert struct {
	ID         string            `gorm:"primaryKey;size:36" json:"id"`
	RequestID  string            `gorm:"size:36;not null;index" json:"requestId"`
	Hospital   string            `gorm:"size:200;not null" json:"hospital"`
	BloodType  rules.BloodType   `gorm:"size:3;not null" json:"bloodType"`
	Quantity   int               `gorm:"not null" json:"quantity"`
	Urgency    Urgency           `gorm:"size:10;not null" json:"urgency"`
	Notes      string            `gorm:"type:text" json:"notes"`
	Snapshot   datatypes.JSON    `gorm:"type:jsonb" json:"snapshot"`
	Recipients int               `gorm:"not null;default:0" json:"recipients"`
	Delivered  int               `gorm:"not null;default:0" json:"delivered"`
	Failed     int               `gorm:"not null;default:0" json:"failed"`
	Status     rules.AlertStatus `gorm:"size:10;not null;index" json:"status"`
	SentAt     time.Time         `gorm:"not null;index" json:"sentAt"`
	CreatedAt  time.Time         `gorm:"not null" json:"createdAt"`
	UpdatedAt  time.Time         `gorm:"not null" json:"updatedAt"`
}

// BeforeCreate hook is called before creating a new alert
func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	newID(&a.ID)
	if a.Status == "" {
		a.Status = rules.AlertSent
	}
	if a.SentAt.IsZero() {
		a.SentAt = time.Now()
	}
	return nil
}

// TableName specifies the table name for the Alert model
func (Alert) TableName() string {
	return "alerts"
}
