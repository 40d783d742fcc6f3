package models

import (
	"time"

	"bloodlink/internal/rules"

	"gorm.io/gorm"
)

// Urgency is the priority tier of a blood request
type Urgency string

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyCritical Urgency = "critical"
)

// BloodRequest is a hospital's ask for units of a specific blood type
type BloodRequest struct {
	ID            string              `gorm:"primaryKey;size:36" json:"id"`
	HospitalID    *string             `gorm:"size:36;index" json:"hospitalId,omitempty"`
	Hospital      string              `gorm:"size:200;not null" json:"hospital"`
	BloodType     rules.BloodType     `gorm:"size:3;not null;index" json:"bloodType"`
	Quantity      int                 `gorm:"not null" json:"quantity"`
	Urgency       Urgency             `gorm:"size:10;not null" json:"urgency"`
	Notes         string              `gorm:"type:text" json:"notes"`
	Status        rules.RequestStatus `gorm:"size:12;not null;index" json:"status"`
	MatchedDonors int                 `gorm:"not null;default:0" json:"matchedDonors"`
	CreatedBy     string              `gorm:"size:36" json:"createdBy"`
	CreatedAt     time.Time           `gorm:"not null;index" json:"createdAt"`
	UpdatedAt     time.Time           `gorm:"not null" json:"updatedAt"`
	DeletedAt     gorm.DeletedAt      `gorm:"index" json:"-"`
}

// BeforeCreate hook is called before creating a new request
func (r *BloodRequest) BeforeCreate(tx *gorm.DB) error {
	newID(&r.ID)
	if r.Status == "" {
		r.Status = rules.RequestActive
	}
	return nil
}

// TableName specifies the table name for the BloodRequest model
func (BloodRequest) TableName() string {
	return "requests"
}

// CreateBloodRequestRequest represents the data needed to open a blood request
type CreateBloodRequestRequest struct {
	HospitalID string `json:"hospitalId" binding:"omitempty,uuid"`
	Hospital   string `json:"hospital" binding:"required_without=HospitalID,max=200"`
	BloodType  string `json:"bloodType" binding:"required,bloodtype"`
	Quantity   int    `json:"quantity" binding:"required,min=1,max=1000"`
	Urgency    string `json:"urgency" binding:"required,oneof=normal urgent critical"`
	Notes      string `json:"notes" binding:"max=2000"`
}

// UpdateStatusRequest carries a requested status change
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// NotifyDonorsRequest triggers an alert for a blood request
type NotifyDonorsRequest struct {
	RequestID string `json:"requestId" binding:"required,uuid"`
}
