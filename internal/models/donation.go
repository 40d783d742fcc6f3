package models

import (
	"time"

	"bloodlink/internal/rules"

	"gorm.io/gorm"
)

// DonationStatus is the outcome of a donation attempt
type DonationStatus string

const (
	DonationCompleted DonationStatus = "completed"
	DonationDeferred  DonationStatus = "deferred"
	DonationRejected  DonationStatus = "rejected"
)

// DonationRecord is evidence of a donation attempt. Records are immutable
// apart from attaching a certificate.
type DonationRecord struct {
	ID             string          `gorm:"primaryKey;size:36" json:"id"`
	DonorID        string          `gorm:"size:36;not null;index" json:"donorId"`
	HospitalID     string          `gorm:"size:36;index" json:"hospitalId"`
	Hospital       string          `gorm:"size:200;not null" json:"hospital"`
	AppointmentID  *string         `gorm:"size:36;uniqueIndex" json:"appointmentId,omitempty"`
	DonationDate   time.Time       `gorm:"not null;index" json:"donationDate"`
	BloodType      rules.BloodType `gorm:"size:3;not null" json:"bloodType"`
	Units          int             `gorm:"not null;default:1" json:"units"`
	Status         DonationStatus  `gorm:"size:10;not null;index" json:"status"`
	CertificateURL string          `gorm:"size:500" json:"certificateUrl,omitempty"`
	Notes          string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time       `gorm:"not null" json:"updatedAt"`
}

// BeforeCreate hook is called before creating a new donation record
func (d *DonationRecord) BeforeCreate(tx *gorm.DB) error {
	newID(&d.ID)
	if d.Units == 0 {
		d.Units = 1
	}
	return nil
}

// TableName specifies the table name for the DonationRecord model
func (DonationRecord) TableName() string {
	return "donations"
}

// RecordDonationRequest represents the data an admin enters after a donation
type RecordDonationRequest struct {
	DonorID      string    `json:"donorId" binding:"required,uuid"`
	HospitalID   string    `json:"hospitalId" binding:"required,uuid"`
	DonationDate time.Time `json:"donationDate" binding:"required"`
	Units        int       `json:"units" binding:"omitempty,min=1,max=4"`
	Status       string    `json:"status" binding:"required,oneof=completed deferred rejected"`
	Notes        string    `json:"notes" binding:"max=2000"`
}

// DonorTally is an aggregate row used to build the leaderboard
type DonorTally struct {
	DonorID   string
	Name      string
	BloodType rules.BloodType
	Completed int
}
