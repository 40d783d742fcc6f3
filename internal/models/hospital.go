package models

import (
	"time"

	"bloodlink/internal/rules"

	"gorm.io/gorm"
)

// Hospital is reference data for a donation site
type Hospital struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id" yaml:"id"`
	Name         string     `gorm:"uniqueIndex;size:200;not null" json:"name" yaml:"name"`
	Address      string     `gorm:"size:255;not null" json:"address" yaml:"address"`
	Barangay     string     `gorm:"size:100" json:"barangay" yaml:"barangay"`
	Phone        string     `gorm:"size:30" json:"phone" yaml:"phone"`
	OpenTime     string     `gorm:"size:5;not null" json:"openTime" yaml:"openTime"`
	CloseTime    string     `gorm:"size:5;not null" json:"closeTime" yaml:"closeTime"`
	DonationDays StringList `gorm:"type:jsonb;not null" json:"donationDays" yaml:"donationDays"`
	SlotDuration int        `gorm:"not null" json:"slotDuration" yaml:"slotDuration"`
	SlotsPerHour int        `gorm:"not null" json:"slotsPerHour" yaml:"slotsPerHour"`
	Location     *GeoPoint  `gorm:"type:jsonb" json:"location,omitempty" yaml:"-"`
	CreatedAt    time.Time  `gorm:"not null" json:"createdAt" yaml:"-"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updatedAt" yaml:"-"`
}

// BeforeCreate hook is called before creating a new hospital
func (h *Hospital) BeforeCreate(tx *gorm.DB) error {
	newID(&h.ID)
	return nil
}

// TableName specifies the table name for the Hospital model
func (Hospital) TableName() string {
	return "hospitals"
}

// Schedule extracts the slot-generation inputs
func (h Hospital) Schedule() rules.Schedule {
	return rules.Schedule{
		OpenTime:     h.OpenTime,
		CloseTime:    h.CloseTime,
		DonationDays: h.DonationDays,
		SlotDuration: h.SlotDuration,
		SlotsPerHour: h.SlotsPerHour,
	}
}

// CreateHospitalRequest represents the data needed to add a hospital
type CreateHospitalRequest struct {
	Name         string   `json:"name" binding:"required,max=200"`
	Address      string   `json:"address" binding:"required,max=255"`
	Barangay     string   `json:"barangay" binding:"max=100"`
	Phone        string   `json:"phone" binding:"max=30"`
	OpenTime     string   `json:"openTime" binding:"required,len=5"`
	CloseTime    string   `json:"closeTime" binding:"required,len=5"`
	DonationDays []string `json:"donationDays" binding:"required,min=1,dive,oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`
	SlotDuration int      `json:"slotDuration" binding:"required,min=5,max=60"`
	SlotsPerHour int      `json:"slotsPerHour" binding:"required,min=1,max=12"`
}
