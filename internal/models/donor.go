package models

import (
	"time"

	"bloodlink/internal/rules"

	"gorm.io/gorm"
)

// Donor represents a registered blood donor. Donors are deactivated, never deleted.
type Donor struct {
	ID               string          `gorm:"primaryKey;size:36" json:"id"`
	Name             string          `gorm:"size:120;not null" json:"name"`
	Email            string          `gorm:"uniqueIndex;size:255;not null" json:"email"`
	HashedPass       string          `gorm:"size:255" json:"-"`
	GoogleID         *string         `gorm:"uniqueIndex;size:128" json:"-"`
	Phone            string          `gorm:"size:30" json:"phone"`
	BloodType        rules.BloodType `gorm:"size:3;not null;index" json:"bloodType"`
	Barangay         string          `gorm:"size:100;index" json:"barangay"`
	Address          string          `gorm:"size:255" json:"address"`
	DateOfBirth      *time.Time      `json:"dateOfBirth,omitempty"`
	LastDonationDate *time.Time      `json:"lastDonationDate,omitempty"`
	EmailAlerts      bool            `gorm:"not null" json:"emailAlerts"`
	Active           bool            `gorm:"not null;index" json:"active"`
	EmailVerified    bool            `gorm:"not null" json:"emailVerified"`
	LastLogin        *time.Time      `json:"lastLogin,omitempty"`
	CreatedAt        time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt        time.Time       `gorm:"not null" json:"updatedAt"`
}

// BeforeCreate hook is called before creating a new donor
func (d *Donor) BeforeCreate(tx *gorm.DB) error {
	newID(&d.ID)
	return nil
}

// TableName specifies the table name for the Donor model
func (Donor) TableName() string {
	return "donors"
}

func (d Donor) GetBloodType() rules.BloodType { return d.BloodType }
func (d Donor) IsActive() bool                { return d.Active }
func (d Donor) WantsEmailAlerts() bool        { return d.EmailAlerts }

// RegisterDonorRequest represents the data needed to register a donor
type RegisterDonorRequest struct {
	Name        string     `json:"name" binding:"required,min=2,max=120"`
	Email       string     `json:"email" binding:"required,email"`
	Password    string     `json:"password" binding:"required,min=8"`
	Phone       string     `json:"phone" binding:"required,max=30"`
	BloodType   string     `json:"bloodType" binding:"required,bloodtype"`
	Barangay    string     `json:"barangay" binding:"required,max=100"`
	Address     string     `json:"address" binding:"max=255"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
	EmailAlerts *bool      `json:"emailAlerts"`
}

// UpdateDonorRequest carries the profile fields a donor may change
type UpdateDonorRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=2,max=120"`
	Phone       *string    `json:"phone" binding:"omitempty,max=30"`
	Barangay    *string    `json:"barangay" binding:"omitempty,max=100"`
	Address     *string    `json:"address" binding:"omitempty,max=255"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
	EmailAlerts *bool      `json:"emailAlerts"`
}

// DonorFilter narrows admin donor listings
type DonorFilter struct {
	BloodType rules.BloodType
	Barangay  string
	Active    *bool
	Limit     int
	Offset    int
}

// DonorMatchRow is a donor row with a search relevance score
type DonorMatchRow struct {
	Donor `gorm:"embedded"`
	Score float64
}
