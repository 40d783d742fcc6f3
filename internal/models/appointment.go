package models

import (
	"time"

	"bloodlink/internal/rules"

	"gorm.io/gorm"
)

// Appointment is a donor's booking of a slot at a hospital
type Appointment struct {
	ID           string                  `gorm:"primaryKey;size:36" json:"id"`
	DonorID      string                  `gorm:"size:36;not null;index" json:"donorId"`
	HospitalID   string                  `gorm:"size:36;not null;index:idx_appointment_slot" json:"hospitalId"`
	Date         string                  `gorm:"size:10;not null;index:idx_appointment_slot" json:"date"` // YYYY-MM-DD
	TimeSlot     string                  `gorm:"size:11;not null;index:idx_appointment_slot" json:"timeSlot"`
	Status       rules.AppointmentStatus `gorm:"size:10;not null;index" json:"status"`
	ReminderSent bool                    `gorm:"not null;default:false" json:"reminderSent"`
	Notes        string                  `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time               `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time               `gorm:"not null" json:"updatedAt"`

	Donor    *Donor    `gorm:"foreignKey:DonorID" json:"donor,omitempty"`
	Hospital *Hospital `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
}

// BeforeCreate hook is called before creating a new appointment
func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	newID(&a.ID)
	if a.Status == "" {
		a.Status = rules.AppointmentScheduled
	}
	return nil
}

// TableName specifies the table name for the Appointment model
func (Appointment) TableName() string {
	return "appointments"
}

// HoldsSlot reports whether the appointment still counts against slot capacity
func (a Appointment) HoldsSlot() bool {
	return a.Status != rules.AppointmentCancelled
}

// SlotReservation counts live bookings for one hospital slot. Booking and
// cancelling change Booked with conditional updates so capacity is enforced
// by the database.
type SlotReservation struct {
	HospitalID string    `gorm:"primaryKey;size:36" json:"hospitalId"`
	Date       string    `gorm:"primaryKey;size:10" json:"date"`
	TimeSlot   string    `gorm:"primaryKey;size:11" json:"timeSlot"`
	Booked     int       `gorm:"not null;default:0" json:"booked"`
	Capacity   int       `gorm:"not null" json:"capacity"`
	UpdatedAt  time.Time `gorm:"not null" json:"updatedAt"`
}

// TableName specifies the table name for the SlotReservation model
func (SlotReservation) TableName() string {
	return "slot_reservations"
}

// BookAppointmentRequest represents a donor's booking
type BookAppointmentRequest struct {
	HospitalID string `json:"hospitalId" binding:"required,uuid"`
	Date       string `json:"date" binding:"required,datetime=2006-01-02"`
	TimeSlot   string `json:"timeSlot" binding:"required"`
	Notes      string `json:"notes" binding:"max=500"`
}

// AppointmentFilter narrows admin appointment listings
type AppointmentFilter struct {
	HospitalID string
	Date       string
	DonorID    string
	Status     rules.AppointmentStatus
}
