package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin is a back-office user. Admins are provisioned out-of-band with bloodctl.
type Admin struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	Name       string     `gorm:"size:120;not null" json:"name"`
	Email      string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	HashedPass string     `gorm:"size:255;not null" json:"-"`
	LastLogin  *time.Time `json:"lastLogin,omitempty"`
	CreatedAt  time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt  time.Time  `gorm:"not null" json:"updatedAt"`
}

// BeforeCreate hook is called before creating a new admin
func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	newID(&a.ID)
	return nil
}

// TableName specifies the table name for the Admin model
func (Admin) TableName() string {
	return "admins"
}

// LoginRequest represents the data needed for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
