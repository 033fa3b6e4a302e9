package models

import (
	"time"

	"gorm.io/gorm"
)

// Role distinguishes the two kinds of accounts in the marketplace.
type Role string

const (
	RoleTenant   Role = "Tenant"
	RoleLandlord Role = "Landlord"
)

// User represents an account in the system. Tenants browse and apply to
// listings; landlords own listings and triage applications.
type User struct {
	gorm.Model
	Name         string `gorm:"size:255;not null"`
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         Role   `gorm:"size:50;not null;index"`

	PhoneNumber       string `gorm:"size:50"`
	Bio               string
	ProfilePictureURL string `gorm:"size:512"`
	EmailVerified     bool   `gorm:"not null;default:false"`

	// Landlord-only profile fields.
	PropertyName    string `gorm:"size:255"`
	PropertyAddress string `gorm:"size:512"`

	// Flatmate-seeking fields, shown in flatmate search while IsActivelyLooking.
	LookingForDescription string
	BudgetMin             *int
	BudgetMax             *int
	PreferredLocations    string `gorm:"size:512"`
	FlatmateMoveInDate    *time.Time
	IsActivelyLooking     bool `gorm:"not null;default:false;index"`
}
