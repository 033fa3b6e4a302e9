package models

import "time"

// Favorite saves a listing for a tenant. The primary key is a composite of
// (TenantID, ListingID) to ensure uniqueness.
type Favorite struct {
	TenantID  uint      `gorm:"primaryKey"`
	ListingID uint      `gorm:"primaryKey"`
	SavedAt   time.Time `gorm:"not null;autoCreateTime"`

	Tenant  User    `gorm:"foreignKey:TenantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Listing Listing `gorm:"foreignKey:ListingID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
