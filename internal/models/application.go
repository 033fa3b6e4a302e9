package models

import "gorm.io/gorm"

// ApplicationStatus is the lifecycle state of a rental application.
// Pending moves to Accepted or Rejected; both are terminal.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "Pending"
	ApplicationAccepted ApplicationStatus = "Accepted"
	ApplicationRejected ApplicationStatus = "Rejected"
)

// Application is a tenant's request to rent a specific listing.
// At most one application may exist per (tenant, listing) pair.
type Application struct {
	gorm.Model
	ListingID uint   `gorm:"not null;index;uniqueIndex:idx_tenant_listing"`
	TenantID  uint   `gorm:"not null;index;uniqueIndex:idx_tenant_listing"`
	Message   string
	Status    ApplicationStatus `gorm:"size:50;not null;default:'Pending'"`

	Listing Listing `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
	Tenant  User    `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
}
