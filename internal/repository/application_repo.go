package repository

import (
	"errors"

	"roomshare/backend/internal/apperrors"
	"roomshare/backend/internal/models"

	"gorm.io/gorm"
)

// ApplicationRepository persists tenant applications and their status
// lifecycle: Pending → Accepted | Rejected, both terminal.
type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Apply submits a tenant's application for a listing. The listing must exist
// and be Available, and the tenant must not have applied to it before.
func (r *ApplicationRepository) Apply(tenantID, listingID uint, message string) (*models.Application, error) {
	var listing models.Listing
	if err := r.db.First(&listing, listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "listing not found")
		}
		return nil, err
	}
	if listing.Status != models.ListingAvailable {
		return nil, apperrors.Wrap(apperrors.ErrInvalidState, "listing is not currently available for applications")
	}

	var existing int64
	err := r.db.Model(&models.Application{}).
		Where("listing_id = ? AND tenant_id = ?", listingID, tenantID).
		Count(&existing).Error
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, apperrors.Wrap(apperrors.ErrConflict, "already applied for this listing")
	}

	application := models.Application{
		ListingID: listingID,
		TenantID:  tenantID,
		Message:   message,
		Status:    models.ApplicationPending,
	}
	if err := r.db.Create(&application).Error; err != nil {
		return nil, err
	}
	return &application, nil
}

// ListForListing returns a listing's applications, newest first, with the
// applicant joined. Only the owning landlord may call it.
func (r *ApplicationRepository) ListForListing(listingID, landlordID uint) ([]models.Application, error) {
	var listing models.Listing
	if err := r.db.First(&listing, listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "listing not found")
		}
		return nil, err
	}
	if listing.LandlordID != landlordID {
		return nil, apperrors.Wrap(apperrors.ErrForbidden, "not the owner of this listing")
	}

	var applications []models.Application
	err := r.db.
		Preload("Tenant").
		Where("listing_id = ?", listingID).
		Order("created_at DESC").
		Find(&applications).Error
	return applications, err
}

// ListForTenant returns the tenant's own applications with a listing summary,
// newest first.
func (r *ApplicationRepository) ListForTenant(tenantID uint) ([]models.Application, error) {
	var applications []models.Application
	err := r.db.
		Preload("Listing").
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&applications).Error
	return applications, err
}

// UpdateStatus sets an application to Accepted or Rejected. Ownership is
// transitive: the caller must own the listing the application points at.
// Accepting does not auto-reject sibling applications; that stays a manual
// follow-up for the landlord.
func (r *ApplicationRepository) UpdateStatus(applicationID, landlordID uint, status string) (*models.Application, error) {
	if status != string(models.ApplicationAccepted) && status != string(models.ApplicationRejected) {
		return nil, apperrors.Wrapf(apperrors.ErrValidation, "status must be %s or %s",
			models.ApplicationAccepted, models.ApplicationRejected)
	}

	var application models.Application
	if err := r.db.Preload("Listing").First(&application, applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "application not found")
		}
		return nil, err
	}
	if application.Listing.ID == 0 {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "listing for application not found")
	}
	if application.Listing.LandlordID != landlordID {
		return nil, apperrors.Wrap(apperrors.ErrForbidden, "not the owner of the listing for this application")
	}

	if err := r.db.Model(&application).Update("status", models.ApplicationStatus(status)).Error; err != nil {
		return nil, err
	}
	return &application, nil
}
