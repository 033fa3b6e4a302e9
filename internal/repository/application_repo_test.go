package repository

import (
	"testing"

	"roomshare/backend/internal/apperrors"
	"roomshare/backend/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newApplicationRepo(t *testing.T) (*ApplicationRepository, *ListingRepository, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewApplicationRepository(db), NewListingRepository(db, newTestStore(), zerolog.Nop()), db
}

func TestApply(t *testing.T) {
	apps, listings, db := newApplicationRepo(t)
	landlord := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	listing := createListing(t, listings, landlord.ID, nil)

	application, err := apps.Apply(tenant.ID, listing.ID, "I would love to move in.")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, application.Status)
	assert.Equal(t, tenant.ID, application.TenantID)
	assert.Equal(t, listing.ID, application.ListingID)
}

func TestApplyTwiceIsConflict(t *testing.T) {
	apps, listings, db := newApplicationRepo(t)
	landlord := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	listing := createListing(t, listings, landlord.ID, nil)

	_, err := apps.Apply(tenant.ID, listing.ID, "first")
	require.NoError(t, err)

	_, err = apps.Apply(tenant.ID, listing.ID, "second")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestApplyToNonAvailableListing(t *testing.T) {
	apps, listings, db := newApplicationRepo(t)
	landlord := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	listing := createListing(t, listings, landlord.ID, nil)
	require.NoError(t, listings.SetStatus(listing.ID, landlord.ID, string(models.ListingUnavailable)))

	_, err := apps.Apply(tenant.ID, listing.ID, "too late")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	_, err = apps.Apply(tenant.ID, 9999, "ghost listing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListForListingRequiresOwnership(t *testing.T) {
	apps, listings, db := newApplicationRepo(t)
	landlord := createUser(t, db, models.RoleLandlord)
	other := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	listing := createListing(t, listings, landlord.ID, nil)

	_, err := apps.Apply(tenant.ID, listing.ID, "hi")
	require.NoError(t, err)

	_, err = apps.ListForListing(listing.ID, other.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	got, err := apps.ListForListing(listing.ID, landlord.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	// Applicant contact info rides along for the landlord's triage view.
	assert.Equal(t, tenant.Name, got[0].Tenant.Name)
}

func TestUpdateStatus(t *testing.T) {
	apps, listings, db := newApplicationRepo(t)
	landlord := createUser(t, db, models.RoleLandlord)
	other := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	listing := createListing(t, listings, landlord.ID, nil)

	application, err := apps.Apply(tenant.ID, listing.ID, "hi")
	require.NoError(t, err)

	_, err = apps.UpdateStatus(application.ID, landlord.ID, "Pending")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = apps.UpdateStatus(application.ID, other.ID, string(models.ApplicationAccepted))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	updated, err := apps.UpdateStatus(application.ID, landlord.ID, string(models.ApplicationAccepted))
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationAccepted, updated.Status)

	// The tenant sees the decision with the listing summary joined.
	mine, err := apps.ListForTenant(tenant.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.ApplicationAccepted, mine[0].Status)
	assert.Equal(t, listing.Title, mine[0].Listing.Title)
}

func TestUpdateStatusUnknownApplication(t *testing.T) {
	apps, _, db := newApplicationRepo(t)
	landlord := createUser(t, db, models.RoleLandlord)

	_, err := apps.UpdateStatus(12345, landlord.ID, string(models.ApplicationRejected))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
