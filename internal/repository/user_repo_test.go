package repository

import (
	"testing"
	"time"

	"roomshare/backend/internal/apperrors"
	"roomshare/backend/internal/models"
	"roomshare/backend/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserRepo(t *testing.T) (*UserRepository, *storage.Store) {
	t.Helper()
	store := newTestStore()
	return NewUserRepository(setupTestDB(t), store, zerolog.Nop()), store
}

func TestRegisterGatesRoleFields(t *testing.T) {
	repo, _ := newUserRepo(t)

	tenant, err := repo.Register(RegisterInput{
		Name:         "Tina Tenant",
		Email:        "tina@example.com",
		Password:     "password123",
		Role:         string(models.RoleTenant),
		Bio:          "quiet, tidy",
		PropertyName: "should be dropped",
	})
	require.NoError(t, err)
	assert.Equal(t, "quiet, tidy", tenant.Bio)
	assert.Empty(t, tenant.PropertyName)
	assert.NotEqual(t, "password123", tenant.PasswordHash)

	landlord, err := repo.Register(RegisterInput{
		Name:            "Lars Landlord",
		Email:           "lars@example.com",
		Password:        "password123",
		Role:            string(models.RoleLandlord),
		Bio:             "should be dropped",
		PropertyName:    "Maple House",
		PropertyAddress: "1 Maple St",
	})
	require.NoError(t, err)
	assert.Equal(t, "Maple House", landlord.PropertyName)
	assert.Empty(t, landlord.Bio)
}

func TestRegisterRejectsBadRoleAndDuplicateEmail(t *testing.T) {
	repo, _ := newUserRepo(t)

	_, err := repo.Register(RegisterInput{
		Name: "X", Email: "x@example.com", Password: "password123", Role: "Admin",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = repo.Register(RegisterInput{
		Name: "A", Email: "dup@example.com", Password: "password123", Role: string(models.RoleTenant),
	})
	require.NoError(t, err)

	_, err = repo.Register(RegisterInput{
		Name: "B", Email: "dup@example.com", Password: "password123", Role: string(models.RoleLandlord),
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAuthenticate(t *testing.T) {
	repo, _ := newUserRepo(t)

	registered, err := repo.Register(RegisterInput{
		Name: "Tina", Email: "tina@example.com", Password: "password123", Role: string(models.RoleTenant),
	})
	require.NoError(t, err)

	user, err := repo.Authenticate("tina@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	// Unknown email and wrong password are indistinguishable.
	_, err = repo.Authenticate("tina@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, err = repo.Authenticate("nobody@example.com", "password123")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestUpdateProfileMergesFields(t *testing.T) {
	repo, _ := newUserRepo(t)
	tenant := createUser(t, repo.db, models.RoleTenant)

	moveIn := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	updated, err := repo.UpdateProfile(tenant.ID, models.RoleTenant, map[string]interface{}{
		"bio":                   "new bio",
		"budget_min":            600,
		"budget_max":            900,
		"flatmate_move_in_date": moveIn,
		"is_actively_looking":   true,
	}, nil, false)
	require.NoError(t, err)

	assert.Equal(t, tenant.Name, updated.Name, "untouched fields survive")
	assert.Equal(t, "new bio", updated.Bio)
	require.NotNil(t, updated.BudgetMin)
	assert.Equal(t, 600, *updated.BudgetMin)
	assert.True(t, updated.IsActivelyLooking)
}

func TestUpdateProfileIgnoresLandlordFieldsForTenants(t *testing.T) {
	repo, _ := newUserRepo(t)
	tenant := createUser(t, repo.db, models.RoleTenant)

	updated, err := repo.UpdateProfile(tenant.ID, models.RoleTenant, map[string]interface{}{
		"bio":              "hello",
		"property_name":    "Not My House",
		"property_address": "0 Nowhere",
	}, nil, false)
	require.NoError(t, err)
	assert.Empty(t, updated.PropertyName)
	assert.Empty(t, updated.PropertyAddress)

	_, err = repo.UpdateProfile(tenant.ID, models.RoleTenant, map[string]interface{}{
		"property_name": "still gated",
	}, nil, false)
	assert.ErrorIs(t, err, apperrors.ErrValidation, "nothing left to update once gated fields are dropped")
}

func TestUpdateProfilePicture(t *testing.T) {
	repo, store := newUserRepo(t)
	tenant := createUser(t, repo.db, models.RoleTenant)

	first, err := repo.UpdateProfile(tenant.ID, models.RoleTenant,
		map[string]interface{}{}, &storage.Upload{Filename: "me.png", Data: []byte("png")}, false)
	require.NoError(t, err)
	assert.Contains(t, first.ProfilePictureURL, "/uploads/profiles/")
	assert.True(t, store.Exists(first.ProfilePictureURL))

	second, err := repo.UpdateProfile(tenant.ID, models.RoleTenant,
		map[string]interface{}{}, &storage.Upload{Filename: "me2.png", Data: []byte("png2")}, false)
	require.NoError(t, err)
	assert.False(t, store.Exists(first.ProfilePictureURL), "replaced file is cleaned up")
	assert.True(t, store.Exists(second.ProfilePictureURL))

	cleared, err := repo.UpdateProfile(tenant.ID, models.RoleTenant,
		map[string]interface{}{}, nil, true)
	require.NoError(t, err)
	assert.Empty(t, cleared.ProfilePictureURL)
	assert.False(t, store.Exists(second.ProfilePictureURL))
}

func TestDeleteAccount(t *testing.T) {
	repo, _ := newUserRepo(t)
	tenant := createUser(t, repo.db, models.RoleTenant)

	require.NoError(t, repo.DeleteAccount(tenant.ID))
	_, err := repo.Get(tenant.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.ErrorIs(t, repo.DeleteAccount(tenant.ID), apperrors.ErrNotFound)
}

func TestFavorites(t *testing.T) {
	repo, store := newUserRepo(t)
	listings := NewListingRepository(repo.db, store, zerolog.Nop())

	landlord := createUser(t, repo.db, models.RoleLandlord)
	tenant := createUser(t, repo.db, models.RoleTenant)
	available := createListing(t, listings, landlord.ID, nil, "WiFi")
	retired := createListing(t, listings, landlord.ID, nil)

	assert.ErrorIs(t, repo.AddFavorite(tenant.ID, 9999), apperrors.ErrNotFound)

	require.NoError(t, repo.AddFavorite(tenant.ID, available.ID))
	assert.ErrorIs(t, repo.AddFavorite(tenant.ID, available.ID), apperrors.ErrConflict)
	assert.True(t, repo.IsFavorite(tenant.ID, available.ID))

	require.NoError(t, repo.AddFavorite(tenant.ID, retired.ID))
	require.NoError(t, listings.SetStatus(retired.ID, landlord.ID, string(models.ListingUnavailable)))

	// Only still-available listings show up in the saved list.
	favorites, err := repo.ListFavorites(tenant.ID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, available.ID, favorites[0].ListingID)
	assert.Equal(t, landlord.Name, favorites[0].Listing.Landlord.Name)
	require.Len(t, favorites[0].Listing.Amenities, 1)

	require.NoError(t, repo.RemoveFavorite(tenant.ID, available.ID))
	assert.ErrorIs(t, repo.RemoveFavorite(tenant.ID, available.ID), apperrors.ErrNotFound)
	assert.False(t, repo.IsFavorite(tenant.ID, available.ID))
}

func TestFlatmateSearch(t *testing.T) {
	repo, _ := newUserRepo(t)

	seeker := func(locations string, budgetMin, budgetMax int, moveIn time.Time, looking bool) *models.User {
		u := createUser(t, repo.db, models.RoleTenant)
		require.NoError(t, repo.db.Model(u).Updates(map[string]interface{}{
			"preferred_locations":   locations,
			"budget_min":            budgetMin,
			"budget_max":            budgetMax,
			"flatmate_move_in_date": moveIn,
			"is_actively_looking":   looking,
		}).Error)
		return u
	}

	october := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	december := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	downtown := seeker("Downtown, Riverside", 500, 800, october, true)
	uptown := seeker("Uptown", 900, 1200, december, true)
	seeker("Downtown", 500, 800, october, false) // not actively looking

	t.Run("only actively looking users appear", func(t *testing.T) {
		users, total, err := repo.FlatmateSearch(FlatmateSearchParams{})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		require.Len(t, users, 2)
	})

	t.Run("location substring", func(t *testing.T) {
		users, _, err := repo.FlatmateSearch(FlatmateSearchParams{Locations: "riverside"})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, downtown.ID, users[0].ID)
	})

	t.Run("budget ranges match on overlap", func(t *testing.T) {
		// 750..950 overlaps both 500..800 and 900..1200.
		qmin, qmax := 750, 950
		_, total, err := repo.FlatmateSearch(FlatmateSearchParams{BudgetMin: &qmin, BudgetMax: &qmax})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)

		// 1300+ is above everyone's maximum.
		qmin = 1300
		_, total, err = repo.FlatmateSearch(FlatmateSearchParams{BudgetMin: &qmin})
		require.NoError(t, err)
		assert.EqualValues(t, 0, total)
	})

	t.Run("move-in date lower bound", func(t *testing.T) {
		cutoff := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
		users, _, err := repo.FlatmateSearch(FlatmateSearchParams{MoveInAfter: &cutoff})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, uptown.ID, users[0].ID)
	})
}
