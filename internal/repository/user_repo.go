package repository

import (
	"errors"
	"strings"
	"time"

	"roomshare/backend/internal/apperrors"
	"roomshare/backend/internal/models"
	"roomshare/backend/internal/storage"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserRepository is the credential store plus profile, favorites and
// flatmate search.
type UserRepository struct {
	db    *gorm.DB
	store *storage.Store
	log   zerolog.Logger
}

func NewUserRepository(db *gorm.DB, store *storage.Store, log zerolog.Logger) *UserRepository {
	return &UserRepository{db: db, store: store, log: log}
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	PhoneNumber     string
	Role            string
	Bio             string
	PropertyName    string
	PropertyAddress string
}

// Register creates a new account with a hashed secret. Role-specific fields
// from the wrong role are dropped rather than rejected.
func (r *UserRepository) Register(in RegisterInput) (*models.User, error) {
	role := models.Role(in.Role)
	if role != models.RoleTenant && role != models.RoleLandlord {
		return nil, apperrors.Wrapf(apperrors.ErrValidation, "role must be %s or %s", models.RoleTenant, models.RoleLandlord)
	}

	var existing int64
	if err := r.db.Model(&models.User{}).Where("email = ?", in.Email).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, apperrors.Wrap(apperrors.ErrConflict, "user with this email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hashed),
		PhoneNumber:  in.PhoneNumber,
		Role:         role,
	}
	switch role {
	case models.RoleTenant:
		user.Bio = in.Bio
	case models.RoleLandlord:
		user.PropertyName = in.PropertyName
		user.PropertyAddress = in.PropertyAddress
	}

	if err := r.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate verifies an email/password pair. Unknown email and wrong
// password are indistinguishable to the caller.
func (r *UserRepository) Authenticate(email, password string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrUnauthorized, "invalid credentials")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnauthorized, "invalid credentials")
	}
	return &user, nil
}

// Get returns a user by ID.
func (r *UserRepository) Get(userID uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "user not found")
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile merge-updates the supplied columns only. Landlord-gated
// fields are silently ignored for other roles. A new image replaces the old
// one (write new, update reference, delete old after commit); clearImage
// removes the picture without a replacement.
func (r *UserRepository) UpdateProfile(userID uint, role models.Role, fields map[string]interface{}, image *storage.Upload, clearImage bool) (*models.User, error) {
	if role != models.RoleLandlord {
		delete(fields, "property_name")
		delete(fields, "property_address")
	}

	if len(fields) == 0 && image == nil && !clearImage {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "no fields provided for update")
	}

	var user models.User
	if err := r.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "user not found")
		}
		return nil, err
	}

	oldImageURL := user.ProfilePictureURL
	imageReplaced := false
	if image != nil {
		url, err := r.store.Save(storage.CategoryProfiles, userID, *image)
		if err != nil {
			return nil, err
		}
		fields["profile_picture_url"] = url
		imageReplaced = true
	} else if clearImage {
		fields["profile_picture_url"] = ""
		imageReplaced = true
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&user).Updates(fields).Error
	})
	if err != nil {
		return nil, err
	}

	if imageReplaced && oldImageURL != "" {
		r.store.DeleteLogged(oldImageURL)
	}

	return r.Get(userID)
}

// DeleteAccount removes a user. Owned listings, applications and favorites
// cascade away; messages follow the user cascade.
func (r *UserRepository) DeleteAccount(userID uint) error {
	var user models.User
	if err := r.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Wrap(apperrors.ErrNotFound, "user not found")
		}
		return err
	}

	if err := r.db.Unscoped().Delete(&user).Error; err != nil {
		return err
	}

	r.store.DeleteLogged(user.ProfilePictureURL)
	return nil
}

// AddFavorite saves a listing for a tenant. Duplicates are rejected.
func (r *UserRepository) AddFavorite(tenantID, listingID uint) error {
	var listing models.Listing
	if err := r.db.First(&listing, listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Wrap(apperrors.ErrNotFound, "listing not found")
		}
		return err
	}

	var existing int64
	err := r.db.Model(&models.Favorite{}).
		Where("tenant_id = ? AND listing_id = ?", tenantID, listingID).
		Count(&existing).Error
	if err != nil {
		return err
	}
	if existing > 0 {
		return apperrors.Wrap(apperrors.ErrConflict, "listing already in favorites")
	}

	return r.db.Create(&models.Favorite{TenantID: tenantID, ListingID: listingID}).Error
}

// RemoveFavorite unsaves a listing, reporting ErrNotFound when it was not
// saved in the first place.
func (r *UserRepository) RemoveFavorite(tenantID, listingID uint) error {
	result := r.db.
		Where("tenant_id = ? AND listing_id = ?", tenantID, listingID).
		Delete(&models.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "favorite not found or already removed")
	}
	return nil
}

// IsFavorite reports whether a tenant has saved a listing.
func (r *UserRepository) IsFavorite(tenantID, listingID uint) bool {
	var count int64
	r.db.Model(&models.Favorite{}).
		Where("tenant_id = ? AND listing_id = ?", tenantID, listingID).
		Count(&count)
	return count > 0
}

// ListFavorites returns the tenant's saved listings that are still Available,
// most recently saved first.
func (r *UserRepository) ListFavorites(tenantID uint) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := r.db.
		Joins("JOIN listings ON listings.id = favorites.listing_id").
		Where("favorites.tenant_id = ? AND listings.status = ?", tenantID, models.ListingAvailable).
		Order("favorites.saved_at DESC").
		Preload("Listing").
		Preload("Listing.Amenities").
		Preload("Listing.Landlord").
		Find(&favorites).Error
	return favorites, err
}

// FlatmateSearchParams filter the public flatmate search. The budget filter
// has range-overlap semantics, not containment: a candidate matches when
// their budget range intersects the queried one.
type FlatmateSearchParams struct {
	Locations   string
	BudgetMin   *int
	BudgetMax   *int
	MoveInAfter *time.Time // users looking to move in on or after this date
	Page        int
	PageSize    int
}

// FlatmateSearch returns actively-looking users matching the filters plus
// the total count, newest first.
func (r *UserRepository) FlatmateSearch(p FlatmateSearchParams) ([]models.User, int64, error) {
	applyFilters := func(q *gorm.DB) *gorm.DB {
		q = q.Where("is_actively_looking = ?", true)
		if p.Locations != "" {
			q = q.Where("LOWER(preferred_locations) LIKE ?", "%"+strings.ToLower(p.Locations)+"%")
		}
		if p.BudgetMin != nil {
			q = q.Where("budget_max >= ?", *p.BudgetMin)
		}
		if p.BudgetMax != nil {
			q = q.Where("budget_min <= ?", *p.BudgetMax)
		}
		if p.MoveInAfter != nil {
			q = q.Where("flatmate_move_in_date >= ?", *p.MoveInAfter)
		}
		return q
	}

	var totalItems int64
	if err := applyFilters(r.db.Model(&models.User{})).Count(&totalItems).Error; err != nil {
		return nil, 0, err
	}

	page := p.Page
	if page < 1 {
		page = 1
	}
	pageSize := p.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	var users []models.User
	err := applyFilters(r.db.Model(&models.User{})).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, totalItems, nil
}
