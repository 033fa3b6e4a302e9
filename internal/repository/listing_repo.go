package repository

import (
	"errors"
	"strings"
	"time"

	"roomshare/backend/internal/apperrors"
	"roomshare/backend/internal/models"
	"roomshare/backend/internal/storage"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListingRepository persists listings and their amenity associations and
// answers the public search queries.
type ListingRepository struct {
	db    *gorm.DB
	store *storage.Store
	log   zerolog.Logger
}

func NewListingRepository(db *gorm.DB, store *storage.Store, log zerolog.Logger) *ListingRepository {
	return &ListingRepository{db: db, store: store, log: log}
}

// ListingFields are the scalar fields of a listing supplied on create/update.
type ListingFields struct {
	Title         string
	Description   string
	Address       string
	City          string
	State         string
	ZipCode       string
	RoomType      string
	Rent          float64
	Deposit       float64
	AvailableDate time.Time
	LeaseTerms    string
	PetPolicy     string
	SmokingPolicy string
	Status        string // Update only; ignored on Create.
}

func (f ListingFields) validate(requireStatus bool) error {
	switch {
	case f.Title == "", f.Address == "", f.City == "", f.State == "", f.ZipCode == "":
		return apperrors.Wrap(apperrors.ErrValidation, "missing required listing fields")
	case !models.ValidRoomType(f.RoomType):
		return apperrors.Wrapf(apperrors.ErrValidation, "invalid room type %q", f.RoomType)
	case f.Rent <= 0:
		return apperrors.Wrap(apperrors.ErrValidation, "rent must be positive")
	case f.AvailableDate.IsZero():
		return apperrors.Wrap(apperrors.ErrValidation, "available date is required")
	case requireStatus && !models.ValidListingStatus(f.Status):
		return apperrors.Wrapf(apperrors.ErrValidation, "invalid status %q", f.Status)
	}
	return nil
}

func (f ListingFields) apply(l *models.Listing) {
	l.Title = f.Title
	l.Description = f.Description
	l.Address = f.Address
	l.City = f.City
	l.State = f.State
	l.ZipCode = f.ZipCode
	l.RoomType = models.RoomType(f.RoomType)
	l.Rent = f.Rent
	l.Deposit = f.Deposit
	l.AvailableDate = f.AvailableDate
	l.LeaseTerms = f.LeaseTerms
	l.PetPolicy = f.PetPolicy
	l.SmokingPolicy = f.SmokingPolicy
}

// Create inserts a new listing with status Available. If an image is
// supplied it is written to the blob store first and the row references its
// path; should the insert then fail, the orphaned file is accepted as a
// non-fatal leak. Amenity names are matched leniently against the catalog.
func (r *ListingRepository) Create(landlordID uint, f ListingFields, image *storage.Upload, amenityNames []string) (*models.Listing, error) {
	if err := f.validate(false); err != nil {
		return nil, err
	}

	listing := models.Listing{
		LandlordID: landlordID,
		Status:     models.ListingAvailable,
	}
	f.apply(&listing)

	if image != nil {
		url, err := r.store.Save(storage.CategoryListings, landlordID, *image)
		if err != nil {
			// Image persistence failure is not fatal to the listing itself.
			r.log.Warn().Err(err).Uint("landlord_id", landlordID).Msg("failed to save listing image")
		} else {
			listing.ImageURL = url
		}
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		matched, err := matchAmenities(tx, amenityNames)
		if err != nil {
			return err
		}
		listing.Amenities = matched
		return tx.Create(&listing).Error
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(listing.ID)
}

// Update replaces a listing's scalar fields, amenity set and (optionally) its
// image as one atomic transaction. The previous image file is deleted only
// after the transaction commits; that deletion is best-effort.
func (r *ListingRepository) Update(listingID, landlordID uint, f ListingFields, image *storage.Upload, amenityNames []string) (*models.Listing, error) {
	if err := f.validate(true); err != nil {
		return nil, err
	}

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

	oldImageURL := listing.ImageURL
	newImageURL := ""
	if image != nil {
		url, err := r.store.Save(storage.CategoryListings, landlordID, *image)
		if err != nil {
			r.log.Warn().Err(err).Uint("listing_id", listingID).Msg("failed to save replacement listing image")
		} else {
			newImageURL = url
		}
	}

	f.apply(&listing)
	listing.Status = models.ListingStatus(f.Status)
	if newImageURL != "" {
		listing.ImageURL = newImageURL
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&listing).Error; err != nil {
			return err
		}
		// Replace rather than merge: the supplied name list is the new truth.
		matched, err := matchAmenities(tx, amenityNames)
		if err != nil {
			return err
		}
		return tx.Model(&listing).Association("Amenities").Replace(toAmenityValues(matched))
	})
	if err != nil {
		return nil, err
	}

	// The stale blob is outside transactional guarantees on purpose.
	if newImageURL != "" && oldImageURL != "" {
		r.store.DeleteLogged(oldImageURL)
	}

	return r.GetByID(listing.ID)
}

// Delete removes a listing after an ownership check. Dependent applications,
// favorites and amenity links go with it; messages keep their rows with the
// application reference nulled.
func (r *ListingRepository) Delete(listingID, landlordID uint) error {
	var listing models.Listing
	if err := r.db.First(&listing, listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Wrap(apperrors.ErrNotFound, "listing not found")
		}
		return err
	}
	if listing.LandlordID != landlordID {
		return apperrors.Wrap(apperrors.ErrForbidden, "not the owner of this listing")
	}

	if err := r.db.Select("Amenities").Unscoped().Delete(&listing).Error; err != nil {
		return err
	}

	r.store.DeleteLogged(listing.ImageURL)
	return nil
}

// SetStatus performs the ownership-checked partial status update.
func (r *ListingRepository) SetStatus(listingID, landlordID uint, status string) error {
	if !models.ValidListingStatus(status) {
		return apperrors.Wrapf(apperrors.ErrValidation, "invalid status %q", status)
	}

	var listing models.Listing
	if err := r.db.First(&listing, listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Wrap(apperrors.ErrNotFound, "listing not found")
		}
		return err
	}
	if listing.LandlordID != landlordID {
		return apperrors.Wrap(apperrors.ErrForbidden, "not the owner of this listing")
	}

	return r.db.Model(&listing).Update("status", models.ListingStatus(status)).Error
}

// GetByID returns a listing with its owner contact info and amenities.
func (r *ListingRepository) GetByID(listingID uint) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.Preload("Amenities").Preload("Landlord").First(&listing, listingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "listing not found")
		}
		return nil, err
	}
	return &listing, nil
}

// Sort keys accepted by Search.
const (
	SortRentAsc  = "rent_asc"
	SortRentDesc = "rent_desc"
	SortDateNew  = "date_new"
)

// SearchParams are the public search filters. Nil pointer fields mean
// "no filter"; zero strings likewise.
type SearchParams struct {
	City        string
	State       string
	ZipCode     string
	Address     string
	MinRent     *float64
	MaxRent     *float64
	RoomType    string
	AvailableBy *time.Time // listings available on or before this date
	AmenityIDs  []uint     // listings must have ALL of these
	SortBy      string
	Page        int
	PageSize    int
}

// Search returns Available listings matching the filters plus the total count
// for pagination. The amenity filter has AND semantics: a listing qualifies
// only when its amenity rows cover the whole requested set.
func (r *ListingRepository) Search(p SearchParams) ([]models.Listing, int64, error) {
	applyFilters := func(q *gorm.DB) *gorm.DB {
		q = q.Where("status = ?", models.ListingAvailable)
		if p.City != "" {
			q = q.Where("LOWER(city) LIKE ?", "%"+strings.ToLower(p.City)+"%")
		}
		if p.State != "" {
			q = q.Where("LOWER(state) LIKE ?", "%"+strings.ToLower(p.State)+"%")
		}
		if p.ZipCode != "" {
			q = q.Where("LOWER(zip_code) LIKE ?", "%"+strings.ToLower(p.ZipCode)+"%")
		}
		if p.Address != "" {
			q = q.Where("LOWER(address) LIKE ?", "%"+strings.ToLower(p.Address)+"%")
		}
		if p.MinRent != nil {
			q = q.Where("rent >= ?", *p.MinRent)
		}
		if p.MaxRent != nil {
			q = q.Where("rent <= ?", *p.MaxRent)
		}
		if p.RoomType != "" {
			q = q.Where("room_type = ?", p.RoomType)
		}
		if p.AvailableBy != nil {
			q = q.Where("available_date <= ?", *p.AvailableBy)
		}
		if len(p.AmenityIDs) > 0 {
			q = q.Where(
				"id IN (SELECT listing_id FROM listing_amenities WHERE amenity_id IN ? GROUP BY listing_id HAVING COUNT(DISTINCT amenity_id) = ?)",
				p.AmenityIDs, len(p.AmenityIDs),
			)
		}
		return q
	}

	var totalItems int64
	if err := applyFilters(r.db.Model(&models.Listing{})).Count(&totalItems).Error; err != nil {
		return nil, 0, err
	}

	query := applyFilters(r.db.Model(&models.Listing{}))
	switch p.SortBy {
	case SortRentAsc:
		query = query.Order("rent ASC")
	case SortRentDesc:
		query = query.Order("rent DESC")
	case SortDateNew:
		query = query.Order("available_date ASC, created_at DESC")
	default:
		query = query.Order("created_at DESC")
	}

	page := p.Page
	if page < 1 {
		page = 1
	}
	pageSize := p.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	var listings []models.Listing
	err := query.
		Preload("Amenities").
		Preload("Landlord").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}

	return listings, totalItems, nil
}

// ListByLandlord returns all of a landlord's own listings, newest first.
func (r *ListingRepository) ListByLandlord(landlordID uint) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.
		Preload("Amenities").
		Where("landlord_id = ?", landlordID).
		Order("created_at DESC").
		Find(&listings).Error
	return listings, err
}

// ListAmenities returns the fixed amenity catalog.
func (r *ListingRepository) ListAmenities() ([]models.Amenity, error) {
	var amenities []models.Amenity
	err := r.db.Order("name ASC").Find(&amenities).Error
	return amenities, err
}

// matchAmenities resolves amenity names against the catalog, case
// insensitively. Unmatched names are silently dropped: amenity matching is
// deliberately lenient, a bad name never fails a listing write. A failed
// catalog query is still an error and must abort the surrounding transaction.
func matchAmenities(tx *gorm.DB, names []string) ([]*models.Amenity, error) {
	if len(names) == 0 {
		return nil, nil
	}

	lowered := make([]string, 0, len(names))
	for _, n := range names {
		if trimmed := strings.TrimSpace(n); trimmed != "" {
			lowered = append(lowered, strings.ToLower(trimmed))
		}
	}
	if len(lowered) == 0 {
		return nil, nil
	}

	var matched []*models.Amenity
	if err := tx.Where("LOWER(name) IN ?", lowered).Find(&matched).Error; err != nil {
		return nil, err
	}
	return matched, nil
}

func toAmenityValues(amenities []*models.Amenity) []models.Amenity {
	out := make([]models.Amenity, 0, len(amenities))
	for _, a := range amenities {
		if a != nil {
			out = append(out, *a)
		}
	}
	return out
}
