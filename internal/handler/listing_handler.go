package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"roomshare/backend/internal/apperrors"
	"roomshare/backend/internal/auth"
	"roomshare/backend/internal/models"
	"roomshare/backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ListingHandler serves the listing CRUD, status and search endpoints.
type ListingHandler struct {
	listings *repository.ListingRepository
	users    *repository.UserRepository
	log      zerolog.Logger
}

func NewListingHandler(listings *repository.ListingRepository, users *repository.UserRepository, log zerolog.Logger) *ListingHandler {
	return &ListingHandler{listings: listings, users: users, log: log}
}

// region --- DTOs ---

// ListingForm is the multipart form used for create and update. The image
// travels as a separate "roomImage" file part.
type ListingForm struct {
	Title         string   `form:"Title" binding:"required"`
	Description   string   `form:"Description"`
	Address       string   `form:"Address" binding:"required"`
	City          string   `form:"City" binding:"required"`
	State         string   `form:"State" binding:"required"`
	ZipCode       string   `form:"ZipCode" binding:"required"`
	RoomType      string   `form:"RoomType" binding:"required"`
	Rent          float64  `form:"Rent" binding:"required"`
	Deposit       float64  `form:"Deposit"`
	AvailableDate string   `form:"AvailableDate" binding:"required"` // YYYY-MM-DD
	LeaseTerms    string   `form:"LeaseTerms"`
	PetPolicy     string   `form:"PetPolicy"`
	SmokingPolicy string   `form:"SmokingPolicy"`
	Amenities     []string `form:"Amenities"`
	Status        string   `form:"Status"` // update only
}

// StatusInput carries the new status for the partial status update.
type StatusInput struct {
	Status string `json:"status" binding:"required" example:"Unavailable"`
}

// AmenityResponse is one catalog amenity.
type AmenityResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LandlordContact is the owner info joined onto a public listing.
type LandlordContact struct {
	ID                uint   `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	PhoneNumber       string `json:"phoneNumber"`
	ProfilePictureURL string `json:"profilePictureUrl"`
}

// ListingResponse is the full public representation of a listing.
type ListingResponse struct {
	ID            uint              `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Address       string            `json:"address"`
	City          string            `json:"city"`
	State         string            `json:"state"`
	ZipCode       string            `json:"zipCode"`
	RoomType      string            `json:"roomType"`
	Rent          float64           `json:"rent"`
	Deposit       float64           `json:"deposit"`
	AvailableDate string            `json:"availableDate"`
	LeaseTerms    string            `json:"leaseTerms"`
	PetPolicy     string            `json:"petPolicy"`
	SmokingPolicy string            `json:"smokingPolicy"`
	Status        string            `json:"status"`
	ImageURL      string            `json:"imageUrl"`
	CreatedAt     time.Time         `json:"createdAt"`
	Landlord      LandlordContact   `json:"landlord"`
	Amenities     []AmenityResponse `json:"amenities"`
	IsFavorite    *bool             `json:"isFavorite,omitempty"`
}

// MyListingResponse is the owner's dashboard row, with amenity names
// aggregated into one display string.
type MyListingResponse struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Address        string    `json:"address"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	ZipCode        string    `json:"zipCode"`
	RoomType       string    `json:"roomType"`
	Rent           float64   `json:"rent"`
	AvailableDate  string    `json:"availableDate"`
	Status         string    `json:"status"`
	ImageURL       string    `json:"imageUrl"`
	CreatedAt      time.Time `json:"createdAt"`
	AmenitiesNames string    `json:"amenitiesNames"`
}

func newAmenityResponses(amenities []*models.Amenity) []AmenityResponse {
	out := make([]AmenityResponse, 0, len(amenities))
	for _, a := range amenities {
		if a != nil {
			out = append(out, AmenityResponse{ID: a.ID, Name: a.Name, Description: a.Description})
		}
	}
	return out
}

func newListingResponse(l models.Listing) ListingResponse {
	return ListingResponse{
		ID:            l.ID,
		Title:         l.Title,
		Description:   l.Description,
		Address:       l.Address,
		City:          l.City,
		State:         l.State,
		ZipCode:       l.ZipCode,
		RoomType:      string(l.RoomType),
		Rent:          l.Rent,
		Deposit:       l.Deposit,
		AvailableDate: l.AvailableDate.Format("2006-01-02"),
		LeaseTerms:    l.LeaseTerms,
		PetPolicy:     l.PetPolicy,
		SmokingPolicy: l.SmokingPolicy,
		Status:        string(l.Status),
		ImageURL:      l.ImageURL,
		CreatedAt:     l.CreatedAt,
		Landlord: LandlordContact{
			ID:                l.Landlord.ID,
			Name:              l.Landlord.Name,
			Email:             l.Landlord.Email,
			PhoneNumber:       l.Landlord.PhoneNumber,
			ProfilePictureURL: l.Landlord.ProfilePictureURL,
		},
		Amenities: newAmenityResponses(l.Amenities),
	}
}

func newMyListingResponse(l models.Listing) MyListingResponse {
	names := make([]string, 0, len(l.Amenities))
	for _, a := range l.Amenities {
		if a != nil {
			names = append(names, a.Name)
		}
	}
	return MyListingResponse{
		ID:             l.ID,
		Title:          l.Title,
		Address:        l.Address,
		City:           l.City,
		State:          l.State,
		ZipCode:        l.ZipCode,
		RoomType:       string(l.RoomType),
		Rent:           l.Rent,
		AvailableDate:  l.AvailableDate.Format("2006-01-02"),
		Status:         string(l.Status),
		ImageURL:       l.ImageURL,
		CreatedAt:      l.CreatedAt,
		AmenitiesNames: strings.Join(names, ", "),
	}
}

// endregion

func (f ListingForm) fields() (repository.ListingFields, error) {
	availableDate, err := time.Parse("2006-01-02", f.AvailableDate)
	if err != nil {
		return repository.ListingFields{}, apperrors.Wrap(apperrors.ErrValidation, "AvailableDate must be YYYY-MM-DD")
	}
	return repository.ListingFields{
		Title:         f.Title,
		Description:   f.Description,
		Address:       f.Address,
		City:          f.City,
		State:         f.State,
		ZipCode:       f.ZipCode,
		RoomType:      f.RoomType,
		Rent:          f.Rent,
		Deposit:       f.Deposit,
		AvailableDate: availableDate,
		LeaseTerms:    f.LeaseTerms,
		PetPolicy:     f.PetPolicy,
		SmokingPolicy: f.SmokingPolicy,
		Status:        f.Status,
	}, nil
}

// Create godoc
// @Summary      Create a listing
// @Description  Creates a new room listing with optional image and amenities. Landlord only.
// @Tags         listings
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        Title formData string true "Listing title"
// @Param        roomImage formData file false "Room image"
// @Success      201  {object}  ListingResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Landlord access required"
// @Router       /listings [post]
func (h *ListingHandler) Create(c *gin.Context) {
	var form ListingForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields, err := form.fields()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	image, err := formImage(c, "roomImage")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	listing, err := h.listings.Create(auth.UserID(c), fields, image, form.Amenities)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, newListingResponse(*listing))
}

// Update godoc
// @Summary      Update a listing
// @Description  Replaces a listing's fields, amenity set and optionally its image. Owner only.
// @Tags         listings
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Listing ID"
// @Success      200  {object}  ListingResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Not the owner"
// @Failure      404  {object}  ErrorResponse "Listing not found"
// @Router       /listings/{id} [put]
func (h *ListingHandler) Update(c *gin.Context) {
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	var form ListingForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if form.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required when updating a listing"})
		return
	}

	fields, err := form.fields()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	image, err := formImage(c, "roomImage")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	listing, err := h.listings.Update(uint(listingID), auth.UserID(c), fields, image, form.Amenities)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, newListingResponse(*listing))
}

// Delete godoc
// @Summary      Delete a listing
// @Description  Deletes a listing and its dependent records. Owner only.
// @Tags         listings
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Listing ID"
// @Success      200 {object} map[string]string "{"message": "Listing deleted"}"
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /listings/{id} [delete]
func (h *ListingHandler) Delete(c *gin.Context) {
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	if err := h.listings.Delete(uint(listingID), auth.UserID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Listing deleted"})
}

// SetStatus godoc
// @Summary      Set listing status
// @Description  Updates just the status of a listing. Owner only.
// @Tags         listings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int         true "Listing ID"
// @Param        input body StatusInput true "New status"
// @Success      200 {object} map[string]string
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /listings/{id}/status [patch]
func (h *ListingHandler) SetStatus(c *gin.Context) {
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	var input StatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.listings.SetStatus(uint(listingID), auth.UserID(c), input.Status); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Listing status updated to " + input.Status})
}

// GetByID godoc
// @Summary      Get a listing
// @Description  Public listing detail with owner contact and amenities. When a tenant is logged in, the favorite flag is included.
// @Tags         listings
// @Produce      json
// @Param        id path int true "Listing ID"
// @Success      200 {object} ListingResponse
// @Failure      404 {object} ErrorResponse "Listing not found"
// @Router       /listings/{id} [get]
func (h *ListingHandler) GetByID(c *gin.Context) {
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	listing, err := h.listings.GetByID(uint(listingID))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response := newListingResponse(*listing)
	if viewerID := auth.UserID(c); viewerID != 0 && auth.Role(c) == string(models.RoleTenant) {
		fav := h.users.IsFavorite(viewerID, listing.ID)
		response.IsFavorite = &fav
	}

	c.JSON(http.StatusOK, response)
}

// Search godoc
// @Summary      Search listings
// @Description  Public filtered, sorted and paginated search over Available listings.
// @Tags         listings
// @Produce      json
// @Param        city          query string false "City substring"
// @Param        state         query string false "State substring"
// @Param        zipCode       query string false "Zip code substring"
// @Param        address       query string false "Address substring"
// @Param        minPrice      query number false "Minimum rent"
// @Param        maxPrice      query number false "Maximum rent"
// @Param        roomType      query string false "Exact room type"
// @Param        availableDate query string false "Available on or before (YYYY-MM-DD)"
// @Param        amenities     query string false "Comma-separated amenity IDs, ALL required"
// @Param        sortBy        query string false "rent_asc | rent_desc | date_new"
// @Param        page          query int    false "Page number" default(1)
// @Param        limit         query int    false "Items per page" default(10)
// @Success      200 {object} PaginatedResponse[ListingResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /listings [get]
func (h *ListingHandler) Search(c *gin.Context) {
	page, limit := pageParams(c.DefaultQuery("page", "1"), c.DefaultQuery("limit", "10"))

	params := repository.SearchParams{
		City:     c.Query("city"),
		State:    c.Query("state"),
		ZipCode:  c.Query("zipCode"),
		Address:  c.Query("address"),
		RoomType: c.Query("roomType"),
		SortBy:   c.Query("sortBy"),
		Page:     page,
		PageSize: limit,
	}

	if v := c.Query("minPrice"); v != "" {
		minPrice, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid minPrice"})
			return
		}
		params.MinRent = &minPrice
	}
	if v := c.Query("maxPrice"); v != "" {
		maxPrice, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid maxPrice"})
			return
		}
		params.MaxRent = &maxPrice
	}
	if v := c.Query("availableDate"); v != "" {
		availableBy, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid availableDate, expected YYYY-MM-DD"})
			return
		}
		params.AvailableBy = &availableBy
	}
	for _, s := range splitCommaSeparated(c.Query("amenities")) {
		id, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			continue
		}
		params.AmenityIDs = append(params.AmenityIDs, uint(id))
	}

	listings, totalItems, err := h.listings.Search(params)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	responses := make([]ListingResponse, 0, len(listings))
	for _, l := range listings {
		responses = append(responses, newListingResponse(l))
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(responses, totalItems, page, limit))
}

// MyListings godoc
// @Summary      List own listings
// @Description  Returns the authenticated landlord's listings, newest first.
// @Tags         listings
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} MyListingResponse
// @Failure      403 {object} ErrorResponse "Landlord access required"
// @Router       /listings/my-listings [get]
func (h *ListingHandler) MyListings(c *gin.Context) {
	listings, err := h.listings.ListByLandlord(auth.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	responses := make([]MyListingResponse, 0, len(listings))
	for _, l := range listings {
		responses = append(responses, newMyListingResponse(l))
	}
	c.JSON(http.StatusOK, responses)
}

// GetAmenities godoc
// @Summary      List the amenity catalog
// @Tags         amenities
// @Produce      json
// @Success      200 {array} AmenityResponse
// @Router       /amenities [get]
func (h *ListingHandler) GetAmenities(c *gin.Context) {
	amenities, err := h.listings.ListAmenities()
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	responses := make([]AmenityResponse, 0, len(amenities))
	for _, a := range amenities {
		responses = append(responses, AmenityResponse{ID: a.ID, Name: a.Name, Description: a.Description})
	}
	c.JSON(http.StatusOK, responses)
}

// Helper to split comma-separated strings
func splitCommaSeparated(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
