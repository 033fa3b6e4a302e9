package handler

import (
	"net/http"
	"path/filepath"
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

// UserHandler serves profile management, favorites and flatmate search.
type UserHandler struct {
	users *repository.UserRepository
	log   zerolog.Logger
}

func NewUserHandler(users *repository.UserRepository, log zerolog.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

// region --- DTOs ---

// ProfileResponse is the authenticated user's own profile.
type ProfileResponse struct {
	UserID                uint       `json:"userId"`
	Name                  string     `json:"name"`
	Email                 string     `json:"email"`
	PhoneNumber           string     `json:"phoneNumber"`
	UserType              string     `json:"userType"`
	ProfilePictureURL     string     `json:"profilePictureUrl"`
	Bio                   string     `json:"bio"`
	PropertyName          string     `json:"propertyName"`
	PropertyAddress       string     `json:"propertyAddress"`
	EmailVerified         bool       `json:"emailVerified"`
	CreatedAt             time.Time  `json:"createdAt"`
	LookingForDescription string     `json:"lookingForDescription"`
	BudgetMin             *int       `json:"budgetMin"`
	BudgetMax             *int       `json:"budgetMax"`
	PreferredLocations    string     `json:"preferredLocations"`
	FlatmateMoveInDate    *time.Time `json:"flatmateMoveInDate"`
	IsActivelyLooking     bool       `json:"isActivelyLooking"`
}

// AddFavoriteInput is the body for saving a listing.
type AddFavoriteInput struct {
	ListingID uint `json:"listingId" binding:"required"`
}

// FavoriteResponse is one saved listing with its amenity names aggregated.
type FavoriteResponse struct {
	ListingID      uint      `json:"listingId"`
	Title          string    `json:"title"`
	Address        string    `json:"address"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	ZipCode        string    `json:"zipCode"`
	RoomType       string    `json:"roomType"`
	Rent           float64   `json:"rent"`
	Status         string    `json:"status"`
	ImageURL       string    `json:"imageUrl"`
	AmenitiesNames string    `json:"amenitiesNames"`
	LandlordName   string    `json:"landlordName"`
	SavedAt        time.Time `json:"savedAt"`
}

// FlatmateProfileResponse is one public flatmate-search result.
type FlatmateProfileResponse struct {
	UserID                uint       `json:"userId"`
	Name                  string     `json:"name"`
	ProfilePictureURL     string     `json:"profilePictureUrl"`
	Bio                   string     `json:"bio"`
	LookingForDescription string     `json:"lookingForDescription"`
	BudgetMin             *int       `json:"budgetMin"`
	BudgetMax             *int       `json:"budgetMax"`
	PreferredLocations    string     `json:"preferredLocations"`
	FlatmateMoveInDate    *time.Time `json:"flatmateMoveInDate"`
}

func newProfileResponse(u models.User) ProfileResponse {
	return ProfileResponse{
		UserID:                u.ID,
		Name:                  u.Name,
		Email:                 u.Email,
		PhoneNumber:           u.PhoneNumber,
		UserType:              string(u.Role),
		ProfilePictureURL:     u.ProfilePictureURL,
		Bio:                   u.Bio,
		PropertyName:          u.PropertyName,
		PropertyAddress:       u.PropertyAddress,
		EmailVerified:         u.EmailVerified,
		CreatedAt:             u.CreatedAt,
		LookingForDescription: u.LookingForDescription,
		BudgetMin:             u.BudgetMin,
		BudgetMax:             u.BudgetMax,
		PreferredLocations:    u.PreferredLocations,
		FlatmateMoveInDate:    u.FlatmateMoveInDate,
		IsActivelyLooking:     u.IsActivelyLooking,
	}
}

// endregion

// GetProfile godoc
// @Summary      Get own profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} ProfileResponse
// @Failure      404 {object} ErrorResponse
// @Router       /users/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.users.Get(auth.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(*user))
}

// allowed profile picture extensions, matching the upload filter of the web client
var allowedImageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}

// UpdateProfile godoc
// @Summary      Update own profile
// @Description  Merge-updates the supplied fields only. Accepts multipart form data with an optional "profileImage" file; sending an empty "ProfilePictureURL" field clears the picture.
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} ProfileResponse
// @Failure      400 {object} ErrorResponse
// @Router       /users/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID := auth.UserID(c)
	role := models.Role(auth.Role(c))

	fields := map[string]interface{}{}
	for form, column := range map[string]string{
		"Name":                  "name",
		"PhoneNumber":           "phone_number",
		"Bio":                   "bio",
		"PropertyName":          "property_name",
		"PropertyAddress":       "property_address",
		"LookingForDescription": "looking_for_description",
		"PreferredLocations":    "preferred_locations",
	} {
		if v, ok := c.GetPostForm(form); ok {
			fields[column] = v
		}
	}
	for form, column := range map[string]string{
		"BudgetMin": "budget_min",
		"BudgetMax": "budget_max",
	} {
		v, ok := c.GetPostForm(form)
		if !ok {
			continue
		}
		if v == "" {
			fields[column] = nil
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": form + " must be a number"})
			return
		}
		fields[column] = n
	}
	if v, ok := c.GetPostForm("FlatmateMoveInDate"); ok {
		if v == "" {
			fields["flatmate_move_in_date"] = nil
		} else {
			date, err := time.Parse("2006-01-02", v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "FlatmateMoveInDate must be YYYY-MM-DD"})
				return
			}
			fields["flatmate_move_in_date"] = date
		}
	}
	if v, ok := c.GetPostForm("IsActivelyLooking"); ok {
		looking, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "IsActivelyLooking must be a boolean"})
			return
		}
		fields["is_actively_looking"] = looking
	}

	image, err := formImage(c, "profileImage")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if image != nil && !allowedImageExts[strings.ToLower(filepath.Ext(image.Filename))] {
		respondError(c, h.log, apperrors.Wrap(apperrors.ErrValidation, "file type not supported, only JPEG, PNG, GIF are allowed"))
		return
	}

	// Explicit clear marker: an empty ProfilePictureURL field with no new file.
	clearImage := false
	if v, ok := c.GetPostForm("ProfilePictureURL"); ok && v == "" && image == nil {
		clearImage = true
	}

	user, err := h.users.UpdateProfile(userID, role, fields, image, clearImage)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, newProfileResponse(*user))
}

// DeleteProfile godoc
// @Summary      Delete own account
// @Description  Deletes the account; owned listings, applications, messages and favorites cascade away.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]string
// @Failure      404 {object} ErrorResponse
// @Router       /users/profile [delete]
func (h *UserHandler) DeleteProfile(c *gin.Context) {
	if err := h.users.DeleteAccount(auth.UserID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User profile deleted successfully"})
}

// AddFavorite godoc
// @Summary      Save a listing
// @Tags         favorites
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body AddFavoriteInput true "Listing to save"
// @Success      201 {object} map[string]string
// @Failure      403 {object} ErrorResponse "Tenant access required"
// @Failure      404 {object} ErrorResponse "Listing not found"
// @Failure      409 {object} ErrorResponse "Already saved"
// @Router       /users/favorites [post]
func (h *UserHandler) AddFavorite(c *gin.Context) {
	var input AddFavoriteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.AddFavorite(auth.UserID(c), input.ListingID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Listing added to favorites"})
}

// RemoveFavorite godoc
// @Summary      Unsave a listing
// @Tags         favorites
// @Produce      json
// @Security     BearerAuth
// @Param        listingId path int true "Listing ID"
// @Success      200 {object} map[string]string
// @Failure      404 {object} ErrorResponse "Favorite not found"
// @Router       /users/favorites/{listingId} [delete]
func (h *UserHandler) RemoveFavorite(c *gin.Context) {
	listingID, err := strconv.ParseUint(c.Param("listingId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	if err := h.users.RemoveFavorite(auth.UserID(c), uint(listingID)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Listing removed from favorites"})
}

// ListFavorites godoc
// @Summary      List saved listings
// @Description  Returns the tenant's saved listings that are still Available, most recently saved first.
// @Tags         favorites
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} FavoriteResponse
// @Router       /users/favorites [get]
func (h *UserHandler) ListFavorites(c *gin.Context) {
	favorites, err := h.users.ListFavorites(auth.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	responses := make([]FavoriteResponse, 0, len(favorites))
	for _, f := range favorites {
		names := make([]string, 0, len(f.Listing.Amenities))
		for _, a := range f.Listing.Amenities {
			if a != nil {
				names = append(names, a.Name)
			}
		}
		responses = append(responses, FavoriteResponse{
			ListingID:      f.ListingID,
			Title:          f.Listing.Title,
			Address:        f.Listing.Address,
			City:           f.Listing.City,
			State:          f.Listing.State,
			ZipCode:        f.Listing.ZipCode,
			RoomType:       string(f.Listing.RoomType),
			Rent:           f.Listing.Rent,
			Status:         string(f.Listing.Status),
			ImageURL:       f.Listing.ImageURL,
			AmenitiesNames: strings.Join(names, ", "),
			LandlordName:   f.Listing.Landlord.Name,
			SavedAt:        f.SavedAt,
		})
	}
	c.JSON(http.StatusOK, responses)
}

// FlatmateSearch godoc
// @Summary      Search flatmate profiles
// @Description  Public paginated search over actively-looking users. The budget filter matches overlapping ranges.
// @Tags         users
// @Produce      json
// @Param        preferred_locations query string false "Location substring"
// @Param        budget_min          query int    false "Minimum budget"
// @Param        budget_max          query int    false "Maximum budget"
// @Param        move_in_date        query string false "Moving in on or after (YYYY-MM-DD)"
// @Param        page                query int    false "Page number" default(1)
// @Param        limit               query int    false "Items per page" default(10)
// @Success      200 {object} PaginatedResponse[FlatmateProfileResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /users/flatmate-search [get]
func (h *UserHandler) FlatmateSearch(c *gin.Context) {
	page, limit := pageParams(c.DefaultQuery("page", "1"), c.DefaultQuery("limit", "10"))

	params := repository.FlatmateSearchParams{
		Locations: c.Query("preferred_locations"),
		Page:      page,
		PageSize:  limit,
	}
	if v := c.Query("budget_min"); v != "" {
		budgetMin, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid budget_min"})
			return
		}
		params.BudgetMin = &budgetMin
	}
	if v := c.Query("budget_max"); v != "" {
		budgetMax, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid budget_max"})
			return
		}
		params.BudgetMax = &budgetMax
	}
	if v := c.Query("move_in_date"); v != "" {
		moveIn, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid move_in_date, expected YYYY-MM-DD"})
			return
		}
		params.MoveInAfter = &moveIn
	}

	users, totalItems, err := h.users.FlatmateSearch(params)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	responses := make([]FlatmateProfileResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, FlatmateProfileResponse{
			UserID:                u.ID,
			Name:                  u.Name,
			ProfilePictureURL:     u.ProfilePictureURL,
			Bio:                   u.Bio,
			LookingForDescription: u.LookingForDescription,
			BudgetMin:             u.BudgetMin,
			BudgetMax:             u.BudgetMax,
			PreferredLocations:    u.PreferredLocations,
			FlatmateMoveInDate:    u.FlatmateMoveInDate,
		})
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(responses, totalItems, page, limit))
}
