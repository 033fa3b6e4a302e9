package handler

import (
	"net/http"
	"strconv"
	"time"

	"roomshare/backend/internal/auth"
	"roomshare/backend/internal/models"
	"roomshare/backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ApplicationHandler serves the rental application lifecycle.
type ApplicationHandler struct {
	applications *repository.ApplicationRepository
	log          zerolog.Logger
}

func NewApplicationHandler(applications *repository.ApplicationRepository, log zerolog.Logger) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, log: log}
}

// region --- DTOs ---

// ApplyInput is the body for submitting an application.
type ApplyInput struct {
	ListingID uint   `json:"listingId" binding:"required"`
	Message   string `json:"message"`
}

// ApplicationStatusInput carries the landlord's decision.
type ApplicationStatusInput struct {
	Status string `json:"status" binding:"required,oneof=Accepted Rejected" example:"Accepted"`
}

// ApplicantSummary is the tenant contact info joined for the landlord view.
type ApplicantSummary struct {
	ID                uint   `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	PhoneNumber       string `json:"phoneNumber"`
	ProfilePictureURL string `json:"profilePictureUrl"`
	Bio               string `json:"bio"`
}

// AppliedListingSummary is the listing summary joined for the tenant view.
type AppliedListingSummary struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Status  string `json:"status"`
}

// ApplicationResponse is one application with whichever side is joined.
type ApplicationResponse struct {
	ID        uint                   `json:"id"`
	ListingID uint                   `json:"listingId"`
	TenantID  uint                   `json:"tenantId"`
	Message   string                 `json:"message"`
	Status    string                 `json:"status"`
	AppliedAt time.Time              `json:"appliedAt"`
	Tenant    *ApplicantSummary      `json:"tenant,omitempty"`
	Listing   *AppliedListingSummary `json:"listing,omitempty"`
}

func newApplicationResponse(a models.Application) ApplicationResponse {
	resp := ApplicationResponse{
		ID:        a.ID,
		ListingID: a.ListingID,
		TenantID:  a.TenantID,
		Message:   a.Message,
		Status:    string(a.Status),
		AppliedAt: a.CreatedAt,
	}
	if a.Tenant.ID != 0 {
		resp.Tenant = &ApplicantSummary{
			ID:                a.Tenant.ID,
			Name:              a.Tenant.Name,
			Email:             a.Tenant.Email,
			PhoneNumber:       a.Tenant.PhoneNumber,
			ProfilePictureURL: a.Tenant.ProfilePictureURL,
			Bio:               a.Tenant.Bio,
		}
	}
	if a.Listing.ID != 0 {
		resp.Listing = &AppliedListingSummary{
			ID:      a.Listing.ID,
			Title:   a.Listing.Title,
			Address: a.Listing.Address,
			City:    a.Listing.City,
			State:   a.Listing.State,
			Status:  string(a.Listing.Status),
		}
	}
	return resp
}

// endregion

// Apply godoc
// @Summary      Apply for a room
// @Description  Submits an application for an Available listing. Tenant only; one application per listing.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body ApplyInput true "Application"
// @Success      201 {object} ApplicationResponse
// @Failure      400 {object} ErrorResponse "Listing not available"
// @Failure      403 {object} ErrorResponse "Tenant access required"
// @Failure      404 {object} ErrorResponse "Listing not found"
// @Failure      409 {object} ErrorResponse "Already applied"
// @Router       /applications [post]
func (h *ApplicationHandler) Apply(c *gin.Context) {
	var input ApplyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	application, err := h.applications.Apply(auth.UserID(c), input.ListingID, input.Message)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, newApplicationResponse(*application))
}

// ListForListing godoc
// @Summary      List applications for a listing
// @Description  Returns a listing's applications with tenant contact info, newest first. Owning landlord only.
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Listing ID"
// @Success      200 {array} ApplicationResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /applications/listing/{id} [get]
func (h *ApplicationHandler) ListForListing(c *gin.Context) {
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	applications, err := h.applications.ListForListing(uint(listingID), auth.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	responses := make([]ApplicationResponse, 0, len(applications))
	for _, a := range applications {
		responses = append(responses, newApplicationResponse(a))
	}
	c.JSON(http.StatusOK, responses)
}

// MyApplications godoc
// @Summary      List own applications
// @Description  Returns the authenticated tenant's applications with listing summaries, newest first.
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} ApplicationResponse
// @Failure      403 {object} ErrorResponse "Tenant access required"
// @Router       /applications/my-applications [get]
func (h *ApplicationHandler) MyApplications(c *gin.Context) {
	applications, err := h.applications.ListForTenant(auth.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	responses := make([]ApplicationResponse, 0, len(applications))
	for _, a := range applications {
		responses = append(responses, newApplicationResponse(a))
	}
	c.JSON(http.StatusOK, responses)
}

// UpdateStatus godoc
// @Summary      Accept or reject an application
// @Description  Sets an application to Accepted or Rejected. Owner of the listing only.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int                    true "Application ID"
// @Param        input body ApplicationStatusInput true "Decision"
// @Success      200 {object} ApplicationResponse
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /applications/{id}/status [patch]
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	applicationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	var input ApplicationStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	application, err := h.applications.UpdateStatus(uint(applicationID), auth.UserID(c), input.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, newApplicationResponse(*application))
}
