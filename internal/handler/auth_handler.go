package handler

import (
	"net/http"

	"roomshare/backend/internal/repository"
	"roomshare/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	users     *repository.UserRepository
	jwtSecret string
	log       zerolog.Logger
}

func NewAuthHandler(users *repository.UserRepository, jwtSecret string, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{users: users, jwtSecret: jwtSecret, log: log}
}

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Name            string `json:"name" binding:"required" example:"Jane Doe"`
	Email           string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password        string `json:"password" binding:"required,min=8" example:"password123"`
	PhoneNumber     string `json:"phoneNumber" example:"555-0100"`
	UserType        string `json:"userType" binding:"required,oneof=Tenant Landlord" example:"Tenant"`
	Bio             string `json:"bio"`
	PropertyName    string `json:"propertyName"`
	PropertyAddress string `json:"propertyAddress"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// AuthResponse is returned from both register and login.
type AuthResponse struct {
	Token         string `json:"token"`
	UserID        uint   `json:"userId"`
	Name          string `json:"name"`
	UserType      string `json:"userType"`
	EmailVerified bool   `json:"emailVerified"`
}

// endregion

// Register godoc
// @Summary      Register a new user
// @Description  Creates a tenant or landlord account and returns a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  AuthResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(repository.RegisterInput{
		Name:            input.Name,
		Email:           input.Email,
		Password:        input.Password,
		PhoneNumber:     input.PhoneNumber,
		Role:            input.UserType,
		Bio:             input.Bio,
		PropertyName:    input.PropertyName,
		PropertyAddress: input.PropertyAddress,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	token, err := jwt.GenerateToken(h.jwtSecret, user.ID, string(user.Role))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Token:         token,
		UserID:        user.ID,
		Name:          user.Name,
		UserType:      string(user.Role),
		EmailVerified: user.EmailVerified,
	})
}

// Login godoc
// @Summary      Log in a user
// @Description  Authenticates with email and password and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  AuthResponse
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      500  {object}  ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(input.Email, input.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	token, err := jwt.GenerateToken(h.jwtSecret, user.ID, string(user.Role))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token:         token,
		UserID:        user.ID,
		Name:          user.Name,
		UserType:      string(user.Role),
		EmailVerified: user.EmailVerified,
	})
}
