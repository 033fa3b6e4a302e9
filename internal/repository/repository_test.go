package repository

import (
	"fmt"
	"testing"
	"time"

	"roomshare/backend/internal/database"
	"roomshare/backend/internal/models"
	"roomshare/backend/internal/storage"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestStore() *storage.Store {
	return storage.NewWithFs(afero.NewMemMapFs(), "/data/uploads", zerolog.Nop())
}

var testUserSeq int

func createUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()
	testUserSeq++
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{
		Name:         fmt.Sprintf("User %d", testUserSeq),
		Email:        fmt.Sprintf("user%d@example.com", testUserSeq),
		PasswordHash: string(hashed),
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func validListingFields() ListingFields {
	return ListingFields{
		Title:         "Sunny room near campus",
		Address:       "12 College Walk",
		City:          "Springfield",
		State:         "IL",
		ZipCode:       "62704",
		RoomType:      string(models.RoomTypeSingle),
		Rent:          750,
		AvailableDate: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
}

func createListing(t *testing.T, repo *ListingRepository, landlordID uint, mutate func(*ListingFields), amenities ...string) *models.Listing {
	t.Helper()
	fields := validListingFields()
	if mutate != nil {
		mutate(&fields)
	}
	listing, err := repo.Create(landlordID, fields, nil, amenities)
	require.NoError(t, err)
	return listing
}
