package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"roomshare/backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the database connection, runs migrations and seeds the
// amenity catalog. The returned handle is injected into repositories.
func Connect(dsn string) (*gorm.DB, error) {
	// Configure GORM logger
	customLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: customLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate runs schema migrations and seeds the amenity catalog.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Amenity{},
		&models.Listing{},
		&models.Application{},
		&models.Message{},
		&models.Favorite{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return SeedAmenities(db)
}

// SeedAmenities inserts the fixed amenity catalog, skipping names that
// already exist.
func SeedAmenities(db *gorm.DB) error {
	catalog := []models.Amenity{
		{Name: "WiFi", Description: "Wireless internet access"},
		{Name: "Parking", Description: "On-site or street parking"},
		{Name: "Laundry", Description: "In-unit or shared laundry"},
		{Name: "Furnished", Description: "Room comes furnished"},
		{Name: "Air Conditioning", Description: "Cooling in the room or unit"},
		{Name: "Heating", Description: "Central or room heating"},
		{Name: "Kitchen Access", Description: "Shared or private kitchen"},
		{Name: "Private Bathroom", Description: "Bathroom not shared with flatmates"},
		{Name: "Balcony", Description: "Private or shared balcony"},
		{Name: "Gym", Description: "On-site gym or fitness room"},
		{Name: "Utilities Included", Description: "Utilities covered by the rent"},
	}

	for _, a := range catalog {
		if err := db.Where("name = ?", a.Name).FirstOrCreate(&a).Error; err != nil {
			return fmt.Errorf("seed amenity %q: %w", a.Name, err)
		}
	}
	return nil
}
