package models

import "gorm.io/gorm"

// Amenity is a fixed catalog feature attachable to listings (e.g. "WiFi").
// The catalog is seeded at startup; listings reference it by name.
type Amenity struct {
	gorm.Model
	Name        string `gorm:"size:100;unique;not null"`
	Description string
}
