package models

import (
	"time"

	"gorm.io/gorm"
)

// RoomType enumerates the kinds of rooms a listing can advertise.
type RoomType string

const (
	RoomTypeSingle RoomType = "Single"
	RoomTypeDouble RoomType = "Double"
	RoomTypeStudio RoomType = "Studio"
	RoomTypeShared RoomType = "Shared"
)

// ListingStatus is the publication state of a listing. Transitions are
// free-form; only Available listings appear in public search.
type ListingStatus string

const (
	ListingAvailable   ListingStatus = "Available"
	ListingPending     ListingStatus = "Pending"
	ListingUnavailable ListingStatus = "Unavailable"
)

// ValidRoomType reports whether s is a known room type.
func ValidRoomType(s string) bool {
	switch RoomType(s) {
	case RoomTypeSingle, RoomTypeDouble, RoomTypeStudio, RoomTypeShared:
		return true
	}
	return false
}

// ValidListingStatus reports whether s is a known listing status.
func ValidListingStatus(s string) bool {
	switch ListingStatus(s) {
	case ListingAvailable, ListingPending, ListingUnavailable:
		return true
	}
	return false
}

// Listing represents a rentable room advertised by a landlord.
type Listing struct {
	gorm.Model
	LandlordID uint `gorm:"not null;index"`

	Title       string `gorm:"size:255;not null"`
	Description string
	Address     string `gorm:"size:512;not null"`
	City        string `gorm:"size:255;not null;index"`
	State       string `gorm:"size:255;not null"`
	ZipCode     string `gorm:"size:20;not null"`

	RoomType      RoomType  `gorm:"size:50;not null"`
	Rent          float64   `gorm:"not null"`
	Deposit       float64
	AvailableDate time.Time `gorm:"not null"`
	LeaseTerms    string    `gorm:"size:255"`
	PetPolicy     string    `gorm:"size:50"`
	SmokingPolicy string    `gorm:"size:50"`

	Status   ListingStatus `gorm:"size:50;not null;default:'Available';index"`
	ImageURL string        `gorm:"size:512"`

	Landlord  User       `gorm:"foreignKey:LandlordID;constraint:OnDelete:CASCADE"`
	Amenities []*Amenity `gorm:"many2many:listing_amenities;constraint:OnDelete:CASCADE"`
}
