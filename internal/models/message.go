package models

import (
	"time"

	"gorm.io/gorm"
)

// Message is a direct message between two users, optionally tied to an
// application for context. Sender and receiver must differ.
type Message struct {
	gorm.Model
	SenderID   uint   `gorm:"not null;index"`
	ReceiverID uint   `gorm:"not null;index"`
	Content    string `gorm:"not null"`

	// Optional application context; nulled when the application is deleted.
	ApplicationID *uint `gorm:"index"`

	Read   bool      `gorm:"not null;default:false"`
	SentAt time.Time `gorm:"not null;index"`

	Sender      User         `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE"`
	Receiver    User         `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE"`
	Application *Application `gorm:"foreignKey:ApplicationID;constraint:OnDelete:SET NULL"`
}

// BeforeCreate stamps SentAt if the caller did not set it.
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.SentAt.IsZero() {
		m.SentAt = time.Now()
	}
	return nil
}
