package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Book is a catalogued book with its embedded ratings.
// ImageFilename and Version are storage-only columns.
type Book struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID        string    `json:"userId" gorm:"type:uuid;not null;index"`
	Title         string    `json:"title" gorm:"not null"`
	Author        string    `json:"author" gorm:"not null"`
	ImageURL      string    `json:"imageUrl" gorm:"column:image_url;not null"`
	ImageFilename string    `json:"-" gorm:"column:image_filename;not null"`
	Year          int       `json:"year" gorm:"not null"`
	Genre         string    `json:"genre" gorm:"not null"`
	AverageRating float64   `json:"averageRating" gorm:"not null;default:0"`
	Version       int64     `json:"-" gorm:"not null;default:1"`
	CreatedAt     time.Time `json:"-" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"-" gorm:"autoUpdateTime"`

	// association
	Ratings []Rating `json:"ratings" gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE;"`
}

// BeforeCreate assigns an ID and the initial version.
func (b *Book) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.Version == 0 {
		b.Version = 1
	}
	return
}

// AfterFind keeps "ratings" as [] rather than null on the wire.
func (b *Book) AfterFind(tx *gorm.DB) (err error) {
	if b.Ratings == nil {
		b.Ratings = []Rating{}
	}
	return
}

// RatedBy reports whether userID already has a rating on the book.
func (b *Book) RatedBy(userID string) bool {
	for _, r := range b.Ratings {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

func (Book) TableName() string {
	return "books"
}
