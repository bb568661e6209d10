package dto

import (
	"strings"

	"bookshelf/internal/http-api/models"
)

// BookRequest is the typed form of the multipart "book" field on POST /api/books.
// Owner, image and rating fields sent by clients are ignored.
type BookRequest struct {
	Title  string `json:"title" binding:"required"`
	Author string `json:"author" binding:"required"`
	Year   int    `json:"year" binding:"required"`
	Genre  string `json:"genre" binding:"required"`
}

// UpdateBookRequest is used for PUT /api/books/:id (partial updates allowed)
type UpdateBookRequest struct {
	Title  *string `json:"title,omitempty" binding:"omitempty,min=1"`
	Author *string `json:"author,omitempty" binding:"omitempty,min=1"`
	Year   *int    `json:"year,omitempty"`
	Genre  *string `json:"genre,omitempty" binding:"omitempty,min=1"`
}

// Converters
func (d BookRequest) ToModel() models.Book {
	return models.Book{
		Title:  strings.TrimSpace(d.Title),
		Author: strings.TrimSpace(d.Author),
		Year:   d.Year,
		Genre:  strings.TrimSpace(d.Genre),
	}
}

// ToPatch turns a full multipart payload into a patch touching every metadata field.
func (d BookRequest) ToPatch() UpdateBookRequest {
	m := d.ToModel()
	return UpdateBookRequest{
		Title:  &m.Title,
		Author: &m.Author,
		Year:   &m.Year,
		Genre:  &m.Genre,
	}
}

// ApplyTo copies the non-nil fields onto the book.
func (d UpdateBookRequest) ApplyTo(b *models.Book) {
	if d.Title != nil {
		b.Title = strings.TrimSpace(*d.Title)
	}
	if d.Author != nil {
		b.Author = strings.TrimSpace(*d.Author)
	}
	if d.Year != nil {
		b.Year = *d.Year
	}
	if d.Genre != nil {
		b.Genre = strings.TrimSpace(*d.Genre)
	}
}

// IsEmpty reports whether the patch changes nothing.
func (d UpdateBookRequest) IsEmpty() bool {
	return d.Title == nil && d.Author == nil && d.Year == nil && d.Genre == nil
}
