package dto

// CreateRatingDTO for POST /api/books/:id/rating.
// UserID is accepted for compatibility with the web client but the rater
// always comes from the token.
type CreateRatingDTO struct {
	UserID string `json:"userId,omitempty"`
	Rating *int   `json:"rating" binding:"required"`
}
