package service

import "errors"

// Outcomes the HTTP layer maps onto status codes.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidRating      = errors.New("rating must be between 0 and 5")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("not the owner of this book")
	ErrBookNotFound       = errors.New("book not found")
	ErrEmailInUse         = errors.New("email already in use")
	ErrAlreadyRated       = errors.New("user has already rated this book")
	ErrConcurrentUpdate   = errors.New("book was modified concurrently, retry")
	ErrImageProcessing    = errors.New("image processing failed")
	ErrImageTooLarge      = errors.New("image exceeds the upload size limit")
)
