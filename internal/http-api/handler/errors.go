package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookshelf/internal/http-api/service"
)

const serverErrorMessage = "Server error"

// statusFor maps service errors onto an HTTP status and a client-safe message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrImageTooLarge):
		return http.StatusBadRequest, service.ErrImageTooLarge.Error()
	case errors.Is(err, service.ErrInvalidRating):
		return http.StatusBadRequest, service.ErrInvalidRating.Error()
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrEmailInUse):
		return http.StatusBadRequest, service.ErrEmailInUse.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, service.ErrInvalidCredentials.Error()
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "Unauthorized request!"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "Unauthorized request!"
	case errors.Is(err, service.ErrBookNotFound):
		return http.StatusNotFound, service.ErrBookNotFound.Error()
	case errors.Is(err, service.ErrAlreadyRated):
		return http.StatusConflict, service.ErrAlreadyRated.Error()
	case errors.Is(err, service.ErrConcurrentUpdate):
		return http.StatusConflict, service.ErrConcurrentUpdate.Error()
	default:
		return http.StatusInternalServerError, serverErrorMessage
	}
}

// respondError records err for the request logger and writes {"error": msg}.
func respondError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, err error, msg string) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
