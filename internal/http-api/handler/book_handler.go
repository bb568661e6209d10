package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"

	"bookshelf/internal/http-api/dto"
	"bookshelf/internal/http-api/middleware"
	"bookshelf/internal/http-api/service"
)

const (
	requestTimeout = 5 * time.Second
	uploadTimeout  = 15 * time.Second

	// room for the "book" field and multipart framing on top of the image
	multipartOverhead = 1 << 20
)

type BookHandler struct {
	svc           service.BookService
	maxUploadSize int64
}

func NewBookHandler(svc service.BookService, maxUploadSize int64) *BookHandler {
	return &BookHandler{svc: svc, maxUploadSize: maxUploadSize}
}

// RegisterRoutes mounts the public reads and the authenticated writes.
func (h *BookHandler) RegisterRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/bestrating", h.BestRating)
	rg.GET("/:id", h.Get)

	rg.POST("", requireAuth, h.Create)
	rg.PUT("/:id", requireAuth, h.Update)
	rg.DELETE("/:id", requireAuth, h.Delete)
	rg.POST("/:id/rating", requireAuth, h.Rate)
}

func (h *BookHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	books, err := h.svc.ListAll(ctx)
	if err != nil {
		badRequest(c, err, "could not list books")
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *BookHandler) BestRating(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	books, err := h.svc.TopRated(ctx, service.DefaultTopRatedLimit)
	if err != nil {
		badRequest(c, err, "could not list best rated books")
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *BookHandler) Get(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	book, err := h.svc.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// Create expects multipart/form-data with a JSON "book" field and an "image" file.
func (h *BookHandler) Create(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	h.limitBody(c)

	raw, ok := c.GetPostForm("book")
	if !ok {
		respondError(c, h.formError(c, "book field is required"))
		return
	}
	var req dto.BookRequest
	if err := decodeField(raw, &req); err != nil {
		badRequest(c, err, "book must be a JSON object with title, author, year and genre")
		return
	}

	upload, err := h.readUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if upload == nil {
		respondError(c, fmt.Errorf("%w: image is required", service.ErrInvalidInput))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), uploadTimeout)
	defer cancel()

	if _, err := h.svc.Create(ctx, userID, req, *upload); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MessageResponse{Message: "Book created!"})
}

// Update accepts either a JSON patch or multipart with an optional "book"
// field and an optional "image" file.
func (h *BookHandler) Update(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)

	var patch dto.UpdateBookRequest
	var upload *service.Upload
	timeout := requestTimeout

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		h.limitBody(c)
		if raw, ok := c.GetPostForm("book"); ok {
			if err := decodeField(raw, &patch); err != nil {
				badRequest(c, err, "book must be a JSON object")
				return
			}
		} else if err := h.formError(c, ""); err != nil {
			respondError(c, err)
			return
		}
		var err error
		if upload, err = h.readUpload(c); err != nil {
			respondError(c, err)
			return
		}
		timeout = uploadTimeout
	} else if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err, "invalid book update")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	if _, err := h.svc.Update(ctx, userID, id, patch, upload); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Book updated!"})
}

func (h *BookHandler) Delete(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.Delete(ctx, userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Book deleted!"})
}

// Rate adds the caller's rating. A userId in the body is ignored.
func (h *BookHandler) Rate(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)

	var req dto.CreateRatingDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "rating is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	book, err := h.svc.AddRating(ctx, userID, id, *req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// bookID rejects ids that cannot name a stored book.
func bookID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		respondError(c, service.ErrBookNotFound)
		return "", false
	}
	return id, true
}

func (h *BookHandler) limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+multipartOverhead)
}

// formError reports why the multipart form could not be parsed. With an
// empty missing message a parsed form without the field is not an error.
func (h *BookHandler) formError(c *gin.Context, missing string) error {
	if _, err := c.MultipartForm(); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return service.ErrImageTooLarge
		}
		return fmt.Errorf("%w: malformed multipart body", service.ErrInvalidInput)
	}
	if missing == "" {
		return nil
	}
	return fmt.Errorf("%w: %s", service.ErrInvalidInput, missing)
}

// readUpload returns nil when no "image" part was sent.
func (h *BookHandler) readUpload(c *gin.Context) (*service.Upload, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, service.ErrImageTooLarge
		}
		return nil, fmt.Errorf("%w: malformed multipart body", service.ErrInvalidInput)
	}
	if fh.Size > h.maxUploadSize {
		return nil, service.ErrImageTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > h.maxUploadSize {
		return nil, service.ErrImageTooLarge
	}
	return &service.Upload{Filename: fh.Filename, Data: data}, nil
}

// decodeField parses a JSON form field and runs the binding validator on it.
func decodeField(raw string, obj any) error {
	if err := json.Unmarshal([]byte(raw), obj); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(obj)
}
