package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path"

	"bookshelf/internal/http-api/dto"
	"bookshelf/internal/http-api/models"
	"bookshelf/internal/http-api/repository"
)

const (
	MinGrade = 0
	MaxGrade = 5

	DefaultTopRatedLimit = 3

	// attempts for a write that lost a version race
	maxWriteAttempts = 3
)

// BookCache holds the best-rated list. *cache.BookCache implements it.
type BookCache interface {
	GetBestRated(ctx context.Context, limit int) ([]models.Book, bool, error)
	// Generation changes on every Invalidate.
	Generation(ctx context.Context) (int64, error)
	// SetBestRated stores books only if the generation still equals gen.
	SetBestRated(ctx context.Context, limit int, gen int64, books []models.Book) error
	Invalidate(ctx context.Context) error
}

// BookService is the book catalogue: reads, owner-only writes and ratings.
type BookService interface {
	ListAll(ctx context.Context) ([]models.Book, error)
	GetByID(ctx context.Context, id string) (*models.Book, error)
	TopRated(ctx context.Context, limit int) ([]models.Book, error)
	Create(ctx context.Context, ownerID string, in dto.BookRequest, img Upload) (*models.Book, error)
	Update(ctx context.Context, requesterID, id string, patch dto.UpdateBookRequest, img *Upload) (*models.Book, error)
	Delete(ctx context.Context, requesterID, id string) error
	AddRating(ctx context.Context, raterID, bookID string, grade int) (*models.Book, error)
}

type bookService struct {
	repo    repository.BookRepository
	images  ImageService
	cache   BookCache
	baseURL string
	logger  *slog.Logger
}

// NewBookService wires the catalogue. A nil cache disables caching and a
// nil logger falls back to slog.Default.
func NewBookService(repo repository.BookRepository, images ImageService, cache BookCache, publicBaseURL string, logger *slog.Logger) BookService {
	if cache == nil {
		cache = noopCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &bookService{
		repo:    repo,
		images:  images,
		cache:   cache,
		baseURL: publicBaseURL,
		logger:  logger,
	}
}

// ComputeAverage is the mean grade rounded to one decimal, 0 for no ratings.
func ComputeAverage(ratings []models.Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Grade
	}
	return math.Round(float64(sum)/float64(len(ratings))*10) / 10
}

// ListAll returns every book in creation order.
func (s *bookService) ListAll(ctx context.Context) ([]models.Book, error) {
	return s.repo.GetAll(ctx)
}

// GetByID returns ErrBookNotFound for an unknown id.
func (s *bookService) GetByID(ctx context.Context, id string) (*models.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return book, nil
}

// TopRated serves the best-rated list from the cache and fills it on a miss.
// Cache failures are logged and fall through to the repository.
func (s *bookService) TopRated(ctx context.Context, limit int) ([]models.Book, error) {
	if limit <= 0 {
		limit = DefaultTopRatedLimit
	}

	books, ok, err := s.cache.GetBestRated(ctx, limit)
	if err != nil {
		s.logger.Warn("cache_read_failed", "limit", limit, "error", err)
	}
	if ok {
		return books, nil
	}

	// the generation is read before the query so a mutation committed
	// meanwhile makes the fill a no-op
	gen, genErr := s.cache.Generation(ctx)
	if genErr != nil {
		s.logger.Warn("cache_read_failed", "limit", limit, "error", genErr)
	}

	books, err = s.repo.TopRated(ctx, limit)
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		return books, nil
	}
	if err := s.cache.SetBestRated(ctx, limit, gen, books); err != nil {
		s.logger.Warn("cache_write_failed", "limit", limit, "error", err)
	}
	return books, nil
}

// Create validates the fields, stores the cover and inserts the book owned
// by ownerID. The stored cover is removed again if the insert fails.
func (s *bookService) Create(ctx context.Context, ownerID string, in dto.BookRequest, img Upload) (*models.Book, error) {
	book := in.ToModel()
	if err := validateBook(&book); err != nil {
		return nil, err
	}

	filename, err := s.images.Store(ctx, img)
	if err != nil {
		return nil, err
	}

	book.UserID = ownerID
	book.ImageFilename = filename
	book.ImageURL = s.imageURL(filename)
	book.AverageRating = 0
	book.Ratings = []models.Rating{}

	if err := s.repo.Create(ctx, &book); err != nil {
		s.removeImage(ctx, filename)
		return nil, err
	}

	s.invalidate(ctx)
	return &book, nil
}

// Update applies patch for the owner only. A new cover replaces the old one
// after the write succeeds; on failure the new file is removed instead.
func (s *bookService) Update(ctx context.Context, requesterID, id string, patch dto.UpdateBookRequest, img *Upload) (*models.Book, error) {
	book, err := s.getOwned(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}

	// reject a bad patch before any image work
	preview := *book
	patch.ApplyTo(&preview)
	if err := validateBook(&preview); err != nil {
		return nil, err
	}
	if img == nil && patch.IsEmpty() {
		return book, nil
	}

	var newFile string
	if img != nil {
		if newFile, err = s.images.Store(ctx, *img); err != nil {
			return nil, err
		}
	}

	for attempt := 1; ; attempt++ {
		oldFile := storedFilename(book)
		patch.ApplyTo(book)
		if newFile != "" {
			book.ImageFilename = newFile
			book.ImageURL = s.imageURL(newFile)
		}

		err = s.repo.Update(ctx, book)
		if err == nil {
			if newFile != "" && oldFile != "" && oldFile != newFile {
				s.removeImage(ctx, oldFile)
			}
			s.invalidate(ctx)
			return book, nil
		}

		if !errors.Is(err, repository.ErrStaleVersion) || attempt == maxWriteAttempts {
			break
		}
		s.logger.Debug("book_update_retry", "book_id", id, "attempt", attempt)
		if book, err = s.getOwned(ctx, requesterID, id); err != nil {
			break
		}
	}

	if newFile != "" {
		s.removeImage(ctx, newFile)
	}
	if errors.Is(err, repository.ErrStaleVersion) {
		return nil, ErrConcurrentUpdate
	}
	return nil, mapRepoError(err)
}

// Delete removes an owned book and then its cover, best effort.
func (s *bookService) Delete(ctx context.Context, requesterID, id string) error {
	book, err := s.getOwned(ctx, requesterID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, book.ID); err != nil {
		return mapRepoError(err)
	}

	s.removeImage(ctx, storedFilename(book))
	s.invalidate(ctx)
	return nil
}

// AddRating appends a rating and recomputes the average. The write is
// conditioned on the version read, a lost race re-reads and retries.
func (s *bookService) AddRating(ctx context.Context, raterID, bookID string, grade int) (*models.Book, error) {
	if grade < MinGrade || grade > MaxGrade {
		return nil, ErrInvalidRating
	}

	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		book, err := s.repo.GetByID(ctx, bookID)
		if err != nil {
			return nil, mapRepoError(err)
		}
		if book.RatedBy(raterID) {
			return nil, ErrAlreadyRated
		}

		rating := models.Rating{BookID: book.ID, UserID: raterID, Grade: grade}
		ratings := make([]models.Rating, 0, len(book.Ratings)+1)
		ratings = append(ratings, book.Ratings...)
		ratings = append(ratings, rating)
		average := ComputeAverage(ratings)

		err = s.repo.AddRating(ctx, book, rating, average)
		switch {
		case err == nil:
			book.Ratings = ratings
			book.AverageRating = average
			s.invalidate(ctx)
			return book, nil
		case errors.Is(err, repository.ErrStaleVersion):
			s.logger.Debug("rating_retry", "book_id", bookID, "attempt", attempt)
			continue
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrAlreadyRated
		default:
			return nil, mapRepoError(err)
		}
	}

	s.logger.Warn("rating_gave_up", "book_id", bookID, "attempts", maxWriteAttempts)
	return nil, ErrConcurrentUpdate
}

func (s *bookService) getOwned(ctx context.Context, requesterID, id string) (*models.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if book.UserID != requesterID {
		return nil, ErrForbidden
	}
	return book, nil
}

func (s *bookService) imageURL(filename string) string {
	return s.baseURL + "/images/" + filename
}

func (s *bookService) removeImage(ctx context.Context, filename string) {
	if err := s.images.Remove(ctx, filename); err != nil {
		s.logger.Warn("image_delete_failed", "filename", filename, "error", err)
	}
}

func (s *bookService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("cache_invalidate_failed", "error", err)
	}
}

// storedFilename falls back to the URL for rows written before image_filename existed.
func storedFilename(b *models.Book) string {
	if b.ImageFilename != "" {
		return b.ImageFilename
	}
	if b.ImageURL == "" {
		return ""
	}
	return path.Base(b.ImageURL)
}

func validateBook(b *models.Book) error {
	if b.Title == "" || b.Author == "" || b.Genre == "" {
		return fmt.Errorf("%w: title, author and genre are required", ErrInvalidInput)
	}
	return nil
}

func mapRepoError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrBookNotFound
	}
	return err
}

type noopCache struct{}

func (noopCache) GetBestRated(context.Context, int) ([]models.Book, bool, error) {
	return nil, false, nil
}

func (noopCache) Generation(context.Context) (int64, error) { return 0, nil }

func (noopCache) SetBestRated(context.Context, int, int64, []models.Book) error { return nil }

func (noopCache) Invalidate(context.Context) error { return nil }
