package repository

import (
	"context"
	"errors"
	"fmt"

	"bookshelf/internal/http-api/models"

	"gorm.io/gorm"
)

// BookRepository persists books and their embedded ratings.
type BookRepository interface {
	GetAll(ctx context.Context) ([]models.Book, error)
	GetByID(ctx context.Context, id string) (*models.Book, error)
	TopRated(ctx context.Context, limit int) ([]models.Book, error)
	Create(ctx context.Context, book *models.Book) error
	// Update writes the metadata and image columns if the stored version still
	// equals book.Version, then bumps book.Version.
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id string) error
	// AddRating inserts the rating and stores the new average in one
	// transaction, conditioned on the book version the caller read.
	AddRating(ctx context.Context, book *models.Book, rating models.Rating, average float64) error
}

// bookRepository is the GORM implementation of BookRepository.
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a BookRepository backed by db.
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

// GetAll returns every book with its ratings, oldest first.
func (r *bookRepository) GetAll(ctx context.Context) ([]models.Book, error) {
	list := []models.Book{}
	if err := r.db.WithContext(ctx).
		Preload("Ratings", orderRatings).
		Order("created_at asc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return list, nil
}

// GetByID loads one book and its ratings; ErrNotFound if absent.
func (r *bookRepository) GetByID(ctx context.Context, id string) (*models.Book, error) {
	var b models.Book
	if err := r.db.WithContext(ctx).
		Preload("Ratings", orderRatings).
		First(&b, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &b, nil
}

// TopRated orders by average descending; equal averages keep creation order.
func (r *bookRepository) TopRated(ctx context.Context, limit int) ([]models.Book, error) {
	list := []models.Book{}
	if err := r.db.WithContext(ctx).
		Preload("Ratings", orderRatings).
		Order("average_rating desc").
		Order("created_at asc").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("top rated books: %w", err)
	}
	return list, nil
}

// Create inserts the book. ID and version are filled by the model hooks and defaults.
func (r *bookRepository) Create(ctx context.Context, b *models.Book) error {
	// ratings are never created together with the book
	if err := r.db.WithContext(ctx).Omit("Ratings").Create(b).Error; err != nil {
		return fmt.Errorf("create book: %w", translateError(err))
	}
	return nil
}

// Update is a compare-and-swap on version. ErrStaleVersion means another
// write got there first; ErrNotFound means the row is gone.
func (r *bookRepository) Update(ctx context.Context, b *models.Book) error {
	res := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ? AND version = ?", b.ID, b.Version).
		Updates(map[string]any{
			"title":          b.Title,
			"author":         b.Author,
			"year":           b.Year,
			"genre":          b.Genre,
			"image_url":      b.ImageURL,
			"image_filename": b.ImageFilename,
			"version":        gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return fmt.Errorf("update book: %w", translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return r.missingOrStale(ctx, b.ID)
	}
	b.Version++
	return nil
}

// Delete removes the book; its ratings go with it through ON DELETE CASCADE.
func (r *bookRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Book{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete book: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddRating bumps the version and average first so a stale caller fails
// before its rating row is inserted.
func (r *bookRepository) AddRating(ctx context.Context, b *models.Book, rating models.Rating, average float64) error {
	rating.BookID = b.ID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Book{}).
			Where("id = ? AND version = ?", b.ID, b.Version).
			Updates(map[string]any{
				"average_rating": average,
				"version":        gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return fmt.Errorf("update average: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStaleVersion
		}
		if err := tx.Create(&rating).Error; err != nil {
			return fmt.Errorf("insert rating: %w", translateError(err))
		}
		return nil
	})
	if errors.Is(err, ErrStaleVersion) {
		return r.missingOrStale(ctx, b.ID)
	}
	if err != nil {
		return err
	}
	b.Version++
	return nil
}

// missingOrStale tells a deleted row apart from a version mismatch after a
// conditional write touched nothing.
func (r *bookRepository) missingOrStale(ctx context.Context, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Book{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("check book: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrStaleVersion
}

func orderRatings(db *gorm.DB) *gorm.DB {
	return db.Order("ratings.created_at asc")
}
