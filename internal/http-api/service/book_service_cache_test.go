package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/cache"
	"bookshelf/internal/http-api/models"
)

// A rating committed while the best-rated list is being loaded must not be
// hidden behind the list read before it.
func TestTopRated_RatingDuringFillIsNotCachedStale(t *testing.T) {
	mr := miniredis.RunT(t)
	bookCache, err := cache.NewBookCache("redis://"+mr.Addr(), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { bookCache.Close() })

	repo := new(MockBookRepository)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewBookService(repo, new(MockImageService), bookCache, baseURL, logger)
	ctx := context.Background()

	before := *ownedBook()
	after := *ownedBook()
	after.AverageRating = 5
	after.Ratings = []models.Rating{{BookID: "book-1", UserID: "rater", Grade: 5}}

	repo.On("GetByID", mock.Anything, "book-1").Return(ownedBook(), nil).Once()
	repo.On("AddRating", mock.Anything, mock.Anything, mock.Anything, 5.0).Return(nil).Once()

	repo.On("TopRated", mock.Anything, 3).
		Run(func(mock.Arguments) {
			_, err := svc.AddRating(ctx, "rater", "book-1", 5)
			require.NoError(t, err)
		}).
		Return([]models.Book{before}, nil).Once()

	got, err := svc.TopRated(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got[0].AverageRating)

	// nothing from the interrupted fill was kept
	_, ok, err := bookCache.GetBestRated(ctx, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	repo.On("TopRated", mock.Anything, 3).Return([]models.Book{after}, nil).Once()
	got, err = svc.TopRated(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got[0].AverageRating)

	cached, ok, err := bookCache.GetBestRated(ctx, 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5.0, cached[0].AverageRating)
	repo.AssertExpectations(t)
}
