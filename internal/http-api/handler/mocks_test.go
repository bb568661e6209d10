package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"bookshelf/internal/http-api/dto"
	"bookshelf/internal/http-api/middleware"
	"bookshelf/internal/http-api/models"
	"bookshelf/internal/http-api/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.String(1), args.Error(2)
}

type MockBookService struct {
	mock.Mock
}

func (m *MockBookService) ListAll(ctx context.Context) ([]models.Book, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockBookService) GetByID(ctx context.Context, id string) (*models.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookService) TopRated(ctx context.Context, limit int) ([]models.Book, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockBookService) Create(ctx context.Context, ownerID string, in dto.BookRequest, img service.Upload) (*models.Book, error) {
	args := m.Called(ctx, ownerID, in, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookService) Update(ctx context.Context, requesterID, id string, patch dto.UpdateBookRequest, img *service.Upload) (*models.Book, error) {
	args := m.Called(ctx, requesterID, id, patch, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookService) Delete(ctx context.Context, requesterID, id string) error {
	args := m.Called(ctx, requesterID, id)
	return args.Error(0)
}

func (m *MockBookService) AddRating(ctx context.Context, raterID, bookID string, grade int) (*models.Book, error) {
	args := m.Called(ctx, raterID, bookID, grade)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

// staticTokens accepts "token-<user>" and returns <user>.
type staticTokens struct{}

func (staticTokens) Verify(token string) (string, error) {
	const prefix = "token-"
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return "", service.ErrInvalidToken
	}
	return token[len(prefix):], nil
}

type fakePinger struct {
	err error
}

func (p fakePinger) PingContext(context.Context) error { return p.err }

var errDown = errors.New("connection refused")

func newTestRouter(auth service.AuthService, books service.BookService, maxUpload int64, limiter *middleware.IPRateLimiter, imageDir string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(RouterConfig{
		Auth:        NewAuthHandler(auth),
		Books:       NewBookHandler(books, maxUpload),
		Health:      NewHealthHandler(fakePinger{}),
		Tokens:      staticTokens{},
		AuthLimiter: limiter,
		ImageDir:    imageDir,
		CORSOrigins: []string{"*"},
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}
