package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bookshelf/internal/http-api/dto"
	"bookshelf/internal/http-api/models"
)

// HTTPClient talks to the bookshelf REST API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// constructor for HTTP client
func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// set token for HTTP client
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

func (c *HTTPClient) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.MessageResponse, error) {
	var result dto.MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/signup", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var result dto.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ListBooks(ctx context.Context) ([]models.Book, error) {
	var result []models.Book
	if err := c.doJSON(ctx, http.MethodGet, "/api/books", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *HTTPClient) BestRated(ctx context.Context) ([]models.Book, error) {
	var result []models.Book
	if err := c.doJSON(ctx, http.MethodGet, "/api/books/bestrating", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *HTTPClient) GetBook(ctx context.Context, id string) (*models.Book, error) {
	var result models.Book
	if err := c.doJSON(ctx, http.MethodGet, "/api/books/"+id, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateBook uploads the metadata and the cover image found at imagePath.
func (c *HTTPClient) CreateBook(ctx context.Context, book *dto.BookRequest, imagePath string) (*dto.MessageResponse, error) {
	body, contentType, err := multipartBody(book, imagePath)
	if err != nil {
		return nil, err
	}
	var result dto.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/api/books", body, contentType, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateBook sends a JSON patch, or multipart when a new cover is given.
func (c *HTTPClient) UpdateBook(ctx context.Context, id string, patch *dto.UpdateBookRequest, imagePath string) (*dto.MessageResponse, error) {
	var result dto.MessageResponse
	if imagePath == "" {
		if err := c.doJSON(ctx, http.MethodPut, "/api/books/"+id, patch, &result); err != nil {
			return nil, err
		}
		return &result, nil
	}

	body, contentType, err := multipartBody(patch, imagePath)
	if err != nil {
		return nil, err
	}
	if err := c.do(ctx, http.MethodPut, "/api/books/"+id, body, contentType, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) DeleteBook(ctx context.Context, id string) (*dto.MessageResponse, error) {
	var result dto.MessageResponse
	if err := c.doJSON(ctx, http.MethodDelete, "/api/books/"+id, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) RateBook(ctx context.Context, id string, grade int) (*models.Book, error) {
	req := dto.CreateRatingDTO{Rating: &grade}
	var result models.Book
	if err := c.doJSON(ctx, http.MethodPost, "/api/books/"+id+"/rating", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer response.Body.Close() // Ensure the response body is closed

	if response.StatusCode < 200 || response.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(response.Body).Decode(&apiErr)
		return &APIError{StatusCode: response.StatusCode, Message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(out)
}

// multipartBody builds the "book" JSON field plus the "image" file part.
func multipartBody(book any, imagePath string) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	data, err := json.Marshal(book)
	if err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("book", string(data)); err != nil {
		return nil, "", err
	}

	f, err := os.Open(imagePath)
	if err != nil {
		return nil, "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	part, err := mw.CreateFormFile("image", filepath.Base(imagePath))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
