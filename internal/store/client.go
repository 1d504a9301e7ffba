package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/dcseguramedina/billed-server/internal/models"
)

// Config holds remote bill store client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a resty-backed implementation of BillStore.
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// apiError mirrors the remote service error payload.
type apiError struct {
	Message string `json:"message"`
}

// NewClient builds a bill store client from the provided configuration.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &Client{
		httpClient: restyClient,
		logger:     logger,
	}
}

// List returns the bills visible to the current session.
func (c *Client) List(ctx context.Context) ([]models.Bill, error) {
	var bills []models.Bill
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&bills).
		SetError(apiErr).
		Get("/bills")
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, c.statusError(resp.StatusCode(), apiErr)
	}

	return bills, nil
}

// Create persists a new bill record.
func (c *Client) Create(ctx context.Context, bill models.Bill) (models.Bill, error) {
	var created models.Bill
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(bill).
		SetResult(&created).
		SetError(apiErr).
		Post("/bills")
	if err != nil {
		return models.Bill{}, fmt.Errorf("create bill: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return models.Bill{}, c.statusError(resp.StatusCode(), apiErr)
	}

	return created, nil
}

// Upload stores an attachment with the remote file-storage facility and
// returns the handle later referenced by the bill record.
func (c *Client) Upload(ctx context.Context, fileName string, content io.Reader) (*UploadResult, error) {
	result := new(UploadResult)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFileReader("file", fileName, content).
		SetResult(result).
		SetError(apiErr).
		Post("/files")
	if err != nil {
		return nil, fmt.Errorf("upload attachment %s: %w", fileName, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, c.statusError(resp.StatusCode(), apiErr)
	}

	c.logger.Info("Attachment uploaded",
		zap.String("file_name", result.FileName),
		zap.String("file_url", result.FileURL))

	return result, nil
}

// statusError maps a non-2xx response to a StatusError carrying the text the
// UI displays verbatim.
func (c *Client) statusError(code int, apiErr *apiError) error {
	message := ""
	if apiErr != nil {
		message = apiErr.Message
	}
	c.logger.Error("Bill store request rejected",
		zap.Int("status", code),
		zap.String("message", message))
	return &StatusError{Code: code, Message: message}
}
