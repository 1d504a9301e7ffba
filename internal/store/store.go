// Package store provides the client for the remote bill persistence service.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dcseguramedina/billed-server/internal/models"
)

// UploadResult is the remote handle produced by a settled attachment upload.
type UploadResult struct {
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	BillID   string `json:"key"`
}

// BillStore exposes the remote bill service operations used by the core.
type BillStore interface {
	// List returns the bills visible to the current session
	List(ctx context.Context) ([]models.Bill, error)

	// Create persists a new bill record and returns the stored copy
	Create(ctx context.Context, bill models.Bill) (models.Bill, error)

	// Upload stores an attachment and returns its remote handle
	Upload(ctx context.Context, fileName string, content io.Reader) (*UploadResult, error)
}

// StatusError is a remote rejection. Its message is the literal text shown
// to the user ("Erreur 404", "Erreur 500").
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Erreur %d", e.Code)
}

// IsNotFound reports whether err is a 4xx rejection (missing or malformed
// resource) as opposed to a server-side failure.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code >= http.StatusBadRequest && se.Code < http.StatusInternalServerError
}
