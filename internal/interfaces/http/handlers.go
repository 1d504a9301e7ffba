package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dcseguramedina/billed-server/internal/bills"
	"github.com/dcseguramedina/billed-server/internal/navigation"
	"github.com/dcseguramedina/billed-server/internal/newbill"
	"github.com/dcseguramedina/billed-server/internal/store"
)

// Response represents a standard JSON response
type Response struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data,omitempty"`
	Error    string      `json:"error,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
}

// handleHealth handles GET /health
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// handleListBills handles GET /api/bills. Fetch failures carry the remote
// rejection text verbatim so the view can display it as-is.
func (s *Server) handleListBills(c *gin.Context) {
	view := s.presenter.View(c.Request.Context())

	if view.Err != nil {
		status := http.StatusInternalServerError
		if view.Err.Kind == bills.ErrorKindNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, Response{Success: false, Error: view.Err.Message})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: view.Rows})
}

// handlePreviewAttachment handles GET /api/bills/preview. It is the eye-icon
// delegation: the file URL passes through unvalidated for the client modal.
func (s *Server) handlePreviewAttachment(c *gin.Context) {
	fileURL := c.Query("fileUrl")
	s.presenter.HandleClickIconEye(bills.Row{FileURL: fileURL})

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"fileUrl": fileURL},
	})
}

// handleChangeFile handles POST /api/bills/file, the file-selection entry
// point. A gate rejection returns the exact user-facing message and clears
// the selection; an accepted file starts its upload in the background.
func (s *Server) handleChangeFile(c *gin.Context) {
	identity, err := s.session.Current()
	if err != nil {
		s.logger.Error("Failed to resolve session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "session unavailable"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "missing file field"})
		return
	}

	if s.config.MaxUploadSize > 0 && fileHeader.Size > s.config.MaxUploadSize {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   fmt.Sprintf("file exceeds the %d byte limit", s.config.MaxUploadSize),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "unreadable file"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "unreadable file"})
		return
	}

	validator := s.validatorFor(identity.Email)
	if err := validator.SelectFile(fileHeader.Filename, content); err != nil {
		if errors.Is(err, newbill.ErrInvalidFileType) {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
			return
		}
		s.logger.Error("File selection failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, Response{
		Success: true,
		Data:    gin.H{"state": validator.State().String()},
	})
}

// handleSubmit handles POST /api/bills, the form-submission entry point. It
// waits for the attachment upload to settle, persists the bill and answers
// with the bill-list redirect.
func (s *Server) handleSubmit(c *gin.Context) {
	identity, err := s.session.Current()
	if err != nil {
		s.logger.Error("Failed to resolve session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "session unavailable"})
		return
	}

	var form newbill.FormValues
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid form values"})
		return
	}

	validator := s.validatorFor(identity.Email)
	if err := validator.Submit(c.Request.Context(), form); err != nil {
		switch {
		case errors.Is(err, newbill.ErrNoAttachment):
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		case isStoreRejection(err):
			c.JSON(http.StatusBadGateway, Response{Success: false, Error: storeRejectionMessage(err)})
		default:
			s.logger.Error("Submission failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success:  true,
		Redirect: navigation.RouteBills.Hash(),
	})
}

// handleListJournal handles GET /api/journal and returns the latest locally
// journaled submissions, newest first.
func (s *Server) handleListJournal(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid limit"})
			return
		}
		if parsed > 100 {
			parsed = 100
		}
		limit = parsed
	}

	entries, err := s.journal.ListRecent(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list journal", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "journal unavailable"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: entries})
}

func isStoreRejection(err error) bool {
	var se *store.StatusError
	return errors.As(err, &se)
}

// storeRejectionMessage extracts the verbatim remote rejection text.
func storeRejectionMessage(err error) string {
	var se *store.StatusError
	if errors.As(err, &se) {
		return se.Error()
	}
	return err.Error()
}
