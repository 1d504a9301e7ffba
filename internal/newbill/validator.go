// Package newbill implements the submission validator: it gates the
// attachment type, uploads the file ahead of form submission, assembles the
// bill record and persists it through the remote store.
package newbill

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dcseguramedina/billed-server/internal/attachment"
	"github.com/dcseguramedina/billed-server/internal/models"
	"github.com/dcseguramedina/billed-server/internal/navigation"
	"github.com/dcseguramedina/billed-server/internal/session"
	"github.com/dcseguramedina/billed-server/internal/store"
)

// ErrInvalidFileType is returned when the selected file fails the attachment
// gate. Its text is the exact message shown to the user.
var ErrInvalidFileType = errors.New(attachment.RejectionMessage)

// ErrNoAttachment is returned when the form is submitted without a settled
// file selection.
var ErrNoAttachment = errors.New("no attachment selected")

// FormValues carries the expense form fields as read by the UI adapter.
// Fields are deliberately not required: submitting an incomplete form still
// creates the bill, matching the product's minimal-validation policy.
type FormValues struct {
	Type       string  `json:"type" form:"type"`
	Name       string  `json:"name" form:"name"`
	Date       string  `json:"date" form:"date"`
	Amount     float64 `json:"amount" form:"amount"`
	VAT        string  `json:"vat" form:"vat"`
	Pct        int     `json:"pct" form:"pct"`
	Commentary string  `json:"commentary" form:"commentary"`
}

// Journal records persisted submissions locally. Failures are logged and
// never fail the submission itself.
type Journal interface {
	Record(ctx context.Context, bill models.Bill) error
}

// pendingUpload bridges file selection and form submission. done closes once
// the upload settles, successfully or not.
type pendingUpload struct {
	fileName string
	result   *store.UploadResult
	err      error
	done     chan struct{}
	cancel   context.CancelFunc
}

// Validator orchestrates one employee's in-flight bill submission.
type Validator struct {
	store         store.BillStore
	session       session.Provider
	gate          *attachment.Gate
	journal       Journal
	navigator     navigation.Navigator
	logger        *zap.Logger
	uploadTimeout time.Duration

	mu      sync.Mutex
	machine *Machine
	pending *pendingUpload
	email   string
}

// NewValidator creates a new submission validator
func NewValidator(
	billStore store.BillStore,
	sessionProvider session.Provider,
	journal Journal,
	navigator navigation.Navigator,
	uploadTimeout time.Duration,
	logger *zap.Logger,
) *Validator {
	return &Validator{
		store:         billStore,
		session:       sessionProvider,
		gate:          attachment.NewGate(),
		journal:       journal,
		navigator:     navigator,
		logger:        logger,
		uploadTimeout: uploadTimeout,
		machine:       NewMachine(),
	}
}

// State returns the current submission state.
func (v *Validator) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.machine.State()
}

// SelectFile runs the attachment gate on the chosen file. On rejection the
// selection is cleared and ErrInvalidFileType is returned for the UI to
// display. On acceptance the upload starts immediately in the background; a
// new selection cancels any upload still in flight from the previous one.
func (v *Validator) SelectFile(fileName string, content []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.gate.Validate(fileName) {
		if err := v.machine.Fire(TriggerRejectFile); err != nil {
			return err
		}
		v.discardPendingLocked()
		v.logger.Warn("Attachment rejected by file-type gate",
			zap.String("file_name", fileName))
		return ErrInvalidFileType
	}

	identity, err := v.session.Current()
	if err != nil {
		return fmt.Errorf("resolve session identity: %w", err)
	}

	if err := v.machine.Fire(TriggerSelectFile); err != nil {
		return err
	}

	v.email = identity.Email
	v.discardPendingLocked()

	uploadCtx, cancel := context.WithTimeout(context.Background(), v.uploadTimeout)
	p := &pendingUpload{
		fileName: fileName,
		done:     make(chan struct{}),
		cancel:   cancel,
	}
	v.pending = p

	go v.upload(uploadCtx, p, content)
	return nil
}

// upload runs on its own goroutine and settles the pending upload.
func (v *Validator) upload(ctx context.Context, p *pendingUpload, content []byte) {
	defer p.cancel()

	result, err := v.store.Upload(ctx, p.fileName, bytes.NewReader(content))

	v.mu.Lock()
	defer v.mu.Unlock()

	p.result = result
	p.err = err
	close(p.done)

	if v.pending != p {
		// Superseded by a later selection; the machine already moved on.
		return
	}

	if err != nil {
		v.logger.Error("Attachment upload failed",
			zap.String("file_name", p.fileName),
			zap.Error(err))
		_ = v.machine.Fire(TriggerRejectFile)
		return
	}

	v.logger.Info("Attachment upload settled",
		zap.String("file_name", result.FileName),
		zap.String("file_url", result.FileURL))
	_ = v.machine.Fire(TriggerFinishUpload)
}

// Submit waits for the pending upload to settle, assembles the bill record
// with status pending and the cached session email, persists it and navigates
// to the bill list. Create failures are returned to the caller and logged,
// never swallowed. The latest file selection wins if several raced.
func (v *Validator) Submit(ctx context.Context, form FormValues) error {
	var p *pendingUpload
	for {
		v.mu.Lock()
		p = v.pending
		if p == nil {
			v.mu.Unlock()
			return ErrNoAttachment
		}
		select {
		case <-p.done:
		default:
			v.mu.Unlock()
			select {
			case <-p.done:
			case <-ctx.Done():
				return fmt.Errorf("await attachment upload: %w", ctx.Err())
			}
			continue
		}
		break
	}
	defer v.mu.Unlock()

	if p.err != nil {
		return fmt.Errorf("upload attachment %s: %w", p.fileName, p.err)
	}

	if !v.machine.CanFire(TriggerSubmit) {
		return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, TriggerSubmit, v.machine.State())
	}

	bill := models.Bill{
		Email:      v.email,
		Type:       form.Type,
		Name:       form.Name,
		Date:       form.Date,
		Amount:     form.Amount,
		VAT:        form.VAT,
		Pct:        form.Pct,
		Commentary: form.Commentary,
		FileURL:    p.result.FileURL,
		FileName:   p.result.FileName,
		Status:     models.StatusPending,
	}

	created, err := v.store.Create(ctx, bill)
	if err != nil {
		v.logger.Error("Failed to create bill",
			zap.String("email", bill.Email),
			zap.String("name", bill.Name),
			zap.Error(err))
		return fmt.Errorf("create bill: %w", err)
	}

	_ = v.machine.Fire(TriggerSubmit)
	v.pending = nil

	if v.journal != nil {
		if err := v.journal.Record(ctx, created); err != nil {
			v.logger.Warn("Failed to journal submission",
				zap.String("bill_id", created.ID),
				zap.Error(err))
		}
	}

	v.logger.Info("Bill submitted",
		zap.String("bill_id", created.ID),
		zap.String("email", created.Email))

	v.navigator.Navigate(navigation.RouteBills)
	return nil
}

// discardPendingLocked cancels and drops any in-flight upload. Callers hold
// the mutex.
func (v *Validator) discardPendingLocked() {
	if v.pending == nil {
		return
	}
	v.pending.cancel()
	v.pending = nil
}
