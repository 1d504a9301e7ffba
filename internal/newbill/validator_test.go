package newbill

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dcseguramedina/billed-server/internal/models"
	"github.com/dcseguramedina/billed-server/internal/navigation"
	"github.com/dcseguramedina/billed-server/internal/session"
	"github.com/dcseguramedina/billed-server/internal/store"
)

type mockStore struct {
	mu          sync.Mutex
	uploadFunc  func(ctx context.Context, fileName string) (*store.UploadResult, error)
	createFunc  func(ctx context.Context, bill models.Bill) (models.Bill, error)
	created     []models.Bill
	uploadCalls int
}

func (m *mockStore) List(ctx context.Context) ([]models.Bill, error) {
	return []models.Bill{}, nil
}

func (m *mockStore) Create(ctx context.Context, bill models.Bill) (models.Bill, error) {
	m.mu.Lock()
	m.created = append(m.created, bill)
	m.mu.Unlock()
	if m.createFunc != nil {
		return m.createFunc(ctx, bill)
	}
	bill.ID = "created-id"
	return bill, nil
}

func (m *mockStore) Upload(ctx context.Context, fileName string, content io.Reader) (*store.UploadResult, error) {
	m.mu.Lock()
	m.uploadCalls++
	m.mu.Unlock()
	if m.uploadFunc != nil {
		return m.uploadFunc(ctx, fileName)
	}
	return &store.UploadResult{
		FileURL:  "https://storage.test.tld/" + fileName,
		FileName: fileName,
		BillID:   "1234",
	}, nil
}

func (m *mockStore) createdBills() []models.Bill {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Bill{}, m.created...)
}

type mockJournal struct {
	mu       sync.Mutex
	recorded []models.Bill
	err      error
}

func (m *mockJournal) Record(ctx context.Context, bill models.Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded = append(m.recorded, bill)
	return m.err
}

func newTestValidator(s store.BillStore, journal Journal) (*Validator, *[]navigation.Route) {
	var navigated []navigation.Route
	v := NewValidator(
		s,
		session.Static{Identity: models.Identity{Type: models.UserTypeEmployee, Email: "employee@test.tld"}},
		journal,
		navigation.NavigatorFunc(func(r navigation.Route) { navigated = append(navigated, r) }),
		5*time.Second,
		zap.NewNop(),
	)
	return v, &navigated
}

func waitForState(t *testing.T, v *Validator, want State) {
	t.Helper()
	require.Eventually(t, func() bool { return v.State() == want },
		2*time.Second, 5*time.Millisecond, "expected state %s", want)
}

func TestValidator_SelectFile_RejectsInvalidType(t *testing.T) {
	s := &mockStore{}
	v, _ := newTestValidator(s, nil)

	err := v.SelectFile("facture.pdf", []byte("%PDF"))

	require.ErrorIs(t, err, ErrInvalidFileType)
	assert.Equal(t,
		"Type de fichier non valide. Veuillez télécharger un fichier jpg, jpeg ou png",
		err.Error())
	assert.Equal(t, StateFileRejected, v.State())
	assert.Zero(t, s.uploadCalls, "rejected file must not be uploaded")

	// The selection was cleared: nothing can be submitted.
	err = v.Submit(context.Background(), FormValues{})
	assert.ErrorIs(t, err, ErrNoAttachment)
}

func TestValidator_SelectFile_StartsUpload(t *testing.T) {
	s := &mockStore{}
	v, _ := newTestValidator(s, nil)

	require.NoError(t, v.SelectFile("test.png", []byte("png bytes")))

	waitForState(t, v, StateFileUploaded)
	assert.Equal(t, 1, s.uploadCalls)
}

func TestValidator_Submit_UsesSettledUploadResult(t *testing.T) {
	release := make(chan struct{})
	s := &mockStore{
		uploadFunc: func(ctx context.Context, fileName string) (*store.UploadResult, error) {
			<-release
			return &store.UploadResult{
				FileURL:  "https://storage.test.tld/slow.png",
				FileName: "slow.png",
				BillID:   "42",
			}, nil
		},
	}
	v, _ := newTestValidator(s, nil)

	require.NoError(t, v.SelectFile("slow.png", []byte("png bytes")))

	submitErr := make(chan error, 1)
	go func() {
		submitErr <- v.Submit(context.Background(), FormValues{Name: "Test"})
	}()

	// Submission must block on the unsettled upload, not race it.
	select {
	case err := <-submitErr:
		t.Fatalf("submit returned before upload settled: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-submitErr)

	created := s.createdBills()
	require.Len(t, created, 1)
	assert.Equal(t, "https://storage.test.tld/slow.png", created[0].FileURL)
	assert.Equal(t, "slow.png", created[0].FileName)
}

func TestValidator_Submit_ValidSubmission(t *testing.T) {
	s := &mockStore{}
	journal := &mockJournal{}
	v, navigated := newTestValidator(s, journal)

	require.NoError(t, v.SelectFile("test.png", []byte("png bytes")))
	waitForState(t, v, StateFileUploaded)

	form := FormValues{
		Type:   "Transports",
		Name:   "Test",
		Date:   "2022-08-10",
		Amount: 500,
		VAT:    "70",
		Pct:    20,
	}
	require.NoError(t, v.Submit(context.Background(), form))

	created := s.createdBills()
	require.Len(t, created, 1, "create must be invoked exactly once")
	bill := created[0]
	assert.Equal(t, "employee@test.tld", bill.Email)
	assert.Equal(t, "Transports", bill.Type)
	assert.Equal(t, "Test", bill.Name)
	assert.Equal(t, "2022-08-10", bill.Date)
	assert.Equal(t, float64(500), bill.Amount)
	assert.Equal(t, "70", bill.VAT)
	assert.Equal(t, 20, bill.Pct)
	assert.Equal(t, models.StatusPending, bill.Status)
	assert.Equal(t, "test.png", bill.FileName)

	require.Len(t, *navigated, 1)
	assert.Equal(t, navigation.RouteBills, (*navigated)[0])
	assert.Equal(t, StateSubmitted, v.State())

	require.Len(t, journal.recorded, 1)
	assert.Equal(t, "created-id", journal.recorded[0].ID)
}

func TestValidator_Submit_EmptyFieldsStillSubmit(t *testing.T) {
	// Minimal-validation policy: the browser owns required-field checks, the
	// core does not re-validate.
	s := &mockStore{}
	v, navigated := newTestValidator(s, nil)

	require.NoError(t, v.SelectFile("test.jpg", []byte("jpg bytes")))
	waitForState(t, v, StateFileUploaded)

	require.NoError(t, v.Submit(context.Background(), FormValues{}))

	created := s.createdBills()
	require.Len(t, created, 1)
	assert.Empty(t, created[0].Name)
	assert.Equal(t, models.StatusPending, created[0].Status)
	assert.Len(t, *navigated, 1)
}

func TestValidator_Submit_CreateFailureSurfaces(t *testing.T) {
	s := &mockStore{
		createFunc: func(ctx context.Context, bill models.Bill) (models.Bill, error) {
			return models.Bill{}, &store.StatusError{Code: 500}
		},
	}
	v, navigated := newTestValidator(s, nil)

	require.NoError(t, v.SelectFile("test.png", []byte("png bytes")))
	waitForState(t, v, StateFileUploaded)

	err := v.Submit(context.Background(), FormValues{Name: "Test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Erreur 500")
	assert.Empty(t, *navigated, "no navigation on create failure")
	assert.NotEqual(t, StateSubmitted, v.State())
}

func TestValidator_Submit_UploadFailureSurfaces(t *testing.T) {
	s := &mockStore{
		uploadFunc: func(ctx context.Context, fileName string) (*store.UploadResult, error) {
			return nil, &store.StatusError{Code: 500}
		},
	}
	v, navigated := newTestValidator(s, nil)

	require.NoError(t, v.SelectFile("test.png", []byte("png bytes")))
	waitForState(t, v, StateFileRejected)

	err := v.Submit(context.Background(), FormValues{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Erreur 500")
	assert.Empty(t, s.createdBills(), "create must not run after a failed upload")
	assert.Empty(t, *navigated)
}

func TestValidator_SecondSelectionCancelsFirstUpload(t *testing.T) {
	firstCanceled := make(chan struct{})
	s := &mockStore{
		uploadFunc: func(ctx context.Context, fileName string) (*store.UploadResult, error) {
			if fileName == "first.png" {
				<-ctx.Done()
				close(firstCanceled)
				return nil, ctx.Err()
			}
			return &store.UploadResult{
				FileURL:  "https://storage.test.tld/second.png",
				FileName: "second.png",
				BillID:   "2",
			}, nil
		},
	}
	v, _ := newTestValidator(s, nil)

	require.NoError(t, v.SelectFile("first.png", []byte("png bytes")))
	require.NoError(t, v.SelectFile("second.png", []byte("png bytes")))

	select {
	case <-firstCanceled:
	case <-time.After(2 * time.Second):
		t.Fatal("superseded upload was not canceled")
	}

	waitForState(t, v, StateFileUploaded)
	require.NoError(t, v.Submit(context.Background(), FormValues{Name: "Test"}))

	created := s.createdBills()
	require.Len(t, created, 1)
	assert.Equal(t, "second.png", created[0].FileName)
	assert.Equal(t, "https://storage.test.tld/second.png", created[0].FileURL)
}

func TestValidator_JournalFailureDoesNotFailSubmission(t *testing.T) {
	s := &mockStore{}
	journal := &mockJournal{err: errors.New("disk full")}
	v, navigated := newTestValidator(s, journal)

	require.NoError(t, v.SelectFile("test.png", []byte("png bytes")))
	waitForState(t, v, StateFileUploaded)

	require.NoError(t, v.Submit(context.Background(), FormValues{Name: "Test"}))
	assert.Len(t, *navigated, 1)
}
