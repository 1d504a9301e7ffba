// Package bills implements the bill list presenter: it fetches the bills of
// the connected employee, sorts and formats them into a render model, and
// degrades gracefully when formatting or the remote fetch fails.
package bills

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/dcseguramedina/billed-server/internal/format"
	"github.com/dcseguramedina/billed-server/internal/models"
	"github.com/dcseguramedina/billed-server/internal/navigation"
	"github.com/dcseguramedina/billed-server/internal/store"
)

// Row is the display-ready projection of one bill record.
type Row struct {
	ID            string        `json:"id"`
	DisplayDate   string        `json:"displayDate"`
	DisplayStatus string        `json:"displayStatus"`
	RawDate       string        `json:"rawDate"`
	Name          string        `json:"name"`
	Type          string        `json:"type"`
	Amount        float64       `json:"amount"`
	FileURL       string        `json:"fileUrl"`
	FileName      string        `json:"fileName"`
	Status        models.Status `json:"status"`
}

// ErrorKind distinguishes the two visible fetch-failure states.
type ErrorKind string

const (
	ErrorKindNotFound ErrorKind = "not_found"
	ErrorKindServer   ErrorKind = "server"
)

// ViewError is the user-visible error state of the bills page. Message is the
// remote rejection text, displayed verbatim.
type ViewError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// View is the render model handed to the view layer. Exactly one of Rows and
// Err is meaningful.
type View struct {
	Rows []Row      `json:"rows"`
	Err  *ViewError `json:"error,omitempty"`
}

// AttachmentViewer is the modal collaborator opened from a row's eye icon.
type AttachmentViewer interface {
	ShowAttachment(fileURL string)
}

// Presenter orchestrates fetch, sort and per-row formatting for the bill
// list page.
type Presenter struct {
	store     store.BillStore
	navigator navigation.Navigator
	viewer    AttachmentViewer
	logger    *zap.Logger
}

// NewPresenter creates a new bill list presenter
func NewPresenter(
	billStore store.BillStore,
	navigator navigation.Navigator,
	viewer AttachmentViewer,
	logger *zap.Logger,
) *Presenter {
	return &Presenter{
		store:     billStore,
		navigator: navigator,
		viewer:    viewer,
		logger:    logger,
	}
}

// View fetches the session's bills and produces the render model. It never
// returns an error: remote rejections become a visible error state and
// per-row formatting failures fall back to the raw values, so the row count
// always equals the fetched record count.
func (p *Presenter) View(ctx context.Context) *View {
	fetched, err := p.store.List(ctx)
	if err != nil {
		kind := ErrorKindServer
		if store.IsNotFound(err) {
			kind = ErrorKindNotFound
		}
		p.logger.Error("Failed to fetch bills", zap.Error(err))
		return &View{Err: &ViewError{Kind: kind, Message: err.Error()}}
	}

	// Most recent first; stable so equal dates keep fetch order.
	sorted := make([]models.Bill, len(fetched))
	copy(sorted, fetched)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})

	rows := make([]Row, 0, len(sorted))
	for _, bill := range sorted {
		rows = append(rows, p.buildRow(bill))
	}

	return &View{Rows: rows}
}

// buildRow formats one bill. A formatting failure on either field is
// recovered locally with the raw value so the row still materializes.
func (p *Presenter) buildRow(bill models.Bill) Row {
	displayDate, err := format.Date(bill.Date)
	if err != nil {
		p.logger.Warn("Failed to format bill date, using raw value",
			zap.String("bill_id", bill.ID),
			zap.String("date", bill.Date),
			zap.Error(err))
		displayDate = bill.Date
	}

	displayStatus, err := format.StatusText(bill.Status)
	if err != nil {
		p.logger.Warn("Failed to format bill status, using raw value",
			zap.String("bill_id", bill.ID),
			zap.String("status", bill.Status.String()),
			zap.Error(err))
		displayStatus = bill.Status.String()
	}

	return Row{
		ID:            bill.ID,
		DisplayDate:   displayDate,
		DisplayStatus: displayStatus,
		RawDate:       bill.Date,
		Name:          bill.Name,
		Type:          bill.Type,
		Amount:        bill.Amount,
		FileURL:       bill.FileURL,
		FileName:      bill.FileName,
		Status:        bill.Status,
	}
}

// HandleClickNewBill delegates to the navigation collaborator. No business
// rule applies here.
func (p *Presenter) HandleClickNewBill() {
	p.navigator.Navigate(navigation.RouteNewBill)
}

// HandleClickIconEye opens the attachment modal for one row, passing the
// row's file URL through unvalidated.
func (p *Presenter) HandleClickIconEye(row Row) {
	p.viewer.ShowAttachment(row.FileURL)
}
