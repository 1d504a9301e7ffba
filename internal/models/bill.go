package models

// Status is the review status of a bill.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRefused  Status = "refused"
)

// IsValid returns true if the status is one of the known review statuses
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRefused:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// Bill is an expense report record submitted by an employee.
// Owned by the remote bill store; instances held here are transient copies.
type Bill struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	Type         string  `json:"type"`
	Name         string  `json:"name"`
	Amount       float64 `json:"amount"`
	Date         string  `json:"date"` // ISO date, e.g. "2023-06-01"
	VAT          string  `json:"vat"`
	Pct          int     `json:"pct"`
	Commentary   string  `json:"commentary"`
	FileURL      string  `json:"fileUrl"`
	FileName     string  `json:"fileName"`
	Status       Status  `json:"status"`
	CommentAdmin string  `json:"commentAdmin,omitempty"`
}

// UserType distinguishes employee and administrator identities
type UserType string

const (
	UserTypeEmployee UserType = "Employee"
	UserTypeAdmin    UserType = "Admin"
)

// Identity is the already-resolved user identity supplied by the session
// collaborator. The core only reads Email when stamping new bills.
type Identity struct {
	Type  UserType `json:"type"`
	Email string   `json:"email"`
}
