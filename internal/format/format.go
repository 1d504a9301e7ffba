// Package format holds the pure display-formatting rules for bill rows.
package format

import (
	"fmt"
	"time"

	"github.com/dcseguramedina/billed-server/internal/models"
)

// French month labels, abbreviated to three letters as the product displays
// them ("4 Avr. 04").
var frenchMonths = [...]string{
	time.January:   "Jan",
	time.February:  "Fév",
	time.March:     "Mar",
	time.April:     "Avr",
	time.May:       "Mai",
	time.June:      "Jui",
	time.July:      "Jui",
	time.August:    "Aoû",
	time.September: "Sep",
	time.October:   "Oct",
	time.November:  "Nov",
	time.December:  "Déc",
}

// Date parses an ISO date string and renders it in the short French display
// form, e.g. "2004-04-04" -> "4 Avr. 04".
func Date(iso string) (string, error) {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", iso, err)
	}
	return fmt.Sprintf("%d %s. %02d", t.Day(), frenchMonths[t.Month()], t.Year()%100), nil
}

// Display labels per review status. The refused label is intentionally left
// untranslated to match the existing product wording.
var statusLabels = map[models.Status]string{
	models.StatusPending:  "En attente",
	models.StatusAccepted: "Accepté",
	models.StatusRefused:  "Refused",
}

// StatusText maps a review status to its display label.
func StatusText(s models.Status) (string, error) {
	if !s.IsValid() {
		return "", fmt.Errorf("unknown bill status %q", s)
	}
	return statusLabels[s], nil
}
