package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcseguramedina/billed-server/internal/models"
)

func TestDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "classic date", input: "2004-04-04", want: "4 Avr. 04"},
		{name: "single digit day", input: "2023-06-01", want: "1 Jui. 23"},
		{name: "end of year", input: "2022-12-31", want: "31 Déc. 22"},
		{name: "january", input: "2023-01-15", want: "15 Jan. 23"},
		{name: "empty string", input: "", wantErr: true},
		{name: "garbage", input: "not-a-date", wantErr: true},
		{name: "wrong separator", input: "2023/06/01", wantErr: true},
		{name: "month out of range", input: "2023-13-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Date(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		status  models.Status
		want    string
		wantErr bool
	}{
		{status: models.StatusPending, want: "En attente"},
		{status: models.StatusAccepted, want: "Accepté"},
		{status: models.StatusRefused, want: "Refused"},
		{status: models.Status("archived"), wantErr: true},
		{status: models.Status(""), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got, err := StatusText(tt.status)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
