package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{status: StatusPending, want: true},
		{status: StatusAccepted, want: true},
		{status: StatusRefused, want: true},
		{status: Status("archived"), want: false},
		{status: Status(""), want: false},
		{status: Status("Pending"), want: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsValid())
		})
	}
}
