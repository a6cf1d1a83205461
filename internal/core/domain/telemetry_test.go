package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestItemStatus(t *testing.T) {
	tests := []struct {
		name       string
		status     domain.ItemStatus
		isTerminal bool
	}{
		{"Pending", domain.ItemStatusPending, false},
		{"Running", domain.ItemStatusRunning, false},
		{"Done", domain.ItemStatusDone, true},
		{"Failed", domain.ItemStatusFailed, true},
		{"Skipped", domain.ItemStatusSkipped, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isTerminal, tt.status.IsTerminal())
		})
	}
}

func TestNormalizeItemStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected domain.ItemStatus
	}{
		{"pending", domain.ItemStatusPending},
		{"RUNNING", domain.ItemStatusRunning},
		{"done", domain.ItemStatusDone},
		{"failed", domain.ItemStatusFailed},
		{"skipped", domain.ItemStatusSkipped},
		{"unknown", domain.ItemStatusPending},
		{"", domain.ItemStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.NormalizeItemStatus(tt.input))
		})
	}
}
