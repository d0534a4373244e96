package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMessages(t *testing.T) {
	tests := []struct {
		name   string
		format func(string) string
		icon   string
	}{
		{"success", FormatSuccess, SuccessIcon},
		{"error", FormatError, ErrorIcon},
		{"warning", FormatWarning, WarningIcon},
		{"info", FormatInfo, InfoIcon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.format("saved")
			assert.Contains(t, out, tt.icon)
			assert.Contains(t, out, "saved")
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Contains(t, FormatAmount(decimal.RequireFromString("12.5"), "USD"), "12.50 USD")
	assert.Contains(t, FormatAmount(decimal.RequireFromString("-3"), "EUR"), "-3.00 EUR")
	assert.Equal(t, "0.00", FormatAmount(decimal.Zero, ""))
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(
		[]string{"Name", "Balance"},
		[][]string{
			{"Checking", "1200.00"},
			{"Savings account", "5.00"},
		},
	)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Name")
	assert.Contains(t, lines[1], "Checking")
	assert.Contains(t, lines[2], "Savings account")

	// Balances start in the same column.
	assert.Equal(t, strings.Index(lines[1], "1200.00"), strings.Index(lines[2], "5.00"))
}

func TestRenderBox(t *testing.T) {
	out := RenderBox("Import", "3 records added")
	assert.Contains(t, out, "Import")
	assert.Contains(t, out, "3 records added")
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 3, "Importing")
	p.Step()
	p.Step()
	p.Step()
	p.Done()
	assert.Contains(t, buf.String(), "3/3")

	var quiet bytes.Buffer
	single := NewProgress(&quiet, 1, "Importing")
	single.Step()
	single.Done()
	assert.Empty(t, quiet.String())

	var nilProgress *Progress
	assert.NotPanics(t, func() {
		nilProgress.Step()
		nilProgress.Done()
	})
}
