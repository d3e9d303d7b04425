package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	common_models "npo-crm/internal/common/models"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ExportFormat
		wantErr bool
	}{
		{in: "csv", want: FormatCSV},
		{in: "CSV", want: FormatCSV},
		{in: " xlsx ", want: FormatXLSX},
		{in: "pdf", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("format "+tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				appErr := appError(t, err)
				assert.Equal(t, common_models.CodeUnsupportedFormat, appErr.Code)
				assert.Equal(t, "Invalid format. Supported formats: csv, xlsx", appErr.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExportRowsCSV(t *testing.T) {
	v := validated(t, ReportDefinition{Entity: "donations", Fields: []string{"amount"}})
	rows := []map[string]interface{}{
		{"amount": 100.0},
		{"amount": 50.5},
	}

	file, err := ExportRows(v, rows, FormatCSV, "Annual Gala")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(file.Filename, "annual_gala_report_"), file.Filename)
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"), file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, int64(2), file.Rows)

	lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Amount", lines[0])
	assert.Equal(t, "100", lines[1])
	assert.Equal(t, "50.5", lines[2])
}

func TestExportRowsXLSX(t *testing.T) {
	v := validated(t, ReportDefinition{Entity: "donations", Fields: []string{"campaign", "amount"}})
	rows := []map[string]interface{}{
		{"campaign": "Spring Drive", "amount": 100.0},
		{"campaign": "Year End", "amount": 50.5},
	}

	file, err := ExportRows(v, rows, FormatXLSX, "Campaign Totals")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(file.Filename, ".xlsx"), file.Filename)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", file.ContentType)

	book, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer book.Close()

	header, err := book.GetCellValue("Report", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Campaign", header)

	first, err := book.GetCellValue("Report", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Spring Drive", first)

	amount, err := book.GetCellValue("Report", "B3")
	require.NoError(t, err)
	assert.Equal(t, "50.5", amount)
}

func TestExportRowsRejectsUnknownFormat(t *testing.T) {
	v := validated(t, ReportDefinition{Entity: "donations", Fields: []string{"amount"}})

	_, err := ExportRows(v, nil, ExportFormat("pdf"), "x")
	appErr := appError(t, err)
	assert.Equal(t, common_models.CodeUnsupportedFormat, appErr.Code)
}
