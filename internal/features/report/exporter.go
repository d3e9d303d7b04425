package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	common_models "npo-crm/internal/common/models"
	"npo-crm/pkg/utils"
)

const (
	mimeCSV  = "text/csv"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ParseFormat resolves a client-supplied export format string.
func ParseFormat(format string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(format))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", common_models.NewUnsupportedFormat()
	}
}

// ExportRows renders formatted rows into a downloadable file named after
// the report.
func ExportRows(v *ValidatedReport, rows []map[string]interface{}, format ExportFormat, name string) (*ExportFile, error) {
	filename := fmt.Sprintf("%s_report_%s", utils.SafeFilename(name), time.Now().Format("20060102_150405"))

	switch format {
	case FormatCSV:
		data, err := WriteCSV(v, rows)
		if err != nil {
			return nil, err
		}
		return &ExportFile{
			Filename:    filename + ".csv",
			ContentType: mimeCSV,
			Rows:        int64(len(rows)),
			Data:        data,
		}, nil
	case FormatXLSX:
		data, err := writeXLSX(v, rows)
		if err != nil {
			return nil, err
		}
		return &ExportFile{
			Filename:    filename + ".xlsx",
			ContentType: mimeXLSX,
			Rows:        int64(len(rows)),
			Data:        data,
		}, nil
	default:
		return nil, common_models.NewUnsupportedFormat()
	}
}

// writeXLSX renders rows into a single worksheet with a styled header row.
func writeXLSX(v *ValidatedReport, rows []map[string]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Report"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, fd := range v.Fields {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, fd.Label)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, rec := range rows {
		for colIdx, fd := range v.Fields {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			switch val := rec[fd.ID].(type) {
			case nil:
			case time.Time:
				f.SetCellValue(sheetName, cell, val.Format("2006-01-02 15:04:05"))
			default:
				f.SetCellValue(sheetName, cell, val)
			}
		}
	}

	for i := range v.Fields {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 15)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
