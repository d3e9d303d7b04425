package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"npo-crm/internal/features/catalog"
)

// FormatRows turns raw query rows into the report's output shape: values
// are coerced by field type, computed fields are evaluated, and each row
// is projected down to the requested fields. Formula source columns that
// were fetched but not selected are dropped here.
func FormatRows(v *ValidatedReport, rows []map[string]interface{}) ([]map[string]interface{}, error) {
	engine, err := newFormulaEngine(v)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]interface{}, 0, len(rows))
	for _, raw := range rows {
		row := normalizeRow(v, raw)
		if !engine.empty() {
			engine.apply(row)
		}
		out = append(out, projectRow(v, row))
	}
	return out, nil
}

// Columns lists the output columns in request order.
func Columns(v *ValidatedReport) []ColumnHeader {
	cols := make([]ColumnHeader, 0, len(v.Fields))
	for _, fd := range v.Fields {
		cols = append(cols, ColumnHeader{ID: fd.ID, Label: fd.Label, Type: fd.Type})
	}
	return cols
}

func normalizeRow(v *ValidatedReport, raw map[string]interface{}) map[string]interface{} {
	row := make(map[string]interface{}, len(raw))
	for _, fd := range v.Fields {
		if fd.Computed() {
			continue
		}
		row[fd.ID] = normalizeValue(fd, raw[fd.ID])
	}
	for _, fd := range v.Hidden {
		row[fd.ID] = normalizeValue(fd, raw[fd.ID])
	}
	return row
}

// normalizeValue coerces driver values into the Go type the field
// declares. lib/pq scans NUMERIC and aggregate columns as []byte.
func normalizeValue(fd *catalog.FieldDefinition, raw interface{}) interface{} {
	if raw == nil {
		return nil
	}
	if b, ok := raw.([]byte); ok {
		raw = string(b)
	}

	switch fd.Type {
	case catalog.FieldTypeNumber:
		switch n := raw.(type) {
		case float64:
			return n
		case int64:
			return float64(n)
		case int:
			return float64(n)
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f
			}
		}
	case catalog.FieldTypeBoolean:
		switch b := raw.(type) {
		case bool:
			return b
		case string:
			return b == "t" || b == "true"
		}
	case catalog.FieldTypeDate:
		if t, ok := raw.(time.Time); ok {
			return t
		}
	}
	return raw
}

func projectRow(v *ValidatedReport, row map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(v.Fields))
	for _, fd := range v.Fields {
		out[fd.ID] = row[fd.ID]
	}
	return out
}

// WriteCSV renders formatted rows as CSV with field labels as the header
// row. encoding/csv quotes values containing commas, quotes or newlines.
func WriteCSV(v *ValidatedReport, rows []map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := make([]string, 0, len(v.Fields))
	for _, fd := range v.Fields {
		headers = append(headers, fd.Label)
	}
	if err := writer.Write(headers); err != nil {
		return nil, err
	}

	for _, rec := range rows {
		row := make([]string, 0, len(v.Fields))
		for _, fd := range v.Fields {
			row = append(row, cellString(rec[fd.ID]))
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellString(val interface{}) string {
	if val == nil {
		return ""
	}
	if t, ok := val.(time.Time); ok {
		return t.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprintf("%v", val)
}
