package report

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"testing"
	"time"

	"npo-crm/internal/features/catalog"
)

func validated(t *testing.T, def ReportDefinition) *ValidatedReport {
	t.Helper()
	v, err := testValidator().Validate(def)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	return v
}

func TestFormatRowsEvaluatesStringFormula(t *testing.T) {
	v := validated(t, ReportDefinition{Entity: "contacts", Fields: []string{"full_name"}})

	out, err := FormatRows(v, []map[string]interface{}{
		{"first_name": "Ada", "last_name": "Lovelace"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0]["full_name"] != "Ada Lovelace" {
		t.Errorf("full_name = %#v", out[0]["full_name"])
	}
	// Hidden sources are fetched for evaluation but never surface.
	if _, ok := out[0]["first_name"]; ok {
		t.Errorf("first_name leaked into output: %#v", out[0])
	}
}

func TestFormatRowsEvaluatesNumericFormula(t *testing.T) {
	v := validated(t, ReportDefinition{Entity: "donations", Fields: []string{"amount", "net_amount"}})

	// lib/pq hands NUMERIC columns back as strings.
	out, err := FormatRows(v, []map[string]interface{}{
		{"amount": "120.50", "fee": "3.25"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0]["amount"] != 120.5 {
		t.Errorf("amount = %#v", out[0]["amount"])
	}
	if out[0]["net_amount"] != 117.25 {
		t.Errorf("net_amount = %#v", out[0]["net_amount"])
	}
}

func TestFormatRowsTreatsNullSourceAsZero(t *testing.T) {
	v := validated(t, ReportDefinition{Entity: "donations", Fields: []string{"net_amount"}})

	out, err := FormatRows(v, []map[string]interface{}{
		{"amount": 10.0, "fee": nil},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0]["net_amount"] != 10.0 {
		t.Errorf("net_amount = %#v", out[0]["net_amount"])
	}
}

func TestNormalizeValueCoercions(t *testing.T) {
	when := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		fd   *catalog.FieldDefinition
		raw  interface{}
		want interface{}
	}{
		{name: "numeric bytes", fd: &catalog.FieldDefinition{Type: catalog.FieldTypeNumber}, raw: []byte("42.5"), want: 42.5},
		{name: "int64 widens", fd: &catalog.FieldDefinition{Type: catalog.FieldTypeNumber}, raw: int64(7), want: 7.0},
		{name: "postgres bool t", fd: &catalog.FieldDefinition{Type: catalog.FieldTypeBoolean}, raw: "t", want: true},
		{name: "postgres bool f", fd: &catalog.FieldDefinition{Type: catalog.FieldTypeBoolean}, raw: "f", want: false},
		{name: "native bool", fd: &catalog.FieldDefinition{Type: catalog.FieldTypeBoolean}, raw: true, want: true},
		{name: "time passes through", fd: &catalog.FieldDefinition{Type: catalog.FieldTypeDate}, raw: when, want: when},
		{name: "string untouched", fd: &catalog.FieldDefinition{Type: catalog.FieldTypeString}, raw: "hi", want: "hi"},
		{name: "null stays null", fd: &catalog.FieldDefinition{Type: catalog.FieldTypeNumber}, raw: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeValue(tt.fd, tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("normalizeValue() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestColumnsFollowRequestOrder(t *testing.T) {
	v := validated(t, ReportDefinition{Entity: "donations", Fields: []string{"amount", "method", "id"}})

	cols := Columns(v)
	got := make([]string, 0, len(cols))
	for _, c := range cols {
		got = append(got, c.ID)
	}
	if !reflect.DeepEqual(got, []string{"amount", "method", "id"}) {
		t.Errorf("column order = %v", got)
	}
	if cols[0].Label != "Amount" || cols[0].Type != catalog.FieldTypeNumber {
		t.Errorf("header = %+v", cols[0])
	}
}

func TestWriteCSVQuotesAndFormats(t *testing.T) {
	v := validated(t, ReportDefinition{Entity: "donations", Fields: []string{"campaign", "amount", "received_at"}})

	rows, err := FormatRows(v, []map[string]interface{}{
		{"campaign": "Gala, Annual", "amount": "250.5", "received_at": time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)},
		{"campaign": nil, "amount": "99", "received_at": nil},
	})
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	data, err := WriteCSV(v, rows)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(records[0], []string{"Campaign", "Amount", "Received At"}) {
		t.Errorf("header = %v", records[0])
	}
	if !reflect.DeepEqual(records[1], []string{"Gala, Annual", "250.5", "2025-03-01 09:30:00"}) {
		t.Errorf("row 1 = %v", records[1])
	}
	if records[2][0] != "" {
		t.Errorf("null cell = %q, want empty", records[2][0])
	}
}
