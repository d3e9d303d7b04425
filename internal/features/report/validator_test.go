package report

import (
	"errors"
	"reflect"
	"testing"
	"time"

	common_models "npo-crm/internal/common/models"
	"npo-crm/internal/config"
	"npo-crm/internal/features/catalog"
)

func testValidator() *Validator {
	return NewValidator(catalog.NewCatalog(), &config.Config{MaxPageSize: 1000})
}

func appError(t *testing.T, err error) *common_models.AppError {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	var appErr *common_models.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	return appErr
}

func fieldMessage(appErr *common_models.AppError, field string) string {
	for _, fe := range appErr.Fields {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

func TestValidateRejectsBadDefinitions(t *testing.T) {
	v := testValidator()

	tests := []struct {
		name     string
		def      ReportDefinition
		wantMsg  string
		field    string
		fieldMsg string
	}{
		{
			name:    "missing entity",
			def:     ReportDefinition{Fields: []string{"id"}},
			wantMsg: "Entity is required",
		},
		{
			name:    "unknown entity",
			def:     ReportDefinition{Entity: "widgets", Fields: []string{"id"}},
			wantMsg: "Invalid entity type",
		},
		{
			name:    "no fields selected",
			def:     ReportDefinition{Entity: "donations"},
			wantMsg: "At least one field must be selected",
		},
		{
			name:     "unknown field",
			def:      ReportDefinition{Entity: "donations", Fields: []string{"id", "bogus"}},
			wantMsg:  "Report definition is invalid",
			field:    "bogus",
			fieldMsg: "Unknown field",
		},
		{
			name: "filter on computed field",
			def: ReportDefinition{Entity: "donations", Fields: []string{"id"},
				Filters: []FilterClause{{Field: "net_amount", Operator: OpGt, Value: 10.0}}},
			wantMsg:  "Report definition is invalid",
			field:    "net_amount",
			fieldMsg: "Field is not filterable",
		},
		{
			name: "contains on a number field",
			def: ReportDefinition{Entity: "donations", Fields: []string{"id"},
				Filters: []FilterClause{{Field: "amount", Operator: OpContains, Value: "5"}}},
			wantMsg:  "Report definition is invalid",
			field:    "amount",
			fieldMsg: `Operator "contains" is not valid for number fields`,
		},
		{
			name: "between with one value",
			def: ReportDefinition{Entity: "donations", Fields: []string{"id"},
				Filters: []FilterClause{{Field: "amount", Operator: OpBetween, Value: []interface{}{10.0}}}},
			wantMsg:  "Report definition is invalid",
			field:    "amount",
			fieldMsg: "between operator requires exactly two values",
		},
		{
			name: "in with empty list",
			def: ReportDefinition{Entity: "donations", Fields: []string{"id"},
				Filters: []FilterClause{{Field: "method", Operator: OpIn, Value: []interface{}{}}}},
			wantMsg:  "Report definition is invalid",
			field:    "method",
			fieldMsg: "in operator requires a non-empty array value",
		},
		{
			name: "enum value outside the set",
			def: ReportDefinition{Entity: "donations", Fields: []string{"id"},
				Filters: []FilterClause{{Field: "method", Operator: OpEq, Value: "bitcoin"}}},
			wantMsg:  "Report definition is invalid",
			field:    "method",
			fieldMsg: "Value must be one of: card, check, cash, transfer, in_kind",
		},
		{
			name: "boolean from junk",
			def: ReportDefinition{Entity: "donations", Fields: []string{"id"},
				Filters: []FilterClause{{Field: "acknowledged", Operator: OpEq, Value: "yes"}}},
			wantMsg:  "Report definition is invalid",
			field:    "acknowledged",
			fieldMsg: "Value must be a boolean",
		},
		{
			name: "date from junk",
			def: ReportDefinition{Entity: "donations", Fields: []string{"id"},
				Filters: []FilterClause{{Field: "received_at", Operator: OpGte, Value: "last tuesday"}}},
			wantMsg:  "Report definition is invalid",
			field:    "received_at",
			fieldMsg: "Value must be an RFC3339 or YYYY-MM-DD date",
		},
		{
			name: "number from junk",
			def: ReportDefinition{Entity: "donations", Fields: []string{"id"},
				Filters: []FilterClause{{Field: "amount", Operator: OpGte, Value: true}}},
			wantMsg:  "Report definition is invalid",
			field:    "amount",
			fieldMsg: "Value must be a number",
		},
		{
			name: "group by computed field",
			def: ReportDefinition{Entity: "donations", Fields: []string{"id"},
				GroupBy: []string{"net_amount"}},
			wantMsg:  "Report definition is invalid",
			field:    "net_amount",
			fieldMsg: "Cannot group by a computed field",
		},
		{
			name: "sort on unsortable field",
			def: ReportDefinition{Entity: "donations", Fields: []string{"id"},
				Sort: []SortClause{{Field: "contact_id"}}},
			wantMsg:  "Report definition is invalid",
			field:    "contact_id",
			fieldMsg: "Field is not sortable",
		},
		{
			name: "invalid sort direction",
			def: ReportDefinition{Entity: "donations", Fields: []string{"id"},
				Sort: []SortClause{{Field: "amount", Direction: "sideways"}}},
			wantMsg:  "Report definition is invalid",
			field:    "amount",
			fieldMsg: `Invalid sort direction "sideways"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(tt.def)
			appErr := appError(t, err)
			if appErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", appErr.Message, tt.wantMsg)
			}
			if tt.field != "" {
				if got := fieldMessage(appErr, tt.field); got != tt.fieldMsg {
					t.Errorf("field %q message = %q, want %q", tt.field, got, tt.fieldMsg)
				}
			}
		})
	}
}

func TestValidateCollectsAllFieldErrors(t *testing.T) {
	v := testValidator()

	_, err := v.Validate(ReportDefinition{
		Entity: "donations",
		Fields: []string{"bogus", "also_bogus"},
		Filters: []FilterClause{
			{Field: "amount", Operator: OpContains, Value: "x"},
		},
	})
	appErr := appError(t, err)
	if len(appErr.Fields) != 3 {
		t.Errorf("expected 3 field errors, got %d: %+v", len(appErr.Fields), appErr.Fields)
	}
}

func TestValidateCoercesFilterValues(t *testing.T) {
	v := testValidator()

	tests := []struct {
		name   string
		clause FilterClause
		want   interface{}
	}{
		{
			name:   "number from string",
			clause: FilterClause{Field: "amount", Operator: OpGte, Value: "42.5"},
			want:   42.5,
		},
		{
			name:   "date from day precision",
			clause: FilterClause{Field: "received_at", Operator: OpGte, Value: "2025-01-31"},
			want:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "boolean from string",
			clause: FilterClause{Field: "acknowledged", Operator: OpEq, Value: "true"},
			want:   true,
		},
		{
			name:   "in list of numbers",
			clause: FilterClause{Field: "account_id", Operator: OpIn, Value: []interface{}{1.0, 2}},
			want:   []float64{1, 2},
		},
		{
			name:   "in list of enum values",
			clause: FilterClause{Field: "method", Operator: OpIn, Value: []interface{}{"card", "check"}},
			want:   []string{"card", "check"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := v.Validate(ReportDefinition{
				Entity:  "donations",
				Fields:  []string{"id"},
				Filters: []FilterClause{tt.clause},
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(out.Filters) != 1 {
				t.Fatalf("expected 1 filter, got %d", len(out.Filters))
			}
			if !reflect.DeepEqual(out.Filters[0].Value, tt.want) {
				t.Errorf("coerced value = %#v, want %#v", out.Filters[0].Value, tt.want)
			}
		})
	}
}

func TestValidateCoercesBetweenPair(t *testing.T) {
	v := testValidator()

	out, err := v.Validate(ReportDefinition{
		Entity: "donations",
		Fields: []string{"id"},
		Filters: []FilterClause{
			{Field: "received_at", Operator: OpBetween, Value: []interface{}{"2025-01-01", "2025-06-30"}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := out.Filters[0]
	if len(f.Values) != 2 {
		t.Fatalf("expected 2 between values, got %d", len(f.Values))
	}
	lo, ok := f.Values[0].(time.Time)
	if !ok || !lo.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("lower bound = %#v", f.Values[0])
	}
}

func TestValidateDeduplicatesFieldsAndGroups(t *testing.T) {
	v := testValidator()

	out, err := v.Validate(ReportDefinition{
		Entity:  "donations",
		Fields:  []string{"id", "amount", "id"},
		GroupBy: []string{"method", "method"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Fields) != 2 {
		t.Errorf("expected 2 fields after dedupe, got %d", len(out.Fields))
	}
	if len(out.GroupBy) != 1 {
		t.Errorf("expected 1 group field after dedupe, got %d", len(out.GroupBy))
	}
}

func TestValidateCarriesHiddenFormulaSources(t *testing.T) {
	v := testValidator()

	out, err := v.Validate(ReportDefinition{
		Entity: "donations",
		Fields: []string{"net_amount"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hidden := make([]string, 0, len(out.Hidden))
	for _, fd := range out.Hidden {
		hidden = append(hidden, fd.ID)
	}
	if !reflect.DeepEqual(hidden, []string{"amount", "fee"}) {
		t.Errorf("hidden = %v, want [amount fee]", hidden)
	}

	// A source that is itself selected only rides along for the rest.
	out, err = v.Validate(ReportDefinition{
		Entity: "donations",
		Fields: []string{"amount", "net_amount"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Hidden) != 1 || out.Hidden[0].ID != "fee" {
		t.Errorf("expected only fee hidden, got %+v", out.Hidden)
	}
}

func TestValidateClampsPagination(t *testing.T) {
	v := testValidator()

	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{name: "zero limit becomes max", limit: 0, offset: 0, wantLimit: 1000, wantOffset: 0},
		{name: "oversized limit clamps", limit: 5000, offset: 0, wantLimit: 1000, wantOffset: 0},
		{name: "in-range limit kept", limit: 25, offset: 50, wantLimit: 25, wantOffset: 50},
		{name: "negative offset resets", limit: 10, offset: -3, wantLimit: 10, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := v.Validate(ReportDefinition{
				Entity: "donations",
				Fields: []string{"id"},
				Limit:  tt.limit,
				Offset: tt.offset,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Limit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", out.Limit, tt.wantLimit)
			}
			if out.Offset != tt.wantOffset {
				t.Errorf("offset = %d, want %d", out.Offset, tt.wantOffset)
			}
		})
	}
}
