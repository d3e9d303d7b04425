package report

import (
	"encoding/json"
	"time"

	"npo-crm/internal/features/catalog"
)

type Operator string

const (
	OpEq       Operator = "eq"
	OpNeq      Operator = "neq"
	OpGt       Operator = "gt"
	OpLt       Operator = "lt"
	OpGte      Operator = "gte"
	OpLte      Operator = "lte"
	OpContains Operator = "contains"
	OpIn       Operator = "in"
	OpBetween  Operator = "between"
)

type FilterClause struct {
	Field    string      `json:"field"`
	Operator Operator    `json:"operator"`
	Value    interface{} `json:"value"`
}

type SortClause struct {
	Field     string `json:"field"`
	Direction string `json:"direction,omitempty"` // asc (default) or desc
}

// ReportDefinition is the client-supplied description of a report. It is
// validated against the field catalog before anything else touches it.
type ReportDefinition struct {
	Entity  string         `json:"entity"`
	Fields  []string       `json:"fields"`
	Filters []FilterClause `json:"filters,omitempty"`
	GroupBy []string       `json:"group_by,omitempty"`
	Sort    []SortClause   `json:"sort,omitempty"`
	Limit   int            `json:"limit,omitempty"`
	Offset  int            `json:"offset,omitempty"`
}

// ValidatedReport is a definition that passed validation, with every field
// reference resolved against the catalog and every filter value coerced to
// its Go type.
type ValidatedReport struct {
	Entity  *catalog.Entity
	Fields  []*catalog.FieldDefinition // selected, request order
	Filters []ValidatedFilter
	GroupBy []*catalog.FieldDefinition
	Sort    []ValidatedSort
	Limit   int
	Offset  int

	// Hidden carries formula source columns that were not themselves
	// selected; they are fetched for evaluation and dropped from output.
	Hidden []*catalog.FieldDefinition
}

type ValidatedFilter struct {
	Field    *catalog.FieldDefinition
	Operator Operator
	// Value holds the coerced scalar for single-value operators; Values
	// holds the coerced pair for between. In-lists are coerced into a
	// typed slice ([]float64 or []string) stored in Value.
	Value  interface{}
	Values []interface{}
}

type ValidatedSort struct {
	Field      *catalog.FieldDefinition
	Descending bool
}

// ColumnHeader describes one output column. Rows are keyed by field id;
// the header slice carries labels and request order for rendering.
type ColumnHeader struct {
	ID    string            `json:"id"`
	Label string            `json:"label"`
	Type  catalog.FieldType `json:"type"`
}

// ReportResult is the JSON shape of a generated report.
type ReportResult struct {
	Columns []ColumnHeader           `json:"columns"`
	Data    []map[string]interface{} `json:"data"`
	Total   int64                    `json:"total"`
}

type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// ExportFile is a rendered artifact ready to stream to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Rows        int64
	Data        []byte
}

// Saved report visibility states.
const (
	VisibilityPrivate = "private"
	VisibilityShared  = "shared"
	VisibilityPublic  = "public"
	VisibilityRevoked = "revoked"
)

// SavedReport is a persisted, nameable report definition with sharing state.
type SavedReport struct {
	ID          int64            `json:"id"`
	OwnerID     int64            `json:"owner_id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Entity      string           `json:"entity"`
	Definition  ReportDefinition `json:"definition"`
	Visibility  string           `json:"visibility"`
	PublicToken *string          `json:"public_token,omitempty"`
	Shares      []ReportShare    `json:"shares,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type ReportShare struct {
	ID        int64      `json:"id"`
	ReportID  int64      `json:"report_id"`
	UserID    int64      `json:"user_id"`
	CanEdit   bool       `json:"can_edit"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

type ReportSchedule struct {
	ID        int64      `json:"id"`
	ReportID  int64      `json:"report_id"`
	CronExpr  string     `json:"cron_expr"`
	Format    string     `json:"format"`
	Enabled   bool       `json:"enabled"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Snapshot outcomes.
const (
	SnapshotCompleted = "completed"
	SnapshotFailed    = "failed"
)

// ReportSnapshot records one scheduled run; the payload itself stays in the
// database and is not serialized into list responses.
type ReportSnapshot struct {
	ID         int64     `json:"id"`
	ScheduleID int64     `json:"schedule_id"`
	ReportID   int64     `json:"report_id"`
	Status     string    `json:"status"`
	RowCount   int64     `json:"row_count"`
	Format     string    `json:"format"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func MarshalDefinition(def ReportDefinition) ([]byte, error) {
	return json.Marshal(def)
}

func UnmarshalDefinition(raw []byte) (ReportDefinition, error) {
	var def ReportDefinition
	err := json.Unmarshal(raw, &def)
	return def, err
}
