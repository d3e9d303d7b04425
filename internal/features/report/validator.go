package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	common_models "npo-crm/internal/common/models"
	"npo-crm/internal/config"
	"npo-crm/internal/features/catalog"
)

// allowedOps is the operator legality matrix per field type.
var allowedOps = map[catalog.FieldType]map[Operator]bool{
	catalog.FieldTypeString: {
		OpEq: true, OpNeq: true, OpContains: true, OpIn: true,
	},
	catalog.FieldTypeNumber: {
		OpEq: true, OpNeq: true, OpGt: true, OpLt: true, OpGte: true,
		OpLte: true, OpIn: true, OpBetween: true,
	},
	catalog.FieldTypeDate: {
		OpEq: true, OpNeq: true, OpGt: true, OpLt: true, OpGte: true,
		OpLte: true, OpBetween: true,
	},
	catalog.FieldTypeBoolean: {
		OpEq: true, OpNeq: true,
	},
	catalog.FieldTypeEnum: {
		OpEq: true, OpNeq: true, OpIn: true,
	},
}

// Validator checks report definitions against the field catalog. Stateless
// and deterministic; safe to share across requests.
type Validator struct {
	catalog  *catalog.Catalog
	maxLimit int
}

func NewValidator(cat *catalog.Catalog, cfg *config.Config) *Validator {
	return &Validator{catalog: cat, maxLimit: cfg.MaxPageSize}
}

// Validate resolves every field reference, checks usage flags and operator
// legality, coerces filter values, and clamps pagination. It returns all
// field-level problems at once rather than stopping at the first.
func (v *Validator) Validate(def ReportDefinition) (*ValidatedReport, error) {
	if strings.TrimSpace(def.Entity) == "" {
		return nil, common_models.NewValidation("Entity is required")
	}
	entity, err := v.catalog.Entity(def.Entity)
	if err != nil {
		return nil, err
	}
	if len(def.Fields) == 0 {
		return nil, common_models.NewValidation("At least one field must be selected")
	}

	var fieldErrs []common_models.FieldError
	fail := func(field, message string) {
		fieldErrs = append(fieldErrs, common_models.FieldError{Field: field, Message: message})
	}

	out := &ValidatedReport{Entity: entity}

	seen := make(map[string]bool)
	for _, id := range def.Fields {
		fd, ok := entity.Field(id)
		if !ok {
			fail(id, "Unknown field")
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out.Fields = append(out.Fields, fd)
	}

	for _, clause := range def.Filters {
		fd, ok := entity.Field(clause.Field)
		if !ok {
			fail(clause.Field, "Unknown field")
			continue
		}
		if !fd.Filterable {
			fail(clause.Field, "Field is not filterable")
			continue
		}
		if !allowedOps[fd.Type][clause.Operator] {
			fail(clause.Field, fmt.Sprintf("Operator %q is not valid for %s fields", clause.Operator, fd.Type))
			continue
		}
		vf, cerr := coerceFilter(fd, clause)
		if cerr != "" {
			fail(clause.Field, cerr)
			continue
		}
		out.Filters = append(out.Filters, vf)
	}

	grouped := make(map[string]bool)
	for _, id := range def.GroupBy {
		fd, ok := entity.Field(id)
		if !ok {
			fail(id, "Unknown field")
			continue
		}
		if fd.Computed() {
			fail(id, "Cannot group by a computed field")
			continue
		}
		if grouped[id] {
			continue
		}
		grouped[id] = true
		out.GroupBy = append(out.GroupBy, fd)
	}

	for _, s := range def.Sort {
		fd, ok := entity.Field(s.Field)
		if !ok {
			fail(s.Field, "Unknown field")
			continue
		}
		if !fd.Sortable {
			fail(s.Field, "Field is not sortable")
			continue
		}
		dir := strings.ToLower(strings.TrimSpace(s.Direction))
		switch dir {
		case "", "asc":
			out.Sort = append(out.Sort, ValidatedSort{Field: fd})
		case "desc":
			out.Sort = append(out.Sort, ValidatedSort{Field: fd, Descending: true})
		default:
			fail(s.Field, fmt.Sprintf("Invalid sort direction %q", s.Direction))
		}
	}

	if len(fieldErrs) > 0 {
		return nil, common_models.NewValidation("Report definition is invalid", fieldErrs...)
	}

	// Formula source columns that were not requested ride along hidden.
	hiddenSeen := make(map[string]bool)
	for _, fd := range out.Fields {
		if !fd.Computed() {
			continue
		}
		for _, req := range fd.Requires {
			if seen[req] || hiddenSeen[req] {
				continue
			}
			src, ok := entity.Field(req)
			if !ok {
				return nil, fmt.Errorf("catalog formula %s references unknown field %s", fd.ID, req)
			}
			hiddenSeen[req] = true
			out.Hidden = append(out.Hidden, src)
		}
	}

	out.Limit = def.Limit
	if out.Limit <= 0 || out.Limit > v.maxLimit {
		out.Limit = v.maxLimit
	}
	out.Offset = def.Offset
	if out.Offset < 0 {
		out.Offset = 0
	}

	return out, nil
}

// coerceFilter normalizes the clause value into typed Go values. Returns a
// non-empty message on failure.
func coerceFilter(fd *catalog.FieldDefinition, clause FilterClause) (ValidatedFilter, string) {
	vf := ValidatedFilter{Field: fd, Operator: clause.Operator}

	switch clause.Operator {
	case OpIn:
		items, ok := clause.Value.([]interface{})
		if !ok || len(items) == 0 {
			return vf, "in operator requires a non-empty array value"
		}
		switch fd.Type {
		case catalog.FieldTypeNumber:
			nums := make([]float64, 0, len(items))
			for _, item := range items {
				n, err := coerceNumber(item)
				if err != nil {
					return vf, err.Error()
				}
				nums = append(nums, n)
			}
			vf.Value = nums
		default: // string, enum
			strs := make([]string, 0, len(items))
			for _, item := range items {
				s, msg := coerceString(fd, item)
				if msg != "" {
					return vf, msg
				}
				strs = append(strs, s)
			}
			vf.Value = strs
		}
		return vf, ""

	case OpBetween:
		items, ok := clause.Value.([]interface{})
		if !ok || len(items) != 2 {
			return vf, "between operator requires exactly two values"
		}
		for _, item := range items {
			coerced, msg := coerceScalar(fd, item)
			if msg != "" {
				return vf, msg
			}
			vf.Values = append(vf.Values, coerced)
		}
		return vf, ""

	default:
		coerced, msg := coerceScalar(fd, clause.Value)
		if msg != "" {
			return vf, msg
		}
		vf.Value = coerced
		return vf, ""
	}
}

func coerceScalar(fd *catalog.FieldDefinition, raw interface{}) (interface{}, string) {
	switch fd.Type {
	case catalog.FieldTypeNumber:
		n, err := coerceNumber(raw)
		if err != nil {
			return nil, err.Error()
		}
		return n, ""
	case catalog.FieldTypeDate:
		t, err := coerceDate(raw)
		if err != nil {
			return nil, err.Error()
		}
		return t, ""
	case catalog.FieldTypeBoolean:
		switch b := raw.(type) {
		case bool:
			return b, ""
		case string:
			if b == "true" {
				return true, ""
			}
			if b == "false" {
				return false, ""
			}
		}
		return nil, "Value must be a boolean"
	default:
		return coerceStringTyped(fd, raw)
	}
}

func coerceStringTyped(fd *catalog.FieldDefinition, raw interface{}) (interface{}, string) {
	s, msg := coerceString(fd, raw)
	if msg != "" {
		return nil, msg
	}
	return s, ""
}

func coerceString(fd *catalog.FieldDefinition, raw interface{}) (string, string) {
	s, ok := raw.(string)
	if !ok {
		return "", "Value must be a string"
	}
	if fd.Type == catalog.FieldTypeEnum {
		for _, allowed := range fd.EnumValues {
			if s == allowed {
				return s, ""
			}
		}
		return "", fmt.Sprintf("Value must be one of: %s", strings.Join(fd.EnumValues, ", "))
	}
	return s, ""
}

func coerceNumber(raw interface{}) (float64, error) {
	switch n := raw.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err == nil {
			return f, nil
		}
	}
	return 0, fmt.Errorf("Value must be a number")
}

func coerceDate(raw interface{}) (time.Time, error) {
	switch d := raw.(type) {
	case time.Time:
		return d, nil
	case string:
		if t, err := time.Parse(time.RFC3339, d); err == nil {
			return t, nil
		}
		if t, err := time.Parse("2006-01-02", d); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("Value must be an RFC3339 or YYYY-MM-DD date")
}
