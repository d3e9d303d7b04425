package report

import (
	"fmt"

	"github.com/d5/tengo/v2"

	"npo-crm/internal/features/catalog"
)

// formulaEngine evaluates the computed fields of one report run. Each
// formula is compiled once per request and re-run per row with the row's
// source values bound in.
type formulaEngine struct {
	evals []formulaEval
}

type formulaEval struct {
	field    *catalog.FieldDefinition
	sources  []*catalog.FieldDefinition
	compiled *tengo.Compiled
}

func newFormulaEngine(v *ValidatedReport) (*formulaEngine, error) {
	engine := &formulaEngine{}
	for _, fd := range v.Fields {
		if !fd.Computed() {
			continue
		}
		script := tengo.NewScript([]byte("__out__ := " + fd.Formula))
		var sources []*catalog.FieldDefinition
		for _, req := range fd.Requires {
			src, ok := v.Entity.Field(req)
			if !ok {
				return nil, fmt.Errorf("formula %s references unknown field %s", fd.ID, req)
			}
			sources = append(sources, src)
			if err := script.Add(req, formulaZero(src)); err != nil {
				return nil, fmt.Errorf("formula %s: %w", fd.ID, err)
			}
		}
		compiled, err := script.Compile()
		if err != nil {
			return nil, fmt.Errorf("formula %s: %w", fd.ID, err)
		}
		engine.evals = append(engine.evals, formulaEval{field: fd, sources: sources, compiled: compiled})
	}
	return engine, nil
}

func (e *formulaEngine) empty() bool {
	return len(e.evals) == 0
}

// apply fills in computed values on a normalized row. A formula that fails
// at runtime yields nil for that cell rather than failing the report.
func (e *formulaEngine) apply(row map[string]interface{}) {
	for _, ev := range e.evals {
		for _, src := range ev.sources {
			if err := ev.compiled.Set(src.ID, formulaInput(src, row[src.ID])); err != nil {
				row[ev.field.ID] = nil
				continue
			}
		}
		if err := ev.compiled.Run(); err != nil {
			row[ev.field.ID] = nil
			continue
		}
		row[ev.field.ID] = ev.compiled.Get("__out__").Value()
	}
}

// formulaZero is the placeholder bound at compile time so every source name
// exists as a script variable.
func formulaZero(fd *catalog.FieldDefinition) interface{} {
	switch fd.Type {
	case catalog.FieldTypeNumber:
		return float64(0)
	case catalog.FieldTypeBoolean:
		return false
	default:
		return ""
	}
}

// formulaInput coerces a row value into what the script expects; NULL
// columns become the type's zero so formulas stay total.
func formulaInput(fd *catalog.FieldDefinition, raw interface{}) interface{} {
	if raw == nil {
		return formulaZero(fd)
	}
	switch fd.Type {
	case catalog.FieldTypeNumber:
		if f, err := coerceNumber(raw); err == nil {
			return f
		}
		return float64(0)
	case catalog.FieldTypeBoolean:
		if b, ok := raw.(bool); ok {
			return b
		}
		return false
	default:
		if s, ok := raw.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", raw)
	}
}
