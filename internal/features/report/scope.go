package report

import (
	"fmt"

	"github.com/lib/pq"

	common_models "npo-crm/internal/common/models"
	"npo-crm/internal/features/catalog"
)

// ScopeSQL renders the caller's DataScopeFilter as parameterized SQL
// conditions against one entity, resolved through the entity's scope
// bindings. Every list query in the system, report or CRUD, funnels scoping
// through here so the semantics cannot drift.
//
// Rules:
//   - a nil scope or nil dimension adds nothing;
//   - a dimension the entity does not bind is skipped;
//   - an explicitly empty grant list renders a false predicate, so a caller
//     granted nothing matches nothing;
//   - populated lists bind once through pq.Array as `col = ANY($n)`;
//   - bindings that live on a related table render as an EXISTS subquery, so
//     callers never need the join to be present.
//
// next is the 1-based index of the next bind placeholder; it advances for
// every argument appended. Conditions are ANDed by the caller alongside the
// report's own filters, never OR'd.
func ScopeSQL(e *catalog.Entity, scope *common_models.DataScopeFilter, next *int) ([]string, []interface{}) {
	if scope.IsZero() {
		return nil, nil
	}

	var conds []string
	var args []interface{}

	add := func(fieldID string, empty bool, arr interface{}) {
		if fieldID == "" {
			return
		}
		fd, ok := e.Field(fieldID)
		if !ok {
			// A bound dimension the catalog cannot resolve fails closed.
			conds = append(conds, "1 = 0")
			return
		}
		if empty {
			conds = append(conds, "1 = 0")
			return
		}
		expr := fmt.Sprintf("%s = ANY($%d)", fd.Column, *next)
		*next++
		args = append(args, pq.Array(arr))
		if fd.Join != nil {
			expr = fmt.Sprintf("EXISTS (SELECT 1 FROM %s %s WHERE %s AND %s)",
				fd.Join.Table, fd.Join.Alias, fd.Join.On, expr)
		}
		conds = append(conds, expr)
	}

	if scope.AccountIDs != nil {
		add(e.Scope.AccountField, len(scope.AccountIDs) == 0, scope.AccountIDs)
	}
	if scope.ContactIDs != nil {
		add(e.Scope.ContactField, len(scope.ContactIDs) == 0, scope.ContactIDs)
	}
	if scope.CreatedByUserIDs != nil {
		add(e.Scope.CreatedByField, len(scope.CreatedByUserIDs) == 0, scope.CreatedByUserIDs)
	}
	if scope.AccountTypes != nil {
		add(e.Scope.AccountTypeField, len(scope.AccountTypes) == 0, scope.AccountTypes)
	}

	return conds, args
}
