package report

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	common_models "npo-crm/internal/common/models"
	"npo-crm/internal/features/catalog"
)

// Query is the rendered output of the builder: one data statement and one
// count statement sharing the same WHERE parameters.
type Query struct {
	SQL       string
	Args      []interface{}
	CountSQL  string
	CountArgs []interface{}
}

// Builder turns a validated definition plus the caller's scope into
// parameterized SQL. The statement is modeled as a small AST (select list,
// join set, predicate list, group/sort) and rendered exactly once; every
// user-influenced value flows through a bind parameter.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

type selectItem struct {
	expr  string
	alias string
}

// cond is a node of the predicate list. Nodes render themselves against the
// shared bind renderer so placeholder numbering stays consistent.
type cond interface {
	render(r *binder) string
}

type binder struct {
	args []interface{}
}

func (b *binder) bind(v interface{}) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

type cmpCond struct {
	col string
	op  string
	val interface{}
}

func (c cmpCond) render(r *binder) string {
	return fmt.Sprintf("%s %s %s", c.col, c.op, r.bind(c.val))
}

type likeCond struct {
	col    string
	needle string
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (c likeCond) render(r *binder) string {
	pattern := "%" + likeEscaper.Replace(c.needle) + "%"
	return fmt.Sprintf("%s ILIKE %s", c.col, r.bind(pattern))
}

type anyCond struct {
	col string
	arr interface{}
}

func (c anyCond) render(r *binder) string {
	return fmt.Sprintf("%s = ANY(%s)", c.col, r.bind(pq.Array(c.arr)))
}

type betweenCond struct {
	col    string
	lo, hi interface{}
}

func (c betweenCond) render(r *binder) string {
	return fmt.Sprintf("%s BETWEEN %s AND %s", c.col, r.bind(c.lo), r.bind(c.hi))
}

type rawCond struct {
	sql string
}

func (c rawCond) render(_ *binder) string {
	return c.sql
}

// Build renders the data and count statements for one report request.
func (b *Builder) Build(v *ValidatedReport, scope *common_models.DataScopeFilter) (*Query, error) {
	e := v.Entity
	grouped := len(v.GroupBy) > 0

	if grouped {
		for _, fd := range v.Fields {
			if fd.Computed() {
				return nil, common_models.NewUnsupportedOperation(
					fmt.Sprintf("Computed field %q cannot be combined with group_by", fd.ID))
			}
		}
	}

	joins := newJoinSet()
	groupSet := make(map[string]bool, len(v.GroupBy))
	var groupCols []string
	for _, fd := range v.GroupBy {
		groupSet[fd.ID] = true
		groupCols = append(groupCols, fd.Column)
		joins.add(fd)
	}

	// Select list. Under group_by, aggregatable fields wrap in their default
	// aggregate and everything else is forced into the GROUP BY list so the
	// statement never references an ungrouped column.
	var selects []selectItem
	for _, fd := range v.Fields {
		if fd.Computed() {
			continue
		}
		joins.add(fd)
		expr := fd.Column
		if grouped && !groupSet[fd.ID] {
			if fd.Aggregatable {
				expr = fmt.Sprintf("%s(%s)", fd.Aggregate, fd.Column)
			} else {
				groupSet[fd.ID] = true
				groupCols = append(groupCols, fd.Column)
			}
		}
		selects = append(selects, selectItem{expr: expr, alias: fd.ID})
	}
	for _, fd := range v.Hidden {
		joins.add(fd)
		selects = append(selects, selectItem{expr: fd.Column, alias: fd.ID})
	}
	if len(selects) == 0 {
		return nil, common_models.NewUnsupportedOperation("Report selects no queryable columns")
	}

	// Predicate list: soft-delete guard, then user filters, then scope.
	var conds []cond
	if e.SoftDelete {
		conds = append(conds, rawCond{sql: fmt.Sprintf("%s.deleted_at IS NULL", e.Alias)})
	}
	for _, f := range v.Filters {
		joins.add(f.Field)
		node, err := filterCond(f)
		if err != nil {
			return nil, err
		}
		conds = append(conds, node)
	}

	// Sort. Defaults keep pagination deterministic: primary key when flat,
	// the first grouping column when grouped.
	var orderBy []string
	for _, s := range v.Sort {
		dir := "ASC"
		if s.Descending {
			dir = "DESC"
		}
		expr := s.Field.Column
		if grouped && !groupSet[s.Field.ID] {
			if !s.Field.Aggregatable {
				return nil, common_models.NewUnsupportedOperation(
					fmt.Sprintf("Cannot sort by %q when grouping unless it is grouped or aggregated", s.Field.ID))
			}
			expr = fmt.Sprintf("%s(%s)", s.Field.Aggregate, s.Field.Column)
		}
		joins.add(s.Field)
		orderBy = append(orderBy, expr+" "+dir)
	}
	if len(orderBy) == 0 {
		if grouped {
			orderBy = append(orderBy, groupCols[0]+" ASC")
		} else if pk, ok := e.Field(e.PrimaryKey); ok {
			orderBy = append(orderBy, pk.Column+" ASC")
		}
	}

	// Single render pass: WHERE binds first so the count statement can share
	// them, then limit/offset.
	r := &binder{}
	var where []string
	for _, c := range conds {
		where = append(where, c.render(r))
	}
	next := len(r.args) + 1
	scopeConds, scopeArgs := ScopeSQL(e, scope, &next)
	where = append(where, scopeConds...)
	r.args = append(r.args, scopeArgs...)

	from := fmt.Sprintf("%s %s", e.Table, e.Alias)
	joinSQL := joins.render()
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}
	groupSQL := ""
	if grouped {
		groupSQL = " GROUP BY " + strings.Join(groupCols, ", ")
	}

	countArgs := make([]interface{}, len(r.args))
	copy(countArgs, r.args)

	var sb strings.Builder
	sb.WriteString("SELECT ")
	for i, s := range selects {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s AS %q", s.expr, s.alias)
	}
	fmt.Fprintf(&sb, " FROM %s%s%s%s", from, joinSQL, whereSQL, groupSQL)
	fmt.Fprintf(&sb, " ORDER BY %s", strings.Join(orderBy, ", "))
	fmt.Fprintf(&sb, " LIMIT %s OFFSET %s", r.bind(v.Limit), r.bind(v.Offset))

	var countSQL string
	if grouped {
		countSQL = fmt.Sprintf("SELECT COUNT(*) FROM (SELECT 1 FROM %s%s%s%s) grouped",
			from, joinSQL, whereSQL, groupSQL)
	} else {
		countSQL = fmt.Sprintf("SELECT COUNT(*) FROM %s%s%s", from, joinSQL, whereSQL)
	}

	return &Query{
		SQL:       sb.String(),
		Args:      r.args,
		CountSQL:  countSQL,
		CountArgs: countArgs,
	}, nil
}

func filterCond(f ValidatedFilter) (cond, error) {
	col := f.Field.Column
	switch f.Operator {
	case OpEq:
		return cmpCond{col: col, op: "=", val: f.Value}, nil
	case OpNeq:
		return cmpCond{col: col, op: "<>", val: f.Value}, nil
	case OpGt:
		return cmpCond{col: col, op: ">", val: f.Value}, nil
	case OpLt:
		return cmpCond{col: col, op: "<", val: f.Value}, nil
	case OpGte:
		return cmpCond{col: col, op: ">=", val: f.Value}, nil
	case OpLte:
		return cmpCond{col: col, op: "<=", val: f.Value}, nil
	case OpContains:
		s, _ := f.Value.(string)
		return likeCond{col: col, needle: s}, nil
	case OpIn:
		return anyCond{col: col, arr: f.Value}, nil
	case OpBetween:
		return betweenCond{col: col, lo: f.Values[0], hi: f.Values[1]}, nil
	}
	return nil, common_models.NewUnsupportedOperation(fmt.Sprintf("Operator %q cannot be rendered", f.Operator))
}

// joinSet collects the LEFT JOIN clauses a statement needs, deduplicated by
// alias and kept in first-use order.
type joinSet struct {
	order []*catalog.Join
	seen  map[string]bool
}

func newJoinSet() *joinSet {
	return &joinSet{seen: make(map[string]bool)}
}

func (j *joinSet) add(fd *catalog.FieldDefinition) {
	if fd.Join == nil || j.seen[fd.Join.Alias] {
		return
	}
	j.seen[fd.Join.Alias] = true
	j.order = append(j.order, fd.Join)
}

func (j *joinSet) render() string {
	var sb strings.Builder
	for _, join := range j.order {
		fmt.Fprintf(&sb, " LEFT JOIN %s %s ON %s", join.Table, join.Alias, join.On)
	}
	return sb.String()
}
