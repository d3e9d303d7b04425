package report

import (
	"reflect"
	"testing"

	"github.com/lib/pq"

	common_models "npo-crm/internal/common/models"
	"npo-crm/internal/features/catalog"
)

func scopeEntity(t *testing.T, name string) *catalog.Entity {
	t.Helper()
	e, err := catalog.NewCatalog().Entity(name)
	if err != nil {
		t.Fatalf("entity %s: %v", name, err)
	}
	return e
}

func TestScopeSQLNilAndZeroScopes(t *testing.T) {
	e := scopeEntity(t, "donations")

	next := 1
	conds, args := ScopeSQL(e, nil, &next)
	if conds != nil || args != nil {
		t.Errorf("nil scope: conds = %v, args = %v", conds, args)
	}

	conds, args = ScopeSQL(e, &common_models.DataScopeFilter{}, &next)
	if conds != nil || args != nil {
		t.Errorf("zero scope: conds = %v, args = %v", conds, args)
	}
	if next != 1 {
		t.Errorf("next advanced to %d without binds", next)
	}
}

func TestScopeSQLBindsDimensionsInOrder(t *testing.T) {
	e := scopeEntity(t, "donations")

	next := 3
	conds, args := ScopeSQL(e, &common_models.DataScopeFilter{
		AccountIDs:       []int64{1, 2},
		CreatedByUserIDs: []int64{9},
	}, &next)

	want := []string{"d.account_id = ANY($3)", "d.created_by = ANY($4)"}
	if !reflect.DeepEqual(conds, want) {
		t.Errorf("conds = %v, want %v", conds, want)
	}
	if next != 5 {
		t.Errorf("next = %d, want 5", next)
	}
	if !reflect.DeepEqual(args[0], pq.Array([]int64{1, 2})) {
		t.Errorf("first arg = %#v", args[0])
	}
}

func TestScopeSQLEmptyGrantFailsClosed(t *testing.T) {
	e := scopeEntity(t, "donations")

	next := 1
	conds, args := ScopeSQL(e, &common_models.DataScopeFilter{ContactIDs: []int64{}}, &next)

	if !reflect.DeepEqual(conds, []string{"1 = 0"}) {
		t.Errorf("conds = %v", conds)
	}
	if len(args) != 0 || next != 1 {
		t.Errorf("empty grant must not bind: args = %v, next = %d", args, next)
	}
}

func TestScopeSQLSkipsUnboundDimension(t *testing.T) {
	// Volunteers carry no account binding; account grants pass through.
	e := scopeEntity(t, "volunteers")

	next := 1
	conds, _ := ScopeSQL(e, &common_models.DataScopeFilter{
		AccountIDs: []int64{4},
		ContactIDs: []int64{8},
	}, &next)

	if !reflect.DeepEqual(conds, []string{"v.contact_id = ANY($1)"}) {
		t.Errorf("conds = %v", conds)
	}
}

func TestScopeSQLJoinedBindingRendersExists(t *testing.T) {
	e := scopeEntity(t, "contacts")

	next := 1
	conds, args := ScopeSQL(e, &common_models.DataScopeFilter{AccountTypes: []string{"foundation"}}, &next)

	want := "EXISTS (SELECT 1 FROM accounts a WHERE c.account_id = a.id AND a.type = ANY($1))"
	if len(conds) != 1 || conds[0] != want {
		t.Errorf("conds = %v\nwant   %s", conds, want)
	}
	if !reflect.DeepEqual(args[0], pq.Array([]string{"foundation"})) {
		t.Errorf("arg = %#v", args[0])
	}
}

func TestScopeSQLCombinesAllDimensions(t *testing.T) {
	e := scopeEntity(t, "cases")

	next := 1
	conds, args := ScopeSQL(e, &common_models.DataScopeFilter{
		AccountIDs:       []int64{1},
		ContactIDs:       []int64{2},
		CreatedByUserIDs: []int64{3},
		AccountTypes:     []string{"household"},
	}, &next)

	if len(conds) != 4 {
		t.Fatalf("expected 4 conditions, got %v", conds)
	}
	if conds[0] != "cs.account_id = ANY($1)" || conds[2] != "cs.created_by = ANY($3)" {
		t.Errorf("conds = %v", conds)
	}
	if len(args) != 4 || next != 5 {
		t.Errorf("args = %d, next = %d", len(args), next)
	}
}
