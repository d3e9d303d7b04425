package catalog

import (
	"errors"
	"reflect"
	"testing"

	common_models "npo-crm/internal/common/models"
)

func TestCatalogRegistersAllEntities(t *testing.T) {
	c := NewCatalog()

	want := []string{"accounts", "cases", "contacts", "donations", "meetings", "volunteers"}
	if got := c.EntityNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("entities = %v, want %v", got, want)
	}
}

func TestCatalogRejectsUnknownEntity(t *testing.T) {
	c := NewCatalog()

	_, err := c.Entity("widgets")
	var appErr *common_models.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != common_models.CodeUnknownEntity {
		t.Errorf("code = %s", appErr.Code)
	}
}

func TestEntityFieldLookup(t *testing.T) {
	c := NewCatalog()
	donations, err := c.Entity("donations")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	amount, ok := donations.Field("amount")
	if !ok {
		t.Fatal("amount not found")
	}
	if amount.Column != "d.amount" || amount.Type != FieldTypeNumber || !amount.Aggregatable {
		t.Errorf("amount = %+v", amount)
	}

	if _, ok := donations.Field("bogus"); ok {
		t.Error("bogus field resolved")
	}
}

// Every non-empty scope binding must name a real field, or scoped queries
// would silently fail closed for that entity.
func TestScopeBindingsResolve(t *testing.T) {
	c := NewCatalog()

	for _, name := range c.EntityNames() {
		e, err := c.Entity(name)
		if err != nil {
			t.Fatalf("entity %s: %v", name, err)
		}
		for _, binding := range []string{
			e.Scope.AccountField,
			e.Scope.ContactField,
			e.Scope.CreatedByField,
			e.Scope.AccountTypeField,
		} {
			if binding == "" {
				continue
			}
			if _, ok := e.Field(binding); !ok {
				t.Errorf("entity %s: scope binding %q does not resolve", name, binding)
			}
		}
	}
}

func TestFormulaSourcesResolve(t *testing.T) {
	c := NewCatalog()

	for _, name := range c.EntityNames() {
		e, _ := c.Entity(name)
		for i := range e.Fields {
			fd := &e.Fields[i]
			if fd.Computed() {
				if fd.Column != "" {
					t.Errorf("%s.%s: computed fields must not map a column", name, fd.ID)
				}
				if len(fd.Requires) == 0 {
					t.Errorf("%s.%s: computed field without sources", name, fd.ID)
				}
				for _, req := range fd.Requires {
					if _, ok := e.Field(req); !ok {
						t.Errorf("%s.%s: formula source %q does not resolve", name, fd.ID, req)
					}
				}
				continue
			}
			if fd.Column == "" {
				t.Errorf("%s.%s: plain field without a column", name, fd.ID)
			}
		}
	}
}

func TestPrimaryKeysResolve(t *testing.T) {
	c := NewCatalog()

	for _, name := range c.EntityNames() {
		e, _ := c.Entity(name)
		if _, ok := e.Field(e.PrimaryKey); !ok {
			t.Errorf("entity %s: primary key %q does not resolve", name, e.PrimaryKey)
		}
	}
}

func TestFieldsCarryEntityName(t *testing.T) {
	c := NewCatalog()

	fields, err := c.FieldsForEntity("contacts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, fd := range fields {
		if fd.Entity != "contacts" {
			t.Errorf("field %s carries entity %q", fd.ID, fd.Entity)
		}
	}
}

func TestEnumFieldsDeclareValues(t *testing.T) {
	c := NewCatalog()

	for _, name := range c.EntityNames() {
		e, _ := c.Entity(name)
		for i := range e.Fields {
			fd := &e.Fields[i]
			if fd.Type == FieldTypeEnum && len(fd.EnumValues) == 0 {
				t.Errorf("%s.%s: enum field without values", name, fd.ID)
			}
		}
	}
}
