package catalog

import (
	"sort"

	common_models "npo-crm/internal/common/models"
)

type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeDate    FieldType = "date"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeEnum    FieldType = "enum"
)

type Aggregate string

const (
	AggregateCount Aggregate = "COUNT"
	AggregateSum   Aggregate = "SUM"
	AggregateAvg   Aggregate = "AVG"
	AggregateMin   Aggregate = "MIN"
	AggregateMax   Aggregate = "MAX"
)

// Join describes how a related entity's table is brought into a query. The
// builder dedupes joins by Alias, so two fields on the same related entity
// share one JOIN clause.
type Join struct {
	Entity string
	Table  string
	Alias  string
	On     string
}

// FieldDefinition is one selectable/filterable column of an entity. Only the
// client-facing attributes serialize; the SQL mapping stays internal.
type FieldDefinition struct {
	ID           string    `json:"id"`
	Label        string    `json:"label"`
	Type         FieldType `json:"type"`
	Entity       string    `json:"entity"`
	Filterable   bool      `json:"filterable"`
	Sortable     bool      `json:"sortable"`
	Aggregatable bool      `json:"aggregatable"`
	EnumValues   []string  `json:"enum_values,omitempty"`

	Column    string    `json:"-"` // alias-qualified SQL expression
	Join      *Join     `json:"-"`
	Aggregate Aggregate `json:"-"` // default aggregate under group_by
	Formula   string    `json:"-"` // Tengo expression for computed fields
	Requires  []string  `json:"-"` // source field ids a formula reads
}

// Computed reports whether the field is evaluated in-process after the query
// instead of being read from a column.
func (f *FieldDefinition) Computed() bool {
	return f.Formula != ""
}

// ScopeBindings names the field id each DataScopeFilter dimension maps to on
// an entity. An empty binding means the dimension does not apply there.
type ScopeBindings struct {
	AccountField     string
	ContactField     string
	CreatedByField   string
	AccountTypeField string
}

// Entity is the static descriptor of one reportable domain object.
type Entity struct {
	Name       string
	Label      string
	Table      string
	Alias      string
	PrimaryKey string // field id, not column
	SoftDelete bool
	Scope      ScopeBindings
	Fields     []FieldDefinition

	fieldIndex map[string]*FieldDefinition
}

// Field looks up a field definition by id.
func (e *Entity) Field(id string) (*FieldDefinition, bool) {
	f, ok := e.fieldIndex[id]
	return f, ok
}

// Catalog is the immutable registry of reportable entities. Built once at
// startup; safe for concurrent reads.
type Catalog struct {
	entities map[string]*Entity
}

func NewCatalog() *Catalog {
	c := &Catalog{entities: make(map[string]*Entity)}
	for _, e := range []*Entity{
		contactsEntity(),
		accountsEntity(),
		donationsEntity(),
		volunteersEntity(),
		casesEntity(),
		meetingsEntity(),
	} {
		e.fieldIndex = make(map[string]*FieldDefinition, len(e.Fields))
		for i := range e.Fields {
			e.Fields[i].Entity = e.Name
			e.fieldIndex[e.Fields[i].ID] = &e.Fields[i]
		}
		c.entities[e.Name] = e
	}
	return c
}

// Entity returns the descriptor for a registered entity name.
func (c *Catalog) Entity(name string) (*Entity, error) {
	e, ok := c.entities[name]
	if !ok {
		return nil, common_models.NewUnknownEntity()
	}
	return e, nil
}

// FieldsForEntity returns the client-facing field list for one entity.
func (c *Catalog) FieldsForEntity(name string) ([]FieldDefinition, error) {
	e, err := c.Entity(name)
	if err != nil {
		return nil, err
	}
	return e.Fields, nil
}

// EntityNames lists registered entities in stable order.
func (c *Catalog) EntityNames() []string {
	names := make([]string, 0, len(c.entities))
	for name := range c.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
