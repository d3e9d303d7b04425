package catalog

// Enum value sets shared between the catalog and the migrations.
var (
	AccountTypes    = []string{"household", "organization", "foundation", "corporate"}
	DonationMethods = []string{"card", "check", "cash", "transfer", "in_kind"}
	VolunteerStates = []string{"prospect", "active", "inactive", "retired"}
	CaseStates      = []string{"open", "in_progress", "closed"}
	CasePriorities  = []string{"low", "normal", "high", "urgent"}
)

func joinAccounts(on string) *Join {
	return &Join{Entity: "accounts", Table: "accounts", Alias: "a", On: on}
}

func joinContacts(on string) *Join {
	return &Join{Entity: "contacts", Table: "contacts", Alias: "ct", On: on}
}

func contactsEntity() *Entity {
	return &Entity{
		Name:       "contacts",
		Label:      "Contacts",
		Table:      "contacts",
		Alias:      "c",
		PrimaryKey: "id",
		SoftDelete: true,
		Scope: ScopeBindings{
			AccountField:     "account_id",
			ContactField:     "id",
			CreatedByField:   "created_by",
			AccountTypeField: "account.type",
		},
		Fields: []FieldDefinition{
			{ID: "id", Label: "ID", Type: FieldTypeNumber, Filterable: true, Sortable: true, Aggregatable: true, Column: "c.id", Aggregate: AggregateCount},
			{ID: "first_name", Label: "First Name", Type: FieldTypeString, Filterable: true, Sortable: true, Column: "c.first_name"},
			{ID: "last_name", Label: "Last Name", Type: FieldTypeString, Filterable: true, Sortable: true, Column: "c.last_name"},
			{ID: "full_name", Label: "Full Name", Type: FieldTypeString, Formula: `first_name + " " + last_name`, Requires: []string{"first_name", "last_name"}},
			{ID: "email", Label: "Email", Type: FieldTypeString, Filterable: true, Sortable: true, Column: "c.email"},
			{ID: "phone", Label: "Phone", Type: FieldTypeString, Filterable: true, Column: "c.phone"},
			{ID: "title", Label: "Title", Type: FieldTypeString, Filterable: true, Sortable: true, Column: "c.title"},
			{ID: "do_not_contact", Label: "Do Not Contact", Type: FieldTypeBoolean, Filterable: true, Sortable: true, Column: "c.do_not_contact"},
			{ID: "account_id", Label: "Account ID", Type: FieldTypeNumber, Filterable: true, Sortable: true, Column: "c.account_id"},
			{ID: "account.name", Label: "Account", Type: FieldTypeString, Filterable: true, Sortable: true, Column: "a.name", Join: joinAccounts("c.account_id = a.id")},
			{ID: "account.type", Label: "Account Type", Type: FieldTypeEnum, Filterable: true, Sortable: true, EnumValues: AccountTypes, Column: "a.type", Join: joinAccounts("c.account_id = a.id")},
			{ID: "created_by", Label: "Created By", Type: FieldTypeNumber, Filterable: true, Column: "c.created_by"},
			{ID: "created_at", Label: "Created At", Type: FieldTypeDate, Filterable: true, Sortable: true, Column: "c.created_at"},
		},
	}
}

func accountsEntity() *Entity {
	return &Entity{
		Name:       "accounts",
		Label:      "Accounts",
		Table:      "accounts",
		Alias:      "a",
		PrimaryKey: "id",
		SoftDelete: true,
		Scope: ScopeBindings{
			AccountField:     "id",
			CreatedByField:   "created_by",
			AccountTypeField: "type",
		},
		Fields: []FieldDefinition{
			{ID: "id", Label: "ID", Type: FieldTypeNumber, Filterable: true, Sortable: true, Aggregatable: true, Column: "a.id", Aggregate: AggregateCount},
			{ID: "name", Label: "Name", Type: FieldTypeString, Filterable: true, Sortable: true, Column: "a.name"},
			{ID: "type", Label: "Type", Type: FieldTypeEnum, Filterable: true, Sortable: true, EnumValues: AccountTypes, Column: "a.type"},
			{ID: "email", Label: "Email", Type: FieldTypeString, Filterable: true, Column: "a.email"},
			{ID: "phone", Label: "Phone", Type: FieldTypeString, Filterable: true, Column: "a.phone"},
			{ID: "website", Label: "Website", Type: FieldTypeString, Filterable: true, Column: "a.website"},
			{ID: "city", Label: "City", Type: FieldTypeString, Filterable: true, Sortable: true, Column: "a.city"},
			{ID: "state", Label: "State", Type: FieldTypeString, Filterable: true, Sortable: true, Column: "a.state"},
			{ID: "created_by", Label: "Created By", Type: FieldTypeNumber, Filterable: true, Column: "a.created_by"},
			{ID: "created_at", Label: "Created At", Type: FieldTypeDate, Filterable: true, Sortable: true, Column: "a.created_at"},
		},
	}
}

func donationsEntity() *Entity {
	return &Entity{
		Name:       "donations",
		Label:      "Donations",
		Table:      "donations",
		Alias:      "d",
		PrimaryKey: "id",
		SoftDelete: true,
		Scope: ScopeBindings{
			AccountField:     "account_id",
			ContactField:     "contact_id",
			CreatedByField:   "created_by",
			AccountTypeField: "account.type",
		},
		Fields: []FieldDefinition{
			{ID: "id", Label: "ID", Type: FieldTypeNumber, Filterable: true, Sortable: true, Aggregatable: true, Column: "d.id", Aggregate: AggregateCount},
			{ID: "amount", Label: "Amount", Type: FieldTypeNumber, Filterable: true, Sortable: true, Aggregatable: true, Column: "d.amount", Aggregate: AggregateSum},
			{ID: "fee", Label: "Processing Fee", Type: FieldTypeNumber, Filterable: true, Sortable: true, Aggregatable: true, Column: "d.fee", Aggregate: AggregateSum},
			{ID: "net_amount", Label: "Net Amount", Type: FieldTypeNumber, Formula: "amount - fee", Requires: []string{"amount", "fee"}},
			{ID: "currency", Label: "Currency", Type: FieldTypeString, Filterable: true, Sortable: true, Column: "d.currency"},
			{ID: "method", Label: "Method", Type: FieldTypeEnum, Filterable: true, Sortable: true, EnumValues: DonationMethods, Column: "d.method"},
			{ID: "campaign", Label: "Campaign", Type: FieldTypeString, Filterable: true, Sortable: true, Column: "d.campaign"},
			{ID: "received_at", Label: "Received At", Type: FieldTypeDate, Filterable: true, Sortable: true, Column: "d.received_at"},
			{ID: "acknowledged", Label: "Acknowledged", Type: FieldTypeBoolean, Filterable: true, Sortable: true, Column: "d.acknowledged"},
			{ID: "account_id", Label: "Account ID", Type: FieldTypeNumber, Filterable: true, Sortable: true, Column: "d.account_id"},
			{ID: "contact_id", Label: "Contact ID", Type: FieldTypeNumber, Filterable: true, Column: "d.contact_id"},
			{ID: "account.name", Label: "Account", Type: FieldTypeString, Filterable: true, Sortable: true, Column: "a.name", Join: joinAccounts("d.account_id = a.id")},
			{ID: "account.type", Label: "Account Type", Type: FieldTypeEnum, Filterable: true, Sortable: true, EnumValues: AccountTypes, Column: "a.type", Join: joinAccounts("d.account_id = a.id")},
			{ID: "contact.last_name", Label: "Contact Last Name", Type: FieldTypeString, Filterable: true, Sortable: true, Column: "ct.last_name", Join: joinContacts("d.contact_id = ct.id")},
			{ID: "created_by", Label: "Created By", Type: FieldTypeNumber, Filterable: true, Column: "d.created_by"},
			{ID: "created_at", Label: "Created At", Type: FieldTypeDate, Filterable: true, Sortable: true, Column: "d.created_at"},
		},
	}
}

func volunteersEntity() *Entity {
	return &Entity{
		Name:       "volunteers",
		Label:      "Volunteers",
		Table:      "volunteers",
		Alias:      "v",
		PrimaryKey: "id",
		SoftDelete: true,
		Scope: ScopeBindings{
			ContactField:   "contact_id",
			CreatedByField: "created_by",
		},
		Fields: []FieldDefinition{
			{ID: "id", Label: "ID", Type: FieldTypeNumber, Filterable: true, Sortable: true, Aggregatable: true, Column: "v.id", Aggregate: AggregateCount},
			{ID: "status", Label: "Status", Type: FieldTypeEnum, Filterable: true, Sortable: true, EnumValues: VolunteerStates, Column: "v.status"},
			{ID: "skills", Label: "Skills", Type: FieldTypeString, Filterable: true, Column: "v.skills"},
			{ID: "hours_logged", Label: "Hours Logged", Type: FieldTypeNumber, Filterable: true, Sortable: true, Aggregatable: true, Column: "v.hours_logged", Aggregate: AggregateSum},
			{ID: "started_on", Label: "Started On", Type: FieldTypeDate, Filterable: true, Sortable: true, Column: "v.started_on"},
			{ID: "contact_id", Label: "Contact ID", Type: FieldTypeNumber, Filterable: true, Column: "v.contact_id"},
			{ID: "contact.first_name", Label: "Contact First Name", Type: FieldTypeString, Filterable: true, Sortable: true, Column: "ct.first_name", Join: joinContacts("v.contact_id = ct.id")},
			{ID: "contact.last_name", Label: "Contact Last Name", Type: FieldTypeString, Filterable: true, Sortable: true, Column: "ct.last_name", Join: joinContacts("v.contact_id = ct.id")},
			{ID: "created_by", Label: "Created By", Type: FieldTypeNumber, Filterable: true, Column: "v.created_by"},
			{ID: "created_at", Label: "Created At", Type: FieldTypeDate, Filterable: true, Sortable: true, Column: "v.created_at"},
		},
	}
}

func casesEntity() *Entity {
	return &Entity{
		Name:       "cases",
		Label:      "Cases",
		Table:      "cases",
		Alias:      "cs",
		PrimaryKey: "id",
		SoftDelete: true,
		Scope: ScopeBindings{
			AccountField:     "account_id",
			ContactField:     "contact_id",
			CreatedByField:   "created_by",
			AccountTypeField: "account.type",
		},
		Fields: []FieldDefinition{
			{ID: "id", Label: "ID", Type: FieldTypeNumber, Filterable: true, Sortable: true, Aggregatable: true, Column: "cs.id", Aggregate: AggregateCount},
			{ID: "subject", Label: "Subject", Type: FieldTypeString, Filterable: true, Sortable: true, Column: "cs.subject"},
			{ID: "status", Label: "Status", Type: FieldTypeEnum, Filterable: true, Sortable: true, EnumValues: CaseStates, Column: "cs.status"},
			{ID: "priority", Label: "Priority", Type: FieldTypeEnum, Filterable: true, Sortable: true, EnumValues: CasePriorities, Column: "cs.priority"},
			{ID: "opened_at", Label: "Opened At", Type: FieldTypeDate, Filterable: true, Sortable: true, Column: "cs.opened_at"},
			{ID: "closed_at", Label: "Closed At", Type: FieldTypeDate, Filterable: true, Sortable: true, Column: "cs.closed_at"},
			{ID: "account_id", Label: "Account ID", Type: FieldTypeNumber, Filterable: true, Column: "cs.account_id"},
			{ID: "contact_id", Label: "Contact ID", Type: FieldTypeNumber, Filterable: true, Column: "cs.contact_id"},
			{ID: "account.name", Label: "Account", Type: FieldTypeString, Filterable: true, Sortable: true, Column: "a.name", Join: joinAccounts("cs.account_id = a.id")},
			{ID: "account.type", Label: "Account Type", Type: FieldTypeEnum, Filterable: true, EnumValues: AccountTypes, Column: "a.type", Join: joinAccounts("cs.account_id = a.id")},
			{ID: "created_by", Label: "Created By", Type: FieldTypeNumber, Filterable: true, Column: "cs.created_by"},
			{ID: "created_at", Label: "Created At", Type: FieldTypeDate, Filterable: true, Sortable: true, Column: "cs.created_at"},
		},
	}
}

func meetingsEntity() *Entity {
	return &Entity{
		Name:       "meetings",
		Label:      "Meetings",
		Table:      "meetings",
		Alias:      "m",
		PrimaryKey: "id",
		SoftDelete: true,
		Scope: ScopeBindings{
			AccountField:     "account_id",
			ContactField:     "contact_id",
			CreatedByField:   "created_by",
			AccountTypeField: "account.type",
		},
		Fields: []FieldDefinition{
			{ID: "id", Label: "ID", Type: FieldTypeNumber, Filterable: true, Sortable: true, Aggregatable: true, Column: "m.id", Aggregate: AggregateCount},
			{ID: "subject", Label: "Subject", Type: FieldTypeString, Filterable: true, Sortable: true, Column: "m.subject"},
			{ID: "location", Label: "Location", Type: FieldTypeString, Filterable: true, Column: "m.location"},
			{ID: "starts_at", Label: "Starts At", Type: FieldTypeDate, Filterable: true, Sortable: true, Column: "m.starts_at"},
			{ID: "ends_at", Label: "Ends At", Type: FieldTypeDate, Filterable: true, Column: "m.ends_at"},
			{ID: "organizer_id", Label: "Organizer ID", Type: FieldTypeNumber, Filterable: true, Column: "m.organizer_id"},
			{ID: "account_id", Label: "Account ID", Type: FieldTypeNumber, Filterable: true, Column: "m.account_id"},
			{ID: "contact_id", Label: "Contact ID", Type: FieldTypeNumber, Filterable: true, Column: "m.contact_id"},
			{ID: "account.name", Label: "Account", Type: FieldTypeString, Filterable: true, Sortable: true, Column: "a.name", Join: joinAccounts("m.account_id = a.id")},
			{ID: "account.type", Label: "Account Type", Type: FieldTypeEnum, Filterable: true, EnumValues: AccountTypes, Column: "a.type", Join: joinAccounts("m.account_id = a.id")},
			{ID: "created_by", Label: "Created By", Type: FieldTypeNumber, Filterable: true, Column: "m.created_by"},
			{ID: "created_at", Label: "Created At", Type: FieldTypeDate, Filterable: true, Sortable: true, Column: "m.created_at"},
		},
	}
}
