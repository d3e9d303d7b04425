package models

import (
	"context"
	"time"
)

type ContextKey string

const (
	// IdentityKey is the fiber.Ctx locals key holding the resolved Identity.
	IdentityKey ContextKey = "identity"
	// RequestIDKey is the locals key holding the per-request correlation id.
	RequestIDKey ContextKey = "request_id"
)

// Roles. Admin bypasses data scoping entirely; everyone else is restricted
// by their stored scope grants (or to their own records when none exist).
const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleCaseworker = "caseworker"
	RoleFundraiser = "fundraiser"
)

// Identity is what the auth + scope middleware resolve once per request.
// Downstream code trusts it verbatim.
type Identity struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	// Scope is nil for unrestricted callers.
	Scope *DataScopeFilter `json:"scope,omitempty"`
}

func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// IdentityFromContext returns the identity the auth middleware promoted
// into the request context, or nil for background work.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(IdentityKey).(*Identity)
	return id
}

// DataScopeFilter restricts which rows a caller may see. Each dimension is
// ANDed with the others and with any user-supplied filters, never OR'd.
//
// A nil slice means the dimension is unrestricted. A non-nil empty slice
// means the caller was explicitly granted nothing on that dimension and
// must match no rows at all.
type DataScopeFilter struct {
	AccountIDs       []int64  `json:"account_ids,omitempty"`
	ContactIDs       []int64  `json:"contact_ids,omitempty"`
	CreatedByUserIDs []int64  `json:"created_by_user_ids,omitempty"`
	AccountTypes     []string `json:"account_types,omitempty"`
}

// IsZero reports whether no dimension is populated, nil or otherwise.
func (f *DataScopeFilter) IsZero() bool {
	if f == nil {
		return true
	}
	return f.AccountIDs == nil && f.ContactIDs == nil &&
		f.CreatedByUserIDs == nil && f.AccountTypes == nil
}

type AuditAction string

const (
	AuditActionCreate   AuditAction = "CREATE"
	AuditActionUpdate   AuditAction = "UPDATE"
	AuditActionDelete   AuditAction = "DELETE"
	AuditActionReport   AuditAction = "REPORT"
	AuditActionShare    AuditAction = "SHARE"
	AuditActionPublish  AuditAction = "PUBLISH"
	AuditActionRevoke   AuditAction = "REVOKE"
	AuditActionSchedule AuditAction = "SCHEDULE"
	AuditActionSettings AuditAction = "SETTINGS"
	AuditActionScope    AuditAction = "SCOPE"
)

type Change struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

type AuditLog struct {
	ID        int64             `json:"id"`
	ActorID   int64             `json:"actor_id"`
	ActorName string            `json:"actor_name,omitempty"`
	Action    AuditAction       `json:"action"`
	Entity    string            `json:"entity"`
	RecordID  string            `json:"record_id"`
	Changes   map[string]Change `json:"changes,omitempty"`
	At        time.Time         `json:"at"`
}

// Pagination carries normalized list parameters. Limit is already clamped
// by the time repositories see it.
type Pagination struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

func NewPagination(page, limit, maxLimit int) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Pagination{Page: page, Limit: limit, Offset: (page - 1) * limit}
}
