package user

import (
	"context"
	"fmt"
	"strconv"

	"npo-crm/internal/features/audit"
	"npo-crm/internal/features/catalog"

	common_models "npo-crm/internal/common/models"
)

// UpdateScopeRequest replaces a user's grant row wholesale. JSON null or an
// absent key leaves a dimension unrestricted; [] grants nothing on it.
type UpdateScopeRequest struct {
	AccountIDs    []int64  `json:"account_ids"`
	ContactIDs    []int64  `json:"contact_ids"`
	AccountTypes  []string `json:"account_types"`
	CreatedByOnly bool     `json:"created_by_only"`
}

// Profile is a user plus their grant row, nil when none exists.
type Profile struct {
	User  User        `json:"user"`
	Scope *ScopeGrant `json:"scope,omitempty"`
}

type UserService interface {
	ListUsers(ctx context.Context, filter ListFilter, page, limit int) ([]User, int64, error)
	GetUser(ctx context.Context, id int64, includeScope bool) (*Profile, error)
	UpdateScope(ctx context.Context, id int64, req UpdateScopeRequest) (*ScopeGrant, error)
}

type UserServiceImpl struct {
	Repo  UserRepository
	Audit audit.AuditService
}

func NewUserService(repo UserRepository, auditService audit.AuditService) UserService {
	return &UserServiceImpl{Repo: repo, Audit: auditService}
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, filter ListFilter, page, limit int) ([]User, int64, error) {
	p := common_models.NewPagination(page, limit, 100)
	return s.Repo.List(ctx, filter, p)
}

func (s *UserServiceImpl) GetUser(ctx context.Context, id int64, includeScope bool) (*Profile, error) {
	u, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	profile := &Profile{User: *u}
	if includeScope {
		grant, err := s.Repo.GetScope(ctx, id)
		if err != nil {
			return nil, err
		}
		profile.Scope = grant
	}
	return profile, nil
}

func (s *UserServiceImpl) UpdateScope(ctx context.Context, id int64, req UpdateScopeRequest) (*ScopeGrant, error) {
	u, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role == common_models.RoleAdmin {
		return nil, common_models.NewValidation("Admins are not scoped")
	}
	if err := validateAccountTypes(req.AccountTypes); err != nil {
		return nil, err
	}

	before, err := s.Repo.GetScope(ctx, id)
	if err != nil {
		return nil, err
	}

	grant := &ScopeGrant{
		UserID:        id,
		AccountIDs:    req.AccountIDs,
		ContactIDs:    req.ContactIDs,
		AccountTypes:  req.AccountTypes,
		CreatedByOnly: req.CreatedByOnly,
	}
	if err := s.Repo.UpsertScope(ctx, grant); err != nil {
		return nil, err
	}

	changes := map[string]common_models.Change{
		"scope": {Old: before, New: grant},
	}
	_ = s.Audit.LogChange(ctx, common_models.AuditActionScope, "user", strconv.FormatInt(id, 10), changes)

	return grant, nil
}

func validateAccountTypes(types []string) error {
	for _, t := range types {
		known := false
		for _, v := range catalog.AccountTypes {
			if t == v {
				known = true
				break
			}
		}
		if !known {
			return common_models.NewValidation("Invalid account type", common_models.FieldError{
				Field:   "account_types",
				Message: fmt.Sprintf("unknown account type %q", t),
			})
		}
	}
	return nil
}
