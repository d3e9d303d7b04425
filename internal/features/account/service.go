package account

import (
	"context"
	"strconv"
	"strings"

	"npo-crm/internal/features/audit"
	"npo-crm/internal/features/catalog"
	"npo-crm/internal/features/notify"

	common_models "npo-crm/internal/common/models"
)

type AccountService interface {
	Create(ctx context.Context, req AccountRequest) (*Account, error)
	Get(ctx context.Context, id int64) (*Account, error)
	List(ctx context.Context, filter ListFilter, page, limit int) ([]Account, int64, error)
	Update(ctx context.Context, id int64, req AccountRequest) (*Account, error)
	Delete(ctx context.Context, id int64) error
}

type AccountServiceImpl struct {
	Repo    AccountRepository
	Audit   audit.AuditService
	Hub     *notify.Hub
	MaxPage int
}

func NewAccountService(repo AccountRepository, auditService audit.AuditService, hub *notify.Hub, maxPage int) AccountService {
	return &AccountServiceImpl{Repo: repo, Audit: auditService, Hub: hub, MaxPage: maxPage}
}

func (s *AccountServiceImpl) Create(ctx context.Context, req AccountRequest) (*Account, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	identity := common_models.IdentityFromContext(ctx)
	if identity == nil {
		return nil, common_models.NewForbidden("Login required")
	}

	a := &Account{
		Name:      strings.TrimSpace(req.Name),
		Type:      req.Type,
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Website:   strings.TrimSpace(req.Website),
		City:      strings.TrimSpace(req.City),
		State:     strings.TrimSpace(req.State),
		CreatedBy: identity.UserID,
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		return nil, err
	}

	_ = s.Audit.LogChange(ctx, common_models.AuditActionCreate, "account", strconv.FormatInt(a.ID, 10), map[string]common_models.Change{
		"account": {New: a},
	})
	s.Hub.Publish("account.created", map[string]interface{}{"id": a.ID})
	return a, nil
}

func (s *AccountServiceImpl) Get(ctx context.Context, id int64) (*Account, error) {
	return s.Repo.FindByID(ctx, id, callerScope(ctx))
}

func (s *AccountServiceImpl) List(ctx context.Context, filter ListFilter, page, limit int) ([]Account, int64, error) {
	p := common_models.NewPagination(page, limit, s.MaxPage)
	return s.Repo.List(ctx, filter, callerScope(ctx), p)
}

func (s *AccountServiceImpl) Update(ctx context.Context, id int64, req AccountRequest) (*Account, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	before, err := s.Repo.FindByID(ctx, id, callerScope(ctx))
	if err != nil {
		return nil, err
	}

	after := *before
	after.Name = strings.TrimSpace(req.Name)
	after.Type = req.Type
	after.Email = strings.TrimSpace(req.Email)
	after.Phone = strings.TrimSpace(req.Phone)
	after.Website = strings.TrimSpace(req.Website)
	after.City = strings.TrimSpace(req.City)
	after.State = strings.TrimSpace(req.State)

	if err := s.Repo.Update(ctx, &after); err != nil {
		return nil, err
	}

	changes := diffAccounts(before, &after)
	if len(changes) > 0 {
		_ = s.Audit.LogChange(ctx, common_models.AuditActionUpdate, "account", strconv.FormatInt(id, 10), changes)
	}
	s.Hub.Publish("account.updated", map[string]interface{}{"id": id})
	return &after, nil
}

func (s *AccountServiceImpl) Delete(ctx context.Context, id int64) error {
	before, err := s.Repo.FindByID(ctx, id, callerScope(ctx))
	if err != nil {
		return err
	}
	if err := s.Repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	_ = s.Audit.LogChange(ctx, common_models.AuditActionDelete, "account", strconv.FormatInt(id, 10), map[string]common_models.Change{
		"account": {Old: before, New: "DELETED"},
	})
	s.Hub.Publish("account.deleted", map[string]interface{}{"id": id})
	return nil
}

func validateRequest(req *AccountRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return common_models.NewValidation("Account name is required")
	}
	if req.Type == "" {
		req.Type = "household"
	}
	for _, t := range catalog.AccountTypes {
		if req.Type == t {
			return nil
		}
	}
	return common_models.NewValidation("Invalid account type")
}

func diffAccounts(before, after *Account) map[string]common_models.Change {
	changes := map[string]common_models.Change{}
	if before.Name != after.Name {
		changes["name"] = common_models.Change{Old: before.Name, New: after.Name}
	}
	if before.Type != after.Type {
		changes["type"] = common_models.Change{Old: before.Type, New: after.Type}
	}
	if before.Email != after.Email {
		changes["email"] = common_models.Change{Old: before.Email, New: after.Email}
	}
	if before.Phone != after.Phone {
		changes["phone"] = common_models.Change{Old: before.Phone, New: after.Phone}
	}
	if before.Website != after.Website {
		changes["website"] = common_models.Change{Old: before.Website, New: after.Website}
	}
	if before.City != after.City {
		changes["city"] = common_models.Change{Old: before.City, New: after.City}
	}
	if before.State != after.State {
		changes["state"] = common_models.Change{Old: before.State, New: after.State}
	}
	return changes
}

func callerScope(ctx context.Context) *common_models.DataScopeFilter {
	if identity := common_models.IdentityFromContext(ctx); identity != nil {
		return identity.Scope
	}
	return nil
}
