package contact

import (
	"context"
	"strconv"
	"strings"

	"npo-crm/internal/features/audit"
	"npo-crm/internal/features/notify"

	common_models "npo-crm/internal/common/models"
)

type ContactService interface {
	Create(ctx context.Context, req ContactRequest) (*Contact, error)
	Get(ctx context.Context, id int64) (*Contact, error)
	List(ctx context.Context, filter ListFilter, page, limit int) ([]Contact, int64, error)
	Update(ctx context.Context, id int64, req ContactRequest) (*Contact, error)
	Delete(ctx context.Context, id int64) error
}

type ContactServiceImpl struct {
	Repo    ContactRepository
	Audit   audit.AuditService
	Hub     *notify.Hub
	MaxPage int
}

func NewContactService(repo ContactRepository, auditService audit.AuditService, hub *notify.Hub, maxPage int) ContactService {
	return &ContactServiceImpl{Repo: repo, Audit: auditService, Hub: hub, MaxPage: maxPage}
}

func (s *ContactServiceImpl) Create(ctx context.Context, req ContactRequest) (*Contact, error) {
	if strings.TrimSpace(req.FirstName) == "" {
		return nil, common_models.NewValidation("First name is required")
	}
	identity := common_models.IdentityFromContext(ctx)
	if identity == nil {
		return nil, common_models.NewForbidden("Login required")
	}

	c := &Contact{
		AccountID:    req.AccountID,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		Title:        strings.TrimSpace(req.Title),
		DoNotContact: req.DoNotContact,
		CreatedBy:    identity.UserID,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return nil, err
	}

	_ = s.Audit.LogChange(ctx, common_models.AuditActionCreate, "contact", formatID(c.ID), map[string]common_models.Change{
		"contact": {New: c},
	})
	s.Hub.Publish("contact.created", map[string]interface{}{"id": c.ID})
	return c, nil
}

func (s *ContactServiceImpl) Get(ctx context.Context, id int64) (*Contact, error) {
	return s.Repo.FindByID(ctx, id, callerScope(ctx))
}

func (s *ContactServiceImpl) List(ctx context.Context, filter ListFilter, page, limit int) ([]Contact, int64, error) {
	p := common_models.NewPagination(page, limit, s.MaxPage)
	return s.Repo.List(ctx, filter, callerScope(ctx), p)
}

func (s *ContactServiceImpl) Update(ctx context.Context, id int64, req ContactRequest) (*Contact, error) {
	if strings.TrimSpace(req.FirstName) == "" {
		return nil, common_models.NewValidation("First name is required")
	}
	before, err := s.Repo.FindByID(ctx, id, callerScope(ctx))
	if err != nil {
		return nil, err
	}

	after := *before
	after.AccountID = req.AccountID
	after.FirstName = strings.TrimSpace(req.FirstName)
	after.LastName = strings.TrimSpace(req.LastName)
	after.Email = strings.TrimSpace(req.Email)
	after.Phone = strings.TrimSpace(req.Phone)
	after.Title = strings.TrimSpace(req.Title)
	after.DoNotContact = req.DoNotContact

	if err := s.Repo.Update(ctx, &after); err != nil {
		return nil, err
	}

	changes := diffContacts(before, &after)
	if len(changes) > 0 {
		_ = s.Audit.LogChange(ctx, common_models.AuditActionUpdate, "contact", formatID(id), changes)
	}
	s.Hub.Publish("contact.updated", map[string]interface{}{"id": id})
	return &after, nil
}

func (s *ContactServiceImpl) Delete(ctx context.Context, id int64) error {
	before, err := s.Repo.FindByID(ctx, id, callerScope(ctx))
	if err != nil {
		return err
	}
	if err := s.Repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	_ = s.Audit.LogChange(ctx, common_models.AuditActionDelete, "contact", formatID(id), map[string]common_models.Change{
		"contact": {Old: before, New: "DELETED"},
	})
	s.Hub.Publish("contact.deleted", map[string]interface{}{"id": id})
	return nil
}

func diffContacts(before, after *Contact) map[string]common_models.Change {
	changes := map[string]common_models.Change{}
	if !equalID(before.AccountID, after.AccountID) {
		changes["account_id"] = common_models.Change{Old: before.AccountID, New: after.AccountID}
	}
	if before.FirstName != after.FirstName {
		changes["first_name"] = common_models.Change{Old: before.FirstName, New: after.FirstName}
	}
	if before.LastName != after.LastName {
		changes["last_name"] = common_models.Change{Old: before.LastName, New: after.LastName}
	}
	if before.Email != after.Email {
		changes["email"] = common_models.Change{Old: before.Email, New: after.Email}
	}
	if before.Phone != after.Phone {
		changes["phone"] = common_models.Change{Old: before.Phone, New: after.Phone}
	}
	if before.Title != after.Title {
		changes["title"] = common_models.Change{Old: before.Title, New: after.Title}
	}
	if before.DoNotContact != after.DoNotContact {
		changes["do_not_contact"] = common_models.Change{Old: before.DoNotContact, New: after.DoNotContact}
	}
	return changes
}

func equalID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func callerScope(ctx context.Context) *common_models.DataScopeFilter {
	if identity := common_models.IdentityFromContext(ctx); identity != nil {
		return identity.Scope
	}
	return nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
