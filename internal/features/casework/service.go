package casework

import (
	"context"
	"strconv"
	"strings"
	"time"

	"npo-crm/internal/features/audit"
	"npo-crm/internal/features/catalog"
	"npo-crm/internal/features/notify"

	common_models "npo-crm/internal/common/models"
)

type CaseService interface {
	Create(ctx context.Context, req CaseRequest) (*Case, error)
	Get(ctx context.Context, id int64) (*Case, error)
	List(ctx context.Context, filter ListFilter, page, limit int) ([]Case, int64, error)
	Update(ctx context.Context, id int64, req CaseRequest) (*Case, error)
	Close(ctx context.Context, id int64) (*Case, error)
	Delete(ctx context.Context, id int64) error
}

type CaseServiceImpl struct {
	Repo    CaseRepository
	Audit   audit.AuditService
	Hub     *notify.Hub
	MaxPage int
}

func NewCaseService(repo CaseRepository, auditService audit.AuditService, hub *notify.Hub, maxPage int) CaseService {
	return &CaseServiceImpl{Repo: repo, Audit: auditService, Hub: hub, MaxPage: maxPage}
}

func (s *CaseServiceImpl) Create(ctx context.Context, req CaseRequest) (*Case, error) {
	if err := normalizeRequest(&req); err != nil {
		return nil, err
	}
	identity := common_models.IdentityFromContext(ctx)
	if identity == nil {
		return nil, common_models.NewForbidden("Login required")
	}

	cs := &Case{
		AccountID: req.AccountID,
		ContactID: req.ContactID,
		Subject:   strings.TrimSpace(req.Subject),
		Status:    req.Status,
		Priority:  req.Priority,
		CreatedBy: identity.UserID,
	}
	if cs.Status == StatusClosed {
		now := time.Now()
		cs.ClosedAt = &now
	}
	if err := s.Repo.Create(ctx, cs); err != nil {
		return nil, err
	}

	_ = s.Audit.LogChange(ctx, common_models.AuditActionCreate, "case", strconv.FormatInt(cs.ID, 10), map[string]common_models.Change{
		"case": {New: cs},
	})
	s.Hub.Publish("case.created", map[string]interface{}{"id": cs.ID, "subject": cs.Subject, "priority": cs.Priority})
	return cs, nil
}

func (s *CaseServiceImpl) Get(ctx context.Context, id int64) (*Case, error) {
	return s.Repo.FindByID(ctx, id, callerScope(ctx))
}

func (s *CaseServiceImpl) List(ctx context.Context, filter ListFilter, page, limit int) ([]Case, int64, error) {
	p := common_models.NewPagination(page, limit, s.MaxPage)
	return s.Repo.List(ctx, filter, callerScope(ctx), p)
}

func (s *CaseServiceImpl) Update(ctx context.Context, id int64, req CaseRequest) (*Case, error) {
	if err := normalizeRequest(&req); err != nil {
		return nil, err
	}
	before, err := s.Repo.FindByID(ctx, id, callerScope(ctx))
	if err != nil {
		return nil, err
	}

	after := *before
	after.AccountID = req.AccountID
	after.ContactID = req.ContactID
	after.Subject = strings.TrimSpace(req.Subject)
	after.Status = req.Status
	after.Priority = req.Priority
	applyStatusStamp(before, &after)

	if err := s.Repo.Update(ctx, &after); err != nil {
		return nil, err
	}

	changes := diffCases(before, &after)
	if len(changes) > 0 {
		_ = s.Audit.LogChange(ctx, common_models.AuditActionUpdate, "case", strconv.FormatInt(id, 10), changes)
	}
	s.Hub.Publish("case.updated", map[string]interface{}{"id": id, "status": after.Status})
	return &after, nil
}

func (s *CaseServiceImpl) Close(ctx context.Context, id int64) (*Case, error) {
	before, err := s.Repo.FindByID(ctx, id, callerScope(ctx))
	if err != nil {
		return nil, err
	}
	if before.Status == StatusClosed {
		return before, nil
	}

	after := *before
	after.Status = StatusClosed
	applyStatusStamp(before, &after)
	if err := s.Repo.Update(ctx, &after); err != nil {
		return nil, err
	}

	_ = s.Audit.LogChange(ctx, common_models.AuditActionUpdate, "case", strconv.FormatInt(id, 10), map[string]common_models.Change{
		"status": {Old: before.Status, New: StatusClosed},
	})
	s.Hub.Publish("case.closed", map[string]interface{}{"id": id})
	return &after, nil
}

func (s *CaseServiceImpl) Delete(ctx context.Context, id int64) error {
	before, err := s.Repo.FindByID(ctx, id, callerScope(ctx))
	if err != nil {
		return err
	}
	if err := s.Repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	_ = s.Audit.LogChange(ctx, common_models.AuditActionDelete, "case", strconv.FormatInt(id, 10), map[string]common_models.Change{
		"case": {Old: before, New: "DELETED"},
	})
	s.Hub.Publish("case.deleted", map[string]interface{}{"id": id})
	return nil
}

// applyStatusStamp keeps closed_at in step with the status: entering the closed
// state stamps it, leaving the closed state clears it.
func applyStatusStamp(before, after *Case) {
	if after.Status == StatusClosed && before.Status != StatusClosed {
		now := time.Now()
		after.ClosedAt = &now
	}
	if after.Status != StatusClosed && before.Status == StatusClosed {
		after.ClosedAt = nil
	}
}

func normalizeRequest(req *CaseRequest) error {
	if strings.TrimSpace(req.Subject) == "" {
		return common_models.NewValidation("Case subject is required")
	}
	if req.Status == "" {
		req.Status = StatusOpen
	}
	if req.Priority == "" {
		req.Priority = "normal"
	}
	if !contains(catalog.CaseStates, req.Status) {
		return common_models.NewValidation("Invalid case status")
	}
	if !contains(catalog.CasePriorities, req.Priority) {
		return common_models.NewValidation("Invalid case priority")
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func diffCases(before, after *Case) map[string]common_models.Change {
	changes := map[string]common_models.Change{}
	if !equalID(before.AccountID, after.AccountID) {
		changes["account_id"] = common_models.Change{Old: before.AccountID, New: after.AccountID}
	}
	if !equalID(before.ContactID, after.ContactID) {
		changes["contact_id"] = common_models.Change{Old: before.ContactID, New: after.ContactID}
	}
	if before.Subject != after.Subject {
		changes["subject"] = common_models.Change{Old: before.Subject, New: after.Subject}
	}
	if before.Status != after.Status {
		changes["status"] = common_models.Change{Old: before.Status, New: after.Status}
	}
	if before.Priority != after.Priority {
		changes["priority"] = common_models.Change{Old: before.Priority, New: after.Priority}
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
