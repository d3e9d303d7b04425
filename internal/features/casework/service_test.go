package casework

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"npo-crm/internal/features/audit"
	"npo-crm/internal/features/notify"

	common_models "npo-crm/internal/common/models"
)

type fakeCaseRepo struct {
	existing *Case

	created   *Case
	updated   *Case
	deletedID int64
}

func (f *fakeCaseRepo) Create(ctx context.Context, cs *Case) error {
	cs.ID = 31
	f.created = cs
	return nil
}

func (f *fakeCaseRepo) FindByID(ctx context.Context, id int64, scope *common_models.DataScopeFilter) (*Case, error) {
	if f.existing == nil {
		return nil, common_models.NewNotFound("Case")
	}
	return f.existing, nil
}

func (f *fakeCaseRepo) List(ctx context.Context, filter ListFilter, scope *common_models.DataScopeFilter, p common_models.Pagination) ([]Case, int64, error) {
	return nil, 0, nil
}

func (f *fakeCaseRepo) Update(ctx context.Context, cs *Case) error {
	f.updated = cs
	return nil
}

func (f *fakeCaseRepo) SoftDelete(ctx context.Context, id int64) error {
	f.deletedID = id
	return nil
}

type fakeAudit struct {
	actions []common_models.AuditAction
	changes []map[string]common_models.Change
}

func (f *fakeAudit) LogChange(ctx context.Context, action common_models.AuditAction, entity string, recordID string, changes map[string]common_models.Change) error {
	f.actions = append(f.actions, action)
	f.changes = append(f.changes, changes)
	return nil
}

func (f *fakeAudit) ListLogs(ctx context.Context, filter audit.ListFilter, page, limit int) ([]common_models.AuditLog, int64, error) {
	return nil, 0, nil
}

func newCaseService(repo *fakeCaseRepo, au *fakeAudit) CaseService {
	return NewCaseService(repo, au, notify.NewHub(zap.NewNop()), 100)
}

func authedContext(userID int64) context.Context {
	identity := &common_models.Identity{UserID: userID, Role: common_models.RoleCaseworker}
	return context.WithValue(context.Background(), common_models.IdentityKey, identity)
}

func appError(t *testing.T, err error) *common_models.AppError {
	t.Helper()
	var appErr *common_models.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	return appErr
}

func TestCreateValidatesRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     CaseRequest
		wantMsg string
	}{
		{"missing subject", CaseRequest{Subject: "   "}, "Case subject is required"},
		{"bad status", CaseRequest{Subject: "Housing", Status: "pending"}, "Invalid case status"},
		{"bad priority", CaseRequest{Subject: "Housing", Priority: "asap"}, "Invalid case priority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newCaseService(&fakeCaseRepo{}, &fakeAudit{})
			_, err := svc.Create(authedContext(1), tt.req)
			if msg := appError(t, err).Message; msg != tt.wantMsg {
				t.Errorf("message = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestCreateRequiresLogin(t *testing.T) {
	svc := newCaseService(&fakeCaseRepo{}, &fakeAudit{})

	_, err := svc.Create(context.Background(), CaseRequest{Subject: "Housing"})
	appErr := appError(t, err)
	if appErr.Code != common_models.CodeForbidden {
		t.Errorf("code = %q, want %q", appErr.Code, common_models.CodeForbidden)
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	repo := &fakeCaseRepo{}
	au := &fakeAudit{}
	svc := newCaseService(repo, au)

	cs, err := svc.Create(authedContext(9), CaseRequest{Subject: "  Housing application  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs.Subject != "Housing application" {
		t.Errorf("subject = %q", cs.Subject)
	}
	if cs.Status != StatusOpen || cs.Priority != "normal" {
		t.Errorf("defaults = %s/%s, want open/normal", cs.Status, cs.Priority)
	}
	if cs.CreatedBy != 9 {
		t.Errorf("created_by = %d, want 9", cs.CreatedBy)
	}
	if cs.ClosedAt != nil {
		t.Error("open case must not carry closed_at")
	}
	if len(au.actions) != 1 || au.actions[0] != common_models.AuditActionCreate {
		t.Errorf("audit actions = %v", au.actions)
	}
}

func TestCreateClosedStampsClosedAt(t *testing.T) {
	repo := &fakeCaseRepo{}
	svc := newCaseService(repo, &fakeAudit{})

	cs, err := svc.Create(authedContext(9), CaseRequest{Subject: "Archived intake", Status: StatusClosed})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs.ClosedAt == nil {
		t.Error("case created closed must carry closed_at")
	}
}

func TestCloseStampsAndAudits(t *testing.T) {
	repo := &fakeCaseRepo{existing: &Case{ID: 31, Subject: "Housing", Status: StatusOpen, Priority: "normal"}}
	au := &fakeAudit{}
	svc := newCaseService(repo, au)

	cs, err := svc.Close(authedContext(9), 31)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs.Status != StatusClosed {
		t.Errorf("status = %q, want closed", cs.Status)
	}
	if cs.ClosedAt == nil {
		t.Error("closing must stamp closed_at")
	}
	if repo.updated == nil {
		t.Fatal("close must persist the case")
	}
	if len(au.actions) != 1 || au.actions[0] != common_models.AuditActionUpdate {
		t.Errorf("audit actions = %v", au.actions)
	}
	change, ok := au.changes[0]["status"]
	if !ok || change.Old != StatusOpen || change.New != StatusClosed {
		t.Errorf("status change = %+v", au.changes[0])
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	repo := &fakeCaseRepo{existing: &Case{ID: 31, Subject: "Housing", Status: StatusClosed}}
	au := &fakeAudit{}
	svc := newCaseService(repo, au)

	cs, err := svc.Close(authedContext(9), 31)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs.Status != StatusClosed {
		t.Errorf("status = %q", cs.Status)
	}
	if repo.updated != nil {
		t.Error("closing a closed case must not write")
	}
	if len(au.actions) != 0 {
		t.Errorf("audit actions = %v, want none", au.actions)
	}
}

func TestUpdateReopenClearsClosedAt(t *testing.T) {
	stamp := time.Now()
	closed := Case{ID: 31, Subject: "Housing", Status: StatusClosed, Priority: "normal", ClosedAt: &stamp}
	repo := &fakeCaseRepo{existing: &closed}
	au := &fakeAudit{}
	svc := newCaseService(repo, au)

	cs, err := svc.Update(authedContext(9), 31, CaseRequest{Subject: "Housing", Status: StatusOpen, Priority: "normal"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs.ClosedAt != nil {
		t.Error("reopening must clear closed_at")
	}
	if change := au.changes[0]["status"]; change.Old != StatusClosed || change.New != StatusOpen {
		t.Errorf("status change = %+v", change)
	}
}

func TestUpdateSkipsAuditWhenUnchanged(t *testing.T) {
	repo := &fakeCaseRepo{existing: &Case{ID: 31, Subject: "Housing", Status: StatusOpen, Priority: "normal"}}
	au := &fakeAudit{}
	svc := newCaseService(repo, au)

	_, err := svc.Update(authedContext(9), 31, CaseRequest{Subject: "Housing", Status: StatusOpen, Priority: "normal"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(au.actions) != 0 {
		t.Errorf("audit actions = %v, want none for no-op update", au.actions)
	}
}

func TestDeleteSoftDeletesAndAudits(t *testing.T) {
	repo := &fakeCaseRepo{existing: &Case{ID: 31, Subject: "Housing", Status: StatusOpen}}
	au := &fakeAudit{}
	svc := newCaseService(repo, au)

	if err := svc.Delete(authedContext(9), 31); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.deletedID != 31 {
		t.Errorf("deleted id = %d, want 31", repo.deletedID)
	}
	if len(au.actions) != 1 || au.actions[0] != common_models.AuditActionDelete {
		t.Errorf("audit actions = %v", au.actions)
	}
}
