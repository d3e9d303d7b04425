package report

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"npo-crm/internal/features/audit"
	"npo-crm/internal/features/catalog"

	common_models "npo-crm/internal/common/models"
)

type fakeSavedRepo struct {
	report  *SavedReport
	byToken *SavedReport
	share   *ReportShare
	shares  []ReportShare

	created     *SavedReport
	updated     *SavedReport
	upserted    *ReportShare
	setVis      string
	setToken    *string
	revokedID   int64
	softDeleted int64
}

func (f *fakeSavedRepo) Create(ctx context.Context, report *SavedReport) error {
	report.ID = 11
	f.created = report
	return nil
}

func (f *fakeSavedRepo) Get(ctx context.Context, id int64) (*SavedReport, error) {
	if f.report == nil {
		return nil, common_models.NewNotFound("Report")
	}
	return f.report, nil
}

func (f *fakeSavedRepo) GetByToken(ctx context.Context, token string) (*SavedReport, error) {
	if f.byToken == nil {
		return nil, common_models.NewNotFound("Report")
	}
	return f.byToken, nil
}

func (f *fakeSavedRepo) ListVisible(ctx context.Context, userID int64) ([]SavedReport, error) {
	return nil, nil
}

func (f *fakeSavedRepo) Update(ctx context.Context, report *SavedReport) error {
	f.updated = report
	return nil
}

func (f *fakeSavedRepo) SetVisibility(ctx context.Context, id int64, visibility string, token *string) error {
	f.setVis = visibility
	f.setToken = token
	return nil
}

func (f *fakeSavedRepo) SoftDelete(ctx context.Context, id int64) error {
	f.softDeleted = id
	return nil
}

func (f *fakeSavedRepo) UpsertShare(ctx context.Context, share *ReportShare) error {
	share.ID = 5
	f.upserted = share
	return nil
}

func (f *fakeSavedRepo) ListShares(ctx context.Context, reportID int64) ([]ReportShare, error) {
	return f.shares, nil
}

func (f *fakeSavedRepo) ShareFor(ctx context.Context, reportID, userID int64) (*ReportShare, error) {
	return f.share, nil
}

func (f *fakeSavedRepo) RevokeShares(ctx context.Context, reportID int64) error {
	f.revokedID = reportID
	return nil
}

type fakeReportRuns struct {
	result    *ReportResult
	file      *ExportFile
	genErr    error
	exportErr error

	lastIdentity *common_models.Identity
	lastDef      ReportDefinition
	lastFormat   string
	lastName     string
}

func (f *fakeReportRuns) Fields(entity string) ([]catalog.FieldDefinition, error) {
	return nil, nil
}

func (f *fakeReportRuns) Generate(ctx context.Context, identity *common_models.Identity, def ReportDefinition) (*ReportResult, error) {
	f.lastIdentity = identity
	f.lastDef = def
	return f.result, f.genErr
}

func (f *fakeReportRuns) Export(ctx context.Context, identity *common_models.Identity, def ReportDefinition, format string, name string) (*ExportFile, error) {
	f.lastIdentity = identity
	f.lastDef = def
	f.lastFormat = format
	f.lastName = name
	return f.file, f.exportErr
}

type fakeAudit struct {
	actions []common_models.AuditAction
}

func (f *fakeAudit) LogChange(ctx context.Context, action common_models.AuditAction, entity string, recordID string, changes map[string]common_models.Change) error {
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeAudit) ListLogs(ctx context.Context, filter audit.ListFilter, page, limit int) ([]common_models.AuditLog, int64, error) {
	return nil, 0, nil
}

type fakeScopes struct {
	identity *common_models.Identity
	lastUser int64
}

func (f *fakeScopes) ResolveOwner(ctx context.Context, userID int64) (*common_models.Identity, error) {
	f.lastUser = userID
	return f.identity, nil
}

func newSavedService(repo SavedReportRepository, runs ReportService, scopes OwnerScopeResolver, auditLog audit.AuditService) SavedReportService {
	return NewSavedReportService(repo, runs, testValidator(), scopes, auditLog, zap.NewNop())
}

func identityFor(userID int64) *common_models.Identity {
	return &common_models.Identity{UserID: userID, Role: common_models.RoleManager}
}

func validDefinition() ReportDefinition {
	return ReportDefinition{Entity: "donations", Fields: []string{"id", "amount"}}
}

func privateReport(owner int64) *SavedReport {
	return &SavedReport{
		ID:         11,
		OwnerID:    owner,
		Name:       "Major Donors",
		Entity:     "donations",
		Definition: validDefinition(),
		Visibility: VisibilityPrivate,
	}
}

func TestSavedCreateRequiresName(t *testing.T) {
	svc := newSavedService(&fakeSavedRepo{}, &fakeReportRuns{}, &fakeScopes{}, &fakeAudit{})

	_, err := svc.Create(context.Background(), identityFor(1), SaveReportRequest{
		Name:       "   ",
		Definition: validDefinition(),
	})
	appErr := appError(t, err)
	if appErr.Message != "Report name is required" {
		t.Errorf("message = %q", appErr.Message)
	}
}

func TestSavedCreateValidatesDefinition(t *testing.T) {
	repo := &fakeSavedRepo{}
	svc := newSavedService(repo, &fakeReportRuns{}, &fakeScopes{}, &fakeAudit{})

	_, err := svc.Create(context.Background(), identityFor(1), SaveReportRequest{
		Name:       "Broken",
		Definition: ReportDefinition{Entity: "widgets", Fields: []string{"id"}},
	})
	appErr := appError(t, err)
	if appErr.Code != common_models.CodeUnknownEntity {
		t.Errorf("code = %s", appErr.Code)
	}
	if repo.created != nil {
		t.Error("invalid definition must not persist")
	}
}

func TestSavedCreateStartsPrivate(t *testing.T) {
	repo := &fakeSavedRepo{}
	auditLog := &fakeAudit{}
	svc := newSavedService(repo, &fakeReportRuns{}, &fakeScopes{}, auditLog)

	saved, err := svc.Create(context.Background(), identityFor(3), SaveReportRequest{
		Name:       "Quarterly",
		Definition: validDefinition(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.Visibility != VisibilityPrivate {
		t.Errorf("visibility = %s", saved.Visibility)
	}
	if saved.OwnerID != 3 {
		t.Errorf("owner = %d", saved.OwnerID)
	}
	if len(auditLog.actions) != 1 || auditLog.actions[0] != common_models.AuditActionCreate {
		t.Errorf("audit actions = %v", auditLog.actions)
	}
}

func TestSavedVisibilityRules(t *testing.T) {
	tests := []struct {
		name       string
		visibility string
		caller     int64
		share      *ReportShare
		wantErr    bool
	}{
		{name: "owner sees private", visibility: VisibilityPrivate, caller: 1},
		{name: "stranger blocked from private", visibility: VisibilityPrivate, caller: 2, wantErr: true},
		{name: "share grants access", visibility: VisibilityShared, caller: 2, share: &ReportShare{ReportID: 11, UserID: 2}},
		{name: "public visible to anyone", visibility: VisibilityPublic, caller: 2},
		{name: "revoked blocks former viewers", visibility: VisibilityRevoked, caller: 2, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := privateReport(1)
			report.Visibility = tt.visibility
			repo := &fakeSavedRepo{report: report, share: tt.share}
			svc := newSavedService(repo, &fakeReportRuns{}, &fakeScopes{}, &fakeAudit{})

			_, err := svc.Get(context.Background(), identityFor(tt.caller), 11)
			if tt.wantErr {
				appErr := appError(t, err)
				if appErr.Code != common_models.CodeNotFound {
					t.Errorf("code = %s, want NOT_FOUND", appErr.Code)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSavedGetLoadsSharesForOwner(t *testing.T) {
	repo := &fakeSavedRepo{
		report: privateReport(1),
		shares: []ReportShare{{ID: 5, ReportID: 11, UserID: 2, CanEdit: true}},
	}
	svc := newSavedService(repo, &fakeReportRuns{}, &fakeScopes{}, &fakeAudit{})

	saved, err := svc.Get(context.Background(), identityFor(1), 11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(saved.Shares) != 1 || saved.Shares[0].UserID != 2 {
		t.Errorf("shares = %+v", saved.Shares)
	}
}

func TestSavedUpdateRequiresEditRights(t *testing.T) {
	report := privateReport(1)
	report.Visibility = VisibilityShared

	repo := &fakeSavedRepo{report: report, share: &ReportShare{ReportID: 11, UserID: 2, CanEdit: false}}
	svc := newSavedService(repo, &fakeReportRuns{}, &fakeScopes{}, &fakeAudit{})

	_, err := svc.Update(context.Background(), identityFor(2), 11, SaveReportRequest{
		Name:       "Renamed",
		Definition: validDefinition(),
	})
	appErr := appError(t, err)
	if appErr.Message != "Only the owner or a shared editor can modify this report" {
		t.Errorf("message = %q", appErr.Message)
	}

	repo.share.CanEdit = true
	updated, err := svc.Update(context.Background(), identityFor(2), 11, SaveReportRequest{
		Name:       "Renamed",
		Definition: validDefinition(),
	})
	if err != nil {
		t.Fatalf("editor update failed: %v", err)
	}
	if updated.Name != "Renamed" || repo.updated == nil {
		t.Errorf("update not persisted: %+v", repo.updated)
	}
}

func TestSavedDeleteIsOwnerOnly(t *testing.T) {
	report := privateReport(1)
	report.Visibility = VisibilityShared
	repo := &fakeSavedRepo{report: report, share: &ReportShare{ReportID: 11, UserID: 2, CanEdit: true}}
	auditLog := &fakeAudit{}
	svc := newSavedService(repo, &fakeReportRuns{}, &fakeScopes{}, auditLog)

	err := svc.Delete(context.Background(), identityFor(2), 11)
	appErr := appError(t, err)
	if appErr.Message != "Only the owner can delete this report" {
		t.Errorf("message = %q", appErr.Message)
	}

	if err := svc.Delete(context.Background(), identityFor(1), 11); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if repo.softDeleted != 11 {
		t.Errorf("soft delete id = %d", repo.softDeleted)
	}
	if len(auditLog.actions) == 0 || auditLog.actions[len(auditLog.actions)-1] != common_models.AuditActionDelete {
		t.Errorf("audit actions = %v", auditLog.actions)
	}
}

func TestSavedShareValidation(t *testing.T) {
	repo := &fakeSavedRepo{report: privateReport(1)}
	svc := newSavedService(repo, &fakeReportRuns{}, &fakeScopes{}, &fakeAudit{})

	_, err := svc.Share(context.Background(), identityFor(1), 11, ShareRequest{})
	if msg := appError(t, err).Message; msg != "user_id is required" {
		t.Errorf("message = %q", msg)
	}

	_, err = svc.Share(context.Background(), identityFor(1), 11, ShareRequest{UserID: 1})
	if msg := appError(t, err).Message; msg != "Cannot share a report with its owner" {
		t.Errorf("message = %q", msg)
	}
}

func TestSavedShareFlipsPrivateToShared(t *testing.T) {
	repo := &fakeSavedRepo{report: privateReport(1)}
	auditLog := &fakeAudit{}
	svc := newSavedService(repo, &fakeReportRuns{}, &fakeScopes{}, auditLog)

	share, err := svc.Share(context.Background(), identityFor(1), 11, ShareRequest{UserID: 2, CanEdit: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if share.ID != 5 || !share.CanEdit {
		t.Errorf("share = %+v", share)
	}
	if repo.setVis != VisibilityShared {
		t.Errorf("visibility = %q, want shared", repo.setVis)
	}
	if len(auditLog.actions) != 1 || auditLog.actions[0] != common_models.AuditActionShare {
		t.Errorf("audit actions = %v", auditLog.actions)
	}
}

func TestSavedShareKeepsPublicVisibility(t *testing.T) {
	report := privateReport(1)
	report.Visibility = VisibilityPublic
	repo := &fakeSavedRepo{report: report}
	svc := newSavedService(repo, &fakeReportRuns{}, &fakeScopes{}, &fakeAudit{})

	if _, err := svc.Share(context.Background(), identityFor(1), 11, ShareRequest{UserID: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.setVis != "" {
		t.Errorf("public visibility should stand, got transition to %q", repo.setVis)
	}
}

func TestSavedPublishIssuesToken(t *testing.T) {
	repo := &fakeSavedRepo{report: privateReport(1)}
	svc := newSavedService(repo, &fakeReportRuns{}, &fakeScopes{}, &fakeAudit{})

	token, err := svc.Publish(context.Background(), identityFor(1), 11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if repo.setVis != VisibilityPublic || repo.setToken == nil || *repo.setToken != token {
		t.Errorf("persisted visibility=%q token=%v", repo.setVis, repo.setToken)
	}
}

func TestSavedRevokeClearsTokenAndShares(t *testing.T) {
	report := privateReport(1)
	report.Visibility = VisibilityPublic
	repo := &fakeSavedRepo{report: report}
	svc := newSavedService(repo, &fakeReportRuns{}, &fakeScopes{}, &fakeAudit{})

	if err := svc.Revoke(context.Background(), identityFor(1), 11); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.setVis != VisibilityRevoked || repo.setToken != nil {
		t.Errorf("visibility=%q token=%v", repo.setVis, repo.setToken)
	}
	if repo.revokedID != 11 {
		t.Errorf("shares not revoked, id = %d", repo.revokedID)
	}
}

func TestSavedRunUsesCallerIdentity(t *testing.T) {
	report := privateReport(1)
	report.Visibility = VisibilityPublic
	repo := &fakeSavedRepo{report: report}
	runs := &fakeReportRuns{result: &ReportResult{Total: 2}}
	svc := newSavedService(repo, runs, &fakeScopes{}, &fakeAudit{})

	caller := identityFor(2)
	res, err := svc.Run(context.Background(), caller, 11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 {
		t.Errorf("total = %d", res.Total)
	}
	if runs.lastIdentity != caller {
		t.Errorf("ran as %+v, want the caller", runs.lastIdentity)
	}
}

func TestSavedRunPublicUsesOwnerScope(t *testing.T) {
	owner := &common_models.Identity{
		UserID: 42,
		Role:   common_models.RoleFundraiser,
		Scope:  &common_models.DataScopeFilter{AccountIDs: []int64{7}},
	}
	report := privateReport(42)
	report.Visibility = VisibilityPublic

	repo := &fakeSavedRepo{byToken: report}
	runs := &fakeReportRuns{result: &ReportResult{}}
	scopes := &fakeScopes{identity: owner}
	svc := newSavedService(repo, runs, scopes, &fakeAudit{})

	if _, err := svc.RunPublic(context.Background(), "tok-123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scopes.lastUser != 42 {
		t.Errorf("resolved scope for user %d, want 42", scopes.lastUser)
	}
	if runs.lastIdentity != owner {
		t.Errorf("public run must execute as the owner, got %+v", runs.lastIdentity)
	}
}

func TestSavedExportPassesReportName(t *testing.T) {
	repo := &fakeSavedRepo{report: privateReport(1)}
	runs := &fakeReportRuns{file: &ExportFile{Filename: "major_donors_report_x.csv"}}
	svc := newSavedService(repo, runs, &fakeScopes{}, &fakeAudit{})

	if _, err := svc.ExportSaved(context.Background(), identityFor(1), 11, "csv"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runs.lastFormat != "csv" || runs.lastName != "Major Donors" {
		t.Errorf("format=%q name=%q", runs.lastFormat, runs.lastName)
	}
}
