package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"npo-crm/internal/features/notify"

	common_models "npo-crm/internal/common/models"
)

type fakeScheduleRepo struct {
	sched *ReportSchedule
	snap  *ReportSnapshot

	created     *ReportSchedule
	updated     *ReportSchedule
	deletedID   int64
	createdSnap *ReportSnapshot
	payload     []byte
	markedID    int64
}

func (f *fakeScheduleRepo) Create(ctx context.Context, sched *ReportSchedule) error {
	sched.ID = 21
	f.created = sched
	return nil
}

func (f *fakeScheduleRepo) Get(ctx context.Context, id int64) (*ReportSchedule, error) {
	if f.sched == nil {
		return nil, common_models.NewNotFound("Schedule")
	}
	return f.sched, nil
}

func (f *fakeScheduleRepo) ListForOwner(ctx context.Context, ownerID int64) ([]ReportSchedule, error) {
	return nil, nil
}

func (f *fakeScheduleRepo) ListEnabled(ctx context.Context) ([]ReportSchedule, error) {
	return nil, nil
}

func (f *fakeScheduleRepo) Update(ctx context.Context, sched *ReportSchedule) error {
	f.updated = sched
	return nil
}

func (f *fakeScheduleRepo) Delete(ctx context.Context, id int64) error {
	f.deletedID = id
	return nil
}

func (f *fakeScheduleRepo) MarkRun(ctx context.Context, id int64, at time.Time) error {
	f.markedID = id
	return nil
}

func (f *fakeScheduleRepo) CreateSnapshot(ctx context.Context, snap *ReportSnapshot, payload []byte) error {
	f.createdSnap = snap
	f.payload = payload
	return nil
}

func (f *fakeScheduleRepo) ListSnapshots(ctx context.Context, scheduleID int64, limit int) ([]ReportSnapshot, error) {
	return nil, nil
}

func (f *fakeScheduleRepo) GetSnapshot(ctx context.Context, id int64) (*ReportSnapshot, []byte, error) {
	if f.snap == nil {
		return nil, nil, common_models.NewNotFound("Snapshot")
	}
	return f.snap, f.payload, nil
}

func newScheduleService(repo ScheduleRepository, savedRepo SavedReportRepository, runs ReportService, scopes OwnerScopeResolver) *ScheduleServiceImpl {
	svc := NewScheduleService(repo, savedRepo, runs, scopes, &fakeAudit{}, notify.NewHub(zap.NewNop()), zap.NewNop())
	return svc.(*ScheduleServiceImpl)
}

func TestScheduleCreateValidatesCron(t *testing.T) {
	svc := newScheduleService(&fakeScheduleRepo{}, &fakeSavedRepo{report: privateReport(1)}, &fakeReportRuns{}, &fakeScopes{})

	_, err := svc.Create(context.Background(), identityFor(1), ScheduleRequest{
		ReportID: 11,
		CronExpr: "whenever",
		Format:   "csv",
	})
	if msg := appError(t, err).Message; msg != "Invalid cron expression" {
		t.Errorf("message = %q", msg)
	}
}

func TestScheduleCreateValidatesFormat(t *testing.T) {
	svc := newScheduleService(&fakeScheduleRepo{}, &fakeSavedRepo{report: privateReport(1)}, &fakeReportRuns{}, &fakeScopes{})

	_, err := svc.Create(context.Background(), identityFor(1), ScheduleRequest{
		ReportID: 11,
		CronExpr: "0 6 * * *",
		Format:   "pdf",
	})
	if code := appError(t, err).Code; code != common_models.CodeUnsupportedFormat {
		t.Errorf("code = %s", code)
	}
}

func TestScheduleCreateIsOwnerOnly(t *testing.T) {
	svc := newScheduleService(&fakeScheduleRepo{}, &fakeSavedRepo{report: privateReport(1)}, &fakeReportRuns{}, &fakeScopes{})

	_, err := svc.Create(context.Background(), identityFor(2), ScheduleRequest{
		ReportID: 11,
		CronExpr: "0 6 * * *",
		Format:   "csv",
	})
	if msg := appError(t, err).Message; msg != "Only the owner can schedule this report" {
		t.Errorf("message = %q", msg)
	}
}

func TestScheduleCreateStartsEnabled(t *testing.T) {
	repo := &fakeScheduleRepo{}
	svc := newScheduleService(repo, &fakeSavedRepo{report: privateReport(1)}, &fakeReportRuns{}, &fakeScopes{})

	sched, err := svc.Create(context.Background(), identityFor(1), ScheduleRequest{
		ReportID: 11,
		CronExpr: "0 6 * * *",
		Format:   "csv",
		Enabled:  false,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sched.Enabled {
		t.Error("new schedules must start enabled")
	}
	if repo.created == nil || repo.created.Format != "csv" {
		t.Errorf("created = %+v", repo.created)
	}
}

func TestScheduleUpdateReplacesEverything(t *testing.T) {
	repo := &fakeScheduleRepo{
		sched: &ReportSchedule{ID: 21, ReportID: 11, CronExpr: "0 6 * * *", Format: "csv", Enabled: true},
	}
	svc := newScheduleService(repo, &fakeSavedRepo{report: privateReport(1)}, &fakeReportRuns{}, &fakeScopes{})

	sched, err := svc.Update(context.Background(), identityFor(1), 21, ScheduleRequest{
		CronExpr: "30 7 * * 1",
		Format:   "xlsx",
		Enabled:  false,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sched.CronExpr != "30 7 * * 1" || sched.Format != "xlsx" || sched.Enabled {
		t.Errorf("updated = %+v", sched)
	}
	if repo.updated == nil {
		t.Error("update not persisted")
	}
}

func TestScheduleSnapshotHiddenFromNonOwners(t *testing.T) {
	repo := &fakeScheduleRepo{
		snap: &ReportSnapshot{ID: 31, ScheduleID: 21, ReportID: 11, Status: SnapshotCompleted},
	}
	svc := newScheduleService(repo, &fakeSavedRepo{report: privateReport(1)}, &fakeReportRuns{}, &fakeScopes{})

	_, _, err := svc.Snapshot(context.Background(), identityFor(2), 31)
	appErr := appError(t, err)
	if appErr.Code != common_models.CodeNotFound || appErr.Message != "Snapshot not found" {
		t.Errorf("got %s %q", appErr.Code, appErr.Message)
	}
}

func TestExecuteScheduleRecordsCompletedRun(t *testing.T) {
	repo := &fakeScheduleRepo{}
	runs := &fakeReportRuns{
		file: &ExportFile{Filename: "major_donors_report_x.csv", Rows: 4, Data: []byte("Amount\n1\n2\n3\n4\n")},
	}
	svc := newScheduleService(repo, &fakeSavedRepo{report: privateReport(1)}, runs, &fakeScopes{identity: identityFor(1)})

	sched := &ReportSchedule{ID: 21, ReportID: 11, Format: "csv", Enabled: true}
	svc.executeSchedule(context.Background(), sched)

	snap := repo.createdSnap
	if snap == nil {
		t.Fatal("no snapshot recorded")
	}
	if snap.Status != SnapshotCompleted || snap.RowCount != 4 {
		t.Errorf("snapshot = %+v", snap)
	}
	if len(repo.payload) == 0 {
		t.Error("payload not stored")
	}
	if repo.markedID != 21 {
		t.Errorf("last run not marked, id = %d", repo.markedID)
	}
}

func TestExecuteScheduleRecordsFailedRun(t *testing.T) {
	repo := &fakeScheduleRepo{}
	runs := &fakeReportRuns{exportErr: errors.New("connection refused")}
	svc := newScheduleService(repo, &fakeSavedRepo{report: privateReport(1)}, runs, &fakeScopes{identity: identityFor(1)})

	sched := &ReportSchedule{ID: 21, ReportID: 11, Format: "csv", Enabled: true}
	svc.executeSchedule(context.Background(), sched)

	snap := repo.createdSnap
	if snap == nil {
		t.Fatal("failed runs must still record a snapshot")
	}
	if snap.Status != SnapshotFailed || snap.Error != "connection refused" {
		t.Errorf("snapshot = %+v", snap)
	}
	if len(repo.payload) != 0 {
		t.Errorf("failed run stored a payload: %q", repo.payload)
	}
}
