package report

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"npo-crm/internal/features/audit"
	"npo-crm/internal/features/notify"

	common_models "npo-crm/internal/common/models"
)

type ScheduleRequest struct {
	ReportID int64  `json:"report_id,omitempty"`
	CronExpr string `json:"cron_expr"`
	Format   string `json:"format"`
	Enabled  bool   `json:"enabled"`
}

// ScheduleService manages report schedules and runs them. New schedules
// start enabled; PUT replaces cron_expr, format and enabled wholesale.
// Runs execute under the report owner's scope and always record a
// snapshot, failed runs included.
type ScheduleService interface {
	Create(ctx context.Context, identity *common_models.Identity, req ScheduleRequest) (*ReportSchedule, error)
	List(ctx context.Context, identity *common_models.Identity) ([]ReportSchedule, error)
	Update(ctx context.Context, identity *common_models.Identity, id int64, req ScheduleRequest) (*ReportSchedule, error)
	Delete(ctx context.Context, identity *common_models.Identity, id int64) error
	Snapshots(ctx context.Context, identity *common_models.Identity, scheduleID int64, limit int) ([]ReportSnapshot, error)
	Snapshot(ctx context.Context, identity *common_models.Identity, snapshotID int64) (*ReportSnapshot, []byte, error)

	InitializeScheduler(ctx context.Context) error
	StopScheduler() error
}

type ScheduleServiceImpl struct {
	Repo      ScheduleRepository
	SavedRepo SavedReportRepository
	Reports   ReportService
	Scopes    OwnerScopeResolver
	Audit     audit.AuditService
	Hub       *notify.Hub
	Log       *zap.Logger

	scheduler *cron.Cron
	entries   map[int64]cron.EntryID
	mu        sync.RWMutex
}

func NewScheduleService(repo ScheduleRepository, savedRepo SavedReportRepository, reports ReportService, scopes OwnerScopeResolver, auditService audit.AuditService, hub *notify.Hub, log *zap.Logger) ScheduleService {
	return &ScheduleServiceImpl{
		Repo:      repo,
		SavedRepo: savedRepo,
		Reports:   reports,
		Scopes:    scopes,
		Audit:     auditService,
		Hub:       hub,
		Log:       log,
		entries:   make(map[int64]cron.EntryID),
	}
}

func (s *ScheduleServiceImpl) Create(ctx context.Context, identity *common_models.Identity, req ScheduleRequest) (*ReportSchedule, error) {
	saved, err := s.SavedRepo.Get(ctx, req.ReportID)
	if err != nil {
		return nil, err
	}
	if saved.OwnerID != identity.UserID {
		return nil, common_models.NewForbidden("Only the owner can schedule this report")
	}
	if _, err := cron.ParseStandard(req.CronExpr); err != nil {
		return nil, common_models.NewValidation("Invalid cron expression")
	}
	format, err := ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}

	sched := &ReportSchedule{
		ReportID: req.ReportID,
		CronExpr: req.CronExpr,
		Format:   string(format),
		Enabled:  true,
	}
	if err := s.Repo.Create(ctx, sched); err != nil {
		return nil, err
	}

	s.Audit.LogChange(ctx, common_models.AuditActionSchedule, "report_schedule", strconv.FormatInt(sched.ID, 10), map[string]common_models.Change{
		"schedule": {New: sched},
	})

	if s.scheduler != nil {
		if err := s.registerSchedule(sched); err != nil {
			s.Log.Warn("failed to register schedule", zap.Int64("schedule_id", sched.ID), zap.Error(err))
		}
	}
	return sched, nil
}

func (s *ScheduleServiceImpl) List(ctx context.Context, identity *common_models.Identity) ([]ReportSchedule, error) {
	return s.Repo.ListForOwner(ctx, identity.UserID)
}

func (s *ScheduleServiceImpl) Update(ctx context.Context, identity *common_models.Identity, id int64, req ScheduleRequest) (*ReportSchedule, error) {
	sched, err := s.ownedSchedule(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if _, err := cron.ParseStandard(req.CronExpr); err != nil {
		return nil, common_models.NewValidation("Invalid cron expression")
	}
	format, err := ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}

	before := *sched
	sched.CronExpr = req.CronExpr
	sched.Format = string(format)
	sched.Enabled = req.Enabled
	if err := s.Repo.Update(ctx, sched); err != nil {
		return nil, err
	}

	s.Audit.LogChange(ctx, common_models.AuditActionSchedule, "report_schedule", strconv.FormatInt(id, 10), map[string]common_models.Change{
		"schedule": {Old: before, New: sched},
	})

	s.unregisterSchedule(id)
	if sched.Enabled && s.scheduler != nil {
		if err := s.registerSchedule(sched); err != nil {
			s.Log.Warn("failed to register updated schedule", zap.Int64("schedule_id", id), zap.Error(err))
		}
	}
	return sched, nil
}

func (s *ScheduleServiceImpl) Delete(ctx context.Context, identity *common_models.Identity, id int64) error {
	sched, err := s.ownedSchedule(ctx, identity, id)
	if err != nil {
		return err
	}

	s.unregisterSchedule(id)
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	s.Audit.LogChange(ctx, common_models.AuditActionSchedule, "report_schedule", strconv.FormatInt(id, 10), map[string]common_models.Change{
		"schedule": {Old: sched, New: "DELETED"},
	})
	return nil
}

func (s *ScheduleServiceImpl) Snapshots(ctx context.Context, identity *common_models.Identity, scheduleID int64, limit int) ([]ReportSnapshot, error) {
	if _, err := s.ownedSchedule(ctx, identity, scheduleID); err != nil {
		return nil, err
	}
	return s.Repo.ListSnapshots(ctx, scheduleID, limit)
}

func (s *ScheduleServiceImpl) Snapshot(ctx context.Context, identity *common_models.Identity, snapshotID int64) (*ReportSnapshot, []byte, error) {
	snap, payload, err := s.Repo.GetSnapshot(ctx, snapshotID)
	if err != nil {
		return nil, nil, err
	}
	saved, err := s.SavedRepo.Get(ctx, snap.ReportID)
	if err != nil {
		return nil, nil, err
	}
	if saved.OwnerID != identity.UserID {
		return nil, nil, common_models.NewNotFound("Snapshot")
	}
	return snap, payload, nil
}

func (s *ScheduleServiceImpl) ownedSchedule(ctx context.Context, identity *common_models.Identity, id int64) (*ReportSchedule, error) {
	sched, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	saved, err := s.SavedRepo.Get(ctx, sched.ReportID)
	if err != nil {
		return nil, err
	}
	if saved.OwnerID != identity.UserID {
		return nil, common_models.NewNotFound("Schedule")
	}
	return sched, nil
}

func (s *ScheduleServiceImpl) InitializeScheduler(ctx context.Context) error {
	s.Log.Info("Initializing report scheduler")
	s.scheduler = cron.New()

	scheds, err := s.Repo.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("failed to load enabled schedules: %w", err)
	}
	for i := range scheds {
		if err := s.registerSchedule(&scheds[i]); err != nil {
			s.Log.Warn("failed to register schedule", zap.Int64("schedule_id", scheds[i].ID), zap.Error(err))
		}
	}

	s.scheduler.Start()
	return nil
}

func (s *ScheduleServiceImpl) StopScheduler() error {
	if s.scheduler != nil {
		ctx := s.scheduler.Stop()
		<-ctx.Done()
	}
	return nil
}

func (s *ScheduleServiceImpl) registerSchedule(sched *ReportSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler == nil {
		return fmt.Errorf("scheduler not initialized")
	}

	id := sched.ID
	entryID, err := s.scheduler.AddFunc(sched.CronExpr, func() {
		ctx := context.Background()
		latest, err := s.Repo.Get(ctx, id)
		if err != nil || !latest.Enabled {
			return
		}
		s.executeSchedule(ctx, latest)
	})
	if err != nil {
		return fmt.Errorf("failed to add schedule to scheduler: %w", err)
	}

	s.entries[id] = entryID
	return nil
}

func (s *ScheduleServiceImpl) unregisterSchedule(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, exists := s.entries[id]; exists {
		s.scheduler.Remove(entryID)
		delete(s.entries, id)
	}
}

func (s *ScheduleServiceImpl) executeSchedule(ctx context.Context, sched *ReportSchedule) {
	snap := &ReportSnapshot{
		ScheduleID: sched.ID,
		ReportID:   sched.ReportID,
		Format:     sched.Format,
	}

	var payload []byte
	file, err := s.runExport(ctx, sched)
	if err != nil {
		snap.Status = SnapshotFailed
		snap.Error = err.Error()
		s.Log.Warn("scheduled report run failed",
			zap.Int64("schedule_id", sched.ID),
			zap.Int64("report_id", sched.ReportID),
			zap.Error(err))
	} else {
		snap.Status = SnapshotCompleted
		snap.RowCount = file.Rows
		payload = file.Data
	}

	if err := s.Repo.CreateSnapshot(ctx, snap, payload); err != nil {
		s.Log.Error("snapshot write failed", zap.Int64("schedule_id", sched.ID), zap.Error(err))
	}
	if err := s.Repo.MarkRun(ctx, sched.ID, time.Now()); err != nil {
		s.Log.Error("schedule mark run failed", zap.Int64("schedule_id", sched.ID), zap.Error(err))
	}

	s.Hub.Publish("report.completed", map[string]interface{}{
		"report_id":   sched.ReportID,
		"schedule_id": sched.ID,
		"status":      snap.Status,
		"row_count":   snap.RowCount,
	})
}

// runExport executes the schedule's report under the owner's scope.
func (s *ScheduleServiceImpl) runExport(ctx context.Context, sched *ReportSchedule) (*ExportFile, error) {
	saved, err := s.SavedRepo.Get(ctx, sched.ReportID)
	if err != nil {
		return nil, err
	}
	owner, err := s.Scopes.ResolveOwner(ctx, saved.OwnerID)
	if err != nil {
		return nil, err
	}
	return s.Reports.Export(ctx, owner, saved.Definition, sched.Format, saved.Name)
}
