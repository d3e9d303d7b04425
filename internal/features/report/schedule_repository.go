package report

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"npo-crm/internal/database"

	common_models "npo-crm/internal/common/models"
)

type ScheduleRepository interface {
	Create(ctx context.Context, sched *ReportSchedule) error
	Get(ctx context.Context, id int64) (*ReportSchedule, error)
	ListForOwner(ctx context.Context, ownerID int64) ([]ReportSchedule, error)
	ListEnabled(ctx context.Context) ([]ReportSchedule, error)
	Update(ctx context.Context, sched *ReportSchedule) error
	Delete(ctx context.Context, id int64) error
	MarkRun(ctx context.Context, id int64, at time.Time) error

	CreateSnapshot(ctx context.Context, snap *ReportSnapshot, payload []byte) error
	ListSnapshots(ctx context.Context, scheduleID int64, limit int) ([]ReportSnapshot, error)
	GetSnapshot(ctx context.Context, id int64) (*ReportSnapshot, []byte, error)
}

type ScheduleRepositoryImpl struct {
	db *sql.DB
}

func NewScheduleRepository(db *database.PostgresDB) ScheduleRepository {
	return &ScheduleRepositoryImpl{db: db.DB}
}

const scheduleColumns = `id, report_id, cron_expr, format, enabled, last_run_at, created_at, updated_at`

func (r *ScheduleRepositoryImpl) Create(ctx context.Context, sched *ReportSchedule) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO report_schedules (report_id, cron_expr, format, enabled)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		sched.ReportID, sched.CronExpr, sched.Format, sched.Enabled,
	).Scan(&sched.ID, &sched.CreatedAt, &sched.UpdatedAt)
}

func (r *ScheduleRepositoryImpl) Get(ctx context.Context, id int64) (*ReportSchedule, error) {
	var sched ReportSchedule
	err := r.db.QueryRowContext(ctx, `
		SELECT `+scheduleColumns+` FROM report_schedules WHERE id = $1`, id,
	).Scan(&sched.ID, &sched.ReportID, &sched.CronExpr, &sched.Format,
		&sched.Enabled, &sched.LastRunAt, &sched.CreatedAt, &sched.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common_models.NewNotFound("Schedule")
	}
	if err != nil {
		return nil, err
	}
	return &sched, nil
}

// ListForOwner returns schedules on reports the user owns.
func (r *ScheduleRepositoryImpl) ListForOwner(ctx context.Context, ownerID int64) ([]ReportSchedule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.report_id, s.cron_expr, s.format, s.enabled, s.last_run_at, s.created_at, s.updated_at
		FROM report_schedules s
		JOIN saved_reports r ON r.id = s.report_id AND r.deleted_at IS NULL
		WHERE r.owner_id = $1
		ORDER BY s.created_at`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSchedules(rows)
}

func (r *ScheduleRepositoryImpl) ListEnabled(ctx context.Context) ([]ReportSchedule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.report_id, s.cron_expr, s.format, s.enabled, s.last_run_at, s.created_at, s.updated_at
		FROM report_schedules s
		JOIN saved_reports r ON r.id = s.report_id AND r.deleted_at IS NULL
		WHERE s.enabled`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSchedules(rows)
}

func (r *ScheduleRepositoryImpl) Update(ctx context.Context, sched *ReportSchedule) error {
	sched.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE report_schedules
		SET cron_expr = $1, format = $2, enabled = $3, updated_at = $4
		WHERE id = $5`,
		sched.CronExpr, sched.Format, sched.Enabled, sched.UpdatedAt, sched.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common_models.NewNotFound("Schedule")
	}
	return nil
}

func (r *ScheduleRepositoryImpl) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM report_schedules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common_models.NewNotFound("Schedule")
	}
	return nil
}

func (r *ScheduleRepositoryImpl) MarkRun(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE report_schedules SET last_run_at = $1, updated_at = now() WHERE id = $2`, at, id)
	return err
}

func (r *ScheduleRepositoryImpl) CreateSnapshot(ctx context.Context, snap *ReportSnapshot, payload []byte) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO report_snapshots (schedule_id, report_id, status, row_count, format, payload, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		snap.ScheduleID, snap.ReportID, snap.Status, snap.RowCount, snap.Format, payload, snap.Error,
	).Scan(&snap.ID, &snap.CreatedAt)
}

func (r *ScheduleRepositoryImpl) ListSnapshots(ctx context.Context, scheduleID int64, limit int) ([]ReportSnapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, schedule_id, report_id, status, row_count, format, error, created_at
		FROM report_snapshots
		WHERE schedule_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, scheduleID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []ReportSnapshot
	for rows.Next() {
		var snap ReportSnapshot
		if err := rows.Scan(&snap.ID, &snap.ScheduleID, &snap.ReportID, &snap.Status,
			&snap.RowCount, &snap.Format, &snap.Error, &snap.CreatedAt); err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func (r *ScheduleRepositoryImpl) GetSnapshot(ctx context.Context, id int64) (*ReportSnapshot, []byte, error) {
	var (
		snap    ReportSnapshot
		payload []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, schedule_id, report_id, status, row_count, format, payload, error, created_at
		FROM report_snapshots
		WHERE id = $1`, id,
	).Scan(&snap.ID, &snap.ScheduleID, &snap.ReportID, &snap.Status,
		&snap.RowCount, &snap.Format, &payload, &snap.Error, &snap.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, common_models.NewNotFound("Snapshot")
	}
	if err != nil {
		return nil, nil, err
	}
	return &snap, payload, nil
}

func scanSchedules(rows *sql.Rows) ([]ReportSchedule, error) {
	var scheds []ReportSchedule
	for rows.Next() {
		var sched ReportSchedule
		if err := rows.Scan(&sched.ID, &sched.ReportID, &sched.CronExpr, &sched.Format,
			&sched.Enabled, &sched.LastRunAt, &sched.CreatedAt, &sched.UpdatedAt); err != nil {
			return nil, err
		}
		scheds = append(scheds, sched)
	}
	return scheds, rows.Err()
}
