package dashboard

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"npo-crm/internal/database"
	"npo-crm/internal/features/catalog"
	"npo-crm/internal/features/report"

	common_models "npo-crm/internal/common/models"
)

type DashboardRepository interface {
	GetDefault(ctx context.Context, userID int64) (*Dashboard, error)
	SaveDefault(ctx context.Context, d *Dashboard) error
	Summary(ctx context.Context, scope *common_models.DataScopeFilter) (*Summary, error)
}

type DashboardRepositoryImpl struct {
	DB       *sql.DB
	donation *catalog.Entity
	casework *catalog.Entity
	meeting  *catalog.Entity
}

func NewDashboardRepository(db *database.PostgresDB, cat *catalog.Catalog) (DashboardRepository, error) {
	repo := &DashboardRepositoryImpl{DB: db.DB}
	var err error
	if repo.donation, err = cat.Entity("donations"); err != nil {
		return nil, err
	}
	if repo.casework, err = cat.Entity("cases"); err != nil {
		return nil, err
	}
	if repo.meeting, err = cat.Entity("meetings"); err != nil {
		return nil, err
	}
	return repo, nil
}

// GetDefault returns nil without an error when the user has no stored
// dashboard yet; the service substitutes an empty default.
func (r *DashboardRepositoryImpl) GetDefault(ctx context.Context, userID int64) (*Dashboard, error) {
	var d Dashboard
	var widgets []byte
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, name, is_default, widgets, created_at, updated_at
		FROM dashboards WHERE user_id = $1 AND is_default`, userID,
	).Scan(&d.ID, &d.UserID, &d.Name, &d.IsDefault, &widgets, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(widgets, &d.Widgets); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DashboardRepositoryImpl) SaveDefault(ctx context.Context, d *Dashboard) error {
	widgets, err := json.Marshal(d.Widgets)
	if err != nil {
		return err
	}
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO dashboards (user_id, name, is_default, widgets)
		VALUES ($1, $2, TRUE, $3)
		ON CONFLICT (user_id) WHERE is_default
		DO UPDATE SET name = EXCLUDED.name, widgets = EXCLUDED.widgets, updated_at = now()
		RETURNING id, created_at, updated_at`,
		d.UserID, d.Name, widgets,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *DashboardRepositoryImpl) Summary(ctx context.Context, scope *common_models.DataScopeFilter) (*Summary, error) {
	summary := &Summary{
		RecentDonations:  []RecentDonation{},
		UpcomingMeetings: []UpcomingMeeting{},
	}

	where, args := scopedWhere(r.donation, scope, "d.deleted_at IS NULL")
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(d.amount), 0) FROM donations d WHERE "+where, args...,
	).Scan(&summary.Donations.Count, &summary.Donations.TotalAmount); err != nil {
		return nil, err
	}

	where, args = scopedWhere(r.donation, scope,
		"d.deleted_at IS NULL", "d.received_at >= date_trunc('month', now())")
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(d.amount), 0) FROM donations d WHERE "+where, args...,
	).Scan(&summary.Donations.MonthAmount); err != nil {
		return nil, err
	}

	where, args = scopedWhere(r.casework, scope, "cs.deleted_at IS NULL", "cs.status <> 'closed'")
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM cases cs WHERE "+where, args...,
	).Scan(&summary.OpenCases); err != nil {
		return nil, err
	}

	where, args = scopedWhere(r.donation, scope, "d.deleted_at IS NULL")
	rows, err := r.DB.QueryContext(ctx,
		"SELECT d.id, d.amount, d.currency, d.campaign, d.received_at FROM donations d WHERE "+
			where+" ORDER BY d.received_at DESC LIMIT 5", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var rd RecentDonation
		if err := rows.Scan(&rd.ID, &rd.Amount, &rd.Currency, &rd.Campaign, &rd.ReceivedAt); err != nil {
			return nil, err
		}
		summary.RecentDonations = append(summary.RecentDonations, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	where, args = scopedWhere(r.meeting, scope, "m.deleted_at IS NULL", "m.starts_at >= now()")
	meetingRows, err := r.DB.QueryContext(ctx,
		"SELECT m.id, m.subject, m.location, m.starts_at FROM meetings m WHERE "+
			where+" ORDER BY m.starts_at ASC LIMIT 5", args...)
	if err != nil {
		return nil, err
	}
	defer meetingRows.Close()
	for meetingRows.Next() {
		var um UpcomingMeeting
		if err := meetingRows.Scan(&um.ID, &um.Subject, &um.Location, &um.StartsAt); err != nil {
			return nil, err
		}
		summary.UpcomingMeetings = append(summary.UpcomingMeetings, um)
	}
	if err := meetingRows.Err(); err != nil {
		return nil, err
	}

	return summary, nil
}

func scopedWhere(entity *catalog.Entity, scope *common_models.DataScopeFilter, base ...string) (string, []interface{}) {
	conds := append([]string{}, base...)
	args := []interface{}{}
	next := 1
	scopeConds, scopeArgs := report.ScopeSQL(entity, scope, &next)
	conds = append(conds, scopeConds...)
	args = append(args, scopeArgs...)
	return strings.Join(conds, " AND "), args
}
