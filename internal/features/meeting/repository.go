package meeting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"npo-crm/internal/database"
	"npo-crm/internal/features/catalog"
	"npo-crm/internal/features/report"

	common_models "npo-crm/internal/common/models"
)

type MeetingRepository interface {
	Create(ctx context.Context, m *Meeting) error
	FindByID(ctx context.Context, id int64, scope *common_models.DataScopeFilter) (*Meeting, error)
	List(ctx context.Context, filter ListFilter, scope *common_models.DataScopeFilter, p common_models.Pagination) ([]Meeting, int64, error)
	Update(ctx context.Context, m *Meeting) error
	SoftDelete(ctx context.Context, id int64) error
}

type MeetingRepositoryImpl struct {
	DB     *sql.DB
	entity *catalog.Entity
}

func NewMeetingRepository(db *database.PostgresDB, cat *catalog.Catalog) (MeetingRepository, error) {
	ent, err := cat.Entity("meetings")
	if err != nil {
		return nil, err
	}
	return &MeetingRepositoryImpl{DB: db.DB, entity: ent}, nil
}

const meetingColumns = "m.id, m.account_id, m.contact_id, m.subject, m.location, m.starts_at, m.ends_at, m.organizer_id, m.created_by, m.created_at, m.updated_at"

func (r *MeetingRepositoryImpl) Create(ctx context.Context, m *Meeting) error {
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO meetings (account_id, contact_id, subject, location, starts_at, ends_at, organizer_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		nullableID(m.AccountID), nullableID(m.ContactID), m.Subject, m.Location,
		m.StartsAt, m.EndsAt, nullableID(m.OrganizerID), m.CreatedBy,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (r *MeetingRepositoryImpl) FindByID(ctx context.Context, id int64, scope *common_models.DataScopeFilter) (*Meeting, error) {
	conds := []string{"m.deleted_at IS NULL", "m.id = $1"}
	args := []interface{}{id}
	next := 2
	scopeConds, scopeArgs := report.ScopeSQL(r.entity, scope, &next)
	conds = append(conds, scopeConds...)
	args = append(args, scopeArgs...)

	row := r.DB.QueryRowContext(ctx,
		"SELECT "+meetingColumns+" FROM meetings m WHERE "+strings.Join(conds, " AND "), args...)
	m, err := scanMeetingRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common_models.NewNotFound("Meeting")
	}
	return m, err
}

func (r *MeetingRepositoryImpl) List(ctx context.Context, filter ListFilter, scope *common_models.DataScopeFilter, p common_models.Pagination) ([]Meeting, int64, error) {
	conds := []string{"m.deleted_at IS NULL"}
	args := []interface{}{}
	next := 1
	add := func(cond string, value interface{}) {
		conds = append(conds, fmt.Sprintf(cond, next))
		args = append(args, value)
		next++
	}

	if filter.AccountID != 0 {
		add("m.account_id = $%d", filter.AccountID)
	}
	if filter.ContactID != 0 {
		add("m.contact_id = $%d", filter.ContactID)
	}
	if filter.OrganizerID != 0 {
		add("m.organizer_id = $%d", filter.OrganizerID)
	}
	if !filter.From.IsZero() {
		add("m.starts_at >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("m.starts_at <= $%d", filter.To)
	}
	if filter.Search != "" {
		add("m.subject ILIKE $%d", "%"+filter.Search+"%")
	}

	scopeConds, scopeArgs := report.ScopeSQL(r.entity, scope, &next)
	conds = append(conds, scopeConds...)
	args = append(args, scopeArgs...)
	where := strings.Join(conds, " AND ")

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM meetings m WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM meetings m WHERE %s ORDER BY m.starts_at ASC LIMIT $%d OFFSET $%d",
		meetingColumns, where, next, next+1)
	rows, err := r.DB.QueryContext(ctx, query, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	meetings := []Meeting{}
	for rows.Next() {
		m, err := scanMeetingRow(rows)
		if err != nil {
			return nil, 0, err
		}
		meetings = append(meetings, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return meetings, total, nil
}

func (r *MeetingRepositoryImpl) Update(ctx context.Context, m *Meeting) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE meetings SET account_id = $1, contact_id = $2, subject = $3, location = $4,
			starts_at = $5, ends_at = $6, organizer_id = $7, updated_at = now()
		WHERE id = $8 AND deleted_at IS NULL`,
		nullableID(m.AccountID), nullableID(m.ContactID), m.Subject, m.Location,
		m.StartsAt, m.EndsAt, nullableID(m.OrganizerID), m.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *MeetingRepositoryImpl) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE meetings SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMeetingRow(s rowScanner) (*Meeting, error) {
	var m Meeting
	var accountID, contactID, organizerID sql.NullInt64
	var endsAt sql.NullTime
	if err := s.Scan(&m.ID, &accountID, &contactID, &m.Subject, &m.Location,
		&m.StartsAt, &endsAt, &organizerID, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if accountID.Valid {
		m.AccountID = &accountID.Int64
	}
	if contactID.Valid {
		m.ContactID = &contactID.Int64
	}
	if organizerID.Valid {
		m.OrganizerID = &organizerID.Int64
	}
	if endsAt.Valid {
		m.EndsAt = &endsAt.Time
	}
	return &m, nil
}

func nullableID(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common_models.NewNotFound("Meeting")
	}
	return nil
}
