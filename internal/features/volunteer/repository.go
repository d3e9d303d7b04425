package volunteer

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

type VolunteerRepository interface {
	Create(ctx context.Context, v *Volunteer) error
	FindByID(ctx context.Context, id int64, scope *common_models.DataScopeFilter) (*Volunteer, error)
	List(ctx context.Context, filter ListFilter, scope *common_models.DataScopeFilter, p common_models.Pagination) ([]Volunteer, int64, error)
	Update(ctx context.Context, v *Volunteer) error
	SoftDelete(ctx context.Context, id int64) error
}

type VolunteerRepositoryImpl struct {
	DB     *sql.DB
	entity *catalog.Entity
}

func NewVolunteerRepository(db *database.PostgresDB, cat *catalog.Catalog) (VolunteerRepository, error) {
	ent, err := cat.Entity("volunteers")
	if err != nil {
		return nil, err
	}
	return &VolunteerRepositoryImpl{DB: db.DB, entity: ent}, nil
}

const volunteerColumns = "v.id, v.contact_id, v.status, v.skills, v.hours_logged, v.started_on, v.created_by, v.created_at, v.updated_at"

func (r *VolunteerRepositoryImpl) Create(ctx context.Context, v *Volunteer) error {
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO volunteers (contact_id, status, skills, hours_logged, started_on, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		v.ContactID, v.Status, v.Skills, v.HoursLogged, v.StartedOn, v.CreatedBy,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

func (r *VolunteerRepositoryImpl) FindByID(ctx context.Context, id int64, scope *common_models.DataScopeFilter) (*Volunteer, error) {
	conds := []string{"v.deleted_at IS NULL", "v.id = $1"}
	args := []interface{}{id}
	next := 2
	scopeConds, scopeArgs := report.ScopeSQL(r.entity, scope, &next)
	conds = append(conds, scopeConds...)
	args = append(args, scopeArgs...)

	row := r.DB.QueryRowContext(ctx,
		"SELECT "+volunteerColumns+" FROM volunteers v WHERE "+strings.Join(conds, " AND "), args...)
	v, err := scanVolunteerRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common_models.NewNotFound("Volunteer")
	}
	return v, err
}

func (r *VolunteerRepositoryImpl) List(ctx context.Context, filter ListFilter, scope *common_models.DataScopeFilter, p common_models.Pagination) ([]Volunteer, int64, error) {
	conds := []string{"v.deleted_at IS NULL"}
	args := []interface{}{}
	next := 1

	if filter.ContactID != 0 {
		conds = append(conds, fmt.Sprintf("v.contact_id = $%d", next))
		args = append(args, filter.ContactID)
		next++
	}
	if filter.Status != "" {
		conds = append(conds, fmt.Sprintf("v.status = $%d", next))
		args = append(args, filter.Status)
		next++
	}
	if filter.Search != "" {
		conds = append(conds, fmt.Sprintf("v.skills ILIKE $%d", next))
		args = append(args, "%"+filter.Search+"%")
		next++
	}

	scopeConds, scopeArgs := report.ScopeSQL(r.entity, scope, &next)
	conds = append(conds, scopeConds...)
	args = append(args, scopeArgs...)
	where := strings.Join(conds, " AND ")

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM volunteers v WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM volunteers v WHERE %s ORDER BY v.created_at DESC LIMIT $%d OFFSET $%d",
		volunteerColumns, where, next, next+1)
	rows, err := r.DB.QueryContext(ctx, query, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	volunteers := []Volunteer{}
	for rows.Next() {
		v, err := scanVolunteerRow(rows)
		if err != nil {
			return nil, 0, err
		}
		volunteers = append(volunteers, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return volunteers, total, nil
}

func (r *VolunteerRepositoryImpl) Update(ctx context.Context, v *Volunteer) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE volunteers SET contact_id = $1, status = $2, skills = $3, hours_logged = $4,
			started_on = $5, updated_at = now()
		WHERE id = $6 AND deleted_at IS NULL`,
		v.ContactID, v.Status, v.Skills, v.HoursLogged, v.StartedOn, v.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *VolunteerRepositoryImpl) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE volunteers SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVolunteerRow(s rowScanner) (*Volunteer, error) {
	var v Volunteer
	var startedOn sql.NullTime
	if err := s.Scan(&v.ID, &v.ContactID, &v.Status, &v.Skills, &v.HoursLogged,
		&startedOn, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	if startedOn.Valid {
		v.StartedOn = &startedOn.Time
	}
	return &v, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common_models.NewNotFound("Volunteer")
	}
	return nil
}
