package casework

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

type CaseRepository interface {
	Create(ctx context.Context, cs *Case) error
	FindByID(ctx context.Context, id int64, scope *common_models.DataScopeFilter) (*Case, error)
	List(ctx context.Context, filter ListFilter, scope *common_models.DataScopeFilter, p common_models.Pagination) ([]Case, int64, error)
	Update(ctx context.Context, cs *Case) error
	SoftDelete(ctx context.Context, id int64) error
}

type CaseRepositoryImpl struct {
	DB     *sql.DB
	entity *catalog.Entity
}

func NewCaseRepository(db *database.PostgresDB, cat *catalog.Catalog) (CaseRepository, error) {
	ent, err := cat.Entity("cases")
	if err != nil {
		return nil, err
	}
	return &CaseRepositoryImpl{DB: db.DB, entity: ent}, nil
}

const caseColumns = "cs.id, cs.account_id, cs.contact_id, cs.subject, cs.status, cs.priority, cs.opened_at, cs.closed_at, cs.created_by, cs.created_at, cs.updated_at"

func (r *CaseRepositoryImpl) Create(ctx context.Context, cs *Case) error {
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO cases (account_id, contact_id, subject, status, priority, closed_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, opened_at, created_at, updated_at`,
		nullableID(cs.AccountID), nullableID(cs.ContactID), cs.Subject, cs.Status, cs.Priority,
		cs.ClosedAt, cs.CreatedBy,
	).Scan(&cs.ID, &cs.OpenedAt, &cs.CreatedAt, &cs.UpdatedAt)
}

func (r *CaseRepositoryImpl) FindByID(ctx context.Context, id int64, scope *common_models.DataScopeFilter) (*Case, error) {
	conds := []string{"cs.deleted_at IS NULL", "cs.id = $1"}
	args := []interface{}{id}
	next := 2
	scopeConds, scopeArgs := report.ScopeSQL(r.entity, scope, &next)
	conds = append(conds, scopeConds...)
	args = append(args, scopeArgs...)

	row := r.DB.QueryRowContext(ctx,
		"SELECT "+caseColumns+" FROM cases cs WHERE "+strings.Join(conds, " AND "), args...)
	cs, err := scanCaseRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common_models.NewNotFound("Case")
	}
	return cs, err
}

func (r *CaseRepositoryImpl) List(ctx context.Context, filter ListFilter, scope *common_models.DataScopeFilter, p common_models.Pagination) ([]Case, int64, error) {
	conds := []string{"cs.deleted_at IS NULL"}
	args := []interface{}{}
	next := 1
	add := func(cond string, value interface{}) {
		conds = append(conds, fmt.Sprintf(cond, next))
		args = append(args, value)
		next++
	}

	if filter.AccountID != 0 {
		add("cs.account_id = $%d", filter.AccountID)
	}
	if filter.ContactID != 0 {
		add("cs.contact_id = $%d", filter.ContactID)
	}
	if filter.Status != "" {
		add("cs.status = $%d", filter.Status)
	}
	if filter.Priority != "" {
		add("cs.priority = $%d", filter.Priority)
	}
	if filter.Search != "" {
		add("cs.subject ILIKE $%d", "%"+filter.Search+"%")
	}

	scopeConds, scopeArgs := report.ScopeSQL(r.entity, scope, &next)
	conds = append(conds, scopeConds...)
	args = append(args, scopeArgs...)
	where := strings.Join(conds, " AND ")

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM cases cs WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM cases cs WHERE %s ORDER BY cs.opened_at DESC LIMIT $%d OFFSET $%d",
		caseColumns, where, next, next+1)
	rows, err := r.DB.QueryContext(ctx, query, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	cases := []Case{}
	for rows.Next() {
		cs, err := scanCaseRow(rows)
		if err != nil {
			return nil, 0, err
		}
		cases = append(cases, *cs)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return cases, total, nil
}

func (r *CaseRepositoryImpl) Update(ctx context.Context, cs *Case) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE cases SET account_id = $1, contact_id = $2, subject = $3, status = $4,
			priority = $5, closed_at = $6, updated_at = now()
		WHERE id = $7 AND deleted_at IS NULL`,
		nullableID(cs.AccountID), nullableID(cs.ContactID), cs.Subject, cs.Status,
		cs.Priority, cs.ClosedAt, cs.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *CaseRepositoryImpl) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE cases SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCaseRow(s rowScanner) (*Case, error) {
	var cs Case
	var accountID, contactID sql.NullInt64
	var closedAt sql.NullTime
	if err := s.Scan(&cs.ID, &accountID, &contactID, &cs.Subject, &cs.Status, &cs.Priority,
		&cs.OpenedAt, &closedAt, &cs.CreatedBy, &cs.CreatedAt, &cs.UpdatedAt); err != nil {
		return nil, err
	}
	if accountID.Valid {
		cs.AccountID = &accountID.Int64
	}
	if contactID.Valid {
		cs.ContactID = &contactID.Int64
	}
	if closedAt.Valid {
		cs.ClosedAt = &closedAt.Time
	}
	return &cs, nil
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
		return common_models.NewNotFound("Case")
	}
	return nil
}
