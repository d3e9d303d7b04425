package account

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

type AccountRepository interface {
	Create(ctx context.Context, a *Account) error
	FindByID(ctx context.Context, id int64, scope *common_models.DataScopeFilter) (*Account, error)
	List(ctx context.Context, filter ListFilter, scope *common_models.DataScopeFilter, p common_models.Pagination) ([]Account, int64, error)
	Update(ctx context.Context, a *Account) error
	SoftDelete(ctx context.Context, id int64) error
}

type AccountRepositoryImpl struct {
	DB     *sql.DB
	entity *catalog.Entity
}

func NewAccountRepository(db *database.PostgresDB, cat *catalog.Catalog) (AccountRepository, error) {
	ent, err := cat.Entity("accounts")
	if err != nil {
		return nil, err
	}
	return &AccountRepositoryImpl{DB: db.DB, entity: ent}, nil
}

const accountColumns = "a.id, a.name, a.type, a.email, a.phone, a.website, a.city, a.state, a.created_by, a.created_at, a.updated_at"

func (r *AccountRepositoryImpl) Create(ctx context.Context, a *Account) error {
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO accounts (name, type, email, phone, website, city, state, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		a.Name, a.Type, a.Email, a.Phone, a.Website, a.City, a.State, a.CreatedBy,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *AccountRepositoryImpl) FindByID(ctx context.Context, id int64, scope *common_models.DataScopeFilter) (*Account, error) {
	conds := []string{"a.deleted_at IS NULL", "a.id = $1"}
	args := []interface{}{id}
	next := 2
	scopeConds, scopeArgs := report.ScopeSQL(r.entity, scope, &next)
	conds = append(conds, scopeConds...)
	args = append(args, scopeArgs...)

	row := r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts a WHERE "+strings.Join(conds, " AND "), args...)
	a, err := scanAccountRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common_models.NewNotFound("Account")
	}
	return a, err
}

func (r *AccountRepositoryImpl) List(ctx context.Context, filter ListFilter, scope *common_models.DataScopeFilter, p common_models.Pagination) ([]Account, int64, error) {
	conds := []string{"a.deleted_at IS NULL"}
	args := []interface{}{}
	next := 1

	if filter.Type != "" {
		conds = append(conds, fmt.Sprintf("a.type = $%d", next))
		args = append(args, filter.Type)
		next++
	}
	if filter.Search != "" {
		conds = append(conds, fmt.Sprintf("a.name ILIKE $%d", next))
		args = append(args, "%"+filter.Search+"%")
		next++
	}
	if filter.City != "" {
		conds = append(conds, fmt.Sprintf("a.city ILIKE $%d", next))
		args = append(args, filter.City)
		next++
	}
	if filter.State != "" {
		conds = append(conds, fmt.Sprintf("a.state ILIKE $%d", next))
		args = append(args, filter.State)
		next++
	}

	scopeConds, scopeArgs := report.ScopeSQL(r.entity, scope, &next)
	conds = append(conds, scopeConds...)
	args = append(args, scopeArgs...)
	where := strings.Join(conds, " AND ")

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM accounts a WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM accounts a WHERE %s ORDER BY a.name ASC LIMIT $%d OFFSET $%d",
		accountColumns, where, next, next+1)
	rows, err := r.DB.QueryContext(ctx, query, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	accounts := []Account{}
	for rows.Next() {
		a, err := scanAccountRow(rows)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

func (r *AccountRepositoryImpl) Update(ctx context.Context, a *Account) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE accounts SET name = $1, type = $2, email = $3, phone = $4, website = $5,
			city = $6, state = $7, updated_at = now()
		WHERE id = $8 AND deleted_at IS NULL`,
		a.Name, a.Type, a.Email, a.Phone, a.Website, a.City, a.State, a.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *AccountRepositoryImpl) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccountRow(s rowScanner) (*Account, error) {
	var a Account
	if err := s.Scan(&a.ID, &a.Name, &a.Type, &a.Email, &a.Phone, &a.Website,
		&a.City, &a.State, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common_models.NewNotFound("Account")
	}
	return nil
}
