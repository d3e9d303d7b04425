package contact

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

type ContactRepository interface {
	Create(ctx context.Context, c *Contact) error
	FindByID(ctx context.Context, id int64, scope *common_models.DataScopeFilter) (*Contact, error)
	List(ctx context.Context, filter ListFilter, scope *common_models.DataScopeFilter, p common_models.Pagination) ([]Contact, int64, error)
	Update(ctx context.Context, c *Contact) error
	SoftDelete(ctx context.Context, id int64) error
}

type ContactRepositoryImpl struct {
	DB     *sql.DB
	entity *catalog.Entity
}

func NewContactRepository(db *database.PostgresDB, cat *catalog.Catalog) (ContactRepository, error) {
	ent, err := cat.Entity("contacts")
	if err != nil {
		return nil, err
	}
	return &ContactRepositoryImpl{DB: db.DB, entity: ent}, nil
}

const contactColumns = "c.id, c.account_id, c.first_name, c.last_name, c.email, c.phone, c.title, c.do_not_contact, c.created_by, c.created_at, c.updated_at"

func (r *ContactRepositoryImpl) Create(ctx context.Context, c *Contact) error {
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO contacts (account_id, first_name, last_name, email, phone, title, do_not_contact, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		nullableID(c.AccountID), c.FirstName, c.LastName, c.Email, c.Phone, c.Title, c.DoNotContact, c.CreatedBy,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// FindByID applies the caller's scope, so rows outside the grant read as
// absent rather than forbidden.
func (r *ContactRepositoryImpl) FindByID(ctx context.Context, id int64, scope *common_models.DataScopeFilter) (*Contact, error) {
	conds := []string{"c.deleted_at IS NULL", "c.id = $1"}
	args := []interface{}{id}
	next := 2
	scopeConds, scopeArgs := report.ScopeSQL(r.entity, scope, &next)
	conds = append(conds, scopeConds...)
	args = append(args, scopeArgs...)

	row := r.DB.QueryRowContext(ctx,
		"SELECT "+contactColumns+" FROM contacts c WHERE "+strings.Join(conds, " AND "), args...)
	return scanContact(row)
}

func (r *ContactRepositoryImpl) List(ctx context.Context, filter ListFilter, scope *common_models.DataScopeFilter, p common_models.Pagination) ([]Contact, int64, error) {
	conds := []string{"c.deleted_at IS NULL"}
	args := []interface{}{}
	next := 1

	if filter.AccountID != 0 {
		conds = append(conds, fmt.Sprintf("c.account_id = $%d", next))
		args = append(args, filter.AccountID)
		next++
	}
	if filter.Search != "" {
		conds = append(conds, fmt.Sprintf("(c.first_name ILIKE $%d OR c.last_name ILIKE $%d OR c.email ILIKE $%d)", next, next, next))
		args = append(args, "%"+filter.Search+"%")
		next++
	}
	if filter.DoNotContact != nil {
		conds = append(conds, fmt.Sprintf("c.do_not_contact = $%d", next))
		args = append(args, *filter.DoNotContact)
		next++
	}

	scopeConds, scopeArgs := report.ScopeSQL(r.entity, scope, &next)
	conds = append(conds, scopeConds...)
	args = append(args, scopeArgs...)
	where := strings.Join(conds, " AND ")

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM contacts c WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM contacts c WHERE %s ORDER BY c.last_name ASC, c.first_name ASC LIMIT $%d OFFSET $%d",
		contactColumns, where, next, next+1)
	rows, err := r.DB.QueryContext(ctx, query, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	contacts := []Contact{}
	for rows.Next() {
		c, err := scanContactRow(rows)
		if err != nil {
			return nil, 0, err
		}
		contacts = append(contacts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

func (r *ContactRepositoryImpl) Update(ctx context.Context, c *Contact) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE contacts SET account_id = $1, first_name = $2, last_name = $3, email = $4,
			phone = $5, title = $6, do_not_contact = $7, updated_at = now()
		WHERE id = $8 AND deleted_at IS NULL`,
		nullableID(c.AccountID), c.FirstName, c.LastName, c.Email, c.Phone, c.Title, c.DoNotContact, c.ID)
	if err != nil {
		return err
	}
	return requireRow(res, "Contact")
}

func (r *ContactRepositoryImpl) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE contacts SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return err
	}
	return requireRow(res, "Contact")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanContact(row *sql.Row) (*Contact, error) {
	c, err := scanContactRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common_models.NewNotFound("Contact")
	}
	return c, err
}

func scanContactRow(s rowScanner) (*Contact, error) {
	var c Contact
	var accountID sql.NullInt64
	if err := s.Scan(&c.ID, &accountID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.Title, &c.DoNotContact, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if accountID.Valid {
		c.AccountID = &accountID.Int64
	}
	return &c, nil
}

func nullableID(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common_models.NewNotFound(what)
	}
	return nil
}
