package donation

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

type DonationRepository interface {
	Create(ctx context.Context, d *Donation) error
	FindByID(ctx context.Context, id int64, scope *common_models.DataScopeFilter) (*Donation, error)
	List(ctx context.Context, filter ListFilter, scope *common_models.DataScopeFilter, p common_models.Pagination) ([]Donation, ListTotals, error)
	Update(ctx context.Context, d *Donation) error
	SoftDelete(ctx context.Context, id int64) error
}

type DonationRepositoryImpl struct {
	DB     *sql.DB
	entity *catalog.Entity
}

func NewDonationRepository(db *database.PostgresDB, cat *catalog.Catalog) (DonationRepository, error) {
	ent, err := cat.Entity("donations")
	if err != nil {
		return nil, err
	}
	return &DonationRepositoryImpl{DB: db.DB, entity: ent}, nil
}

const donationColumns = "d.id, d.account_id, d.contact_id, d.amount, d.fee, d.currency, d.method, d.campaign, d.received_at, d.acknowledged, d.created_by, d.created_at, d.updated_at"

func (r *DonationRepositoryImpl) Create(ctx context.Context, d *Donation) error {
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO donations (account_id, contact_id, amount, fee, currency, method, campaign, received_at, acknowledged, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		nullableID(d.AccountID), nullableID(d.ContactID), d.Amount, d.Fee, d.Currency,
		d.Method, d.Campaign, d.ReceivedAt, d.Acknowledged, d.CreatedBy,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *DonationRepositoryImpl) FindByID(ctx context.Context, id int64, scope *common_models.DataScopeFilter) (*Donation, error) {
	conds := []string{"d.deleted_at IS NULL", "d.id = $1"}
	args := []interface{}{id}
	next := 2
	scopeConds, scopeArgs := report.ScopeSQL(r.entity, scope, &next)
	conds = append(conds, scopeConds...)
	args = append(args, scopeArgs...)

	row := r.DB.QueryRowContext(ctx,
		"SELECT "+donationColumns+" FROM donations d WHERE "+strings.Join(conds, " AND "), args...)
	d, err := scanDonationRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common_models.NewNotFound("Donation")
	}
	return d, err
}

func (r *DonationRepositoryImpl) List(ctx context.Context, filter ListFilter, scope *common_models.DataScopeFilter, p common_models.Pagination) ([]Donation, ListTotals, error) {
	conds := []string{"d.deleted_at IS NULL"}
	args := []interface{}{}
	next := 1
	add := func(cond string, value interface{}) {
		conds = append(conds, fmt.Sprintf(cond, next))
		args = append(args, value)
		next++
	}

	if filter.AccountID != 0 {
		add("d.account_id = $%d", filter.AccountID)
	}
	if filter.ContactID != 0 {
		add("d.contact_id = $%d", filter.ContactID)
	}
	if filter.Method != "" {
		add("d.method = $%d", filter.Method)
	}
	if filter.Campaign != "" {
		add("d.campaign ILIKE $%d", "%"+filter.Campaign+"%")
	}
	if filter.Acknowledged != nil {
		add("d.acknowledged = $%d", *filter.Acknowledged)
	}
	if !filter.ReceivedFrom.IsZero() {
		add("d.received_at >= $%d", filter.ReceivedFrom)
	}
	if !filter.ReceivedTo.IsZero() {
		add("d.received_at <= $%d", filter.ReceivedTo)
	}

	scopeConds, scopeArgs := report.ScopeSQL(r.entity, scope, &next)
	conds = append(conds, scopeConds...)
	args = append(args, scopeArgs...)
	where := strings.Join(conds, " AND ")

	var totals ListTotals
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(d.amount), 0) FROM donations d WHERE "+where, args...,
	).Scan(&totals.Count, &totals.Amount); err != nil {
		return nil, ListTotals{}, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM donations d WHERE %s ORDER BY d.received_at DESC LIMIT $%d OFFSET $%d",
		donationColumns, where, next, next+1)
	rows, err := r.DB.QueryContext(ctx, query, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, ListTotals{}, err
	}
	defer rows.Close()

	donations := []Donation{}
	for rows.Next() {
		d, err := scanDonationRow(rows)
		if err != nil {
			return nil, ListTotals{}, err
		}
		donations = append(donations, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, ListTotals{}, err
	}
	return donations, totals, nil
}

func (r *DonationRepositoryImpl) Update(ctx context.Context, d *Donation) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE donations SET account_id = $1, contact_id = $2, amount = $3, fee = $4,
			currency = $5, method = $6, campaign = $7, received_at = $8, acknowledged = $9,
			updated_at = now()
		WHERE id = $10 AND deleted_at IS NULL`,
		nullableID(d.AccountID), nullableID(d.ContactID), d.Amount, d.Fee, d.Currency,
		d.Method, d.Campaign, d.ReceivedAt, d.Acknowledged, d.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *DonationRepositoryImpl) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE donations SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDonationRow(s rowScanner) (*Donation, error) {
	var d Donation
	var accountID, contactID sql.NullInt64
	if err := s.Scan(&d.ID, &accountID, &contactID, &d.Amount, &d.Fee, &d.Currency,
		&d.Method, &d.Campaign, &d.ReceivedAt, &d.Acknowledged, &d.CreatedBy,
		&d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if accountID.Valid {
		d.AccountID = &accountID.Int64
	}
	if contactID.Valid {
		d.ContactID = &contactID.Int64
	}
	return &d, nil
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
		return common_models.NewNotFound("Donation")
	}
	return nil
}
