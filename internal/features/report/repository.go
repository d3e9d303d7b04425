package report

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"npo-crm/internal/database"

	common_models "npo-crm/internal/common/models"
)

// QueryRunner executes generated report SQL. The engine depends on this
// interface rather than *sql.DB so it can be tested with sqlmock.
type QueryRunner interface {
	Run(ctx context.Context, query string, args []interface{}) ([]map[string]interface{}, error)
	Count(ctx context.Context, query string, args []interface{}) (int64, error)
}

type pgRunner struct {
	db *sql.DB
}

func NewQueryRunner(db *database.PostgresDB) QueryRunner {
	return &pgRunner{db: db.DB}
}

func (r *pgRunner) Run(ctx context.Context, query string, args []interface{}) ([]map[string]interface{}, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return rowsToMaps(rows)
}

func (r *pgRunner) Count(ctx context.Context, query string, args []interface{}) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// rowsToMaps converts SQL rows to a slice of maps keyed by column alias.
func rowsToMaps(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := []map[string]interface{}{}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{})
		for i, col := range columns {
			val := values[i]
			if b, ok := val.([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = val
			}
		}

		result = append(result, row)
	}

	return result, rows.Err()
}

type SavedReportRepository interface {
	Create(ctx context.Context, report *SavedReport) error
	Get(ctx context.Context, id int64) (*SavedReport, error)
	GetByToken(ctx context.Context, token string) (*SavedReport, error)
	ListVisible(ctx context.Context, userID int64) ([]SavedReport, error)
	Update(ctx context.Context, report *SavedReport) error
	SetVisibility(ctx context.Context, id int64, visibility string, token *string) error
	SoftDelete(ctx context.Context, id int64) error

	UpsertShare(ctx context.Context, share *ReportShare) error
	ListShares(ctx context.Context, reportID int64) ([]ReportShare, error)
	ShareFor(ctx context.Context, reportID, userID int64) (*ReportShare, error)
	RevokeShares(ctx context.Context, reportID int64) error
}

type SavedReportRepositoryImpl struct {
	db *sql.DB
}

func NewSavedReportRepository(db *database.PostgresDB) SavedReportRepository {
	return &SavedReportRepositoryImpl{db: db.DB}
}

const savedReportColumns = `id, owner_id, name, description, entity, definition, visibility, public_token, created_at, updated_at`

func (r *SavedReportRepositoryImpl) Create(ctx context.Context, report *SavedReport) error {
	def, err := MarshalDefinition(report.Definition)
	if err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO saved_reports (owner_id, name, description, entity, definition, visibility)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		report.OwnerID, report.Name, report.Description, report.Entity, def, report.Visibility,
	).Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)
}

func (r *SavedReportRepositoryImpl) Get(ctx context.Context, id int64) (*SavedReport, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+savedReportColumns+`
		FROM saved_reports
		WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanSavedReport(row)
}

func (r *SavedReportRepositoryImpl) GetByToken(ctx context.Context, token string) (*SavedReport, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+savedReportColumns+`
		FROM saved_reports
		WHERE public_token = $1 AND visibility = 'public' AND deleted_at IS NULL`, token)
	return scanSavedReport(row)
}

// ListVisible returns reports the user owns, reports actively shared with
// them, and public reports.
func (r *SavedReportRepositoryImpl) ListVisible(ctx context.Context, userID int64) ([]SavedReport, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT r.id, r.owner_id, r.name, r.description, r.entity, r.definition,
		       r.visibility, r.public_token, r.created_at, r.updated_at
		FROM saved_reports r
		LEFT JOIN report_shares s
		  ON s.report_id = r.id AND s.user_id = $1 AND s.revoked_at IS NULL
		WHERE r.deleted_at IS NULL
		  AND (r.owner_id = $1 OR s.id IS NOT NULL OR r.visibility = 'public')
		ORDER BY r.updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []SavedReport
	for rows.Next() {
		report, err := scanSavedReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	return reports, rows.Err()
}

func (r *SavedReportRepositoryImpl) Update(ctx context.Context, report *SavedReport) error {
	def, err := MarshalDefinition(report.Definition)
	if err != nil {
		return err
	}
	report.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE saved_reports
		SET name = $1, description = $2, entity = $3, definition = $4, updated_at = $5
		WHERE id = $6 AND deleted_at IS NULL`,
		report.Name, report.Description, report.Entity, def, report.UpdatedAt, report.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *SavedReportRepositoryImpl) SetVisibility(ctx context.Context, id int64, visibility string, token *string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE saved_reports
		SET visibility = $1, public_token = $2, updated_at = now()
		WHERE id = $3 AND deleted_at IS NULL`, visibility, token, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *SavedReportRepositoryImpl) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE saved_reports
		SET deleted_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *SavedReportRepositoryImpl) UpsertShare(ctx context.Context, share *ReportShare) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO report_shares (report_id, user_id, can_edit)
		VALUES ($1, $2, $3)
		ON CONFLICT (report_id, user_id)
		DO UPDATE SET can_edit = EXCLUDED.can_edit, revoked_at = NULL
		RETURNING id, created_at`,
		share.ReportID, share.UserID, share.CanEdit,
	).Scan(&share.ID, &share.CreatedAt)
}

func (r *SavedReportRepositoryImpl) ListShares(ctx context.Context, reportID int64) ([]ReportShare, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, report_id, user_id, can_edit, created_at, revoked_at
		FROM report_shares
		WHERE report_id = $1 AND revoked_at IS NULL
		ORDER BY created_at`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []ReportShare
	for rows.Next() {
		var s ReportShare
		if err := rows.Scan(&s.ID, &s.ReportID, &s.UserID, &s.CanEdit, &s.CreatedAt, &s.RevokedAt); err != nil {
			return nil, err
		}
		shares = append(shares, s)
	}
	return shares, rows.Err()
}

func (r *SavedReportRepositoryImpl) ShareFor(ctx context.Context, reportID, userID int64) (*ReportShare, error) {
	var s ReportShare
	err := r.db.QueryRowContext(ctx, `
		SELECT id, report_id, user_id, can_edit, created_at, revoked_at
		FROM report_shares
		WHERE report_id = $1 AND user_id = $2 AND revoked_at IS NULL`,
		reportID, userID,
	).Scan(&s.ID, &s.ReportID, &s.UserID, &s.CanEdit, &s.CreatedAt, &s.RevokedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SavedReportRepositoryImpl) RevokeShares(ctx context.Context, reportID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE report_shares
		SET revoked_at = now()
		WHERE report_id = $1 AND revoked_at IS NULL`, reportID)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSavedReport(row rowScanner) (*SavedReport, error) {
	var (
		report SavedReport
		def    []byte
		token  sql.NullString
	)
	err := row.Scan(&report.ID, &report.OwnerID, &report.Name, &report.Description,
		&report.Entity, &def, &report.Visibility, &token, &report.CreatedAt, &report.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common_models.NewNotFound("Report")
	}
	if err != nil {
		return nil, err
	}
	if report.Definition, err = UnmarshalDefinition(def); err != nil {
		return nil, err
	}
	if token.Valid {
		report.PublicToken = &token.String
	}
	return &report, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common_models.NewNotFound("Report")
	}
	return nil
}
