package report

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	common_models "npo-crm/internal/common/models"
)

func TestSavedReportRepositoryGetScansDefinition(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now()
	cols := []string{"id", "owner_id", "name", "description", "entity", "definition", "visibility", "public_token", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `+savedReportColumns)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(7), int64(1), "Major Donors", "", "donations",
				[]byte(`{"entity":"donations","fields":["id","amount"]}`), "private", nil, now, now))

	repo := &SavedReportRepositoryImpl{db: db}
	saved, err := repo.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if saved.Name != "Major Donors" || saved.Visibility != VisibilityPrivate {
		t.Errorf("saved = %+v", saved)
	}
	if saved.Definition.Entity != "donations" || len(saved.Definition.Fields) != 2 {
		t.Errorf("definition = %+v", saved.Definition)
	}
	if saved.PublicToken != nil {
		t.Errorf("token = %v, want nil", saved.PublicToken)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSavedReportRepositoryGetMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	defer db.Close()

	cols := []string{"id", "owner_id", "name", "description", "entity", "definition", "visibility", "public_token", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + savedReportColumns)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(cols))

	repo := &SavedReportRepositoryImpl{db: db}
	_, err = repo.Get(context.Background(), 99)
	appErr := appError(t, err)
	if appErr.Code != common_models.CodeNotFound || appErr.Message != "Report not found" {
		t.Errorf("got %s %q", appErr.Code, appErr.Message)
	}
}

func TestSavedReportRepositoryUpsertShare(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO report_shares (report_id, user_id, can_edit)`)).
		WithArgs(int64(11), int64(2), true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(5), now))

	repo := &SavedReportRepositoryImpl{db: db}
	share := &ReportShare{ReportID: 11, UserID: 2, CanEdit: true}
	if err := repo.UpsertShare(context.Background(), share); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if share.ID != 5 {
		t.Errorf("share id = %d", share.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestQueryRunnerConvertsByteColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT d.id AS "id", d.amount AS "amount" FROM donations d`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount"}).
			AddRow(int64(3), []byte("12.50")))

	runner := &pgRunner{db: db}
	rows, err := runner.Run(context.Background(), `SELECT d.id AS "id", d.amount AS "amount" FROM donations d`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0]["id"] != int64(3) {
		t.Errorf("id = %#v", rows[0]["id"])
	}
	// NUMERIC comes back as bytes; the runner hands strings downstream.
	if rows[0]["amount"] != "12.50" {
		t.Errorf("amount = %#v", rows[0]["amount"])
	}
}

func TestQueryRunnerCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM donations d`)).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))

	runner := &pgRunner{db: db}
	total, err := runner.Count(context.Background(), `SELECT COUNT(*) FROM donations d WHERE d.account_id = $1`, []interface{}{int64(4)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 42 {
		t.Errorf("total = %d", total)
	}
}
