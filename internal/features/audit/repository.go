package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"npo-crm/internal/database"

	common_models "npo-crm/internal/common/models"
)

// ListFilter narrows the audit trail. Zero values mean "any".
type ListFilter struct {
	Entity   string
	RecordID string
	Action   string
	ActorID  int64
}

type AuditRepository interface {
	Create(ctx context.Context, entry common_models.AuditLog) error
	List(ctx context.Context, filter ListFilter, p common_models.Pagination) ([]common_models.AuditLog, int64, error)
}

type AuditRepositoryImpl struct {
	db *sql.DB
}

func NewAuditRepository(db *database.PostgresDB) AuditRepository {
	return &AuditRepositoryImpl{db: db.DB}
}

func (r *AuditRepositoryImpl) Create(ctx context.Context, entry common_models.AuditLog) error {
	var changes []byte
	if len(entry.Changes) > 0 {
		var err error
		changes, err = json.Marshal(entry.Changes)
		if err != nil {
			return err
		}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (actor_id, action, entity, record_id, changes)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.ActorID, entry.Action, entry.Entity, entry.RecordID, changes)
	return err
}

func (r *AuditRepositoryImpl) List(ctx context.Context, filter ListFilter, p common_models.Pagination) ([]common_models.AuditLog, int64, error) {
	conds := []string{"1 = 1"}
	args := []interface{}{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.Entity != "" {
		add("entity", filter.Entity)
	}
	if filter.RecordID != "" {
		add("record_id", filter.RecordID)
	}
	if filter.Action != "" {
		add("action", filter.Action)
	}
	if filter.ActorID != 0 {
		add("actor_id", filter.ActorID)
	}
	where := strings.Join(conds, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM audit_logs WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, p.Limit, p.Offset)
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, actor_id, action, entity, record_id, changes, created_at
		FROM audit_logs
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var logs []common_models.AuditLog
	for rows.Next() {
		var (
			entry   common_models.AuditLog
			changes []byte
		)
		if err := rows.Scan(&entry.ID, &entry.ActorID, &entry.Action, &entry.Entity,
			&entry.RecordID, &changes, &entry.At); err != nil {
			return nil, 0, err
		}
		if len(changes) > 0 {
			if err := json.Unmarshal(changes, &entry.Changes); err != nil {
				return nil, 0, err
			}
		}
		logs = append(logs, entry)
	}
	return logs, total, rows.Err()
}
