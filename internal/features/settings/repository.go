package settings

import (
	"context"
	"database/sql"
	"errors"

	"npo-crm/internal/database"
)

type SettingsRepository interface {
	List(ctx context.Context) ([]Setting, error)
	Get(ctx context.Context, key string) (*Setting, error)
	Upsert(ctx context.Context, setting *Setting) error
}

type SettingsRepositoryImpl struct {
	DB *sql.DB
}

func NewSettingsRepository(db *database.PostgresDB) SettingsRepository {
	return &SettingsRepositoryImpl{DB: db.DB}
}

func (r *SettingsRepositoryImpl) List(ctx context.Context) ([]Setting, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT key, value, updated_by, updated_at FROM settings ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := []Setting{}
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		settings = append(settings, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Get returns nil without an error for keys that were never written.
func (r *SettingsRepositoryImpl) Get(ctx context.Context, key string) (*Setting, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT key, value, updated_by, updated_at FROM settings WHERE key = $1", key)
	s, err := scanSetting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SettingsRepositoryImpl) Upsert(ctx context.Context, setting *Setting) error {
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO settings (key, value, updated_by, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_by = EXCLUDED.updated_by, updated_at = now()
		RETURNING updated_at`,
		setting.Key, []byte(setting.Value), setting.UpdatedBy,
	).Scan(&setting.UpdatedAt)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSetting(s rowScanner) (*Setting, error) {
	var setting Setting
	var value []byte
	var updatedBy sql.NullInt64
	if err := s.Scan(&setting.Key, &value, &updatedBy, &setting.UpdatedAt); err != nil {
		return nil, err
	}
	setting.Value = value
	if updatedBy.Valid {
		setting.UpdatedBy = &updatedBy.Int64
	}
	return &setting, nil
}
