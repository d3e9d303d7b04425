package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"npo-crm/internal/database"

	"github.com/lib/pq"

	common_models "npo-crm/internal/common/models"
)

type ListFilter struct {
	Role   string
	Active *bool
	Search string
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, filter ListFilter, p common_models.Pagination) ([]User, int64, error)
	FindNamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error)
	GetScope(ctx context.Context, userID int64) (*ScopeGrant, error)
	UpsertScope(ctx context.Context, grant *ScopeGrant) error
	DeleteScope(ctx context.Context, userID int64) error
}

type UserRepositoryImpl struct {
	DB *sql.DB
}

func NewUserRepository(db *database.PostgresDB) UserRepository {
	return &UserRepositoryImpl{DB: db.DB}
}

const userColumns = "id, email, display_name, role, active, created_at, updated_at"

func (r *UserRepositoryImpl) Create(ctx context.Context, u *User) error {
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO users (email, display_name, role, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		u.Email, u.DisplayName, u.Role, u.Active,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row)
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1", email)
	return scanUser(row)
}

func (r *UserRepositoryImpl) List(ctx context.Context, filter ListFilter, p common_models.Pagination) ([]User, int64, error) {
	conds := []string{"TRUE"}
	args := []interface{}{}
	add := func(cond string, value interface{}) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Role != "" {
		add("role = $%d", filter.Role)
	}
	if filter.Active != nil {
		add("active = $%d", *filter.Active)
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("(display_name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}
	where := strings.Join(conds, " AND ")

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM users WHERE %s ORDER BY display_name ASC LIMIT $%d OFFSET $%d",
		userColumns, where, len(args)+1, len(args)+2)
	rows, err := r.DB.QueryContext(ctx, query, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.DisplayName, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepositoryImpl) FindNamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, display_name FROM users WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

// GetScope returns nil without an error when the user has no grant row.
func (r *UserRepositoryImpl) GetScope(ctx context.Context, userID int64) (*ScopeGrant, error) {
	g := &ScopeGrant{UserID: userID}
	err := r.DB.QueryRowContext(ctx, `
		SELECT account_ids, contact_ids, account_types, created_by_only, updated_at
		FROM user_scopes WHERE user_id = $1`, userID,
	).Scan(
		pq.Array(&g.AccountIDs), pq.Array(&g.ContactIDs), pq.Array(&g.AccountTypes),
		&g.CreatedByOnly, &g.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// UpsertScope writes the grant as given: nil slices store NULL (dimension
// unrestricted), empty slices store '{}' (dimension grants nothing).
func (r *UserRepositoryImpl) UpsertScope(ctx context.Context, grant *ScopeGrant) error {
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO user_scopes (user_id, account_ids, contact_ids, account_types, created_by_only, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id) DO UPDATE SET
			account_ids = EXCLUDED.account_ids,
			contact_ids = EXCLUDED.contact_ids,
			account_types = EXCLUDED.account_types,
			created_by_only = EXCLUDED.created_by_only,
			updated_at = now()
		RETURNING updated_at`,
		grant.UserID,
		pq.Array(grant.AccountIDs), pq.Array(grant.ContactIDs), pq.Array(grant.AccountTypes),
		grant.CreatedByOnly,
	).Scan(&grant.UpdatedAt)
}

func (r *UserRepositoryImpl) DeleteScope(ctx context.Context, userID int64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM user_scopes WHERE user_id = $1", userID)
	return err
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common_models.NewNotFound("User")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
