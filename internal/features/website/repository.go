package website

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"npo-crm/internal/database"

	common_models "npo-crm/internal/common/models"
)

type PageRepository interface {
	Create(ctx context.Context, p *Page) error
	FindByID(ctx context.Context, id int64) (*Page, error)
	FindPublishedBySlug(ctx context.Context, slug string) (*Page, error)
	List(ctx context.Context, filter ListFilter, pg common_models.Pagination) ([]Page, int64, error)
	Update(ctx context.Context, p *Page) error
	SoftDelete(ctx context.Context, id int64) error
}

type PageRepositoryImpl struct {
	DB *sql.DB
}

func NewPageRepository(db *database.PostgresDB) PageRepository {
	return &PageRepositoryImpl{DB: db.DB}
}

const pageColumns = "id, slug, title, body, status, published_at, author_id, created_at, updated_at"

func (r *PageRepositoryImpl) Create(ctx context.Context, p *Page) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO pages (slug, title, body, status, author_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		p.Slug, p.Title, p.Body, p.Status, p.AuthorID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return translateSlugConflict(err)
}

func (r *PageRepositoryImpl) FindByID(ctx context.Context, id int64) (*Page, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+pageColumns+" FROM pages WHERE deleted_at IS NULL AND id = $1", id)
	p, err := scanPageRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common_models.NewNotFound("Page")
	}
	return p, err
}

func (r *PageRepositoryImpl) FindPublishedBySlug(ctx context.Context, slug string) (*Page, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+pageColumns+" FROM pages WHERE deleted_at IS NULL AND status = $1 AND slug = $2",
		StatusPublished, slug)
	p, err := scanPageRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common_models.NewNotFound("Page")
	}
	return p, err
}

func (r *PageRepositoryImpl) List(ctx context.Context, filter ListFilter, pg common_models.Pagination) ([]Page, int64, error) {
	conds := []string{"deleted_at IS NULL"}
	args := []interface{}{}
	next := 1

	if filter.Status != "" {
		conds = append(conds, fmt.Sprintf("status = $%d", next))
		args = append(args, filter.Status)
		next++
	}
	if filter.Search != "" {
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR slug ILIKE $%d)", next, next))
		args = append(args, "%"+filter.Search+"%")
		next++
	}
	where := strings.Join(conds, " AND ")

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pages WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM pages WHERE %s ORDER BY updated_at DESC LIMIT $%d OFFSET $%d",
		pageColumns, where, next, next+1)
	rows, err := r.DB.QueryContext(ctx, query, append(args, pg.Limit, pg.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	pages := []Page{}
	for rows.Next() {
		p, err := scanPageRow(rows)
		if err != nil {
			return nil, 0, err
		}
		pages = append(pages, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return pages, total, nil
}

func (r *PageRepositoryImpl) Update(ctx context.Context, p *Page) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE pages SET slug = $1, title = $2, body = $3, status = $4,
			published_at = $5, updated_at = now()
		WHERE id = $6 AND deleted_at IS NULL`,
		p.Slug, p.Title, p.Body, p.Status, p.PublishedAt, p.ID)
	if err != nil {
		return translateSlugConflict(err)
	}
	return requireRow(res)
}

func (r *PageRepositoryImpl) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE pages SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPageRow(s rowScanner) (*Page, error) {
	var p Page
	var publishedAt sql.NullTime
	if err := s.Scan(&p.ID, &p.Slug, &p.Title, &p.Body, &p.Status, &publishedAt,
		&p.AuthorID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		p.PublishedAt = &publishedAt.Time
	}
	return &p, nil
}

func translateSlugConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return common_models.NewValidation("Page slug is already in use")
	}
	return err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common_models.NewNotFound("Page")
	}
	return nil
}
