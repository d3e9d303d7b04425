package website

import (
	"context"
	"strconv"
	"strings"
	"time"

	"npo-crm/internal/features/audit"
	"npo-crm/internal/features/notify"
	"npo-crm/pkg/utils"

	common_models "npo-crm/internal/common/models"
)

type PageService interface {
	Create(ctx context.Context, req PageRequest) (*Page, error)
	Get(ctx context.Context, id int64) (*Page, error)
	GetPublished(ctx context.Context, slug string) (*Page, error)
	List(ctx context.Context, filter ListFilter, page, limit int) ([]Page, int64, error)
	Update(ctx context.Context, id int64, req PageRequest) (*Page, error)
	Publish(ctx context.Context, id int64) (*Page, error)
	Unpublish(ctx context.Context, id int64) (*Page, error)
	Delete(ctx context.Context, id int64) error
}

type PageServiceImpl struct {
	Repo    PageRepository
	Audit   audit.AuditService
	Hub     *notify.Hub
	MaxPage int
}

func NewPageService(repo PageRepository, auditService audit.AuditService, hub *notify.Hub, maxPage int) PageService {
	return &PageServiceImpl{Repo: repo, Audit: auditService, Hub: hub, MaxPage: maxPage}
}

func (s *PageServiceImpl) Create(ctx context.Context, req PageRequest) (*Page, error) {
	if err := normalizeRequest(&req); err != nil {
		return nil, err
	}
	identity := common_models.IdentityFromContext(ctx)
	if identity == nil {
		return nil, common_models.NewForbidden("Login required")
	}

	p := &Page{
		Slug:     req.Slug,
		Title:    strings.TrimSpace(req.Title),
		Body:     req.Body,
		Status:   StatusDraft,
		AuthorID: identity.UserID,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}

	_ = s.Audit.LogChange(ctx, common_models.AuditActionCreate, "page", strconv.FormatInt(p.ID, 10), map[string]common_models.Change{
		"page": {New: p},
	})
	return p, nil
}

func (s *PageServiceImpl) Get(ctx context.Context, id int64) (*Page, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *PageServiceImpl) GetPublished(ctx context.Context, slug string) (*Page, error) {
	return s.Repo.FindPublishedBySlug(ctx, slug)
}

func (s *PageServiceImpl) List(ctx context.Context, filter ListFilter, page, limit int) ([]Page, int64, error) {
	p := common_models.NewPagination(page, limit, s.MaxPage)
	return s.Repo.List(ctx, filter, p)
}

func (s *PageServiceImpl) Update(ctx context.Context, id int64, req PageRequest) (*Page, error) {
	if err := normalizeRequest(&req); err != nil {
		return nil, err
	}
	before, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	after := *before
	after.Slug = req.Slug
	after.Title = strings.TrimSpace(req.Title)
	after.Body = req.Body

	if err := s.Repo.Update(ctx, &after); err != nil {
		return nil, err
	}

	changes := diffPages(before, &after)
	if len(changes) > 0 {
		_ = s.Audit.LogChange(ctx, common_models.AuditActionUpdate, "page", strconv.FormatInt(id, 10), changes)
	}
	return &after, nil
}

func (s *PageServiceImpl) Publish(ctx context.Context, id int64) (*Page, error) {
	before, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if before.Status == StatusPublished {
		return before, nil
	}

	after := *before
	after.Status = StatusPublished
	now := time.Now()
	after.PublishedAt = &now
	if err := s.Repo.Update(ctx, &after); err != nil {
		return nil, err
	}

	_ = s.Audit.LogChange(ctx, common_models.AuditActionUpdate, "page", strconv.FormatInt(id, 10), map[string]common_models.Change{
		"status": {Old: before.Status, New: StatusPublished},
	})
	s.Hub.Publish("page.published", map[string]interface{}{"id": id, "slug": after.Slug})
	return &after, nil
}

func (s *PageServiceImpl) Unpublish(ctx context.Context, id int64) (*Page, error) {
	before, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if before.Status == StatusDraft {
		return before, nil
	}

	after := *before
	after.Status = StatusDraft
	after.PublishedAt = nil
	if err := s.Repo.Update(ctx, &after); err != nil {
		return nil, err
	}

	_ = s.Audit.LogChange(ctx, common_models.AuditActionUpdate, "page", strconv.FormatInt(id, 10), map[string]common_models.Change{
		"status": {Old: before.Status, New: StatusDraft},
	})
	s.Hub.Publish("page.unpublished", map[string]interface{}{"id": id, "slug": after.Slug})
	return &after, nil
}

func (s *PageServiceImpl) Delete(ctx context.Context, id int64) error {
	before, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	_ = s.Audit.LogChange(ctx, common_models.AuditActionDelete, "page", strconv.FormatInt(id, 10), map[string]common_models.Change{
		"page": {Old: before, New: "DELETED"},
	})
	return nil
}

func normalizeRequest(req *PageRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return common_models.NewValidation("Page title is required")
	}
	if req.Slug == "" {
		req.Slug = utils.Slugify(req.Title)
	} else {
		req.Slug = utils.Slugify(req.Slug)
	}
	if req.Slug == "" {
		return common_models.NewValidation("Page slug is required")
	}
	return nil
}

func diffPages(before, after *Page) map[string]common_models.Change {
	changes := map[string]common_models.Change{}
	if before.Slug != after.Slug {
		changes["slug"] = common_models.Change{Old: before.Slug, New: after.Slug}
	}
	if before.Title != after.Title {
		changes["title"] = common_models.Change{Old: before.Title, New: after.Title}
	}
	if before.Body != after.Body {
		changes["body"] = common_models.Change{Old: before.Body, New: after.Body}
	}
	return changes
}
