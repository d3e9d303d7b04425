package website

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"npo-crm/internal/features/audit"
	"npo-crm/internal/features/notify"

	common_models "npo-crm/internal/common/models"
)

type fakePageRepo struct {
	existing *Page

	created   *Page
	updated   *Page
	deletedID int64
}

func (f *fakePageRepo) Create(ctx context.Context, p *Page) error {
	p.ID = 41
	f.created = p
	return nil
}

func (f *fakePageRepo) FindByID(ctx context.Context, id int64) (*Page, error) {
	if f.existing == nil {
		return nil, common_models.NewNotFound("Page")
	}
	return f.existing, nil
}

func (f *fakePageRepo) FindPublishedBySlug(ctx context.Context, slug string) (*Page, error) {
	if f.existing == nil || f.existing.Status != StatusPublished || f.existing.Slug != slug {
		return nil, common_models.NewNotFound("Page")
	}
	return f.existing, nil
}

func (f *fakePageRepo) List(ctx context.Context, filter ListFilter, pg common_models.Pagination) ([]Page, int64, error) {
	return nil, 0, nil
}

func (f *fakePageRepo) Update(ctx context.Context, p *Page) error {
	f.updated = p
	return nil
}

func (f *fakePageRepo) SoftDelete(ctx context.Context, id int64) error {
	f.deletedID = id
	return nil
}

type fakeAudit struct {
	actions []common_models.AuditAction
}

func (f *fakeAudit) LogChange(ctx context.Context, action common_models.AuditAction, entity string, recordID string, changes map[string]common_models.Change) error {
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeAudit) ListLogs(ctx context.Context, filter audit.ListFilter, page, limit int) ([]common_models.AuditLog, int64, error) {
	return nil, 0, nil
}

func newPageService(repo *fakePageRepo, au *fakeAudit) PageService {
	return NewPageService(repo, au, notify.NewHub(zap.NewNop()), 100)
}

func editorContext() context.Context {
	identity := &common_models.Identity{UserID: 3, Role: common_models.RoleManager}
	return context.WithValue(context.Background(), common_models.IdentityKey, identity)
}

func validationMessage(t *testing.T, err error) string {
	t.Helper()
	var appErr *common_models.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	return appErr.Message
}

func TestCreateDerivesSlugFromTitle(t *testing.T) {
	repo := &fakePageRepo{}
	svc := newPageService(repo, &fakeAudit{})

	p, err := svc.Create(editorContext(), PageRequest{Title: "About Us!"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Slug != "about-us" {
		t.Errorf("slug = %q, want %q", p.Slug, "about-us")
	}
	if p.Status != StatusDraft {
		t.Errorf("status = %q, new pages start as drafts", p.Status)
	}
	if p.AuthorID != 3 {
		t.Errorf("author = %d, want 3", p.AuthorID)
	}
}

func TestCreateNormalizesProvidedSlug(t *testing.T) {
	repo := &fakePageRepo{}
	svc := newPageService(repo, &fakeAudit{})

	p, err := svc.Create(editorContext(), PageRequest{Title: "Donate", Slug: "  Give NOW  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Slug != "give-now" {
		t.Errorf("slug = %q, want %q", p.Slug, "give-now")
	}
}

func TestCreateValidatesRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     PageRequest
		wantMsg string
	}{
		{"missing title", PageRequest{Title: "   "}, "Page title is required"},
		{"unusable slug", PageRequest{Title: "!!!"}, "Page slug is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newPageService(&fakePageRepo{}, &fakeAudit{})
			_, err := svc.Create(editorContext(), tt.req)
			if msg := validationMessage(t, err); msg != tt.wantMsg {
				t.Errorf("message = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestPublishStampsTimestamp(t *testing.T) {
	repo := &fakePageRepo{existing: &Page{ID: 41, Slug: "about-us", Title: "About Us", Status: StatusDraft}}
	au := &fakeAudit{}
	svc := newPageService(repo, au)

	p, err := svc.Publish(editorContext(), 41)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != StatusPublished {
		t.Errorf("status = %q", p.Status)
	}
	if p.PublishedAt == nil {
		t.Error("publish must stamp published_at")
	}
	if len(au.actions) != 1 || au.actions[0] != common_models.AuditActionUpdate {
		t.Errorf("audit actions = %v", au.actions)
	}
}

func TestPublishIsIdempotent(t *testing.T) {
	stamp := time.Now()
	repo := &fakePageRepo{existing: &Page{ID: 41, Slug: "about-us", Status: StatusPublished, PublishedAt: &stamp}}
	au := &fakeAudit{}
	svc := newPageService(repo, au)

	p, err := svc.Publish(editorContext(), 41)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.PublishedAt.Equal(stamp) {
		t.Error("republishing must not move published_at")
	}
	if repo.updated != nil {
		t.Error("republishing must not write")
	}
	if len(au.actions) != 0 {
		t.Errorf("audit actions = %v, want none", au.actions)
	}
}

func TestUnpublishClearsTimestamp(t *testing.T) {
	stamp := time.Now()
	repo := &fakePageRepo{existing: &Page{ID: 41, Slug: "about-us", Status: StatusPublished, PublishedAt: &stamp}}
	svc := newPageService(repo, &fakeAudit{})

	p, err := svc.Unpublish(editorContext(), 41)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != StatusDraft || p.PublishedAt != nil {
		t.Errorf("page = %+v, want draft without published_at", p)
	}
}

func TestGetPublishedOnlyServesPublishedSlugs(t *testing.T) {
	repo := &fakePageRepo{existing: &Page{ID: 41, Slug: "about-us", Status: StatusDraft}}
	svc := newPageService(repo, &fakeAudit{})

	_, err := svc.GetPublished(context.Background(), "about-us")
	var appErr *common_models.AppError
	if !errors.As(err, &appErr) || appErr.Code != common_models.CodeNotFound {
		t.Errorf("expected not-found for draft page, got %v", err)
	}
}

func TestUpdateAuditsOnlyRealChanges(t *testing.T) {
	repo := &fakePageRepo{existing: &Page{ID: 41, Slug: "about-us", Title: "About Us", Body: "hello"}}
	au := &fakeAudit{}
	svc := newPageService(repo, au)

	_, err := svc.Update(editorContext(), 41, PageRequest{Title: "About Us", Slug: "about-us", Body: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(au.actions) != 0 {
		t.Errorf("audit actions = %v, want none for no-op update", au.actions)
	}

	_, err = svc.Update(editorContext(), 41, PageRequest{Title: "About Us", Slug: "about-us", Body: "updated"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(au.actions) != 1 {
		t.Errorf("audit actions = %v, want one update", au.actions)
	}
}
