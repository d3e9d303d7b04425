package dashboard

import (
	"context"
	"errors"
	"testing"

	common_models "npo-crm/internal/common/models"
)

type fakeDashboardRepo struct {
	stored *Dashboard

	saved     *Dashboard
	lastScope *common_models.DataScopeFilter
}

func (f *fakeDashboardRepo) GetDefault(ctx context.Context, userID int64) (*Dashboard, error) {
	return f.stored, nil
}

func (f *fakeDashboardRepo) SaveDefault(ctx context.Context, d *Dashboard) error {
	f.saved = d
	return nil
}

func (f *fakeDashboardRepo) Summary(ctx context.Context, scope *common_models.DataScopeFilter) (*Summary, error) {
	f.lastScope = scope
	return &Summary{}, nil
}

func userContext(identity *common_models.Identity) context.Context {
	return context.WithValue(context.Background(), common_models.IdentityKey, identity)
}

func TestSummaryPassesCallerScope(t *testing.T) {
	repo := &fakeDashboardRepo{}
	svc := NewDashboardService(repo)

	scope := &common_models.DataScopeFilter{AccountIDs: []int64{5}}
	ctx := userContext(&common_models.Identity{UserID: 1, Role: common_models.RoleFundraiser, Scope: scope})
	if _, err := svc.Summary(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastScope != scope {
		t.Errorf("scope = %+v, want the caller's", repo.lastScope)
	}
}

func TestSummaryRequiresLogin(t *testing.T) {
	svc := NewDashboardService(&fakeDashboardRepo{})

	_, err := svc.Summary(context.Background())
	var appErr *common_models.AppError
	if !errors.As(err, &appErr) || appErr.Code != common_models.CodeForbidden {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestGetConfigFallsBackToEmptyDefault(t *testing.T) {
	svc := NewDashboardService(&fakeDashboardRepo{})

	ctx := userContext(&common_models.Identity{UserID: 4, Role: common_models.RoleManager})
	d, err := svc.GetConfig(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.UserID != 4 || d.Name != "Default" || !d.IsDefault {
		t.Errorf("fallback dashboard = %+v", d)
	}
	if d.Widgets == nil || len(d.Widgets) != 0 {
		t.Errorf("widgets = %v, want empty non-nil", d.Widgets)
	}
}

func TestSaveConfigValidatesWidgets(t *testing.T) {
	tests := []struct {
		name    string
		widgets []Widget
		wantMsg string
	}{
		{"missing id", []Widget{{Type: "metric"}}, "Widget id is required"},
		{"bad type", []Widget{{ID: "w1", Type: "gauge"}}, "Invalid widget type 'gauge'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewDashboardService(&fakeDashboardRepo{})
			ctx := userContext(&common_models.Identity{UserID: 4, Role: common_models.RoleManager})

			_, err := svc.SaveConfig(ctx, ConfigRequest{Widgets: tt.widgets})
			var appErr *common_models.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected AppError, got %v", err)
			}
			if appErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", appErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestSaveConfigNormalizes(t *testing.T) {
	repo := &fakeDashboardRepo{}
	svc := NewDashboardService(repo)

	ctx := userContext(&common_models.Identity{UserID: 4, Role: common_models.RoleManager})
	d, err := svc.SaveConfig(ctx, ConfigRequest{Name: "   "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Name != "Default" {
		t.Errorf("name = %q, want Default", d.Name)
	}
	if d.Widgets == nil {
		t.Error("nil widgets must normalize to an empty slice")
	}
	if repo.saved != d {
		t.Error("config must be persisted")
	}
}
