package dashboard

import (
	"context"
	"fmt"
	"strings"

	common_models "npo-crm/internal/common/models"
)

type DashboardService interface {
	Summary(ctx context.Context) (*Summary, error)
	GetConfig(ctx context.Context) (*Dashboard, error)
	SaveConfig(ctx context.Context, req ConfigRequest) (*Dashboard, error)
}

type DashboardServiceImpl struct {
	Repo DashboardRepository
}

func NewDashboardService(repo DashboardRepository) DashboardService {
	return &DashboardServiceImpl{Repo: repo}
}

func (s *DashboardServiceImpl) Summary(ctx context.Context) (*Summary, error) {
	identity := common_models.IdentityFromContext(ctx)
	if identity == nil {
		return nil, common_models.NewForbidden("Login required")
	}
	return s.Repo.Summary(ctx, identity.Scope)
}

func (s *DashboardServiceImpl) GetConfig(ctx context.Context) (*Dashboard, error) {
	identity := common_models.IdentityFromContext(ctx)
	if identity == nil {
		return nil, common_models.NewForbidden("Login required")
	}
	d, err := s.Repo.GetDefault(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		d = &Dashboard{UserID: identity.UserID, Name: "Default", IsDefault: true, Widgets: []Widget{}}
	}
	return d, nil
}

func (s *DashboardServiceImpl) SaveConfig(ctx context.Context, req ConfigRequest) (*Dashboard, error) {
	identity := common_models.IdentityFromContext(ctx)
	if identity == nil {
		return nil, common_models.NewForbidden("Login required")
	}
	if err := validateWidgets(req.Widgets); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Default"
	}
	widgets := req.Widgets
	if widgets == nil {
		widgets = []Widget{}
	}

	d := &Dashboard{
		UserID:    identity.UserID,
		Name:      name,
		IsDefault: true,
		Widgets:   widgets,
	}
	if err := s.Repo.SaveDefault(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

var validWidgetTypes = map[string]bool{
	"metric": true,
	"chart":  true,
	"table":  true,
	"list":   true,
}

func validateWidgets(widgets []Widget) error {
	for _, widget := range widgets {
		if widget.ID == "" {
			return common_models.NewValidation("Widget id is required")
		}
		if !validWidgetTypes[widget.Type] {
			return common_models.NewValidation(fmt.Sprintf("Invalid widget type '%s'", widget.Type))
		}
	}
	return nil
}
