package volunteer

import (
	"context"
	"strconv"
	"strings"
	"time"

	"npo-crm/internal/features/audit"
	"npo-crm/internal/features/catalog"
	"npo-crm/internal/features/notify"

	common_models "npo-crm/internal/common/models"
)

type VolunteerService interface {
	Create(ctx context.Context, req VolunteerRequest) (*Volunteer, error)
	Get(ctx context.Context, id int64) (*Volunteer, error)
	List(ctx context.Context, filter ListFilter, page, limit int) ([]Volunteer, int64, error)
	Update(ctx context.Context, id int64, req VolunteerRequest) (*Volunteer, error)
	Delete(ctx context.Context, id int64) error
}

type VolunteerServiceImpl struct {
	Repo    VolunteerRepository
	Audit   audit.AuditService
	Hub     *notify.Hub
	MaxPage int
}

func NewVolunteerService(repo VolunteerRepository, auditService audit.AuditService, hub *notify.Hub, maxPage int) VolunteerService {
	return &VolunteerServiceImpl{Repo: repo, Audit: auditService, Hub: hub, MaxPage: maxPage}
}

func (s *VolunteerServiceImpl) Create(ctx context.Context, req VolunteerRequest) (*Volunteer, error) {
	if err := normalizeRequest(&req); err != nil {
		return nil, err
	}
	identity := common_models.IdentityFromContext(ctx)
	if identity == nil {
		return nil, common_models.NewForbidden("Login required")
	}

	v := &Volunteer{
		ContactID:   req.ContactID,
		Status:      req.Status,
		Skills:      strings.TrimSpace(req.Skills),
		HoursLogged: req.HoursLogged,
		StartedOn:   req.StartedOn,
		CreatedBy:   identity.UserID,
	}
	if err := s.Repo.Create(ctx, v); err != nil {
		return nil, err
	}

	_ = s.Audit.LogChange(ctx, common_models.AuditActionCreate, "volunteer", strconv.FormatInt(v.ID, 10), map[string]common_models.Change{
		"volunteer": {New: v},
	})
	s.Hub.Publish("volunteer.created", map[string]interface{}{"id": v.ID})
	return v, nil
}

func (s *VolunteerServiceImpl) Get(ctx context.Context, id int64) (*Volunteer, error) {
	return s.Repo.FindByID(ctx, id, callerScope(ctx))
}

func (s *VolunteerServiceImpl) List(ctx context.Context, filter ListFilter, page, limit int) ([]Volunteer, int64, error) {
	p := common_models.NewPagination(page, limit, s.MaxPage)
	return s.Repo.List(ctx, filter, callerScope(ctx), p)
}

func (s *VolunteerServiceImpl) Update(ctx context.Context, id int64, req VolunteerRequest) (*Volunteer, error) {
	if err := normalizeRequest(&req); err != nil {
		return nil, err
	}
	before, err := s.Repo.FindByID(ctx, id, callerScope(ctx))
	if err != nil {
		return nil, err
	}

	after := *before
	after.ContactID = req.ContactID
	after.Status = req.Status
	after.Skills = strings.TrimSpace(req.Skills)
	after.HoursLogged = req.HoursLogged
	after.StartedOn = req.StartedOn

	if err := s.Repo.Update(ctx, &after); err != nil {
		return nil, err
	}

	changes := diffVolunteers(before, &after)
	if len(changes) > 0 {
		_ = s.Audit.LogChange(ctx, common_models.AuditActionUpdate, "volunteer", strconv.FormatInt(id, 10), changes)
	}
	s.Hub.Publish("volunteer.updated", map[string]interface{}{"id": id})
	return &after, nil
}

func (s *VolunteerServiceImpl) Delete(ctx context.Context, id int64) error {
	before, err := s.Repo.FindByID(ctx, id, callerScope(ctx))
	if err != nil {
		return err
	}
	if err := s.Repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	_ = s.Audit.LogChange(ctx, common_models.AuditActionDelete, "volunteer", strconv.FormatInt(id, 10), map[string]common_models.Change{
		"volunteer": {Old: before, New: "DELETED"},
	})
	s.Hub.Publish("volunteer.deleted", map[string]interface{}{"id": id})
	return nil
}

func normalizeRequest(req *VolunteerRequest) error {
	if req.ContactID < 1 {
		return common_models.NewValidation("Volunteer contact is required")
	}
	if req.HoursLogged < 0 {
		return common_models.NewValidation("Hours logged cannot be negative")
	}
	if req.Status == "" {
		req.Status = "prospect"
	}
	for _, st := range catalog.VolunteerStates {
		if req.Status == st {
			return nil
		}
	}
	return common_models.NewValidation("Invalid volunteer status")
}

func diffVolunteers(before, after *Volunteer) map[string]common_models.Change {
	changes := map[string]common_models.Change{}
	if before.ContactID != after.ContactID {
		changes["contact_id"] = common_models.Change{Old: before.ContactID, New: after.ContactID}
	}
	if before.Status != after.Status {
		changes["status"] = common_models.Change{Old: before.Status, New: after.Status}
	}
	if before.Skills != after.Skills {
		changes["skills"] = common_models.Change{Old: before.Skills, New: after.Skills}
	}
	if before.HoursLogged != after.HoursLogged {
		changes["hours_logged"] = common_models.Change{Old: before.HoursLogged, New: after.HoursLogged}
	}
	if !equalDates(before.StartedOn, after.StartedOn) {
		changes["started_on"] = common_models.Change{Old: before.StartedOn, New: after.StartedOn}
	}
	return changes
}

func equalDates(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func callerScope(ctx context.Context) *common_models.DataScopeFilter {
	if identity := common_models.IdentityFromContext(ctx); identity != nil {
		return identity.Scope
	}
	return nil
}
