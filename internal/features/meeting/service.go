package meeting

import (
	"context"
	"strconv"
	"strings"
	"time"

	"npo-crm/internal/features/audit"
	"npo-crm/internal/features/notify"

	common_models "npo-crm/internal/common/models"
)

type MeetingService interface {
	Create(ctx context.Context, req MeetingRequest) (*Meeting, error)
	Get(ctx context.Context, id int64) (*Meeting, error)
	List(ctx context.Context, filter ListFilter, page, limit int) ([]Meeting, int64, error)
	Update(ctx context.Context, id int64, req MeetingRequest) (*Meeting, error)
	Delete(ctx context.Context, id int64) error
}

type MeetingServiceImpl struct {
	Repo    MeetingRepository
	Audit   audit.AuditService
	Hub     *notify.Hub
	MaxPage int
}

func NewMeetingService(repo MeetingRepository, auditService audit.AuditService, hub *notify.Hub, maxPage int) MeetingService {
	return &MeetingServiceImpl{Repo: repo, Audit: auditService, Hub: hub, MaxPage: maxPage}
}

func (s *MeetingServiceImpl) Create(ctx context.Context, req MeetingRequest) (*Meeting, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	identity := common_models.IdentityFromContext(ctx)
	if identity == nil {
		return nil, common_models.NewForbidden("Login required")
	}
	if req.OrganizerID == nil {
		req.OrganizerID = &identity.UserID
	}

	m := &Meeting{
		AccountID:   req.AccountID,
		ContactID:   req.ContactID,
		Subject:     strings.TrimSpace(req.Subject),
		Location:    strings.TrimSpace(req.Location),
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		OrganizerID: req.OrganizerID,
		CreatedBy:   identity.UserID,
	}
	if err := s.Repo.Create(ctx, m); err != nil {
		return nil, err
	}

	_ = s.Audit.LogChange(ctx, common_models.AuditActionCreate, "meeting", strconv.FormatInt(m.ID, 10), map[string]common_models.Change{
		"meeting": {New: m},
	})
	s.Hub.Publish("meeting.created", map[string]interface{}{"id": m.ID, "subject": m.Subject, "starts_at": m.StartsAt})
	return m, nil
}

func (s *MeetingServiceImpl) Get(ctx context.Context, id int64) (*Meeting, error) {
	return s.Repo.FindByID(ctx, id, callerScope(ctx))
}

func (s *MeetingServiceImpl) List(ctx context.Context, filter ListFilter, page, limit int) ([]Meeting, int64, error) {
	p := common_models.NewPagination(page, limit, s.MaxPage)
	return s.Repo.List(ctx, filter, callerScope(ctx), p)
}

func (s *MeetingServiceImpl) Update(ctx context.Context, id int64, req MeetingRequest) (*Meeting, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	before, err := s.Repo.FindByID(ctx, id, callerScope(ctx))
	if err != nil {
		return nil, err
	}

	after := *before
	after.AccountID = req.AccountID
	after.ContactID = req.ContactID
	after.Subject = strings.TrimSpace(req.Subject)
	after.Location = strings.TrimSpace(req.Location)
	after.StartsAt = req.StartsAt
	after.EndsAt = req.EndsAt
	if req.OrganizerID != nil {
		after.OrganizerID = req.OrganizerID
	}

	if err := s.Repo.Update(ctx, &after); err != nil {
		return nil, err
	}

	changes := diffMeetings(before, &after)
	if len(changes) > 0 {
		_ = s.Audit.LogChange(ctx, common_models.AuditActionUpdate, "meeting", strconv.FormatInt(id, 10), changes)
	}
	s.Hub.Publish("meeting.updated", map[string]interface{}{"id": id})
	return &after, nil
}

func (s *MeetingServiceImpl) Delete(ctx context.Context, id int64) error {
	before, err := s.Repo.FindByID(ctx, id, callerScope(ctx))
	if err != nil {
		return err
	}
	if err := s.Repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	_ = s.Audit.LogChange(ctx, common_models.AuditActionDelete, "meeting", strconv.FormatInt(id, 10), map[string]common_models.Change{
		"meeting": {Old: before, New: "DELETED"},
	})
	s.Hub.Publish("meeting.deleted", map[string]interface{}{"id": id})
	return nil
}

func validateRequest(req *MeetingRequest) error {
	if strings.TrimSpace(req.Subject) == "" {
		return common_models.NewValidation("Meeting subject is required")
	}
	if req.StartsAt.IsZero() {
		return common_models.NewValidation("Meeting start time is required")
	}
	if req.EndsAt != nil && !req.EndsAt.After(req.StartsAt) {
		return common_models.NewValidation("Meeting end time must be after the start time")
	}
	return nil
}

func diffMeetings(before, after *Meeting) map[string]common_models.Change {
	changes := map[string]common_models.Change{}
	if !equalID(before.AccountID, after.AccountID) {
		changes["account_id"] = common_models.Change{Old: before.AccountID, New: after.AccountID}
	}
	if !equalID(before.ContactID, after.ContactID) {
		changes["contact_id"] = common_models.Change{Old: before.ContactID, New: after.ContactID}
	}
	if before.Subject != after.Subject {
		changes["subject"] = common_models.Change{Old: before.Subject, New: after.Subject}
	}
	if before.Location != after.Location {
		changes["location"] = common_models.Change{Old: before.Location, New: after.Location}
	}
	if !before.StartsAt.Equal(after.StartsAt) {
		changes["starts_at"] = common_models.Change{Old: before.StartsAt, New: after.StartsAt}
	}
	if !equalTime(before.EndsAt, after.EndsAt) {
		changes["ends_at"] = common_models.Change{Old: before.EndsAt, New: after.EndsAt}
	}
	if !equalID(before.OrganizerID, after.OrganizerID) {
		changes["organizer_id"] = common_models.Change{Old: before.OrganizerID, New: after.OrganizerID}
	}
	return changes
}

func equalID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTime(a, b *time.Time) bool {
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
