package report

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"npo-crm/internal/features/audit"

	common_models "npo-crm/internal/common/models"
)

// OwnerScopeResolver derives the identity a report owner would carry, for
// runs that happen outside the owner's own session (public tokens,
// schedules). Implemented by the user feature's scope service.
type OwnerScopeResolver interface {
	ResolveOwner(ctx context.Context, userID int64) (*common_models.Identity, error)
}

type SaveReportRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Definition  ReportDefinition `json:"definition"`
}

type ShareRequest struct {
	UserID  int64 `json:"user_id"`
	CanEdit bool  `json:"can_edit"`
}

// SavedReportService owns the saved report lifecycle:
// private -> shared -> public -> revoked, where revoked re-enters
// shared/private through new grants.
type SavedReportService interface {
	Create(ctx context.Context, identity *common_models.Identity, req SaveReportRequest) (*SavedReport, error)
	List(ctx context.Context, identity *common_models.Identity) ([]SavedReport, error)
	Get(ctx context.Context, identity *common_models.Identity, id int64) (*SavedReport, error)
	Update(ctx context.Context, identity *common_models.Identity, id int64, req SaveReportRequest) (*SavedReport, error)
	Delete(ctx context.Context, identity *common_models.Identity, id int64) error
	Run(ctx context.Context, identity *common_models.Identity, id int64) (*ReportResult, error)
	ExportSaved(ctx context.Context, identity *common_models.Identity, id int64, format string) (*ExportFile, error)
	Share(ctx context.Context, identity *common_models.Identity, id int64, req ShareRequest) (*ReportShare, error)
	Publish(ctx context.Context, identity *common_models.Identity, id int64) (string, error)
	Revoke(ctx context.Context, identity *common_models.Identity, id int64) error
	RunPublic(ctx context.Context, token string) (*ReportResult, error)
}

type SavedReportServiceImpl struct {
	Repo      SavedReportRepository
	Reports   ReportService
	Validator *Validator
	Scopes    OwnerScopeResolver
	Audit     audit.AuditService
	Log       *zap.Logger
}

func NewSavedReportService(repo SavedReportRepository, reports ReportService, validator *Validator, scopes OwnerScopeResolver, auditService audit.AuditService, log *zap.Logger) SavedReportService {
	return &SavedReportServiceImpl{
		Repo:      repo,
		Reports:   reports,
		Validator: validator,
		Scopes:    scopes,
		Audit:     auditService,
		Log:       log,
	}
}

func (s *SavedReportServiceImpl) Create(ctx context.Context, identity *common_models.Identity, req SaveReportRequest) (*SavedReport, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, common_models.NewValidation("Report name is required")
	}
	if _, err := s.Validator.Validate(req.Definition); err != nil {
		return nil, err
	}

	saved := &SavedReport{
		OwnerID:     identity.UserID,
		Name:        name,
		Description: req.Description,
		Entity:      req.Definition.Entity,
		Definition:  req.Definition,
		Visibility:  VisibilityPrivate,
	}
	if err := s.Repo.Create(ctx, saved); err != nil {
		return nil, err
	}

	s.Audit.LogChange(ctx, common_models.AuditActionCreate, "saved_report", strconv.FormatInt(saved.ID, 10), map[string]common_models.Change{
		"report": {New: saved},
	})
	return saved, nil
}

func (s *SavedReportServiceImpl) List(ctx context.Context, identity *common_models.Identity) ([]SavedReport, error) {
	return s.Repo.ListVisible(ctx, identity.UserID)
}

func (s *SavedReportServiceImpl) Get(ctx context.Context, identity *common_models.Identity, id int64) (*SavedReport, error) {
	saved, err := s.loadVisible(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if saved.OwnerID == identity.UserID {
		shares, err := s.Repo.ListShares(ctx, id)
		if err != nil {
			return nil, err
		}
		saved.Shares = shares
	}
	return saved, nil
}

func (s *SavedReportServiceImpl) Update(ctx context.Context, identity *common_models.Identity, id int64, req SaveReportRequest) (*SavedReport, error) {
	saved, err := s.loadVisible(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	editable, err := s.canEdit(ctx, identity, saved)
	if err != nil {
		return nil, err
	}
	if !editable {
		return nil, common_models.NewForbidden("Only the owner or a shared editor can modify this report")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, common_models.NewValidation("Report name is required")
	}
	if _, err := s.Validator.Validate(req.Definition); err != nil {
		return nil, err
	}

	before := *saved
	saved.Name = name
	saved.Description = req.Description
	saved.Entity = req.Definition.Entity
	saved.Definition = req.Definition
	if err := s.Repo.Update(ctx, saved); err != nil {
		return nil, err
	}

	s.Audit.LogChange(ctx, common_models.AuditActionUpdate, "saved_report", strconv.FormatInt(id, 10), map[string]common_models.Change{
		"report": {Old: before, New: saved},
	})
	return saved, nil
}

func (s *SavedReportServiceImpl) Delete(ctx context.Context, identity *common_models.Identity, id int64) error {
	saved, err := s.loadVisible(ctx, identity, id)
	if err != nil {
		return err
	}
	if saved.OwnerID != identity.UserID {
		return common_models.NewForbidden("Only the owner can delete this report")
	}
	if err := s.Repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.Audit.LogChange(ctx, common_models.AuditActionDelete, "saved_report", strconv.FormatInt(id, 10), map[string]common_models.Change{
		"report": {Old: saved, New: "DELETED"},
	})
	return nil
}

// Run re-validates the stored definition against the live catalog and
// executes it under the caller's scope, not the owner's.
func (s *SavedReportServiceImpl) Run(ctx context.Context, identity *common_models.Identity, id int64) (*ReportResult, error) {
	saved, err := s.loadVisible(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	return s.Reports.Generate(ctx, identity, saved.Definition)
}

func (s *SavedReportServiceImpl) ExportSaved(ctx context.Context, identity *common_models.Identity, id int64, format string) (*ExportFile, error) {
	saved, err := s.loadVisible(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	return s.Reports.Export(ctx, identity, saved.Definition, format, saved.Name)
}

func (s *SavedReportServiceImpl) Share(ctx context.Context, identity *common_models.Identity, id int64, req ShareRequest) (*ReportShare, error) {
	saved, err := s.loadVisible(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if saved.OwnerID != identity.UserID {
		return nil, common_models.NewForbidden("Only the owner can share this report")
	}
	if req.UserID == 0 {
		return nil, common_models.NewValidation("user_id is required")
	}
	if req.UserID == saved.OwnerID {
		return nil, common_models.NewValidation("Cannot share a report with its owner")
	}

	share := &ReportShare{ReportID: id, UserID: req.UserID, CanEdit: req.CanEdit}
	if err := s.Repo.UpsertShare(ctx, share); err != nil {
		return nil, err
	}
	if saved.Visibility == VisibilityPrivate || saved.Visibility == VisibilityRevoked {
		if err := s.Repo.SetVisibility(ctx, id, VisibilityShared, nil); err != nil {
			return nil, err
		}
	}

	s.Audit.LogChange(ctx, common_models.AuditActionShare, "saved_report", strconv.FormatInt(id, 10), map[string]common_models.Change{
		"share": {New: share},
	})
	return share, nil
}

func (s *SavedReportServiceImpl) Publish(ctx context.Context, identity *common_models.Identity, id int64) (string, error) {
	saved, err := s.loadVisible(ctx, identity, id)
	if err != nil {
		return "", err
	}
	if saved.OwnerID != identity.UserID {
		return "", common_models.NewForbidden("Only the owner can publish this report")
	}

	token := uuid.NewString()
	if err := s.Repo.SetVisibility(ctx, id, VisibilityPublic, &token); err != nil {
		return "", err
	}

	s.Audit.LogChange(ctx, common_models.AuditActionPublish, "saved_report", strconv.FormatInt(id, 10), map[string]common_models.Change{
		"visibility": {Old: saved.Visibility, New: VisibilityPublic},
	})
	return token, nil
}

// Revoke clears the public token and all active grants in one step.
func (s *SavedReportServiceImpl) Revoke(ctx context.Context, identity *common_models.Identity, id int64) error {
	saved, err := s.loadVisible(ctx, identity, id)
	if err != nil {
		return err
	}
	if saved.OwnerID != identity.UserID {
		return common_models.NewForbidden("Only the owner can revoke access to this report")
	}

	if err := s.Repo.SetVisibility(ctx, id, VisibilityRevoked, nil); err != nil {
		return err
	}
	if err := s.Repo.RevokeShares(ctx, id); err != nil {
		return err
	}

	s.Audit.LogChange(ctx, common_models.AuditActionRevoke, "saved_report", strconv.FormatInt(id, 10), map[string]common_models.Change{
		"visibility": {Old: saved.Visibility, New: VisibilityRevoked},
	})
	return nil
}

// RunPublic executes a published report under the owner's scope, so a
// public link never exposes more than the owner could see.
func (s *SavedReportServiceImpl) RunPublic(ctx context.Context, token string) (*ReportResult, error) {
	saved, err := s.Repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	owner, err := s.Scopes.ResolveOwner(ctx, saved.OwnerID)
	if err != nil {
		return nil, err
	}
	return s.Reports.Generate(ctx, owner, saved.Definition)
}

// loadVisible fetches a report the caller may see. Reports outside the
// caller's view report as not found rather than forbidden.
func (s *SavedReportServiceImpl) loadVisible(ctx context.Context, identity *common_models.Identity, id int64) (*SavedReport, error) {
	saved, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if saved.OwnerID == identity.UserID || saved.Visibility == VisibilityPublic {
		return saved, nil
	}
	share, err := s.Repo.ShareFor(ctx, id, identity.UserID)
	if err != nil {
		return nil, err
	}
	if share == nil {
		return nil, common_models.NewNotFound("Report")
	}
	return saved, nil
}

func (s *SavedReportServiceImpl) canEdit(ctx context.Context, identity *common_models.Identity, saved *SavedReport) (bool, error) {
	if saved.OwnerID == identity.UserID {
		return true, nil
	}
	share, err := s.Repo.ShareFor(ctx, saved.ID, identity.UserID)
	if err != nil {
		return false, err
	}
	return share != nil && share.CanEdit, nil
}
