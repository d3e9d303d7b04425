package settings

import (
	"context"
	"encoding/json"
	"regexp"

	"npo-crm/internal/features/audit"

	common_models "npo-crm/internal/common/models"
)

type SettingsService interface {
	List(ctx context.Context) ([]Setting, error)
	Get(ctx context.Context, key string) (*Setting, error)
	Put(ctx context.Context, key string, value json.RawMessage) (*Setting, error)
}

type SettingsServiceImpl struct {
	Repo  SettingsRepository
	Audit audit.AuditService
}

func NewSettingsService(repo SettingsRepository, auditService audit.AuditService) SettingsService {
	return &SettingsServiceImpl{Repo: repo, Audit: auditService}
}

func (s *SettingsServiceImpl) List(ctx context.Context) ([]Setting, error) {
	return s.Repo.List(ctx)
}

func (s *SettingsServiceImpl) Get(ctx context.Context, key string) (*Setting, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	setting, err := s.Repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, common_models.NewNotFound("Setting")
	}
	return setting, nil
}

func (s *SettingsServiceImpl) Put(ctx context.Context, key string, value json.RawMessage) (*Setting, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if len(value) == 0 || !json.Valid(value) {
		return nil, common_models.NewValidation("Setting value must be valid JSON")
	}

	old, err := s.Repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	setting := &Setting{Key: key, Value: value}
	if identity := common_models.IdentityFromContext(ctx); identity != nil {
		setting.UpdatedBy = &identity.UserID
	}
	if err := s.Repo.Upsert(ctx, setting); err != nil {
		return nil, err
	}

	var oldValue interface{}
	if old != nil {
		oldValue = old.Value
	}
	_ = s.Audit.LogChange(ctx, common_models.AuditActionSettings, "settings", key, map[string]common_models.Change{
		key: {Old: oldValue, New: value},
	})
	return setting, nil
}

// Keys are dotted lowercase identifiers, e.g. "general.org_name".
var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)*$`)

func validateKey(key string) error {
	if key == "" || len(key) > 128 || !keyPattern.MatchString(key) {
		return common_models.NewValidation("Invalid setting key")
	}
	return nil
}
